// ABOUTME: MCP tool handler implementations for the context engine server
// ABOUTME: Handlers report failures as tool results so the session stays alive
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/shopspring/decimal"

	"github.com/backstage-chat/context-engine/internal/core"
	"github.com/backstage-chat/context-engine/internal/models"
	"github.com/backstage-chat/context-engine/internal/storage"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	storage  *storage.Storage
	engine   *core.Engine
	embedder core.Embedder
}

// StoreTurn handles the store_turn tool. A leading comment marker routes
// the message to comment insertion under the most recent regular turn.
func (h *Handlers) StoreTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conversationID, err := request.RequireString("conversation_id")
	if err != nil {
		return mcp.NewToolResultError("conversation_id argument is required and must be a string"), nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}
	role := request.GetString("role", models.RoleUser)
	speaker := request.GetString("speaker", "")

	if isComment, cleaned := core.DetectCommentMarker(text); isComment {
		if cleaned == "" {
			return mcp.NewToolResultError("comment marker present but comment text is empty"), nil
		}
		parent, ok, err := h.lastRegularTurnIndex(conversationID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read conversation: %v", err)), nil
		}
		if !ok {
			return mcp.NewToolResultError("cannot store a comment in an empty conversation"), nil
		}
		return h.insertComment(ctx, conversationID, speaker, cleaned, parent)
	}

	stored := models.FormatSpeakerPrefix(speaker, text)
	embedding := h.embedder.Embed(ctx, stored)

	turn, err := h.storage.AppendTurn(conversationID, speaker, role, stored, embedding.Vector)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to store turn: %v", err)), nil
	}

	return toolResultJSON(map[string]interface{}{
		"turn_id":          turn.ID,
		"turn_index":       turn.TurnIndex.String(),
		"embedding_source": string(embedding.Source),
	})
}

// StoreComment handles the store_comment tool
func (h *Handlers) StoreComment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conversationID, err := request.RequireString("conversation_id")
	if err != nil {
		return mcp.NewToolResultError("conversation_id argument is required and must be a string"), nil
	}
	parentStr, err := request.RequireString("parent_index")
	if err != nil {
		return mcp.NewToolResultError("parent_index argument is required and must be a string"), nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}
	speaker := request.GetString("speaker", "")

	parent, err := decimal.NewFromString(parentStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("parent_index is not a decimal: %v", err)), nil
	}

	return h.insertComment(ctx, conversationID, speaker, text, parent)
}

func (h *Handlers) insertComment(ctx context.Context, conversationID, speaker, text string, parent decimal.Decimal) (*mcp.CallToolResult, error) {
	stored := models.FormatSpeakerPrefix(speaker, text)
	embedding := h.embedder.Embed(ctx, stored)

	comment, err := h.storage.InsertComment(conversationID, speaker, stored, parent, embedding.Vector)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to store comment: %v", err)), nil
	}

	return toolResultJSON(map[string]interface{}{
		"turn_id":          comment.ID,
		"turn_index":       comment.TurnIndex.String(),
		"parent_index":     parent.String(),
		"embedding_source": string(embedding.Source),
	})
}

// BuildContext handles the build_context tool
func (h *Handlers) BuildContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conversationID, err := request.RequireString("conversation_id")
	if err != nil {
		return mcp.NewToolResultError("conversation_id argument is required and must be a string"), nil
	}
	prompt, err := request.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError("prompt argument is required and must be a string"), nil
	}

	turns, err := h.storage.GetTurnsByConversation(conversationID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load turns: %v", err)), nil
	}
	chunks, err := h.storage.GetUploadChunksByConversation(conversationID)
	if err != nil {
		log.Warn("failed to load upload chunks, continuing without them", "error", err)
		chunks = nil
	}

	bundle, err := h.engine.BuildContext(ctx, prompt, turns, chunks)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("context assembly failed: %v", err)), nil
	}

	return toolResultJSON(map[string]interface{}{
		"system_message":    bundle.SystemMessage,
		"messages":          bundle.Messages,
		"retrieved_turns":   bundle.RetrievedTurns,
		"retrieved_uploads": bundle.RetrievedUploads,
	})
}

// SearchSimilar handles the search_similar tool
func (h *Handlers) SearchSimilar(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conversationID, err := request.RequireString("conversation_id")
	if err != nil {
		return mcp.NewToolResultError("conversation_id argument is required and must be a string"), nil
	}
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	maxResults := request.GetInt("max_results", core.DefaultMaxResults)

	turns, err := h.storage.GetTurnsByConversation(conversationID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load turns: %v", err)), nil
	}

	corpus := make([]models.EmbeddedText, 0, len(turns))
	for _, t := range turns {
		if t.Text == "" || len(t.Embedding) == 0 {
			continue
		}
		corpus = append(corpus, models.EmbeddedText{
			Text:       t.Text,
			Embedding:  t.Embedding,
			SourceID:   t.ID,
			SourceKind: models.SourceTurn,
		})
	}

	results := h.engine.FindRelevantContext(ctx, query, corpus, h.engine.Options().SimilarityThreshold, maxResults)

	return toolResultJSON(map[string]interface{}{
		"results": results,
	})
}

// ExpandQuery handles the expand_query tool
func (h *Handlers) ExpandQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := request.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError("prompt argument is required and must be a string"), nil
	}

	return toolResultJSON(map[string]interface{}{
		"variants": h.engine.ExpandQuery(prompt),
	})
}

// AllocateCommentIndex handles the allocate_comment_index tool
func (h *Handlers) AllocateCommentIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	parentStr, err := request.RequireString("parent_index")
	if err != nil {
		return mcp.NewToolResultError("parent_index argument is required and must be a string"), nil
	}
	parent, err := decimal.NewFromString(parentStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("parent_index is not a decimal: %v", err)), nil
	}

	var sibling *decimal.Decimal
	if nextStr := request.GetString("next_index", ""); nextStr != "" {
		next, err := decimal.NewFromString(nextStr)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("next_index is not a decimal: %v", err)), nil
		}
		sibling = &next
	}

	var existing []decimal.Decimal
	if existingStr := request.GetString("existing", ""); existingStr != "" {
		for _, part := range strings.Split(existingStr, ",") {
			idx, err := decimal.NewFromString(strings.TrimSpace(part))
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("existing index %q is not a decimal: %v", part, err)), nil
			}
			existing = append(existing, idx)
		}
	}

	next := core.NextSiblingOrDefault(parent, sibling)
	index, err := core.AllocateCommentIndex(parent, next, existing)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("allocation failed: %v", err)), nil
	}

	return toolResultJSON(map[string]interface{}{
		"index": index.String(),
	})
}

// lastRegularTurnIndex finds the highest-indexed regular turn in a conversation
func (h *Handlers) lastRegularTurnIndex(conversationID string) (decimal.Decimal, bool, error) {
	turns, err := h.storage.GetTurnsByConversation(conversationID)
	if err != nil {
		return decimal.Zero, false, err
	}
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Kind == models.TurnKindRegular {
			return turns[i].TurnIndex, true, nil
		}
	}
	return decimal.Zero, false, nil
}

func toolResultJSON(response map[string]interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
