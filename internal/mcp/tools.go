// ABOUTME: MCP tool definitions and registration for the context engine server
// ABOUTME: Defines JSON schemas for all 6 MCP tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/backstage-chat/context-engine/internal/core"
	"github.com/backstage-chat/context-engine/internal/storage"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, store *storage.Storage, engine *core.Engine, embedder core.Embedder) *Handlers {
	handlers := &Handlers{
		storage:  store,
		engine:   engine,
		embedder: embedder,
	}

	// 1. store_turn - Append a conversation turn
	server.AddTool(mcp.Tool{
		Name:        "store_turn",
		Description: "Store a conversation turn. The turn is embedded and appended at the next whole ordering index. A message whose first line is exactly 'comment' is threaded under the previous turn instead.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"conversation_id": map[string]interface{}{
					"type":        "string",
					"description": "Conversation to append to",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Utterance text",
				},
				"role": map[string]interface{}{
					"type":        "string",
					"description": "Either 'user' or 'assistant' (default: user)",
				},
				"speaker": map[string]interface{}{
					"type":        "string",
					"description": "Optional speaker name, prefixed onto the stored text",
				},
			},
			Required: []string{"conversation_id", "text"},
		},
	}, handlers.StoreTurn)

	// 2. store_comment - Thread a comment under an existing turn
	server.AddTool(mcp.Tool{
		Name:        "store_comment",
		Description: "Thread a comment under an existing turn. The comment receives a fractional ordering index strictly between the parent turn and its next sibling.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"conversation_id": map[string]interface{}{
					"type":        "string",
					"description": "Conversation containing the parent turn",
				},
				"parent_index": map[string]interface{}{
					"type":        "string",
					"description": "Ordering index of the parent turn, as a decimal string",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Comment text",
				},
				"speaker": map[string]interface{}{
					"type":        "string",
					"description": "Optional speaker name",
				},
			},
			Required: []string{"conversation_id", "parent_index", "text"},
		},
	}, handlers.StoreComment)

	// 3. build_context - Run the full retrieval and assembly pipeline
	server.AddTool(mcp.Tool{
		Name:        "build_context",
		Description: "Assemble a bounded LLM context for a prompt: query expansion, similarity retrieval over stored turns and uploads, and budgeted composition of system message plus ordered history.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"conversation_id": map[string]interface{}{
					"type":        "string",
					"description": "Conversation whose history and uploads form the corpus",
				},
				"prompt": map[string]interface{}{
					"type":        "string",
					"description": "Inbound user prompt",
				},
			},
			Required: []string{"conversation_id", "prompt"},
		},
	}, handlers.BuildContext)

	// 4. search_similar - Similarity search over stored turns
	server.AddTool(mcp.Tool{
		Name:        "search_similar",
		Description: "Search a conversation's stored turns for text semantically similar to a query. Returns snippets with similarity scores, descending.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"conversation_id": map[string]interface{}{
					"type":        "string",
					"description": "Conversation to search",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query",
				},
				"max_results": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results to return (default: 10)",
					"default":     10,
				},
			},
			Required: []string{"conversation_id", "query"},
		},
	}, handlers.SearchSimilar)

	// 5. expand_query - Show the variants a prompt expands into
	server.AddTool(mcp.Tool{
		Name:        "expand_query",
		Description: "Expand a prompt into the query variants used for retrieval (verbatim, question-prefix-stripped, possessive-phrase variants).",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"prompt": map[string]interface{}{
					"type":        "string",
					"description": "Prompt to expand",
				},
			},
			Required: []string{"prompt"},
		},
	}, handlers.ExpandQuery)

	// 6. allocate_comment_index - Compute a fractional ordering index
	server.AddTool(mcp.Tool{
		Name:        "allocate_comment_index",
		Description: "Compute the fractional ordering index a new comment would receive between a parent turn and its next sibling, given existing comment indices. Pure computation; nothing is stored.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"parent_index": map[string]interface{}{
					"type":        "string",
					"description": "Parent turn ordering index, as a decimal string",
				},
				"next_index": map[string]interface{}{
					"type":        "string",
					"description": "Next sibling ordering index as a decimal string. Defaults to parent + 1.",
				},
				"existing": map[string]interface{}{
					"type":        "string",
					"description": "Comma-separated decimal indices of comments already between the bounds",
				},
			},
			Required: []string{"parent_index"},
		},
	}, handlers.AllocateCommentIndex)

	return handlers
}
