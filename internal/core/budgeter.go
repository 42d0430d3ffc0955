// ABOUTME: ContextBudgeter packs retrieved snippets and turn history into a bounded prompt
// ABOUTME: Recency-biased selection, chronological presentation, fixed anti-hallucination directive
package core

import (
	"fmt"
	"strings"

	"github.com/backstage-chat/context-engine/internal/models"
)

// DefaultMaxContextChars bounds the raw character length of included
// history. Characters, not tokens: well within model context windows.
const DefaultMaxContextChars = 100000

const minimalSystemMessage = "You are a helpful AI assistant. Respond concisely and clearly."

const contextSystemMessage = `You have access to the conversation history between you and the user, as well as relevant information from uploaded files.
This information contains important context that will help you provide more accurate and relevant responses.
DO NOT say you don't have access to previous conversations or uploaded files - you have the relevant information below.

IMPORTANT GUIDELINES:
1. Consider all provided context when it's relevant to the current prompt.
2. Use the user's previously shared preferences, facts, and details to personalize your responses.
3. When referencing past information or uploaded files, be accurate and precise about what they contain.
4. Keep your responses focused on the current prompt - only include context that is directly relevant.
5. If the user asks about something that isn't in the provided context, respond naturally without drawing attention to the lack of information.
6. NEVER make up or hallucinate information that isn't supported by the provided context.
7. If you don't know something or it wasn't mentioned in the context, acknowledge that rather than making up an answer.`

// UploadSnippet is a retrieved upload-chunk hit with its file name for
// preamble labeling.
type UploadSnippet struct {
	models.SimilarityResult
	FileName string
}

// Budgeter merges retrieved snippets and chronological history into one
// bounded context.
type Budgeter struct {
	maxChars int
}

// NewBudgeter creates a Budgeter. A non-positive budget falls back to
// DefaultMaxContextChars.
func NewBudgeter(maxChars int) *Budgeter {
	if maxChars <= 0 {
		maxChars = DefaultMaxContextChars
	}
	return &Budgeter{maxChars: maxChars}
}

// SelectRecent walks history from most recent to oldest, accumulating
// character length, and returns the included turns back in chronological
// order. At least one turn is always included when history is non-empty,
// even if that single turn exceeds the budget.
func (b *Budgeter) SelectRecent(history []models.Message) []models.Message {
	if len(history) == 0 {
		return nil
	}

	var total int
	included := make([]models.Message, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		length := len(history[i].Content)
		if total+length > b.maxChars && len(included) > 0 {
			break
		}
		total += length
		included = append(included, history[i])
	}

	// Reverse back to oldest-first for presentation.
	for i, j := 0, len(included)-1; i < j; i, j = i+1, j-1 {
		included[i], included[j] = included[j], included[i]
	}
	return included
}

// RenderPreamble formats retrieved snippets into two labeled numbered
// sections. Empty sections are omitted entirely.
func RenderPreamble(turnSnippets []models.SimilarityResult, uploadSnippets []UploadSnippet) string {
	var sb strings.Builder

	if len(turnSnippets) > 0 {
		sb.WriteString("### Relevant conversation history:\n\n")
		for i, s := range turnSnippets {
			fmt.Fprintf(&sb, "%d. %s\n\n", i+1, s.Text)
		}
	}

	if len(uploadSnippets) > 0 {
		sb.WriteString("### Relevant information from uploaded files:\n\n")
		for i, s := range uploadSnippets {
			name := s.FileName
			if name == "" {
				name = "Unknown file"
			}
			fmt.Fprintf(&sb, "%d. From %q:\n%s\n\n", i+1, name, s.Text)
		}
	}

	return sb.String()
}

// Compose builds the final ContextBundle: system directive plus snippet
// preamble, budget-selected history, and the prompt as the last user
// message. With no history and no snippets it degrades to a bare minimal
// system message plus the prompt.
func (b *Budgeter) Compose(prompt string, history []models.Message, turnSnippets []models.SimilarityResult, uploadSnippets []UploadSnippet) *models.ContextBundle {
	included := b.SelectRecent(history)
	preamble := RenderPreamble(turnSnippets, uploadSnippets)

	bundle := &models.ContextBundle{
		RetrievedTurns: turnSnippets,
	}
	for _, s := range uploadSnippets {
		bundle.RetrievedUploads = append(bundle.RetrievedUploads, s.SimilarityResult)
	}

	if len(included) == 0 && preamble == "" {
		bundle.SystemMessage = minimalSystemMessage
		bundle.Messages = []models.Message{{Role: models.RoleUser, Content: prompt}}
		return bundle
	}

	systemMessage := contextSystemMessage
	if preamble != "" {
		systemMessage += "\n\nHere is relevant information to help you answer the user's question:\n\n" + preamble
	}
	bundle.SystemMessage = systemMessage

	bundle.Messages = make([]models.Message, 0, len(included)+1)
	bundle.Messages = append(bundle.Messages, included...)
	bundle.Messages = append(bundle.Messages, models.Message{Role: models.RoleUser, Content: prompt})
	return bundle
}
