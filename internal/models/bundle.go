// ABOUTME: ContextBundle is the assembled prompt context handed to the LLM caller
// ABOUTME: Built fresh per request and discarded after the completion call
package models

// ContextBundle carries everything the completion collaborator needs:
// the composed system message (directive plus retrieved-snippet
// preamble), the ordered messages ending with the current prompt, and
// the raw snippets for observability.
type ContextBundle struct {
	SystemMessage    string             `json:"system_message"`
	Messages         []Message          `json:"messages"`
	RetrievedTurns   []SimilarityResult `json:"retrieved_turns,omitempty"`
	RetrievedUploads []SimilarityResult `json:"retrieved_uploads,omitempty"`
}
