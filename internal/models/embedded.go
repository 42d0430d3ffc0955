// ABOUTME: Corpus entry and search result types for similarity retrieval
// ABOUTME: EmbeddedText pairs a text fragment with its embedding and provenance
package models

// SourceKind identifies where a corpus entry came from.
type SourceKind string

const (
	SourceTurn        SourceKind = "turn"
	SourceUploadChunk SourceKind = "upload-chunk"
)

// EmbeddedText is one labeled (text, embedding) pair in a retrieval
// corpus. Immutable once created; regenerated only when the text changes.
type EmbeddedText struct {
	Text       string     `json:"text"`
	Embedding  []float64  `json:"embedding"`
	SourceID   string     `json:"source_id"`
	SourceKind SourceKind `json:"source_kind"`
}

// SimilarityResult is an ephemeral per-request search hit. Similarity is
// cosine similarity in [-1, 1].
type SimilarityResult struct {
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
}
