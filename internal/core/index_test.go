// ABOUTME: Tests for similarity search over labeled corpora
// ABOUTME: Covers ordering, threshold filtering, malformed-entry skipping, and tie stability
package core

import (
	"math"
	"testing"

	"github.com/backstage-chat/context-engine/internal/models"
)

func corpusEntry(id, text string, embedding []float64) models.EmbeddedText {
	return models.EmbeddedText{
		Text:       text,
		Embedding:  embedding,
		SourceID:   id,
		SourceKind: models.SourceTurn,
	}
}

func TestSearch_DescendingAboveThreshold(t *testing.T) {
	query := []float64{1.0, 0.0, 0.0}
	corpus := []models.EmbeddedText{
		corpusEntry("a", "orthogonal", []float64{0.0, 1.0, 0.0}),
		corpusEntry("b", "close", []float64{0.9, 0.1, 0.0}),
		corpusEntry("c", "exact", []float64{1.0, 0.0, 0.0}),
	}

	results := Search(query, corpus, SearchOptions{Threshold: 0.5, MaxResults: 10})

	if len(results) != 2 {
		t.Fatalf("expected 2 results above threshold, got %d", len(results))
	}
	if results[0].Text != "exact" || results[1].Text != "close" {
		t.Errorf("unexpected order: %v", results)
	}
	for _, r := range results {
		if r.Similarity < 0.5 {
			t.Errorf("result %q below threshold: %v", r.Text, r.Similarity)
		}
	}
}

func TestSearch_SkipsMalformedEntries(t *testing.T) {
	query := []float64{1.0, 0.0}
	corpus := []models.EmbeddedText{
		corpusEntry("bad-dim", "wrong dimension", []float64{1.0, 0.0, 0.0}),
		corpusEntry("bad-nan", "not a number", []float64{math.NaN(), 0.0}),
		corpusEntry("bad-empty", "no embedding", nil),
		corpusEntry("good", "valid entry", []float64{1.0, 0.0}),
	}

	results := Search(query, corpus, SearchOptions{Threshold: 0.5, MaxResults: 10})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d: %v", len(results), results)
	}
	if results[0].Text != "valid entry" {
		t.Errorf("expected the valid entry, got %q", results[0].Text)
	}
}

func TestSearch_TiesKeepCorpusOrder(t *testing.T) {
	query := []float64{1.0, 0.0}
	// Identical embeddings: identical similarity, stable order expected
	corpus := []models.EmbeddedText{
		corpusEntry("first", "first entry", []float64{1.0, 0.0}),
		corpusEntry("second", "second entry", []float64{1.0, 0.0}),
		corpusEntry("third", "third entry", []float64{1.0, 0.0}),
	}

	results := Search(query, corpus, SearchOptions{Threshold: 0.0, MaxResults: 10})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Text != "first entry" || results[1].Text != "second entry" || results[2].Text != "third entry" {
		t.Errorf("tie order not stable: %v", results)
	}
}

func TestSearch_TruncatesToMaxResults(t *testing.T) {
	query := []float64{1.0, 0.0}
	var corpus []models.EmbeddedText
	for i := 0; i < 10; i++ {
		corpus = append(corpus, corpusEntry("id", "entry", []float64{1.0, 0.0}))
	}

	results := Search(query, corpus, SearchOptions{Threshold: 0.0, MaxResults: 4})
	if len(results) != 4 {
		t.Errorf("expected 4 results, got %d", len(results))
	}
}

func TestSearch_InvalidQuery(t *testing.T) {
	corpus := []models.EmbeddedText{corpusEntry("a", "text", []float64{1.0, 0.0})}

	if results := Search(nil, corpus, SearchOptions{}); results != nil {
		t.Errorf("expected nil for invalid query, got %v", results)
	}
	if results := Search([]float64{math.Inf(1), 0}, corpus, SearchOptions{}); results != nil {
		t.Errorf("expected nil for non-finite query, got %v", results)
	}
}
