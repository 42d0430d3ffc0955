// ABOUTME: SimilarityIndex ranks a labeled corpus against a query embedding
// ABOUTME: Malformed corpus entries are skipped with a diagnostic, never fatal
package core

import (
	"sort"

	"github.com/charmbracelet/log"

	"github.com/backstage-chat/context-engine/internal/models"
	"github.com/backstage-chat/context-engine/internal/vector"
)

// SearchOptions control similarity filtering and result count.
type SearchOptions struct {
	Threshold  float64
	MaxResults int
}

// Search returns corpus entries whose cosine similarity to query meets
// the threshold, sorted descending. Ties keep original corpus order.
// A single malformed row must not abort the search: invalid embeddings
// are logged and skipped.
func Search(query []float64, corpus []models.EmbeddedText, opts SearchOptions) []models.SimilarityResult {
	if !vector.IsValid(query) {
		log.Warn("similarity search skipped: invalid query embedding", "len", len(query))
		return nil
	}

	results := make([]models.SimilarityResult, 0, len(corpus))
	for _, entry := range corpus {
		if entry.Text == "" || !vector.IsValid(entry.Embedding) {
			log.Warn("skipping corpus entry with invalid embedding",
				"source_id", entry.SourceID, "source_kind", entry.SourceKind)
			continue
		}
		similarity, err := vector.CosineSimilarity(query, entry.Embedding)
		if err != nil {
			log.Warn("skipping corpus entry: similarity failed",
				"source_id", entry.SourceID, "err", err)
			continue
		}
		if similarity >= opts.Threshold {
			results = append(results, models.SimilarityResult{
				Text:       entry.Text,
				Similarity: similarity,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if opts.MaxResults > 0 && len(results) > opts.MaxResults {
		results = results[:opts.MaxResults]
	}
	return results
}

// dedupeResults removes duplicate texts keeping the first occurrence.
func dedupeResults(results []models.SimilarityResult) []models.SimilarityResult {
	seen := make(map[string]bool, len(results))
	unique := make([]models.SimilarityResult, 0, len(results))
	for _, r := range results {
		if seen[r.Text] {
			continue
		}
		seen[r.Text] = true
		unique = append(unique, r)
	}
	return unique
}
