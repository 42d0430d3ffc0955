// ABOUTME: Deterministic hash-based fallback embedding
// ABOUTME: Keeps retrieval functional when the embedding provider is unavailable
package llm

import "math"

// DeterministicEmbedding derives a dim-length unit vector from the text
// alone: a 32-bit character hash seeds a periodic generator, so identical
// text always yields an identical vector. Not semantically meaningful,
// but stable enough that repeated queries for the same text still match
// their own stored fallback embeddings.
func DeterministicEmbedding(text string, dim int) []float64 {
	if dim <= 0 {
		return nil
	}

	var hash int32
	for _, r := range text {
		hash = (hash << 5) - hash + int32(r)
	}

	seed := float64(hash)
	embedding := make([]float64, dim)
	var sumSquares float64
	for i := range embedding {
		v := math.Sin(seed+float64(i))/2 + 0.5
		embedding[i] = v
		sumSquares += v * v
	}

	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return embedding
	}
	for i := range embedding {
		embedding[i] /= magnitude
	}
	return embedding
}
