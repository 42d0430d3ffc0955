// ABOUTME: Fixed-dimension vector arithmetic for embedding similarity
// ABOUTME: Cosine similarity, dimension normalization, and validation
package vector

import (
	"errors"
	"fmt"
	"math"
)

// Dimension is the engine-wide embedding dimension. Vectors entering the
// engine are truncated or zero-padded to this length, never left ragged.
const Dimension = 1536

// ErrInvalidVector indicates a malformed vector input (empty, mismatched
// length, or non-finite components). Callers must fix the input.
var ErrInvalidVector = errors.New("invalid vector")

// IsValid reports whether v is non-empty and contains only finite values.
func IsValid(v []float64) bool {
	if len(v) == 0 {
		return false
	}
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// CosineSimilarity returns dot(a,b) / (|a||b|), in [-1, 1].
// Both vectors must be non-empty, equal-length, and finite. If either
// magnitude is exactly zero the similarity is 0, not a division error.
func CosineSimilarity(a, b []float64) (float64, error) {
	if !IsValid(a) || !IsValid(b) {
		return 0, fmt.Errorf("%w: vectors must be non-empty and finite", ErrInvalidVector)
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: dimension mismatch (%d vs %d)", ErrInvalidVector, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// NormalizeDimension forces v to exactly dim components: longer vectors
// are truncated, shorter vectors are right-padded with zeros.
func NormalizeDimension(v []float64, dim int) []float64 {
	if dim <= 0 {
		return nil
	}
	out := make([]float64, dim)
	copy(out, v)
	return out
}

// Zero returns the all-zero vector of the given dimension.
func Zero(dim int) []float64 {
	return make([]float64, dim)
}
