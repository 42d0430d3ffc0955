// ABOUTME: Tests for the deterministic fallback embedding
// ABOUTME: Validates determinism, dimension, and unit length
package llm

import (
	"math"
	"testing"
)

func TestDeterministicEmbedding_Deterministic(t *testing.T) {
	a := DeterministicEmbedding("my favorite color is blue", 64)
	b := DeterministicEmbedding("my favorite color is blue", 64)

	if len(a) != 64 || len(b) != 64 {
		t.Fatalf("expected length 64, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("component %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestDeterministicEmbedding_DistinctTexts(t *testing.T) {
	a := DeterministicEmbedding("alpha", 32)
	b := DeterministicEmbedding("beta", 32)

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical embeddings")
	}
}

func TestDeterministicEmbedding_UnitLength(t *testing.T) {
	v := DeterministicEmbedding("normalize me", 128)

	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if math.Abs(math.Sqrt(sum)-1.0) > 1e-9 {
		t.Errorf("expected unit magnitude, got %v", math.Sqrt(sum))
	}
}

func TestDeterministicEmbedding_InvalidDimension(t *testing.T) {
	if v := DeterministicEmbedding("x", 0); v != nil {
		t.Errorf("expected nil for dimension 0, got %v", v)
	}
}
