// ABOUTME: Unit tests for vector arithmetic
// ABOUTME: Validates cosine similarity properties and dimension normalization
package vector

import (
	"errors"
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        []float64
		b        []float64
		expected float64
		delta    float64
	}{
		{
			name:     "identical vectors",
			a:        []float64{1.0, 2.0, 3.0},
			b:        []float64{1.0, 2.0, 3.0},
			expected: 1.0,
			delta:    0.0001,
		},
		{
			name:     "orthogonal vectors",
			a:        []float64{1.0, 0.0, 0.0},
			b:        []float64{0.0, 1.0, 0.0},
			expected: 0.0,
			delta:    0.0001,
		},
		{
			name:     "opposite vectors",
			a:        []float64{1.0, 0.0, 0.0},
			b:        []float64{-1.0, 0.0, 0.0},
			expected: -1.0,
			delta:    0.0001,
		},
		{
			name:     "zero vector yields zero similarity",
			a:        []float64{0.0, 0.0, 0.0},
			b:        []float64{1.0, 2.0, 3.0},
			expected: 0.0,
			delta:    0.0001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.expected) > tt.delta {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	a := []float64{0.3, -1.2, 4.0, 0.5}
	b := []float64{2.1, 0.7, -0.4, 1.1}

	ab, err := CosineSimilarity(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ba, err := CosineSimilarity(b, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(ab-ba) > 1e-12 {
		t.Errorf("similarity not symmetric: %v vs %v", ab, ba)
	}
}

func TestCosineSimilarity_InvalidInputs(t *testing.T) {
	tests := []struct {
		name string
		a    []float64
		b    []float64
	}{
		{"empty first vector", nil, []float64{1.0}},
		{"empty second vector", []float64{1.0}, nil},
		{"dimension mismatch", []float64{1.0, 2.0}, []float64{1.0}},
		{"NaN component", []float64{math.NaN(), 1.0}, []float64{1.0, 1.0}},
		{"Inf component", []float64{1.0, 1.0}, []float64{math.Inf(1), 1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CosineSimilarity(tt.a, tt.b)
			if !errors.Is(err, ErrInvalidVector) {
				t.Errorf("expected ErrInvalidVector, got %v", err)
			}
		})
	}
}

func TestNormalizeDimension(t *testing.T) {
	tests := []struct {
		name   string
		input  []float64
		dim    int
		length int
	}{
		{"shorter is padded", []float64{1.0, 2.0}, 5, 5},
		{"longer is truncated", []float64{1.0, 2.0, 3.0, 4.0}, 2, 2},
		{"exact length unchanged", []float64{1.0, 2.0, 3.0}, 3, 3},
		{"empty input", nil, 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDimension(tt.input, tt.dim)
			if len(got) != tt.length {
				t.Fatalf("expected length %d, got %d", tt.length, len(got))
			}
		})
	}
}

func TestNormalizeDimension_PadsWithZeros(t *testing.T) {
	got := NormalizeDimension([]float64{1.0}, 3)
	if got[0] != 1.0 || got[1] != 0.0 || got[2] != 0.0 {
		t.Errorf("expected [1 0 0], got %v", got)
	}
}

func TestZero(t *testing.T) {
	z := Zero(4)
	if len(z) != 4 {
		t.Fatalf("expected length 4, got %d", len(z))
	}
	for i, v := range z {
		if v != 0 {
			t.Errorf("component %d: expected 0, got %v", i, v)
		}
	}
	if IsValid(z) != true {
		t.Error("zero vector should be valid input")
	}
}
