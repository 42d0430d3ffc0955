// ABOUTME: Tests for fractional comment index allocation
// ABOUTME: Covers midpoint insertion, gap halving, bounds validation, and marker detection
package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAllocateCommentIndex(t *testing.T) {
	tests := []struct {
		name     string
		parent   string
		next     string
		existing []string
		want     string
	}{
		{"empty range uses midpoint", "10", "20", nil, "15"},
		{"one existing comment halves remaining gap", "10", "20", []string{"15"}, "17.5"},
		{"two existing comments", "10", "20", []string{"15", "17.5"}, "18.75"},
		{"existing order irrelevant", "10", "20", []string{"17.5", "15"}, "18.75"},
		{"out-of-range indices ignored", "10", "20", []string{"5", "25"}, "15"},
		{"fractional bounds", "1.5", "2", nil, "1.75"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := make([]decimal.Decimal, len(tt.existing))
			for i, s := range tt.existing {
				existing[i] = dec(s)
			}

			got, err := AllocateCommentIndex(dec(tt.parent), dec(tt.next), existing)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(dec(tt.want)) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestAllocateCommentIndex_InvalidBounds(t *testing.T) {
	tests := []struct {
		name   string
		parent string
		next   string
	}{
		{"reversed bounds", "20", "10"},
		{"equal bounds", "10", "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AllocateCommentIndex(dec(tt.parent), dec(tt.next), nil)
			if !errors.Is(err, ErrInvalidOrderingBounds) {
				t.Errorf("expected ErrInvalidOrderingBounds, got %v", err)
			}
		})
	}
}

func TestAllocateCommentIndex_PreservesInsertionOrder(t *testing.T) {
	parent := dec("3")
	next := dec("4")

	var existing []decimal.Decimal
	prev := parent
	for i := 0; i < 10; i++ {
		idx, err := AllocateCommentIndex(parent, next, existing)
		if err != nil {
			t.Fatalf("allocation %d failed: %v", i, err)
		}
		if !idx.GreaterThan(prev) {
			t.Fatalf("allocation %d: %s does not sort after previous %s", i, idx, prev)
		}
		if !idx.LessThan(next) {
			t.Fatalf("allocation %d: %s does not sort before sibling %s", i, idx, next)
		}
		existing = append(existing, idx)
		prev = idx
	}
}

func TestNextSiblingOrDefault(t *testing.T) {
	sibling := dec("7.5")
	if got := NextSiblingOrDefault(dec("7"), &sibling); !got.Equal(sibling) {
		t.Errorf("expected sibling index, got %s", got)
	}
	if got := NextSiblingOrDefault(dec("7"), nil); !got.Equal(dec("8")) {
		t.Errorf("expected parent+1, got %s", got)
	}
}

func TestDetectCommentMarker(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		isComment   bool
		cleanedText string
	}{
		{"lowercase marker", "comment\nnice point", true, "nice point"},
		{"capitalized marker", "Comment\nnice point", true, "nice point"},
		{"marker only", "comment", true, ""},
		{"regular message", "this is not a comment", false, "this is not a comment"},
		{"marker mid-text ignored", "I wrote a comment\nabove", false, "I wrote a comment\nabove"},
		{"empty content", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isComment, cleaned := DetectCommentMarker(tt.content)
			if isComment != tt.isComment {
				t.Errorf("isComment: expected %v, got %v", tt.isComment, isComment)
			}
			if cleaned != tt.cleanedText {
				t.Errorf("cleaned: expected %q, got %q", tt.cleanedText, cleaned)
			}
		})
	}
}
