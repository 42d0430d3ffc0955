// ABOUTME: TurnIndexAllocator assigns fractional ordering keys to threaded comments
// ABOUTME: New indices land strictly between existing bounds; no row is ever renumbered
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidOrderingBounds indicates a caller error: the parent index was
// not strictly less than the next-sibling index (e.g. a stale sibling
// lookup). The comment-creation operation must fail rather than produce
// a non-ordering-preserving index.
var ErrInvalidOrderingBounds = errors.New("invalid ordering bounds")

var two = decimal.NewFromInt(2)

// AllocateCommentIndex computes an ordering key for a new comment that
// sorts after parent, after every existing comment in (parent, next),
// and before next. With no existing comments the midpoint is used;
// otherwise the gap between the last comment and the sibling boundary is
// halved, so insertion order is preserved. Indices outside the open
// interval are ignored.
//
// Repeated insertion at one boundary halves the remaining gap each time;
// decimal division precision bounds how many comments fit before two
// indices collide. That limit is accepted rather than triggering a
// renumbering pass.
func AllocateCommentIndex(parent, next decimal.Decimal, existing []decimal.Decimal) (decimal.Decimal, error) {
	if parent.GreaterThanOrEqual(next) {
		return decimal.Zero, fmt.Errorf("%w: parent %s >= next sibling %s",
			ErrInvalidOrderingBounds, parent, next)
	}

	lower := parent
	for _, idx := range existing {
		if idx.GreaterThan(parent) && idx.LessThan(next) && idx.GreaterThan(lower) {
			lower = idx
		}
	}

	return lower.Add(next).Div(two), nil
}

// NextSiblingOrDefault returns the given sibling index, or parent+1 when
// the parent is the last turn in the conversation.
func NextSiblingOrDefault(parent decimal.Decimal, sibling *decimal.Decimal) decimal.Decimal {
	if sibling != nil {
		return *sibling
	}
	return parent.Add(decimal.NewFromInt(1))
}

// DetectCommentMarker reports whether a message is a threaded comment: a
// first line that is exactly "comment" or "Comment". The marker line is
// stripped from the returned content.
func DetectCommentMarker(content string) (bool, string) {
	if content == "" {
		return false, content
	}
	firstLine, rest, found := strings.Cut(content, "\n")
	if trimmed := strings.TrimSpace(firstLine); trimmed != "comment" && trimmed != "Comment" {
		return false, content
	}
	if !found {
		return true, ""
	}
	return true, strings.TrimSpace(rest)
}
