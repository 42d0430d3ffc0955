// ABOUTME: QueryExpander turns one prompt into a small set of retrieval variants
// ABOUTME: Strips question prefixes and extracts possessive/"favorite X" phrases
package core

import (
	"regexp"
	"strings"
)

// DefaultVariantLimit caps how many query variants one prompt produces.
const DefaultVariantLimit = 3

// Interrogative prefixes stripped to expose the core query.
var questionPrefixes = []string{
	"what is", "what are", "what was", "what were",
	"who is", "who are", "who was", "who were",
	"where is", "where are", "where was", "where were",
	"when is", "when are", "when was", "when were",
	"why is", "why are", "why was", "why were",
	"how is", "how are", "how was", "how were",
	"do you remember", "can you tell me", "tell me about",
	"do you know", "have i mentioned",
}

var (
	favoriteRe = regexp.MustCompile(`(my\s+)?favorite\s+([a-z]+(?:\s+[a-z]+){0,3})`)
	myRe       = regexp.MustCompile(`my\s+([a-z]+(?:\s+[a-z]+){0,3})`)
)

// Expander generates query variants to broaden retrieval recall. This is
// a deliberate precision/recall heuristic for "remember when I said my
// favorite X is Y" style prompts, not a general NLP parser.
type Expander struct {
	limit int
}

// NewExpander creates an Expander. A non-positive limit falls back to
// DefaultVariantLimit.
func NewExpander(limit int) *Expander {
	if limit <= 0 {
		limit = DefaultVariantLimit
	}
	return &Expander{limit: limit}
}

// Expand returns up to limit variants. The verbatim prompt is always
// first; duplicates are removed preserving first-seen order.
func (e *Expander) Expand(prompt string) []string {
	if strings.TrimSpace(prompt) == "" {
		return nil
	}

	lower := strings.ToLower(prompt)
	variants := []string{prompt}

	// Core query: strip the first matching question prefix.
	for _, prefix := range questionPrefixes {
		if strings.HasPrefix(lower, prefix) {
			if core := strings.TrimSpace(lower[len(prefix):]); core != "" {
				variants = append(variants, core)
			}
			break
		}
	}

	// "(my) favorite <noun phrase>" patterns, kept as full phrases.
	var favorites []string
	for _, m := range favoriteRe.FindAllStringSubmatch(lower, -1) {
		fullPhrase := m[0]
		item := m[2]
		if item == "" {
			continue
		}
		favorites = append(favorites, fullPhrase)
		if strings.HasPrefix(fullPhrase, "my ") {
			favorites = append(favorites, fullPhrase[3:])
		}
		// Too-general items ("dog", "car") stay as full phrases only.
		if len(item) > 3 {
			favorites = append(favorites, "my "+item, "favorite "+item)
		}
	}

	// Generic "my <noun phrase>" patterns not already captured above.
	for _, m := range myRe.FindAllStringSubmatch(lower, -1) {
		fullPhrase := m[0]
		item := m[1]
		if len(item) <= 3 || strings.Contains(fullPhrase, "favorite") {
			continue
		}
		captured := false
		for _, f := range favorites {
			if strings.Contains(f, item) {
				captured = true
				break
			}
		}
		if !captured {
			favorites = append(favorites, fullPhrase)
		}
	}

	variants = append(variants, favorites...)

	return dedupe(variants, e.limit)
}

// dedupe removes exact duplicates preserving first-seen order, then
// truncates to limit.
func dedupe(variants []string, limit int) []string {
	seen := make(map[string]bool, len(variants))
	unique := make([]string, 0, len(variants))
	for _, v := range variants {
		if seen[v] {
			continue
		}
		seen[v] = true
		unique = append(unique, v)
		if len(unique) == limit {
			break
		}
	}
	return unique
}
