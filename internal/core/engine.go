// ABOUTME: Engine composes query expansion, similarity search, and context budgeting
// ABOUTME: BuildContext is the entry point collaborators call per inbound prompt
package core

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/backstage-chat/context-engine/internal/llm"
	"github.com/backstage-chat/context-engine/internal/models"
)

// Embedder is the capability the engine needs from the embedding
// provider. Embed never fails; provider outages degrade to a
// deterministic fallback vector.
type Embedder interface {
	Embed(ctx context.Context, text string) llm.Embedding
}

// Options configure retrieval and budgeting. Zero values fall back to
// the defaults below.
type Options struct {
	SimilarityThreshold float64
	UploadThreshold     float64
	MaxResults          int
	UploadMaxResults    int
	MaxContextChars     int
	QueryVariantLimit   int
}

// Retrieval defaults. Upload chunks use a slightly lower threshold and a
// tighter result cap than conversation turns.
const (
	DefaultSimilarityThreshold = 0.65
	DefaultUploadThreshold     = 0.6
	DefaultMaxResults          = 10
	DefaultUploadMaxResults    = 5
)

func (o Options) withDefaults() Options {
	if o.SimilarityThreshold == 0 {
		o.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if o.UploadThreshold == 0 {
		o.UploadThreshold = DefaultUploadThreshold
	}
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	if o.UploadMaxResults <= 0 {
		o.UploadMaxResults = DefaultUploadMaxResults
	}
	if o.MaxContextChars <= 0 {
		o.MaxContextChars = DefaultMaxContextChars
	}
	if o.QueryVariantLimit <= 0 {
		o.QueryVariantLimit = DefaultVariantLimit
	}
	return o
}

// Engine assembles bounded prompt contexts. Each request owns its own
// corpus snapshot, so independent requests need no coordination.
type Engine struct {
	embedder Embedder
	expander *Expander
	budgeter *Budgeter
	opts     Options
}

// NewEngine creates an Engine with the given embedder and options.
func NewEngine(embedder Embedder, opts Options) *Engine {
	opts = opts.withDefaults()
	return &Engine{
		embedder: embedder,
		expander: NewExpander(opts.QueryVariantLimit),
		budgeter: NewBudgeter(opts.MaxContextChars),
		opts:     opts,
	}
}

// Options returns the engine's effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// ExpandQuery exposes the engine's query expansion.
func (e *Engine) ExpandQuery(prompt string) []string {
	return e.expander.Expand(prompt)
}

// FindRelevantContext expands the prompt into variants, embeds each one,
// searches the corpus per variant, and merges the hits: deduplicated by
// exact text (first occurrence wins), re-sorted by similarity
// descending, truncated to maxResults. Variant embeddings are issued
// concurrently; aggregation order follows variant order, so the result
// is deterministic regardless of completion order.
func (e *Engine) FindRelevantContext(ctx context.Context, prompt string, corpus []models.EmbeddedText, threshold float64, maxResults int) []models.SimilarityResult {
	if prompt == "" || len(corpus) == 0 {
		return nil
	}

	variants := e.expander.Expand(prompt)
	if len(variants) == 0 {
		return nil
	}

	embeddings := make([][]float64, len(variants))
	var wg sync.WaitGroup
	for i, variant := range variants {
		wg.Add(1)
		go func(i int, variant string) {
			defer wg.Done()
			embeddings[i] = e.embedder.Embed(ctx, variant).Vector
		}(i, variant)
	}
	wg.Wait()

	var all []models.SimilarityResult
	for _, embedding := range embeddings {
		all = append(all, Search(embedding, corpus, SearchOptions{
			Threshold:  threshold,
			MaxResults: maxResults,
		})...)
	}

	merged := dedupeResults(all)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Similarity > merged[j].Similarity
	})
	if maxResults > 0 && len(merged) > maxResults {
		merged = merged[:maxResults]
	}
	return merged
}

// BuildContext runs the full pipeline for one inbound prompt: retrieval
// over the turn and upload corpora, then budgeted assembly of the final
// context. Retrieval never fails the request; in the worst case the
// bundle simply carries less context.
func (e *Engine) BuildContext(ctx context.Context, prompt string, turns []models.Turn, chunks []models.UploadChunk) (*models.ContextBundle, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("prompt cannot be empty")
	}

	turnCorpus := turnCorpus(turns)
	uploadCorpus, fileNames := uploadCorpus(chunks)

	turnSnippets := e.FindRelevantContext(ctx, prompt, turnCorpus, e.opts.SimilarityThreshold, e.opts.MaxResults)

	var uploadSnippets []UploadSnippet
	for _, hit := range e.FindRelevantContext(ctx, prompt, uploadCorpus, e.opts.UploadThreshold, e.opts.UploadMaxResults) {
		uploadSnippets = append(uploadSnippets, UploadSnippet{
			SimilarityResult: hit,
			FileName:         fileNames[hit.Text],
		})
	}

	history := chronologicalHistory(turns)

	return e.budgeter.Compose(prompt, history, turnSnippets, uploadSnippets), nil
}

// turnCorpus converts stored turns into a retrieval corpus. Turns with
// missing text or embeddings are left out; Search skips invalid
// embeddings anyway, this just avoids pointless entries.
func turnCorpus(turns []models.Turn) []models.EmbeddedText {
	corpus := make([]models.EmbeddedText, 0, len(turns))
	for _, t := range turns {
		if t.Text == "" || len(t.Embedding) == 0 {
			continue
		}
		corpus = append(corpus, models.EmbeddedText{
			Text:       t.Text,
			Embedding:  t.Embedding,
			SourceID:   t.ID,
			SourceKind: models.SourceTurn,
		})
	}
	return corpus
}

// uploadCorpus converts upload chunks into a retrieval corpus plus a
// text→filename lookup for preamble labeling.
func uploadCorpus(chunks []models.UploadChunk) ([]models.EmbeddedText, map[string]string) {
	corpus := make([]models.EmbeddedText, 0, len(chunks))
	fileNames := make(map[string]string, len(chunks))
	for _, c := range chunks {
		if c.Text == "" || len(c.Embedding) == 0 {
			continue
		}
		corpus = append(corpus, models.EmbeddedText{
			Text:       c.Text,
			Embedding:  c.Embedding,
			SourceID:   c.UploadID,
			SourceKind: models.SourceUploadChunk,
		})
		if _, ok := fileNames[c.Text]; !ok {
			fileNames[c.Text] = c.FileName
		}
	}
	return corpus, fileNames
}

// chronologicalHistory orders turns by fractional index and maps them to
// {role, content} messages. Comments thread into their ordered position.
func chronologicalHistory(turns []models.Turn) []models.Message {
	ordered := make([]models.Turn, len(turns))
	copy(ordered, turns)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].TurnIndex.LessThan(ordered[j].TurnIndex)
	})

	history := make([]models.Message, 0, len(ordered))
	for _, t := range ordered {
		if t.Text == "" {
			continue
		}
		role := models.RoleUser
		if t.Role == models.RoleAssistant {
			role = models.RoleAssistant
		}
		history = append(history, models.Message{Role: role, Content: t.Text})
	}
	return history
}
