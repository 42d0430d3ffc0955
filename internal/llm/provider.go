// ABOUTME: Embedding and completion provider backed by the OpenAI API
// ABOUTME: Degrades to a deterministic fallback embedding on any provider failure
package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/backstage-chat/context-engine/internal/models"
	"github.com/backstage-chat/context-engine/internal/util"
	"github.com/backstage-chat/context-engine/internal/vector"
)

// Source tags where an embedding came from. The public contract returns
// a plain vector either way; the tag exists for tests and observability.
type Source string

const (
	SourceProvider Source = "provider"
	SourceFallback Source = "fallback"
	SourceZero     Source = "zero"
)

// Embedding is a dimension-normalized vector plus its provenance.
type Embedding struct {
	Vector []float64
	Source Source
}

// Config holds provider credentials and call settings.
type Config struct {
	APIKey         string
	EmbeddingModel string
	ChatModel      string
	Dimension      int
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// DefaultConfig returns sensible call settings for the given API key.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:         apiKey,
		EmbeddingModel: "text-embedding-3-small",
		ChatModel:      "gpt-4o-mini",
		Dimension:      vector.Dimension,
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,
	}
}

// Provider turns text into fixed-dimension vectors and runs chat
// completions. Configuration may be hot-swapped between requests;
// in-flight calls keep the configuration they started with.
type Provider struct {
	mu     sync.RWMutex
	cfg    Config
	client *openai.Client
}

// NewProvider creates a provider. An empty API key is allowed: every
// Embed call then uses the deterministic fallback, and Complete fails.
func NewProvider(cfg Config) *Provider {
	p := &Provider{}
	p.Configure(cfg)
	return p
}

// Configure replaces the provider configuration. Takes effect on the
// next call only.
func (p *Provider) Configure(cfg Config) {
	if cfg.Dimension <= 0 {
		cfg.Dimension = vector.Dimension
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	var client *openai.Client
	if cfg.APIKey != "" {
		client = openai.NewClient(cfg.APIKey)
	}
	p.mu.Lock()
	p.cfg = cfg
	p.client = client
	p.mu.Unlock()
}

// Dimension returns the currently configured embedding dimension.
func (p *Provider) Dimension() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg.Dimension
}

func (p *Provider) snapshot() (Config, *openai.Client) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg, p.client
}

// Embed returns a vector for the text. It never fails: empty input
// yields the zero vector, and any provider-side failure (network, auth,
// quota, timeout) degrades to the deterministic fallback. Callers that
// care about provenance can inspect the Source tag.
func (p *Provider) Embed(ctx context.Context, text string) Embedding {
	cfg, client := p.snapshot()

	if strings.TrimSpace(text) == "" {
		return Embedding{Vector: vector.Zero(cfg.Dimension), Source: SourceZero}
	}

	if client == nil {
		return Embedding{Vector: DeterministicEmbedding(text, cfg.Dimension), Source: SourceFallback}
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(util.CalculateBackoff(cfg.RetryDelay, attempt)):
			case <-ctx.Done():
				lastErr = ctx.Err()
				attempt = cfg.MaxRetries // stop retrying
				continue
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		resp, err := client.CreateEmbeddings(callCtx, openai.EmbeddingRequestStrings{
			Input:      []string{text},
			Model:      openai.EmbeddingModel(cfg.EmbeddingModel),
			Dimensions: cfg.Dimension,
		})
		cancel()

		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}
		if len(resp.Data) == 0 {
			lastErr = fmt.Errorf("attempt %d: no embeddings returned", attempt+1)
			continue
		}

		raw := resp.Data[0].Embedding
		embedding := make([]float64, len(raw))
		for i, v := range raw {
			embedding[i] = float64(v)
		}
		return Embedding{
			Vector: vector.NormalizeDimension(embedding, cfg.Dimension),
			Source: SourceProvider,
		}
	}

	log.Warn("embedding provider failed, using deterministic fallback",
		"text_len", len(text), "err", lastErr)
	return Embedding{Vector: DeterministicEmbedding(text, cfg.Dimension), Source: SourceFallback}
}

// Complete runs a chat completion with the given system message and
// ordered history. This is the opaque text-completion capability the
// engine hands its assembled context to.
func (p *Provider) Complete(ctx context.Context, systemMessage string, messages []models.Message) (string, error) {
	cfg, client := p.snapshot()
	if client == nil {
		return "", fmt.Errorf("completion provider not configured")
	}

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	chatMessages = append(chatMessages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemMessage,
	})
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		if m.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(util.CalculateBackoff(cfg.RetryDelay, attempt)):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		resp, err := client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model:       cfg.ChatModel,
			Messages:    chatMessages,
			Temperature: 0.3,
			TopP:        0.7,
		})
		cancel()

		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("attempt %d: no completion choices returned", attempt+1)
			continue
		}
		return resp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("completion failed after %d attempts: %w", cfg.MaxRetries+1, lastErr)
}
