// ABOUTME: Main entry point for the context engine MCP server with stdio transport
// ABOUTME: Initializes storage, the embedding provider, and the assembly engine
package main

import (
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/backstage-chat/context-engine/internal/config"
	"github.com/backstage-chat/context-engine/internal/core"
	"github.com/backstage-chat/context-engine/internal/llm"
	"github.com/backstage-chat/context-engine/internal/mcp"
	"github.com/backstage-chat/context-engine/internal/storage"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", "error", err)
	}
	if cfg.OpenAIKey == "" {
		log.Warn("OPENAI_API_KEY not set - embeddings fall back to deterministic vectors")
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = storage.DefaultDBPath()
	}
	store, err := storage.NewStorageWithPath(dbPath)
	if err != nil {
		log.Fatal("failed to initialize storage", "error", err)
	}
	defer func() { _ = store.Close() }()

	provider := llm.NewProvider(llm.Config{
		APIKey:         cfg.OpenAIKey,
		EmbeddingModel: cfg.EmbeddingModel,
		ChatModel:      cfg.ChatModel,
		Dimension:      cfg.VectorDimension,
		Timeout:        cfg.Timeout,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	})

	engine := core.NewEngine(provider, core.Options{
		SimilarityThreshold: cfg.SimilarityThreshold,
		UploadThreshold:     cfg.UploadThreshold,
		MaxResults:          cfg.MaxResults,
		UploadMaxResults:    cfg.UploadMaxResults,
		MaxContextChars:     cfg.MaxContextChars,
		QueryVariantLimit:   cfg.QueryVariantLimit,
	})

	server := mcpserver.NewMCPServer(
		"Context Assembly Engine",
		"0.1.0",
	)

	mcp.RegisterTools(server, store, engine, provider)

	log.Info("context engine MCP server starting on stdio", "db", store.Path())
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatal("server error", "error", err)
	}
}
