// ABOUTME: Centralized configuration for the context engine
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the context engine.
type Config struct {
	// Embedding provider settings
	OpenAIKey      string
	EmbeddingModel string
	ChatModel      string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Retrieval settings
	VectorDimension     int
	SimilarityThreshold float64
	UploadThreshold     float64
	MaxResults          int
	UploadMaxResults    int
	QueryVariantLimit   int
	MaxContextChars     int

	// Storage settings
	DBPath string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
		EmbeddingModel:      getEnv("CONTEXT_EMBEDDING_MODEL", "text-embedding-3-small"),
		ChatModel:           getEnv("CONTEXT_CHAT_MODEL", "gpt-4o-mini"),
		Timeout:             getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:          getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:          getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		VectorDimension:     getEnvInt("VECTOR_DIMENSION", 1536),
		SimilarityThreshold: getEnvFloat("SIMILARITY_THRESHOLD", 0.65),
		UploadThreshold:     getEnvFloat("UPLOAD_SIMILARITY_THRESHOLD", 0.6),
		MaxResults:          getEnvInt("MAX_RESULTS", 10),
		UploadMaxResults:    getEnvInt("UPLOAD_MAX_RESULTS", 5),
		QueryVariantLimit:   getEnvInt("QUERY_VARIANT_LIMIT", 3),
		MaxContextChars:     getEnvInt("MAX_CONTEXT_CHARS", 100000),
		DBPath:              os.Getenv("CONTEXT_DB_PATH"),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.SimilarityThreshold < -1 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be in [-1, 1], got %f", c.SimilarityThreshold)
	}
	if c.UploadThreshold < -1 || c.UploadThreshold > 1 {
		return fmt.Errorf("UPLOAD_SIMILARITY_THRESHOLD must be in [-1, 1], got %f", c.UploadThreshold)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.VectorDimension <= 0 {
		return fmt.Errorf("VECTOR_DIMENSION must be positive, got %d", c.VectorDimension)
	}
	if c.QueryVariantLimit <= 0 {
		return fmt.Errorf("QUERY_VARIANT_LIMIT must be positive, got %d", c.QueryVariantLimit)
	}
	if c.MaxContextChars <= 0 {
		return fmt.Errorf("MAX_CONTEXT_CHARS must be positive, got %d", c.MaxContextChars)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
