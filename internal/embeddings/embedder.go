// Package embeddings provides vector embedding generation
package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/laminakit/lamina/internal/cache"
)

// Embedder generates vector embeddings from text
type Embedder interface {
	// Embed generates an embedding for a single text
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector dimensions
	Dimensions() int

	// Model returns the model identifier
	Model() string

	// Close releases any resources
	Close() error
}

// Provider names accepted by New.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Config selects and configures an embedding provider
type Config struct {
	Provider   string // "ollama" (default) or "openai"
	BaseURL    string
	Model      string
	APIKey     string // OpenAI only
	Dimensions int
	Timeout    time.Duration
	Cache      cache.Cache // optional, consulted before the network
}

// New creates an embedder for the configured provider
func New(cfg Config) (Embedder, error) {
	switch cfg.Provider {
	case "", ProviderOllama:
		return NewOllamaClient(OllamaConfig{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Timeout:    cfg.Timeout,
			Cache:      cfg.Cache,
		}), nil
	case ProviderOpenAI:
		return NewOpenAIClient(OpenAIConfig{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Cache:      cfg.Cache,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}
