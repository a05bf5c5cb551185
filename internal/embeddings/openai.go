package embeddings

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/tiktoken-go/tokenizer"

	"github.com/laminakit/lamina/internal/cache"
)

// maxInputTokens is the input cap for OpenAI embedding models.
const maxInputTokens = 8192

// OpenAIClient generates embeddings through the OpenAI API
type OpenAIClient struct {
	client *openai.Client
	model  string
	dims   int
	enc    tokenizer.Codec
	cache  cache.Cache

	// Stats
	requests atomic.Int64
	latency  atomic.Int64 // cumulative latency in microseconds
}

// OpenAIConfig configures the OpenAI client
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Cache      cache.Cache
}

// DefaultOpenAIConfig returns defaults for text-embedding-3-small
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		APIKey:     os.Getenv("OPENAI_API_KEY"),
		Model:      string(openai.EmbeddingModelTextEmbedding3Small),
		Dimensions: 1536,
	}
}

// NewOpenAIClient creates a new OpenAI embeddings client
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	defaults := DefaultOpenAIConfig()
	if cfg.APIKey == "" {
		cfg.APIKey = defaults.APIKey
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (set OPENAI_API_KEY)")
	}
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = defaults.Dimensions
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	// Token counting is local, so oversized input fails before the call
	enc, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}

	return &OpenAIClient{
		client: &client,
		model:  cfg.Model,
		dims:   cfg.Dimensions,
		enc:    enc,
		cache:  cfg.Cache,
	}, nil
}

// Embed generates an embedding for the given text
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts in a single API call,
// skipping texts already in the cache
func (c *OpenAIClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))

	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if c.cache != nil {
			if embedding, ok, err := c.cache.Get(ctx, cache.Key(c.model, text)); err == nil && ok {
				embeddings[i] = embedding
				continue
			}
		}
		if err := c.checkTokenLimit(text); err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return embeddings, nil
	}

	start := time.Now()

	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: missing,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call OpenAI: %w", err)
	}
	if len(resp.Data) != len(missing) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(missing), len(resp.Data))
	}

	c.requests.Add(1)
	c.latency.Add(time.Since(start).Microseconds())

	for j, data := range resp.Data {
		// OpenAI returns float64, stored vectors are float32
		embedding := make([]float32, len(data.Embedding))
		for k, v := range data.Embedding {
			embedding[k] = float32(v)
		}
		embeddings[missingIdx[j]] = embedding

		if c.cache != nil {
			c.cache.Set(ctx, cache.Key(c.model, missing[j]), embedding)
		}
	}

	return embeddings, nil
}

// checkTokenLimit rejects input over the model's token cap
func (c *OpenAIClient) checkTokenLimit(text string) error {
	ids, _, err := c.enc.Encode(text)
	if err != nil {
		return fmt.Errorf("failed to tokenize: %w", err)
	}
	if len(ids) > maxInputTokens {
		return fmt.Errorf("input is %d tokens, model accepts at most %d", len(ids), maxInputTokens)
	}
	return nil
}

// Dimensions returns the embedding vector dimensions
func (c *OpenAIClient) Dimensions() int {
	return c.dims
}

// Model returns the current embedding model name
func (c *OpenAIClient) Model() string {
	return c.model
}

// Close releases resources
func (c *OpenAIClient) Close() error {
	return nil
}

// Stats returns client statistics
func (c *OpenAIClient) Stats() (requests int64, avgLatencyMs float64, cacheHitRate float64) {
	requests = c.requests.Load()
	if requests > 0 {
		avgLatencyMs = float64(c.latency.Load()) / float64(requests) / 1000
	}
	if c.cache != nil {
		cacheHitRate = c.cache.Stats().HitRate
	}
	return
}
