package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/laminakit/lamina/internal/cache"
)

func TestOllamaClient_Embed(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("expected model test-model, got %s", req.Model)
		}

		json.NewEncoder(w).Encode(ollamaResponse{
			Embeddings: [][]float32{{0.1, 0.2, 0.3}},
		})
	}))
	defer server.Close()

	client := NewOllamaClient(OllamaConfig{
		BaseURL: server.URL,
		Model:   "test-model",
	})
	defer client.Close()

	embedding, err := client.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("failed to embed: %v", err)
	}
	if len(embedding) != 3 {
		t.Fatalf("expected 3 dimensions, got %d", len(embedding))
	}
	if embedding[0] != float32(0.1) || embedding[1] != float32(0.2) || embedding[2] != float32(0.3) {
		t.Errorf("unexpected embedding: %v", embedding)
	}
	if requests.Load() != 1 {
		t.Errorf("expected 1 request, got %d", requests.Load())
	}
}

func TestOllamaClient_Embed_CacheHit(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		json.NewEncoder(w).Encode(ollamaResponse{
			Embeddings: [][]float32{{0.1, 0.2, 0.3}},
		})
	}))
	defer server.Close()

	c, err := cache.NewLRU(10)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}

	client := NewOllamaClient(OllamaConfig{
		BaseURL: server.URL,
		Model:   "test-model",
		Cache:   c,
	})
	defer client.Close()
	ctx := context.Background()

	first, err := client.Embed(ctx, "hello")
	if err != nil {
		t.Fatalf("failed to embed: %v", err)
	}

	// Second call for the same text should come from the cache
	second, err := client.Embed(ctx, "hello")
	if err != nil {
		t.Fatalf("failed to embed: %v", err)
	}

	if requests.Load() != 1 {
		t.Errorf("expected 1 request, got %d", requests.Load())
	}
	if len(first) != len(second) || first[0] != second[0] {
		t.Errorf("cached embedding differs: %v vs %v", first, second)
	}
}

func TestOllamaClient_Embed_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewOllamaClient(OllamaConfig{BaseURL: server.URL, Model: "missing"})
	defer client.Close()

	if _, err := client.Embed(context.Background(), "hello"); err == nil {
		t.Error("expected error for server failure")
	}
}

func TestOllamaClient_EmbedBatch(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := requests.Add(1)
		json.NewEncoder(w).Encode(ollamaResponse{
			Embeddings: [][]float32{{float32(n), 0}},
		})
	}))
	defer server.Close()

	client := NewOllamaClient(OllamaConfig{BaseURL: server.URL, Model: "test-model"})
	defer client.Close()

	embeddings, err := client.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("failed to embed batch: %v", err)
	}
	if len(embeddings) != 3 {
		t.Fatalf("expected 3 embeddings, got %d", len(embeddings))
	}
	if requests.Load() != 3 {
		t.Errorf("expected 3 requests, got %d", requests.Load())
	}
	for i, emb := range embeddings {
		if len(emb) != 2 {
			t.Errorf("embedding %d: expected 2 dimensions, got %d", i, len(emb))
		}
	}
}

func TestOllamaClient_Defaults(t *testing.T) {
	t.Setenv("LAMINA_OLLAMA_URL", "")
	t.Setenv("LAMINA_EMBED_MODEL", "")

	client := NewOllamaClient(OllamaConfig{})
	defer client.Close()

	if client.Model() != "nomic-embed-text" {
		t.Errorf("expected default model nomic-embed-text, got %s", client.Model())
	}
	if client.Dimensions() != 768 {
		t.Errorf("expected 768 dimensions, got %d", client.Dimensions())
	}
}

func TestOllamaClient_ModelFromEnv(t *testing.T) {
	t.Setenv("LAMINA_EMBED_MODEL", "mxbai-embed-large")

	client := NewOllamaClient(OllamaConfig{})
	defer client.Close()

	if client.Model() != "mxbai-embed-large" {
		t.Errorf("expected model from environment, got %s", client.Model())
	}
}
