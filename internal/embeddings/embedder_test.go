package embeddings

import (
	"testing"
)

func TestNew_DefaultsToOllama(t *testing.T) {
	embedder, err := New(Config{})
	if err != nil {
		t.Fatalf("failed to create embedder: %v", err)
	}
	defer embedder.Close()

	if _, ok := embedder.(*OllamaClient); !ok {
		t.Errorf("expected Ollama provider, got %T", embedder)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	if _, err := New(Config{Provider: "bedrock"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewOpenAIClient_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := NewOpenAIClient(OpenAIConfig{}); err == nil {
		t.Error("expected error without API key")
	}
}

func TestNewOpenAIClient_Defaults(t *testing.T) {
	client, err := NewOpenAIClient(OpenAIConfig{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer client.Close()

	if client.Model() != "text-embedding-3-small" {
		t.Errorf("expected default model text-embedding-3-small, got %s", client.Model())
	}
	if client.Dimensions() != 1536 {
		t.Errorf("expected 1536 dimensions, got %d", client.Dimensions())
	}
}
