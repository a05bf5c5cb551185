// Package pipeline provides the document ingestion and search service
package pipeline

import (
	"context"

	"github.com/laminakit/lamina/internal/store"
	"github.com/laminakit/lamina/pkg/types"
)

// Service orchestrates parsing, chunking, embedding and storage
type Service interface {
	// ChunkText splits raw text into chunks without persisting anything
	ChunkText(ctx context.Context, req types.ChunkRequest) (*types.ChunkResponse, error)

	// Ingest parses a document, chunks it, embeds the chunks and stores
	// the result
	Ingest(ctx context.Context, req types.IngestRequest) (*types.IngestResponse, error)

	// Search finds relevant chunks using semantic search
	Search(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error)

	// GetDocument retrieves a document by ID
	GetDocument(ctx context.Context, id string) (*types.Document, error)

	// GetChunks returns a document's chunks in order
	GetChunks(ctx context.Context, documentID string) ([]*types.StoredChunk, error)

	// ListDocuments returns documents with filtering
	ListDocuments(ctx context.Context, opts store.ListOptions) ([]*types.Document, error)

	// DeleteDocument removes a document and its chunks
	DeleteDocument(ctx context.Context, id string) error

	// Stats returns system statistics
	Stats(ctx context.Context) (*types.StatsResponse, error)

	// Compact reclaims unused storage space
	Compact(ctx context.Context) error

	// Close releases resources
	Close() error
}

// Config configures the pipeline service
type Config struct {
	DefaultCollection string // Collection used when requests leave it empty
	EmbedBatchSize    int    // Batch size for embedding generation
	DoclingURL        string // Parse service base URL, empty for local parsing

	// Search defaults
	DefaultSearchLimit     int
	DefaultSearchThreshold float32
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		DefaultCollection:      "default",
		EmbedBatchSize:         50,
		DefaultSearchLimit:     10,
		DefaultSearchThreshold: 0.5,
	}
}
