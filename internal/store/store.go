// Package store defines the persistence interface for documents, chunks,
// and vector search.
package store

import (
	"context"

	"github.com/laminakit/lamina/pkg/types"
)

// Store handles persistence of ingested documents and their chunks
type Store interface {
	// IngestDocument persists a document and all of its chunks in one
	// transaction, so a failed ingest leaves nothing behind
	IngestDocument(ctx context.Context, doc *types.Document, chunks []*types.StoredChunk) error

	// GetDocument retrieves a document by ID
	GetDocument(ctx context.Context, id string) (*types.Document, error)

	// GetChunks returns a document's chunks in chunk-index order
	GetChunks(ctx context.Context, documentID string) ([]*types.StoredChunk, error)

	// ListDocuments returns documents with filtering and pagination
	ListDocuments(ctx context.Context, opts ListOptions) ([]*types.Document, error)

	// DeleteDocument removes a document and, through cascade, its chunks
	DeleteDocument(ctx context.Context, id string) error

	// Search ranks stored chunks against a query embedding
	Search(ctx context.Context, embedding []float32, opts SearchOptions) ([]types.SearchResult, error)

	// Stats returns storage statistics
	Stats(ctx context.Context) (*types.StatsResponse, error)

	// Compact optimizes storage (VACUUM)
	Compact(ctx context.Context) error

	// Close releases resources
	Close() error
}

// SearchOptions configures vector search
type SearchOptions struct {
	Collection string            // Restrict to one collection; empty searches all
	Types      []types.ChunkType // Restrict to chunk types; empty allows all
	Limit      int               // Maximum results, default 10
	Threshold  float32           // Minimum similarity score (0-1)
}

// ListOptions configures document listing
type ListOptions struct {
	Collection string
	Limit      int
	Offset     int
	Descending bool // Newest first when set
}
