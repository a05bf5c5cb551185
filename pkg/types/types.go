// Package types defines the core data structures for Lamina
package types

import "time"

// Chunk is a retrieval-sized segment of a document, produced by the
// chunking engine and handed to the embedding/storage layer.
type Chunk struct {
	Content     string       `json:"content"`
	PageNumber  int          `json:"page_number"`
	ChunkIndex  int          `json:"chunk_index"`
	BoundingBox *BoundingBox `json:"bounding_box,omitempty"`
	TokenCount  int          `json:"token_count"`
	ChunkType   ChunkType    `json:"chunk_type"`
	Summary     string       `json:"summary,omitempty"` // table chunks only
}

// ChunkType categorizes chunks by how they should be embedded and rendered
type ChunkType string

const (
	TypeText  ChunkType = "text"  // Prose split on semantic boundaries
	TypeTable ChunkType = "table" // Atomic table block, never split
)

// BoundingBox is the physical location of a chunk on its page, when the
// upstream parser reports one. Usually absent.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PageMarker records where a page-boundary marker sits in parsed markdown
type PageMarker struct {
	PageNumber int `json:"page_number"`
	StartIndex int `json:"start_index"`
	EndIndex   int `json:"end_index"`
}

// ParsedDocument is the output of an upstream parser: markdown text with
// embedded page markers plus the marker positions
type ParsedDocument struct {
	Markdown    string       `json:"markdown"`
	PageMarkers []PageMarker `json:"page_markers"`
	PageCount   int          `json:"page_count"`
	Source      string       `json:"source,omitempty"`
}

// Document represents an ingested document and its chunking totals
type Document struct {
	ID         string    `json:"id"`
	Collection string    `json:"collection"`
	Source     string    `json:"source"`
	Title      string    `json:"title,omitempty"`
	PageCount  int       `json:"page_count"`
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// StoredChunk is a chunk persisted under a document, with its embedding
type StoredChunk struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Chunk
	Embedding []float32 `json:"-"`
}

// ChunkRequest is the request payload for chunking raw text without storage
type ChunkRequest struct {
	Content       string       `json:"content"`
	PageMarkers   []PageMarker `json:"page_markers,omitempty"`
	TargetTokens  int          `json:"target_tokens,omitempty"`  // Default 500
	OverlapTokens int          `json:"overlap_tokens,omitempty"` // Default 50
}

// ChunkResponse is the response payload for a chunk-only call
type ChunkResponse struct {
	Chunks      []Chunk `json:"chunks"`
	Count       int     `json:"count"`
	TotalTokens int     `json:"total_tokens"`
	Timing      int64   `json:"timing_ms"`
}

// IngestRequest is the request payload for parsing, chunking and storing
// a document. Either Path or Content must be set.
type IngestRequest struct {
	Path       string `json:"path,omitempty"`
	Content    string `json:"content,omitempty"`
	Collection string `json:"collection"`
	Title      string `json:"title,omitempty"`
}

// IngestResponse reports what an ingest produced
type IngestResponse struct {
	Document   Document `json:"document"`
	ChunkCount int      `json:"chunk_count"`
	TableCount int      `json:"table_count"`
	Timing     int64    `json:"timing_ms"`
}

// SearchRequest is the request payload for semantic search over chunks
type SearchRequest struct {
	Query      string    `json:"query"`
	Collection string    `json:"collection,omitempty"`
	Type       ChunkType `json:"type,omitempty"`
	Limit      int       `json:"limit,omitempty"`
	Threshold  float32   `json:"threshold,omitempty"`
}

// SearchResult represents a chunk match with similarity score
type SearchResult struct {
	Chunk      StoredChunk `json:"chunk"`
	Document   Document    `json:"document"`
	Similarity float32     `json:"similarity"`
}

// SearchResponse is the response payload for search
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Total   int            `json:"total"`
	Timing  int64          `json:"timing_ms"`
}

// StatsResponse contains statistics about the chunk store
type StatsResponse struct {
	TotalDocuments  int            `json:"total_documents"`
	TotalChunks     int            `json:"total_chunks"`
	ChunksByType    map[string]int `json:"chunks_by_type"`
	CollectionCount int            `json:"collection_count"`
	EmbeddingModel  string         `json:"embedding_model"`
	StorageBytes    int64          `json:"storage_bytes"`
}
