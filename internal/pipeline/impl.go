// Package pipeline provides the core service implementation
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/laminakit/lamina/internal/chunking"
	"github.com/laminakit/lamina/internal/embeddings"
	"github.com/laminakit/lamina/internal/parser"
	"github.com/laminakit/lamina/internal/store"
	"github.com/laminakit/lamina/internal/vectors"
	"github.com/laminakit/lamina/pkg/types"
)

// serviceImpl implements the Service interface
type serviceImpl struct {
	store    store.Store
	embedder embeddings.Embedder
	engine   *chunking.Engine
	config   Config
	logger   *slog.Logger
}

// NewService creates a new pipeline service
func NewService(st store.Store, emb embeddings.Embedder, engine *chunking.Engine, cfg Config) Service {
	defaults := DefaultConfig()
	if cfg.DefaultCollection == "" {
		cfg.DefaultCollection = defaults.DefaultCollection
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = defaults.EmbedBatchSize
	}
	if cfg.DefaultSearchLimit <= 0 {
		cfg.DefaultSearchLimit = defaults.DefaultSearchLimit
	}
	if cfg.DefaultSearchThreshold <= 0 {
		cfg.DefaultSearchThreshold = defaults.DefaultSearchThreshold
	}

	return &serviceImpl{
		store:    st,
		embedder: emb,
		engine:   engine,
		config:   cfg,
		logger:   slog.Default().With("component", "pipeline"),
	}
}

// ChunkText splits raw text into chunks without persisting anything
func (s *serviceImpl) ChunkText(ctx context.Context, req types.ChunkRequest) (*types.ChunkResponse, error) {
	start := time.Now()

	if req.Content == "" {
		return nil, fmt.Errorf("content is required")
	}

	engine := s.engine
	if req.TargetTokens > 0 || req.OverlapTokens > 0 {
		cfg := chunking.DefaultConfig()
		if req.TargetTokens > 0 {
			cfg.TargetTokens = req.TargetTokens
		}
		if req.OverlapTokens > 0 {
			cfg.OverlapTokens = req.OverlapTokens
		}

		var err error
		engine, err = chunking.NewEngine(cfg)
		if err != nil {
			return nil, fmt.Errorf("invalid chunking config: %w", err)
		}
	}

	chunks := engine.ChunkDocument(req.Content, req.PageMarkers)

	totalTokens := 0
	for _, chunk := range chunks {
		totalTokens += chunk.TokenCount
	}

	return &types.ChunkResponse{
		Chunks:      chunks,
		Count:       len(chunks),
		TotalTokens: totalTokens,
		Timing:      time.Since(start).Milliseconds(),
	}, nil
}

// Ingest parses a document, chunks it, embeds the chunks and stores the
// result. The document and its chunks land in one transaction, so a
// failure anywhere leaves nothing behind.
func (s *serviceImpl) Ingest(ctx context.Context, req types.IngestRequest) (*types.IngestResponse, error) {
	start := time.Now()

	if req.Path == "" && req.Content == "" {
		return nil, fmt.Errorf("path or content is required")
	}

	collection := req.Collection
	if collection == "" {
		collection = s.config.DefaultCollection
	}

	parsed, err := s.parse(ctx, req)
	if err != nil {
		return nil, err
	}

	chunks := s.engine.ChunkDocument(parsed.Markdown, parsed.PageMarkers)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document produced no chunks")
	}

	doc := &types.Document{
		ID:         uuid.New().String(),
		Collection: collection,
		Source:     parsed.Source,
		Title:      req.Title,
		PageCount:  parsed.PageCount,
		CreatedAt:  time.Now(),
	}
	if doc.Title == "" && parsed.Source != inlineSource {
		doc.Title = filepath.Base(parsed.Source)
	}

	stored, tableCount, err := s.embedChunks(ctx, doc.ID, chunks)
	if err != nil {
		return nil, err
	}

	if err := s.store.IngestDocument(ctx, doc, stored); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	s.logger.Info("ingested document",
		"id", doc.ID,
		"source", doc.Source,
		"collection", collection,
		"chunks", len(stored),
		"tables", tableCount,
		"duration_ms", time.Since(start).Milliseconds())

	return &types.IngestResponse{
		Document:   *doc,
		ChunkCount: len(stored),
		TableCount: tableCount,
		Timing:     time.Since(start).Milliseconds(),
	}, nil
}

// inlineSource marks documents ingested from raw content instead of a file.
const inlineSource = "inline"

// parse resolves the request into parsed markdown, either from a file
// path or from raw content
func (s *serviceImpl) parse(ctx context.Context, req types.IngestRequest) (*types.ParsedDocument, error) {
	if req.Content != "" {
		return &types.ParsedDocument{
			Markdown:  req.Content,
			PageCount: 1,
			Source:    inlineSource,
		}, nil
	}

	// Expand ~ to home directory
	path := req.Path
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	p, err := parser.ForFile(path, parser.Config{DoclingURL: s.config.DoclingURL})
	if err != nil {
		return nil, err
	}

	parsed, err := p.Parse(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return parsed, nil
}

// embedChunks generates embeddings in batches and wraps the chunks for
// storage. Table chunks embed their natural-language summary so plain
// queries can find them.
func (s *serviceImpl) embedChunks(ctx context.Context, docID string, chunks []types.Chunk) ([]*types.StoredChunk, int, error) {
	stored := make([]*types.StoredChunk, 0, len(chunks))
	tableCount := 0

	for i := 0; i < len(chunks); i += s.config.EmbedBatchSize {
		end := i + s.config.EmbedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		batch := chunks[i:end]
		texts := make([]string, len(batch))
		for j, chunk := range batch {
			texts[j] = embeddingText(chunk)
		}

		vecs, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to generate embeddings: %w", err)
		}

		for j, chunk := range batch {
			vectors.Normalize(vecs[j])
			if chunk.ChunkType == types.TypeTable {
				tableCount++
			}
			stored = append(stored, &types.StoredChunk{
				ID:         uuid.New().String(),
				DocumentID: docID,
				Chunk:      chunk,
				Embedding:  vecs[j],
			})
		}
	}

	return stored, tableCount, nil
}

// embeddingText picks what to embed for a chunk
func embeddingText(chunk types.Chunk) string {
	if chunk.ChunkType == types.TypeTable && chunk.Summary != "" {
		return chunk.Summary
	}
	return chunk.Content
}

// Search finds relevant chunks using semantic search
func (s *serviceImpl) Search(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error) {
	start := time.Now()

	if req.Query == "" {
		return nil, fmt.Errorf("query is required")
	}

	queryEmbedding, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}
	vectors.Normalize(queryEmbedding)

	limit := req.Limit
	if limit <= 0 {
		limit = s.config.DefaultSearchLimit
	}

	threshold := req.Threshold
	if threshold <= 0 {
		threshold = s.config.DefaultSearchThreshold
	}

	opts := store.SearchOptions{
		Collection: req.Collection,
		Limit:      limit,
		Threshold:  threshold,
	}
	if req.Type != "" {
		opts.Types = []types.ChunkType{req.Type}
	}

	results, err := s.store.Search(ctx, queryEmbedding, opts)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	return &types.SearchResponse{
		Results: results,
		Total:   len(results),
		Timing:  time.Since(start).Milliseconds(),
	}, nil
}

// GetDocument retrieves a document by ID
func (s *serviceImpl) GetDocument(ctx context.Context, id string) (*types.Document, error) {
	return s.store.GetDocument(ctx, id)
}

// GetChunks returns a document's chunks in order
func (s *serviceImpl) GetChunks(ctx context.Context, documentID string) ([]*types.StoredChunk, error) {
	return s.store.GetChunks(ctx, documentID)
}

// ListDocuments returns documents with filtering
func (s *serviceImpl) ListDocuments(ctx context.Context, opts store.ListOptions) ([]*types.Document, error) {
	return s.store.ListDocuments(ctx, opts)
}

// DeleteDocument removes a document and its chunks
func (s *serviceImpl) DeleteDocument(ctx context.Context, id string) error {
	if err := s.store.DeleteDocument(ctx, id); err != nil {
		return err
	}
	s.logger.Info("deleted document", "id", id)
	return nil
}

// Stats returns system statistics
func (s *serviceImpl) Stats(ctx context.Context) (*types.StatsResponse, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	stats.EmbeddingModel = s.embedder.Model()
	return stats, nil
}

// Compact reclaims unused storage space
func (s *serviceImpl) Compact(ctx context.Context) error {
	return s.store.Compact(ctx)
}

// Close releases resources
func (s *serviceImpl) Close() error {
	if err := s.embedder.Close(); err != nil {
		return err
	}
	return s.store.Close()
}
