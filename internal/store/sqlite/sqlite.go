// Package sqlite implements the document store on SQLite
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/laminakit/lamina/internal/store"
	"github.com/laminakit/lamina/internal/vectors"
	"github.com/laminakit/lamina/pkg/types"

	_ "github.com/mattn/go-sqlite3"
)

// Store implements store.Store using SQLite with embeddings held in BLOB
// columns and similarity computed in process.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// Config configures the SQLite store
type Config struct {
	Path string // Path to database file
}

// New creates a new SQLite store, creating the file and schema as needed
func New(cfg Config) (*Store, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA cache_size = -32000",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA mmap_size = 268435456",
		"PRAGMA auto_vacuum = INCREMENTAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{db: db, path: cfg.Path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// initSchema creates the database tables
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		collection TEXT NOT NULL,
		source TEXT NOT NULL,
		title TEXT,
		page_count INTEGER NOT NULL DEFAULT 0,
		chunk_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
	CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at);

	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		page_number INTEGER NOT NULL,
		chunk_index INTEGER NOT NULL,
		token_count INTEGER NOT NULL,
		chunk_type TEXT NOT NULL DEFAULT 'text',
		summary TEXT,
		bbox_x REAL,
		bbox_y REAL,
		bbox_width REAL,
		bbox_height REAL,
		embedding BLOB -- little-endian float32 array
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);
	CREATE INDEX IF NOT EXISTS idx_chunks_type ON chunks(chunk_type);

	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := s.db.Exec(schema)
	return err
}

// IngestDocument persists a document and its chunks in one transaction
func (s *Store) IngestDocument(ctx context.Context, doc *types.Document, chunks []*types.StoredChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	doc.ChunkCount = len(chunks)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, collection, source, title, page_count, chunk_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.Collection, doc.Source, doc.Title, doc.PageCount, doc.ChunkCount, doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, content, page_number, chunk_index, token_count,
			chunk_type, summary, bbox_x, bbox_y, bbox_width, bbox_height, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		var bx, by, bw, bh interface{}
		if bb := chunk.BoundingBox; bb != nil {
			bx, by, bw, bh = bb.X, bb.Y, bb.Width, bb.Height
		}

		_, err = stmt.ExecContext(ctx,
			chunk.ID,
			chunk.DocumentID,
			chunk.Content,
			chunk.PageNumber,
			chunk.ChunkIndex,
			chunk.TokenCount,
			string(chunk.ChunkType),
			chunk.Summary,
			bx, by, bw, bh,
			vectors.Encode(chunk.Embedding),
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", chunk.ID, err)
		}
	}

	return tx.Commit()
}

// GetDocument retrieves a document by ID
func (s *Store) GetDocument(ctx context.Context, id string) (*types.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, collection, source, title, page_count, chunk_count, created_at
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// GetChunks returns a document's chunks in chunk-index order
func (s *Store) GetChunks(ctx context.Context, documentID string) ([]*types.StoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, content, page_number, chunk_index, token_count,
			chunk_type, summary, bbox_x, bbox_y, bbox_width, bbox_height, embedding
		FROM chunks WHERE document_id = ? ORDER BY chunk_index
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []*types.StoredChunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// ListDocuments returns documents with filtering and pagination
func (s *Store) ListDocuments(ctx context.Context, opts store.ListOptions) ([]*types.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conditions := []string{"1=1"}
	args := []interface{}{}

	if opts.Collection != "" {
		conditions = append(conditions, "collection = ?")
		args = append(args, opts.Collection)
	}

	order := "ASC"
	if opts.Descending {
		order = "DESC"
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`
		SELECT id, collection, source, title, page_count, chunk_count, created_at
		FROM documents
		WHERE %s
		ORDER BY created_at %s
		LIMIT ? OFFSET ?
	`, strings.Join(conditions, " AND "), order)

	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*types.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document; its chunks go with it via cascade
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("document not found: %s", id)
	}

	return nil
}

// Search ranks stored chunks against the query embedding and returns the
// top matches above the similarity threshold.
func (s *Store) Search(ctx context.Context, embedding []float32, opts store.SearchOptions) ([]types.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conditions := []string{"c.embedding IS NOT NULL"}
	args := []interface{}{}

	if opts.Collection != "" {
		conditions = append(conditions, "d.collection = ?")
		args = append(args, opts.Collection)
	}

	if len(opts.Types) > 0 {
		placeholders := make([]string, len(opts.Types))
		for i, t := range opts.Types {
			placeholders[i] = "?"
			args = append(args, string(t))
		}
		conditions = append(conditions, fmt.Sprintf("c.chunk_type IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf(`
		SELECT c.id, c.document_id, c.content, c.page_number, c.chunk_index, c.token_count,
			c.chunk_type, c.summary, c.bbox_x, c.bbox_y, c.bbox_width, c.bbox_height, c.embedding,
			d.id, d.collection, d.source, d.title, d.page_count, d.chunk_count, d.created_at
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE %s
	`, strings.Join(conditions, " AND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var candidates []types.SearchResult
	var targets [][]float32

	for rows.Next() {
		var c types.StoredChunk
		var d types.Document
		var chunkType string
		var summary, title sql.NullString
		var bx, by, bw, bh sql.NullFloat64
		var emb []byte

		if err := rows.Scan(
			&c.ID, &c.DocumentID, &c.Content, &c.PageNumber, &c.ChunkIndex, &c.TokenCount,
			&chunkType, &summary, &bx, &by, &bw, &bh, &emb,
			&d.ID, &d.Collection, &d.Source, &title, &d.PageCount, &d.ChunkCount, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan search row: %w", err)
		}

		c.ChunkType = types.ChunkType(chunkType)
		c.Summary = summary.String
		if bx.Valid && by.Valid && bw.Valid && bh.Valid {
			c.BoundingBox = &types.BoundingBox{X: bx.Float64, Y: by.Float64, Width: bw.Float64, Height: bh.Float64}
		}
		c.Embedding = vectors.Decode(emb)
		d.Title = title.String

		candidates = append(candidates, types.SearchResult{Chunk: c, Document: d})
		targets = append(targets, c.Embedding)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read search rows: %w", err)
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	scores := make([]float32, len(targets))
	vectors.BatchCosineSimilarity(embedding, targets, scores)

	results := make([]types.SearchResult, 0, len(candidates))
	for i := range candidates {
		if opts.Threshold > 0 && scores[i] < opts.Threshold {
			continue
		}
		candidates[i].Similarity = scores[i]
		results = append(results, candidates[i])
	}

	return topKResults(results, limit), nil
}

// Stats returns storage statistics
func (s *Store) Stats(ctx context.Context) (*types.StatsResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &types.StatsResponse{
		ChunksByType: make(map[string]int),
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&stats.TotalDocuments); err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&stats.TotalChunks); err != nil {
		return nil, fmt.Errorf("failed to count chunks: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT chunk_type, COUNT(*) FROM chunks GROUP BY chunk_type")
	if err != nil {
		return nil, fmt.Errorf("failed to count chunk types: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var chunkType string
		var count int
		if err := rows.Scan(&chunkType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan type count: %w", err)
		}
		stats.ChunksByType[chunkType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT collection) FROM documents").Scan(&stats.CollectionCount); err != nil {
		return nil, fmt.Errorf("failed to count collections: %w", err)
	}

	if info, err := os.Stat(s.path); err == nil {
		stats.StorageBytes = info.Size()
	}

	return stats, nil
}

// Compact optimizes storage
func (s *Store) Compact(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "VACUUM")
	return err
}

// Close releases resources
func (s *Store) Close() error {
	return s.db.Close()
}

// rowScanner lets the scan helpers serve both QueryRow and Query results
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*types.Document, error) {
	var d types.Document
	var title sql.NullString

	err := row.Scan(&d.ID, &d.Collection, &d.Source, &title, &d.PageCount, &d.ChunkCount, &d.CreatedAt)
	if err != nil {
		return nil, err
	}

	d.Title = title.String
	return &d, nil
}

func scanChunk(row rowScanner) (*types.StoredChunk, error) {
	var c types.StoredChunk
	var chunkType string
	var summary sql.NullString
	var bx, by, bw, bh sql.NullFloat64
	var embedding []byte

	err := row.Scan(&c.ID, &c.DocumentID, &c.Content, &c.PageNumber, &c.ChunkIndex,
		&c.TokenCount, &chunkType, &summary, &bx, &by, &bw, &bh, &embedding)
	if err != nil {
		return nil, err
	}

	c.ChunkType = types.ChunkType(chunkType)
	c.Summary = summary.String
	if bx.Valid && by.Valid && bw.Valid && bh.Valid {
		c.BoundingBox = &types.BoundingBox{X: bx.Float64, Y: by.Float64, Width: bw.Float64, Height: bh.Float64}
	}
	c.Embedding = vectors.Decode(embedding)

	return &c, nil
}
