package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/laminakit/lamina/internal/chunking"
	"github.com/laminakit/lamina/internal/store"
	"github.com/laminakit/lamina/pkg/types"
)

func TestService_ChunkText(t *testing.T) {
	svc := newTestService(t, newFakeStore(), &fakeEmbedder{})

	resp, err := svc.ChunkText(context.Background(), types.ChunkRequest{
		Content: "Hello world. This is a short document.",
	})
	if err != nil {
		t.Fatalf("failed to chunk: %v", err)
	}

	if resp.Count != 1 {
		t.Fatalf("expected 1 chunk, got %d", resp.Count)
	}
	if resp.Count != len(resp.Chunks) {
		t.Errorf("count %d does not match %d chunks", resp.Count, len(resp.Chunks))
	}
	if resp.Chunks[0].PageNumber != 1 {
		t.Errorf("expected page 1, got %d", resp.Chunks[0].PageNumber)
	}
	if resp.TotalTokens != resp.Chunks[0].TokenCount {
		t.Errorf("expected total %d, got %d", resp.Chunks[0].TokenCount, resp.TotalTokens)
	}
}

func TestService_ChunkText_CustomTarget(t *testing.T) {
	svc := newTestService(t, newFakeStore(), &fakeEmbedder{})
	content := strings.TrimSpace(strings.Repeat("alpha beta gamma delta. ", 100))

	resp, err := svc.ChunkText(context.Background(), types.ChunkRequest{
		Content:      content,
		TargetTokens: 100,
	})
	if err != nil {
		t.Fatalf("failed to chunk: %v", err)
	}
	if resp.Count < 2 {
		t.Errorf("expected multiple chunks for a small target, got %d", resp.Count)
	}
}

func TestService_ChunkText_InvalidOverride(t *testing.T) {
	svc := newTestService(t, newFakeStore(), &fakeEmbedder{})

	_, err := svc.ChunkText(context.Background(), types.ChunkRequest{
		Content:       "some text",
		TargetTokens:  10,
		OverlapTokens: 20,
	})
	if err == nil {
		t.Error("expected error when overlap exceeds target")
	}
}

func TestService_ChunkText_Empty(t *testing.T) {
	svc := newTestService(t, newFakeStore(), &fakeEmbedder{})

	if _, err := svc.ChunkText(context.Background(), types.ChunkRequest{}); err == nil {
		t.Error("expected error for empty content")
	}
}

func TestService_Ingest_Content(t *testing.T) {
	st := newFakeStore()
	emb := &fakeEmbedder{}
	svc := newTestService(t, st, emb)

	resp, err := svc.Ingest(context.Background(), types.IngestRequest{
		Content: "Some prose for the first paragraph.\n\nMore prose for the second.",
	})
	if err != nil {
		t.Fatalf("failed to ingest: %v", err)
	}

	if resp.Document.ID == "" {
		t.Error("expected a document ID")
	}
	if resp.Document.Collection != "default" {
		t.Errorf("expected default collection, got %s", resp.Document.Collection)
	}
	if resp.Document.Source != "inline" {
		t.Errorf("expected inline source, got %s", resp.Document.Source)
	}
	if resp.ChunkCount < 1 {
		t.Fatalf("expected chunks, got %d", resp.ChunkCount)
	}

	doc, err := st.GetDocument(context.Background(), resp.Document.ID)
	if err != nil {
		t.Fatalf("document not stored: %v", err)
	}
	if doc.ChunkCount != resp.ChunkCount {
		t.Errorf("expected chunk count %d, got %d", resp.ChunkCount, doc.ChunkCount)
	}

	chunks, _ := st.GetChunks(context.Background(), resp.Document.ID)
	if len(chunks) != resp.ChunkCount {
		t.Fatalf("expected %d stored chunks, got %d", resp.ChunkCount, len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.DocumentID != resp.Document.ID {
			t.Errorf("chunk %d: wrong document ID %s", i, chunk.DocumentID)
		}
		// The fake embedder returns (3, 4, 0); stored vectors must be
		// normalized to unit length
		if len(chunk.Embedding) != 3 || chunk.Embedding[0] != 0.6 || chunk.Embedding[1] != 0.8 {
			t.Errorf("chunk %d: embedding not normalized: %v", i, chunk.Embedding)
		}
	}
}

func TestService_Ingest_TableSummaryEmbedded(t *testing.T) {
	st := newFakeStore()
	emb := &fakeEmbedder{}
	svc := newTestService(t, st, emb)

	content := "Intro paragraph.\n\n| Name | Age |\n|------|-----|\n| Ann | 30 |\n| Bob | 25 |\n\nClosing paragraph."

	resp, err := svc.Ingest(context.Background(), types.IngestRequest{Content: content})
	if err != nil {
		t.Fatalf("failed to ingest: %v", err)
	}

	if resp.ChunkCount != 3 {
		t.Fatalf("expected 3 chunks, got %d", resp.ChunkCount)
	}
	if resp.TableCount != 1 {
		t.Errorf("expected 1 table, got %d", resp.TableCount)
	}

	// The table chunk embeds its summary, never the raw markup
	summary := "Table with 2 rows and 2 columns. Columns: Name, Age"
	foundSummary := false
	for _, text := range emb.texts {
		if text == summary {
			foundSummary = true
		}
		if strings.Contains(text, "| Ann |") {
			t.Errorf("raw table markup was embedded: %q", text)
		}
	}
	if !foundSummary {
		t.Errorf("table summary was not embedded, texts: %q", emb.texts)
	}

	// The stored chunk keeps the raw table for display
	chunks, _ := st.GetChunks(context.Background(), resp.Document.ID)
	var table *types.StoredChunk
	for _, chunk := range chunks {
		if chunk.ChunkType == types.TypeTable {
			table = chunk
		}
	}
	if table == nil {
		t.Fatal("expected a stored table chunk")
	}
	if !strings.Contains(table.Content, "| Ann | 30 |") {
		t.Errorf("stored table lost its markup: %q", table.Content)
	}
	if table.Summary != summary {
		t.Errorf("expected summary %q, got %q", summary, table.Summary)
	}
}

func TestService_Ingest_FromFile(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(t, st, &fakeEmbedder{})

	path := filepath.Join(t.TempDir(), "guide.md")
	if err := os.WriteFile(path, []byte("# Guide\n\nSome content."), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	resp, err := svc.Ingest(context.Background(), types.IngestRequest{Path: path})
	if err != nil {
		t.Fatalf("failed to ingest: %v", err)
	}

	if resp.Document.Source != path {
		t.Errorf("expected source %s, got %s", path, resp.Document.Source)
	}
	if resp.Document.Title != "guide.md" {
		t.Errorf("expected title from filename, got %q", resp.Document.Title)
	}
}

func TestService_Ingest_MissingInput(t *testing.T) {
	svc := newTestService(t, newFakeStore(), &fakeEmbedder{})

	if _, err := svc.Ingest(context.Background(), types.IngestRequest{}); err == nil {
		t.Error("expected error without path or content")
	}
}

func TestService_Ingest_EmbedFailureStoresNothing(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(t, st, &fakeEmbedder{fail: true})

	_, err := svc.Ingest(context.Background(), types.IngestRequest{Content: "Some content."})
	if err == nil {
		t.Fatal("expected error from failing embedder")
	}
	if len(st.docs) != 0 {
		t.Errorf("expected nothing stored after a failed ingest, got %d documents", len(st.docs))
	}
}

func TestService_Search(t *testing.T) {
	st := newFakeStore()
	st.results = []types.SearchResult{
		{Chunk: types.StoredChunk{ID: "c1"}, Similarity: 0.9},
		{Chunk: types.StoredChunk{ID: "c2"}, Similarity: 0.7},
	}
	svc := newTestService(t, st, &fakeEmbedder{})

	resp, err := svc.Search(context.Background(), types.SearchRequest{Query: "what is lamina"})
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}

	if resp.Total != 2 {
		t.Errorf("expected 2 results, got %d", resp.Total)
	}
	if st.searchOpts.Limit != 10 {
		t.Errorf("expected default limit 10, got %d", st.searchOpts.Limit)
	}
	if st.searchOpts.Threshold != 0.5 {
		t.Errorf("expected default threshold 0.5, got %f", st.searchOpts.Threshold)
	}
}

func TestService_Search_Options(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(t, st, &fakeEmbedder{})

	_, err := svc.Search(context.Background(), types.SearchRequest{
		Query:      "tables about revenue",
		Collection: "reports",
		Type:       types.TypeTable,
		Limit:      3,
		Threshold:  0.8,
	})
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}

	if st.searchOpts.Collection != "reports" {
		t.Errorf("expected collection reports, got %s", st.searchOpts.Collection)
	}
	if len(st.searchOpts.Types) != 1 || st.searchOpts.Types[0] != types.TypeTable {
		t.Errorf("expected table type filter, got %v", st.searchOpts.Types)
	}
	if st.searchOpts.Limit != 3 {
		t.Errorf("expected limit 3, got %d", st.searchOpts.Limit)
	}
	if st.searchOpts.Threshold != 0.8 {
		t.Errorf("expected threshold 0.8, got %f", st.searchOpts.Threshold)
	}
}

func TestService_Search_EmptyQuery(t *testing.T) {
	svc := newTestService(t, newFakeStore(), &fakeEmbedder{})

	if _, err := svc.Search(context.Background(), types.SearchRequest{}); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestService_Stats(t *testing.T) {
	svc := newTestService(t, newFakeStore(), &fakeEmbedder{})

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}
	if stats.EmbeddingModel != "fake-model" {
		t.Errorf("expected embedder model in stats, got %q", stats.EmbeddingModel)
	}
}

func TestService_DeleteDocument(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(t, st, &fakeEmbedder{})

	resp, err := svc.Ingest(context.Background(), types.IngestRequest{Content: "Short doc."})
	if err != nil {
		t.Fatalf("failed to ingest: %v", err)
	}

	if err := svc.DeleteDocument(context.Background(), resp.Document.ID); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if _, err := svc.GetDocument(context.Background(), resp.Document.ID); err == nil {
		t.Error("expected error after delete")
	}
}

// Helper functions

func newTestService(t *testing.T, st store.Store, emb *fakeEmbedder) Service {
	t.Helper()
	engine, err := chunking.NewEngine(chunking.DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return NewService(st, emb, engine, Config{})
}

// fakeEmbedder returns a fixed vector and records what it embeds
type fakeEmbedder struct {
	texts []string
	fail  bool
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if f.fail {
		return nil, fmt.Errorf("embedder unavailable")
	}
	f.texts = append(f.texts, texts...)

	vecs := make([][]float32, len(texts))
	for i := range vecs {
		vecs[i] = []float32{3, 4, 0}
	}
	return vecs, nil
}

func (f *fakeEmbedder) Dimensions() int { return 3 }
func (f *fakeEmbedder) Model() string   { return "fake-model" }
func (f *fakeEmbedder) Close() error    { return nil }

// fakeStore keeps documents in memory and records search options
type fakeStore struct {
	docs       map[string]*types.Document
	chunks     map[string][]*types.StoredChunk
	results    []types.SearchResult
	searchOpts store.SearchOptions
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs:   make(map[string]*types.Document),
		chunks: make(map[string][]*types.StoredChunk),
	}
}

func (f *fakeStore) IngestDocument(_ context.Context, doc *types.Document, chunks []*types.StoredChunk) error {
	doc.ChunkCount = len(chunks)
	f.docs[doc.ID] = doc
	f.chunks[doc.ID] = chunks
	return nil
}

func (f *fakeStore) GetDocument(_ context.Context, id string) (*types.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("document not found: %s", id)
	}
	return doc, nil
}

func (f *fakeStore) GetChunks(_ context.Context, documentID string) ([]*types.StoredChunk, error) {
	return f.chunks[documentID], nil
}

func (f *fakeStore) ListDocuments(_ context.Context, _ store.ListOptions) ([]*types.Document, error) {
	docs := make([]*types.Document, 0, len(f.docs))
	for _, doc := range f.docs {
		docs = append(docs, doc)
	}
	return docs, nil
}

func (f *fakeStore) DeleteDocument(_ context.Context, id string) error {
	if _, ok := f.docs[id]; !ok {
		return fmt.Errorf("document not found: %s", id)
	}
	delete(f.docs, id)
	delete(f.chunks, id)
	return nil
}

func (f *fakeStore) Search(_ context.Context, _ []float32, opts store.SearchOptions) ([]types.SearchResult, error) {
	f.searchOpts = opts
	return f.results, nil
}

func (f *fakeStore) Stats(_ context.Context) (*types.StatsResponse, error) {
	return &types.StatsResponse{TotalDocuments: len(f.docs)}, nil
}

func (f *fakeStore) Compact(_ context.Context) error { return nil }

func (f *fakeStore) Close() error { return nil }
