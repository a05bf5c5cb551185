package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/laminakit/lamina/internal/cache"
	"github.com/laminakit/lamina/internal/chunking"
	"github.com/laminakit/lamina/internal/embeddings"
	"github.com/laminakit/lamina/internal/pipeline"
	"github.com/laminakit/lamina/internal/store/sqlite"
)

// initService wires the cache, embedder, store and engine into a service
func initService() (pipeline.Service, error) {
	// Determine data directory
	dir := dataDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".lamina")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// Initialize store
	dbPath := filepath.Join(dir, "lamina.db")
	st, err := sqlite.New(sqlite.Config{Path: dbPath})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	// Initialize embedding cache
	redisURL := os.Getenv("LAMINA_REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	embCache, err := cache.New(cache.Config{
		Backend:  cacheBackend,
		RedisURL: redisURL,
	})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	// Initialize embedder
	embedder, err := embeddings.New(embeddings.Config{
		Provider: embedderName,
		Cache:    embCache,
	})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	// Initialize chunking engine
	engine, err := chunking.NewEngine(chunking.DefaultConfig())
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to initialize chunking engine: %w", err)
	}

	svc := pipeline.NewService(st, embedder, engine, pipeline.Config{
		DefaultCollection: collection,
		DoclingURL:        doclingURL(),
	})

	if verbose {
		fmt.Printf("Data directory: %s\n", dir)
		fmt.Printf("Database: %s\n", dbPath)
		fmt.Printf("Embedding model: %s\n", embedder.Model())
	}

	return svc, nil
}

// doclingURL resolves the parse service URL, preferring the ingest flag
// over the environment
func doclingURL() string {
	if ingestDoclingURL != "" {
		return ingestDoclingURL
	}
	return os.Getenv("LAMINA_DOCLING_URL")
}
