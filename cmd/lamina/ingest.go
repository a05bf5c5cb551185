package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/laminakit/lamina/internal/pipeline"
	"github.com/laminakit/lamina/pkg/types"
	"github.com/spf13/cobra"
)

var (
	ingestTitle      string
	ingestDoclingURL string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>",
	Short: "Ingest a file or directory",
	Long: `Ingest a file or directory: parse it to markdown, chunk it with tables
kept intact, embed the chunks and store everything for search.

Markdown and plain text are parsed locally. PDFs use the built-in text
extractor, or the docling service when --docling-url (or
LAMINA_DOCLING_URL) is set. Office documents and images require docling.

Examples:
  lamina ingest ./report.pdf
  lamina ingest ./docs --collection handbook
  lamina ingest ./scan.png --docling-url http://localhost:8000`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "Document title (single file only, default: filename)")
	ingestCmd.Flags().StringVar(&ingestDoclingURL, "docling-url", "", "Docling parse service URL")
}

// Extensions parsed without the docling sidecar
var localExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".pdf":      true,
}

// Extensions that need the docling sidecar
var doclingOnlyExtensions = map[string]bool{
	".docx": true,
	".xlsx": true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tiff": true,
	".tif":  true,
}

var ignoredDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	path := args[0]

	svc, err := initService()
	if err != nil {
		return err
	}
	defer svc.Close()

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return ingestFile(ctx, svc, path, ingestTitle)
	}

	fmt.Printf("Ingesting %s...\n", path)
	start := time.Now()

	var docs, chunks, tables, skipped int
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if p != path && (ignoredDirs[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !ingestable(p) {
			return nil
		}

		resp, err := svc.Ingest(ctx, types.IngestRequest{
			Path:       p,
			Collection: collection,
		})
		if err != nil {
			fmt.Printf("  skipped %s: %v\n", p, err)
			skipped++
			return nil
		}

		fmt.Printf("  %s: %d chunks (%d tables)\n", p, resp.ChunkCount, resp.TableCount)
		docs++
		chunks += resp.ChunkCount
		tables += resp.TableCount
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk directory: %w", err)
	}

	elapsed := time.Since(start)
	fmt.Printf("\nIngested %d documents (%d chunks, %d tables) in %s\n",
		docs, chunks, tables, elapsed.Round(time.Millisecond))
	if skipped > 0 {
		fmt.Printf("Skipped %d files\n", skipped)
	}

	return nil
}

func ingestFile(ctx context.Context, svc pipeline.Service, path, title string) error {
	fmt.Printf("Ingesting %s...\n", path)
	start := time.Now()

	resp, err := svc.Ingest(ctx, types.IngestRequest{
		Path:       path,
		Collection: collection,
		Title:      title,
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	elapsed := time.Since(start)
	fmt.Printf("Ingested %d chunks (%d tables) in %s\n", resp.ChunkCount, resp.TableCount, elapsed.Round(time.Millisecond))
	fmt.Printf("Document ID: %s\n", resp.Document.ID)

	return nil
}

// ingestable reports whether the walk should attempt this file
func ingestable(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if localExtensions[ext] {
		return true
	}
	return doclingOnlyExtensions[ext] && doclingURL() != ""
}
