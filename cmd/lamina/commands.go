package main

import (
	"context"
	"fmt"

	"github.com/laminakit/lamina/internal/store"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Long: `List ingested documents, newest first.

Examples:
  lamina list
  lamina list --collection handbook
  lamina list --limit 50`,
	RunE: runList,
}

var listLimit int

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "Maximum results")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, err := initService()
	if err != nil {
		return err
	}
	defer svc.Close()

	opts := store.ListOptions{
		Collection: collection,
		Limit:      listLimit,
		Descending: true,
	}

	docs, err := svc.ListDocuments(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		fmt.Println("No documents found")
		return nil
	}

	for _, doc := range docs {
		title := doc.Title
		if title == "" {
			title = doc.Source
		}
		fmt.Printf("  %s (%s)\n", title, doc.Collection)
		fmt.Printf("    ID: %s  Pages: %d  Chunks: %d  Added: %s\n\n",
			doc.ID, doc.PageCount, doc.ChunkCount, doc.CreatedAt.Format("2006-01-02 15:04"))
	}

	return nil
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a document",
	Long: `Delete a document and all of its chunks by document ID.

Examples:
  lamina delete 4f9d2c1a-...`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, err := initService()
	if err != nil {
		return err
	}
	defer svc.Close()

	id := args[0]
	if err := svc.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	fmt.Printf("Deleted: %s\n", id)
	return nil
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics",
	Long: `Show statistics about stored documents and chunks.

Examples:
  lamina stats
  lamina stats --compact  # Also reclaim unused storage`,
	RunE: runStats,
}

var statsCompact bool

func init() {
	statsCmd.Flags().BoolVar(&statsCompact, "compact", false, "Compact storage before reporting")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, err := initService()
	if err != nil {
		return err
	}
	defer svc.Close()

	if statsCompact {
		fmt.Println("Compacting storage...")
		if err := svc.Compact(ctx); err != nil {
			return fmt.Errorf("failed to compact storage: %w", err)
		}
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	fmt.Println("Lamina Statistics")
	fmt.Println("─────────────────")
	fmt.Printf("Documents:       %d\n", stats.TotalDocuments)
	fmt.Printf("Chunks:          %d\n", stats.TotalChunks)
	fmt.Printf("Collections:     %d\n", stats.CollectionCount)
	fmt.Printf("Embedding model: %s\n", stats.EmbeddingModel)
	fmt.Printf("Storage size:    %.2f MB\n", float64(stats.StorageBytes)/1024/1024)
	fmt.Println()

	if len(stats.ChunksByType) > 0 {
		fmt.Println("By type:")
		for t, count := range stats.ChunksByType {
			fmt.Printf("  %-15s %d\n", t, count)
		}
	}

	return nil
}
