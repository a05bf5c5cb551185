// Lamina - A local-first document chunking and semantic search engine
// Parses documents into page-aware chunks and serves vector search over them
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is set at build time
	Version = "dev"

	// Global flags
	dataDir      string
	collection   string
	verbose      bool
	embedderName string
	cacheBackend string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lamina",
	Short: "Local-first document chunking and semantic search",
	Long: `Lamina ingests documents (markdown, text, PDF, and anything a docling
sidecar can parse), splits them into retrieval-sized chunks that respect
sentence boundaries and keep tables intact, embeds the chunks, and serves
semantic search over SQLite.

It runs entirely on your machine using local embeddings (Ollama) by
default, with an optional OpenAI backend.

Examples:
  # Ingest a document into a collection
  lamina ingest ./report.pdf --collection finance

  # Ingest a whole directory
  lamina ingest ./docs

  # Search across everything
  lamina search "quarterly revenue by region"

  # Inspect how a file would be chunked, without storing anything
  lamina chunk ./README.md --target 300

  # Start the HTTP API
  lamina serve --port 8080`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (default: ~/.lamina)")
	rootCmd.PersistentFlags().StringVarP(&collection, "collection", "c", "", "Collection name (default: \"default\")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&embedderName, "embedder", "", "Embedding provider: ollama or openai (default: ollama)")
	rootCmd.PersistentFlags().StringVar(&cacheBackend, "cache", "", "Embedding cache backend: lru or redis (default: lru)")

	// Add subcommands
	rootCmd.AddCommand(chunkCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("lamina %s\n", Version)
	},
}
