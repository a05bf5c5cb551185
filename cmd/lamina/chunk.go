package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/laminakit/lamina/internal/chunking"
	"github.com/laminakit/lamina/pkg/types"
	"github.com/spf13/cobra"
)

var (
	chunkTarget  int
	chunkOverlap int
	chunkJSON    bool
)

var chunkCmd = &cobra.Command{
	Use:   "chunk <file|->",
	Short: "Chunk a file without storing anything",
	Long: `Run the chunking engine on a file (or stdin with "-") and print the
resulting chunks. Nothing is embedded or stored, so this is the fastest
way to tune target and overlap sizes for a corpus.

Examples:
  lamina chunk ./README.md
  lamina chunk ./manual.md --target 300 --overlap 30
  cat notes.txt | lamina chunk - --json`,
	Args: cobra.ExactArgs(1),
	RunE: runChunk,
}

func init() {
	chunkCmd.Flags().IntVar(&chunkTarget, "target", 500, "Target chunk size in tokens")
	chunkCmd.Flags().IntVar(&chunkOverlap, "overlap", 50, "Overlap between adjacent chunks in tokens")
	chunkCmd.Flags().BoolVar(&chunkJSON, "json", false, "Output as JSON")
}

func runChunk(cmd *cobra.Command, args []string) error {
	var content []byte
	var err error

	if args[0] == "-" {
		content, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	} else {
		content, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
	}

	engine, err := chunking.NewEngine(chunking.Config{
		TargetTokens:  chunkTarget,
		OverlapTokens: chunkOverlap,
	})
	if err != nil {
		return err
	}

	start := time.Now()
	chunks := engine.ChunkDocument(string(content), nil)
	elapsed := time.Since(start)

	totalTokens := 0
	for _, chunk := range chunks {
		totalTokens += chunk.TokenCount
	}

	if chunkJSON {
		return printJSON(types.ChunkResponse{
			Chunks:      chunks,
			Count:       len(chunks),
			TotalTokens: totalTokens,
			Timing:      elapsed.Milliseconds(),
		})
	}

	for _, chunk := range chunks {
		fmt.Printf("Chunk %d [%s] page %d, %d tokens\n",
			chunk.ChunkIndex, chunk.ChunkType, chunk.PageNumber, chunk.TokenCount)
		if chunk.ChunkType == types.TypeTable && chunk.Summary != "" {
			fmt.Printf("  %s\n", chunk.Summary)
		}
		fmt.Printf("  %s\n\n", preview(chunk.Content, 120))
	}
	fmt.Printf("%d chunks, %d tokens total (%s)\n", len(chunks), totalTokens, elapsed.Round(time.Millisecond))

	return nil
}

// preview collapses whitespace and truncates for one-line display
func preview(content string, maxLen int) string {
	content = strings.Join(strings.Fields(content), " ")
	return truncate(content, maxLen)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
