package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/laminakit/lamina/pkg/types"
	"github.com/spf13/cobra"
)

var (
	searchLimit     int
	searchThreshold float32
	searchType      string
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search for chunks",
	Long: `Search for relevant chunks using semantic search. The query is converted
to an embedding and compared against stored chunks using cosine similarity.

Examples:
  lamina search "how is authentication handled"
  lamina search "quarterly revenue" --collection finance
  lamina search "staffing numbers" --type table
  lamina search "refund policy" --threshold 0.7 --limit 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "Maximum results to return")
	searchCmd.Flags().Float32VarP(&searchThreshold, "threshold", "t", 0.5, "Minimum similarity threshold (0-1)")
	searchCmd.Flags().StringVar(&searchType, "type", "", "Filter by chunk type (text, table)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	query := strings.Join(args, " ")
	if query == "" {
		return fmt.Errorf("query is required")
	}

	svc, err := initService()
	if err != nil {
		return err
	}
	defer svc.Close()

	req := types.SearchRequest{
		Query:      query,
		Collection: collection,
		Limit:      searchLimit,
		Threshold:  searchThreshold,
	}

	if searchType != "" {
		req.Type = types.ChunkType(searchType)
	}

	resp, err := svc.Search(ctx, req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(resp.Results) == 0 {
		fmt.Println("No results found")
		return nil
	}

	if searchJSON {
		return printJSON(resp)
	}

	fmt.Printf("Found %d results (%dms):\n\n", resp.Total, resp.Timing)

	for i, result := range resp.Results {
		title := result.Document.Title
		if title == "" {
			title = result.Document.Source
		}
		fmt.Printf("%d. [%.2f] %s, page %d %s\n",
			i+1, result.Similarity, title, result.Chunk.PageNumber, formatType(result.Chunk.ChunkType))
		if result.Chunk.ChunkType == types.TypeTable && result.Chunk.Summary != "" {
			fmt.Printf("   %s\n", result.Chunk.Summary)
		}
		fmt.Printf("   %s\n\n", preview(result.Chunk.Content, 200))
	}

	return nil
}

func formatType(t types.ChunkType) string {
	colors := map[types.ChunkType]string{
		types.TypeText:  "\033[37m", // White
		types.TypeTable: "\033[36m", // Cyan
	}
	reset := "\033[0m"
	color := colors[t]
	if color == "" {
		color = "\033[37m"
	}
	return fmt.Sprintf("%s[%s]%s", color, t, reset)
}
