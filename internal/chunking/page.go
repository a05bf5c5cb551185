package chunking

import (
	"strings"

	"github.com/laminakit/lamina/pkg/types"
)

// chunkPage converts one page of text into chunks. Tables are pulled out
// first and ride through the splitter as placeholder tokens, then every
// segment is scanned left-to-right so each placeholder re-expands into a
// standalone table chunk at its original position, interleaved with the
// surrounding text chunks. The global chunk index threads through as an
// explicit accumulator; the next free index is returned for the caller to
// continue with on the following page.
func chunkPage(pageText string, budget, pageNumber, startIndex int) ([]types.Chunk, int) {
	replaced, tables := extractTables(pageText)
	segments := splitText(replaced, budget, separators)

	var chunks []types.Chunk
	index := startIndex

	appendText := func(text string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		chunks = append(chunks, types.Chunk{
			Content:    text,
			PageNumber: pageNumber,
			ChunkIndex: index,
			TokenCount: EstimateTokens(text),
			ChunkType:  types.TypeText,
		})
		index++
	}

	for _, segment := range segments {
		last := 0
		for _, loc := range placeholderPattern.FindAllStringIndex(segment, -1) {
			table, ok := tables[segment[loc[0]:loc[1]]]
			if !ok {
				// Literal lookalike from the document itself, not
				// one of ours: it stays in the surrounding text.
				continue
			}

			appendText(segment[last:loc[0]])
			chunks = append(chunks, types.Chunk{
				Content:    table.content,
				PageNumber: pageNumber,
				ChunkIndex: index,
				TokenCount: EstimateTokens(table.content),
				ChunkType:  types.TypeTable,
				Summary:    table.summary,
			})
			index++
			last = loc[1]
		}
		appendText(segment[last:])
	}

	return chunks, index
}
