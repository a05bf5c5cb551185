package chunking

import (
	"strings"

	"github.com/laminakit/lamina/pkg/types"
)

// addOverlap prepends the tail of each text chunk to the text chunk that
// follows it, so embeddings keep short-range context across boundaries.
// Table chunks neither give nor receive overlap. Chunks are mutated in
// place and every token count is recomputed from the final content. Fewer
// than two chunks, or a non-positive overlap, is a no-op.
func addOverlap(chunks []types.Chunk, overlapChars int) {
	if overlapChars <= 0 || len(chunks) < 2 {
		return
	}

	for i := 1; i < len(chunks); i++ {
		if chunks[i].ChunkType != types.TypeText || chunks[i-1].ChunkType != types.TypeText {
			continue
		}

		overlap := overlapTail(chunks[i-1].Content, overlapChars)
		if overlap == "" || strings.HasPrefix(chunks[i].Content, overlap) {
			continue
		}
		chunks[i].Content = overlap + "\n\n" + chunks[i].Content
	}

	for i := range chunks {
		chunks[i].TokenCount = EstimateTokens(chunks[i].Content)
	}
}

// overlapTail returns the trailing window of content carried forward into
// the next chunk. A cut landing mid-word drops the partial word, but only
// while that costs less than half the window.
func overlapTail(content string, overlapChars int) string {
	if len(content) <= overlapChars {
		return content
	}

	tail := content[len(content)-overlapChars:]
	if i := strings.IndexByte(tail, ' '); i > 0 && i < len(tail)/2 {
		tail = tail[i+1:]
	}
	return tail
}
