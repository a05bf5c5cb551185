// Package chunking implements the semantic document-chunking engine: page
// segmentation, table-preserving recursive splitting, and cross-chunk
// overlap injection. The engine is pure and stateless; any number of
// documents may be chunked concurrently through independent calls.
package chunking

import (
	"errors"

	"github.com/laminakit/lamina/pkg/types"
)

// Validation errors returned by Config.Validate
var (
	ErrInvalidTargetTokens  = errors.New("chunking: target tokens must be positive")
	ErrInvalidOverlapTokens = errors.New("chunking: overlap tokens must not be negative")
	ErrOverlapTooLarge      = errors.New("chunking: overlap tokens must be smaller than target tokens")
)

// Config sizes chunks in tokens. The engine converts both figures to
// character budgets through the estimator ratio.
type Config struct {
	TargetTokens  int // Upper bound per text chunk
	OverlapTokens int // Context carried between adjacent text chunks
}

// DefaultConfig returns the standard retrieval-oriented sizing
func DefaultConfig() Config {
	return Config{
		TargetTokens:  500,
		OverlapTokens: 50,
	}
}

// Validate checks that the configured sizes are usable
func (c Config) Validate() error {
	if c.TargetTokens <= 0 {
		return ErrInvalidTargetTokens
	}
	if c.OverlapTokens < 0 {
		return ErrInvalidOverlapTokens
	}
	if c.OverlapTokens >= c.TargetTokens {
		return ErrOverlapTooLarge
	}
	return nil
}

// Engine assembles documents into ordered chunk sequences
type Engine struct {
	budgetChars  int
	overlapChars int
}

// NewEngine creates an engine from cfg, rejecting unusable budgets up front
// so the splitting internals never see one.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		budgetChars:  cfg.TargetTokens * charsPerToken,
		overlapChars: cfg.OverlapTokens * charsPerToken,
	}, nil
}

// ChunkDocument converts document text plus optional page markers into the
// final ordered chunk sequence: pages are segmented, each page is chunked
// with tables kept atomic, and adjacent text chunks share overlap. Chunk
// indices are contiguous from zero across all pages. Whitespace-only input
// yields no chunks.
func (e *Engine) ChunkDocument(text string, markers []types.PageMarker) []types.Chunk {
	var chunks []types.Chunk
	index := 0

	for _, page := range segmentPages(text, markers) {
		pageChunks, next := chunkPage(page.text, e.budgetChars, page.number, index)
		chunks = append(chunks, pageChunks...)
		index = next
	}

	addOverlap(chunks, e.overlapChars)
	return chunks
}
