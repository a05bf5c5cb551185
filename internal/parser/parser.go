// Package parser turns source documents into markdown with page markers
package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/laminakit/lamina/pkg/types"
)

// Parser extracts markdown text and page markers from a source document
type Parser interface {
	Parse(ctx context.Context, path string) (*types.ParsedDocument, error)
}

// Config selects how documents are parsed
type Config struct {
	DoclingURL string        // empty disables the docling service
	Timeout    time.Duration // per-document parse timeout
}

// doclingExtensions are the formats the docling service accepts.
var doclingExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".xlsx": true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tiff": true,
	".tif":  true,
}

// ForFile picks a parser for the file's extension. PDFs fall back to
// local extraction when no docling service is configured; other binary
// formats require the service.
func ForFile(path string, cfg Config) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case ext == ".pdf":
		if cfg.DoclingURL != "" {
			return NewDoclingParser(DoclingConfig{BaseURL: cfg.DoclingURL, Timeout: cfg.Timeout}), nil
		}
		return NewPDFParser(), nil
	case doclingExtensions[ext]:
		if cfg.DoclingURL == "" {
			return nil, fmt.Errorf("%s files require the docling service (set LAMINA_DOCLING_URL)", ext)
		}
		return NewDoclingParser(DoclingConfig{BaseURL: cfg.DoclingURL, Timeout: cfg.Timeout}), nil
	default:
		return NewTextParser(), nil
	}
}

// TextParser reads markdown and plain text files as-is. No page markers
// are produced, so every chunk lands on page 1.
type TextParser struct{}

// NewTextParser creates a parser for plain text formats
func NewTextParser() *TextParser {
	return &TextParser{}
}

// Parse reads the file contents
func (p *TextParser) Parse(_ context.Context, path string) (*types.ParsedDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return &types.ParsedDocument{
		Markdown:  string(data),
		PageCount: 1,
		Source:    path,
	}, nil
}

// pageMarkerFormat is the marker line the chunking engine maps back to
// page numbers.
const pageMarkerFormat = "--- PAGE %d ---"

// insertPageMarkers renders per-page text into one markdown string with
// a marker line per page. Blank pages keep their marker so page numbers
// stay aligned with the source document.
func insertPageMarkers(pages []string) (string, []types.PageMarker) {
	if len(pages) == 0 {
		return "", nil
	}

	if len(pages) == 1 {
		marker := fmt.Sprintf(pageMarkerFormat, 1) + "\n\n"
		text := marker + strings.TrimSpace(pages[0])
		return text, []types.PageMarker{{PageNumber: 1, StartIndex: 0, EndIndex: len(marker) - 1}}
	}

	var sb strings.Builder
	markers := make([]types.PageMarker, 0, len(pages))

	for i, page := range pages {
		if i > 0 {
			sb.WriteString("\n\n")
		}

		marker := fmt.Sprintf(pageMarkerFormat, i+1)
		start := sb.Len()
		sb.WriteString(marker)
		markers = append(markers, types.PageMarker{
			PageNumber: i + 1,
			StartIndex: start,
			EndIndex:   start + len(marker),
		})

		if trimmed := strings.TrimSpace(page); trimmed != "" {
			sb.WriteString("\n\n")
			sb.WriteString(trimmed)
		}
	}

	return sb.String(), markers
}
