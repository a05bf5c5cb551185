package parser

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/laminakit/lamina/pkg/types"
)

// PDFParser extracts text from PDFs locally. Fidelity is bounded
// compared to docling (no OCR, no table structure), but page markers
// line up with the real pages.
type PDFParser struct {
	logger *slog.Logger
}

// NewPDFParser creates a local PDF text parser
func NewPDFParser() *PDFParser {
	return &PDFParser{
		logger: slog.Default().With("component", "parser"),
	}
}

// Parse extracts per-page plain text and joins it with page markers
func (p *PDFParser) Parse(ctx context.Context, path string) (*types.ParsedDocument, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	reader, err := pdf.NewReader(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Keep the blank page so markers stay aligned
			p.logger.Warn("failed to extract page text", "path", path, "page", i, "error", err)
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}

	markdown, markers := insertPageMarkers(pages)

	return &types.ParsedDocument{
		Markdown:    markdown,
		PageMarkers: markers,
		PageCount:   numPages,
		Source:      path,
	}, nil
}
