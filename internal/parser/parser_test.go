package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestInsertPageMarkers_SinglePage(t *testing.T) {
	text, markers := insertPageMarkers([]string{"  Hello world.  "})

	expected := "--- PAGE 1 ---\n\nHello world."
	if text != expected {
		t.Errorf("expected %q, got %q", expected, text)
	}

	if len(markers) != 1 {
		t.Fatalf("expected 1 marker, got %d", len(markers))
	}
	if markers[0].PageNumber != 1 {
		t.Errorf("expected page 1, got %d", markers[0].PageNumber)
	}
	if markers[0].StartIndex != 0 || markers[0].EndIndex != 15 {
		t.Errorf("unexpected marker position: %+v", markers[0])
	}
}

func TestInsertPageMarkers_MultiPage(t *testing.T) {
	text, markers := insertPageMarkers([]string{"content A", "content B"})

	expected := "--- PAGE 1 ---\n\ncontent A\n\n--- PAGE 2 ---\n\ncontent B"
	if text != expected {
		t.Errorf("expected %q, got %q", expected, text)
	}

	if len(markers) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(markers))
	}
	for _, m := range markers {
		got := text[m.StartIndex:m.EndIndex]
		want := fmt.Sprintf("--- PAGE %d ---", m.PageNumber)
		if got != want {
			t.Errorf("marker %d: positions point at %q, want %q", m.PageNumber, got, want)
		}
	}
}

func TestInsertPageMarkers_BlankPage(t *testing.T) {
	text, markers := insertPageMarkers([]string{"content A", "   ", "content C"})

	expected := "--- PAGE 1 ---\n\ncontent A\n\n--- PAGE 2 ---\n\n--- PAGE 3 ---\n\ncontent C"
	if text != expected {
		t.Errorf("expected %q, got %q", expected, text)
	}

	if len(markers) != 3 {
		t.Fatalf("expected 3 markers, got %d", len(markers))
	}
	for _, m := range markers[1:] {
		got := text[m.StartIndex:m.EndIndex]
		want := fmt.Sprintf("--- PAGE %d ---", m.PageNumber)
		if got != want {
			t.Errorf("marker %d: positions point at %q, want %q", m.PageNumber, got, want)
		}
	}
}

func TestInsertPageMarkers_Empty(t *testing.T) {
	text, markers := insertPageMarkers(nil)
	if text != "" {
		t.Errorf("expected empty text, got %q", text)
	}
	if markers != nil {
		t.Errorf("expected no markers, got %v", markers)
	}
}

func TestTextParser_Parse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	content := "# Title\n\nSome notes here."
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	doc, err := NewTextParser().Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}

	if doc.Markdown != content {
		t.Errorf("expected content unchanged, got %q", doc.Markdown)
	}
	if doc.PageCount != 1 {
		t.Errorf("expected page count 1, got %d", doc.PageCount)
	}
	if len(doc.PageMarkers) != 0 {
		t.Errorf("expected no markers, got %d", len(doc.PageMarkers))
	}
	if doc.Source != path {
		t.Errorf("expected source %s, got %s", path, doc.Source)
	}
}

func TestTextParser_Parse_MissingFile(t *testing.T) {
	_, err := NewTextParser().Parse(context.Background(), filepath.Join(t.TempDir(), "absent.md"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestForFile(t *testing.T) {
	withDocling := Config{DoclingURL: "http://localhost:8000"}

	tests := []struct {
		name    string
		path    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{name: "markdown", path: "notes.md", cfg: Config{}, want: "*parser.TextParser"},
		{name: "plain text", path: "readme.txt", cfg: Config{}, want: "*parser.TextParser"},
		{name: "pdf without docling", path: "report.pdf", cfg: Config{}, want: "*parser.PDFParser"},
		{name: "pdf with docling", path: "report.pdf", cfg: withDocling, want: "*parser.DoclingParser"},
		{name: "docx with docling", path: "report.docx", cfg: withDocling, want: "*parser.DoclingParser"},
		{name: "docx without docling", path: "report.docx", cfg: Config{}, wantErr: true},
		{name: "image with docling", path: "scan.JPG", cfg: withDocling, want: "*parser.DoclingParser"},
		{name: "spreadsheet without docling", path: "data.xlsx", cfg: Config{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ForFile(tt.path, tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := fmt.Sprintf("%T", p); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
