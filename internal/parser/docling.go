package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/laminakit/lamina/pkg/types"
)

// DoclingParser sends documents to a docling parse service, which
// handles layout analysis, OCR and table structure.
type DoclingParser struct {
	baseURL    string
	httpClient *http.Client
}

// doclingResponse is the parse service's response payload
type doclingResponse struct {
	Markdown         string             `json:"markdown"`
	PageMarkers      []types.PageMarker `json:"page_markers"`
	PageCount        int                `json:"page_count"`
	ProcessingTimeMS int64              `json:"processing_time_ms"`
}

// DoclingConfig configures the docling client
type DoclingConfig struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultDoclingConfig returns sensible defaults
func DefaultDoclingConfig() DoclingConfig {
	return DoclingConfig{
		BaseURL: getEnvOrDefault("LAMINA_DOCLING_URL", "http://localhost:8000"),
		Timeout: 120 * time.Second, // OCR on large documents is slow
	}
}

// NewDoclingParser creates a client for the docling parse service
func NewDoclingParser(cfg DoclingConfig) *DoclingParser {
	defaults := DefaultDoclingConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}

	return &DoclingParser{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Parse uploads the file and returns the parsed markdown with markers
func (p *DoclingParser) Parse(ctx context.Context, path string) (*types.ParsedDocument, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/parse", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call docling: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("docling returned status %d: %s", resp.StatusCode, readDetail(resp.Body))
	}

	var parsed doclingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &types.ParsedDocument{
		Markdown:    parsed.Markdown,
		PageMarkers: parsed.PageMarkers,
		PageCount:   parsed.PageCount,
		Source:      path,
	}, nil
}

// Health checks if the docling service is reachable
func (p *DoclingParser) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach docling: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("docling returned status %d", resp.StatusCode)
	}

	var health struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("failed to decode health response: %w", err)
	}
	if health.Status != "healthy" {
		return fmt.Errorf("docling reports status %q", health.Status)
	}

	return nil
}

// readDetail extracts the error message from a docling error body
func readDetail(r io.Reader) string {
	body, _ := io.ReadAll(r)
	var e struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &e) == nil && e.Detail != "" {
		return e.Detail
	}
	return string(body)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
