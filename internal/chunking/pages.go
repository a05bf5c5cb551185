package chunking

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/laminakit/lamina/pkg/types"
)

// pageMarkerPattern matches embedded page-boundary lines such as
// "--- PAGE 3 ---", tolerating case and spacing variation. This is the
// marker format the upstream parsers emit.
var pageMarkerPattern = regexp.MustCompile(`(?i)---\s*PAGE\s+(\d+)\s*---`)

// pageSpan is one page's worth of document text
type pageSpan struct {
	number int
	text   string
}

// segmentPages splits document text into per-page spans. Markers embedded
// in the text are authoritative; without them, a caller-supplied marker
// list with valid positions is used instead, and failing both the whole
// text is a single page 1. Text before the first marker belongs to page 1
// and empty spans are dropped. A nil marker list means no markers.
func segmentPages(text string, markers []types.PageMarker) []pageSpan {
	matches := pageMarkerPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		if spans := segmentByMarkerList(text, markers); spans != nil {
			return spans
		}
		if t := strings.TrimSpace(text); t != "" {
			return []pageSpan{{number: 1, text: t}}
		}
		return nil
	}

	var spans []pageSpan
	if lead := strings.TrimSpace(text[:matches[0][0]]); lead != "" {
		spans = append(spans, pageSpan{number: 1, text: lead})
	}

	for i, m := range matches {
		num, _ := strconv.Atoi(text[m[2]:m[3]])
		if num < 1 {
			num = 1
		}
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		if body := strings.TrimSpace(text[m[1]:end]); body != "" {
			spans = append(spans, pageSpan{number: num, text: body})
		}
	}
	return spans
}

// segmentByMarkerList slices text at recorded marker positions, for
// callers whose parser reports positions without embedding marker lines.
// Any out-of-range or out-of-order position invalidates the whole list.
func segmentByMarkerList(text string, markers []types.PageMarker) []pageSpan {
	if len(markers) == 0 {
		return nil
	}
	prev := 0
	for _, m := range markers {
		if m.StartIndex < prev || m.EndIndex < m.StartIndex || m.EndIndex > len(text) {
			return nil
		}
		prev = m.EndIndex
	}

	var spans []pageSpan
	if lead := strings.TrimSpace(text[:markers[0].StartIndex]); lead != "" {
		spans = append(spans, pageSpan{number: 1, text: lead})
	}

	for i, m := range markers {
		num := m.PageNumber
		if num < 1 {
			num = 1
		}
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1].StartIndex
		}
		if body := strings.TrimSpace(text[m.EndIndex:end]); body != "" {
			spans = append(spans, pageSpan{number: num, text: body})
		}
	}
	return spans
}
