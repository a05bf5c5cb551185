package chunking

import (
	"fmt"
	"regexp"
	"strings"
)

// tablePattern matches a well-formed pipe table: a header row containing a
// pipe, a separator row of only dashes/colons/pipes/spaces with at least
// one dash, and one or more data rows containing a pipe, with no blank
// line inside the block. Table-like text missing the separator row never
// matches and stays ordinary prose.
var tablePattern = regexp.MustCompile(`(?m)^[^\n]*\|[^\n]*\n[-:| \t]*-[-:| \t]*\n(?:[^\n]*\|[^\n]*(?:\n|$))+`)

// placeholderPattern matches table placeholder tokens during reinsertion
var placeholderPattern = regexp.MustCompile(`\{\{TABLE_\d+\}\}`)

// tableBlock holds one extracted table and its embedding summary
type tableBlock struct {
	content string
	summary string
}

// extractTables replaces every well-formed pipe table with a unique
// {{TABLE_n}} placeholder sitting on its own paragraph, and returns the
// rewritten text plus the placeholder mapping. Matching is left-to-right
// and non-overlapping. The stored content is the trimmed matched block and
// is never modified afterwards.
func extractTables(text string) (string, map[string]tableBlock) {
	matches := tablePattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	tables := make(map[string]tableBlock, len(matches))
	var out strings.Builder
	last := 0
	n := 0

	for _, m := range matches {
		// Skip over any literal {{TABLE_n}} already present in the
		// document so generated tokens cannot collide with it.
		var token string
		for {
			token = fmt.Sprintf("{{TABLE_%d}}", n)
			n++
			if !strings.Contains(text, token) {
				break
			}
		}

		block := strings.TrimSpace(text[m[0]:m[1]])
		tables[token] = tableBlock{content: block, summary: summarizeTable(block)}

		out.WriteString(text[last:m[0]])
		out.WriteString("\n\n")
		out.WriteString(token)
		out.WriteString("\n\n")
		last = m[1]
	}
	out.WriteString(text[last:])

	return out.String(), tables
}

// summarizeTable builds the deterministic natural-language summary that
// stands in for raw table markup at embedding time: header column names
// plus a data row count, no model call.
func summarizeTable(tableText string) string {
	lines := strings.Split(strings.TrimSpace(tableText), "\n")
	if len(lines) < 2 {
		return "Table with unknown structure"
	}

	columns := parseRow(lines[0])
	rows := len(lines) - 2 // header and separator excluded

	if len(columns) == 0 {
		return fmt.Sprintf("Table with %d rows", rows)
	}

	named := columns
	extra := 0
	if len(columns) > 5 {
		named = columns[:5]
		extra = len(columns) - 5
	}

	summary := fmt.Sprintf("Table with %d rows and %d columns. Columns: %s",
		rows, len(columns), strings.Join(named, ", "))
	if extra > 0 {
		summary += fmt.Sprintf(" and %d more columns", extra)
	}
	return summary
}

// parseRow splits a pipe-delimited row into trimmed, non-empty cells
func parseRow(row string) []string {
	var cells []string
	for _, cell := range strings.Split(row, "|") {
		if c := strings.TrimSpace(cell); c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}
