package chunking

import (
	"strings"
	"testing"
)

func TestExtractTables_SingleTable(t *testing.T) {
	table := "| Name | Age |\n|------|-----|\n| Ann | 30 |\n| Bob | 25 |"
	text := "Intro paragraph.\n\n" + table + "\n\nClosing."

	replaced, tables := extractTables(text)
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	if !strings.Contains(replaced, "{{TABLE_0}}") {
		t.Error("expected placeholder in replaced text")
	}
	if strings.Contains(replaced, "| Name | Age |") {
		t.Error("expected table rows removed from replaced text")
	}

	block, ok := tables["{{TABLE_0}}"]
	if !ok {
		t.Fatal("expected {{TABLE_0}} in table map")
	}
	if block.content != table {
		t.Errorf("table content altered:\nexpected %q\ngot      %q", table, block.content)
	}
}

func TestExtractTables_NoSeparatorRow(t *testing.T) {
	text := "| A | B |\n| 1 | 2 |"

	replaced, tables := extractTables(text)
	if len(tables) != 0 {
		t.Errorf("expected no tables without separator row, got %d", len(tables))
	}
	if replaced != text {
		t.Errorf("expected text unchanged, got %q", replaced)
	}
}

func TestExtractTables_BlankLineBreaksTable(t *testing.T) {
	text := "| A | B |\n|---|---|\n\n| 1 | 2 |"

	_, tables := extractTables(text)
	if len(tables) != 0 {
		t.Errorf("expected no tables when a blank line interrupts, got %d", len(tables))
	}
}

func TestExtractTables_MultipleTables(t *testing.T) {
	first := "| A |\n|---|\n| 1 |"
	second := "| B |\n|---|\n| 2 |"
	text := first + "\n\nmiddle text\n\n" + second

	replaced, tables := extractTables(text)
	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(tables))
	}
	if tables["{{TABLE_0}}"].content != first {
		t.Errorf("expected first table under {{TABLE_0}}, got %q", tables["{{TABLE_0}}"].content)
	}
	if tables["{{TABLE_1}}"].content != second {
		t.Errorf("expected second table under {{TABLE_1}}, got %q", tables["{{TABLE_1}}"].content)
	}
	if !strings.Contains(replaced, "middle text") {
		t.Error("expected surrounding text preserved")
	}
}

func TestExtractTables_PlaceholderCollision(t *testing.T) {
	text := "Mentions a literal {{TABLE_0}} token.\n\n| A | B |\n|---|---|\n| 1 | 2 |"

	replaced, tables := extractTables(text)
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	if _, ok := tables["{{TABLE_1}}"]; !ok {
		t.Error("expected placeholder to skip the colliding token")
	}
	if !strings.Contains(replaced, "{{TABLE_0}}") {
		t.Error("expected the literal token left in place")
	}
}

func TestSummarizeTable(t *testing.T) {
	tests := []struct {
		name     string
		table    string
		expected string
	}{
		{
			"small table",
			"| A | B |\n|---|---|\n| 1 | 2 |",
			"Table with 1 rows and 2 columns. Columns: A, B",
		},
		{
			"no data rows",
			"| A |\n|---|",
			"Table with 0 rows and 1 columns. Columns: A",
		},
		{
			"wide table",
			"| c1 | c2 | c3 | c4 | c5 | c6 | c7 |\n|---|---|---|---|---|---|---|\n| 1 | 2 | 3 | 4 | 5 | 6 | 7 |\n| 8 | 9 | 10 | 11 | 12 | 13 | 14 |",
			"Table with 2 rows and 7 columns. Columns: c1, c2, c3, c4, c5 and 2 more columns",
		},
		{
			"single line",
			"| only |",
			"Table with unknown structure",
		},
		{
			"empty header cells",
			"|\n---\n|",
			"Table with 1 rows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := summarizeTable(tt.table)
			if got != tt.expected {
				t.Errorf("summarizeTable:\nexpected %q\ngot      %q", tt.expected, got)
			}
		})
	}
}

func TestParseRow(t *testing.T) {
	tests := []struct {
		name     string
		row      string
		expected []string
	}{
		{"bordered row", "| A | B |", []string{"A", "B"}},
		{"unbordered row", "A | B", []string{"A", "B"}},
		{"extra whitespace", "|  A  |  B  |", []string{"A", "B"}},
		{"empty cells dropped", "| | A | |", []string{"A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseRow(tt.row)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %d cells, got %d: %v", len(tt.expected), len(got), got)
			}
			for i, want := range tt.expected {
				if got[i] != want {
					t.Errorf("cell %d: expected %q, got %q", i, want, got[i])
				}
			}
		})
	}
}
