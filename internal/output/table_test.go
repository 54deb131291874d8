package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestVisualLen(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty", "", 0},
		{"plain", "EMEA", 4},
		{"colored", "\x1b[31mWAGE_PRESSURE\x1b[0m", 13},
		{"stacked escapes", "\x1b[1m\x1b[34mNA\x1b[0m", 2},
		{"box drawing", "───", 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := visualLen(tc.input); got != tc.want {
				t.Errorf("visualLen(%q) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}

func TestPad(t *testing.T) {
	tests := []struct {
		input string
		width int
		want  string
	}{
		{"NA", 5, "NA   "},
		{"LATAM", 5, "LATAM"},
		{"Global", 3, "Global"}, // never truncates
	}
	for _, tc := range tests {
		if got := pad(tc.input, tc.width); got != tc.want {
			t.Errorf("pad(%q, %d) = %q, want %q", tc.input, tc.width, got, tc.want)
		}
	}
}

func TestTable_Render(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("Region", "Insights")
	tbl.AddRow("EMEA", "4")
	tbl.AddRow("APAC", "2")

	lines := strings.Split(strings.TrimRight(tbl.Render(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, separator and 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "Region  Insights" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "──────  ────────" {
		t.Errorf("separator = %q", lines[1])
	}
	if lines[2] != "EMEA    4       " {
		t.Errorf("row = %q", lines[2])
	}
}

func TestTable_ShortRowsArePadded(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("Metric", "Value", "Function")
	tbl.AddRow("tech_layoffs", "12000")

	lines := strings.Split(strings.TrimRight(tbl.Render(), "\n"), "\n")
	if got := visualLen(lines[2]); got != visualLen(lines[0]) {
		t.Errorf("row width %d != header width %d", got, visualLen(lines[0]))
	}
}

func TestTable_EmptyHeaders(t *testing.T) {
	if got := NewTable().Render(); got != "" {
		t.Errorf("expected empty output for empty table, got %q", got)
	}
}

func TestTable_FprintMatchesString(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("ID")
	tbl.AddRow("rule_4")

	var buf bytes.Buffer
	tbl.Fprint(&buf)
	if buf.String() != tbl.String() {
		t.Errorf("Fprint wrote %q, String() = %q", buf.String(), tbl.String())
	}
}

func TestTable_StyledCellsAlign(t *testing.T) {
	tbl := NewTable("Category", "N")
	tbl.AddRow(CategoryStyle("TALENT_SUPPLY").Render("TALENT_SUPPLY"), "3")
	tbl.AddRow("MACRO_ECONOMIC", "1")

	if tbl.widths[0] != len("MACRO_ECONOMIC") {
		t.Errorf("column width = %d, want %d ignoring ANSI", tbl.widths[0], len("MACRO_ECONOMIC"))
	}
}

func TestSetNoColor(t *testing.T) {
	SetNoColor(true)
	if rendered := StyleHeader.Render("EMEA"); strings.Contains(rendered, "\x1b[") {
		t.Error("expected no ANSI codes after SetNoColor(true)")
	}
	if !IsNoColor() {
		t.Error("expected IsNoColor after SetNoColor(true)")
	}

	SetNoColor(false)
	if IsNoColor() {
		t.Error("expected color to be re-enabled")
	}
}
