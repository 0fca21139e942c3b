package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column.
type Column struct {
	Title string
	Width int
}

// Row is a slice of cell values.
type Row []string

// Table renders a fixed-width lipgloss table.
type Table struct {
	Columns []Column
	Rows    []Row
}

// NewTable creates a new table.
func NewTable(cols []Column) *Table {
	return &Table{Columns: cols}
}

// AddRow appends a row.
func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

// Render returns the full table as a string. Cells wider than their column
// are cut with an ellipsis.
func (t *Table) Render() string {
	var sb strings.Builder
	header := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)

	cells := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		cells[i] = header.Render(fit(col.Title, col.Width))
	}
	sb.WriteString(strings.Join(cells, " ") + "\n")

	for i, col := range t.Columns {
		cells[i] = StyleMeta.Render(strings.Repeat("─", col.Width))
	}
	sb.WriteString(strings.Join(cells, " ") + "\n")

	for _, row := range t.Rows {
		for j, col := range t.Columns {
			val := ""
			if j < len(row) {
				val = row[j]
			}
			cells[j] = fit(val, col.Width)
		}
		sb.WriteString(strings.Join(cells, " ") + "\n")
	}
	return sb.String()
}

// fit pads or cuts s to exactly width visible cells. Styled input is only
// padded, never cut, so escape sequences stay intact.
func fit(s string, width int) string {
	w := lipgloss.Width(s)
	switch {
	case w == width:
		return s
	case w < width:
		return s + strings.Repeat(" ", width-w)
	case len(s) == w && width > 1:
		return s[:width-1] + "…"
	}
	return s
}

// KeyValueBlock renders key-value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-14s", p[0]+":"))
		sb.WriteString(key + " " + p[1] + "\n")
	}
	return StyleBorder.Render(strings.TrimRight(sb.String(), "\n"))
}
