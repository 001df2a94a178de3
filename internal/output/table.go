package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table is a simple aligned table renderer.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	return &Table{headers: headers, widths: widths}
}

// AddRow adds a row. Missing values render empty; extra values are dropped.
func (t *Table) AddRow(values ...string) {
	row := make([]string, len(t.headers))
	for i := range t.headers {
		if i < len(values) {
			row[i] = values[i]
		}
		t.widths[i] = max(t.widths[i], lipgloss.Width(row[i]))
	}
	t.rows = append(t.rows, row)
}

// Render returns the formatted table.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}
	var sb strings.Builder
	t.writeRow(&sb, t.headers, StyleHeader)

	total := 0
	for _, w := range t.widths {
		total += w
	}
	total += 2 * (len(t.widths) - 1)
	sb.WriteString(StyleMuted.Render(strings.Repeat("─", total)))
	sb.WriteByte('\n')

	for _, row := range t.rows {
		t.writeRow(&sb, row, lipgloss.NewStyle())
	}
	return sb.String()
}

func (t *Table) writeRow(sb *strings.Builder, cells []string, style lipgloss.Style) {
	for i, c := range cells {
		if i > 0 {
			sb.WriteString("  ")
		}
		pad := t.widths[i] - lipgloss.Width(c)
		sb.WriteString(style.Render(c))
		if i < len(cells)-1 {
			sb.WriteString(strings.Repeat(" ", pad))
		}
	}
	sb.WriteByte('\n')
}
