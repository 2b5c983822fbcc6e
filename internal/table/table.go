// Package table renders aligned ASCII tables. Cell content may contain ANSI
// color codes; alignment is computed on the visible width.
package table

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Alignment controls how cell content is padded within its column.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

// Table accumulates rows and renders them with box-drawing separators.
type Table struct {
	writer          io.Writer
	header          []string
	rows            [][]string
	columnAlignment []Alignment
	headerAlignment []Alignment
}

// NewTable returns a Table that renders to the given writer.
func NewTable(writer io.Writer) *Table {
	return &Table{writer: writer}
}

// WithHeader sets the header row.
func (t *Table) WithHeader(header []string) *Table {
	t.header = header
	return t
}

// WithColumnAlignment sets the per-column alignment of body rows.
func (t *Table) WithColumnAlignment(alignment []Alignment) *Table {
	t.columnAlignment = alignment
	return t
}

// WithHeaderAlignment sets the per-column alignment of the header row.
func (t *Table) WithHeaderAlignment(alignment []Alignment) *Table {
	t.headerAlignment = alignment
	return t
}

// Append adds one body row.
func (t *Table) Append(row []string) *Table {
	t.rows = append(t.rows, row)
	return t
}

// WithRows sets all body rows at once.
func (t *Table) WithRows(rows [][]string) *Table {
	t.rows = rows
	return t
}

// Render writes the table.
func (t *Table) Render() {
	widths := t.columnWidths()
	separator := t.separator(widths)
	fmt.Fprintln(t.writer, separator)
	if t.header != nil {
		fmt.Fprintln(t.writer, t.formatRow(t.header, widths, t.headerAlignment))
		fmt.Fprintln(t.writer, separator)
	}
	for _, row := range t.rows {
		fmt.Fprintln(t.writer, t.formatRow(row, widths, t.columnAlignment))
	}
	fmt.Fprintln(t.writer, separator)
}

func (t *Table) columnCount() int {
	count := len(t.header)
	for _, row := range t.rows {
		if len(row) > count {
			count = len(row)
		}
	}
	return count
}

func (t *Table) columnWidths() []int {
	widths := make([]int, t.columnCount())
	measure := func(row []string) {
		for i, cell := range row {
			if w := visibleWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.header)
	for _, row := range t.rows {
		measure(row)
	}
	return widths
}

func (t *Table) separator(widths []int) string {
	var sb strings.Builder
	sb.WriteString("+")
	for _, w := range widths {
		sb.WriteString(strings.Repeat("-", w+2))
		sb.WriteString("+")
	}
	return sb.String()
}

func (t *Table) formatRow(row []string, widths []int, alignment []Alignment) string {
	var sb strings.Builder
	sb.WriteString("|")
	for i, w := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		align := AlignLeft
		if i < len(alignment) {
			align = alignment[i]
		}
		sb.WriteString(" ")
		sb.WriteString(pad(cell, w, align))
		sb.WriteString(" |")
	}
	return sb.String()
}

func pad(cell string, width int, align Alignment) string {
	gap := width - visibleWidth(cell)
	if gap <= 0 {
		return cell
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", gap) + cell
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + cell + strings.Repeat(" ", gap-left)
	default:
		return cell + strings.Repeat(" ", gap)
	}
}

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")

// stripAnsi removes ANSI escape sequences.
func stripAnsi(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// visibleWidth is the rune count of a string with ANSI escapes removed.
func visibleWidth(s string) int {
	return len([]rune(stripAnsi(s)))
}
