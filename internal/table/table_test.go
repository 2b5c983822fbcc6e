package table

import (
	"bytes"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
	"github.com/deepnoodle-ai/wonton/color"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf)
	table.WithHeader([]string{"OFFSET", "OP", "operands"})
	table.WithColumnAlignment([]Alignment{AlignRight, AlignLeft, AlignLeft})
	table.WithHeaderAlignment([]Alignment{AlignCenter, AlignCenter, AlignRight})
	table.Append([]string{"0", "nop", ""})
	table.Append([]string{"12", "mov", "R1 = #5"})
	table.Render()

	expected := `
+--------+-----+----------+
| OFFSET | OP  | operands |
+--------+-----+----------+
|      0 | nop |          |
|     12 | mov | R1 = #5  |
+--------+-----+----------+
`
	assert.Equal(t, buf.String(), strings.TrimSpace(expected)+"\n")
}

func TestTableWithRows(t *testing.T) {
	var buf bytes.Buffer
	NewTable(&buf).
		WithHeader([]string{"A", "B"}).
		WithRows([][]string{{"1", "2"}, {"3", "4"}}).
		Render()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 6)
}

func TestColoredCellsKeepAlignment(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf)
	table.WithHeader([]string{"NAME", "VALUE"})
	table.WithColumnAlignment([]Alignment{AlignLeft, AlignRight})
	table.Append([]string{color.ApplyBold("bold"), "12345"})
	table.Append([]string{"plain", color.Green.Apply("9")})
	table.Render()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	width := len(lines[0])
	for i, line := range lines {
		assert.Equal(t, len([]rune(stripAnsi(line))), width,
			"line %d has wrong visible width", i)
	}
}
