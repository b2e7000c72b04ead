package markdown

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"

	"github.com/tsawler/docmark/model"
)

// minColumnWidth keeps pipe separators valid and narrow columns readable.
const minColumnWidth = 3

func (r *Renderer) renderTable(t *model.Table) string {
	rows := t.Normalize()
	cols := t.ColCount()
	if len(rows) == 0 || cols == 0 {
		return ""
	}

	cells := make([][]string, len(rows))
	widths := make([]int, cols)
	for i := range widths {
		widths[i] = minColumnWidth
	}
	for i, row := range rows {
		cells[i] = make([]string, cols)
		for j, cell := range row.Cells {
			text := strings.TrimSpace(r.inlines(model.TrimSpans(cell.Content), cellContext))
			cells[i][j] = text
			widths[j] = max(widths[j], displayWidth(text))
		}
	}

	var sb strings.Builder
	switch r.opts.TableFormat {
	case TablePipe:
		writePipeTable(&sb, cells, widths)
	case TableSimple:
		writeSimpleTable(&sb, cells, widths)
	default:
		writeGridTable(&sb, cells, widths)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// writeGridTable writes a grid table. The first row is a header when the
// table has more than one row.
func writeGridTable(sb *strings.Builder, cells [][]string, widths []int) {
	writeBorder(sb, widths, '-')
	for i, row := range cells {
		writeRow(sb, row, widths)
		if i == 0 && len(cells) > 1 {
			writeBorder(sb, widths, '=')
		} else {
			writeBorder(sb, widths, '-')
		}
	}
}

func writePipeTable(sb *strings.Builder, cells [][]string, widths []int) {
	for i, row := range cells {
		writeRow(sb, row, widths)
		if i == 0 {
			sb.WriteByte('|')
			for _, w := range widths {
				sb.WriteString(" " + strings.Repeat("-", w) + " |")
			}
			sb.WriteByte('\n')
		}
	}
}

// writeSimpleTable writes a borderless table. A single row is framed by
// dashed lines so it is not read as a header.
func writeSimpleTable(sb *strings.Builder, cells [][]string, widths []int) {
	dashes := func() {
		parts := make([]string, len(widths))
		for i, w := range widths {
			parts[i] = strings.Repeat("-", w)
		}
		sb.WriteString(strings.Join(parts, "  ") + "\n")
	}
	line := func(row []string) {
		parts := make([]string, len(row))
		for i, text := range row {
			parts[i] = pad(text, widths[i])
		}
		sb.WriteString(strings.TrimRight(strings.Join(parts, "  "), " ") + "\n")
	}

	if len(cells) == 1 {
		dashes()
		line(cells[0])
		dashes()
		return
	}
	line(cells[0])
	dashes()
	for _, row := range cells[1:] {
		line(row)
	}
}

func writeBorder(sb *strings.Builder, widths []int, fill byte) {
	sb.WriteByte('+')
	for _, w := range widths {
		sb.WriteString(strings.Repeat(string(fill), w+2))
		sb.WriteByte('+')
	}
	sb.WriteByte('\n')
}

func writeRow(sb *strings.Builder, row []string, widths []int) {
	sb.WriteByte('|')
	for i, text := range row {
		sb.WriteString(" " + pad(text, widths[i]) + " |")
	}
	sb.WriteByte('\n')
}

// pad right-pads text with spaces to the given display width.
func pad(text string, w int) string {
	if n := w - displayWidth(text); n > 0 {
		return text + strings.Repeat(" ", n)
	}
	return text
}

// displayWidth returns the number of terminal columns text occupies: East
// Asian wide and fullwidth runes take two, combining marks none.
func displayWidth(text string) int {
	n := 0
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Mn, r):
		case isWide(r):
			n += 2
		default:
			n++
		}
	}
	return n
}

func isWide(r rune) bool {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return true
	}
	return false
}
