package tables

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/docmark/layout"
	"github.com/tsawler/docmark/model"
)

// Candidate is a detected table and the lines [Start, End) it replaces.
type Candidate struct {
	Table      *model.Table
	Start, End int
	Confidence float64
}

// cell is a run of fragments on one line separated from its neighbours by
// a column gap.
type cell struct {
	from, to    int
	left, right float64
	text        string
}

func (c cell) center() float64 {
	return (c.left + c.right) / 2
}

// interval is the horizontal extent of a column.
type interval struct {
	left, right float64
}

// Detect finds tables in lines ordered top to bottom. Candidates are
// ordered and never overlap.
func (d *Detector) Detect(lines []layout.Line) []Candidate {
	rows := make([][]cell, len(lines))
	for i := range lines {
		rows[i] = d.splitCells(&lines[i])
	}

	var out []Candidate
	for i := 0; i < len(lines); {
		if len(rows[i]) < d.config.MinCols {
			i++
			continue
		}
		j := i + 1
		for j < len(lines) && len(rows[j]) >= d.config.MinCols && d.closeRow(&lines[j]) {
			j++
		}
		if c := d.detectInRun(lines[i:j], rows[i:j]); c != nil {
			c.Start, c.End = i, j
			out = append(out, *c)
		}
		i = j
	}
	return out
}

// splitCells breaks a line at gaps wider than the column gap.
func (d *Detector) splitCells(line *layout.Line) []cell {
	var cells []cell
	for i, f := range line.Fragments {
		if i > 0 {
			prev := line.Fragments[i-1]
			gap := f.X - prev.Right()
			if gap <= d.config.ColumnGapRatio*math.Max(f.FontSize, prev.FontSize) {
				c := &cells[len(cells)-1]
				c.to = i + 1
				c.right = math.Max(c.right, f.Right())
				c.text += " " + f.Text
				continue
			}
		}
		cells = append(cells, cell{from: i, to: i + 1, left: f.X, right: f.Right(), text: f.Text})
	}

	out := cells[:0]
	for _, c := range cells {
		c.text = strings.TrimSpace(c.text)
		if c.text != "" {
			out = append(out, c)
		}
	}
	return out
}

// closeRow reports whether line follows the previous one closely enough to
// be the next table row.
func (d *Detector) closeRow(line *layout.Line) bool {
	return line.Pitch > 0 && line.Pitch <= d.config.MaxRowGapRatio*line.Height
}

// detectInRun scores a run of multi-cell lines as a single table.
func (d *Detector) detectInRun(lines []layout.Line, rows [][]cell) *Candidate {
	if len(rows) < d.config.MinRows {
		return nil
	}

	columns := columnIntervals(rows)
	if len(columns) < d.config.MinCols {
		return nil
	}

	grid := make([][][]cell, len(rows))
	for r, row := range rows {
		grid[r] = make([][]cell, len(columns))
		for _, c := range row {
			col := columnOf(c, columns)
			grid[r][col] = append(grid[r][col], c)
		}
	}

	if markerColumn(grid) {
		return nil
	}

	confidence := d.calculateConfidence(lines, grid, columns)
	if confidence < d.config.MinConfidence {
		return nil
	}

	table := model.NewTable(len(rows), len(columns))
	table.Confidence = confidence
	for r := range grid {
		for col, cells := range grid[r] {
			table.Rows[r].Cells[col].Content = cellContent(&lines[r], cells)
		}
	}
	return &Candidate{Table: table, Confidence: confidence}
}

// columnIntervals merges the horizontal extents of all cells into column
// bands.
func columnIntervals(rows [][]cell) []interval {
	var spans []interval
	for _, row := range rows {
		for _, c := range row {
			spans = append(spans, interval{left: c.left, right: c.right})
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].left < spans[j].left })

	var merged []interval
	for _, s := range spans {
		if n := len(merged); n > 0 && s.left <= merged[n-1].right {
			merged[n-1].right = math.Max(merged[n-1].right, s.right)
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

func columnOf(c cell, columns []interval) int {
	center := c.center()
	for i, col := range columns {
		if center <= col.right {
			return i
		}
	}
	return len(columns) - 1
}

// markerColumn reports whether the first column holds only bullets or list
// numbers, which is a hanging-indent list rather than a table.
func markerColumn(grid [][][]cell) bool {
	for _, row := range grid {
		cells := row[0]
		if len(cells) != 1 {
			return false
		}
		text := cells[0].text
		if len([]rune(text)) > 4 || !layout.IsListItemText(text+" x") {
			return false
		}
	}
	return true
}

func cellContent(line *layout.Line, cells []cell) []model.Inline {
	var content []model.Inline
	for i, c := range cells {
		if i > 0 {
			content = append(content, model.Text{Content: " "})
		}
		content = append(content, line.RangeInlines(c.from, c.to)...)
	}
	return content
}

// calculateConfidence combines row consistency, column alignment, row
// regularity and ruling lines into a score between 0 and 1.
func (d *Detector) calculateConfidence(lines []layout.Line, grid [][][]cell, columns []interval) float64 {
	score := 0.0

	// Factor 1: Row consistency (0-0.3)
	score += d.rowConsistency(grid) * 0.3

	// Factor 2: Column alignment (0-0.3)
	score += d.columnAlignment(grid, len(columns)) * 0.3

	// Factor 3: Row regularity (0-0.2)
	score += rowRegularity(lines) * 0.2

	// Factor 4: Ruling lines (0-0.2)
	score += d.ruleScore(lines, columns) * 0.2

	return math.Min(1.0, score)
}

// rowConsistency is the fraction of rows with exactly one cell per column.
func (d *Detector) rowConsistency(grid [][][]cell) float64 {
	complete := 0
	for _, row := range grid {
		ok := true
		for _, cells := range row {
			if len(cells) != 1 {
				ok = false
				break
			}
		}
		if ok {
			complete++
		}
	}
	return float64(complete) / float64(len(grid))
}

// columnAlignment is the fraction of columns whose cells share a left,
// right or centre edge within the alignment tolerance.
func (d *Detector) columnAlignment(grid [][][]cell, cols int) float64 {
	aligned := 0
	for col := 0; col < cols; col++ {
		var lefts, rights, centers []float64
		for _, row := range grid {
			for _, c := range row[col] {
				lefts = append(lefts, c.left)
				rights = append(rights, c.right)
				centers = append(centers, c.center())
			}
		}
		spread := math.Min(stddev(lefts), math.Min(stddev(rights), stddev(centers)))
		if len(lefts) > 0 && spread <= d.config.AlignmentTolerance {
			aligned++
		}
	}
	return float64(aligned) / float64(cols)
}

// rowRegularity scores how evenly the rows are spaced.
func rowRegularity(lines []layout.Line) float64 {
	var pitches []float64
	for _, l := range lines[1:] {
		pitches = append(pitches, l.Pitch)
	}
	return math.Max(0, 1-coefficientOfVariation(pitches))
}

// Utility functions

// mean computes the arithmetic mean of a slice of float64 values.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev computes the population standard deviation.
func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		diff := v - m
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values)))
}

// coefficientOfVariation calculates CV (std dev / mean)
func coefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	if m == 0 {
		return 0
	}
	return stddev(values) / m
}
