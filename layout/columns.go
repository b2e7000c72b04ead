package layout

import (
	"math"
	"sort"
)

// ColumnConfig holds configuration for column detection
type ColumnConfig struct {
	// MinColumnWidth is the minimum width for a region to be considered a column
	// Default: 150 points
	MinColumnWidth float64

	// MinGapWidth is the minimum whitespace gap to consider as column separator
	// Default: 15 points
	MinGapWidth float64

	// MinGapHeightRatio is how much clearer a gutter must be than the
	// busiest point on the page, so 0.8 allows a gutter to be crossed by
	// a fifth as much text as the densest column holds. Spanning titles
	// and centred page numbers may block it. Default: 0.8
	MinGapHeightRatio float64

	// MaxColumns is the maximum number of columns to detect
	// Default: 3
	MaxColumns int

	// MinWordsPerLine is the average words per line each column needs to
	// count as running text rather than table cells. Default: 4
	MinWordsPerLine float64
}

// DefaultColumnConfig returns sensible default configuration
func DefaultColumnConfig() ColumnConfig {
	return ColumnConfig{
		MinColumnWidth:    150.0,
		MinGapWidth:       15.0,
		MinGapHeightRatio: 0.8,
		MaxColumns:        3,
		MinWordsPerLine:   4,
	}
}

// ColumnLayout is a page split into reading groups.
type ColumnLayout struct {
	// Above holds fragments crossing a gutter above the columns, such as a title
	Above []Fragment

	// Columns hold fragments left to right
	Columns [][]Fragment

	// Below holds fragments crossing a gutter below the columns top
	Below []Fragment
}

// IsMultiColumn reports whether more than one column was found.
func (l *ColumnLayout) IsMultiColumn() bool {
	return len(l.Columns) > 1
}

// ColumnDetector detects multi-column layouts in text
type ColumnDetector struct {
	config ColumnConfig
}

// NewColumnDetector creates a new column detector with default configuration
func NewColumnDetector() *ColumnDetector {
	return &ColumnDetector{
		config: DefaultColumnConfig(),
	}
}

// NewColumnDetectorWithConfig creates a column detector with custom configuration
func NewColumnDetectorWithConfig(config ColumnConfig) *ColumnDetector {
	return &ColumnDetector{
		config: config,
	}
}

// gap is a vertical whitespace band between Left and Right.
type gap struct {
	left, right float64
}

func (g gap) center() float64 {
	return (g.left + g.right) / 2
}

// Detect splits a page's fragments at vertical gutters. A page without
// gutters yields a single column holding every fragment.
func (d *ColumnDetector) Detect(fragments []Fragment) *ColumnLayout {
	single := &ColumnLayout{Columns: [][]Fragment{fragments}}
	if len(fragments) == 0 {
		return single
	}

	gaps := d.findVerticalGaps(fragments)
	if len(gaps) == 0 || len(gaps) >= d.config.MaxColumns {
		return single
	}

	layout := &ColumnLayout{Columns: make([][]Fragment, len(gaps)+1)}
	var spanning []Fragment
	for _, f := range fragments {
		col, crosses := 0, false
		for _, g := range gaps {
			if f.X < g.center() && f.Right() > g.center() {
				crosses = true
				break
			}
			if f.X >= g.center() {
				col++
			}
		}
		if crosses {
			spanning = append(spanning, f)
			continue
		}
		layout.Columns[col] = append(layout.Columns[col], f)
	}

	top := math.Inf(-1)
	for _, col := range layout.Columns {
		if len(col) == 0 {
			return single
		}
		left, right := col[0].X, col[0].Right()
		for _, f := range col {
			left = math.Min(left, f.X)
			right = math.Max(right, f.Right())
			top = math.Max(top, f.Y)
		}
		if right-left < d.config.MinColumnWidth {
			return single
		}
	}

	for _, f := range spanning {
		if f.Y > top {
			layout.Above = append(layout.Above, f)
		} else {
			layout.Below = append(layout.Below, f)
		}
	}
	return layout
}

// findVerticalGaps finds interior X bands that text leaves mostly clear,
// measuring how much text height crosses each point.
func (d *ColumnDetector) findVerticalGaps(fragments []Fragment) []gap {
	minX, maxX := fragments[0].X, fragments[0].Right()
	bottom, top := fragments[0].Y, fragments[0].Y+fragments[0].FontSize
	for _, f := range fragments {
		minX = math.Min(minX, f.X)
		maxX = math.Max(maxX, f.Right())
		bottom = math.Min(bottom, f.Y)
		top = math.Max(top, f.Y+f.FontSize)
	}
	extent := top - bottom
	width := int(math.Ceil(maxX - minX))
	if extent <= 0 || width <= 0 || width > 10000 {
		return nil
	}

	blocked := make([]float64, width+1)
	for _, f := range fragments {
		from := int(f.X - minX)
		to := min(int(math.Ceil(f.Right()-minX)), width)
		for x := max(from, 0); x < to; x++ {
			blocked[x] += f.FontSize
		}
	}

	busiest := 0.0
	for _, v := range blocked {
		busiest = math.Max(busiest, v)
	}
	limit := busiest * (1 - d.config.MinGapHeightRatio)
	var gaps []gap
	start := -1
	for x := 0; x <= width; x++ {
		clear := blocked[x] <= limit && x < width
		switch {
		case clear && start < 0:
			start = x
		case !clear && start >= 0:
			if start > 0 && float64(x-start) >= d.config.MinGapWidth {
				gaps = append(gaps, gap{left: minX + float64(start), right: minX + float64(x)})
			}
			start = -1
		}
	}

	sort.Slice(gaps, func(i, j int) bool { return gaps[i].left < gaps[j].left })
	return gaps
}

// proseLike reports whether lines read as running text.
func (d *ColumnDetector) proseLike(lines []Line) bool {
	if len(lines) == 0 {
		return false
	}
	words := 0
	for i := range lines {
		words += lines[i].WordCount()
	}
	return float64(words)/float64(len(lines)) >= d.config.MinWordsPerLine
}
