package layout

import (
	"sort"
	"strings"

	"github.com/tsawler/docmark/model"
)

// LineAlignment represents the horizontal alignment of a line
type LineAlignment int

const (
	AlignUnknown LineAlignment = iota
	AlignLeft
	AlignCenter
	AlignRight
	AlignJustified
)

// String returns a string representation of the alignment
func (a LineAlignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignJustified:
		return "justified"
	default:
		return "unknown"
	}
}

// Line represents a single line of text on a page
type Line struct {
	// BBox is the bounding box of the line
	BBox model.BBox

	// Fragments make up the line, sorted left to right
	Fragments []Fragment

	// Text is the assembled text content of the line
	Text string

	// Baseline is the Y coordinate of the text baseline
	Baseline float64

	// Height is the line height (max fragment font size)
	Height float64

	// Pitch is the baseline distance from the previous line; 0 for the
	// first line on a page
	Pitch float64

	// Alignment is the detected horizontal alignment
	Alignment LineAlignment

	// AverageFontSize is the average font size weighted by text length
	AverageFontSize float64

	spaceRatio float64
}

// LineConfig holds configuration for line detection
type LineConfig struct {
	// LineHeightTolerance is the baseline distance, as a fraction of the
	// font size, within which fragments share a line (default: 0.5)
	LineHeightTolerance float64

	// SpaceRatio is the horizontal gap, as a fraction of the font size, at
	// which a space is inserted between fragments (default: 0.15)
	SpaceRatio float64

	// AlignmentTolerance is the tolerance for alignment detection (default: 10 points)
	AlignmentTolerance float64

	// JustificationThreshold is the minimum line width ratio to consider justified
	// (default: 0.9 = line must be 90% of max width)
	JustificationThreshold float64
}

// DefaultLineConfig returns sensible default configuration
func DefaultLineConfig() LineConfig {
	return LineConfig{
		LineHeightTolerance:    0.5,
		SpaceRatio:             0.15,
		AlignmentTolerance:     10.0,
		JustificationThreshold: 0.9,
	}
}

// LineDetector detects text lines on a page
type LineDetector struct {
	config LineConfig
}

// NewLineDetector creates a new line detector with default configuration
func NewLineDetector() *LineDetector {
	return &LineDetector{
		config: DefaultLineConfig(),
	}
}

// NewLineDetectorWithConfig creates a line detector with custom configuration
func NewLineDetectorWithConfig(config LineConfig) *LineDetector {
	return &LineDetector{
		config: config,
	}
}

// Detect groups fragments into lines ordered top to bottom.
func (d *LineDetector) Detect(fragments []Fragment) []Line {
	groups := d.groupIntoLines(fragments)
	if len(groups) == 0 {
		return nil
	}

	lines := make([]Line, 0, len(groups))
	for _, group := range groups {
		line := d.buildLine(group)
		if strings.TrimSpace(line.Text) == "" {
			continue
		}
		lines = append(lines, line)
	}

	for i := 1; i < len(lines); i++ {
		lines[i].Pitch = lines[i-1].Baseline - lines[i].Baseline
	}
	d.detectAlignment(lines)
	return lines
}

// groupIntoLines groups fragments whose baselines are within tolerance.
func (d *LineDetector) groupIntoLines(fragments []Fragment) [][]Fragment {
	if len(fragments) == 0 {
		return nil
	}

	sorted := make([]Fragment, len(fragments))
	copy(sorted, fragments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y > sorted[j].Y
	})

	var lines [][]Fragment
	current := []Fragment{sorted[0]}
	sumY := sorted[0].Y

	for _, frag := range sorted[1:] {
		avgY := sumY / float64(len(current))
		size := frag.FontSize
		if last := current[len(current)-1]; last.FontSize > size {
			size = last.FontSize
		}
		if size <= 0 {
			size = 1
		}

		if absFloat64(frag.Y-avgY) <= size*d.config.LineHeightTolerance {
			current = append(current, frag)
			sumY += frag.Y
			continue
		}
		lines = append(lines, current)
		current = []Fragment{frag}
		sumY = frag.Y
	}
	lines = append(lines, current)

	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool {
			return line[i].X < line[j].X
		})
	}
	return lines
}

// buildLine computes the metrics of one line.
func (d *LineDetector) buildLine(fragments []Fragment) Line {
	line := Line{Fragments: fragments, spaceRatio: d.config.SpaceRatio}

	totalSize, totalChars := 0.0, 0
	line.Baseline = fragments[0].Y
	for _, f := range fragments {
		line.BBox = line.BBox.Union(f.BBox())
		if f.Y < line.Baseline {
			line.Baseline = f.Y
		}
		if f.FontSize > line.Height {
			line.Height = f.FontSize
		}
		n := len([]rune(f.Text))
		totalSize += f.FontSize * float64(n)
		totalChars += n
	}
	if totalChars > 0 {
		line.AverageFontSize = totalSize / float64(totalChars)
	}

	var sb strings.Builder
	joinFragments(fragments, d.config.SpaceRatio, func(text string, _ Fragment) {
		sb.WriteString(text)
	})
	line.Text = strings.TrimSpace(sb.String())
	return line
}

// joinFragments emits the text of each fragment in order, inserting a space
// where the gap between neighbours is wide enough to separate words. The
// space carries the neighbours' style only when they share one.
func joinFragments(fragments []Fragment, spaceRatio float64, emit func(text string, f Fragment)) {
	for i, f := range fragments {
		if i > 0 {
			prev := fragments[i-1]
			gap := f.X - prev.Right()
			if gap > f.FontSize*spaceRatio &&
				!strings.HasSuffix(prev.Text, " ") && !strings.HasPrefix(f.Text, " ") {
				space := Fragment{}
				if prev.Style() == f.Style() {
					space = prev
				}
				emit(" ", space)
			}
		}
		emit(f.Text, f)
	}
}

// detectAlignment detects horizontal alignment for each line
func (d *LineDetector) detectAlignment(lines []Line) {
	if len(lines) == 0 {
		return
	}

	leftMargin := lines[0].BBox.Left()
	rightMargin := lines[0].BBox.Right()
	maxWidth := lines[0].BBox.Width
	for _, line := range lines[1:] {
		if line.BBox.Left() < leftMargin {
			leftMargin = line.BBox.Left()
		}
		if line.BBox.Right() > rightMargin {
			rightMargin = line.BBox.Right()
		}
		if line.BBox.Width > maxWidth {
			maxWidth = line.BBox.Width
		}
	}
	if maxWidth <= 0 {
		return
	}

	contentCenter := (leftMargin + rightMargin) / 2
	tolerance := d.config.AlignmentTolerance

	for i := range lines {
		line := &lines[i]

		if line.BBox.Width/maxWidth >= d.config.JustificationThreshold {
			line.Alignment = AlignJustified
			continue
		}

		leftAligned := absFloat64(line.BBox.Left()-leftMargin) <= tolerance
		rightAligned := absFloat64(line.BBox.Right()-rightMargin) <= tolerance
		centerAligned := absFloat64(line.BBox.Center().X-contentCenter) <= tolerance

		switch {
		case centerAligned && !leftAligned && !rightAligned:
			line.Alignment = AlignCenter
		case rightAligned && !leftAligned:
			line.Alignment = AlignRight
		case leftAligned:
			line.Alignment = AlignLeft
		default:
			line.Alignment = AlignUnknown
		}
	}
}

// Inlines returns the line's text as styled spans.
func (line *Line) Inlines() []model.Inline {
	var b model.InlineBuilder
	line.writeInlines(&b)
	return b.Inlines()
}

func (line *Line) writeInlines(b *model.InlineBuilder) {
	joinFragments(line.Fragments, line.spaceRatio, func(text string, f Fragment) {
		b.WriteText(text, f.Style())
	})
}

// Bold reports whether most of the line's text is set in a bold face.
func (line *Line) Bold() bool {
	bold, total := 0, 0
	for _, f := range line.Fragments {
		n := len(strings.TrimSpace(f.Text))
		total += n
		if f.Bold() {
			bold += n
		}
	}
	return total > 0 && bold*2 > total
}

// WordCount returns an approximate word count for the line
func (line *Line) WordCount() int {
	return len(strings.Fields(line.Text))
}

// FragmentInlines returns styled spans for fragments on one baseline,
// ordered left to right, spacing them the way Line.Inlines does.
func FragmentInlines(fragments []Fragment, spaceRatio float64) []model.Inline {
	var b model.InlineBuilder
	joinFragments(fragments, spaceRatio, func(text string, f Fragment) {
		b.WriteText(text, f.Style())
	})
	return model.TrimSpans(b.Inlines())
}

// RangeInlines returns the spans of Fragments[from:to] with the line's
// spacing rules.
func (line *Line) RangeInlines(from, to int) []model.Inline {
	return FragmentInlines(line.Fragments[from:to], line.spaceRatio)
}
