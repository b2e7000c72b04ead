package layout

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tsawler/docmark/model"
)

// Paragraph is a run of consecutive lines that belong together.
type Paragraph struct {
	Lines []Line

	// BBox is the bounding box of all lines
	BBox model.BBox

	// Text is the paragraph text with lines joined by spaces
	Text string

	// FontSize is the average font size weighted by text length
	FontSize float64

	// Alignment is the alignment shared by most lines
	Alignment LineAlignment

	// HeadingLevel is set by HeadingDetector; 0 means body text
	HeadingLevel int

	// List is set by ListDetector when the paragraph is a list item
	List *ListMarker

	dehyphenate bool
}

// ParagraphConfig holds configuration for paragraph detection
type ParagraphConfig struct {
	// SpacingThreshold is the multiple of the page's typical baseline pitch
	// above which a gap starts a new paragraph. The typical pitch falls back
	// to 1.2 line heights when the page has too few lines to measure.
	// Default: 1.3
	SpacingThreshold float64

	// FontSizeChangeRatio starts a new paragraph when consecutive lines
	// differ in font size by more than this ratio. Default: 1.15
	FontSizeChangeRatio float64

	// IndentThreshold is the minimum indentation to consider as first-line indent
	// Default: 15 points
	IndentThreshold float64

	// ShortLineRatio ends a paragraph after a line narrower than this
	// fraction of the paragraph width that ends a sentence. Default: 0.75
	ShortLineRatio float64

	// Dehyphenate joins words split by a hyphen at a line end.
	// Default: true
	Dehyphenate bool
}

// DefaultParagraphConfig returns sensible default configuration
func DefaultParagraphConfig() ParagraphConfig {
	return ParagraphConfig{
		SpacingThreshold:    1.3,
		FontSizeChangeRatio: 1.15,
		IndentThreshold:     15.0,
		ShortLineRatio:      0.75,
		Dehyphenate:         true,
	}
}

// ParagraphDetector detects paragraphs from lines
type ParagraphDetector struct {
	config ParagraphConfig
}

// NewParagraphDetector creates a new paragraph detector with default configuration
func NewParagraphDetector() *ParagraphDetector {
	return &ParagraphDetector{
		config: DefaultParagraphConfig(),
	}
}

// NewParagraphDetectorWithConfig creates a paragraph detector with custom configuration
func NewParagraphDetectorWithConfig(config ParagraphConfig) *ParagraphDetector {
	return &ParagraphDetector{
		config: config,
	}
}

// Detect groups lines, ordered top to bottom, into paragraphs.
func (d *ParagraphDetector) Detect(lines []Line) []Paragraph {
	if len(lines) == 0 {
		return nil
	}

	pitch := typicalPitch(lines)
	leftMargin := detectLeftMargin(lines)

	var paragraphs []Paragraph
	current := []Line{lines[0]}
	for _, line := range lines[1:] {
		if d.startsParagraph(current, line, pitch, leftMargin) {
			paragraphs = append(paragraphs, d.buildParagraph(current))
			current = nil
		}
		current = append(current, line)
	}
	return append(paragraphs, d.buildParagraph(current))
}

// startsParagraph reports whether line begins a new paragraph after the
// lines collected so far.
func (d *ParagraphDetector) startsParagraph(current []Line, line Line, pitch, leftMargin float64) bool {
	prev := current[len(current)-1]

	if line.Pitch <= 0 || line.Pitch > pitch*d.config.SpacingThreshold {
		return true
	}

	if prev.AverageFontSize > 0 && line.AverageFontSize > 0 {
		ratio := line.AverageFontSize / prev.AverageFontSize
		if ratio > d.config.FontSizeChangeRatio || ratio < 1/d.config.FontSizeChangeRatio {
			return true
		}
	}

	if prev.Bold() != line.Bold() {
		return true
	}

	if parseListMarker(line.Text) != nil {
		return true
	}

	// First-line indent; list items use a hanging indent instead.
	inList := parseListMarker(current[0].Text) != nil
	indent := line.BBox.Left() - leftMargin
	prevIndent := prev.BBox.Left() - leftMargin
	if !inList && indent > d.config.IndentThreshold && prevIndent <= d.config.IndentThreshold {
		return true
	}

	width := line.BBox.Width
	for _, l := range current {
		if l.BBox.Width > width {
			width = l.BBox.Width
		}
	}
	if width > 0 && prev.BBox.Width < width*d.config.ShortLineRatio && endsSentence(prev.Text) {
		return true
	}

	return false
}

func endsSentence(text string) bool {
	r, _ := utf8.DecodeLastRuneInString(strings.TrimSpace(text))
	switch r {
	case '.', '!', '?', ':', ';':
		return true
	}
	return false
}

// typicalPitch returns the median baseline distance between lines.
func typicalPitch(lines []Line) float64 {
	var pitches, heights []float64
	for _, l := range lines {
		if l.Pitch > 0 {
			pitches = append(pitches, l.Pitch)
		}
		heights = append(heights, l.Height)
	}
	height := median(heights)
	pitch := median(pitches)
	if pitch <= 0 || pitch > 2*height {
		pitch = 1.2 * height
	}
	return pitch
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

// detectLeftMargin returns the most common left edge, bucketed to 5 points.
func detectLeftMargin(lines []Line) float64 {
	const tolerance = 5.0

	counts := make(map[int]int)
	for _, line := range lines {
		counts[int(line.BBox.Left()/tolerance)]++
	}

	best, bestCount := 0, 0
	for bucket, count := range counts {
		if count > bestCount || (count == bestCount && bucket < best) {
			best, bestCount = bucket, count
		}
	}
	return float64(best) * tolerance
}

// buildParagraph creates a Paragraph from a group of lines
func (d *ParagraphDetector) buildParagraph(lines []Line) Paragraph {
	para := Paragraph{Lines: lines, dehyphenate: d.config.Dehyphenate}

	totalSize, totalChars := 0.0, 0
	alignments := make(map[LineAlignment]int)
	for _, line := range lines {
		para.BBox = para.BBox.Union(line.BBox)
		n := utf8.RuneCountInString(line.Text)
		totalSize += line.AverageFontSize * float64(n)
		totalChars += n
		alignments[line.Alignment]++
	}
	if totalChars > 0 {
		para.FontSize = totalSize / float64(totalChars)
	}

	best := 0
	for a := AlignUnknown; a <= AlignJustified; a++ {
		if alignments[a] > best {
			para.Alignment, best = a, alignments[a]
		}
	}

	var sb strings.Builder
	para.eachLine(func(i int, line Line, joined bool) {
		if i > 0 && !joined {
			sb.WriteByte(' ')
		}
		sb.WriteString(line.Text)
	})
	para.Text = sb.String()
	return para
}

// eachLine visits the lines in order. joined is true when the line
// continues a word hyphenated at the end of the previous line, in which
// case the previous line passed to fn has its trailing hyphen removed.
func (p *Paragraph) eachLine(fn func(i int, line Line, joined bool)) {
	lines := p.Lines
	for i := range lines {
		line := lines[i]
		joined := i > 0 && p.dehyphenate && hyphenated(lines[i-1].Text, line.Text)
		if i+1 < len(lines) && p.dehyphenate && hyphenated(line.Text, lines[i+1].Text) {
			line = dropTrailingHyphen(line)
		}
		fn(i, line, joined)
	}
}

// hyphenated reports whether a line ending in "letter-" continues with a
// lowercase word on the next line.
func hyphenated(line, next string) bool {
	if !strings.HasSuffix(line, "-") || len(line) < 2 {
		return false
	}
	before, _ := utf8.DecodeLastRuneInString(line[:len(line)-1])
	first, _ := utf8.DecodeRuneInString(next)
	return unicode.IsLetter(before) && unicode.IsLower(first)
}

func dropTrailingHyphen(line Line) Line {
	line.Text = strings.TrimSuffix(line.Text, "-")
	frags := make([]Fragment, len(line.Fragments))
	copy(frags, line.Fragments)
	for i := len(frags) - 1; i >= 0; i-- {
		trimmed := strings.TrimRight(frags[i].Text, " ")
		if trimmed == "" {
			continue
		}
		frags[i].Text = strings.TrimSuffix(trimmed, "-")
		break
	}
	line.Fragments = frags
	return line
}

// Inlines returns the paragraph as styled spans, lines joined by spaces.
func (p *Paragraph) Inlines() []model.Inline {
	var b model.InlineBuilder
	p.eachLine(func(i int, line Line, joined bool) {
		if i > 0 && !joined {
			b.WriteText(" ", model.Style{})
		}
		line.writeInlines(&b)
	})
	return model.TrimSpans(b.Inlines())
}

// Bold reports whether most lines are bold.
func (p *Paragraph) Bold() bool {
	bold := 0
	for i := range p.Lines {
		if p.Lines[i].Bold() {
			bold++
		}
	}
	return len(p.Lines) > 0 && bold*2 > len(p.Lines)
}
