package layout

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// HeadingConfig holds configuration for heading detection
type HeadingConfig struct {
	// HeadingFontSizeRatio is the minimum font size, relative to the body
	// size, for a paragraph to be a heading on size alone. Default: 1.2
	HeadingFontSizeRatio float64

	// MaxHeadingLines is the maximum number of lines for a heading
	// Default: 3
	MaxHeadingLines int

	// MaxHeadingWords bounds bold body-size headings. Default: 12
	MaxHeadingWords int

	// AllCapsIndicatesHeading lets a bold ALL CAPS line at body size count
	// as a heading. Default: true
	AllCapsIndicatesHeading bool

	// NumberedPatterns are regex patterns for numbered headings
	// Default: "1.", "1.1", "1.1.1", "Chapter 1", etc.
	NumberedPatterns []*regexp.Regexp
}

// DefaultHeadingConfig returns sensible default configuration
func DefaultHeadingConfig() HeadingConfig {
	return HeadingConfig{
		HeadingFontSizeRatio:    1.2,
		MaxHeadingLines:         3,
		MaxHeadingWords:         12,
		AllCapsIndicatesHeading: true,
		NumberedPatterns: []*regexp.Regexp{
			regexp.MustCompile(`^(?i)(chapter|section|part|appendix)\s+[\dA-Z]+`),
			regexp.MustCompile(`^\d+(\.\d+)*\.?\s`),
			regexp.MustCompile(`^[IVXLCDM]+\.\s`),
			regexp.MustCompile(`^[A-Z]\.\s`),
		},
	}
}

var dottedNumber = regexp.MustCompile(`^(\d+(?:\.\d+)*)\.?\s`)

// HeadingDetector marks heading paragraphs and assigns their levels
type HeadingDetector struct {
	config HeadingConfig
}

// NewHeadingDetector creates a new heading detector with default configuration
func NewHeadingDetector() *HeadingDetector {
	return &HeadingDetector{
		config: DefaultHeadingConfig(),
	}
}

// NewHeadingDetectorWithConfig creates a heading detector with custom configuration
func NewHeadingDetectorWithConfig(config HeadingConfig) *HeadingDetector {
	return &HeadingDetector{
		config: config,
	}
}

// Detect sets HeadingLevel on the paragraphs that look like headings.
// Paragraphs should cover the whole document so that levels are consistent
// across pages. It returns the body font size it measured.
func (d *HeadingDetector) Detect(paragraphs []Paragraph) float64 {
	body := BodyFontSize(paragraphs)
	if body <= 0 {
		return body
	}

	type candidate struct {
		index int
		sized bool
	}
	var candidates []candidate
	var sizes []float64
	for i := range paragraphs {
		p := &paragraphs[i]
		p.HeadingLevel = 0
		switch {
		case d.isSizedHeading(p, body):
			candidates = append(candidates, candidate{index: i, sized: true})
			sizes = append(sizes, sizeBucket(p.FontSize))
		case d.isEmphasisHeading(p):
			candidates = append(candidates, candidate{index: i})
		}
	}

	ranks := rankSizes(sizes)
	for _, c := range candidates {
		p := &paragraphs[c.index]
		if c.sized {
			p.HeadingLevel = min(ranks[sizeBucket(p.FontSize)], 6)
			continue
		}
		// Body-size headings sit below every sized level unless a dotted
		// number says otherwise.
		level := len(ranks) + 1
		if m := dottedNumber.FindStringSubmatch(p.Text); m != nil {
			level = max(level, strings.Count(m[1], ".")+1)
		}
		p.HeadingLevel = min(level, 6)
	}
	return body
}

func (d *HeadingDetector) isSizedHeading(p *Paragraph, body float64) bool {
	if len(p.Lines) == 0 || len(p.Lines) > d.config.MaxHeadingLines {
		return false
	}
	if !hasLetters(p.Text) {
		return false
	}
	return p.FontSize >= body*d.config.HeadingFontSizeRatio
}

// isEmphasisHeading recognises short bold lines at body size that carry
// another heading cue.
func (d *HeadingDetector) isEmphasisHeading(p *Paragraph) bool {
	if len(p.Lines) != 1 || !p.Bold() || !hasLetters(p.Text) {
		return false
	}
	words := len(strings.Fields(p.Text))
	if words > d.config.MaxHeadingWords {
		return false
	}
	text := strings.TrimSpace(p.Text)
	if strings.HasSuffix(text, ".") || strings.HasSuffix(text, ",") {
		return false
	}
	if d.isNumbered(text) {
		return true
	}
	if d.config.AllCapsIndicatesHeading && isAllCaps(text) {
		return true
	}
	return p.Alignment == AlignCenter
}

func (d *HeadingDetector) isNumbered(text string) bool {
	for _, re := range d.config.NumberedPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// BodyFontSize returns the font size carrying the most text, bucketed to
// half points.
func BodyFontSize(paragraphs []Paragraph) float64 {
	weights := make(map[float64]int)
	for _, p := range paragraphs {
		for _, line := range p.Lines {
			for _, f := range line.Fragments {
				if f.FontSize <= 0 {
					continue
				}
				weights[sizeBucket(f.FontSize)] += len([]rune(strings.TrimSpace(f.Text)))
			}
		}
	}

	best, bestWeight := 0.0, 0
	for size, w := range weights {
		if w > bestWeight || (w == bestWeight && size < best) {
			best, bestWeight = size, w
		}
	}
	return best
}

func sizeBucket(size float64) float64 {
	return math.Round(size*2) / 2
}

// rankSizes maps each distinct size to its rank, largest first (1-based).
func rankSizes(sizes []float64) map[float64]int {
	distinct := make(map[float64]bool)
	for _, s := range sizes {
		distinct[s] = true
	}
	ordered := make([]float64, 0, len(distinct))
	for s := range distinct {
		ordered = append(ordered, s)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(ordered)))

	ranks := make(map[float64]int, len(ordered))
	for i, s := range ordered {
		ranks[s] = i + 1
	}
	return ranks
}

func hasLetters(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// isAllCaps reports whether every letter is uppercase, requiring at least
// two letters.
func isAllCaps(text string) bool {
	letters := 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		if !unicode.IsUpper(r) {
			return false
		}
		letters++
	}
	return letters >= 2
}
