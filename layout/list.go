package layout

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/tsawler/docmark/model"
)

// ListMarker describes the bullet or number that opens a list item.
type ListMarker struct {
	// Ordered is true for numbered, lettered and roman markers
	Ordered bool

	// Number is the value of an ordered marker ("c)" is 3, "iv." is 4)
	Number int

	// Prefix is the marker text including the whitespace after it
	Prefix string

	// Level is the nesting depth derived from indentation (0 = top level)
	Level int
}

var (
	bulletPattern  = regexp.MustCompile(`^(?:[•◦▪▫‣⁃●○■□◉►▸➤–—]\s*|[-*]\s+)`)
	orderedPattern = regexp.MustCompile(`^(\d{1,3}|[a-zA-Z]|[ivxlcdmIVXLCDM]{1,6})[.)]\s+`)
)

// parseListMarker recognises a bullet or ordinal at the start of text.
func parseListMarker(text string) *ListMarker {
	if m := bulletPattern.FindString(text); m != "" {
		if strings.TrimSpace(text[len(m):]) == "" {
			return nil
		}
		return &ListMarker{Prefix: m}
	}
	m := orderedPattern.FindStringSubmatch(text)
	if m == nil || strings.TrimSpace(text[len(m[0]):]) == "" {
		return nil
	}
	n, ok := ordinalValue(m[1])
	if !ok {
		return nil
	}
	return &ListMarker{Ordered: true, Number: n, Prefix: m[0]}
}

// ordinalValue converts a decimal, single letter or roman numeral. A lone
// "i" is read as roman; other single letters are alphabetic.
func ordinalValue(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	lower := strings.ToLower(s)
	if len(lower) == 1 && lower != "i" {
		return int(lower[0]-'a') + 1, true
	}
	return romanToNumber(lower)
}

func romanToNumber(s string) (int, bool) {
	values := map[byte]int{'i': 1, 'v': 5, 'x': 10, 'l': 50, 'c': 100, 'd': 500, 'm': 1000}
	total := 0
	for i := 0; i < len(s); i++ {
		v, ok := values[s[i]]
		if !ok {
			return 0, false
		}
		if i+1 < len(s) && values[s[i+1]] > v {
			total -= v
		} else {
			total += v
		}
	}
	return total, total > 0
}

// ListConfig holds configuration for list detection
type ListConfig struct {
	// IndentTolerance is the distance within which item indents count as the
	// same nesting level. Default: 8 points
	IndentTolerance float64

	// MaxLevels caps the nesting depth. Default: 6
	MaxLevels int
}

// DefaultListConfig returns sensible default configuration
func DefaultListConfig() ListConfig {
	return ListConfig{
		IndentTolerance: 8.0,
		MaxLevels:       6,
	}
}

// ListDetector marks list item paragraphs and their nesting levels
type ListDetector struct {
	config ListConfig
}

// NewListDetector creates a new list detector with default configuration
func NewListDetector() *ListDetector {
	return &ListDetector{
		config: DefaultListConfig(),
	}
}

// NewListDetectorWithConfig creates a list detector with custom configuration
func NewListDetectorWithConfig(config ListConfig) *ListDetector {
	return &ListDetector{
		config: config,
	}
}

// Detect sets List on every non-heading paragraph that opens with a marker.
// Levels are assigned per run of consecutive items from their indentation.
func (d *ListDetector) Detect(paragraphs []Paragraph) {
	var run []int
	for i := range paragraphs {
		p := &paragraphs[i]
		p.List = nil
		if p.HeadingLevel == 0 {
			p.List = parseListMarker(p.Text)
		}
		if p.List != nil {
			run = append(run, i)
			continue
		}
		d.assignLevels(paragraphs, run)
		run = nil
	}
	d.assignLevels(paragraphs, run)
}

func (d *ListDetector) assignLevels(paragraphs []Paragraph, run []int) {
	if len(run) == 0 {
		return
	}

	var indents []float64
	for _, i := range run {
		indents = append(indents, paragraphs[i].BBox.Left())
	}
	sorted := make([]float64, len(indents))
	copy(sorted, indents)
	sort.Float64s(sorted)

	var buckets []float64
	for _, x := range sorted {
		if len(buckets) == 0 || x-buckets[len(buckets)-1] > d.config.IndentTolerance {
			buckets = append(buckets, x)
		}
	}

	for k, i := range run {
		level := 0
		for b := range buckets {
			if indents[k] >= buckets[b]-d.config.IndentTolerance/2 {
				level = b
			}
		}
		paragraphs[i].List.Level = min(level, d.config.MaxLevels-1)
	}
}

// ItemInlines returns the paragraph content with its list marker removed.
func (p *Paragraph) ItemInlines() []model.Inline {
	spans := p.Inlines()
	if p.List == nil {
		return spans
	}
	// Inlines and Text are trimmed alike, so the marker prefix lines up.
	return model.TrimSpans(model.DropPrefix(spans, len(p.List.Prefix)))
}

// IsListItemText reports whether text starts with a list marker.
func IsListItemText(text string) bool {
	return parseListMarker(strings.TrimSpace(text)) != nil
}
