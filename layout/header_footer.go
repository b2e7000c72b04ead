package layout

import (
	"regexp"
	"strings"
)

// HeaderFooterConfig holds configuration for header/footer detection
type HeaderFooterConfig struct {
	// EdgeLines is how many lines at the top and bottom of each page are
	// candidates. Default: 2
	EdgeLines int

	// MinOccurrenceRatio is the minimum fraction of pages a text must appear on
	// to be considered a header/footer (0.0 to 1.0)
	// Default: 0.5 (50% of pages)
	MinOccurrenceRatio float64

	// MinPages is the minimum number of pages a text must repeat on, and so
	// the minimum document length for detection. Default: 3
	MinPages int

	// PositionTolerance is the maximum baseline spread for repeated text to
	// count as the same position. Default: 5 points
	PositionTolerance float64
}

// DefaultHeaderFooterConfig returns sensible default configuration
func DefaultHeaderFooterConfig() HeaderFooterConfig {
	return HeaderFooterConfig{
		EdgeLines:          2,
		MinOccurrenceRatio: 0.5,
		MinPages:           3,
		PositionTolerance:  5.0,
	}
}

// HeaderFooterDetector removes running headers, footers and page numbers.
type HeaderFooterDetector struct {
	config HeaderFooterConfig
}

// NewHeaderFooterDetector creates a new detector with default configuration
func NewHeaderFooterDetector() *HeaderFooterDetector {
	return &HeaderFooterDetector{
		config: DefaultHeaderFooterConfig(),
	}
}

// NewHeaderFooterDetectorWithConfig creates a detector with custom configuration
func NewHeaderFooterDetectorWithConfig(config HeaderFooterConfig) *HeaderFooterDetector {
	return &HeaderFooterDetector{
		config: config,
	}
}

type regionKey struct {
	footer bool
	text   string
}

type occurrence struct {
	pages    map[int]bool
	minY     float64
	maxY     float64
	observed bool
}

// Filter returns the pages with repeated edge lines removed. Each page's
// lines must be ordered top to bottom. The input is not modified.
func (d *HeaderFooterDetector) Filter(pages [][]Line) [][]Line {
	if len(pages) < d.config.MinPages {
		return pages
	}

	seen := make(map[regionKey]*occurrence)
	d.eachCandidate(pages, func(page, _ int, key regionKey, line Line) {
		occ := seen[key]
		if occ == nil {
			occ = &occurrence{pages: make(map[int]bool)}
			seen[key] = occ
		}
		occ.pages[page] = true
		if !occ.observed || line.Baseline < occ.minY {
			occ.minY = line.Baseline
		}
		if !occ.observed || line.Baseline > occ.maxY {
			occ.maxY = line.Baseline
		}
		occ.observed = true
	})

	threshold := max(d.config.MinPages, int(float64(len(pages))*d.config.MinOccurrenceRatio+0.5))
	drop := make([]map[int]bool, len(pages))
	d.eachCandidate(pages, func(page, index int, key regionKey, _ Line) {
		occ := seen[key]
		if len(occ.pages) < threshold {
			return
		}
		if occ.maxY-occ.minY > d.config.PositionTolerance && !isPageNumberPattern(key.text) {
			return
		}
		if drop[page] == nil {
			drop[page] = make(map[int]bool)
		}
		drop[page][index] = true
	})

	out := make([][]Line, len(pages))
	for p, lines := range pages {
		if len(drop[p]) == 0 {
			out[p] = lines
			continue
		}
		kept := make([]Line, 0, len(lines))
		for i, line := range lines {
			if !drop[p][i] {
				kept = append(kept, line)
			}
		}
		if len(kept) > 0 {
			kept[0].Pitch = 0
		}
		out[p] = kept
	}
	return out
}

// eachCandidate visits the top and bottom EdgeLines of every page.
func (d *HeaderFooterDetector) eachCandidate(pages [][]Line, fn func(page, index int, key regionKey, line Line)) {
	for p, lines := range pages {
		n := len(lines)
		for i := 0; i < n; i++ {
			header := i < d.config.EdgeLines
			footer := i >= n-d.config.EdgeLines
			if !header && !footer {
				continue
			}
			text := normalizeForComparison(lines[i].Text)
			if text == "" {
				continue
			}
			// A line that is both top and bottom of a short page counts once,
			// as a header.
			fn(p, i, regionKey{footer: !header, text: text}, lines[i])
		}
	}
}

var digitRun = regexp.MustCompile(`\d+`)

// normalizeForComparison lowercases text, replaces digit runs with "#" and
// collapses whitespace so that "Page 3" and "Page 12" compare equal.
func normalizeForComparison(text string) string {
	text = digitRun.ReplaceAllString(strings.ToLower(text), "#")
	return strings.Join(strings.Fields(text), " ")
}

// isPageNumberPattern checks if normalized text looks like a page number
func isPageNumberPattern(normalizedText string) bool {
	switch strings.TrimSpace(normalizedText) {
	case "#", "page #", "- # -", "# of #", "page # of #", "#/#", "p. #", "p.#", "pg #", "pg. #", "[#]":
		return true
	}
	return false
}
