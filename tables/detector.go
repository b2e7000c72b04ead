package tables

import (
	"github.com/tsawler/docmark/layout"
)

// Config holds detector configuration
type Config struct {
	// Minimum rows for a valid table
	MinRows int

	// Minimum columns for a valid table
	MinCols int

	// Minimum confidence threshold (0-1)
	MinConfidence float64

	// ColumnGapRatio is the horizontal gap, as a multiple of the font
	// size, that separates two cells on a line
	ColumnGapRatio float64

	// MaxRowGapRatio is the largest baseline distance between rows, as a
	// multiple of the line height
	MaxRowGapRatio float64

	// Tolerance for row/column alignment (points)
	AlignmentTolerance float64
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		MinRows:            2,
		MinCols:            2,
		MinConfidence:      0.75,
		ColumnGapRatio:     1.0,
		MaxRowGapRatio:     2.5,
		AlignmentTolerance: 4.0,
	}
}

// Detector finds whitespace-aligned tables in a page's lines.
type Detector struct {
	config Config
	rules  []Rule
}

// NewDetector creates a detector with default configuration.
func NewDetector() *Detector {
	return &Detector{config: DefaultConfig()}
}

// NewDetectorWithConfig creates a detector with custom configuration.
func NewDetectorWithConfig(config Config) *Detector {
	return &Detector{config: config}
}

// WithRules returns a copy of the detector that scores candidates against
// the ruling lines drawn on the page.
func (d *Detector) WithRules(rules []Rule) *Detector {
	c := *d
	c.rules = rules
	return &c
}

// Claim implements layout.Claimer.
func (d *Detector) Claim(lines []layout.Line) []layout.Region {
	var regions []layout.Region
	for _, t := range d.Detect(lines) {
		regions = append(regions, layout.Region{Start: t.Start, End: t.End, Node: t.Table})
	}
	return regions
}
