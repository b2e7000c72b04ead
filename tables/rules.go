package tables

import (
	"math"

	"github.com/tsawler/docmark/layout"
)

const (
	// maxRuleThickness is the thickest rectangle still treated as a line
	maxRuleThickness = 2.0

	// minRuleLength ignores dots and tick marks
	minRuleLength = 10.0
)

// Rule is a straight ruling line in PDF user space. Horizontal rules have
// Y0 == Y1 and vertical rules X0 == X1.
type Rule struct {
	X0, Y0, X1, Y1 float64
}

// Horizontal reports whether the rule runs left to right.
func (r Rule) Horizontal() bool {
	return r.Y0 == r.Y1 && r.X1-r.X0 >= minRuleLength
}

// Vertical reports whether the rule runs top to bottom.
func (r Rule) Vertical() bool {
	return r.X0 == r.X1 && r.Y1-r.Y0 >= minRuleLength
}

// RulesFromRect converts a drawn rectangle into rules. Thin rectangles are
// single rules; larger ones contribute their four edges, as cell borders
// are often drawn as stroked rectangles.
func RulesFromRect(x0, y0, x1, y1 float64) []Rule {
	x0, x1 = math.Min(x0, x1), math.Max(x0, x1)
	y0, y1 = math.Min(y0, y1), math.Max(y0, y1)
	w, h := x1-x0, y1-y0

	switch {
	case h <= maxRuleThickness && w >= minRuleLength:
		y := (y0 + y1) / 2
		return []Rule{{X0: x0, Y0: y, X1: x1, Y1: y}}
	case w <= maxRuleThickness && h >= minRuleLength:
		x := (x0 + x1) / 2
		return []Rule{{X0: x, Y0: y0, X1: x, Y1: y1}}
	case w >= minRuleLength && h >= minRuleLength:
		return []Rule{
			{X0: x0, Y0: y0, X1: x1, Y1: y0},
			{X0: x0, Y0: y1, X1: x1, Y1: y1},
			{X0: x0, Y0: y0, X1: x0, Y1: y1},
			{X0: x1, Y0: y0, X1: x1, Y1: y1},
		}
	}
	return nil
}

// ruleScore is the fraction of row and column boundaries that have a
// ruling line drawn along them.
func (d *Detector) ruleScore(lines []layout.Line, columns []interval) float64 {
	if len(d.rules) == 0 {
		return 0
	}

	left, right := columns[0].left, columns[len(columns)-1].right
	bottom := lines[len(lines)-1].Baseline
	top := lines[0].Baseline + lines[0].Height

	expected, hits := 0, 0
	for k := 0; k+1 < len(lines); k++ {
		expected++
		if d.hasHorizontalRule(lines[k+1].Baseline, lines[k].Baseline, left, right) {
			hits++
		}
	}
	for c := 0; c+1 < len(columns); c++ {
		expected++
		if d.hasVerticalRule(columns[c].right, columns[c+1].left, bottom, top) {
			hits++
		}
	}
	if expected == 0 {
		return 0
	}
	return float64(hits) / float64(expected)
}

// hasHorizontalRule looks for a rule between the baselines lower and upper
// covering at least half the table width.
func (d *Detector) hasHorizontalRule(lower, upper, left, right float64) bool {
	for _, r := range d.rules {
		if !r.Horizontal() || r.Y0 < lower || r.Y0 > upper {
			continue
		}
		if overlap(r.X0, r.X1, left, right) >= (right-left)/2 {
			return true
		}
	}
	return false
}

// hasVerticalRule looks for a rule in the gutter between two columns
// covering at least half the table height.
func (d *Detector) hasVerticalRule(gapLeft, gapRight, bottom, top float64) bool {
	for _, r := range d.rules {
		if !r.Vertical() || r.X0 < gapLeft || r.X0 > gapRight {
			continue
		}
		if overlap(r.Y0, r.Y1, bottom, top) >= (top-bottom)/2 {
			return true
		}
	}
	return false
}

func overlap(a0, a1, b0, b1 float64) float64 {
	return math.Max(0, math.Min(a1, b1)-math.Max(a0, b0))
}
