package layout

import (
	"strings"

	"github.com/tsawler/docmark/model"
)

// Fragment is a run of text drawn in one font on one baseline.
type Fragment struct {
	Text string

	// X and Y locate the start of the baseline.
	X, Y float64

	// Width is the advance width of the whole run.
	Width float64

	FontSize float64
	FontName string
}

// Right returns the X coordinate where the fragment ends.
func (f Fragment) Right() float64 {
	return f.X + f.Width
}

// BBox approximates the fragment bounds, treating the font size as the
// line height.
func (f Fragment) BBox() model.BBox {
	return model.NewBBox(f.X, f.Y, f.Width, f.FontSize)
}

// Bold reports whether the font name indicates a bold face.
func (f Fragment) Bold() bool {
	name := strings.ToLower(f.FontName)
	for _, marker := range []string{"bold", "black", "heavy", "semibold", "demibold"} {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// Italic reports whether the font name indicates an italic face.
func (f Fragment) Italic() bool {
	name := strings.ToLower(f.FontName)
	return strings.Contains(name, "italic") || strings.Contains(name, "oblique")
}

// Style returns the inline style implied by the font name.
func (f Fragment) Style() model.Style {
	return model.Style{Bold: f.Bold(), Italic: f.Italic()}
}

func absFloat64(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
