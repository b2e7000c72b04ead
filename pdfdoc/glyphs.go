package pdfdoc

import (
	"math"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/tsawler/docmark/layout"
)

// glyph is one piece of text placed by a show-text operator, usually a
// single character.
type glyph struct {
	Font string
	Size float64
	X, Y float64
	W    float64
	S    string
}

func (g glyph) right() float64 {
	return g.X + g.W
}

func glyphsFromText(texts []pdf.Text) []glyph {
	glyphs := make([]glyph, 0, len(texts))
	for _, t := range texts {
		size := math.Abs(t.FontSize)
		if size == 0 || t.S == "" {
			// Rotated text reports no horizontal scale.
			continue
		}
		glyphs = append(glyphs, glyph{
			Font: fontName(t.Font),
			Size: size,
			X:    t.X,
			Y:    t.Y,
			W:    t.W,
			S:    t.S,
		})
	}
	return glyphs
}

// fontName strips the subset tag from a base font name, so
// "ABCDEF+Helvetica-Bold" becomes "Helvetica-Bold".
func fontName(name string) string {
	if i := strings.IndexByte(name, '+'); i == 6 {
		return name[i+1:]
	}
	return name
}

// fragmentBuilder accumulates glyphs that read as one run of text.
type fragmentBuilder struct {
	sb      strings.Builder
	first   glyph
	end     float64
	size    float64
	pending bool
	active  bool
}

func (b *fragmentBuilder) start(g glyph) {
	b.sb.Reset()
	b.sb.WriteString(g.S)
	b.first = g
	b.end = g.right()
	b.size = g.Size
	b.pending = false
	b.active = true
}

func (b *fragmentBuilder) fragment() layout.Fragment {
	return layout.Fragment{
		Text:     b.sb.String(),
		X:        b.first.X,
		Y:        b.first.Y,
		Width:    b.end - b.first.X,
		FontSize: b.size,
		FontName: b.first.Font,
	}
}

// mergeGlyphs joins glyphs into fragments. A glyph extends the current
// fragment when it shares font, size and baseline and starts close to the
// previous glyph's end: within CharGapRatio of the font size it is glued on,
// within WordGapRatio a space is inserted first. Anything else starts a new
// fragment. Space glyphs only widen the gap.
func mergeGlyphs(glyphs []glyph, config Config) []layout.Fragment {
	var out []layout.Fragment
	var b fragmentBuilder

	flush := func() {
		if !b.active {
			return
		}
		if f := b.fragment(); strings.TrimSpace(f.Text) != "" {
			out = append(out, f)
		}
		b.active = false
	}

	for _, g := range glyphs {
		blank := strings.TrimSpace(g.S) == ""
		if blank {
			if b.active {
				b.pending = true
				b.end = math.Max(b.end, g.right())
			}
			continue
		}

		if b.active && continuesFragment(&b, g, config) {
			gap := g.X - b.end
			if b.pending || gap > config.CharGapRatio*g.Size {
				b.sb.WriteByte(' ')
			}
			b.sb.WriteString(g.S)
			b.end = math.Max(b.end, g.right())
			b.pending = false
			continue
		}

		flush()
		b.start(g)
	}
	flush()
	return out
}

func continuesFragment(b *fragmentBuilder, g glyph, config Config) bool {
	if g.Font != b.first.Font || math.Abs(g.Size-b.size) > 0.1 {
		return false
	}
	if math.Abs(g.Y-b.first.Y) > config.BaselineTolerance*g.Size {
		return false
	}
	gap := g.X - b.end
	return gap >= -config.CharGapRatio*g.Size && gap <= config.WordGapRatio*g.Size
}
