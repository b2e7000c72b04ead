package layout

import (
	"reflect"
	"strings"
	"testing"

	"github.com/tsawler/docmark/model"
)

// frag builds a fragment whose width is half an em per character.
func frag(text string, x, y, size float64) Fragment {
	return Fragment{
		Text:     text,
		X:        x,
		Y:        y,
		Width:    float64(len([]rune(text))) * size * 0.5,
		FontSize: size,
		FontName: "Helvetica",
	}
}

func boldFrag(text string, x, y, size float64) Fragment {
	f := frag(text, x, y, size)
	f.FontName = "Helvetica-Bold"
	return f
}

// textLines lays out one fragment per line at the given baselines.
func textLines(x, size float64, rows ...any) []Line {
	var frags []Fragment
	for i := 0; i+1 < len(rows); i += 2 {
		frags = append(frags, frag(rows[i].(string), x, rows[i+1].(float64), size))
	}
	return NewLineDetector().Detect(frags)
}

func TestLineDetector_Empty(t *testing.T) {
	if lines := NewLineDetector().Detect(nil); lines != nil {
		t.Errorf("expected no lines, got %v", lines)
	}
}

func TestLineDetector_JoinsFragments(t *testing.T) {
	tests := []struct {
		name  string
		frags []Fragment
		want  string
	}{
		{"word gap", []Fragment{frag("Hello", 72, 700, 12), frag("world", 105, 700, 12)}, "Hello world"},
		{"touching", []Fragment{frag("Hel", 72, 700, 12), frag("lo", 90, 700, 12)}, "Hello"},
		{"out of order", []Fragment{frag("world", 105, 700, 12), frag("Hello", 72, 700, 12)}, "Hello world"},
		{"baseline jitter", []Fragment{frag("E", 72, 700, 12), frag("2", 80, 703, 8)}, "E 2"},
		{"explicit space", []Fragment{frag("Hello ", 72, 700, 12), frag("world", 110, 700, 12)}, "Hello world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := NewLineDetector().Detect(tt.frags)
			if len(lines) != 1 {
				t.Fatalf("expected 1 line, got %d", len(lines))
			}
			if lines[0].Text != tt.want {
				t.Errorf("Text = %q, want %q", lines[0].Text, tt.want)
			}
		})
	}
}

func TestLineDetector_OrderAndPitch(t *testing.T) {
	lines := NewLineDetector().Detect([]Fragment{
		frag("second", 72, 680, 12),
		frag("first", 72, 700, 12),
		frag("   ", 72, 660, 12),
	})

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Text != "first" || lines[1].Text != "second" {
		t.Errorf("lines out of order: %q, %q", lines[0].Text, lines[1].Text)
	}
	if lines[0].Pitch != 0 {
		t.Errorf("first line pitch = %v, want 0", lines[0].Pitch)
	}
	if lines[1].Pitch != 20 {
		t.Errorf("second line pitch = %v, want 20", lines[1].Pitch)
	}
	if lines[0].Height != 12 || lines[0].AverageFontSize != 12 {
		t.Errorf("metrics = %v/%v, want 12/12", lines[0].Height, lines[0].AverageFontSize)
	}
}

func TestLineDetector_Alignment(t *testing.T) {
	lines := NewLineDetector().Detect([]Fragment{
		{Text: strings.Repeat("x", 78), X: 72, Y: 700, Width: 468, FontSize: 12},
		{Text: "centred", X: 256, Y: 680, Width: 100, FontSize: 12},
		{Text: "left", X: 72, Y: 660, Width: 100, FontSize: 12},
		{Text: "right", X: 440, Y: 640, Width: 100, FontSize: 12},
	})

	want := []LineAlignment{AlignJustified, AlignCenter, AlignLeft, AlignRight}
	for i, line := range lines {
		if line.Alignment != want[i] {
			t.Errorf("line %d (%s): alignment %v, want %v", i, line.Text, line.Alignment, want[i])
		}
	}
}

func TestLine_Inlines(t *testing.T) {
	lines := NewLineDetector().Detect([]Fragment{
		boldFrag("Bold", 72, 700, 12),
		frag("text", 100, 700, 12),
	})
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}

	want := []model.Inline{
		model.Bold{Children: []model.Inline{model.Text{Content: "Bold"}}},
		model.Text{Content: " text"},
	}
	if got := lines[0].Inlines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Inlines() = %#v, want %#v", got, want)
	}
	if lines[0].Bold() {
		t.Error("line with equal bold and plain text reported bold")
	}
}

func TestLine_BoldSpaceKeepsStyle(t *testing.T) {
	lines := NewLineDetector().Detect([]Fragment{
		boldFrag("Two", 72, 700, 12),
		boldFrag("words", 96, 700, 12),
	})

	want := []model.Inline{
		model.Bold{Children: []model.Inline{model.Text{Content: "Two words"}}},
	}
	if got := lines[0].Inlines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Inlines() = %#v, want %#v", got, want)
	}
	if !lines[0].Bold() {
		t.Error("expected bold line")
	}
}

func TestFragment_Style(t *testing.T) {
	tests := []struct {
		font string
		want model.Style
	}{
		{"Helvetica", model.Style{}},
		{"Helvetica-Bold", model.Style{Bold: true}},
		{"ABCDEF+Arial-BoldItalicMT", model.Style{Bold: true, Italic: true}},
		{"Times-Oblique", model.Style{Italic: true}},
		{"Inter-SemiBold", model.Style{Bold: true}},
	}

	for _, tt := range tests {
		if got := (Fragment{FontName: tt.font}).Style(); got != tt.want {
			t.Errorf("Style(%q) = %+v, want %+v", tt.font, got, tt.want)
		}
	}
}

func TestLineAlignment_String(t *testing.T) {
	tests := []struct {
		a    LineAlignment
		want string
	}{
		{AlignUnknown, "unknown"},
		{AlignLeft, "left"},
		{AlignCenter, "center"},
		{AlignRight, "right"},
		{AlignJustified, "justified"},
	}
	for _, tt := range tests {
		if got := tt.a.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.a, got, tt.want)
		}
	}
}
