package layout

import "testing"

// para builds a single paragraph from fragments, one line per baseline.
func para(frags ...Fragment) Paragraph {
	return NewParagraphDetector().buildParagraph(NewLineDetector().Detect(frags))
}

func TestHeadingDetector_Levels(t *testing.T) {
	paras := []Paragraph{
		para(frag("Annual Report", 72, 750, 24)),
		para(frag("Overview", 72, 700, 16)),
		para(frag(longLine, 72, 680, 12), frag(longLine, 72, 666, 12), frag(longLine, 72, 652, 12)),
		para(boldFrag("SUMMARY", 72, 620, 12)),
		para(boldFrag("1.2 Scope", 72, 600, 12)),
		para(boldFrag("Note", 72, 580, 12)),
		para(boldFrag("This bold sentence is just emphasis.", 72, 560, 12)),
		para(frag("Details", 72, 530, 16)),
		para(frag(longLine, 72, 500, 12), frag(longLine, 72, 486, 12)),
	}

	body := NewHeadingDetector().Detect(paras)
	if body != 12 {
		t.Errorf("body font size = %v, want 12", body)
	}

	want := []int{1, 2, 0, 3, 3, 0, 0, 2, 0}
	for i, p := range paras {
		if p.HeadingLevel != want[i] {
			t.Errorf("paragraph %d (%q): level %d, want %d", i, p.Text, p.HeadingLevel, want[i])
		}
	}
}

func TestHeadingDetector_DottedNumberDepth(t *testing.T) {
	paras := []Paragraph{
		para(boldFrag("1 Introduction", 72, 700, 12)),
		para(boldFrag("1.1 Background", 72, 680, 12)),
		para(boldFrag("1.1.1 Prior work", 72, 660, 12)),
		para(frag(longLine, 72, 640, 12), frag(longLine, 72, 626, 12)),
	}

	NewHeadingDetector().Detect(paras)

	want := []int{1, 2, 3, 0}
	for i, p := range paras {
		if p.HeadingLevel != want[i] {
			t.Errorf("paragraph %d (%q): level %d, want %d", i, p.Text, p.HeadingLevel, want[i])
		}
	}
}

func TestHeadingDetector_TooManyLines(t *testing.T) {
	paras := []Paragraph{
		para(frag(longLine, 72, 700, 18), frag(longLine, 72, 680, 18), frag(longLine, 72, 660, 18), frag(longLine, 72, 640, 18)),
		para(frag(longLine, 72, 600, 12), frag(longLine, 72, 586, 12), frag(longLine, 72, 572, 12),
			frag(longLine, 72, 558, 12), frag(longLine, 72, 544, 12)),
	}

	NewHeadingDetector().Detect(paras)
	if paras[0].HeadingLevel != 0 {
		t.Errorf("four-line paragraph detected as heading level %d", paras[0].HeadingLevel)
	}
}

func TestHeadingDetector_Empty(t *testing.T) {
	if body := NewHeadingDetector().Detect(nil); body != 0 {
		t.Errorf("body font size = %v, want 0", body)
	}
}

func TestBodyFontSize(t *testing.T) {
	paras := []Paragraph{
		para(frag("Big title here", 72, 700, 20)),
		para(frag(longLine, 72, 680, 10.9)),
		para(frag(longLine, 72, 660, 11.1)),
	}
	if got := BodyFontSize(paras); got != 11 {
		t.Errorf("BodyFontSize = %v, want 11", got)
	}
}

func TestIsAllCaps(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"SUMMARY", true},
		{"PART 2: RESULTS", true},
		{"Summary", false},
		{"A", false},
		{"123", false},
	}
	for _, tt := range tests {
		if got := isAllCaps(tt.text); got != tt.want {
			t.Errorf("isAllCaps(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
