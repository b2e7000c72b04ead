package tables

import (
	"math"
	"reflect"
	"testing"

	"github.com/tsawler/docmark/layout"
	"github.com/tsawler/docmark/model"
)

// frag builds a fragment whose width is half an em per character.
func frag(text string, x, y float64) layout.Fragment {
	return layout.Fragment{
		Text:     text,
		X:        x,
		Y:        y,
		Width:    float64(len([]rune(text))) * 6,
		FontSize: 12,
		FontName: "Helvetica",
	}
}

func lines(frags ...layout.Fragment) []layout.Line {
	return layout.NewLineDetector().Detect(frags)
}

// priceTable is a paragraph, a 3x3 table and another paragraph.
func priceTable() []layout.Line {
	return lines(
		frag("Prices for this week are listed below", 72, 730),
		frag("Name", 72, 700), frag("Qty", 200, 700), frag("Price", 320, 700),
		frag("Apple", 72, 686), frag("3", 200, 686), frag("1.20", 320, 686),
		frag("Pear", 72, 672), frag("10", 200, 672), frag("0.80", 320, 672),
		frag("All prices include tax", 72, 640),
	)
}

func cellText(t *model.Table, row, col int) string {
	return model.PlainText(t.Rows[row].Cells[col].Content)
}

func TestDetector_AlignedTable(t *testing.T) {
	found := NewDetector().Detect(priceTable())

	if len(found) != 1 {
		t.Fatalf("expected 1 table, got %d", len(found))
	}
	c := found[0]
	if c.Start != 1 || c.End != 4 {
		t.Errorf("lines [%d, %d), want [1, 4)", c.Start, c.End)
	}
	if math.Abs(c.Confidence-0.8) > 1e-9 {
		t.Errorf("confidence = %v, want 0.8", c.Confidence)
	}
	if c.Table.RowCount() != 3 || c.Table.ColCount() != 3 {
		t.Fatalf("table is %dx%d, want 3x3", c.Table.RowCount(), c.Table.ColCount())
	}

	want := [][]string{
		{"Name", "Qty", "Price"},
		{"Apple", "3", "1.20"},
		{"Pear", "10", "0.80"},
	}
	for r := range want {
		for col := range want[r] {
			if got := cellText(c.Table, r, col); got != want[r][col] {
				t.Errorf("cell (%d,%d) = %q, want %q", r, col, got, want[r][col])
			}
		}
	}
}

func TestDetector_RulesRaiseConfidence(t *testing.T) {
	var rules []Rule
	rules = append(rules, RulesFromRect(60, 692.5, 360, 693.5)...)
	rules = append(rules, RulesFromRect(60, 678.5, 360, 679.5)...)
	rules = append(rules, RulesFromRect(149.5, 660, 150.5, 720)...)
	rules = append(rules, RulesFromRect(269.5, 660, 270.5, 720)...)

	found := NewDetector().WithRules(rules).Detect(priceTable())
	if len(found) != 1 {
		t.Fatalf("expected 1 table, got %d", len(found))
	}
	if math.Abs(found[0].Confidence-1.0) > 1e-9 {
		t.Errorf("confidence = %v, want 1.0", found[0].Confidence)
	}
}

func TestDetector_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		lines []layout.Line
	}{
		{
			name: "misaligned columns",
			lines: lines(
				frag("alpha", 72, 700), frag("beta", 200, 700),
				frag("gamma", 72, 686), frag("delta", 260, 686),
			),
		},
		{
			name: "bullet list",
			lines: lines(
				frag("•", 72, 700), frag("first item text", 100, 700),
				frag("•", 72, 686), frag("second item", 100, 686),
			),
		},
		{
			name: "numbered list",
			lines: lines(
				frag("1.", 72, 700), frag("first item text", 100, 700),
				frag("2.", 72, 686), frag("second item", 100, 686),
			),
		},
		{
			name: "prose",
			lines: lines(
				frag("Just a paragraph of running text", 72, 700),
				frag("that wraps onto a second line", 72, 686),
			),
		},
		{
			name: "rows far apart",
			lines: lines(
				frag("Name", 72, 700), frag("Qty", 200, 700),
				frag("Apple", 72, 600), frag("3", 200, 600),
			),
		},
		{
			name: "single row",
			lines: lines(frag("Name", 72, 700), frag("Qty", 200, 700)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if found := NewDetector().Detect(tt.lines); len(found) != 0 {
				t.Errorf("expected no table, got %d (confidence %v)", len(found), found[0].Confidence)
			}
		})
	}
}

func TestDetector_CellStyles(t *testing.T) {
	header := frag("Name", 72, 700)
	header.FontName = "Helvetica-Bold"
	found := NewDetector().Detect(lines(
		header, frag("Qty", 200, 700),
		frag("Apple", 72, 686), frag("3", 200, 686),
	))
	if len(found) != 1 {
		t.Fatalf("expected 1 table, got %d", len(found))
	}

	want := []model.Inline{model.Bold{Children: []model.Inline{model.Text{Content: "Name"}}}}
	if got := found[0].Table.Rows[0].Cells[0].Content; !reflect.DeepEqual(got, want) {
		t.Errorf("header cell = %#v, want %#v", got, want)
	}
}

func TestDetector_MultiWordCells(t *testing.T) {
	found := NewDetector().Detect(lines(
		frag("First", 72, 700), frag("name", 108, 700), frag("Last name", 250, 700),
		frag("Ada", 72, 686), frag("Lovelace", 250, 686),
	))
	if len(found) != 1 {
		t.Fatalf("expected 1 table, got %d", len(found))
	}
	if got := cellText(found[0].Table, 0, 0); got != "First name" {
		t.Errorf("cell (0,0) = %q, want %q", got, "First name")
	}
}

func TestDetector_Claim(t *testing.T) {
	regions := NewDetector().Claim(priceTable())

	if len(regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(regions))
	}
	if regions[0].Start != 1 || regions[0].End != 4 {
		t.Errorf("region [%d, %d), want [1, 4)", regions[0].Start, regions[0].End)
	}
	if _, ok := regions[0].Node.(*model.Table); !ok {
		t.Errorf("region node is %T, want *model.Table", regions[0].Node)
	}
}

func TestRulesFromRect(t *testing.T) {
	tests := []struct {
		name       string
		x0, y0     float64
		x1, y1     float64
		want       int
		horizontal bool
	}{
		{"horizontal rule", 0, 100, 200, 101, 1, true},
		{"reversed corners", 200, 101, 0, 100, 1, true},
		{"vertical rule", 50, 0, 51, 300, 1, false},
		{"cell border", 0, 0, 100, 20, 4, false},
		{"dot", 0, 0, 1, 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := RulesFromRect(tt.x0, tt.y0, tt.x1, tt.y1)
			if len(rules) != tt.want {
				t.Fatalf("got %d rules, want %d", len(rules), tt.want)
			}
			if tt.want == 1 && rules[0].Horizontal() != tt.horizontal {
				t.Errorf("Horizontal() = %v, want %v", rules[0].Horizontal(), tt.horizontal)
			}
		})
	}
}

func TestCoefficientOfVariation(t *testing.T) {
	if cv := coefficientOfVariation([]float64{14, 14, 14}); cv != 0 {
		t.Errorf("uniform CV = %v, want 0", cv)
	}
	if cv := coefficientOfVariation([]float64{10, 30}); math.Abs(cv-0.5) > 1e-9 {
		t.Errorf("CV = %v, want 0.5", cv)
	}
}
