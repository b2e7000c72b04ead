package layout

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tsawler/docmark/model"
)

// AnalyzerConfig holds configuration options for the layout analyzer.
// Each detection component has its own sub-configuration.
type AnalyzerConfig struct {
	Column       ColumnConfig
	Line         LineConfig
	Paragraph    ParagraphConfig
	Heading      HeadingConfig
	List         ListConfig
	HeaderFooter HeaderFooterConfig

	// DetectColumns reads multi-column pages column by column
	DetectColumns bool

	// RemoveHeadersFooters enables running header and footer removal
	RemoveHeadersFooters bool

	// JoinAcrossPages merges a paragraph broken by a page boundary
	JoinAcrossPages bool
}

// DefaultAnalyzerConfig returns a configuration with all detection enabled.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		Column:               DefaultColumnConfig(),
		Line:                 DefaultLineConfig(),
		Paragraph:            DefaultParagraphConfig(),
		Heading:              DefaultHeadingConfig(),
		List:                 DefaultListConfig(),
		HeaderFooter:         DefaultHeaderFooterConfig(),
		DetectColumns:        true,
		RemoveHeadersFooters: true,
		JoinAcrossPages:      true,
	}
}

// Region marks the lines [Start, End) of a page as replaced by Node, for
// example a detected table.
type Region struct {
	Start, End int
	Node       model.Node
}

// Claimer finds regions of a page's lines that are not running text.
// Regions must be ordered and must not overlap.
type Claimer interface {
	Claim(lines []Line) []Region
}

// PageClaimer is a Claimer whose regions depend on the page being
// analyzed. Analyze prefers ClaimPage when a Claimer implements it.
type PageClaimer interface {
	Claimer
	ClaimPage(page int, lines []Line) []Region
}

// Block is one unit of analyzed page content: either a paragraph or a node
// produced by a Claimer.
type Block struct {
	Page      int
	Paragraph *Paragraph
	Node      model.Node
}

// Result is the outcome of analyzing a document.
type Result struct {
	Blocks       []Block
	BodyFontSize float64
}

// Analyzer turns positioned text fragments into paragraphs, headings and
// lists.
type Analyzer struct {
	config    AnalyzerConfig
	columns   *ColumnDetector
	lines     *LineDetector
	paragraph *ParagraphDetector
	heading   *HeadingDetector
	list      *ListDetector
	headers   *HeaderFooterDetector
}

// NewAnalyzer creates an analyzer with the default configuration.
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithConfig(DefaultAnalyzerConfig())
}

// NewAnalyzerWithConfig creates an analyzer with a custom configuration.
func NewAnalyzerWithConfig(config AnalyzerConfig) *Analyzer {
	return &Analyzer{
		config:    config,
		columns:   NewColumnDetectorWithConfig(config.Column),
		lines:     NewLineDetectorWithConfig(config.Line),
		paragraph: NewParagraphDetectorWithConfig(config.Paragraph),
		heading:   NewHeadingDetectorWithConfig(config.Heading),
		list:      NewListDetectorWithConfig(config.List),
		headers:   NewHeaderFooterDetectorWithConfig(config.HeaderFooter),
	}
}

// Lines groups each page's fragments into lines, top to bottom.
func (a *Analyzer) Lines(pages [][]Fragment) [][]Line {
	out := make([][]Line, len(pages))
	for i, frags := range pages {
		out[i] = a.pageLines(frags)
	}
	return out
}

func (a *Analyzer) pageLines(fragments []Fragment) []Line {
	if !a.config.DetectColumns {
		return a.lines.Detect(fragments)
	}
	cols := a.columns.Detect(fragments)
	if !cols.IsMultiColumn() {
		return a.lines.Detect(fragments)
	}

	lines := a.lines.Detect(cols.Above)
	for _, col := range cols.Columns {
		colLines := a.lines.Detect(col)
		if !a.columns.proseLike(colLines) {
			return a.lines.Detect(fragments)
		}
		lines = append(lines, colLines...)
	}
	lines = append(lines, a.lines.Detect(cols.Below)...)

	for i := 1; i < len(lines); i++ {
		lines[i].Pitch = lines[i-1].Baseline - lines[i].Baseline
	}
	return lines
}

// Analyze runs the full pipeline over a document's pages. claim may be nil.
func (a *Analyzer) Analyze(pages [][]Fragment, claim Claimer) *Result {
	lines := a.Lines(pages)
	if a.config.RemoveHeadersFooters {
		lines = a.headers.Filter(lines)
	}

	var blocks []Block
	for page, pageLines := range lines {
		var regions []Region
		switch c := claim.(type) {
		case nil:
		case PageClaimer:
			regions = c.ClaimPage(page, pageLines)
		default:
			regions = c.Claim(pageLines)
		}

		next := 0
		for _, r := range regions {
			if r.Start < next || r.End > len(pageLines) || r.Start >= r.End {
				continue
			}
			blocks = a.appendParagraphs(blocks, page, pageLines[next:r.Start])
			blocks = append(blocks, Block{Page: page, Node: r.Node})
			next = r.End
		}
		blocks = a.appendParagraphs(blocks, page, pageLines[next:])
	}

	if a.config.JoinAcrossPages {
		blocks = a.joinAcrossPages(blocks)
	}

	paragraphs := make([]Paragraph, 0, len(blocks))
	for _, b := range blocks {
		if b.Paragraph != nil {
			paragraphs = append(paragraphs, *b.Paragraph)
		}
	}
	body := a.heading.Detect(paragraphs)
	a.list.Detect(paragraphs)

	k := 0
	for i := range blocks {
		if blocks[i].Paragraph != nil {
			blocks[i].Paragraph = &paragraphs[k]
			k++
		}
	}
	return &Result{Blocks: blocks, BodyFontSize: body}
}

func (a *Analyzer) appendParagraphs(blocks []Block, page int, lines []Line) []Block {
	if len(lines) == 0 {
		return blocks
	}
	first := lines[0]
	if first.Pitch != 0 {
		// The line above belongs to another block.
		lines = append([]Line{first}, lines[1:]...)
		lines[0].Pitch = 0
	}
	for _, p := range a.paragraph.Detect(lines) {
		blocks = append(blocks, Block{Page: page, Paragraph: &p})
	}
	return blocks
}

// joinAcrossPages merges the last paragraph of a page with the first of the
// next when the sentence visibly continues.
func (a *Analyzer) joinAcrossPages(blocks []Block) []Block {
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if len(out) > 0 && b.Paragraph != nil {
			prev := out[len(out)-1]
			if prev.Paragraph != nil && prev.Page+1 == b.Page && continues(prev.Paragraph, b.Paragraph) {
				lines := make([]Line, 0, len(prev.Paragraph.Lines)+len(b.Paragraph.Lines))
				lines = append(lines, prev.Paragraph.Lines...)
				lines = append(lines, b.Paragraph.Lines...)
				merged := a.paragraph.buildParagraph(lines)
				out[len(out)-1] = Block{Page: b.Page, Paragraph: &merged}
				continue
			}
		}
		out = append(out, b)
	}
	return out
}

func continues(prev, next *Paragraph) bool {
	if prev.FontSize <= 0 || absFloat64(prev.FontSize-next.FontSize) > 0.5 {
		return false
	}
	if parseListMarker(next.Text) != nil {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(strings.TrimSpace(prev.Text))
	if last == '.' || last == '!' || last == '?' || last == ':' {
		return false
	}
	first, _ := utf8.DecodeRuneInString(next.Text)
	return unicode.IsLower(first)
}
