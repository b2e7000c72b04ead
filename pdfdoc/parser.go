package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/tsawler/docmark/layout"
	"github.com/tsawler/docmark/model"
	"github.com/tsawler/docmark/tables"
)

const formatName = "PDF"

// envelopeWindow is how far from either end of the file the header and
// trailer markers are searched for.
const envelopeWindow = 1024

// Config holds PDF parsing options.
type Config struct {
	// CharGapRatio is the gap, as a multiple of the font size, below which
	// neighbouring glyphs are joined without a space (default: 0.15)
	CharGapRatio float64

	// WordGapRatio is the largest gap, as a multiple of the font size,
	// that still joins glyphs into one fragment with a space between them.
	// Wider gaps start a new fragment (default: 0.8)
	WordGapRatio float64

	// BaselineTolerance is the baseline shift, as a multiple of the font
	// size, tolerated within one fragment (default: 0.2)
	BaselineTolerance float64

	// Layout configures paragraph, heading, list and header/footer detection
	Layout layout.AnalyzerConfig

	// Tables configures table detection
	Tables tables.Config

	// DetectTables enables table detection
	DetectTables bool

	// IncludeImages extracts image XObjects as Image nodes
	IncludeImages bool

	// OCR recognizes text on pages that have images but no text layer.
	// It requires a build with the "ocr" tag.
	OCR bool

	// OCRLanguage is the Tesseract language, e.g. "eng" or "eng+deu"
	OCRLanguage string

	// Logger receives warnings about skipped pages and images. Nil
	// discards them.
	Logger *slog.Logger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		CharGapRatio:      0.15,
		WordGapRatio:      0.8,
		BaselineTolerance: 0.2,
		Layout:            layout.DefaultAnalyzerConfig(),
		Tables:            tables.DefaultConfig(),
		DetectTables:      true,
		IncludeImages:     true,
		OCRLanguage:       "eng",
	}
}

// Parser converts PDF documents. It is safe for concurrent use.
type Parser struct {
	config Config
	logger *slog.Logger
}

// NewParser creates a parser with default configuration.
func NewParser() *Parser {
	return NewParserWithConfig(DefaultConfig())
}

// NewParserWithConfig creates a parser with custom configuration.
func NewParserWithConfig(config Config) *Parser {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Parser{config: config, logger: logger}
}

// Parse parses a PDF with the default configuration.
func Parse(data []byte) (*model.Document, error) {
	return NewParser().Parse(data)
}

// pageContent is what one page contributes before layout analysis.
type pageContent struct {
	fragments []layout.Fragment
	rules     []tables.Rule
	images    []*model.Image
}

// Parse reconstructs the document structure of a PDF.
func (p *Parser) Parse(data []byte) (*model.Document, error) {
	if err := checkEnvelope(data); err != nil {
		return nil, err
	}

	r, numPages, err := openReader(data)
	if err != nil {
		return nil, err
	}
	if numPages <= 0 {
		return nil, model.NewParseError(model.CorruptInput, formatName, "document has no pages", nil)
	}

	doc := model.NewDocument()
	doc.Metadata = readMetadata(r)
	doc.Metadata.Format = formatName
	doc.Metadata.PageCount = numPages

	images := newImageExtractor(data)
	pages := make([]pageContent, numPages)
	var firstErr error
	failed := 0
	for i := range pages {
		pc, err := p.readPage(r, i+1, images)
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			p.logger.Warn("skipping unreadable PDF page", "page", i+1, "error", err)
			continue
		}
		pages[i] = pc
	}
	if failed == numPages {
		return nil, model.NewParseError(model.CorruptInput, formatName, "no page could be read", firstErr)
	}
	for _, err := range images.errs {
		p.logger.Debug("skipping PDF image", "error", err)
	}

	if p.config.OCR {
		p.recognize(pages)
	}

	doc.Append(p.buildNodes(pages)...)
	return doc, nil
}

// checkEnvelope rejects input that is not a PDF or is cut short.
func checkEnvelope(data []byte) error {
	head := data[:min(len(data), envelopeWindow)]
	if !bytes.Contains(head, []byte("%PDF-")) {
		return model.NewParseError(model.CorruptInput, formatName, "missing %PDF header", nil)
	}
	tail := data[max(0, len(data)-envelopeWindow):]
	if !bytes.Contains(tail, []byte("%%EOF")) || !bytes.Contains(tail, []byte("startxref")) {
		return model.NewParseError(model.Truncated, formatName, "missing trailer", nil)
	}
	return nil
}

// openReader opens the document and counts its pages. The reader panics on
// some malformed input, which is reported as corrupt.
func openReader(data []byte) (r *pdf.Reader, numPages int, err error) {
	defer func() {
		if v := recover(); v != nil {
			r, numPages = nil, 0
			err = model.NewParseError(model.CorruptInput, formatName, "opening document", fmt.Errorf("%v", v))
		}
	}()

	r, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) || strings.Contains(strings.ToLower(err.Error()), "encrypt") {
			return nil, 0, model.NewParseError(model.UnsupportedFeature, formatName, "document is encrypted", err)
		}
		return nil, 0, model.NewParseError(model.CorruptInput, formatName, "opening document", err)
	}
	return r, r.NumPage(), nil
}

// readMetadata reads the Info dictionary. Whatever was read before a
// failure is kept.
func readMetadata(r *pdf.Reader) (meta model.Metadata) {
	defer func() {
		_ = recover()
	}()

	info := r.Trailer().Key("Info")
	if info.Kind() != pdf.Dict {
		return meta
	}
	meta.Title = strings.TrimSpace(info.Key("Title").Text())
	meta.Author = strings.TrimSpace(info.Key("Author").Text())
	meta.Subject = strings.TrimSpace(info.Key("Subject").Text())
	meta.Creator = strings.TrimSpace(info.Key("Creator").Text())
	meta.Producer = strings.TrimSpace(info.Key("Producer").Text())
	meta.Keywords = splitKeywords(info.Key("Keywords").Text())
	return meta
}

func splitKeywords(s string) []string {
	var keywords []string
	for _, k := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

// readPage extracts one page's text, ruling lines and images.
func (p *Parser) readPage(r *pdf.Reader, num int, images *imageExtractor) (pc pageContent, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("page %d: %v", num, v)
		}
	}()

	page := r.Page(num)
	if page.V.IsNull() {
		return pc, fmt.Errorf("page %d: missing page object", num)
	}

	content := page.Content()
	pc.fragments = mergeGlyphs(glyphsFromText(content.Text), p.config)
	for _, rect := range content.Rect {
		pc.rules = append(pc.rules, tables.RulesFromRect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y)...)
	}

	if p.config.IncludeImages || p.config.OCR {
		pc.images = p.readImages(page, num, images)
	}
	return pc, nil
}

// readImages recovers on its own so a bad image keeps the page's text.
func (p *Parser) readImages(page pdf.Page, num int, images *imageExtractor) (out []*model.Image) {
	defer func() {
		if v := recover(); v != nil {
			p.logger.Warn("skipping PDF page images", "page", num, "error", v)
		}
	}()
	return images.pageImages(page.Resources())
}
