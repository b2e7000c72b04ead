package docmark

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/tsawler/docmark/docx"
	"github.com/tsawler/docmark/format"
	"github.com/tsawler/docmark/markdown"
	"github.com/tsawler/docmark/model"
	"github.com/tsawler/docmark/pdfdoc"
	"github.com/tsawler/docmark/rtfdoc"
	"github.com/tsawler/docmark/textdoc"
)

// Parser turns the raw bytes of one document into a model.Document.
type Parser interface {
	Parse(data []byte) (*model.Document, error)
}

// ParserFunc adapts a plain function to the Parser interface.
type ParserFunc func(data []byte) (*model.Document, error)

// Parse calls f(data).
func (f ParserFunc) Parse(data []byte) (*model.Document, error) {
	return f(data)
}

// Engine converts documents to Markdown. An Engine holds no mutable state
// after New returns and is safe for concurrent use.
type Engine struct {
	parsers   map[format.Format]Parser
	logger    *slog.Logger
	pdfConfig pdfdoc.Config
	workers   int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for conversion events. The default
// discards everything.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithPDFConfig replaces the PDF parser configuration. A nil Logger in
// config inherits the engine's logger.
func WithPDFConfig(config pdfdoc.Config) EngineOption {
	return func(e *Engine) {
		e.pdfConfig = config
	}
}

// WithParser registers p for f, replacing the built-in parser.
func WithParser(f format.Format, p Parser) EngineOption {
	return func(e *Engine) {
		if p != nil {
			e.parsers[f] = p
		}
	}
}

// WithWorkers bounds the number of documents ConvertAll converts at once.
// Values below one select runtime.GOMAXPROCS(0).
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		e.workers = n
	}
}

// New creates an Engine with the built-in parsers for every supported
// format.
func New(opts ...EngineOption) *Engine {
	e := &Engine{
		parsers:   make(map[format.Format]Parser),
		logger:    slog.New(slog.DiscardHandler),
		pdfConfig: pdfdoc.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.workers < 1 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	if e.pdfConfig.Logger == nil {
		e.pdfConfig.Logger = e.logger
	}

	builtin := map[format.Format]Parser{
		format.DOCX: docx.NewParser(),
		format.PDF:  pdfdoc.NewParserWithConfig(e.pdfConfig),
		format.TEXT: textdoc.NewParser(),
		format.RTF:  rtfdoc.NewParser(),
	}
	for f, p := range builtin {
		if _, ok := e.parsers[f]; !ok {
			e.parsers[f] = p
		}
	}

	return e
}

// Convert converts data to Markdown. filename selects the parser by its
// extension and is never opened. The result is either the complete
// Markdown text or an error; there is no partial output.
func (e *Engine) Convert(data []byte, filename string, opts markdown.Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", &OptionsError{Err: err}
	}

	doc, err := e.ConvertDocument(data, filename)
	if err != nil {
		return "", err
	}

	return e.render(doc, opts)
}

// ConvertDocument parses data into the document model without rendering.
func (e *Engine) ConvertDocument(data []byte, filename string) (*model.Document, error) {
	f, parser, err := e.lookup(filename)
	if err != nil {
		e.logger.Debug("unsupported document", "filename", filename)
		return nil, err
	}

	start := time.Now()
	doc, err := e.parse(parser, f, data)
	if err != nil {
		e.logger.Warn("parse failed",
			"filename", filename,
			"format", f.String(),
			"bytes", len(data),
			"error", err)
		return nil, err
	}

	e.logger.Debug("parsed document",
		"filename", filename,
		"format", f.String(),
		"bytes", len(data),
		"nodes", len(doc.Nodes),
		"duration", time.Since(start))
	return doc, nil
}

// Supports reports whether the engine has a parser for filename.
func (e *Engine) Supports(filename string) bool {
	_, _, err := e.lookup(filename)
	return err == nil
}

func (e *Engine) lookup(filename string) (format.Format, Parser, error) {
	f := format.Detect(filename)
	if p, ok := e.parsers[f]; ok && f != format.Unknown {
		return f, p, nil
	}
	return format.Unknown, nil, &UnsupportedError{
		Filename:  filename,
		Extension: strings.ToLower(filepath.Ext(filename)),
	}
}

func (e *Engine) parse(p Parser, f format.Format, data []byte) (doc *model.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = model.NewParseError(model.CorruptInput, f.String(), "parser panicked", fmt.Errorf("%v", r))
		}
	}()

	doc, err = p.Parse(data)
	if err != nil {
		var perr *model.ParseError
		if !errors.As(err, &perr) {
			err = model.NewParseError(model.CorruptInput, f.String(), "", err)
		}
		return nil, err
	}
	if doc == nil {
		doc = &model.Document{}
	}
	return doc, nil
}

func (e *Engine) render(doc *model.Document, opts markdown.Options) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = &RenderError{Err: fmt.Errorf("renderer panicked: %v", r)}
		}
	}()

	out, err = markdown.Render(doc, opts)
	if err != nil {
		if errors.Is(err, markdown.ErrInvalidOptions) {
			return "", &OptionsError{Err: err}
		}
		return "", &RenderError{Err: err}
	}
	return out, nil
}
