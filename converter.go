package docmark

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tsawler/docmark/markdown"
	"github.com/tsawler/docmark/model"
)

// Converter provides a fluent interface for converting a single document.
// Each configuration method returns a new Converter, so a partially
// configured Converter can be shared and extended safely.
type Converter struct {
	// Source: path is read lazily; data is used as-is when set.
	path     string
	filename string
	data     []byte

	engine  *Engine
	options markdown.Options
}

// Open creates a Converter for the file at path. The file is not read
// until a terminal method is called, and not at all when its extension is
// unsupported.
//
// Example:
//
//	md, err := docmark.Open("report.docx").Markdown()
func Open(path string) *Converter {
	return &Converter{
		path:     path,
		filename: filepath.Base(path),
		options:  markdown.DefaultOptions(),
	}
}

// FromBytes creates a Converter for an in-memory document. filename is
// used only to select the format.
//
// Example:
//
//	md, err := docmark.FromBytes(body, "upload.rtf").WithoutImages().Markdown()
func FromBytes(data []byte, filename string) *Converter {
	return &Converter{
		filename: filename,
		data:     data,
		options:  markdown.DefaultOptions(),
	}
}

func (c *Converter) clone() *Converter {
	newConv := *c
	return &newConv
}

// Using selects the Engine that performs the conversion. Without it a
// shared default Engine is used.
func (c *Converter) Using(engine *Engine) *Converter {
	newConv := c.clone()
	newConv.engine = engine
	return newConv
}

// WithoutFormatting drops bold, italic, underline, strikethrough and link
// markup while keeping document structure.
//
// Example:
//
//	md, err := docmark.Open("notes.rtf").WithoutFormatting().Markdown()
func (c *Converter) WithoutFormatting() *Converter {
	newConv := c.clone()
	newConv.options.PreserveFormatting = false
	return newConv
}

// WithoutImages omits every image from the output.
//
// Example:
//
//	md, err := docmark.Open("scan.pdf").WithoutImages().Markdown()
func (c *Converter) WithoutImages() *Converter {
	newConv := c.clone()
	newConv.options.IncludeImages = false
	return newConv
}

// MaxImageSize sets the largest allowed image edge in pixels. Larger
// images are scaled down proportionally.
//
// Example:
//
//	md, err := docmark.Open("report.docx").MaxImageSize(512).Markdown()
func (c *Converter) MaxImageSize(pixels int) *Converter {
	newConv := c.clone()
	newConv.options.MaxImageSize = pixels
	return newConv
}

// TableFormat selects the Markdown table dialect.
//
// Example:
//
//	md, err := docmark.Open("data.docx").TableFormat(markdown.TablePipe).Markdown()
func (c *Converter) TableFormat(f markdown.TableFormat) *Converter {
	newConv := c.clone()
	newConv.options.TableFormat = f
	return newConv
}

// Options returns the rendering options the Converter will use.
func (c *Converter) Options() markdown.Options {
	return c.options
}

// Markdown converts the document and returns its Markdown text.
func (c *Converter) Markdown() (string, error) {
	if err := c.options.Validate(); err != nil {
		return "", &OptionsError{Err: err}
	}

	engine := c.getEngine()
	if _, _, err := engine.lookup(c.filename); err != nil {
		return "", err
	}

	data, err := c.load()
	if err != nil {
		return "", err
	}
	return engine.Convert(data, c.filename, c.options)
}

// Document parses the document and returns the model without rendering.
func (c *Converter) Document() (*model.Document, error) {
	engine := c.getEngine()
	if _, _, err := engine.lookup(c.filename); err != nil {
		return nil, err
	}

	data, err := c.load()
	if err != nil {
		return nil, err
	}
	return engine.ConvertDocument(data, c.filename)
}

func (c *Converter) getEngine() *Engine {
	if c.engine != nil {
		return c.engine
	}
	return defaultEngine()
}

func (c *Converter) load() ([]byte, error) {
	if c.data != nil || c.path == "" {
		return c.data, nil
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c.path, err)
	}
	return data, nil
}
