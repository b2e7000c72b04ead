// Package textdoc parses plain text documents into paragraphs.
package textdoc

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/tsawler/docmark/model"
)

const formatName = "TEXT"

// Config holds plain text parsing options.
type Config struct {
	// BinaryProbeSize is how many leading decoded bytes are scanned for NUL
	// characters. Input containing a NUL in that window is rejected.
	BinaryProbeSize int

	// JoinLines joins the lines of a paragraph with a single space. When
	// false, lines are kept and joined with newlines.
	JoinLines bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BinaryProbeSize: 8 * 1024,
		JoinLines:       true,
	}
}

// Parser converts plain text into a document of paragraphs.
type Parser struct {
	config Config
}

// NewParser creates a parser with default configuration.
func NewParser() *Parser {
	return NewParserWithConfig(DefaultConfig())
}

// NewParserWithConfig creates a parser with custom configuration.
func NewParserWithConfig(config Config) *Parser {
	return &Parser{config: config}
}

// Parse parses text with the default configuration.
func Parse(data []byte) (*model.Document, error) {
	return NewParser().Parse(data)
}

// Parse decodes data and splits it into paragraphs on blank lines.
// Headings, tables and images are never produced.
func (p *Parser) Parse(data []byte) (*model.Document, error) {
	text, err := decode(data)
	if err != nil {
		return nil, model.NewParseError(model.CorruptInput, formatName, "decoding text", err)
	}

	probe := text
	if p.config.BinaryProbeSize > 0 && len(probe) > p.config.BinaryProbeSize {
		probe = probe[:p.config.BinaryProbeSize]
	}
	if strings.IndexByte(probe, 0) >= 0 {
		return nil, model.NewParseError(model.CorruptInput, formatName, "input looks like binary data", nil)
	}

	doc := model.NewDocument()
	doc.Metadata.Format = formatName
	for _, para := range splitParagraphs(text) {
		doc.Append(&model.Paragraph{Content: model.Texts(p.joinLines(para))})
	}
	return doc, nil
}

// decode converts data to UTF-8. A UTF-8 or UTF-16 byte order mark selects
// the encoding; otherwise UTF-8 is assumed and invalid sequences become
// U+FFFD.
func decode(data []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// splitParagraphs normalises line endings and groups non-blank lines.
func splitParagraphs(text string) [][]string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var paras [][]string
	var current []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t\f\v")
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				paras = append(paras, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		paras = append(paras, current)
	}
	return paras
}

func (p *Parser) joinLines(lines []string) string {
	if !p.config.JoinLines {
		return strings.Join(lines, "\n")
	}
	var buf bytes.Buffer
	for i, line := range lines {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(strings.TrimSpace(line))
	}
	return buf.String()
}
