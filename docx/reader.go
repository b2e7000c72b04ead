// Package docx provides DOCX (Office Open XML) document parsing.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/tsawler/docmark/model"
)

const formatName = "DOCX"

// Config holds DOCX parsing options.
type Config struct {
	// IncludeImages controls whether media parts are read into images.
	IncludeImages bool

	// MaxPartSize caps the decompressed size of any single part. Zero
	// disables the cap.
	MaxPartSize int64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		IncludeImages: true,
		MaxPartSize:   256 << 20,
	}
}

// Parser converts DOCX packages into a model.Document.
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

// Parse parses a DOCX package with the default configuration.
func Parse(data []byte) (*model.Document, error) {
	return NewParser().Parse(data)
}

var (
	zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

	errPartTooLarge = errors.New("part exceeds size limit")
)

// pkg is an opened DOCX package.
type pkg struct {
	config Config
	files  map[string]*zip.File
}

// Parse opens the package held in data and converts its main document.
func (p *Parser) Parse(data []byte) (*model.Document, error) {
	if bytes.HasPrefix(data, oleMagic) {
		return nil, model.NewParseError(model.UnsupportedFeature, formatName,
			"encrypted or legacy binary Word document", nil)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if bytes.HasPrefix(data, zipMagic) {
			// A local header without a central directory means the archive
			// was cut short.
			return nil, model.NewParseError(model.Truncated, formatName, "opening ZIP archive", err)
		}
		return nil, model.NewParseError(model.CorruptInput, formatName, "opening ZIP archive", err)
	}

	pk := &pkg{config: p.config, files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		pk.files[strings.ToLower(f.Name)] = f
	}

	if _, ok := pk.files["word/document.xml"]; !ok {
		if _, enc := pk.files["encryptedpackage"]; enc {
			return nil, model.NewParseError(model.UnsupportedFeature, formatName, "encrypted package", nil)
		}
		return nil, model.NewParseError(model.CorruptInput, formatName, "missing required part word/document.xml", nil)
	}

	docData, err := pk.read("word/document.xml")
	if err != nil {
		return nil, partError("reading word/document.xml", err)
	}

	var document documentXML
	if err := xml.Unmarshal(docData, &document); err != nil {
		return nil, model.NewParseError(model.CorruptInput, formatName, "parsing word/document.xml", err)
	}

	c := newConverter(pk, p.config)
	c.loadParts()
	c.convert(&document)
	return c.doc, nil
}

// partError classifies a failure to read a required part.
func partError(detail string, err error) error {
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return model.NewParseError(model.Truncated, formatName, detail, err)
	}
	if errors.Is(err, errPartTooLarge) {
		return model.NewParseError(model.UnsupportedFeature, formatName, detail, err)
	}
	return model.NewParseError(model.CorruptInput, formatName, detail, err)
}

// read returns the decompressed content of a part. Part names are matched
// case-insensitively, as OPC requires.
func (pk *pkg) read(name string) ([]byte, error) {
	f, ok := pk.files[strings.ToLower(strings.TrimPrefix(name, "/"))]
	if !ok {
		return nil, fmt.Errorf("part not found: %s", name)
	}
	if pk.config.MaxPartSize > 0 && f.UncompressedSize64 > uint64(pk.config.MaxPartSize) {
		return nil, fmt.Errorf("%s: %w", name, errPartTooLarge)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var r io.Reader = rc
	if pk.config.MaxPartSize > 0 {
		r = io.LimitReader(rc, pk.config.MaxPartSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if pk.config.MaxPartSize > 0 && int64(len(data)) > pk.config.MaxPartSize {
		return nil, fmt.Errorf("%s: %w", name, errPartTooLarge)
	}
	return data, nil
}

// readXML decodes an optional part. Missing or malformed optional parts are
// ignored so that the body can still be converted.
func (pk *pkg) readXML(name string, v interface{}) bool {
	data, err := pk.read(name)
	if err != nil {
		return false
	}
	return xml.Unmarshal(data, v) == nil
}

// metadata extracts core and app properties.
func (pk *pkg) metadata() model.Metadata {
	meta := model.Metadata{Format: formatName}

	var core corePropertiesXML
	if pk.readXML("docProps/core.xml", &core) {
		meta.Title = strings.TrimSpace(core.Title)
		meta.Author = strings.TrimSpace(core.Creator)
		meta.Subject = strings.TrimSpace(core.Subject)
		if core.Keywords != "" {
			for _, kw := range strings.FieldsFunc(core.Keywords, func(r rune) bool { return r == ',' || r == ';' }) {
				if kw = strings.TrimSpace(kw); kw != "" {
					meta.Keywords = append(meta.Keywords, kw)
				}
			}
		}
	}

	var app appPropertiesXML
	if pk.readXML("docProps/app.xml", &app) {
		meta.Creator = app.Application
		meta.PageCount, _ = strconv.Atoi(strings.TrimSpace(app.Pages))
	}
	return meta
}

// relationships returns the main document's relationships by ID.
func (pk *pkg) relationships() map[string]relationshipXML {
	rels := make(map[string]relationshipXML)
	var parsed relationshipsXML
	if pk.readXML("word/_rels/document.xml.rels", &parsed) {
		for _, rel := range parsed.Relationships {
			rels[rel.ID] = rel
		}
	}
	return rels
}

// resolveTarget converts a relationship target into a package part name.
func resolveTarget(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join("word", target))
}
