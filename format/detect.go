// Package format provides source format detection for docmark.
package format

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Format represents a supported source format.
type Format int

const (
	// Unknown indicates an unrecognized or unsupported format.
	Unknown Format = iota
	// DOCX indicates a Microsoft Word (.docx) document.
	DOCX
	// PDF indicates a PDF document.
	PDF
	// TEXT indicates a plain text (.txt) document.
	TEXT
	// RTF indicates a Rich Text Format (.rtf) document.
	RTF
)

// extensions maps lowercase file extensions to formats.
var extensions = map[string]Format{
	".docx": DOCX,
	".pdf":  PDF,
	".txt":  TEXT,
	".rtf":  RTF,
}

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case DOCX:
		return "DOCX"
	case PDF:
		return "PDF"
	case TEXT:
		return "TEXT"
	case RTF:
		return "RTF"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case DOCX:
		return ".docx"
	case PDF:
		return ".pdf"
	case TEXT:
		return ".txt"
	case RTF:
		return ".rtf"
	default:
		return ""
	}
}

// MIMEType returns the media type of the format.
func (f Format) MIMEType() string {
	switch f {
	case DOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case PDF:
		return "application/pdf"
	case TEXT:
		return "text/plain"
	case RTF:
		return "application/rtf"
	default:
		return "application/octet-stream"
	}
}

// Supported returns the supported source extensions in a fixed order.
func Supported() []string {
	return []string{".docx", ".pdf", ".txt", ".rtf"}
}

// Detect determines the format from the filename extension. Filenames
// without an extension, or with an unlisted one, yield Unknown.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	if f, ok := extensions[ext]; ok {
		return f
	}
	return Unknown
}

// DetectWithContent determines the format from the filename and, only when
// the filename has no extension at all, from the leading content bytes.
// A present but unknown extension is never rescued by content.
func DetectWithContent(filename string, sniff []byte) Format {
	if filepath.Ext(filename) != "" {
		return Detect(filename)
	}
	return DetectFromMagic(sniff)
}

var (
	pdfMagic = []byte("%PDF")
	rtfMagic = []byte(`{\rtf`)
	zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}
)

// DetectFromMagic checks file magic bytes to determine format.
// ZIP archives are only reported as DOCX when a word/ part name appears in
// the sniffed bytes; plain text is never inferred from content.
func DetectFromMagic(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return PDF
	case bytes.HasPrefix(data, rtfMagic):
		return RTF
	case bytes.HasPrefix(data, zipMagic):
		if bytes.Contains(data, []byte("word/")) {
			return DOCX
		}
	}
	return Unknown
}

// DetectFromReader inspects the content to determine format. Unlike
// DetectFromMagic it reads the ZIP central directory, so it recognises
// DOCX packages whose first entry is not under word/.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 512)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	if bytes.HasPrefix(magic, zipMagic) {
		return detectZIPFormat(r, size)
	}
	return DetectFromMagic(magic), nil
}

// detectZIPFormat inspects a ZIP archive for Office Open XML word parts.
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}

	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "word/") {
			return DOCX, nil
		}
	}

	return Unknown, nil
}
