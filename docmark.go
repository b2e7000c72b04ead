// Package docmark converts DOCX, PDF, plain text and RTF documents to
// Markdown.
//
// Basic usage:
//
//	md, err := docmark.Open("report.docx").Markdown()
//	if err != nil {
//	    // handle error
//	}
//
// With options:
//
//	md, err := docmark.Open("scan.pdf").
//	    WithoutImages().
//	    TableFormat(markdown.TablePipe).
//	    Markdown()
//
// Documents already in memory go through an [Engine], which is safe for
// concurrent use:
//
//	engine := docmark.New(docmark.WithLogger(logger))
//	md, err := engine.Convert(data, "upload.rtf", docmark.DefaultOptions())
//
// Failures are typed: [*UnsupportedError] for unknown formats,
// [*ParseError] for malformed input, [*RenderError] for rendering faults
// and [*OptionsError] for invalid options. [ExitCode] and [HTTPStatus] map
// them for command-line and HTTP callers.
package docmark

import (
	"sync"

	"github.com/tsawler/docmark/format"
	"github.com/tsawler/docmark/markdown"
)

var defaultEngine = sync.OnceValue(func() *Engine {
	return New()
})

// Convert converts data with a default engine. filename selects the
// format by its extension.
func Convert(data []byte, filename string, opts markdown.Options) (string, error) {
	return defaultEngine().Convert(data, filename, opts)
}

// DefaultOptions returns the default Markdown rendering options.
func DefaultOptions() markdown.Options {
	return markdown.DefaultOptions()
}

// SupportedExtensions returns the file extensions that can be converted.
func SupportedExtensions() []string {
	return format.Supported()
}

// IsSupported reports whether filename has a convertible extension.
func IsSupported(filename string) bool {
	return format.Detect(filename) != format.Unknown
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	md := docmark.Must(docmark.Open("notes.txt").Markdown())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
