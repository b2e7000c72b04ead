package docmark

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tsawler/docmark/format"
	"github.com/tsawler/docmark/markdown"
	"github.com/tsawler/docmark/model"
)

// ErrUnsupported is wrapped by every *UnsupportedError.
var ErrUnsupported = errors.New("unsupported format")

// UnsupportedError reports a file whose format cannot be converted. It is
// returned before any content is read.
type UnsupportedError struct {
	Filename  string
	Extension string
}

func (e *UnsupportedError) Error() string {
	supported := strings.Join(format.Supported(), ", ")
	if e.Extension == "" {
		return fmt.Sprintf("unsupported format: %q has no file extension (supported: %s)", e.Filename, supported)
	}
	return fmt.Sprintf("unsupported format %q (supported: %s)", e.Extension, supported)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// ParseError is returned when a parser rejects its input.
type ParseError = model.ParseError

// ParseErrorKind classifies a ParseError.
type ParseErrorKind = model.ParseErrorKind

// Parse error kinds.
const (
	CorruptInput       = model.CorruptInput
	UnsupportedFeature = model.UnsupportedFeature
	Truncated          = model.Truncated
)

// RenderError reports a failure while rendering a parsed document.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return "render failed: " + e.Err.Error()
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// OptionsError reports invalid conversion options. It wraps
// markdown.ErrInvalidOptions and is returned before parsing starts.
type OptionsError struct {
	Err error
}

func (e *OptionsError) Error() string {
	return e.Err.Error()
}

func (e *OptionsError) Unwrap() error {
	return e.Err
}

// Process exit codes returned by ExitCode.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUnsupported = 2
	ExitCorrupt     = 3
	ExitFeature     = 4
	ExitRender      = 5
	ExitOptions     = 6
)

// ExitCode maps a conversion error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		optErr    *OptionsError
		unsup     *UnsupportedError
		parseErr  *ParseError
		renderErr *RenderError
	)
	switch {
	case errors.As(err, &optErr), errors.Is(err, markdown.ErrInvalidOptions):
		return ExitOptions
	case errors.As(err, &unsup):
		return ExitUnsupported
	case errors.As(err, &parseErr):
		if parseErr.Kind == UnsupportedFeature {
			return ExitFeature
		}
		return ExitCorrupt
	case errors.As(err, &renderErr):
		return ExitRender
	}
	return ExitFailure
}

// HTTPStatus maps a conversion error to an HTTP status code.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var (
		optErr   *OptionsError
		unsup    *UnsupportedError
		parseErr *ParseError
	)
	switch {
	case errors.As(err, &optErr), errors.Is(err, markdown.ErrInvalidOptions):
		return http.StatusBadRequest
	case errors.As(err, &unsup):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &parseErr):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
