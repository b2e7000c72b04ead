package markdown

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidOptions is wrapped by every error returned from Options.Validate.
var ErrInvalidOptions = errors.New("invalid render options")

// TableFormat selects the Markdown table dialect.
type TableFormat int

const (
	// TableGrid draws ASCII borders around every cell
	TableGrid TableFormat = iota
	// TablePipe is the GitHub-flavored pipe table
	TablePipe
	// TableSimple aligns columns with spaces and underlines the header
	TableSimple
)

// String returns the name used in configuration and on the command line.
func (f TableFormat) String() string {
	switch f {
	case TableGrid:
		return "grid"
	case TablePipe:
		return "pipe"
	case TableSimple:
		return "simple"
	default:
		return "unknown"
	}
}

// ParseTableFormat parses a table format name, ignoring case.
func ParseTableFormat(s string) (TableFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "grid":
		return TableGrid, nil
	case "pipe":
		return TablePipe, nil
	case "simple":
		return TableSimple, nil
	}
	return 0, fmt.Errorf("%w: unknown table format %q (want grid, pipe or simple)", ErrInvalidOptions, s)
}

// MarshalText implements encoding.TextMarshaler.
func (f TableFormat) MarshalText() ([]byte, error) {
	if f.String() == "unknown" {
		return nil, fmt.Errorf("%w: unknown table format %d", ErrInvalidOptions, int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *TableFormat) UnmarshalText(text []byte) error {
	parsed, err := ParseTableFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Options controls how a document is rendered.
type Options struct {
	// PreserveFormatting keeps bold, italic, underline, strikethrough and
	// link markup. When false only the text is kept; structure such as
	// headings, lists and tables is unaffected.
	PreserveFormatting bool

	// IncludeImages embeds images. When false images are dropped without
	// a placeholder.
	IncludeImages bool

	// MaxImageSize is the longest edge, in pixels, of an embedded image.
	// Larger images are scaled down; smaller ones are never scaled up.
	MaxImageSize int

	// TableFormat selects the table dialect
	TableFormat TableFormat
}

// DefaultOptions returns the default rendering options.
func DefaultOptions() Options {
	return Options{
		PreserveFormatting: true,
		IncludeImages:      true,
		MaxImageSize:       1024,
		TableFormat:        TableGrid,
	}
}

// Validate reports options the renderer cannot honour.
func (o Options) Validate() error {
	if o.MaxImageSize <= 0 {
		return fmt.Errorf("%w: max image size must be positive, got %d", ErrInvalidOptions, o.MaxImageSize)
	}
	switch o.TableFormat {
	case TableGrid, TablePipe, TableSimple:
	default:
		return fmt.Errorf("%w: unknown table format %d", ErrInvalidOptions, int(o.TableFormat))
	}
	return nil
}
