package model

import "fmt"

// ParseErrorKind classifies why a parser rejected its input.
type ParseErrorKind int

const (
	// CorruptInput means the input is recognised but malformed.
	CorruptInput ParseErrorKind = iota + 1
	// UnsupportedFeature means the input uses a feature no parser handles,
	// such as encryption.
	UnsupportedFeature
	// Truncated means the input ends before its structure is complete.
	Truncated
)

// String returns the string representation of the kind.
func (k ParseErrorKind) String() string {
	switch k {
	case CorruptInput:
		return "corrupt input"
	case UnsupportedFeature:
		return "unsupported feature"
	case Truncated:
		return "truncated input"
	default:
		return "unknown"
	}
}

// ParseError is returned by every parser when it cannot produce a document.
type ParseError struct {
	Kind   ParseErrorKind
	Format string
	Detail string
	Err    error
}

// NewParseError builds a ParseError. err may be nil.
func NewParseError(kind ParseErrorKind, format, detail string, err error) *ParseError {
	return &ParseError{Kind: kind, Format: format, Detail: detail, Err: err}
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Format, e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
