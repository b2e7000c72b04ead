package rtfdoc

import (
	"errors"
	"strconv"
)

// tokenKind identifies the lexical class of a token.
type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenGroupStart
	tokenGroupEnd
	tokenControlWord
	tokenControlSymbol
	tokenHex
	tokenText
	tokenBinary
)

// token is a single lexical unit of an RTF stream.
type token struct {
	kind     tokenKind
	name     string // control word name
	param    int
	hasParam bool
	symbol   byte   // control symbol character or decoded hex byte
	data     []byte // text or binary payload
}

var errTruncatedBinary = errors.New("\\bin data extends past end of input")

// lexer splits RTF input into tokens.
type lexer struct {
	data []byte
	pos  int
	bin  int // raw bytes owed to a preceding \binN
}

func newLexer(data []byte) *lexer {
	return &lexer{data: data}
}

// next returns the next token, or a tokenEOF token at end of input.
func (l *lexer) next() (token, error) {
	if l.bin > 0 {
		n := l.bin
		l.bin = 0
		if l.pos+n > len(l.data) {
			l.pos = len(l.data)
			return token{}, errTruncatedBinary
		}
		tok := token{kind: tokenBinary, data: l.data[l.pos : l.pos+n]}
		l.pos += n
		return tok, nil
	}

	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch c {
		case '{':
			l.pos++
			return token{kind: tokenGroupStart}, nil
		case '}':
			l.pos++
			return token{kind: tokenGroupEnd}, nil
		case '\\':
			return l.control(), nil
		case '\r', '\n':
			l.pos++
		default:
			return l.text(), nil
		}
	}
	return token{kind: tokenEOF}, nil
}

func (l *lexer) text() token {
	start := l.pos
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if c == '{' || c == '}' || c == '\\' || c == '\r' || c == '\n' {
			break
		}
		l.pos++
	}
	return token{kind: tokenText, data: l.data[start:l.pos]}
}

func (l *lexer) control() token {
	l.pos++ // backslash
	if l.pos >= len(l.data) {
		return token{kind: tokenEOF}
	}

	c := l.data[l.pos]
	if !isLetter(c) {
		l.pos++
		switch c {
		case '\'':
			if l.pos+2 <= len(l.data) {
				if v, err := strconv.ParseUint(string(l.data[l.pos:l.pos+2]), 16, 8); err == nil {
					l.pos += 2
					return token{kind: tokenHex, symbol: byte(v)}
				}
			}
			return token{kind: tokenControlSymbol, symbol: '\''}
		case '\r', '\n':
			// A backslash before a line ending is an implicit \par.
			return token{kind: tokenControlWord, name: "par"}
		}
		return token{kind: tokenControlSymbol, symbol: c}
	}

	start := l.pos
	for l.pos < len(l.data) && isLetter(l.data[l.pos]) && l.pos-start < 32 {
		l.pos++
	}
	tok := token{kind: tokenControlWord, name: string(l.data[start:l.pos])}

	numStart := l.pos
	if l.pos < len(l.data) && l.data[l.pos] == '-' {
		l.pos++
	}
	digits := l.pos
	for l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '9' && l.pos-digits < 10 {
		l.pos++
	}
	if l.pos > digits {
		if v, err := strconv.Atoi(string(l.data[numStart:l.pos])); err == nil {
			tok.param = v
			tok.hasParam = true
		}
	} else {
		l.pos = numStart
	}

	if l.pos < len(l.data) && l.data[l.pos] == ' ' {
		l.pos++
	}

	if tok.name == "bin" && tok.hasParam && tok.param > 0 {
		l.bin = tok.param
	}
	return tok
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
