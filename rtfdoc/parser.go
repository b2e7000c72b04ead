// Package rtfdoc parses Rich Text Format documents.
//
// The parser is a tokenizer plus a group-state interpreter: every '{' pushes
// a copy of the character and paragraph state, every '}' restores it.
// Destination groups that carry no body text (font and colour tables, the
// stylesheet, headers, footers and any \* destination) are consumed without
// producing output.
package rtfdoc

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/encoding"

	"github.com/tsawler/docmark/model"
)

const formatName = "RTF"

// Config holds RTF parsing options.
type Config struct {
	// DefaultCodePage decodes \'hh escapes and 8-bit text when the document
	// declares no \ansicpg.
	DefaultCodePage int

	// IncludePictures controls whether \pict groups become images.
	IncludePictures bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DefaultCodePage: 1252,
		IncludePictures: true,
	}
}

// Parser converts RTF documents into a model.Document.
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

// Parse parses RTF with the default configuration.
func Parse(data []byte) (*model.Document, error) {
	return NewParser().Parse(data)
}

// destination says where text inside a group goes.
type destination int

const (
	destBody destination = iota
	destSkip
	destStylesheet
	destInfo
	destTitle
	destAuthor
	destSubject
	destKeywords
	destPict
	destFieldInst
	destListText
)

// skipDestinations never contribute body text.
var skipDestinations = map[string]bool{
	"fonttbl": true, "colortbl": true, "filetbl": true, "revtbl": true,
	"rsidtbl": true, "listtable": true, "listoverridetable": true,
	"header": true, "headerl": true, "headerr": true, "headerf": true,
	"footer": true, "footerl": true, "footerr": true, "footerf": true,
	"footnote": true, "annotation": true, "generator": true,
	"xmlnstbl": true, "themedata": true, "colorschememapping": true,
	"latentstyles": true, "datastore": true, "nonshppict": true,
	"object": true, "pgdsctbl": true, "private": true, "pn": true,
	"bkmkstart": true, "bkmkend": true, "docvar": true, "userprops": true,
}

// groupState is the formatting scope of one RTF group.
type groupState struct {
	dest   destination
	style  model.Style
	hidden bool
	ucSkip int

	// paragraph properties
	styleIndex int
	outline    int
	inTable    bool
	listID     int
	listLevel  int

	// set on the \fldrslt group of a hyperlink field
	link bool
	href string
}

func (s *groupState) resetParagraph() {
	s.styleIndex = 0
	s.outline = -1
	s.inTable = false
	s.listID = 0
	s.listLevel = 0
}

// picture accumulates a \pict group.
type picture struct {
	kind           string
	hex            []byte
	bin            []byte
	picW, picH     int
	goalW, goalH   int
	scaleX, scaleY int
}

// state is the per-call interpreter state.
type state struct {
	config Config
	lex    *lexer
	doc    *model.Document

	cur     groupState
	stack   []groupState
	starred bool

	enc        encoding.Encoding
	pendingHex []byte
	skipChars  int
	highSurr   rune

	builders []*model.InlineBuilder

	styles    map[int]string
	styleNum  int
	styleName strings.Builder

	info      strings.Builder
	fieldInst strings.Builder
	fieldHref string
	listText  strings.Builder
	pict      *picture

	lists model.ListBuilder
	table *model.Table
	row   []model.Cell
}

// Parse interprets data as RTF.
func (p *Parser) Parse(data []byte) (*model.Document, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n\xef\xbb\xbf")
	if !bytes.HasPrefix(trimmed, []byte(`{\rtf`)) {
		return nil, model.NewParseError(model.CorruptInput, formatName, "missing {\\rtf header", nil)
	}

	s := &state{
		config:   p.config,
		lex:      newLexer(trimmed),
		doc:      model.NewDocument(),
		enc:      codePage(p.config.DefaultCodePage),
		builders: []*model.InlineBuilder{{}},
		styles:   make(map[int]string),
	}
	s.cur.ucSkip = 1
	s.cur.outline = -1
	s.doc.Metadata.Format = formatName

	if err := s.run(); err != nil {
		return nil, err
	}
	return s.doc, nil
}

func (s *state) run() error {
	depth := 0
	for {
		tok, err := s.lex.next()
		if err != nil {
			if errors.Is(err, errTruncatedBinary) {
				return model.NewParseError(model.Truncated, formatName, "reading \\bin data", err)
			}
			return model.NewParseError(model.CorruptInput, formatName, "tokenizing", err)
		}

		if tok.kind != tokenHex {
			s.flushHex()
		}

		switch tok.kind {
		case tokenEOF:
			if depth > 0 {
				return model.NewParseError(model.Truncated, formatName,
					strconv.Itoa(depth)+" unclosed group(s) at end of input", nil)
			}
			s.finish()
			return nil
		case tokenGroupStart:
			depth++
			s.push()
		case tokenGroupEnd:
			depth--
			s.pop()
			if depth == 0 {
				// Only padding may follow the root group.
				if rest := bytes.Trim(s.lex.data[s.lex.pos:], " \t\r\n\x00"); len(rest) > 0 {
					return model.NewParseError(model.CorruptInput, formatName, "content after root group", nil)
				}
				s.finish()
				return nil
			}
			if depth < 0 {
				return model.NewParseError(model.CorruptInput, formatName, "unbalanced closing brace", nil)
			}
		case tokenControlWord:
			s.controlWord(tok)
		case tokenControlSymbol:
			s.controlSymbol(tok.symbol)
		case tokenHex:
			if s.skipChars > 0 {
				s.skipChars--
				continue
			}
			s.pendingHex = append(s.pendingHex, tok.symbol)
		case tokenText:
			s.rawText(tok.data)
		case tokenBinary:
			if s.cur.dest == destPict && s.pict != nil {
				s.pict.bin = append(s.pict.bin, tok.data...)
			}
		}
	}
}

func (s *state) push() {
	s.stack = append(s.stack, s.cur)
	s.cur.link = false
	s.cur.href = ""
	if s.cur.dest == destInfo {
		// Only recognised \info children are read.
		s.cur.dest = destSkip
	}
	s.starred = false
}

func (s *state) pop() {
	if len(s.stack) == 0 {
		return
	}
	parent := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]

	owner := s.cur.dest != parent.dest
	if owner {
		switch s.cur.dest {
		case destTitle:
			s.doc.Metadata.Title = strings.TrimSpace(s.info.String())
		case destAuthor:
			s.doc.Metadata.Author = strings.TrimSpace(s.info.String())
		case destSubject:
			s.doc.Metadata.Subject = strings.TrimSpace(s.info.String())
		case destKeywords:
			s.doc.Metadata.Keywords = strings.FieldsFunc(s.info.String(), func(r rune) bool {
				return r == ',' || r == ';' || r == ' '
			})
		case destPict:
			s.finishPicture(parent.dest)
		case destFieldInst:
			s.fieldHref = hyperlinkTarget(s.fieldInst.String())
			s.fieldInst.Reset()
		}
		s.info.Reset()
	}

	if s.cur.link && len(s.builders) > 1 {
		inner := s.builders[len(s.builders)-1]
		s.builders = s.builders[:len(s.builders)-1]
		children := inner.Inlines()
		if model.IsBlank(children) {
			children = model.Texts(s.cur.href)
		}
		s.builder().WriteInline(model.Link{Children: children, Href: s.cur.href})
	}

	s.cur = parent
	s.starred = false
}

func (s *state) builder() *model.InlineBuilder {
	return s.builders[len(s.builders)-1]
}

func (s *state) controlSymbol(c byte) {
	switch c {
	case '*':
		s.starred = true
	case '\\', '{', '}':
		s.text(string(c))
	case '~':
		s.text(" ")
	case '_':
		s.text("‑")
	case '-':
		// optional hyphen
	}
}

// infoDestinations are the \info children copied into metadata.
var infoDestinations = map[string]destination{
	"title":    destTitle,
	"author":   destAuthor,
	"subject":  destSubject,
	"keywords": destKeywords,
}

// destinationWords are the destinations this parser reads even behind \*.
var destinationWords = map[string]bool{
	"fldinst": true, "shppict": true, "listtext": true, "pntext": true,
}

func (s *state) controlWord(tok token) {
	if s.starred {
		s.starred = false
		if !destinationWords[tok.name] {
			s.cur.dest = destSkip
			return
		}
	}
	if skipDestinations[tok.name] {
		s.cur.dest = destSkip
		return
	}
	if s.cur.dest == destSkip {
		if d, ok := infoDestinations[tok.name]; ok && s.stackDest() == destInfo {
			s.cur.dest = d
			s.info.Reset()
		}
		return
	}

	on := !tok.hasParam || tok.param != 0

	switch tok.name {
	// destinations
	case "stylesheet":
		s.cur.dest = destStylesheet
		s.styleNum = 0
		s.styleName.Reset()
	case "info":
		s.cur.dest = destInfo
	case "pict":
		s.cur.dest = destPict
		s.pict = &picture{scaleX: 100, scaleY: 100}
	case "fldinst":
		s.cur.dest = destFieldInst
		s.fieldInst.Reset()
	case "fldrslt":
		if s.fieldHref != "" {
			s.cur.link = true
			s.cur.href = s.fieldHref
			s.fieldHref = ""
			s.builders = append(s.builders, &model.InlineBuilder{})
		}
	case "listtext", "pntext":
		s.cur.dest = destListText
		s.listText.Reset()

	// document settings
	case "ansicpg":
		s.enc = codePage(tok.param)
	case "mac":
		s.enc = codePage(10000)
	case "pc":
		s.enc = codePage(437)
	case "pca":
		s.enc = codePage(850)

	// unicode
	case "uc":
		if tok.param >= 0 {
			s.cur.ucSkip = tok.param
		}
	case "u":
		s.unicode(tok.param)

	// character formatting
	case "plain":
		s.cur.style = model.Style{}
		s.cur.hidden = false
	case "b":
		s.cur.style.Bold = on
	case "i":
		s.cur.style.Italic = on
	case "ul", "uld", "uldb", "ulw", "ulwave", "uldash", "ulth":
		s.cur.style.Underline = on
	case "ulnone":
		s.cur.style.Underline = false
	case "strike", "striked":
		s.cur.style.Strike = on
	case "v":
		s.cur.hidden = on

	// paragraph formatting
	case "pard":
		s.cur.resetParagraph()
	case "s":
		if s.cur.dest == destStylesheet {
			s.styleNum = tok.param
		} else {
			s.cur.styleIndex = tok.param
		}
	case "cs", "ds", "ts":
		if s.cur.dest == destStylesheet {
			s.styleNum = -1
		}
	case "outlinelevel":
		s.cur.outline = tok.param
	case "ls":
		s.cur.listID = tok.param
	case "ilvl":
		s.cur.listLevel = tok.param

	// breaks
	case "par", "sect", "page":
		s.endParagraph()
	case "line", "tab":
		s.text(" ")
	case "emdash":
		s.text("—")
	case "endash":
		s.text("–")
	case "bullet":
		s.text("•")
	case "lquote":
		s.text("‘")
	case "rquote":
		s.text("’")
	case "ldblquote":
		s.text("“")
	case "rdblquote":
		s.text("”")
	case "emspace", "enspace", "qmspace":
		s.text(" ")

	// tables
	case "intbl":
		s.cur.inTable = true
	case "cell", "nestcell":
		s.endCell()
	case "row", "nestrow":
		s.endRow()

	// pictures
	case "pngblip":
		s.setPictKind("png")
	case "jpegblip":
		s.setPictKind("jpeg")
	case "emfblip", "wmetafile", "macpict", "dibitmap", "wbitmap", "pmmetafile":
		s.setPictKind("")
	case "picw", "pich", "picwgoal", "pichgoal", "picscalex", "picscaley":
		s.pictProperty(tok.name, tok.param)
	}
}

// stackDest returns the destination of the enclosing group.
func (s *state) stackDest() destination {
	if len(s.stack) == 0 {
		return destBody
	}
	return s.stack[len(s.stack)-1].dest
}

func (s *state) pictProperty(name string, v int) {
	if s.cur.dest != destPict || s.pict == nil {
		return
	}
	switch name {
	case "picw":
		s.pict.picW = v
	case "pich":
		s.pict.picH = v
	case "picwgoal":
		s.pict.goalW = v
	case "pichgoal":
		s.pict.goalH = v
	case "picscalex":
		s.pict.scaleX = v
	case "picscaley":
		s.pict.scaleY = v
	}
}

func (s *state) setPictKind(kind string) {
	if s.cur.dest == destPict && s.pict != nil {
		s.pict.kind = kind
	}
}

// unicode handles \uN, which is followed by ucSkip fallback characters.
func (s *state) unicode(n int) {
	if n < 0 {
		n += 65536
	}
	r := rune(n)
	switch {
	case utf16.IsSurrogate(r) && r < 0xDC00:
		s.highSurr = r
	case utf16.IsSurrogate(r):
		if s.highSurr != 0 {
			s.text(string(utf16.DecodeRune(s.highSurr, r)))
		}
		s.highSurr = 0
	default:
		s.highSurr = 0
		s.text(string(r))
	}
	s.skipChars = s.cur.ucSkip
}

// rawText handles literal text bytes, which are in the document code page.
func (s *state) rawText(data []byte) {
	if s.skipChars > 0 {
		n := s.skipChars
		if n > len(data) {
			n = len(data)
		}
		data = data[n:]
		s.skipChars -= n
	}
	if len(data) == 0 {
		return
	}
	if s.cur.dest == destPict {
		if s.pict != nil {
			s.pict.hex = append(s.pict.hex, data...)
		}
		return
	}
	s.text(decodeBytes(s.enc, data))
}

func (s *state) flushHex() {
	if len(s.pendingHex) == 0 {
		return
	}
	b := s.pendingHex
	s.pendingHex = nil
	if s.cur.dest == destPict {
		return
	}
	s.text(decodeBytes(s.enc, b))
}

// text routes decoded text to the current destination.
func (s *state) text(t string) {
	switch s.cur.dest {
	case destBody:
		if !s.cur.hidden {
			s.builder().WriteText(t, s.cur.style)
		}
	case destTitle, destAuthor, destSubject, destKeywords:
		s.info.WriteString(t)
	case destStylesheet:
		for _, r := range t {
			if r == ';' {
				if s.styleNum >= 0 {
					s.styles[s.styleNum] = strings.TrimSpace(s.styleName.String())
				}
				s.styleName.Reset()
				s.styleNum = 0
				continue
			}
			s.styleName.WriteRune(r)
		}
	case destFieldInst:
		s.fieldInst.WriteString(t)
	case destListText:
		s.listText.WriteString(t)
	}
}

// hyperlinkTarget extracts the URL from a HYPERLINK field instruction.
func hyperlinkTarget(inst string) string {
	fields := strings.Fields(inst)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "HYPERLINK") {
		return ""
	}
	for _, f := range fields[1:] {
		if strings.HasPrefix(f, `\`) {
			continue
		}
		return strings.Trim(f, `"`)
	}
	return ""
}
