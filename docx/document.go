package docx

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// documentXML represents the structure of word/document.xml
type documentXML struct {
	XMLName xml.Name `xml:"document"`
	Body    *bodyXML `xml:"body"`
}

// blockXML is one body-level element: a paragraph or a table.
type blockXML struct {
	Paragraph *paragraphXML
	Table     *tableXML
}

// bodyXML represents the document body. Blocks keep document order, which
// struct-tag decoding would lose by collecting paragraphs and tables into
// separate slices.
type bodyXML struct {
	Blocks []blockXML
}

// UnmarshalXML decodes body children in order, flattening content controls.
func (b *bodyXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	blocks, err := decodeBlocks(d, nil)
	b.Blocks = blocks
	return err
}

// decodeBlocks reads block-level children until the enclosing end element.
// Elements other than blocks and block containers are passed to other, or
// skipped when other is nil or declines them.
func decodeBlocks(d *xml.Decoder, other func(xml.StartElement) (bool, error)) ([]blockXML, error) {
	var blocks []blockXML
	for {
		tok, err := d.Token()
		if err != nil {
			return blocks, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return blocks, nil
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				var p paragraphXML
				if err := d.DecodeElement(&p, &t); err != nil {
					return blocks, err
				}
				blocks = append(blocks, blockXML{Paragraph: &p})
			case "tbl":
				var tbl tableXML
				if err := d.DecodeElement(&tbl, &t); err != nil {
					return blocks, err
				}
				blocks = append(blocks, blockXML{Table: &tbl})
			case "sdt", "sdtContent", "customXml", "ins", "moveTo":
				inner, err := decodeBlocks(d, nil)
				blocks = append(blocks, inner...)
				if err != nil {
					return blocks, err
				}
			default:
				handled := false
				if other != nil {
					if handled, err = other(t); err != nil {
						return blocks, err
					}
				}
				if !handled {
					if err := d.Skip(); err != nil {
						return blocks, err
					}
				}
			}
		}
	}
}

// paragraphXML represents a paragraph element (<w:p>).
type paragraphXML struct {
	Properties paragraphPropsXML
	Content    []inlineXML
}

// inlineXML is one paragraph child: a run, a hyperlink or a simple field.
type inlineXML struct {
	Run       *runXML
	Hyperlink *hyperlinkXML
}

// hyperlinkXML represents <w:hyperlink> or a HYPERLINK <w:fldSimple>.
type hyperlinkXML struct {
	ID      string
	Anchor  string
	Target  string // literal target from a field instruction
	Content []inlineXML
}

// UnmarshalXML decodes paragraph properties and inline children in order.
func (p *paragraphXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	content, err := decodeInlines(d, func(t xml.StartElement) (bool, error) {
		if t.Name.Local != "pPr" {
			return false, nil
		}
		return true, d.DecodeElement(&p.Properties, &t)
	})
	p.Content = content
	return err
}

// decodeInlines reads inline children until the enclosing end element.
// Deleted revisions are dropped; wrappers such as smart tags are flattened.
func decodeInlines(d *xml.Decoder, other func(xml.StartElement) (bool, error)) ([]inlineXML, error) {
	var content []inlineXML
	for {
		tok, err := d.Token()
		if err != nil {
			return content, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return content, nil
		case xml.StartElement:
			switch t.Name.Local {
			case "r":
				var r runXML
				if err := d.DecodeElement(&r, &t); err != nil {
					return content, err
				}
				content = append(content, inlineXML{Run: &r})
			case "hyperlink":
				h := &hyperlinkXML{ID: attr(t, "id"), Anchor: attr(t, "anchor")}
				inner, err := decodeInlines(d, nil)
				if err != nil {
					return content, err
				}
				h.Content = inner
				content = append(content, inlineXML{Hyperlink: h})
			case "fldSimple":
				inner, err := decodeInlines(d, nil)
				if err != nil {
					return content, err
				}
				if target := fieldHyperlink(attr(t, "instr")); target != "" {
					content = append(content, inlineXML{Hyperlink: &hyperlinkXML{Target: target, Content: inner}})
				} else {
					content = append(content, inner...)
				}
			case "ins", "smartTag", "customXml", "sdt", "sdtContent", "moveTo", "dir", "bdo":
				inner, err := decodeInlines(d, nil)
				content = append(content, inner...)
				if err != nil {
					return content, err
				}
			default:
				handled := false
				if other != nil {
					if handled, err = other(t); err != nil {
						return content, err
					}
				}
				if !handled {
					if err := d.Skip(); err != nil {
						return content, err
					}
				}
			}
		}
	}
}

// attr returns the value of the attribute with the given local name.
func attr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// fieldHyperlink returns the target of a HYPERLINK field instruction.
func fieldHyperlink(instr string) string {
	args := fieldArgs(instr)
	if len(args) < 2 || !strings.EqualFold(args[0], "HYPERLINK") {
		return ""
	}
	anchor := false
	for i := 1; i < len(args); i++ {
		switch args[i] {
		case `\l`:
			anchor = true
			continue
		case `\o`, `\t`, `\m`:
			i++ // switch argument
			continue
		}
		if strings.HasPrefix(args[i], `\`) {
			continue
		}
		if anchor {
			return "#" + args[i]
		}
		return args[i]
	}
	return ""
}

// fieldArgs splits a field instruction into words, keeping quoted
// arguments together.
func fieldArgs(instr string) []string {
	var args []string
	var cur strings.Builder
	quoted, inWord := false, false
	for _, r := range instr {
		switch {
		case r == '"':
			quoted = !quoted
			inWord = true
		case !quoted && (r == ' ' || r == '\t'):
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if inWord {
		args = append(args, cur.String())
	}
	return args
}

// paragraphPropsXML represents paragraph properties (<w:pPr>).
type paragraphPropsXML struct {
	Style      styleRefXML       `xml:"pStyle"`
	NumPr      numberingPropsXML `xml:"numPr"`
	OutlineLvl outlineLvlXML     `xml:"outlineLvl"`
	Border     paragraphBorder   `xml:"pBdr"`
}

// styleRefXML represents a style reference.
type styleRefXML struct {
	Val string `xml:"val,attr"`
}

// numberingPropsXML represents numbering properties for lists.
type numberingPropsXML struct {
	ILvl  ilvlXML  `xml:"ilvl"`
	NumID numIDXML `xml:"numId"`
}

// ilvlXML represents indentation level.
type ilvlXML struct {
	Val string `xml:"val,attr"`
}

// numIDXML represents numbering ID.
type numIDXML struct {
	Val string `xml:"val,attr"`
}

// outlineLvlXML represents outline level.
type outlineLvlXML struct {
	Val string `xml:"val,attr"`
}

// paragraphBorder represents <w:pBdr>; a bottom or top border on an empty
// paragraph is how Word draws a horizontal rule.
type paragraphBorder struct {
	Top    borderXML `xml:"top"`
	Bottom borderXML `xml:"bottom"`
}

// borderXML represents a single border.
type borderXML struct {
	Val string `xml:"val,attr"` // Border style: single, double, etc.
}

func (b borderXML) visible() bool {
	return b.Val != "" && b.Val != "nil" && b.Val != "none"
}

// runPartKind identifies a piece of run content.
type runPartKind int

const (
	partText runPartKind = iota
	partDrawing
	partFieldChar
	partInstr
)

// runPart is one ordered child of a run.
type runPart struct {
	Kind      runPartKind
	Text      string
	Drawing   *drawingXML
	FieldChar string // begin, separate, end
}

// runXML represents a text run (<w:r>).
type runXML struct {
	Properties runPropsXML
	Parts      []runPart
}

// UnmarshalXML decodes run properties and content in order.
func (r *runXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return nil
		case xml.StartElement:
			if err := r.decodeChild(d, t); err != nil {
				return err
			}
		}
	}
}

func (r *runXML) decodeChild(d *xml.Decoder, t xml.StartElement) error {
	switch t.Name.Local {
	case "rPr":
		return d.DecodeElement(&r.Properties, &t)
	case "t":
		var text textXML
		if err := d.DecodeElement(&text, &t); err != nil {
			return err
		}
		r.addText(text.Value)
		return nil
	case "instrText":
		var text textXML
		if err := d.DecodeElement(&text, &t); err != nil {
			return err
		}
		r.Parts = append(r.Parts, runPart{Kind: partInstr, Text: text.Value})
		return nil
	case "tab", "ptab":
		r.addText(" ")
	case "br":
		if attr(t, "type") != "page" && attr(t, "type") != "column" {
			r.addText("\n")
		}
	case "cr":
		r.addText("\n")
	case "noBreakHyphen":
		r.addText("-")
	case "sym":
		if s := symbolText(attr(t, "char")); s != "" {
			r.addText(s)
		}
	case "fldChar":
		r.Parts = append(r.Parts, runPart{Kind: partFieldChar, FieldChar: attr(t, "fldCharType")})
	case "drawing":
		var dr drawingXML
		if err := d.DecodeElement(&dr, &t); err != nil {
			return err
		}
		r.Parts = append(r.Parts, runPart{Kind: partDrawing, Drawing: &dr})
		return nil
	case "pict", "object":
		var pict pictXML
		if err := d.DecodeElement(&pict, &t); err != nil {
			return err
		}
		if id := pict.imageID(); id != "" {
			r.Parts = append(r.Parts, runPart{Kind: partDrawing, Drawing: &drawingXML{
				Inline: &frameXML{Blip: &blipXML{Embed: id}, DocPr: docPrXML{Descr: pict.altText()}},
			}})
		}
		return nil
	case "AlternateContent":
		return r.decodeAlternate(d)
	}
	return d.Skip()
}

// decodeAlternate reads mc:AlternateContent, taking the first Choice and
// ignoring Fallback, which repeats the same content.
func (r *runXML) decodeAlternate(d *xml.Decoder) error {
	taken := false
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return nil
		case xml.StartElement:
			if (t.Name.Local == "Choice" || t.Name.Local == "Fallback") && !taken {
				taken = true
				if err := r.UnmarshalXML(d, t); err != nil {
					return err
				}
				continue
			}
			if err := d.Skip(); err != nil {
				return err
			}
		}
	}
}

func (r *runXML) addText(s string) {
	if n := len(r.Parts); n > 0 && r.Parts[n-1].Kind == partText {
		r.Parts[n-1].Text += s
		return
	}
	r.Parts = append(r.Parts, runPart{Kind: partText, Text: s})
}

// symbolText decodes <w:sym w:char>. Private-use code points need a symbol
// font and are dropped.
func symbolText(hexChar string) string {
	v, err := strconv.ParseUint(hexChar, 16, 32)
	if err != nil || v < 0x20 || (v >= 0xE000 && v <= 0xF8FF) {
		return ""
	}
	return string(rune(v))
}

// runPropsXML represents run properties (<w:rPr>).
type runPropsXML struct {
	Style     styleRefXML  `xml:"rStyle"`
	Bold      boolXML      `xml:"b"`
	Italic    boolXML      `xml:"i"`
	Underline underlineXML `xml:"u"`
	Strike    boolXML      `xml:"strike"`
	DStrike   boolXML      `xml:"dstrike"`
	Vanish    boolXML      `xml:"vanish"`
	FontSize  sizeXML      `xml:"sz"`
	Font      fontXML      `xml:"rFonts"`
}

// boolXML represents an OOXML toggle property.
type boolXML struct {
	XMLName xml.Name
	Val     string `xml:"val,attr"`
}

// set reports whether the property is present.
func (b boolXML) set() bool {
	return b.XMLName.Local != ""
}

// on reports the property value; presence without a value means true.
func (b boolXML) on() bool {
	return b.Val != "false" && b.Val != "0" && b.Val != "off"
}

// underlineXML represents underline style.
type underlineXML struct {
	Val string `xml:"val,attr"` // single, double, etc.
}

// sizeXML represents font size (in half-points).
type sizeXML struct {
	Val string `xml:"val,attr"`
}

// fontXML represents font settings.
type fontXML struct {
	ASCII string `xml:"ascii,attr"`
	HAnsi string `xml:"hAnsi,attr"`
}

// textXML represents text content (<w:t>).
type textXML struct {
	Space string `xml:"space,attr"` // preserve
	Value string `xml:",chardata"`
}

// drawingXML represents an embedded drawing/image.
type drawingXML struct {
	Inline *frameXML `xml:"inline"`
	Anchor *frameXML `xml:"anchor"`
}

// placement returns whichever of inline or anchor is present.
func (d *drawingXML) placement() *frameXML {
	if d.Inline != nil {
		return d.Inline
	}
	return d.Anchor
}

// frameXML represents wp:inline or wp:anchor, which share the fields used
// here.
type frameXML struct {
	Extent extentXML `xml:"extent"`
	DocPr  docPrXML  `xml:"docPr"`
	Blip   *blipXML  `xml:"graphic>graphicData>pic>blipFill>blip"`
}

// extentXML represents image dimensions.
type extentXML struct {
	CX string `xml:"cx,attr"` // Width in EMUs
	CY string `xml:"cy,attr"` // Height in EMUs
}

// docPrXML represents document properties of an image.
type docPrXML struct {
	Name  string `xml:"name,attr"`
	Descr string `xml:"descr,attr"` // Alt text
	Title string `xml:"title,attr"`
}

// blipXML represents an image reference.
type blipXML struct {
	Embed string `xml:"embed,attr"` // Relationship ID
}

// pictXML represents a legacy VML picture (<w:pict>).
type pictXML struct {
	Shapes []vmlShapeXML `xml:"shape"`
}

type vmlShapeXML struct {
	Alt       string          `xml:"alt,attr"`
	ImageData vmlImageDataXML `xml:"imagedata"`
}

type vmlImageDataXML struct {
	ID    string `xml:"id,attr"`
	Title string `xml:"title,attr"`
}

func (p pictXML) imageID() string {
	for _, s := range p.Shapes {
		if s.ImageData.ID != "" {
			return s.ImageData.ID
		}
	}
	return ""
}

func (p pictXML) altText() string {
	for _, s := range p.Shapes {
		if s.Alt != "" {
			return s.Alt
		}
		if s.ImageData.Title != "" {
			return s.ImageData.Title
		}
	}
	return ""
}

// tableXML represents a table (<w:tbl>).
type tableXML struct {
	Grid tableGridXML  `xml:"tblGrid"`
	Rows []tableRowXML `xml:"tr"`
}

// tableGridXML represents table grid definition.
type tableGridXML struct {
	Cols []gridColXML `xml:"gridCol"`
}

// gridColXML represents a grid column.
type gridColXML struct {
	W string `xml:"w,attr"` // Width in twips
}

// tableRowXML represents a table row (<w:tr>).
type tableRowXML struct {
	Properties rowPropsXML    `xml:"trPr"`
	Cells      []tableCellXML `xml:"tc"`
}

// rowPropsXML represents row properties.
type rowPropsXML struct {
	GridBefore valXML  `xml:"gridBefore"`
	GridAfter  valXML  `xml:"gridAfter"`
	Header     boolXML `xml:"tblHeader"`
}

// valXML is any element carrying a single w:val attribute.
type valXML struct {
	Val string `xml:"val,attr"`
}

func (v valXML) value() int {
	n, err := strconv.Atoi(v.Val)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// tableCellXML represents a table cell (<w:tc>).
type tableCellXML struct {
	Properties cellPropsXML
	Blocks     []blockXML
}

// UnmarshalXML decodes cell properties and block content in order.
func (c *tableCellXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	blocks, err := decodeBlocks(d, func(t xml.StartElement) (bool, error) {
		if t.Name.Local != "tcPr" {
			return false, nil
		}
		return true, d.DecodeElement(&c.Properties, &t)
	})
	c.Blocks = blocks
	return err
}

// cellPropsXML represents cell properties.
type cellPropsXML struct {
	GridSpan valXML    `xml:"gridSpan"`
	VMerge   vMergeXML `xml:"vMerge"`
	HMerge   vMergeXML `xml:"hMerge"`
}

// vMergeXML represents vertical merge.
type vMergeXML struct {
	XMLName xml.Name
	Val     string `xml:"val,attr"` // "restart" or empty (continue)
}

// continuation reports whether the cell continues a merge started earlier.
func (m vMergeXML) continuation() bool {
	return m.XMLName.Local != "" && m.Val != "restart"
}
