package docx

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tsawler/docmark/model"
)

// emuPerPixel converts DrawingML extents (English Metric Units) to 96 DPI
// pixels.
const emuPerPixel = 9525

// converter walks the document body and builds the model. It lives for one
// parse.
type converter struct {
	pkg    *pkg
	config Config
	doc    *model.Document

	styles    *StyleResolver
	lists     *ListParser
	tables    *TableParser
	rels      map[string]relationshipXML
	media     map[string]*model.Image
	codeLines []string
}

func newConverter(pk *pkg, config Config) *converter {
	c := &converter{
		pkg:    pk,
		config: config,
		doc:    model.NewDocument(),
		media:  make(map[string]*model.Image),
	}
	c.tables = NewTableParser(c.cellContent)
	return c
}

// loadParts reads the optional parts the body refers to.
func (c *converter) loadParts() {
	c.doc.Metadata = c.pkg.metadata()
	c.rels = c.pkg.relationships()

	var styles stylesXML
	if c.pkg.readXML("word/styles.xml", &styles) {
		c.styles = NewStyleResolver(&styles)
	} else {
		c.styles = NewStyleResolver(nil)
	}

	var numbering numberingXML
	if c.pkg.readXML("word/numbering.xml", &numbering) {
		c.lists = NewListParser(NewNumberingResolver(&numbering))
	} else {
		c.lists = NewListParser(NewNumberingResolver(nil))
	}
}

func (c *converter) convert(document *documentXML) {
	if document.Body == nil {
		return
	}
	for _, block := range document.Body.Blocks {
		switch {
		case block.Paragraph != nil:
			c.paragraph(block.Paragraph)
		case block.Table != nil:
			c.flushCode()
			c.flushList()
			c.doc.Append(c.tables.ParseTable(*block.Table))
		}
	}
	c.flushCode()
	c.flushList()
}

func (c *converter) flushList() {
	if l := c.lists.Finish(); l != nil {
		c.doc.Append(l)
	}
}

func (c *converter) flushCode() {
	if len(c.codeLines) == 0 {
		return
	}
	c.doc.Append(&model.CodeBlock{Text: strings.Join(c.codeLines, "\n")})
	c.codeLines = nil
}

// paragraph classifies one body paragraph.
func (c *converter) paragraph(p *paragraphXML) {
	styleID := p.Properties.Style.Val
	style := c.styles.Resolve(styleID)

	if style.IsCode {
		c.flushList()
		c.codeLines = append(c.codeLines, model.PlainText(c.inlines(p.Content, styleID, true)))
		return
	}
	c.flushCode()

	numID, level := style.NumID, style.NumLevel
	if p.Properties.NumPr.NumID.Val != "" {
		numID = p.Properties.NumPr.NumID.Val
		level, _ = strconv.Atoi(p.Properties.NumPr.ILvl.Val)
	} else if p.Properties.NumPr.ILvl.Val != "" && numID != "" {
		level, _ = strconv.Atoi(p.Properties.NumPr.ILvl.Val)
	}

	headingLevel := 0
	if lvl := parseOutlineLevel(p.Properties.OutlineLvl.Val); lvl >= 0 {
		headingLevel = lvl + 1
	} else if style.IsHeading {
		headingLevel = style.HeadingLevel
	}

	if IsListParagraph(numID) && headingLevel == 0 {
		content := c.inlines(p.Content, styleID, true)
		if model.IsBlank(content) {
			return
		}
		if done := c.lists.Add(numID, level, content); done != nil {
			c.doc.Append(done)
		}
		return
	}
	c.flushList()

	content := c.inlines(p.Content, styleID, headingLevel == 0)
	if model.IsBlank(content) {
		if p.Properties.Border.Bottom.visible() || p.Properties.Border.Top.visible() {
			c.doc.Append(&model.ThematicBreak{})
		}
		return
	}

	if img := soleImage(content); img != nil {
		c.doc.Append(img)
		return
	}

	content = trimInlines(content)
	if headingLevel > 0 {
		c.doc.Append(&model.Heading{Level: headingLevel, Content: content})
		return
	}
	c.doc.Append(&model.Paragraph{Content: content})
}

// cellContent flattens the blocks of a table cell into one run of inline
// content, separating paragraphs with a space.
func (c *converter) cellContent(blocks []blockXML) []model.Inline {
	var out []model.Inline
	appendPart := func(part []model.Inline) {
		part = trimInlines(part)
		if model.IsBlank(part) {
			return
		}
		if len(out) > 0 {
			out = append(out, model.Text{Content: " "})
		}
		out = append(out, part...)
	}

	for _, block := range blocks {
		switch {
		case block.Paragraph != nil:
			appendPart(c.inlines(block.Paragraph.Content, block.Paragraph.Properties.Style.Val, true))
		case block.Table != nil:
			nested := c.tables.ParseTable(*block.Table)
			for _, row := range nested.Rows {
				for _, cell := range row.Cells {
					appendPart(cell.Content)
				}
			}
		}
	}
	return out
}

// fieldState tracks a complex field (fldChar begin/separate/end) across
// runs.
type fieldState struct {
	instr     strings.Builder
	inResult  bool
	href      string
	outer     *model.InlineBuilder
	collected bool
}

// inlines converts paragraph children into styled spans.
func (c *converter) inlines(content []inlineXML, styleID string, includeParagraph bool) []model.Inline {
	b := &model.InlineBuilder{}
	var fields []*fieldState

	for _, in := range content {
		switch {
		case in.Hyperlink != nil:
			c.hyperlink(b, in.Hyperlink, styleID, includeParagraph)
		case in.Run != nil:
			b = c.run(b, in.Run, styleID, includeParagraph, &fields)
		}
	}

	// Unterminated fields: fold any open link back into the outer text.
	for i := len(fields) - 1; i >= 0; i-- {
		if f := fields[i]; f.outer != nil {
			for _, span := range b.Inlines() {
				f.outer.WriteInline(span)
			}
			b = f.outer
		}
	}
	return b.Inlines()
}

func (c *converter) hyperlink(b *model.InlineBuilder, h *hyperlinkXML, styleID string, includeParagraph bool) {
	children := c.inlines(h.Content, styleID, includeParagraph)

	href := h.Target
	if href == "" && h.ID != "" {
		if rel, ok := c.rels[h.ID]; ok {
			href = rel.Target
		}
	}
	if h.Anchor != "" {
		if href == "" {
			href = "#" + h.Anchor
		} else {
			href += "#" + h.Anchor
		}
	}

	if href == "" {
		for _, span := range children {
			b.WriteInline(span)
		}
		return
	}
	if model.IsBlank(children) {
		children = model.Texts(href)
	}
	b.WriteInline(model.Link{Children: children, Href: href})
}

// run appends a run's content. Complex fields may redirect output into a
// nested builder; the builder to use afterwards is returned.
func (c *converter) run(b *model.InlineBuilder, r *runXML, styleID string, includeParagraph bool, fields *[]*fieldState) *model.InlineBuilder {
	style, hidden := c.styles.ResolveRun(styleID, r.Properties, includeParagraph)

	for _, part := range r.Parts {
		var top *fieldState
		if n := len(*fields); n > 0 {
			top = (*fields)[n-1]
		}

		switch part.Kind {
		case partFieldChar:
			switch part.FieldChar {
			case "begin":
				*fields = append(*fields, &fieldState{})
			case "separate":
				if top != nil && !top.inResult {
					top.inResult = true
					if href := fieldHyperlink(top.instr.String()); href != "" {
						top.href = href
						top.outer = b
						b = &model.InlineBuilder{}
					}
				}
			case "end":
				if top == nil {
					continue
				}
				*fields = (*fields)[:len(*fields)-1]
				if top.outer != nil {
					children := b.Inlines()
					if model.IsBlank(children) {
						children = model.Texts(top.href)
					}
					b = top.outer
					b.WriteInline(model.Link{Children: children, Href: top.href})
				}
			}
		case partInstr:
			if top != nil && !top.inResult {
				top.instr.WriteString(part.Text)
			}
		case partText:
			if top != nil && !top.inResult {
				continue
			}
			if !hidden {
				b.WriteText(part.Text, style)
			}
		case partDrawing:
			if top != nil && !top.inResult {
				continue
			}
			if img := c.image(part.Drawing); img != nil {
				b.WriteInline(model.InlineImage{Image: img})
			}
		}
	}
	return b
}

// image resolves a drawing to an embedded image. Broken relationships,
// external targets and missing media drop the image only.
func (c *converter) image(d *drawingXML) *model.Image {
	if !c.config.IncludeImages || d == nil {
		return nil
	}
	frame := d.placement()
	if frame == nil || frame.Blip == nil || frame.Blip.Embed == "" {
		return nil
	}
	rel, ok := c.rels[frame.Blip.Embed]
	if !ok || strings.EqualFold(rel.TargetMode, "External") {
		return nil
	}

	name := resolveTarget(rel.Target)
	alt := frame.DocPr.Descr
	if alt == "" {
		alt = frame.DocPr.Title
	}

	if cached, ok := c.media[name]; ok {
		img := *cached
		img.AltText = alt
		return &img
	}

	data, err := c.pkg.read(name)
	if err != nil || len(data) == 0 {
		return nil
	}

	img := &model.Image{Data: data, MIMEType: mimeFromName(name)}
	if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		img.Width, img.Height = cfg.Width, cfg.Height
		img.MIMEType = "image/" + format
	} else {
		cx, _ := strconv.ParseInt(frame.Extent.CX, 10, 64)
		cy, _ := strconv.ParseInt(frame.Extent.CY, 10, 64)
		img.Width, img.Height = int(cx/emuPerPixel), int(cy/emuPerPixel)
	}
	c.media[name] = img

	withAlt := *img
	withAlt.AltText = alt
	return &withAlt
}

// mimeFromName guesses a media type from a part name extension.
func mimeFromName(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".webp":
		return "image/webp"
	case ".emf":
		return "image/emf"
	case ".wmf":
		return "image/wmf"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}

// soleImage returns the image when a paragraph holds nothing but one image.
func soleImage(content []model.Inline) *model.Image {
	var img *model.Image
	for _, in := range content {
		switch v := in.(type) {
		case model.InlineImage:
			if img != nil {
				return nil
			}
			img = v.Image
		case model.Text:
			if strings.TrimSpace(v.Content) != "" {
				return nil
			}
		default:
			return nil
		}
	}
	return img
}

// trimInlines removes leading and trailing whitespace from the outer plain
// text spans.
func trimInlines(content []model.Inline) []model.Inline {
	if len(content) == 0 {
		return content
	}
	out := make([]model.Inline, 0, len(content))
	for i, in := range content {
		if t, ok := in.(model.Text); ok {
			if i == 0 {
				t.Content = strings.TrimLeft(t.Content, " \t\n")
			}
			if i == len(content)-1 {
				t.Content = strings.TrimRight(t.Content, " \t\n")
			}
			if t.Content == "" {
				continue
			}
			in = t
		}
		out = append(out, in)
	}
	return out
}
