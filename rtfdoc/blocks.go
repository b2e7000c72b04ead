package rtfdoc

import (
	"bytes"
	"encoding/hex"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"regexp"
	"strconv"
	"strings"

	"github.com/tsawler/docmark/model"
)

// twipsPerPixel converts picture goal sizes (1/1440 inch) to 96 DPI pixels.
const twipsPerPixel = 15

// endParagraph closes the current paragraph. Inside a table the paragraph
// mark only separates lines within the cell.
func (s *state) endParagraph() {
	if s.cur.dest != destBody {
		return
	}
	if s.cur.inTable {
		s.builder().WriteText(" ", model.Style{})
		return
	}

	content := s.builder().Inlines()
	marker := strings.TrimSpace(s.listText.String())
	s.listText.Reset()

	if model.IsBlank(content) {
		return
	}
	s.finishTable()

	if s.cur.listID > 0 || marker != "" {
		ordered := isOrderedMarker(marker)
		fresh := !s.lists.Active()
		if done := s.lists.Add(s.cur.listLevel, ordered, trimInlines(content)); done != nil {
			s.doc.Append(done)
			fresh = true
		}
		if fresh && ordered && s.cur.listLevel == 0 {
			if n, ok := markerNumber(marker); ok && n != 1 {
				s.lists.SetStart(n)
			}
		}
		return
	}
	s.finishList()

	if img := soleImage(content); img != nil {
		s.doc.Append(img)
		return
	}

	if level := s.headingLevel(); level > 0 {
		s.doc.Append(&model.Heading{Level: level, Content: trimInlines(content)})
		return
	}
	s.doc.Append(&model.Paragraph{Content: trimInlines(content)})
}

func (s *state) endCell() {
	if s.cur.dest != destBody {
		return
	}
	s.finishList()
	s.row = append(s.row, model.Cell{Content: trimInlines(s.builder().Inlines())})
}

func (s *state) endRow() {
	if s.cur.dest != destBody {
		return
	}
	if len(s.row) == 0 {
		return
	}
	if s.table == nil {
		s.table = &model.Table{Confidence: 1}
	}
	s.table.Rows = append(s.table.Rows, model.Row{Cells: s.row})
	s.row = nil
}

func (s *state) finishTable() {
	if len(s.row) > 0 {
		s.endRow()
	}
	if s.table != nil {
		s.doc.Append(s.table)
		s.table = nil
	}
}

func (s *state) finishList() {
	if l := s.lists.Finish(); l != nil {
		s.doc.Append(l)
	}
}

// finish flushes trailing content at the end of the document.
func (s *state) finish() {
	s.flushHex()
	s.cur.inTable = false
	s.cur.dest = destBody
	for len(s.builders) > 1 {
		inner := s.builders[len(s.builders)-1]
		s.builders = s.builders[:len(s.builders)-1]
		for _, in := range inner.Inlines() {
			s.builder().WriteInline(in)
		}
	}
	if len(s.row) > 0 {
		// A cell without a closing \row still belongs to the table.
		s.endRow()
	}
	s.endParagraph()
	s.finishTable()
	s.finishList()
}

// headingLevel derives a heading level from \outlinelevel or the paragraph
// style name. Zero means body text.
func (s *state) headingLevel() int {
	if s.cur.outline >= 0 && s.cur.outline < 9 {
		return s.cur.outline + 1
	}
	name := strings.ToLower(s.styles[s.cur.styleIndex])
	if name == "title" {
		return 1
	}
	if rest, ok := strings.CutPrefix(name, "heading"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

var orderedMarker = regexp.MustCompile(`^\(?([0-9]+|[a-zA-Z]|[ivxlcdmIVXLCDM]+)[.)]`)

// isOrderedMarker reports whether list text such as "1." or "a)" numbers
// the item.
func isOrderedMarker(marker string) bool {
	return orderedMarker.MatchString(marker)
}

func markerNumber(marker string) (int, bool) {
	end := strings.IndexFunc(marker, func(r rune) bool { return r < '0' || r > '9' })
	if end <= 0 {
		return 0, false
	}
	n, err := strconv.Atoi(marker[:end])
	return n, err == nil
}

// finishPicture converts the collected \pict group into an inline image in
// the enclosing destination. Formats other than PNG and JPEG are dropped.
func (s *state) finishPicture(parent destination) {
	pict := s.pict
	s.pict = nil
	if pict == nil || !s.config.IncludePictures || pict.kind == "" {
		return
	}
	if parent != destBody {
		return
	}

	data := pict.bin
	if len(data) == 0 {
		data = decodeHexDigits(pict.hex)
	}
	if len(data) == 0 {
		return
	}

	img := &model.Image{Data: data, MIMEType: "image/" + pict.kind}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		img.Width, img.Height = cfg.Width, cfg.Height
	} else {
		img.Width = scaledTwips(pict.goalW, pict.scaleX, pict.picW)
		img.Height = scaledTwips(pict.goalH, pict.scaleY, pict.picH)
	}

	s.builder().WriteInline(model.InlineImage{Image: img})
}

func scaledTwips(goal, scale, fallback int) int {
	if goal <= 0 {
		return fallback
	}
	if scale <= 0 {
		scale = 100
	}
	return goal * scale / 100 / twipsPerPixel
}

// decodeHexDigits decodes hex text, ignoring whitespace and any trailing
// odd nibble.
func decodeHexDigits(text []byte) []byte {
	digits := make([]byte, 0, len(text))
	for _, c := range text {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') {
			digits = append(digits, c)
		}
	}
	if len(digits)%2 == 1 {
		digits = digits[:len(digits)-1]
	}
	out := make([]byte, len(digits)/2)
	if _, err := hex.Decode(out, digits); err != nil {
		return nil
	}
	return out
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
	if t, ok := content[0].(model.Text); ok {
		t.Content = strings.TrimLeft(t.Content, " \t")
		content[0] = t
	}
	last := len(content) - 1
	if t, ok := content[last].(model.Text); ok {
		t.Content = strings.TrimRight(t.Content, " \t")
		content[last] = t
	}
	out := content[:0]
	for _, in := range content {
		if t, ok := in.(model.Text); ok && t.Content == "" {
			continue
		}
		out = append(out, in)
	}
	return out
}
