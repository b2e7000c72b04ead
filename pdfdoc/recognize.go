package pdfdoc

import (
	"strings"
	"unicode/utf8"

	"github.com/tsawler/docmark/layout"
	"github.com/tsawler/docmark/model"
	"github.com/tsawler/docmark/ocr"
)

// Geometry given to recognized text. Blank lines in the OCR output become
// a double line pitch so they still separate paragraphs.
const (
	ocrFontSize = 12.0
	ocrPitch    = 14.0
	ocrMargin   = 72.0
	ocrTop      = 792.0 - 72.0
)

// recognize fills in the text of pages that have images but no text layer.
// The OCR client is created on first use and shared by the pages of one
// document.
func (p *Parser) recognize(pages []pageContent) {
	var client *ocr.Client
	defer func() {
		client.Close()
	}()

	for i := range pages {
		pc := &pages[i]
		if len(pc.fragments) > 0 || len(pc.images) == 0 {
			continue
		}
		if client == nil {
			c, err := ocr.New(ocrLanguages(p.config.OCRLanguage)...)
			if err != nil {
				p.logger.Warn("OCR unavailable", "error", err)
				return
			}
			client = c
		}

		text, err := client.RecognizeImage(largestImage(pc.images).Data)
		if err != nil {
			p.logger.Warn("OCR failed", "page", i+1, "error", err)
			continue
		}
		pc.fragments = ocrFragments(text)
	}
}

// ocrLanguages splits a Tesseract language setting such as "eng+deu".
func ocrLanguages(setting string) []string {
	var langs []string
	for _, l := range strings.Split(setting, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}

func largestImage(images []*model.Image) *model.Image {
	best := images[0]
	for _, img := range images[1:] {
		if img.Width*img.Height > best.Width*best.Height {
			best = img
		}
	}
	return best
}

// ocrFragments lays recognized text out as one fragment per line.
func ocrFragments(text string) []layout.Fragment {
	var frags []layout.Fragment
	y := ocrTop
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(frags) > 0 {
				y -= ocrPitch
			}
			continue
		}
		frags = append(frags, layout.Fragment{
			Text:     line,
			X:        ocrMargin,
			Y:        y,
			Width:    float64(utf8.RuneCountInString(line)) * ocrFontSize * 0.5,
			FontSize: ocrFontSize,
			FontName: "OCR",
		})
		y -= ocrPitch
	}
	return frags
}
