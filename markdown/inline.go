package markdown

import (
	"strings"

	"github.com/tsawler/docmark/model"
)

// inlineContext says where inline content ends up.
type inlineContext int

const (
	// blockContext allows hard line breaks
	blockContext inlineContext = iota
	// lineContext must stay on one line, as in headings
	lineContext
	// cellContext is a table cell: one line, pipes escaped
	cellContext
)

func (r *Renderer) inlines(spans []model.Inline, ctx inlineContext) string {
	var sb strings.Builder
	for _, span := range spans {
		sb.WriteString(r.inline(span, ctx))
	}
	return sb.String()
}

func (r *Renderer) inline(span model.Inline, ctx inlineContext) string {
	switch v := span.(type) {
	case model.Text:
		return escapeText(v.Content, ctx)
	case model.Bold:
		return r.wrap(v.Children, ctx, "**", "**")
	case model.Italic:
		return r.wrap(v.Children, ctx, "*", "*")
	case model.Strike:
		return r.wrap(v.Children, ctx, "~~", "~~")
	case model.Underline:
		return r.wrap(v.Children, ctx, "<u>", "</u>")
	case model.Link:
		text := r.inlines(v.Children, ctx)
		if !r.opts.PreserveFormatting || v.Href == "" || strings.TrimSpace(text) == "" {
			return text
		}
		return "[" + text + "](" + escapeURL(v.Href, ctx) + ")"
	case model.InlineImage:
		if !r.opts.IncludeImages || v.Image == nil {
			return ""
		}
		return r.renderImage(v.Image, ctx)
	}
	return ""
}

// wrap surrounds rendered children with markers. Whitespace at the edges
// moves outside the markers, since emphasis cannot start or end with it.
func (r *Renderer) wrap(children []model.Inline, ctx inlineContext, open, close string) string {
	inner := r.inlines(children, ctx)
	if !r.opts.PreserveFormatting {
		return inner
	}
	trimmed := strings.TrimSpace(inner)
	if trimmed == "" {
		return inner
	}
	lead := inner[:strings.Index(inner, trimmed)]
	trail := inner[len(lead)+len(trimmed):]
	return lead + open + trimmed + close + trail
}

// escapeText escapes characters with Markdown meaning and maps line breaks
// for the context.
func escapeText(s string, ctx inlineContext) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, c := range s {
		switch c {
		case '\\', '*', '_', '`', '[', ']', '<', '>':
			sb.WriteByte('\\')
		case '|':
			if ctx == cellContext {
				sb.WriteByte('\\')
			}
		case '\r':
			continue
		case '\n':
			if ctx == blockContext {
				sb.WriteString("\\\n")
			} else {
				sb.WriteByte(' ')
			}
			continue
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

// escapeURL percent-encodes characters that would end a link destination,
// plus the pipe when the link sits in a table cell.
func escapeURL(href string, ctx inlineContext) string {
	href = strings.NewReplacer(
		" ", "%20",
		"(", "%28",
		")", "%29",
		"<", "%3C",
		">", "%3E",
		"\n", "",
	).Replace(strings.TrimSpace(href))
	if ctx == cellContext {
		href = strings.ReplaceAll(href, "|", "%7C")
	}
	return href
}
