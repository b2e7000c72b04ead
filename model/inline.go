package model

import "strings"

// Inline is a span of inline content. Like Node, the set of implementations
// is closed.
type Inline interface {
	inline()
}

// Text is literal text
type Text struct {
	Content string
}

// Bold wraps strongly emphasised content
type Bold struct {
	Children []Inline
}

// Italic wraps emphasised content
type Italic struct {
	Children []Inline
}

// Underline wraps underlined content
type Underline struct {
	Children []Inline
}

// Strike wraps struck-through content
type Strike struct {
	Children []Inline
}

// Link wraps content that points at Href
type Link struct {
	Children []Inline
	Href     string
}

// InlineImage places an image within running text
type InlineImage struct {
	Image *Image
}

func (Text) inline()        {}
func (Bold) inline()        {}
func (Italic) inline()      {}
func (Underline) inline()   {}
func (Strike) inline()      {}
func (Link) inline()        {}
func (InlineImage) inline() {}

// Texts is shorthand for a single plain text span.
func Texts(s string) []Inline {
	return []Inline{Text{Content: s}}
}

// WalkInline visits every span depth-first.
func WalkInline(spans []Inline, fn func(Inline)) {
	for _, s := range spans {
		fn(s)
		switch v := s.(type) {
		case Bold:
			WalkInline(v.Children, fn)
		case Italic:
			WalkInline(v.Children, fn)
		case Underline:
			WalkInline(v.Children, fn)
		case Strike:
			WalkInline(v.Children, fn)
		case Link:
			WalkInline(v.Children, fn)
		}
	}
}

// PlainText concatenates the text of all spans, ignoring formatting and images.
func PlainText(spans []Inline) string {
	var sb strings.Builder
	WalkInline(spans, func(in Inline) {
		if t, ok := in.(Text); ok {
			sb.WriteString(t.Content)
		}
	})
	return sb.String()
}

// IsBlank reports whether the spans carry no visible text and no images.
func IsBlank(spans []Inline) bool {
	blank := true
	WalkInline(spans, func(in Inline) {
		switch v := in.(type) {
		case Text:
			if strings.TrimSpace(v.Content) != "" {
				blank = false
			}
		case InlineImage:
			blank = false
		}
	})
	return blank
}

// Style is a set of inline formatting flags applied to a text run.
type Style struct {
	Bold      bool
	Italic    bool
	Underline bool
	Strike    bool
}

// Styled wraps text in the span types selected by style. The nesting order
// is fixed (bold outermost) so equal input always yields equal trees.
func Styled(text string, style Style) Inline {
	var in Inline = Text{Content: text}
	if style.Strike {
		in = Strike{Children: []Inline{in}}
	}
	if style.Underline {
		in = Underline{Children: []Inline{in}}
	}
	if style.Italic {
		in = Italic{Children: []Inline{in}}
	}
	if style.Bold {
		in = Bold{Children: []Inline{in}}
	}
	return in
}

// InlineBuilder accumulates styled runs, merging adjacent runs that share a
// style so that "He" + "llo" in the same style becomes a single span.
type InlineBuilder struct {
	spans   []Inline
	pending strings.Builder
	style   Style
	hasText bool
}

// WriteText appends text in the given style.
func (b *InlineBuilder) WriteText(text string, style Style) {
	if text == "" {
		return
	}
	if b.hasText && style != b.style {
		b.flush()
	}
	b.style = style
	b.hasText = true
	b.pending.WriteString(text)
}

// WriteInline appends a prebuilt span such as a Link or InlineImage.
func (b *InlineBuilder) WriteInline(in Inline) {
	b.flush()
	b.spans = append(b.spans, in)
}

func (b *InlineBuilder) flush() {
	if !b.hasText {
		return
	}
	b.spans = append(b.spans, Styled(b.pending.String(), b.style))
	b.pending.Reset()
	b.hasText = false
}

// Len reports the number of spans written so far, counting pending text.
func (b *InlineBuilder) Len() int {
	n := len(b.spans)
	if b.hasText {
		n++
	}
	return n
}

// Inlines returns the accumulated spans and resets the builder.
func (b *InlineBuilder) Inlines() []Inline {
	b.flush()
	out := b.spans
	b.spans = nil
	return out
}

// TrimSpans removes leading and trailing whitespace from the text at the
// edges of spans, descending into formatting wrappers. Spans left empty are
// dropped.
func TrimSpans(spans []Inline) []Inline {
	spans = trimEdge(spans, true)
	return trimEdge(spans, false)
}

func trimEdge(spans []Inline, left bool) []Inline {
	for len(spans) > 0 {
		i := len(spans) - 1
		if left {
			i = 0
		}
		in, empty := trimSpan(spans[i], left)
		if !empty {
			out := make([]Inline, len(spans))
			copy(out, spans)
			out[i] = in
			return out
		}
		if left {
			spans = spans[1:]
		} else {
			spans = spans[:i]
		}
	}
	return nil
}

func trimSpan(in Inline, left bool) (Inline, bool) {
	trim := func(children []Inline) ([]Inline, bool) {
		c := trimEdge(children, left)
		return c, len(c) == 0
	}
	switch v := in.(type) {
	case Text:
		if left {
			v.Content = strings.TrimLeft(v.Content, " \t\n")
		} else {
			v.Content = strings.TrimRight(v.Content, " \t\n")
		}
		return v, v.Content == ""
	case Bold:
		c, empty := trim(v.Children)
		return Bold{Children: c}, empty
	case Italic:
		c, empty := trim(v.Children)
		return Italic{Children: c}, empty
	case Underline:
		c, empty := trim(v.Children)
		return Underline{Children: c}, empty
	case Strike:
		c, empty := trim(v.Children)
		return Strike{Children: c}, empty
	}
	return in, false
}

// DropPrefix removes the first n bytes of text from spans, descending into
// formatting wrappers. It is used to strip list markers recognised in the
// plain text of a paragraph.
func DropPrefix(spans []Inline, n int) []Inline {
	out := make([]Inline, 0, len(spans))
	for _, in := range spans {
		if n <= 0 {
			out = append(out, in)
			continue
		}
		var kept Inline
		kept, n = dropPrefix(in, n)
		if kept != nil {
			out = append(out, kept)
		}
	}
	return out
}

func dropPrefix(in Inline, n int) (Inline, int) {
	wrap := func(children []Inline, mk func([]Inline) Inline) (Inline, int) {
		remaining := n - len(PlainText(children))
		c := DropPrefix(children, n)
		if len(c) == 0 {
			return nil, remaining
		}
		if remaining < 0 {
			remaining = 0
		}
		return mk(c), remaining
	}
	switch v := in.(type) {
	case Text:
		if len(v.Content) <= n {
			return nil, n - len(v.Content)
		}
		return Text{Content: v.Content[n:]}, 0
	case Bold:
		return wrap(v.Children, func(c []Inline) Inline { return Bold{Children: c} })
	case Italic:
		return wrap(v.Children, func(c []Inline) Inline { return Italic{Children: c} })
	case Underline:
		return wrap(v.Children, func(c []Inline) Inline { return Underline{Children: c} })
	case Strike:
		return wrap(v.Children, func(c []Inline) Inline { return Strike{Children: c} })
	case Link:
		return wrap(v.Children, func(c []Inline) Inline { return Link{Children: c, Href: v.Href} })
	}
	return in, n
}
