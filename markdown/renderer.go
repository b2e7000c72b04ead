package markdown

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tsawler/docmark/model"
)

// ErrUnknownNode is returned for a node the renderer has no rule for.
var ErrUnknownNode = errors.New("unknown node type")

// listIndent is the indentation added per nesting level of a list.
const listIndent = "    "

// Renderer converts documents to Markdown. It holds no state between calls
// and is safe for concurrent use.
type Renderer struct {
	opts Options
}

// NewRenderer creates a renderer with the given options.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// Render renders doc with opts.
func Render(doc *model.Document, opts Options) (string, error) {
	return NewRenderer(opts).Render(doc)
}

// Render renders a document. Options are validated before any output is
// produced.
func (r *Renderer) Render(doc *model.Document) (string, error) {
	if err := r.opts.Validate(); err != nil {
		return "", err
	}
	if doc == nil {
		return "", errors.New("nil document")
	}

	blocks := make([]string, 0, len(doc.Nodes))
	for i, n := range doc.Nodes {
		if n == nil {
			continue
		}
		block, err := r.renderNode(n)
		if err != nil {
			return "", fmt.Errorf("node %d: %w", i, err)
		}
		if block = trimTrailingSpace(block); strings.TrimSpace(block) != "" {
			blocks = append(blocks, block)
		}
	}
	if len(blocks) == 0 {
		return "", nil
	}
	return strings.Join(blocks, "\n\n") + "\n", nil
}

func (r *Renderer) renderNode(n model.Node) (string, error) {
	switch v := n.(type) {
	case *model.Heading:
		return r.renderHeading(v), nil
	case *model.Paragraph:
		return escapeLineStarts(strings.TrimSpace(r.inlines(model.TrimSpans(v.Content), blockContext))), nil
	case *model.List:
		var sb strings.Builder
		r.renderList(&sb, v, 0)
		return sb.String(), nil
	case *model.Table:
		return r.renderTable(v), nil
	case *model.Image:
		if !r.opts.IncludeImages {
			return "", nil
		}
		return r.renderImage(v, blockContext), nil
	case *model.CodeBlock:
		return renderCodeBlock(v), nil
	case *model.ThematicBreak:
		return "---", nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnknownNode, n)
	}
}

func (r *Renderer) renderHeading(h *model.Heading) string {
	level := min(max(h.Level, 1), 6)
	text := strings.TrimSpace(r.inlines(model.TrimSpans(h.Content), lineContext))
	// A trailing run of '#' would be read as the closing sequence.
	if strings.HasSuffix(text, "#") {
		text = text[:len(text)-1] + `\#`
	}
	return strings.Repeat("#", level) + " " + text
}

func (r *Renderer) renderList(sb *strings.Builder, l *model.List, depth int) {
	indent := strings.Repeat(listIndent, depth)
	start := l.Start
	if start == 0 {
		start = 1
	}

	for i, item := range l.Items {
		marker := "-"
		if l.Ordered {
			marker = strconv.Itoa(start+i) + "."
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}

		content := escapeLineStarts(strings.TrimSpace(r.inlines(model.TrimSpans(item.Content), blockContext)))
		continuation := "\n" + indent + strings.Repeat(" ", len(marker)+1)
		sb.WriteString(indent + marker + " " + strings.ReplaceAll(content, "\n", continuation))

		if item.Nested != nil && len(item.Nested.Items) > 0 {
			sb.WriteByte('\n')
			var nested strings.Builder
			r.renderList(&nested, item.Nested, depth+1)
			sb.WriteString(nested.String())
		}
	}
}

func renderCodeBlock(c *model.CodeBlock) string {
	fence := strings.Repeat("`", max(3, longestRun(c.Text, '`')+1))
	text := strings.TrimRight(c.Text, "\n")
	return fence + strings.TrimSpace(c.Language) + "\n" + text + "\n" + fence
}

// longestRun returns the length of the longest run of c in s.
func longestRun(s string, c byte) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return longest
}

var (
	blockMarker   = regexp.MustCompile(`^([-+=]|\d+[.)])(\s|$)`)
	setextLine    = regexp.MustCompile(`^=+\s*$`)
	thematicBreak = regexp.MustCompile(`^(-\s*){3,}$`)
)

// escapeLineStarts escapes text at the start of a line that would
// otherwise open a heading, list item or thematic break.
func escapeLineStarts(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "#"):
			lines[i] = `\` + line
		case thematicBreak.MatchString(line), setextLine.MatchString(line):
			lines[i] = `\` + line
		case blockMarker.MatchString(line):
			m := blockMarker.FindStringSubmatch(line)
			cut := len(m[1]) - 1
			lines[i] = line[:cut] + `\` + line[cut:]
		}
	}
	return strings.Join(lines, "\n")
}

// trimTrailingSpace removes spaces and tabs at the end of every line.
func trimTrailingSpace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
