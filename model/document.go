package model

import "strings"

// Document is the root of a parsed document.
type Document struct {
	Metadata Metadata
	Nodes    []Node
}

// Metadata contains document-level information
type Metadata struct {
	Title    string
	Author   string
	Subject  string
	Keywords []string
	Creator  string
	Producer string

	// Format is the source format name (DOCX, PDF, TEXT, RTF)
	Format string

	// PageCount is the number of source pages, 0 when the format has none
	PageCount int
}

// NewDocument creates a new empty document
func NewDocument() *Document {
	return &Document{
		Nodes: make([]Node, 0),
	}
}

// Append adds nodes to the end of the document, skipping nils.
func (d *Document) Append(nodes ...Node) {
	for _, n := range nodes {
		if n != nil {
			d.Nodes = append(d.Nodes, n)
		}
	}
}

// IsEmpty reports whether the document has no nodes.
func (d *Document) IsEmpty() bool {
	return len(d.Nodes) == 0
}

// Walk visits every node in document order, descending into list items.
// Returning false from fn stops the walk.
func Walk(nodes []Node, fn func(Node) bool) bool {
	for _, n := range nodes {
		if !fn(n) {
			return false
		}
		if l, ok := n.(*List); ok {
			if !walkList(l, fn) {
				return false
			}
		}
	}
	return true
}

func walkList(l *List, fn func(Node) bool) bool {
	for _, item := range l.Items {
		if item.Nested == nil {
			continue
		}
		if !fn(item.Nested) {
			return false
		}
		if !walkList(item.Nested, fn) {
			return false
		}
	}
	return true
}

// Stats counts the structural elements of a document.
type Stats struct {
	Headings   int
	Paragraphs int
	Tables     int
	Images     int
	Lists      int
	CodeBlocks int
}

// Stats returns structural element counts, including inline images.
func (d *Document) Stats() Stats {
	var s Stats
	Walk(d.Nodes, func(n Node) bool {
		switch v := n.(type) {
		case *Heading:
			s.Headings++
			s.Images += countInlineImages(v.Content)
		case *Paragraph:
			s.Paragraphs++
			s.Images += countInlineImages(v.Content)
		case *Table:
			s.Tables++
		case *Image:
			s.Images++
		case *List:
			s.Lists++
		case *CodeBlock:
			s.CodeBlocks++
		}
		return true
	})
	return s
}

func countInlineImages(spans []Inline) int {
	count := 0
	WalkInline(spans, func(in Inline) {
		if _, ok := in.(InlineImage); ok {
			count++
		}
	})
	return count
}

// PlainText returns the document text without any formatting.
func (d *Document) PlainText() string {
	var sb strings.Builder
	Walk(d.Nodes, func(n Node) bool {
		var text string
		switch v := n.(type) {
		case *Heading:
			text = PlainText(v.Content)
		case *Paragraph:
			text = PlainText(v.Content)
		case *CodeBlock:
			text = v.Text
		case *Table:
			var rows []string
			for _, row := range v.Rows {
				cells := make([]string, len(row.Cells))
				for i, c := range row.Cells {
					cells[i] = PlainText(c.Content)
				}
				rows = append(rows, strings.Join(cells, "\t"))
			}
			text = strings.Join(rows, "\n")
		case *List:
			var items []string
			for _, item := range v.Items {
				items = append(items, PlainText(item.Content))
			}
			text = strings.Join(items, "\n")
		}
		if text != "" {
			if sb.Len() > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(text)
		}
		return true
	})
	return sb.String()
}

// Images returns every image in the document in document order, block and
// inline alike.
func Images(doc *Document) []*Image {
	var images []*Image
	collect := func(spans []Inline) {
		WalkInline(spans, func(in Inline) {
			if img, ok := in.(InlineImage); ok && img.Image != nil {
				images = append(images, img.Image)
			}
		})
	}
	Walk(doc.Nodes, func(n Node) bool {
		switch v := n.(type) {
		case *Image:
			images = append(images, v)
		case *Heading:
			collect(v.Content)
		case *Paragraph:
			collect(v.Content)
		case *List:
			for _, item := range v.Items {
				collect(item.Content)
			}
		case *Table:
			for _, row := range v.Rows {
				for _, cell := range row.Cells {
					collect(cell.Content)
				}
			}
		}
		return true
	})
	return images
}
