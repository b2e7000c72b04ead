package model

// NodeType identifies the concrete variant of a Node
type NodeType int

const (
	NodeTypeUnknown NodeType = iota
	NodeTypeHeading
	NodeTypeParagraph
	NodeTypeTable
	NodeTypeImage
	NodeTypeList
	NodeTypeCodeBlock
	NodeTypeThematicBreak
)

func (nt NodeType) String() string {
	switch nt {
	case NodeTypeHeading:
		return "Heading"
	case NodeTypeParagraph:
		return "Paragraph"
	case NodeTypeTable:
		return "Table"
	case NodeTypeImage:
		return "Image"
	case NodeTypeList:
		return "List"
	case NodeTypeCodeBlock:
		return "CodeBlock"
	case NodeTypeThematicBreak:
		return "ThematicBreak"
	default:
		return "Unknown"
	}
}

// Node is a block-level element of a document. The set of implementations
// is closed: only types in this package can satisfy it.
type Node interface {
	Type() NodeType
	node()
}

// Heading represents a heading. Level is kept as parsed; renderers clamp it.
type Heading struct {
	Level   int
	Content []Inline
}

func (h *Heading) Type() NodeType { return NodeTypeHeading }
func (*Heading) node()            {}

// Paragraph represents a paragraph of inline content
type Paragraph struct {
	Content []Inline
}

func (p *Paragraph) Type() NodeType { return NodeTypeParagraph }
func (*Paragraph) node()            {}

// Image represents an embedded image. Data must not be modified after the
// parser hands the document over.
type Image struct {
	Data     []byte
	MIMEType string
	// Natural size in pixels; zero when unknown
	Width   int
	Height  int
	AltText string
}

func (i *Image) Type() NodeType { return NodeTypeImage }
func (*Image) node()            {}

// List represents a list (ordered or unordered)
type List struct {
	Ordered bool
	// Start is the first number of an ordered list; 0 means 1
	Start int
	Items []ListItem
}

func (l *List) Type() NodeType { return NodeTypeList }
func (*List) node()            {}

// ListItem represents a single list item with an optional sub-list
type ListItem struct {
	Content []Inline
	Nested  *List
}

// CodeBlock represents preformatted text
type CodeBlock struct {
	Text     string
	Language string
}

func (c *CodeBlock) Type() NodeType { return NodeTypeCodeBlock }
func (*CodeBlock) node()            {}

// ThematicBreak represents a horizontal rule
type ThematicBreak struct{}

func (t *ThematicBreak) Type() NodeType { return NodeTypeThematicBreak }
func (*ThematicBreak) node()            {}
