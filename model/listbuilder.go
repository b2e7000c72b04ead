package model

// ListBuilder assembles a nested List from a flat sequence of items, each
// tagged with its indentation level (0-based).
type ListBuilder struct {
	root  *List
	stack []*List
}

// Active reports whether a list is under construction.
func (b *ListBuilder) Active() bool {
	return b.root != nil
}

// Add appends an item at level. A top-level item whose ordering differs from
// the current list cannot continue it: the current list is returned finished
// and a new one is started. Otherwise Add returns nil.
func (b *ListBuilder) Add(level int, ordered bool, content []Inline) *List {
	if level < 0 {
		level = 0
	}

	var finished *List
	if b.root != nil && level == 0 && b.root.Ordered != ordered {
		finished = b.Finish()
	}
	if b.root == nil {
		b.root = &List{Ordered: ordered}
		b.stack = []*List{b.root}
	}

	for len(b.stack)-1 > level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	for len(b.stack)-1 < level {
		parent := b.stack[len(b.stack)-1]
		if len(parent.Items) == 0 {
			parent.Items = append(parent.Items, ListItem{})
		}
		last := &parent.Items[len(parent.Items)-1]
		if last.Nested == nil {
			last.Nested = &List{Ordered: ordered}
		}
		b.stack = append(b.stack, last.Nested)
	}

	top := b.stack[len(b.stack)-1]
	top.Items = append(top.Items, ListItem{Content: content})
	return finished
}

// SetStart sets the first number of the list under construction.
func (b *ListBuilder) SetStart(start int) {
	if b.root != nil {
		b.root.Start = start
	}
}

// Finish returns the assembled list, or nil when no items were added, and
// resets the builder.
func (b *ListBuilder) Finish() *List {
	l := b.root
	b.root = nil
	b.stack = nil
	return l
}
