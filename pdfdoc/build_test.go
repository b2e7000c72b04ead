package pdfdoc

import (
	"testing"

	"github.com/tsawler/docmark/layout"
	"github.com/tsawler/docmark/model"
)

func textBlock(page int, text string) layout.Block {
	return layout.Block{Page: page, Paragraph: &layout.Paragraph{
		Lines: []layout.Line{{Text: text, Fragments: []layout.Fragment{{Text: text, FontSize: 12, FontName: "Helvetica"}}}},
		Text:  text,
	}}
}

func itemBlock(page int, text string, marker layout.ListMarker) layout.Block {
	b := textBlock(page, text)
	b.Paragraph.List = &marker
	return b
}

func TestBlocksToNodes(t *testing.T) {
	heading := textBlock(0, "Title")
	heading.Paragraph.HeadingLevel = 2
	table := model.NewTable(2, 2)
	img := &model.Image{MIMEType: "image/png", Width: 1, Height: 1}

	blocks := []layout.Block{
		heading,
		itemBlock(0, "3. third", layout.ListMarker{Ordered: true, Number: 3, Prefix: "3. "}),
		itemBlock(0, "4. fourth", layout.ListMarker{Ordered: true, Number: 4, Prefix: "4. "}),
		itemBlock(0, "- nested", layout.ListMarker{Prefix: "- ", Level: 1}),
		{Page: 1, Node: table},
		textBlock(1, "closing words"),
	}
	images := [][]*model.Image{{img}, nil}

	nodes := blocksToNodes(blocks, images)

	wantTypes := []model.NodeType{
		model.NodeTypeHeading,
		model.NodeTypeList,
		model.NodeTypeImage,
		model.NodeTypeTable,
		model.NodeTypeParagraph,
	}
	if len(nodes) != len(wantTypes) {
		t.Fatalf("got %d nodes, want %d: %#v", len(nodes), len(wantTypes), nodes)
	}
	for i, want := range wantTypes {
		if nodes[i].Type() != want {
			t.Errorf("node %d = %v, want %v", i, nodes[i].Type(), want)
		}
	}

	if h := nodes[0].(*model.Heading); h.Level != 2 {
		t.Errorf("heading level = %d, want 2", h.Level)
	}

	list := nodes[1].(*model.List)
	if !list.Ordered || list.Start != 3 || len(list.Items) != 2 {
		t.Fatalf("list = %+v", list)
	}
	if got := model.PlainText(list.Items[0].Content); got != "third" {
		t.Errorf("item 0 = %q, want marker stripped", got)
	}
	nested := list.Items[1].Nested
	if nested == nil || nested.Ordered || len(nested.Items) != 1 {
		t.Fatalf("nested list = %+v", nested)
	}
	if got := model.PlainText(nested.Items[0].Content); got != "nested" {
		t.Errorf("nested item = %q", got)
	}

	if nodes[2] != img || nodes[3] != table {
		t.Error("image or table not placed by page")
	}
}

func TestBlocksToNodes_ImagesWithoutText(t *testing.T) {
	a := &model.Image{MIMEType: "image/png"}
	b := &model.Image{MIMEType: "image/jpeg"}

	nodes := blocksToNodes(nil, [][]*model.Image{{a}, nil, {b}})
	if len(nodes) != 2 || nodes[0] != a || nodes[1] != b {
		t.Errorf("nodes = %#v, want both images in page order", nodes)
	}
}

func TestBlocksToNodes_ListKindChange(t *testing.T) {
	blocks := []layout.Block{
		itemBlock(0, "• bullet", layout.ListMarker{Prefix: "• "}),
		itemBlock(0, "1. number", layout.ListMarker{Ordered: true, Number: 1, Prefix: "1. "}),
	}

	nodes := blocksToNodes(blocks, nil)
	if len(nodes) != 2 {
		t.Fatalf("expected 2 lists, got %d", len(nodes))
	}
	if nodes[0].(*model.List).Ordered || !nodes[1].(*model.List).Ordered {
		t.Error("list kinds not split")
	}
	if start := nodes[1].(*model.List).Start; start != 0 {
		t.Errorf("Start = %d, want 0 for a list starting at 1", start)
	}
}
