package pdfdoc

import (
	"github.com/tsawler/docmark/layout"
	"github.com/tsawler/docmark/model"
	"github.com/tsawler/docmark/tables"
)

// pageTables runs table detection with each page's own ruling lines.
type pageTables struct {
	detector *tables.Detector
	rules    [][]tables.Rule
}

func (t pageTables) Claim(lines []layout.Line) []layout.Region {
	return t.detector.Claim(lines)
}

func (t pageTables) ClaimPage(page int, lines []layout.Line) []layout.Region {
	if page < len(t.rules) && len(t.rules[page]) > 0 {
		return t.detector.WithRules(t.rules[page]).Claim(lines)
	}
	return t.detector.Claim(lines)
}

// buildNodes analyzes the pages and converts the result to document nodes.
func (p *Parser) buildNodes(pages []pageContent) []model.Node {
	fragments := make([][]layout.Fragment, len(pages))
	for i, pc := range pages {
		fragments[i] = pc.fragments
	}

	var claim layout.Claimer
	if p.config.DetectTables {
		rules := make([][]tables.Rule, len(pages))
		for i, pc := range pages {
			rules[i] = pc.rules
		}
		claim = pageTables{detector: tables.NewDetectorWithConfig(p.config.Tables), rules: rules}
	}

	result := layout.NewAnalyzerWithConfig(p.config.Layout).Analyze(fragments, claim)

	var images [][]*model.Image
	if p.config.IncludeImages {
		images = make([][]*model.Image, len(pages))
		for i, pc := range pages {
			images[i] = pc.images
		}
	}
	return blocksToNodes(result.Blocks, images)
}

// nodeBuilder collects nodes, assembling consecutive list items into one
// nested list.
type nodeBuilder struct {
	nodes []model.Node
	list  model.ListBuilder
}

func (b *nodeBuilder) emit(n model.Node) {
	b.flushList()
	b.nodes = append(b.nodes, n)
}

func (b *nodeBuilder) flushList() {
	if l := b.list.Finish(); l != nil {
		b.nodes = append(b.nodes, l)
	}
}

func (b *nodeBuilder) addItem(marker *layout.ListMarker, content []model.Inline) {
	starting := !b.list.Active()
	if finished := b.list.Add(marker.Level, marker.Ordered, content); finished != nil {
		b.nodes = append(b.nodes, finished)
		starting = true
	}
	if starting && marker.Ordered && marker.Number > 1 {
		b.list.SetStart(marker.Number)
	}
}

// blocksToNodes converts analyzed blocks in reading order. images[i] holds
// page i's images, placed after the last block of that page.
func blocksToNodes(blocks []layout.Block, images [][]*model.Image) []model.Node {
	var b nodeBuilder
	next := 0
	flushImages := func(upTo int) {
		for ; next < upTo && next < len(images); next++ {
			for _, img := range images[next] {
				b.emit(img)
			}
		}
	}

	for _, block := range blocks {
		flushImages(block.Page)

		if block.Node != nil {
			b.emit(block.Node)
			continue
		}
		para := block.Paragraph
		switch {
		case para.HeadingLevel > 0:
			b.emit(&model.Heading{Level: para.HeadingLevel, Content: para.Inlines()})
		case para.List != nil:
			b.addItem(para.List, para.ItemInlines())
		default:
			if content := para.Inlines(); len(content) > 0 {
				b.emit(&model.Paragraph{Content: content})
			}
		}
	}
	flushImages(len(images))
	b.flushList()
	return b.nodes
}
