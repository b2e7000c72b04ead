package docx

import (
	"github.com/tsawler/docmark/model"
)

// TableParser handles parsing of DOCX tables.
type TableParser struct {
	// cellContent flattens a cell's blocks into inline content
	cellContent func(blocks []blockXML) []model.Inline
}

// NewTableParser creates a new table parser.
func NewTableParser(cellContent func(blocks []blockXML) []model.Inline) *TableParser {
	return &TableParser{
		cellContent: cellContent,
	}
}

// ParseTable converts a table XML element into a model.Table laid out on
// the table grid. A cell spanning n grid columns is followed by n-1 empty
// cells, and cells continuing a vertical merge are emitted empty, so every
// row keeps its column positions.
func (tp *TableParser) ParseTable(tbl tableXML) *model.Table {
	table := &model.Table{Confidence: 1} // DOCX tables are explicit

	for _, row := range tbl.Rows {
		var cells []model.Cell

		for i := 0; i < row.Properties.GridBefore.value(); i++ {
			cells = append(cells, model.Cell{})
		}

		for _, cell := range row.Cells {
			span := cell.Properties.GridSpan.value()
			if span < 1 {
				span = 1
			}

			if cell.Properties.VMerge.continuation() || cell.Properties.HMerge.continuation() {
				cells = append(cells, model.Cell{})
			} else {
				cells = append(cells, model.Cell{Content: tp.cellContent(cell.Blocks)})
			}
			for i := 1; i < span; i++ {
				cells = append(cells, model.Cell{})
			}
		}

		for i := 0; i < row.Properties.GridAfter.value(); i++ {
			cells = append(cells, model.Cell{})
		}

		table.Rows = append(table.Rows, model.Row{Cells: cells})
	}

	return table
}
