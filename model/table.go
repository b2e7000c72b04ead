package model

// Table represents a table as an ordered list of rows. The first row is
// treated as the header by renderers that distinguish one.
type Table struct {
	Rows []Row
	// Confidence is 1 for tables that are explicit in the source and the
	// detector score for tables reconstructed from layout
	Confidence float64
}

func (t *Table) Type() NodeType { return NodeTypeTable }
func (*Table) node()            {}

// Row represents a table row
type Row struct {
	Cells []Cell
}

// Cell represents a table cell
type Cell struct {
	Content []Inline
}

// TextCell returns a cell holding plain text.
func TextCell(s string) Cell {
	return Cell{Content: Texts(s)}
}

// NewTable creates a table of empty cells.
func NewTable(rows, cols int) *Table {
	t := &Table{Rows: make([]Row, rows)}
	for i := range t.Rows {
		t.Rows[i].Cells = make([]Cell, cols)
	}
	return t
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the column count, which is the widest row's cell count.
func (t *Table) ColCount() int {
	cols := 0
	for _, row := range t.Rows {
		if len(row.Cells) > cols {
			cols = len(row.Cells)
		}
	}
	return cols
}

// GetCell returns the cell at row, col or nil when out of range.
func (t *Table) GetCell(row, col int) *Cell {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	if col < 0 || col >= len(t.Rows[row].Cells) {
		return nil
	}
	return &t.Rows[row].Cells[col]
}

// Normalize returns a copy of the rows with every row padded to ColCount
// empty cells. Rows are never truncated. The receiver is not modified.
func (t *Table) Normalize() []Row {
	cols := t.ColCount()
	rows := make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]Cell, cols)
		copy(cells, row.Cells)
		rows[i] = Row{Cells: cells}
	}
	return rows
}
