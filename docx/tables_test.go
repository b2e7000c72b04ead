package docx

import (
	"testing"

	"github.com/tsawler/docmark/model"
)

func cell(props, text string) string {
	return `<w:tc><w:tcPr>` + props + `</w:tcPr><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:tc>`
}

func tableOf(t *testing.T, body string) *model.Table {
	t.Helper()
	doc := parse(t, buildDOCX(t, body, nil))
	if len(doc.Nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(doc.Nodes))
	}
	table, ok := doc.Nodes[0].(*model.Table)
	if !ok {
		t.Fatalf("node 0 is %T, want *model.Table", doc.Nodes[0])
	}
	return table
}

func rowTexts(row model.Row) []string {
	out := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		out[i] = model.PlainText(c.Content)
	}
	return out
}

func assertRow(t *testing.T, got model.Row, want ...string) {
	t.Helper()
	texts := rowTexts(got)
	if len(texts) != len(want) {
		t.Fatalf("row = %q, want %q", texts, want)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("row = %q, want %q", texts, want)
			return
		}
	}
}

func TestTableParsing_GridSpan(t *testing.T) {
	table := tableOf(t, `<w:tbl>
<w:tr>`+cell(`<w:gridSpan w:val="2"/>`, "wide")+cell("", "c")+`</w:tr>
<w:tr>`+cell("", "a")+cell("", "b")+cell("", "c")+`</w:tr>
</w:tbl>`)

	assertRow(t, table.Rows[0], "wide", "", "c")
	assertRow(t, table.Rows[1], "a", "b", "c")
	if table.Confidence != 1 {
		t.Errorf("Confidence = %v, want 1", table.Confidence)
	}
}

func TestTableParsing_VerticalMerge(t *testing.T) {
	table := tableOf(t, `<w:tbl>
<w:tr>`+cell(`<w:vMerge w:val="restart"/>`, "tall")+cell("", "x")+`</w:tr>
<w:tr>`+cell(`<w:vMerge/>`, "ignored")+cell("", "y")+`</w:tr>
</w:tbl>`)

	assertRow(t, table.Rows[0], "tall", "x")
	assertRow(t, table.Rows[1], "", "y")
}

func TestTableParsing_GridBeforeAfter(t *testing.T) {
	table := tableOf(t, `<w:tbl>
<w:tr><w:trPr><w:gridBefore w:val="1"/><w:gridAfter w:val="1"/></w:trPr>`+cell("", "mid")+`</w:tr>
<w:tr>`+cell("", "a")+cell("", "b")+cell("", "c")+`</w:tr>
</w:tbl>`)

	assertRow(t, table.Rows[0], "", "mid", "")
}

func TestTableParsing_CellContent(t *testing.T) {
	table := tableOf(t, `<w:tbl><w:tr><w:tc>
  <w:p><w:r><w:t>first</w:t></w:r></w:p>
  <w:p/>
  <w:p><w:r><w:rPr><w:b/></w:rPr><w:t>second</w:t></w:r></w:p>
</w:tc></w:tr></w:tbl>`)

	content := table.Rows[0].Cells[0].Content
	if got := model.PlainText(content); got != "first second" {
		t.Errorf("cell text = %q, want %q", got, "first second")
	}
	if _, ok := content[len(content)-1].(model.Bold); !ok {
		t.Errorf("last span is %T, want Bold", content[len(content)-1])
	}
}

func TestTableParsing_RaggedRowsKept(t *testing.T) {
	table := tableOf(t, `<w:tbl>
<w:tr>`+cell("", "a")+`</w:tr>
<w:tr>`+cell("", "b")+cell("", "c")+`</w:tr>
</w:tbl>`)

	if table.ColCount() != 2 {
		t.Errorf("ColCount = %d, want 2", table.ColCount())
	}
	if n := len(table.Normalize()[0].Cells); n != 2 {
		t.Errorf("normalized first row has %d cells, want 2", n)
	}
}

func TestTableParsing_EmptyTable(t *testing.T) {
	table := NewTableParser(func([]blockXML) []model.Inline { return nil }).ParseTable(tableXML{})
	if table.RowCount() != 0 {
		t.Errorf("RowCount = %d, want 0", table.RowCount())
	}
}
