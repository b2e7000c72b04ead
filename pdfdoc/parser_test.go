package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tsawler/docmark/model"
)

// testPDF assembles a minimal PDF with a correct cross-reference table.
type testPDF struct {
	objects []string
}

func (b *testPDF) add(obj string) int {
	b.objects = append(b.objects, obj)
	return len(b.objects)
}

func (b *testPDF) bytes(root, info int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(b.objects))
	for i, obj := range b.objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(b.objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R", len(b.objects)+1, root)
	if info > 0 {
		fmt.Fprintf(&buf, " /Info %d 0 R", info)
	}
	fmt.Fprintf(&buf, " >>\nstartxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

func pdfStream(content string) string {
	return fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content)
}

func pdfFont(base string) string {
	widths := strings.TrimSpace(strings.Repeat("500 ", 95))
	return fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /%s /FirstChar 32 /LastChar 126 /Widths [%s] >>", base, widths)
}

// buildPDF returns a document with one page per content stream. F1 is
// Helvetica and F2 Helvetica-Bold.
func buildPDF(title string, contents ...string) []byte {
	b := &testPDF{}
	root := b.add("<< /Type /Catalog /Pages 2 0 R >>")
	b.add("") // page tree, filled in below
	b.add(pdfFont("Helvetica"))
	b.add(pdfFont("Helvetica-Bold"))
	info := 0
	if title != "" {
		info = b.add(fmt.Sprintf("<< /Title (%s) /Author (Test Author) /Keywords (alpha, beta) >>", title))
	}

	var kids []string
	for _, content := range contents {
		stream := b.add(pdfStream(content))
		page := b.add(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
			"/Resources << /Font << /F1 3 0 R /F2 4 0 R >> >> /Contents %d 0 R >>", stream))
		kids = append(kids, fmt.Sprintf("%d 0 R", page))
	}
	b.objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids))
	return b.bytes(root, info)
}

func textOp(font string, size, x, y float64, text string) string {
	return fmt.Sprintf("BT /%s %g Tf %g %g Td (%s) Tj ET\n", font, size, x, y, text)
}

func TestParse_Errors(t *testing.T) {
	valid := buildPDF("", textOp("F1", 12, 72, 700, "Hello"))

	tests := []struct {
		name string
		data []byte
		kind model.ParseErrorKind
	}{
		{"empty", nil, model.CorruptInput},
		{"not a PDF", []byte("just some text, not a PDF"), model.CorruptInput},
		{"truncated", valid[:len(valid)/2], model.Truncated},
		{"no pages", buildPDF(""), model.CorruptInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.data)
			if err == nil {
				t.Fatalf("expected error, got document with %d nodes", len(doc.Nodes))
			}
			var perr *model.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *model.ParseError, got %T: %v", err, err)
			}
			if perr.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", perr.Kind, tt.kind)
			}
			if perr.Format != formatName {
				t.Errorf("Format = %q, want %q", perr.Format, formatName)
			}
		})
	}
}

func TestParse_HeadingAndParagraph(t *testing.T) {
	content := textOp("F2", 20, 72, 720, "Introduction") +
		textOp("F1", 12, 72, 690, "This is the first line of text") +
		textOp("F1", 12, 72, 676, "and this continues it.")

	doc, err := Parse(buildPDF("Sample Title", content))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if doc.Metadata.Format != "PDF" || doc.Metadata.PageCount != 1 {
		t.Errorf("metadata = %+v", doc.Metadata)
	}
	if doc.Metadata.Title != "Sample Title" || doc.Metadata.Author != "Test Author" {
		t.Errorf("title/author = %q/%q", doc.Metadata.Title, doc.Metadata.Author)
	}
	if len(doc.Metadata.Keywords) != 2 || doc.Metadata.Keywords[1] != "beta" {
		t.Errorf("keywords = %v", doc.Metadata.Keywords)
	}

	if len(doc.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d: %#v", len(doc.Nodes), doc.Nodes)
	}
	h, ok := doc.Nodes[0].(*model.Heading)
	if !ok {
		t.Fatalf("node 0 is %T, want *model.Heading", doc.Nodes[0])
	}
	if h.Level != 1 || model.PlainText(h.Content) != "Introduction" {
		t.Errorf("heading = level %d %q", h.Level, model.PlainText(h.Content))
	}
	p, ok := doc.Nodes[1].(*model.Paragraph)
	if !ok {
		t.Fatalf("node 1 is %T, want *model.Paragraph", doc.Nodes[1])
	}
	if got, want := model.PlainText(p.Content), "This is the first line of text and this continues it."; got != want {
		t.Errorf("paragraph = %q, want %q", got, want)
	}
}

func TestParse_MultiplePages(t *testing.T) {
	doc, err := Parse(buildPDF("",
		textOp("F1", 12, 72, 700, "First page ends here."),
		textOp("F1", 12, 72, 700, "Second page starts here."),
	))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Metadata.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", doc.Metadata.PageCount)
	}
	if got, want := doc.PlainText(), "First page ends here.\n\nSecond page starts here."; got != want {
		t.Errorf("PlainText = %q, want %q", got, want)
	}
}

func TestCheckEnvelope(t *testing.T) {
	tests := []struct {
		name string
		data string
		kind model.ParseErrorKind
		ok   bool
	}{
		{"complete", "%PDF-1.7\n...\nstartxref\n42\n%%EOF\n", 0, true},
		{"header after junk", "junk\n%PDF-1.4\nstartxref\n1\n%%EOF", 0, true},
		{"no header", "hello\nstartxref\n1\n%%EOF", model.CorruptInput, false},
		{"no eof", "%PDF-1.4\nstartxref\n1\n", model.Truncated, false},
		{"no startxref", "%PDF-1.4\n%%EOF", model.Truncated, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkEnvelope([]byte(tt.data))
			if tt.ok {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			var perr *model.ParseError
			if !errors.As(err, &perr) || perr.Kind != tt.kind {
				t.Errorf("err = %v, want kind %v", err, tt.kind)
			}
		})
	}
}

func TestSplitKeywords(t *testing.T) {
	got := splitKeywords(" pdf, markdown;conversion ,, ")
	want := []string{"pdf", "markdown", "conversion"}
	if len(got) != len(want) {
		t.Fatalf("splitKeywords = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keyword %d = %q, want %q", i, got[i], want[i])
		}
	}
}
