package format

import (
	"archive/zip"
	"bytes"
	"testing"
)

func TestFormat_String(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{DOCX, "DOCX"},
		{PDF, "PDF"},
		{TEXT, "TEXT"},
		{RTF, "RTF"},
		{Unknown, "Unknown"},
		{Format(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("Format(%d).String() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestFormat_Extension(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{DOCX, ".docx"},
		{PDF, ".pdf"},
		{TEXT, ".txt"},
		{RTF, ".rtf"},
		{Unknown, ""},
	}

	for _, tt := range tests {
		if got := tt.format.Extension(); got != tt.want {
			t.Errorf("Format(%d).Extension() = %q, want %q", tt.format, got, tt.want)
		}
		if tt.format != Unknown && Detect("x"+tt.want) != tt.format {
			t.Errorf("Detect does not round-trip %q", tt.want)
		}
	}
}

func TestFormat_MIMEType(t *testing.T) {
	if got := PDF.MIMEType(); got != "application/pdf" {
		t.Errorf("PDF.MIMEType() = %q", got)
	}
	if got := Unknown.MIMEType(); got != "application/octet-stream" {
		t.Errorf("Unknown.MIMEType() = %q", got)
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"document.pdf", PDF},
		{"document.PDF", PDF},
		{"document.Pdf", PDF},
		{"document.docx", DOCX},
		{"document.DOCX", DOCX},
		{"document.txt", TEXT},
		{"NOTES.TXT", TEXT},
		{"document.rtf", RTF},
		{"document.Rtf", RTF},
		{"/path/to/file.pdf", PDF},
		{"/path/to/file.docx", DOCX},
		{"archive.tar.gz", Unknown},
		{"report.docx.exe", Unknown},
		{"setup.exe", Unknown},
		{"document.xyz", Unknown},
		{"document.doc", Unknown},
		{"document.", Unknown},
		{"document", Unknown},
		{"", Unknown},
	}

	for _, tt := range tests {
		if got := Detect(tt.filename); got != tt.want {
			t.Errorf("Detect(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestSupported(t *testing.T) {
	got := Supported()
	want := []string{".docx", ".pdf", ".txt", ".rtf"}
	if len(got) != len(want) {
		t.Fatalf("Supported() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Supported()[%d] = %q, want %q", i, got[i], want[i])
		}
		if Detect("file"+got[i]) == Unknown {
			t.Errorf("supported extension %q not detected", got[i])
		}
	}

	got[0] = ".mutated"
	if Supported()[0] != ".docx" {
		t.Error("Supported() must return a fresh slice")
	}
}

func TestDetectFromMagic(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"PDF magic bytes", []byte("%PDF-1.4"), PDF},
		{"PDF minimal", []byte("%PDF"), PDF},
		{"RTF header", []byte(`{\rtf1\ansi Hello}`), RTF},
		{"ZIP without word part", []byte{0x50, 0x4B, 0x03, 0x04, 0x00, 0x00}, Unknown},
		{"ZIP with word part", append([]byte{0x50, 0x4B, 0x03, 0x04}, []byte("....word/document.xml")...), DOCX},
		{"empty data", []byte{}, Unknown},
		{"short data", []byte{0x50, 0x4B}, Unknown},
		{"text file", []byte("Hello, World!"), Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFromMagic(tt.data); got != tt.want {
				t.Errorf("DetectFromMagic() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectWithContent(t *testing.T) {
	pdf := []byte("%PDF-1.7")

	tests := []struct {
		name     string
		filename string
		sniff    []byte
		want     Format
	}{
		{"extension wins", "notes.txt", pdf, TEXT},
		{"unknown extension not rescued", "payload.exe", pdf, Unknown},
		{"no extension uses content", "upload", pdf, PDF},
		{"no extension no content", "upload", nil, Unknown},
		{"empty name uses content", "", []byte(`{\rtf1}`), RTF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectWithContent(tt.filename, tt.sniff); got != tt.want {
				t.Errorf("DetectWithContent(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestDetectFromReader_DOCX(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{"[Content_Types].xml", "word/document.xml"} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		w.Write([]byte("<x/>"))
	}
	zw.Close()

	data := buf.Bytes()
	format, err := DetectFromReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("DetectFromReader() error = %v", err)
	}
	if format != DOCX {
		t.Errorf("DetectFromReader() = %v, want DOCX", format)
	}
}

func TestDetectFromReader_PDF(t *testing.T) {
	data := []byte("%PDF-1.4\n%%EOF")

	format, err := DetectFromReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("DetectFromReader() error = %v", err)
	}
	if format != PDF {
		t.Errorf("DetectFromReader() = %v, want PDF", format)
	}
}

func TestDetectFromReader_Unknown(t *testing.T) {
	data := []byte("Hello, World! This is plain text.")

	format, err := DetectFromReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("DetectFromReader() error = %v", err)
	}
	if format != Unknown {
		t.Errorf("DetectFromReader() = %v, want Unknown", format)
	}
}
