package docmark

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/tsawler/docmark/markdown"
)

func TestOpen_Markdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("Alpha\n\nBeta\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Open(path).Markdown()
	if err != nil {
		t.Fatalf("Markdown() error = %v", err)
	}
	if got != "Alpha\n\nBeta\n" {
		t.Errorf("Markdown() = %q", got)
	}

	doc, err := Open(path).Document()
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	if n := doc.Stats().Paragraphs; n != 2 {
		t.Errorf("Paragraphs = %d, want 2", n)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.txt")).Markdown()
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error = %v, want fs.ErrNotExist", err)
	}
}

func TestOpen_UnsupportedIsNotRead(t *testing.T) {
	// The file does not exist, so any attempt to read it would fail with a
	// different error.
	_, err := Open(filepath.Join(t.TempDir(), "missing.exe")).Markdown()
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("error = %v, want ErrUnsupported", err)
	}

	_, err = Open("missing.exe").Document()
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("Document() error = %v, want ErrUnsupported", err)
	}
}

func TestConverter_ChainIsImmutable(t *testing.T) {
	base := FromBytes([]byte(`{\rtf1 \b on\b0  off\par}`), "doc.rtf")
	plain := base.WithoutFormatting()

	if !base.Options().PreserveFormatting {
		t.Error("WithoutFormatting() modified the receiver")
	}
	if plain.Options().PreserveFormatting {
		t.Error("WithoutFormatting() not applied")
	}

	got, err := base.Markdown()
	if err != nil || got != "**on** off\n" {
		t.Errorf("base Markdown() = %q, %v", got, err)
	}
	got, err = plain.Markdown()
	if err != nil || got != "on off\n" {
		t.Errorf("plain Markdown() = %q, %v", got, err)
	}
}

func TestConverter_Options(t *testing.T) {
	c := FromBytes(nil, "a.txt").
		WithoutImages().
		MaxImageSize(256).
		TableFormat(markdown.TableSimple)

	opts := c.Options()
	if opts.IncludeImages {
		t.Error("IncludeImages = true")
	}
	if opts.MaxImageSize != 256 {
		t.Errorf("MaxImageSize = %d", opts.MaxImageSize)
	}
	if opts.TableFormat != markdown.TableSimple {
		t.Errorf("TableFormat = %v", opts.TableFormat)
	}
	if !opts.PreserveFormatting {
		t.Error("PreserveFormatting changed")
	}
}

func TestConverter_InvalidOptions(t *testing.T) {
	_, err := FromBytes([]byte("x"), "a.txt").MaxImageSize(-1).Markdown()
	var optErr *OptionsError
	if !errors.As(err, &optErr) {
		t.Errorf("error = %v, want *OptionsError", err)
	}
}

func TestConverter_Using(t *testing.T) {
	engine := New(WithWorkers(1))
	got, err := FromBytes([]byte("text"), "a.txt").Using(engine).Markdown()
	if err != nil || got != "text\n" {
		t.Errorf("Markdown() = %q, %v", got, err)
	}
}
