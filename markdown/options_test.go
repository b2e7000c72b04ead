package markdown

import (
	"errors"
	"testing"
)

func TestParseTableFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    TableFormat
		wantErr bool
	}{
		{"grid", TableGrid, false},
		{"PIPE", TablePipe, false},
		{" simple ", TableSimple, false},
		{"html", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTableFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidOptions) {
					t.Errorf("err = %v, want ErrInvalidOptions", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseTableFormat(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestTableFormat_Text(t *testing.T) {
	for _, f := range []TableFormat{TableGrid, TablePipe, TableSimple} {
		text, err := f.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", f, err)
		}
		var back TableFormat
		if err := back.UnmarshalText(text); err != nil || back != f {
			t.Errorf("round trip of %v gave %v, %v", f, back, err)
		}
	}
	if _, err := TableFormat(42).MarshalText(); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Options)
		wantErr bool
	}{
		{"defaults", func(*Options) {}, false},
		{"zero image size", func(o *Options) { o.MaxImageSize = 0 }, true},
		{"negative image size", func(o *Options) { o.MaxImageSize = -5 }, true},
		{"unknown table format", func(o *Options) { o.TableFormat = TableFormat(9) }, true},
		{"pipe", func(o *Options) { o.TableFormat = TablePipe }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			err := opts.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("error %v does not wrap ErrInvalidOptions", err)
			}
		})
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if !opts.PreserveFormatting || !opts.IncludeImages || opts.MaxImageSize != 1024 || opts.TableFormat != TableGrid {
		t.Errorf("DefaultOptions() = %+v", opts)
	}
}
