package docmark

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/tsawler/docmark/markdown"
	"github.com/tsawler/docmark/model"
)

func TestExitCodeAndHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   int
		status int
	}{
		{"nil", nil, ExitOK, http.StatusOK},
		{"unsupported", &UnsupportedError{Filename: "a.exe", Extension: ".exe"}, ExitUnsupported, http.StatusUnsupportedMediaType},
		{"corrupt", model.NewParseError(CorruptInput, "PDF", "", nil), ExitCorrupt, http.StatusUnprocessableEntity},
		{"truncated", model.NewParseError(Truncated, "DOCX", "", nil), ExitCorrupt, http.StatusUnprocessableEntity},
		{"feature", model.NewParseError(UnsupportedFeature, "PDF", "encrypted", nil), ExitFeature, http.StatusUnprocessableEntity},
		{"render", &RenderError{Err: errors.New("x")}, ExitRender, http.StatusInternalServerError},
		{"options", &OptionsError{Err: markdown.ErrInvalidOptions}, ExitOptions, http.StatusBadRequest},
		{"bare invalid options", fmt.Errorf("conversion: %w", markdown.ErrInvalidOptions), ExitOptions, http.StatusBadRequest},
		{"wrapped parse", fmt.Errorf("converting: %w", model.NewParseError(CorruptInput, "RTF", "", nil)), ExitCorrupt, http.StatusUnprocessableEntity},
		{"other", errors.New("disk on fire"), ExitFailure, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.code {
				t.Errorf("ExitCode() = %d, want %d", got, tt.code)
			}
			if got := HTTPStatus(tt.err); got != tt.status {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestUnsupportedError_Message(t *testing.T) {
	err := &UnsupportedError{Filename: "a.exe", Extension: ".exe"}
	if !strings.Contains(err.Error(), `".exe"`) || !strings.Contains(err.Error(), ".docx") {
		t.Errorf("Error() = %q", err.Error())
	}

	err = &UnsupportedError{Filename: "README"}
	if !strings.Contains(err.Error(), "no file extension") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestRenderError_Unwrap(t *testing.T) {
	err := &RenderError{Err: markdown.ErrUnknownNode}
	if !errors.Is(err, markdown.ErrUnknownNode) {
		t.Error("RenderError does not unwrap")
	}
}
