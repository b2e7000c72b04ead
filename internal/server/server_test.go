package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/docmark"
	"github.com/tsawler/docmark/markdown"
	"github.com/tsawler/docmark/model"
)

// recordingConverter remembers the last options it was called with.
type recordingConverter struct {
	opts markdown.Options
	err  error
}

func (c *recordingConverter) Convert(data []byte, filename string, opts markdown.Options) (string, error) {
	c.opts = opts
	if c.err != nil {
		return "", c.err
	}
	return "converted " + filename, nil
}

type panicConverter struct{}

func (panicConverter) Convert([]byte, string, markdown.Options) (string, error) {
	panic("boom")
}

func newTestServer(t *testing.T, conv Converter, cfg Config) http.Handler {
	t.Helper()
	return New(conv, cfg, nil).Handler()
}

func uploadRequest(t *testing.T, path, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthAndFormats(t *testing.T) {
	h := newTestServer(t, &recordingConverter{}, Config{Version: "1.2.3"})

	for _, path := range []string{"/health", "/api/health"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
		got := decode[healthResponse](t, rec)
		assert.Equal(t, "healthy", got.Status)
		assert.Equal(t, "1.2.3", got.Version)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/formats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{".docx", ".pdf", ".txt", ".rtf"}, decode[formatsResponse](t, rec).Formats)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestRoot(t *testing.T) {
	h := newTestServer(t, &recordingConverter{}, Config{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[rootResponse](t, rec)
	assert.Equal(t, "/convert", got.Endpoints["convert"])
	assert.Equal(t, "dev", got.Version)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConvert_RealEngine(t *testing.T) {
	h := newTestServer(t, docmark.New(), Config{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/convert", "notes.txt", []byte("Hello\n\nWorld"), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[conversionResponse](t, rec)
	assert.True(t, got.Success)
	assert.Equal(t, "Hello\n\nWorld\n", got.Content)
	assert.Equal(t, "notes.md", got.Filename)
	assert.Empty(t, got.Error)
}

func TestConvert_FormFields(t *testing.T) {
	conv := &recordingConverter{}
	h := newTestServer(t, conv, Config{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/api/convert", "doc.rtf", []byte("x"), map[string]string{
		"preserve_formatting": "false",
		"include_images":      "0",
		"max_image_size":      "200",
		"table_format":        "Pipe",
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.False(t, conv.opts.PreserveFormatting)
	assert.False(t, conv.opts.IncludeImages)
	assert.Equal(t, 200, conv.opts.MaxImageSize)
	assert.Equal(t, markdown.TablePipe, conv.opts.TableFormat)
}

func TestConvert_ConfiguredDefaults(t *testing.T) {
	conv := &recordingConverter{}
	defaults := markdown.DefaultOptions()
	defaults.TableFormat = markdown.TableSimple
	h := newTestServer(t, conv, Config{Defaults: defaults})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/convert", "a.txt", []byte("x"), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, markdown.TableSimple, conv.opts.TableFormat)
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		name     string
		conv     Converter
		filename string
		content  []byte
		fields   map[string]string
		status   int
	}{
		{"missing file", &recordingConverter{}, "", nil, nil, http.StatusBadRequest},
		{"unsupported", &recordingConverter{}, "virus.exe", []byte("MZ"), nil, http.StatusUnsupportedMediaType},
		{"bad bool", &recordingConverter{}, "a.txt", []byte("x"), map[string]string{"include_images": "maybe"}, http.StatusBadRequest},
		{"bad size", &recordingConverter{}, "a.txt", []byte("x"), map[string]string{"max_image_size": "-5"}, http.StatusBadRequest},
		{"bad table", &recordingConverter{}, "a.txt", []byte("x"), map[string]string{"table_format": "html"}, http.StatusBadRequest},
		{"corrupt", docmark.New(), "a.pdf", []byte("not a pdf"), nil, http.StatusUnprocessableEntity},
		{"render", &recordingConverter{err: &docmark.RenderError{Err: errors.New("x")}}, "a.txt", []byte("x"), nil, http.StatusInternalServerError},
		{"encrypted", &recordingConverter{err: model.NewParseError(model.UnsupportedFeature, "PDF", "encrypted", nil)}, "a.pdf", []byte("x"), nil, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, tt.conv, Config{})
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, uploadRequest(t, "/convert", tt.filename, tt.content, tt.fields))

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			got := decode[conversionResponse](t, rec)
			assert.False(t, got.Success)
			assert.NotEmpty(t, got.Error)
			assert.Empty(t, got.Content)
		})
	}
}

func TestConvert_NotMultipart(t *testing.T) {
	h := newTestServer(t, &recordingConverter{}, Config{})
	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(`{"path":"x"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConvert_TooLarge(t *testing.T) {
	h := newTestServer(t, &recordingConverter{}, Config{MaxUploadBytes: 10})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/convert", "a.txt", bytes.Repeat([]byte("a"), 11), nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/convert", "a.txt", bytes.Repeat([]byte("a"), 10), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestConvert_PanicRecovered(t *testing.T) {
	h := newTestServer(t, panicConverter{}, Config{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/convert", "a.txt", []byte("x"), nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode[conversionResponse](t, rec).Error, "boom")
}

func TestRecoveryMiddleware(t *testing.T) {
	s := New(&recordingConverter{}, Config{}, nil)
	h := s.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("handler bug")
	}))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORS(t *testing.T) {
	h := newTestServer(t, &recordingConverter{}, Config{AllowedOrigins: []string{"https://app.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/convert", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServe_Shutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(docmark.New(), Config{MaxConnections: 4}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()

	url := fmt.Sprintf("http://%s/health", ln.Addr())
	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get(url)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "healthy")

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
