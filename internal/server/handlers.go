package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tsawler/docmark"
	"github.com/tsawler/docmark/markdown"
)

// formOverhead is the allowance for multipart framing and form fields on
// top of the upload cap.
const formOverhead = 1 << 20

type conversionResponse struct {
	Success  bool   `json:"success"`
	Content  string `json:"content,omitempty"`
	Filename string `json:"filename,omitempty"`
	Error    string `json:"error,omitempty"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type formatsResponse struct {
	Formats []string `json:"formats"`
}

type rootResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{
		Message: "docmark document conversion API",
		Version: s.config.Version,
		Endpoints: map[string]string{
			"health":  "/health",
			"formats": "/formats",
			"convert": "/convert",
		},
	})
}

// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Version: s.config.Version})
}

// GET /formats
func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, formatsResponse{Formats: docmark.SupportedExtensions()})
}

// POST /convert
// Accepts a multipart upload in field "file" plus optional form fields
// preserve_formatting, include_images, max_image_size and table_format.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	limit := s.config.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+formOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeTooLarge(w)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request: expected multipart form with a file field")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	// Sanitise filename to prevent path traversal.
	name := filepath.Base(header.Filename)
	if !docmark.IsSupported(name) {
		err := &docmark.UnsupportedError{Filename: name, Extension: strings.ToLower(filepath.Ext(name))}
		writeError(w, docmark.HTTPStatus(err), err.Error())
		return
	}

	opts, err := s.formOptions(r)
	if err != nil {
		writeError(w, docmark.HTTPStatus(err), err.Error())
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	if int64(len(data)) > limit {
		s.writeTooLarge(w)
		return
	}

	type outcome struct {
		content string
		err     error
	}
	done := make(chan outcome, 1)
	s.workers.Go(func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("converter panicked: %v", p)}
			}
		}()
		content, err := s.converter.Convert(data, name, opts)
		done <- outcome{content, err}
	})

	var res outcome
	select {
	case res = <-done:
	case <-r.Context().Done():
		s.logger.Warn("client went away during conversion", "filename", name)
		return
	}

	if res.err != nil {
		status := docmark.HTTPStatus(res.err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("conversion failed", "filename", name, "error", res.err)
		} else {
			s.logger.Info("conversion rejected", "filename", name, "error", res.err)
		}
		writeError(w, status, res.err.Error())
		return
	}

	writeJSON(w, http.StatusOK, conversionResponse{
		Success:  true,
		Content:  res.content,
		Filename: strings.TrimSuffix(name, filepath.Ext(name)) + ".md",
	})
}

// formOptions overlays request form fields on the configured defaults.
func (s *Server) formOptions(r *http.Request) (markdown.Options, error) {
	opts := s.config.Defaults
	if opts == (markdown.Options{}) {
		opts = markdown.DefaultOptions()
	}

	invalid := func(field, value string) error {
		return &docmark.OptionsError{
			Err: fmt.Errorf("%w: %s: %q", markdown.ErrInvalidOptions, field, value),
		}
	}

	if v := r.FormValue("preserve_formatting"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, invalid("preserve_formatting", v)
		}
		opts.PreserveFormatting = b
	}
	if v := r.FormValue("include_images"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, invalid("include_images", v)
		}
		opts.IncludeImages = b
	}
	if v := r.FormValue("max_image_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, invalid("max_image_size", v)
		}
		opts.MaxImageSize = n
	}
	if v := r.FormValue("table_format"); v != "" {
		tf, err := markdown.ParseTableFormat(v)
		if err != nil {
			return opts, &docmark.OptionsError{Err: err}
		}
		opts.TableFormat = tf
	}

	if err := opts.Validate(); err != nil {
		return opts, &docmark.OptionsError{Err: err}
	}
	return opts, nil
}

func (s *Server) writeTooLarge(w http.ResponseWriter) {
	writeError(w, http.StatusRequestEntityTooLarge,
		fmt.Sprintf("file too large: maximum size is %d bytes", s.config.MaxUploadBytes))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, conversionResponse{Success: false, Error: msg})
}
