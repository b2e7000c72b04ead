//go:build !ocr

package ocr

import (
	"errors"
	"testing"
)

func TestStub_New(t *testing.T) {
	client, err := New("eng")
	if !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("New() error = %v, want ErrOCRNotEnabled", err)
	}
	if client != nil {
		t.Error("expected nil client")
	}
	if Enabled {
		t.Error("Enabled should be false without the ocr tag")
	}
}

func TestStub_NilClient(t *testing.T) {
	var client *Client
	if err := client.Close(); err != nil {
		t.Errorf("Close() on nil client = %v", err)
	}
	if _, err := client.RecognizeImage([]byte{1}); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("RecognizeImage() error = %v, want ErrOCRNotEnabled", err)
	}
}
