package gd

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

// buildZip packs the given entries into an in-memory zip archive
func buildZip(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range entries {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("failed to create zip entry %s: %v", name, err)
		}
		if _, err := f.Write(data); err != nil {
			t.Fatalf("failed to write zip entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close zip writer: %v", err)
	}
	return buf.Bytes()
}

func TestUnwrapFit_PlainPayload(t *testing.T) {
	payload := []byte{0x0e, 0x10, 0x43, 0x08, '.', 'F', 'I', 'T'}

	got, err := UnwrapFit(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("expected plain payload to pass through unchanged")
	}
}

func TestUnwrapFit_ZipWithFitEntry(t *testing.T) {
	fitData := []byte("fake fit data")
	payload := buildZip(t, map[string][]byte{
		"12345_ACTIVITY.FIT": fitData,
	})

	got, err := UnwrapFit(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, fitData) {
		t.Errorf("expected inner entry bytes, got %q", got)
	}
}

func TestUnwrapFit_ZipWithoutFitEntry(t *testing.T) {
	payload := buildZip(t, map[string][]byte{
		"readme.txt": []byte("nothing to see here"),
	})

	_, err := UnwrapFit(payload)
	if !errors.Is(err, ErrMissingPayload) {
		t.Fatalf("expected ErrMissingPayload, got %v", err)
	}
}

func TestUnwrapFit_CorruptArchive(t *testing.T) {
	// PK signature but not a valid archive
	_, err := UnwrapFit([]byte("PK garbage"))
	if err == nil {
		t.Fatal("expected an error for a corrupt archive")
	}
}
