package gd

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMissingPayload signals a downloaded archive without a FIT entry inside
var ErrMissingPayload = errors.New("downloaded archive does not contain a FIT payload")

var zipSignature = []byte("PK")

// UnwrapFit extracts the FIT payload from a download response. Depending on
// service version the response is either the FIT file itself or a zip
// archive wrapping it; non-archive payloads pass through unchanged.
func UnwrapFit(payload []byte) ([]byte, error) {
	if !bytes.HasPrefix(payload, zipSignature) {
		return payload, nil
	}

	archive, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return nil, fmt.Errorf("failed to open downloaded archive: %w", err)
	}

	for _, entry := range archive.File {
		if !strings.HasSuffix(strings.ToLower(entry.Name), ".fit") {
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open archive entry %s: %w", entry.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read archive entry %s: %w", entry.Name, err)
		}
		return data, nil
	}

	return nil, ErrMissingPayload
}
