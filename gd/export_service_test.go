package gd

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
)

func TestDestinationPath(t *testing.T) {
	activity := Activity{ID: id(42), Name: "Morning Run!"}

	got := DestinationPath("/out", activity)

	want := filepath.Join("/out", "42_morning-run.fit")
	if got != want {
		t.Errorf("DestinationPath = %q, want %q", got, want)
	}
}

func TestDestinationPath_MissingIDAndName(t *testing.T) {
	got := DestinationPath("/out", Activity{})

	want := filepath.Join("/out", "unknown_activity-unknown.fit")
	if got != want {
		t.Errorf("DestinationPath = %q, want %q", got, want)
	}
}

func TestExportActivity_HappyPath(t *testing.T) {
	// Arrange
	downloader := &MockDownloader{Payloads: map[int64][]byte{
		1: []byte("fake fit data"),
	}}
	fs := NewMockFileSystem()
	service := NewExportService(downloader, fs, &MockLogger{})

	activity := Activity{ID: id(1), Name: "Morning Run", Category: "running"}

	// Act
	result := service.ExportActivity(activity, "/out", false)

	// Assert
	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}
	if !result.Written {
		t.Error("expected the activity to be written")
	}
	wantPath := filepath.Join("/out", "1_morning-run.fit")
	if result.FilePath != wantPath {
		t.Errorf("expected path %s, got %s", wantPath, result.FilePath)
	}
	if string(fs.Files[wantPath]) != "fake fit data" {
		t.Error("expected fit data to be written")
	}
}

func TestExportActivity_UnwrapsZipPayload(t *testing.T) {
	fitData := []byte("inner fit bytes")
	downloader := &MockDownloader{Payloads: map[int64][]byte{
		1: buildZip(t, map[string][]byte{"1.fit": fitData}),
	}}
	fs := NewMockFileSystem()
	service := NewExportService(downloader, fs, &MockLogger{})

	result := service.ExportActivity(Activity{ID: id(1), Name: "Run"}, "/out", false)

	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}
	if !bytes.Equal(fs.Files[result.FilePath], fitData) {
		t.Error("expected the unwrapped inner bytes to be written, not the archive")
	}
}

func TestExportActivity_MalformedContainer(t *testing.T) {
	downloader := &MockDownloader{Payloads: map[int64][]byte{
		1: buildZip(t, map[string][]byte{"notes.txt": []byte("no fit here")}),
	}}
	fs := NewMockFileSystem()
	service := NewExportService(downloader, fs, &MockLogger{})

	result := service.ExportActivity(Activity{ID: id(1), Name: "Run"}, "/out", false)

	if !errors.Is(result.Error, ErrMissingPayload) {
		t.Fatalf("expected ErrMissingPayload, got %v", result.Error)
	}
	if len(fs.WriteCalls) != 0 {
		t.Error("expected no file writes for a malformed container")
	}
}

func TestExportActivity_SkipExisting(t *testing.T) {
	downloader := &MockDownloader{}
	fs := NewMockFileSystem()
	fs.Files[filepath.Join("/out", "1_morning-run.fit")] = []byte("old data")
	service := NewExportService(downloader, fs, &MockLogger{})

	result := service.ExportActivity(Activity{ID: id(1), Name: "Morning Run"}, "/out", true)

	if !result.Skipped {
		t.Error("expected the activity to be skipped")
	}
	if result.Written {
		t.Error("skipped activity must not count as written")
	}
	if len(downloader.Calls) != 0 {
		t.Error("expected no download for an existing file")
	}
}

func TestExportActivity_MissingIdentifier(t *testing.T) {
	downloader := &MockDownloader{}
	fs := NewMockFileSystem()
	logger := &MockLogger{}
	service := NewExportService(downloader, fs, logger)

	raw, _ := json.Marshal(map[string]any{"activityName": "Mystery Session"})
	result := service.ExportActivity(Activity{Name: "Mystery Session", Raw: raw}, "/out", false)

	if !result.MissingID {
		t.Error("expected a missing-ID result")
	}
	if result.Written || result.Error != nil {
		t.Errorf("missing ID is recoverable, got written=%v err=%v", result.Written, result.Error)
	}
	if len(downloader.Calls) != 0 {
		t.Error("expected no download without an identifier")
	}
	if len(logger.WarnCalls) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(logger.WarnCalls))
	}
}

func TestExportActivities_SkipExistingEndToEnd(t *testing.T) {
	// Arrange: two activities, identifier-1's file pre-existing
	downloader := &MockDownloader{Payloads: map[int64][]byte{
		1: []byte("fit one"),
		2: []byte("fit two"),
	}}
	fs := NewMockFileSystem()
	fs.Files[filepath.Join("/out", "1_morning-run.fit")] = []byte("from a prior run")
	service := NewExportService(downloader, fs, &MockLogger{})

	activities := []Activity{
		{ID: id(1), Name: "Morning Run", Category: "running"},
		{ID: id(2), Name: "Evening Ride", Category: "cycling"},
	}

	// Act
	summary, err := service.ExportActivities(activities, "/out", true, false)

	// Assert: exactly one file written, reported count 1
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Written != 1 {
		t.Errorf("expected 1 written, got %d", summary.Written)
	}
	if summary.Skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", summary.Skipped)
	}
	if len(fs.WriteCalls) != 1 {
		t.Fatalf("expected 1 write call, got %d", len(fs.WriteCalls))
	}
	wantPath := filepath.Join("/out", "2_evening-ride.fit")
	if fs.WriteCalls[0].Path != wantPath {
		t.Errorf("expected %s written, got %s", wantPath, fs.WriteCalls[0].Path)
	}
}

func TestExportActivities_AbortsOnDownloadError(t *testing.T) {
	downloadErr := errors.New("unexpected status code: 500")
	downloader := &MockDownloader{Err: downloadErr}
	fs := NewMockFileSystem()
	service := NewExportService(downloader, fs, &MockLogger{})

	activities := []Activity{
		{ID: id(1), Name: "a"},
		{ID: id(2), Name: "b"},
	}

	summary, err := service.ExportActivities(activities, "/out", false, false)

	if !errors.Is(err, downloadErr) {
		t.Fatalf("expected the download error to abort the run, got %v", err)
	}
	if len(downloader.Calls) != 1 {
		t.Errorf("expected the run to stop after the first failure, got %d calls", len(downloader.Calls))
	}
	if summary == nil || summary.Errors != 1 {
		t.Errorf("expected the partial summary to record 1 error")
	}
}

func TestExportActivities_ContinueOnError(t *testing.T) {
	downloader := &MockDownloader{Payloads: map[int64][]byte{
		2: []byte("fit two"),
		// id 1 missing: the mock answers with a 404-style error
	}}
	fs := NewMockFileSystem()
	service := NewExportService(downloader, fs, &MockLogger{})

	activities := []Activity{
		{ID: id(1), Name: "a"},
		{ID: id(2), Name: "b"},
	}

	summary, err := service.ExportActivities(activities, "/out", false, true)

	if err != nil {
		t.Fatalf("expected continue-on-error to swallow per-item failures, got %v", err)
	}
	if summary.Errors != 1 || summary.Written != 1 {
		t.Errorf("expected 1 error and 1 written, got %d and %d", summary.Errors, summary.Written)
	}
}

func TestExportActivities_CreatesOutputDirectory(t *testing.T) {
	downloader := &MockDownloader{Payloads: map[int64][]byte{1: []byte("fit")}}
	fs := NewMockFileSystem()
	service := NewExportService(downloader, fs, &MockLogger{})

	if _, err := service.ExportActivities([]Activity{{ID: id(1), Name: "a"}}, "/out/nested", false, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fs.MkdirCalls) != 1 || fs.MkdirCalls[0] != "/out/nested" {
		t.Errorf("expected MkdirAll(/out/nested), got %v", fs.MkdirCalls)
	}
}

func TestExportActivities_CountsMissingIdentifiers(t *testing.T) {
	downloader := &MockDownloader{Payloads: map[int64][]byte{1: []byte("fit")}}
	fs := NewMockFileSystem()
	service := NewExportService(downloader, fs, &MockLogger{})

	activities := []Activity{
		{ID: id(1), Name: "a"},
		{Name: "no id here"},
		{Name: "none here either"},
	}

	summary, err := service.ExportActivities(activities, "/out", false, false)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.MissingID != 2 {
		t.Errorf("expected 2 missing-ID records counted, got %d", summary.MissingID)
	}
	if summary.Written != 1 || summary.Skipped != 0 || summary.Errors != 0 {
		t.Errorf("unexpected summary counters: %+v", summary)
	}
}

func TestExportActivities_ReportsResults(t *testing.T) {
	downloader := &MockDownloader{Payloads: map[int64][]byte{1: []byte("fit")}}
	fs := NewMockFileSystem()
	service := NewExportService(downloader, fs, &MockLogger{})

	var seen []ExportResult
	service.OnResult = func(activity Activity, result ExportResult) {
		seen = append(seen, result)
	}

	if _, err := service.ExportActivities([]Activity{{ID: id(1), Name: "a"}}, "/out", false, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(seen) != 1 || !seen[0].Written {
		t.Errorf("expected one written result reported, got %+v", seen)
	}
}
