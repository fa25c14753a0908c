package gd

import (
	"encoding/json"
	"fmt"
	"testing"
)

// MockSession implements Session for testing
type MockSession struct {
	Pages       [][]byte // successive ListActivities responses, then empty pages
	ListError   error
	LoginError  error
	LoginCalled bool
	ListCalls   []ListCall
	pageIndex   int
}

type ListCall struct {
	Start int
	Limit int
}

func (m *MockSession) Login() error {
	m.LoginCalled = true
	return m.LoginError
}

func (m *MockSession) ListActivities(start, limit int) ([]byte, error) {
	m.ListCalls = append(m.ListCalls, ListCall{Start: start, Limit: limit})
	if m.ListError != nil {
		return nil, m.ListError
	}
	if m.pageIndex >= len(m.Pages) {
		return []byte("[]"), nil
	}
	page := m.Pages[m.pageIndex]
	m.pageIndex++
	return page, nil
}

// MockDownloader implements BlobDownloader for testing
type MockDownloader struct {
	Payloads map[int64][]byte
	Err      error
	Calls    []int64
}

func (m *MockDownloader) DownloadActivity(id int64) ([]byte, error) {
	m.Calls = append(m.Calls, id)
	if m.Err != nil {
		return nil, m.Err
	}
	payload, ok := m.Payloads[id]
	if !ok {
		return nil, fmt.Errorf("unexpected status code: 404")
	}
	return payload, nil
}

// MockFileSystem implements FileSystem for testing
type MockFileSystem struct {
	Files      map[string][]byte
	WriteError error
	MkdirError error
	WriteCalls []WriteCall
	MkdirCalls []string
}

type WriteCall struct {
	Path string
	Data []byte
	Perm int
}

func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		Files: make(map[string][]byte),
	}
}

func (m *MockFileSystem) WriteFile(path string, data []byte, perm int) error {
	m.WriteCalls = append(m.WriteCalls, WriteCall{Path: path, Data: data, Perm: perm})
	if m.WriteError != nil {
		return m.WriteError
	}
	m.Files[path] = data
	return nil
}

func (m *MockFileSystem) Exists(path string) bool {
	_, exists := m.Files[path]
	return exists
}

func (m *MockFileSystem) MkdirAll(path string, perm int) error {
	m.MkdirCalls = append(m.MkdirCalls, path)
	return m.MkdirError
}

// MockLogger implements Logger for testing
type MockLogger struct {
	InfoCalls  []LogCall
	DebugCalls []LogCall
	WarnCalls  []LogCall
}

type LogCall struct {
	Message string
	Args    []any
}

func (m *MockLogger) Info(msg string, args ...any) {
	m.InfoCalls = append(m.InfoCalls, LogCall{Message: msg, Args: args})
}

func (m *MockLogger) Debug(msg string, args ...any) {
	m.DebugCalls = append(m.DebugCalls, LogCall{Message: msg, Args: args})
}

func (m *MockLogger) Warn(msg string, args ...any) {
	m.WarnCalls = append(m.WarnCalls, LogCall{Message: msg, Args: args})
}

// makeActivityPage builds one JSON page of count activities with sequential
// IDs starting at firstID, all sharing the given type key
func makeActivityPage(t *testing.T, firstID int64, count int, typeKey string) []byte {
	t.Helper()

	records := make([]map[string]any, count)
	for i := range records {
		records[i] = map[string]any{
			"activityId":   firstID + int64(i),
			"activityName": fmt.Sprintf("Activity %d", firstID+int64(i)),
			"activityType": map[string]any{"typeKey": typeKey},
		}
	}

	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("failed to marshal test page: %v", err)
	}
	return data
}

// id is a convenience for building Activity literals
func id(v int64) *int64 {
	return &v
}
