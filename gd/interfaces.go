package gd

// Session interface abstracts the Garmin client for testing. Download
// support is negotiated separately, see NegotiateDownloader.
type Session interface {
	Login() error
	ActivityLister
}

// ActivityLister is the paged activity listing operation. An empty JSON
// array signals exhaustion.
type ActivityLister interface {
	ListActivities(start, limit int) ([]byte, error)
}

// BlobDownloader is the single download capability the export core depends
// on, regardless of which call shape the session actually exposes.
type BlobDownloader interface {
	DownloadActivity(id int64) ([]byte, error)
}

// FileSystem interface abstracts file operations for testing
type FileSystem interface {
	WriteFile(path string, data []byte, perm int) error
	Exists(path string) bool
	MkdirAll(path string, perm int) error
}

// Logger interface abstracts logging for testing
type Logger interface {
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// ExportResult represents the result of exporting a single activity
type ExportResult struct {
	ActivityID string
	FilePath   string
	Written    bool
	Skipped    bool // true if file already existed
	MissingID  bool // true if the activity had no identifier
	Error      error
}

// ExportSummary represents the overall export results
type ExportSummary struct {
	Written   int
	Skipped   int
	MissingID int
	Errors    int
	Results   []ExportResult
}
