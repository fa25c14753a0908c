package gd

import "errors"

// DownloadFormat selects the file format on generic download methods
type DownloadFormat string

// FormatFIT is the only format the exporter requests
const FormatFIT DownloadFormat = "fit"

// DownloadOptions is the options-struct call shape some client versions use
type DownloadOptions struct {
	Format DownloadFormat
}

// ErrNoDownloadSupport means the session satisfies none of the known
// download call shapes. This is a pre-flight failure: nothing has been
// fetched or written when it surfaces.
var ErrNoDownloadSupport = errors.New("session does not support activity downloads")

// downloadFunc adapts a plain function to the BlobDownloader interface
type downloadFunc func(id int64) ([]byte, error)

func (f downloadFunc) DownloadActivity(id int64) ([]byte, error) {
	return f(id)
}

// NegotiateDownloader resolves the download capability of a session. Client
// versions disagree on the method shape, so the known conventions are tried
// in order: a dedicated FIT method, a generic method taking the format
// positionally, and a generic method taking an options struct. The export
// core only ever sees the resulting BlobDownloader.
func NegotiateDownloader(session any) (BlobDownloader, error) {
	if d, ok := session.(interface {
		DownloadActivityFit(id int64) ([]byte, error)
	}); ok {
		return downloadFunc(d.DownloadActivityFit), nil
	}

	if d, ok := session.(interface {
		DownloadActivity(id int64, format DownloadFormat) ([]byte, error)
	}); ok {
		return downloadFunc(func(id int64) ([]byte, error) {
			return d.DownloadActivity(id, FormatFIT)
		}), nil
	}

	if d, ok := session.(interface {
		DownloadActivityWithOptions(id int64, opts DownloadOptions) ([]byte, error)
	}); ok {
		return downloadFunc(func(id int64) ([]byte, error) {
			return d.DownloadActivityWithOptions(id, DownloadOptions{Format: FormatFIT})
		}), nil
	}

	return nil, ErrNoDownloadSupport
}
