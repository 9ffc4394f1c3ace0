// Package fetcher downloads and parses contact exports from HTTP and FTP
// sources. CRMs hand out exports as CSV or XLSX; the parsers here stream
// rows so large exports never have to fit in memory.
package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the interface for downloading a remote export.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path.
	// Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}
