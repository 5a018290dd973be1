// Package fetcher provides the shared transports connectors fetch through:
// a rate-limited retrying HTTP fetcher and an FTP lister for archive sources.
package fetcher

import "context"

// RequestOption customizes a single fetch request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	headers map[string]string
}

// WithHeader adds a request header (API keys, accept types).
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}

// Fetcher downloads remote documents.
type Fetcher interface {
	// Get fetches the URL and returns the response body.
	Get(ctx context.Context, url string, opts ...RequestOption) ([]byte, error)
}

// RemoteFile is one entry in an archive directory listing.
type RemoteFile struct {
	Name      string
	SizeBytes int64
	Path      string
}

// ArchiveLister lists files under an archive endpoint.
type ArchiveLister interface {
	// ListDir lists the files under an ftp:// directory URL.
	ListDir(ctx context.Context, dirURL string) ([]RemoteFile, error)
}
