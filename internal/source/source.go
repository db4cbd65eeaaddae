// Package source opens the CSV locations the bulk loader reads from.
// A location is an http(s) URL, an s3://bucket/key URL, or a local path.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Scheme labels used for metrics and logs.
const (
	SchemeHTTP = "http"
	SchemeS3   = "s3"
	SchemeFile = "file"
)

// ErrNoS3Client is returned for s3:// locations when no S3 client is configured.
var ErrNoS3Client = errors.New("no S3 client configured")

// Opener opens a location for streaming reads. Callers close the reader.
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// Router dispatches a location to the opener for its scheme.
type Router struct {
	HTTP *HTTPOpener
	S3   *S3Opener
	File *FileOpener
}

// NewRouter returns a Router. s3 may be nil when object storage is not configured.
func NewRouter(httpOpener *HTTPOpener, s3 *S3Opener) *Router {
	if httpOpener == nil {
		httpOpener = NewHTTPOpener(nil)
	}
	return &Router{HTTP: httpOpener, S3: s3, File: &FileOpener{}}
}

// Scheme classifies location as http, s3 or file.
func Scheme(location string) string {
	lower := strings.ToLower(location)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return SchemeHTTP
	case strings.HasPrefix(lower, "s3://"):
		return SchemeS3
	default:
		return SchemeFile
	}
}

func (r *Router) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	switch Scheme(location) {
	case SchemeHTTP:
		return r.HTTP.Open(ctx, location)
	case SchemeS3:
		if r.S3 == nil {
			return nil, fmt.Errorf("open %s: %w", location, ErrNoS3Client)
		}
		return r.S3.Open(ctx, location)
	default:
		return r.File.Open(ctx, location)
	}
}
