package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPOpener fetches a location with a GET request. Non-2xx responses fail.
type HTTPOpener struct {
	client *http.Client
}

// NewHTTPOpener returns an opener using client, or a client without an overall
// timeout so large bodies can stream under the caller's context deadline.
func NewHTTPOpener(client *http.Client) *HTTPOpener {
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: 30 * time.Second,
				IdleConnTimeout:       90 * time.Second,
			},
		}
	}
	return &HTTPOpener{client: client}
}

func (o *HTTPOpener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain, */*")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", location, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %d", location, resp.StatusCode)
	}
	return resp.Body, nil
}
