package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"NewsDesk/internal/ports"
)

// HTTPDownloader fetches remote media over HTTP.
type HTTPDownloader struct {
	client *http.Client
}

var _ ports.Downloader = (*HTTPDownloader)(nil)

// NewHTTPDownloader wraps client. Nil uses http.DefaultClient.
func NewHTTPDownloader(client *http.Client) *HTTPDownloader {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPDownloader{client: client}
}

// Download returns the response body of a successful GET. The caller closes it.
func (d *HTTPDownloader) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("download %s: unexpected status %s", rawURL, resp.Status)
	}
	return resp.Body, nil
}
