package scrape

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"NewsDesk/internal/ports"
)

const (
	userAgent       = "NewsDesk/1.0"
	maxPageBytes    = 4 << 20
	defaultTimeout  = 8 * time.Second
	acceptHTMLValue = "text/html,application/xhtml+xml"
)

// ReadabilityFetcher downloads a page and extracts its main article text.
type ReadabilityFetcher struct {
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

var _ ports.PageFetcher = (*ReadabilityFetcher)(nil)

// NewReadabilityFetcher creates a fetcher. Zero timeout uses the default.
func NewReadabilityFetcher(client *http.Client, timeout time.Duration, logger *slog.Logger) *ReadabilityFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReadabilityFetcher{client: client, timeout: timeout, logger: logger.With("component", "scrape")}
}

// FetchText returns the readable text of pageURL, or "" when it cannot be fetched.
func (f *ReadabilityFetcher) FetchText(ctx context.Context, pageURL string) string {
	text, err := f.fetch(ctx, pageURL)
	if err != nil {
		f.logger.Debug("page context unavailable", "url", pageURL, "error", err)
		return ""
	}
	return text
}

func (f *ReadabilityFetcher) fetch(ctx context.Context, pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", fmt.Errorf("unsupported url %q", pageURL)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHTMLValue)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %s", resp.Status)
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, maxPageBytes), parsed)
	if err != nil {
		return "", fmt.Errorf("extract article: %w", err)
	}

	return strings.TrimSpace(article.TextContent), nil
}
