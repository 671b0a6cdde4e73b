package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"NewsDesk/internal/ports"
)

const (
	userAgent        = "NewsDesk/1.0"
	maxErrorBodySize = 4 << 10
)

// HTTPStore uploads files to an object store that accepts PUT requests and
// answers with the public URL of the stored object.
type HTTPStore struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

var _ ports.AssetStore = (*HTTPStore)(nil)

// NewHTTPStore builds a store rooted at uploadURL.
func NewHTTPStore(uploadURL, apiKey string, client *http.Client) *HTTPStore {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPStore{client: client, baseURL: strings.TrimRight(uploadURL, "/"), apiKey: apiKey}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload stores data under suggestedKey and returns its public URL.
func (s *HTTPStore) Upload(ctx context.Context, data []byte, suggestedKey string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("upload: empty payload")
	}
	key := strings.TrimLeft(suggestedKey, "/")
	if key == "" {
		return "", errors.New("upload: empty key")
	}

	target := s.baseURL + "/" + (&url.URL{Path: key}).EscapedPath()
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", http.DetectContentType(data))
	req.Header.Set("User-Agent", userAgent)
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return "", fmt.Errorf("asset store status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var payload uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if payload.URL == "" {
		return "", errors.New("asset store returned no url")
	}
	return payload.URL, nil
}
