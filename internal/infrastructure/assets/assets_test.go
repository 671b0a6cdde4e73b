package assets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func TestHTTPStore_UploadReturnsPublicURL(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/bucket/posts/abc.png", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, pngHeader, body)

		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://cdn.example.com/posts/abc.png"})
	}))
	defer server.Close()

	store := NewHTTPStore(server.URL+"/bucket/", "secret", server.Client())
	got, err := store.Upload(context.Background(), pngHeader, "/posts/abc.png")

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/posts/abc.png", got)
}

func TestHTTPStore_UploadErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/denied.png" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	store := NewHTTPStore(server.URL, "", server.Client())

	_, err := store.Upload(context.Background(), pngHeader, "denied.png")
	assert.ErrorContains(t, err, "forbidden")

	_, err = store.Upload(context.Background(), pngHeader, "nourl.png")
	assert.ErrorContains(t, err, "no url")

	_, err = store.Upload(context.Background(), nil, "empty.png")
	assert.Error(t, err)
}

func TestHTTPDownloader(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(pngHeader)
	}))
	defer server.Close()

	downloader := NewHTTPDownloader(server.Client())

	body, err := downloader.Download(context.Background(), server.URL+"/image.png")
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	assert.Equal(t, pngHeader, data)

	_, err = downloader.Download(context.Background(), server.URL+"/missing.jpg")
	assert.ErrorContains(t, err, "404")
}
