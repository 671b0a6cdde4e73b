package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"NewsDesk/internal/domain"
)

func TestNotifier_PublishPost(t *testing.T) {
	t.Parallel()

	var gotPath, gotChat, gotText, gotMode string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotPath = r.URL.Path
		gotChat = r.PostForm.Get("chat_id")
		gotText = r.PostForm.Get("text")
		gotMode = r.PostForm.Get("parse_mode")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	n := NewNotifier("TOKEN", "-100").WithAPIBase(server.URL, server.Client())
	err := n.PublishPost(context.Background(), domain.Post{
		Title:        "Rates <rise>",
		Summary:      "Central bank acts.",
		CanonicalURL: "https://example.com/a?x=1&y=2",
		SourceName:   "Example",
	})
	if err != nil {
		t.Fatalf("PublishPost() error = %v", err)
	}

	if gotPath != "/botTOKEN/sendMessage" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotChat != "-100" || gotMode != "HTML" {
		t.Fatalf("unexpected chat %q or mode %q", gotChat, gotMode)
	}
	if !strings.Contains(gotText, "<b>Rates &lt;rise&gt;</b>") {
		t.Fatalf("title not escaped: %q", gotText)
	}
	if !strings.Contains(gotText, `href="https://example.com/a?x=1&amp;y=2"`) {
		t.Fatalf("link missing: %q", gotText)
	}
}

func TestNotifier_Errors(t *testing.T) {
	t.Parallel()

	if err := NewNotifier("", "").PublishPost(context.Background(), domain.Post{}); err == nil {
		t.Fatal("expected misconfiguration error")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad", http.StatusBadRequest)
	}))
	defer server.Close()

	n := NewNotifier("TOKEN", "1").WithAPIBase(server.URL, server.Client())
	if err := n.PublishPost(context.Background(), domain.Post{Title: "x"}); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestFormatPost(t *testing.T) {
	t.Parallel()

	text := FormatPost(domain.Post{Title: "Hello", Categories: []string{"World News"}})
	if text != "<b>Hello</b>\n\n#world_news" {
		t.Fatalf("unexpected text %q", text)
	}

	long := FormatPost(domain.Post{Title: strings.Repeat("a", 5000)})
	if got := len([]rune(long)); got != maxMessageRunes {
		t.Fatalf("expected truncation to %d runes, got %d", maxMessageRunes, got)
	}
}
