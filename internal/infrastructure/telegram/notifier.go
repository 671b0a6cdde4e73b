package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

const (
	defaultAPIBase  = "https://api.telegram.org"
	maxMessageRunes = 4096
)

var errMisconfigured = errors.New("telegram notifier misconfigured")

// Notifier announces published posts to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  defaultAPIBase,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// WithAPIBase points the notifier at a different Bot API host.
func (n *Notifier) WithAPIBase(base string, client *http.Client) *Notifier {
	n.apiBase = strings.TrimRight(base, "/")
	if client != nil {
		n.client = client
	}
	return n
}

// PublishPost sends an HTML announcement for post.
func (n *Notifier) PublishPost(ctx context.Context, post domain.Post) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return errMisconfigured
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", FormatPost(post))
	form.Set("parse_mode", "HTML")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

// FormatPost renders the announcement text: bold title, summary, tag line and source link.
func FormatPost(post domain.Post) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>", html.EscapeString(post.Title))

	if summary := strings.TrimSpace(post.Summary); summary != "" {
		b.WriteString("\n\n")
		b.WriteString(html.EscapeString(summary))
	}

	if len(post.Categories) > 0 {
		b.WriteString("\n\n#")
		b.WriteString(strings.ReplaceAll(domain.Slugify(post.Categories[0]), "-", "_"))
	}

	if post.CanonicalURL != "" {
		fmt.Fprintf(&b, "\n\n<a href=\"%s\">%s</a>", html.EscapeString(post.CanonicalURL), sourceLabel(post))
	}

	return truncateRunes(b.String(), maxMessageRunes)
}

func sourceLabel(post domain.Post) string {
	if post.SourceName != "" {
		return html.EscapeString(post.SourceName)
	}
	return "Source"
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
