package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/scanner"
)

const (
	defaultSocialPageSize = 10
	socialPostURLFormat   = "https://x.com/%s/status/%s"
)

// SocialScanner reads recent posts of configured accounts from the social-post API.
// Endpoint URLs in the request are account ids.
type SocialScanner struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

// NewSocialScanner builds the adapter; a nil client gets a 15s timeout.
func NewSocialScanner(baseURL, token string, client *http.Client, logger *slog.Logger) *SocialScanner {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SocialScanner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		client:  client,
		logger:  logger,
	}
}

// Name identifies the strategy inside the registry.
func (s *SocialScanner) Name() string {
	return "social"
}

type timelineResponse struct {
	Data []struct {
		ID          string `json:"id"`
		Text        string `json:"text"`
		AuthorID    string `json:"author_id"`
		CreatedAt   string `json:"created_at"`
		Attachments struct {
			MediaKeys []string `json:"media_keys"`
		} `json:"attachments"`
	} `json:"data"`
	Includes struct {
		Media []struct {
			MediaKey string `json:"media_key"`
			domain.SocialMediaEntry
		} `json:"media"`
		Users []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Username string `json:"username"`
		} `json:"users"`
	} `json:"includes"`
}

// FetchRecent reads the timeline of every account endpoint.
func (s *SocialScanner) FetchRecent(ctx context.Context, req scanner.Request) ([]domain.Candidate, error) {
	if s.token == "" {
		return nil, fmt.Errorf("social scanner misconfigured: missing bearer token")
	}
	if len(req.Endpoints) == 0 {
		return nil, fmt.Errorf("no accounts provided for source %s", req.SourceName)
	}

	var results []domain.Candidate
	for _, ep := range req.Endpoints {
		timeline, err := s.fetchTimeline(ctx, ep.URL, req.MaxItems)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", ep.Name, err)
		}
		cands := toSocialCandidates(timeline, req)
		s.logger.Debug("timeline read", "source", req.SourceName, "account", ep.Name, "posts", len(cands))
		results = append(results, cands...)
	}
	return results, nil
}

func (s *SocialScanner) fetchTimeline(ctx context.Context, accountID string, maxItems int) (*timelineResponse, error) {
	if maxItems <= 0 {
		maxItems = defaultSocialPageSize
	}
	// the API accepts 5..100
	maxItems = min(max(maxItems, 5), 100)

	query := url.Values{}
	query.Set("max_results", strconv.Itoa(maxItems))
	query.Set("exclude", "retweets,replies")
	query.Set("expansions", "attachments.media_keys,author_id")
	query.Set("tweet.fields", "created_at,attachments")
	query.Set("media.fields", "type,url,preview_image_url,width,height,variants")
	query.Set("user.fields", "name,username")

	endpoint := fmt.Sprintf("%s/2/users/%s/tweets?%s", s.baseURL, url.PathEscape(accountID), query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request timeline: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("social api returned %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var timeline timelineResponse
	if err := json.NewDecoder(resp.Body).Decode(&timeline); err != nil {
		return nil, fmt.Errorf("decode timeline: %w", err)
	}
	return &timeline, nil
}

func toSocialCandidates(timeline *timelineResponse, req scanner.Request) []domain.Candidate {
	media := make(map[string]domain.SocialMediaEntry, len(timeline.Includes.Media))
	for _, m := range timeline.Includes.Media {
		media[m.MediaKey] = m.SocialMediaEntry
	}
	users := make(map[string]domain.Author, len(timeline.Includes.Users))
	for _, u := range timeline.Includes.Users {
		users[u.ID] = domain.Author{DisplayName: u.Name, Handle: u.Username}
	}

	// the API lists newest first
	out := make([]domain.Candidate, 0, len(timeline.Data))
	for i := len(timeline.Data) - 1; i >= 0; i-- {
		post := timeline.Data[i]
		if post.ID == "" {
			continue
		}

		cand := domain.Candidate{
			ExternalID:    post.ID,
			RawText:       post.Text,
			RequestedType: req.RequestedType,
			SourceName:    req.SourceName,
		}

		if author, ok := users[post.AuthorID]; ok {
			a := author
			cand.Author = &a
			if a.Handle != "" {
				cand.SourceURL = fmt.Sprintf(socialPostURLFormat, a.Handle, post.ID)
			}
		}
		if ts, err := time.Parse(time.RFC3339, post.CreatedAt); err == nil {
			cand.PublishedAt = ts.UTC()
		}

		var entries []domain.SocialMediaEntry
		for _, key := range post.Attachments.MediaKeys {
			if entry, ok := media[key]; ok {
				entries = append(entries, entry)
			}
		}
		if len(entries) > 0 {
			cand.Media = domain.SocialMedia{Entries: entries}
		}

		out = append(out, cand)
	}
	return out
}
