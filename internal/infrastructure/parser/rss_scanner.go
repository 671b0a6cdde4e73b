package parser

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/scanner"
)

const (
	userAgent          = "NewsDesk/1.0"
	defaultFeedItemCap = 30
)

// RSSScanner reads RSS/Atom feeds and turns their items into candidates.
type RSSScanner struct {
	client *http.Client
	strip  *bluemonday.Policy
	logger *slog.Logger
}

// NewRSSScanner wires an HTTP client; a nil client gets a 20s timeout.
func NewRSSScanner(client *http.Client, logger *slog.Logger) *RSSScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RSSScanner{client: client, strip: bluemonday.StrictPolicy(), logger: logger}
}

// Name identifies the strategy inside the registry.
func (s *RSSScanner) Name() string {
	return "rss"
}

// FetchRecent reads every endpoint of the source. One broken feed fails the source.
func (s *RSSScanner) FetchRecent(ctx context.Context, req scanner.Request) ([]domain.Candidate, error) {
	if len(req.Endpoints) == 0 {
		return nil, fmt.Errorf("no feeds provided for source %s", req.SourceName)
	}

	limit := req.MaxItems
	if limit <= 0 {
		limit = defaultFeedItemCap
	}

	var results []domain.Candidate
	seen := map[string]struct{}{}
	for _, ep := range req.Endpoints {
		feed, err := s.fetchFeed(ctx, ep.URL)
		if err != nil {
			return nil, fmt.Errorf("feed %s: %w", ep.Name, err)
		}

		items := feed.Items
		if len(items) > limit {
			items = items[:limit]
		}
		for _, item := range oldestFirst(items) {
			cand, ok := s.toCandidate(item, req)
			if !ok {
				continue
			}
			if _, dup := seen[cand.ExternalID]; dup {
				continue
			}
			seen[cand.ExternalID] = struct{}{}
			results = append(results, cand)
		}
		s.logger.Debug("feed read", "source", req.SourceName, "feed", ep.Name, "items", len(items))
	}

	return results, nil
}

func (s *RSSScanner) fetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	fp := gofeed.NewParser()
	fp.Client = s.client
	fp.UserAgent = userAgent

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

func (s *RSSScanner) toCandidate(item *gofeed.Item, req scanner.Request) (domain.Candidate, bool) {
	if item == nil {
		return domain.Candidate{}, false
	}

	key := strings.TrimSpace(item.Link)
	if key == "" {
		key = strings.TrimSpace(item.GUID)
	}
	title := strings.TrimSpace(html.UnescapeString(item.Title))
	if key == "" || title == "" {
		return domain.Candidate{}, false
	}

	contentHTML := item.Content
	if strings.TrimSpace(contentHTML) == "" {
		contentHTML = item.Description
	}

	text := title
	if body := s.plainText(item.Description); body != "" {
		text += "\n\n" + body
	} else if body := s.plainText(item.Content); body != "" {
		text += "\n\n" + body
	}

	cand := domain.Candidate{
		ExternalID:    uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String(),
		Surrogate:     true,
		Title:         title,
		RawText:       text,
		SourceURL:     strings.TrimSpace(item.Link),
		RequestedType: req.RequestedType,
		SourceName:    req.SourceName,
		Media: domain.SyndicationMedia{
			Enclosures:  enclosures(item),
			Thumbnail:   thumbnail(item),
			ContentHTML: contentHTML,
		},
	}
	if item.PublishedParsed != nil {
		cand.PublishedAt = item.PublishedParsed.UTC()
	}
	if item.Author != nil && strings.TrimSpace(item.Author.Name) != "" {
		cand.Author = &domain.Author{DisplayName: strings.TrimSpace(item.Author.Name)}
	}
	return cand, true
}

func (s *RSSScanner) plainText(fragment string) string {
	text := html.UnescapeString(s.strip.Sanitize(fragment))
	return strings.Join(strings.Fields(text), " ")
}

func enclosures(item *gofeed.Item) []domain.Enclosure {
	var out []domain.Enclosure
	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		out = append(out, domain.Enclosure{URL: enc.URL, Type: strings.ToLower(enc.Type)})
	}
	return out
}

// thumbnail looks at the item image, then media:thumbnail, then media:content images.
func thumbnail(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}

	mediaExt, ok := item.Extensions["media"]
	if !ok {
		return ""
	}
	for _, thumb := range mediaExt["thumbnail"] {
		if u := thumb.Attrs["url"]; u != "" {
			return u
		}
	}
	for _, content := range mediaExt["content"] {
		if content.Attrs["medium"] == "image" && content.Attrs["url"] != "" {
			return content.Attrs["url"]
		}
	}
	return ""
}

// oldestFirst orders items by publication time so older stories are queued first.
func oldestFirst(items []*gofeed.Item) []*gofeed.Item {
	out := append([]*gofeed.Item(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		return published(out[i]).Before(published(out[j]))
	})
	return out
}

func published(item *gofeed.Item) time.Time {
	if item == nil || item.PublishedParsed == nil {
		return time.Time{}
	}
	return *item.PublishedParsed
}
