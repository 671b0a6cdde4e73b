package usecase

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

type memQueue struct {
	mu        sync.Mutex
	items     map[string]domain.QueueItem
	oldestErr error
	deleteErr error
}

func newMemQueue(items ...domain.QueueItem) *memQueue {
	q := &memQueue{items: map[string]domain.QueueItem{}}
	for _, it := range items {
		q.items[it.ID] = it
	}
	return q
}

func (q *memQueue) InsertMany(_ context.Context, items []domain.QueueItem) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	inserted := 0
	for _, it := range items {
		if _, ok := q.items[it.ID]; ok {
			continue
		}
		q.items[it.ID] = it
		inserted++
	}
	return inserted, nil
}

func (q *memQueue) ExistingIDs(_ context.Context, ids []string) (map[string]bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := map[string]bool{}
	for _, id := range ids {
		if _, ok := q.items[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (q *memQueue) ExistingURLs(_ context.Context, urls []string) (map[string]bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := map[string]bool{}
	for _, u := range urls {
		for _, it := range q.items {
			if it.URL != "" && it.URL == u {
				out[u] = true
			}
		}
	}
	return out, nil
}

func (q *memQueue) Oldest(_ context.Context, limit int) ([]domain.QueueItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.oldestErr != nil {
		return nil, q.oldestErr
	}
	out := make([]domain.QueueItem, 0, len(q.items))
	for _, it := range q.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnqueuedAt.Before(out[j].EnqueuedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (q *memQueue) Delete(_ context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.deleteErr != nil {
		return q.deleteErr
	}
	delete(q.items, id)
	return nil
}

func (q *memQueue) has(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.items[id]
	return ok
}

func (q *memQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

type memPosts struct {
	mu        sync.Mutex
	posts     []domain.Post
	insertErr []error
}

func (p *memPosts) Insert(_ context.Context, post domain.Post) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.insertErr) > 0 {
		err := p.insertErr[0]
		p.insertErr = p.insertErr[1:]
		if err != nil {
			return err
		}
	}
	for _, existing := range p.posts {
		if existing.ExternalSourceID == post.ExternalSourceID {
			return domain.ErrDuplicate
		}
	}
	p.posts = append(p.posts, post)
	return nil
}

func (p *memPosts) ExistingSourceIDs(_ context.Context, ids []string) (map[string]bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := map[string]bool{}
	for _, id := range ids {
		for _, post := range p.posts {
			if post.ExternalSourceID == id {
				out[id] = true
			}
		}
	}
	return out, nil
}

func (p *memPosts) ExistingURLs(_ context.Context, urls []string) (map[string]bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := map[string]bool{}
	for _, u := range urls {
		for _, post := range p.posts {
			if post.CanonicalURL != "" && post.CanonicalURL == u {
				out[u] = true
			}
		}
	}
	return out, nil
}

func (p *memPosts) Recent(_ context.Context, window time.Duration) ([]domain.PostRef, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cutoff := time.Now().Add(-window)
	var out []domain.PostRef
	for _, post := range p.posts {
		if post.PublishedAt.After(cutoff) {
			out = append(out, domain.PostRef{
				ExternalSourceID: post.ExternalSourceID,
				CanonicalURL:     post.CanonicalURL,
				Title:            post.Title,
				PublishedAt:      post.PublishedAt,
			})
		}
	}
	return out, nil
}

type memTags struct {
	mu     sync.Mutex
	bySlug map[string]int64
	failOn string
}

func newMemTags() *memTags { return &memTags{bySlug: map[string]int64{}} }

func (m *memTags) Upsert(_ context.Context, tag domain.Tag) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != "" && tag.Slug == m.failOn {
		return 0, errors.New("tag table locked")
	}
	if id, ok := m.bySlug[tag.Slug]; ok {
		return id, nil
	}
	id := int64(len(m.bySlug) + 1)
	m.bySlug[tag.Slug] = id
	return id, nil
}

type scriptedGenerator struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	prompts []string
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	i := len(g.prompts) - 1
	var err error
	if i < len(g.errs) {
		err = g.errs[i]
	}
	reply := ""
	if i < len(g.replies) {
		reply = g.replies[i]
	}
	return reply, err
}

type countingPacer struct{ waits int }

func (p *countingPacer) Wait(context.Context) error {
	p.waits++
	return nil
}

type recordingNotifier struct{ posts []domain.Post }

func (n *recordingNotifier) PublishPost(_ context.Context, post domain.Post) error {
	n.posts = append(n.posts, post)
	return nil
}

type stubSource struct{ results []ports.SourceResult }

func (s stubSource) FetchAll(context.Context) []ports.SourceResult { return s.results }

type stubDownloader struct {
	body string
	err  error
}

func (d stubDownloader) Download(context.Context, string) (io.ReadCloser, error) {
	if d.err != nil {
		return nil, d.err
	}
	return io.NopCloser(strings.NewReader(d.body)), nil
}

type stubAssets struct {
	url  string
	err  error
	keys []string
}

func (a *stubAssets) Upload(_ context.Context, _ []byte, key string) (string, error) {
	a.keys = append(a.keys, key)
	return a.url, a.err
}

type stubPages struct {
	text string
	urls []string
}

func (p *stubPages) FetchText(_ context.Context, url string) string {
	p.urls = append(p.urls, url)
	return p.text
}
