package ports

import (
	"context"
	"io"
	"time"

	"NewsDesk/internal/domain"
)

// CandidateSource pulls fresh candidates from every configured upstream.
type CandidateSource interface {
	FetchAll(ctx context.Context) []SourceResult
}

// SourceResult is the outcome of one source adapter call. Err is isolated to its source.
type SourceResult struct {
	Source     string
	Candidates []domain.Candidate
	Err        error
}

// QueueStore persists pending work in enqueue order.
type QueueStore interface {
	// InsertMany stores items, silently skipping ids that already exist, and
	// returns how many rows were actually inserted.
	InsertMany(ctx context.Context, items []domain.QueueItem) (int, error)
	// ExistingIDs returns which of ids are currently queued.
	ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error)
	// ExistingURLs returns which of urls belong to a queued item.
	ExistingURLs(ctx context.Context, urls []string) (map[string]bool, error)
	// Oldest returns up to limit items ordered by enqueue time, oldest first.
	Oldest(ctx context.Context, limit int) ([]domain.QueueItem, error)
	Delete(ctx context.Context, id string) error
}

// PostStore persists finished posts.
type PostStore interface {
	// Insert returns domain.ErrDuplicate when a unique column collides.
	Insert(ctx context.Context, post domain.Post) error
	// ExistingSourceIDs returns which external ids already produced a post.
	ExistingSourceIDs(ctx context.Context, ids []string) (map[string]bool, error)
	// ExistingURLs returns which canonical URLs already belong to a post.
	ExistingURLs(ctx context.Context, urls []string) (map[string]bool, error)
	// Recent returns posts published within the window ending now.
	Recent(ctx context.Context, window time.Duration) ([]domain.PostRef, error)
}

// TagStore maps slugs to stable tag ids.
type TagStore interface {
	// Upsert returns the id of the tag with tag.Slug, creating it when absent.
	Upsert(ctx context.Context, tag domain.Tag) (int64, error)
}

// Generator is the text-generation collaborator. It returns the raw model output.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AssetStore keeps binary assets and returns their public URL.
type AssetStore interface {
	Upload(ctx context.Context, data []byte, suggestedKey string) (string, error)
}

// Downloader fetches remote binary payloads such as images.
type Downloader interface {
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// PageFetcher extracts readable text from a page. It returns "" on any failure.
type PageFetcher interface {
	FetchText(ctx context.Context, url string) string
}

// Pacer gates outbound calls: at most one in flight with a minimum spacing.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Notifier announces published posts to Telegram or other channels.
type Notifier interface {
	PublishPost(ctx context.Context, post domain.Post) error
}

// Scheduler controls when jobs execute.
type Scheduler interface {
	Schedule(spec, name string, job func(ctx context.Context)) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
