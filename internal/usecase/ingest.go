package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsDesk/internal/dedup"
	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

const (
	defaultRecencyHorizon   = 48 * time.Hour
	defaultPendingScanLimit = 1000
)

// CoordinatorDeps wires the ingestion coordinator to its stores and sources.
type CoordinatorDeps struct {
	Source ports.CandidateSource
	Queue  ports.QueueStore
	Posts  ports.PostStore
	Logger *slog.Logger

	// RecencyHorizon bounds which published titles take part in fuzzy matching.
	RecencyHorizon      time.Duration
	SimilarityThreshold float64
	// PendingScanLimit caps how many queued items are loaded into the snapshot.
	PendingScanLimit int
	Now              func() time.Time
}

// Coordinator filters candidates against known posts and pending work and enqueues the rest.
type Coordinator struct {
	source      ports.CandidateSource
	queue       ports.QueueStore
	posts       ports.PostStore
	logger      *slog.Logger
	horizon     time.Duration
	threshold   float64
	pendingScan int
	now         func() time.Time
}

// SourceReport summarizes one source within an ingestion cycle.
type SourceReport struct {
	Source   string
	Fetched  int
	Enqueued int
	Err      error
}

// NewCoordinator constructs the ingestion component.
func NewCoordinator(deps CoordinatorDeps) *Coordinator {
	c := &Coordinator{
		source:      deps.Source,
		queue:       deps.Queue,
		posts:       deps.Posts,
		logger:      deps.Logger,
		horizon:     deps.RecencyHorizon,
		threshold:   deps.SimilarityThreshold,
		pendingScan: deps.PendingScanLimit,
		now:         deps.Now,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.horizon <= 0 {
		c.horizon = defaultRecencyHorizon
	}
	if c.threshold <= 0 {
		c.threshold = dedup.DefaultThreshold
	}
	if c.pendingScan <= 0 {
		c.pendingScan = defaultPendingScanLimit
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// RunCycle fetches every source and ingests each source's candidates. A failing source is
// reported and skipped; only a store failure aborts the cycle.
func (c *Coordinator) RunCycle(ctx context.Context) ([]SourceReport, error) {
	if c.source == nil {
		return nil, nil
	}

	results := c.source.FetchAll(ctx)
	reports := make([]SourceReport, 0, len(results))
	for _, res := range results {
		report := SourceReport{Source: res.Source, Fetched: len(res.Candidates), Err: res.Err}
		if res.Err != nil {
			c.logger.Warn("source fetch failed", "source", res.Source, "error", res.Err)
			reports = append(reports, report)
			continue
		}

		enqueued, err := c.Ingest(ctx, res.Candidates)
		if err != nil {
			return reports, fmt.Errorf("ingest %s: %w", res.Source, err)
		}
		report.Enqueued = enqueued
		c.logger.Info("source ingested", "source", res.Source, "fetched", report.Fetched, "enqueued", enqueued)
		reports = append(reports, report)
	}
	return reports, nil
}

// Ingest enqueues the candidates that are not duplicates and returns how many were stored.
// Items rejected by the queue's uniqueness constraint are counted as skipped.
func (c *Coordinator) Ingest(ctx context.Context, candidates []domain.Candidate) (int, error) {
	candidates = withIDs(candidates)
	if len(candidates) == 0 {
		return 0, nil
	}

	snapshot, err := c.buildSnapshot(ctx, candidates)
	if err != nil {
		return 0, err
	}

	now := c.now().UTC()
	items := make([]domain.QueueItem, 0, len(candidates))
	for _, cand := range candidates {
		if snapshot.IsDuplicate(cand) {
			c.logger.Debug("duplicate candidate skipped", "external_id", cand.ExternalID, "source", cand.SourceName)
			continue
		}
		snapshot.Remember(cand)
		// keep the source order inside one batch
		items = append(items, cand.ToQueueItem(now.Add(time.Duration(len(items))*time.Microsecond)))
	}

	if len(items) == 0 {
		return 0, nil
	}

	inserted, err := c.queue.InsertMany(ctx, items)
	if err != nil {
		return 0, fmt.Errorf("%w: enqueue candidates: %w", domain.ErrStoreUnavailable, err)
	}
	if skipped := len(items) - inserted; skipped > 0 {
		c.logger.Debug("queue rejected duplicates", "skipped", skipped)
	}
	return inserted, nil
}

// buildSnapshot issues one batch query per concern for the whole candidate set.
func (c *Coordinator) buildSnapshot(ctx context.Context, candidates []domain.Candidate) (*dedup.Snapshot, error) {
	ids := make([]string, 0, len(candidates))
	urls := make([]string, 0, len(candidates))
	fuzzy := false
	for _, cand := range candidates {
		ids = append(ids, cand.ExternalID)
		if cand.SourceURL != "" {
			urls = append(urls, cand.SourceURL)
		}
		fuzzy = fuzzy || cand.Surrogate
	}

	snapshot := dedup.NewSnapshot(c.threshold)

	published, err := c.posts.ExistingSourceIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: load published ids: %w", domain.ErrStoreUnavailable, err)
	}
	snapshot.AddIDs(keys(published)...)

	queued, err := c.queue.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: load queued ids: %w", domain.ErrStoreUnavailable, err)
	}
	snapshot.AddIDs(keys(queued)...)

	if len(urls) > 0 {
		known, err := c.posts.ExistingURLs(ctx, urls)
		if err != nil {
			return nil, fmt.Errorf("%w: load published urls: %w", domain.ErrStoreUnavailable, err)
		}
		snapshot.AddURLs(keys(known)...)

		queuedURLs, err := c.queue.ExistingURLs(ctx, urls)
		if err != nil {
			return nil, fmt.Errorf("%w: load queued urls: %w", domain.ErrStoreUnavailable, err)
		}
		snapshot.AddURLs(keys(queuedURLs)...)
	}

	pending, err := c.queue.Oldest(ctx, c.pendingScan)
	if err != nil {
		return nil, fmt.Errorf("%w: load pending queue: %w", domain.ErrStoreUnavailable, err)
	}
	snapshot.AddQueued(pending)

	if fuzzy {
		recent, err := c.posts.Recent(ctx, c.horizon)
		if err != nil {
			return nil, fmt.Errorf("%w: load recent posts: %w", domain.ErrStoreUnavailable, err)
		}
		snapshot.AddPosts(recent)
	}

	return snapshot, nil
}

func withIDs(candidates []domain.Candidate) []domain.Candidate {
	out := candidates[:0:0]
	for _, c := range candidates {
		if c.ExternalID != "" {
			out = append(out, c)
		}
	}
	return out
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k, ok := range m {
		if ok {
			out = append(out, k)
		}
	}
	return out
}
