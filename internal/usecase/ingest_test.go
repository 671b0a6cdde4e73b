package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestIngestIsIdempotent(t *testing.T) {
	t.Parallel()

	queue := newMemQueue()
	coord := NewCoordinator(CoordinatorDeps{Queue: queue, Posts: &memPosts{}})
	candidates := []domain.Candidate{
		{ExternalID: "T1", RawText: "first"},
		{ExternalID: "T2", RawText: "second"},
	}

	first, err := coord.Ingest(context.Background(), candidates)
	require.NoError(t, err)
	assert.Equal(t, 2, first)

	second, err := coord.Ingest(context.Background(), candidates)
	require.NoError(t, err)
	assert.Zero(t, second)
	assert.Equal(t, 2, queue.len())
}

func TestIngestScenarioQueuesUnderExternalID(t *testing.T) {
	t.Parallel()

	queue := newMemQueue()
	coord := NewCoordinator(CoordinatorDeps{Queue: queue, Posts: &memPosts{}})

	n, err := coord.Ingest(context.Background(), []domain.Candidate{{ExternalID: "T1", RawText: "..."}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	items, err := queue.Oldest(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "T1", items[0].ID)
	assert.Equal(t, domain.DefaultPostType, items[0].RequestedType)
}

func TestIngestSkipsPublishedAndKnownURLs(t *testing.T) {
	t.Parallel()

	posts := &memPosts{posts: []domain.Post{
		{ExternalSourceID: "P1", CanonicalURL: "https://news.example/a", Title: "Old story", PublishedAt: time.Now()},
	}}
	queue := newMemQueue()
	coord := NewCoordinator(CoordinatorDeps{Queue: queue, Posts: posts})

	n, err := coord.Ingest(context.Background(), []domain.Candidate{
		{ExternalID: "P1"},
		{ExternalID: "X1", SourceURL: "https://news.example/a"},
		{ExternalID: "X2", SourceURL: "https://news.example/b"},
		{ExternalID: ""},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, queue.has("X2"))
}

func TestIngestSkipsURLQueuedBeyondPendingScan(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	older := queued("Q1", base)
	older.URL = "https://news.example/first"
	newer := queued("Q2", base.Add(time.Minute))
	newer.URL = "https://news.example/second"
	queue := newMemQueue(older, newer)

	coord := NewCoordinator(CoordinatorDeps{Queue: queue, Posts: &memPosts{}, PendingScanLimit: 1})

	n, err := coord.Ingest(context.Background(), []domain.Candidate{
		{ExternalID: "X9", SourceURL: "https://news.example/second", RawText: "same story, other id"},
	})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.False(t, queue.has("X9"))
}

func TestIngestFuzzyMatchesRecentAndSameBatch(t *testing.T) {
	t.Parallel()

	posts := &memPosts{posts: []domain.Post{
		{ExternalSourceID: "P1", Title: "Heavy rains lash coastal Andhra Pradesh", PublishedAt: time.Now()},
	}}
	queue := newMemQueue()
	coord := NewCoordinator(CoordinatorDeps{Queue: queue, Posts: posts})

	n, err := coord.Ingest(context.Background(), []domain.Candidate{
		{ExternalID: "f1", Surrogate: true, Title: "Heavy rains lash coastal Andhra Pradesh today"},
		{ExternalID: "f2", Surrogate: true, Title: "Metro phase two gets cabinet nod"},
		{ExternalID: "f3", Surrogate: true, Title: "Metro phase two gets cabinet nod!"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, queue.has("f2"))
}

func TestIngestPreservesBatchOrder(t *testing.T) {
	t.Parallel()

	queue := newMemQueue()
	coord := NewCoordinator(CoordinatorDeps{Queue: queue, Posts: &memPosts{}, Now: fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))})

	_, err := coord.Ingest(context.Background(), []domain.Candidate{{ExternalID: "a"}, {ExternalID: "b"}, {ExternalID: "c"}})
	require.NoError(t, err)

	items, err := queue.Oldest(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{items[0].ID, items[1].ID, items[2].ID})
}

func TestIngestStoreFailureIsFatal(t *testing.T) {
	t.Parallel()

	queue := newMemQueue()
	queue.oldestErr = errors.New("connection refused")
	coord := NewCoordinator(CoordinatorDeps{Queue: queue, Posts: &memPosts{}})

	_, err := coord.Ingest(context.Background(), []domain.Candidate{{ExternalID: "T1"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestRunCycleIsolatesSourceFailures(t *testing.T) {
	t.Parallel()

	queue := newMemQueue()
	source := stubSource{results: []ports.SourceResult{
		{Source: "social", Err: errors.New("rate limited")},
		{Source: "feed", Candidates: []domain.Candidate{{ExternalID: "F1"}, {ExternalID: "F2"}}},
	}}
	coord := NewCoordinator(CoordinatorDeps{Source: source, Queue: queue, Posts: &memPosts{}})

	reports, err := coord.RunCycle(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Error(t, reports[0].Err)
	assert.Equal(t, 2, reports[1].Enqueued)
	assert.Equal(t, 2, queue.len())
}
