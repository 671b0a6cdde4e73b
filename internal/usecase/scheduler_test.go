package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsDesk/internal/domain"
)

type manualDriver struct {
	jobs    map[string]func(context.Context)
	specs   map[string]string
	started bool
	stopped bool
}

func (d *manualDriver) Schedule(spec, name string, job func(context.Context)) error {
	if d.jobs == nil {
		d.jobs = map[string]func(context.Context){}
		d.specs = map[string]string{}
	}
	d.jobs[name] = job
	d.specs[name] = spec
	return nil
}

func (d *manualDriver) Start(context.Context) error { d.started = true; return nil }
func (d *manualDriver) Stop(context.Context) error  { d.stopped = true; return nil }

func TestSchedulerRunsBothJobs(t *testing.T) {
	t.Parallel()

	queue := newMemQueue()
	posts := &memPosts{}
	source := stubSource{results: nil}
	coord := NewCoordinator(CoordinatorDeps{Source: source, Queue: queue, Posts: posts})
	worker, _ := newTestWorker(queue, posts, &scriptedGenerator{replies: []string{okReply}})

	driver := &manualDriver{}
	s := NewScheduler(driver, coord, worker, ScheduleConfig{IngestSpec: "*/10 * * * *", WorkerSpec: "* * * * *", BatchSize: 3}, nil)
	require.NoError(t, s.Start(context.Background()))
	assert.True(t, driver.started)
	assert.Equal(t, "*/10 * * * *", driver.specs["ingest"])

	_, err := queue.InsertMany(context.Background(), []domain.QueueItem{queued("J1", time.Now())})
	require.NoError(t, err)

	driver.jobs["ingest"](context.Background())
	driver.jobs["worker"](context.Background())
	assert.Len(t, posts.posts, 1)

	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, driver.stopped)
}
