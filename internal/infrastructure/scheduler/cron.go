package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"NewsDesk/internal/ports"
	"NewsDesk/pkg/logger"
)

var errAlreadyStarted = errors.New("scheduler already started")

// CronScheduler runs named jobs on standard five-field cron expressions.
// A job that is still running when its next tick fires is skipped.
type CronScheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	runCtx  context.Context
	cancel  context.CancelFunc
	started bool
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler evaluating expressions in loc.
func NewCronScheduler(loc *time.Location, log *slog.Logger) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}

	cronLogger := cron.PrintfLogger(logger.Printf(log, "cron", slog.LevelError))
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	return &CronScheduler{
		cron:   c,
		logger: log.With("component", "scheduler"),
		runCtx: context.Background(),
	}
}

// Schedule registers job under name.
func (c *CronScheduler) Schedule(spec, name string, job func(ctx context.Context)) error {
	if job == nil {
		return fmt.Errorf("schedule %s: nil job", name)
	}

	_, err := c.cron.AddFunc(spec, func() {
		ctx := c.jobContext()
		if ctx.Err() != nil {
			return
		}
		started := time.Now()
		c.logger.Debug("job started", "job", name)
		job(ctx)
		c.logger.Debug("job finished", "job", name, "duration", time.Since(started))
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}

	c.logger.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

// Start begins firing jobs. Jobs receive a context cancelled by Stop or by ctx.
func (c *CronScheduler) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return errAlreadyStarted
	}

	c.runCtx, c.cancel = context.WithCancel(ctx)
	c.started = true
	c.cron.Start()
	return nil
}

// Stop cancels running jobs and waits for them to return, bounded by ctx.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = false
	c.cancel()
	c.mu.Unlock()

	done := c.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for running jobs: %w", ctx.Err())
	}
}

func (c *CronScheduler) jobContext() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runCtx
}
