package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"NewsDesk/internal/ports"
)

// ScheduleConfig holds the cron expressions and batch size for recurring jobs.
type ScheduleConfig struct {
	IngestSpec string
	WorkerSpec string
	BatchSize  int
}

// Scheduler wires the cron driver with the ingestion and transformation use cases.
type Scheduler struct {
	driver      ports.Scheduler
	coordinator *Coordinator
	worker      *Worker
	cfg         ScheduleConfig
	logger      *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(driver ports.Scheduler, coordinator *Coordinator, worker *Worker, cfg ScheduleConfig, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, coordinator: coordinator, worker: worker, cfg: cfg, logger: logger}
}

// Start registers both jobs with the driver and starts it.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	if s.coordinator != nil && s.cfg.IngestSpec != "" {
		err := s.driver.Schedule(s.cfg.IngestSpec, "ingest", func(ctx context.Context) {
			if _, err := s.coordinator.RunCycle(ctx); err != nil {
				s.logger.Error("ingestion cycle aborted", "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("schedule ingestion: %w", err)
		}
	}

	if s.worker != nil && s.cfg.WorkerSpec != "" {
		err := s.driver.Schedule(s.cfg.WorkerSpec, "worker", func(ctx context.Context) {
			if _, err := s.worker.ProcessBatch(ctx, s.cfg.BatchSize); err != nil {
				s.logger.Error("worker tick aborted", "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("schedule worker: %w", err)
		}
	}

	return s.driver.Start(ctx)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
