package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/robfig/cron/v3"
	"github.com/sjperalta/gymflow-api/pkg/logger"
)

// Scheduler fires registered jobs on cron schedules and hands them to the worker pool.
// Scheduled jobs have no caller, so their failures are logged and reported, never returned.
type Scheduler struct {
	cron   *cron.Cron
	worker *Worker
}

// NewScheduler creates a scheduler that executes jobs through the given worker
func NewScheduler(worker *Worker) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Log.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:   c,
		worker: worker,
	}
}

// Register adds a named job on a standard 5-field cron schedule
func (s *Scheduler) Register(name, schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.worker.Enqueue(reported(name, job))
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s job: %w", name, err)
	}
	logger.Info("[Scheduler] Job scheduled", "job", name, "schedule", schedule)
	return nil
}

// Start begins firing scheduled jobs
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler. The returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Entries returns the number of registered jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// reported wraps a job so its failure is logged and sent to Sentry, then swallowed
func reported(name string, job Job) Job {
	return func(ctx context.Context) error {
		if err := job(ctx); err != nil {
			logger.Error("[Scheduler] Scheduled job failed", "job", name, "error", err)
			sentry.CaptureException(fmt.Errorf("scheduled job %s: %w", name, err))
		}
		return nil
	}
}
