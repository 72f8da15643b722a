// Package jobs runs periodic maintenance work on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler is a cron scheduler that logs through slog.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

// Info logs routine messages about cron's operation.
func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

// Error logs an error condition.
func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}

// NewScheduler returns a stopped Scheduler.
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "cron")
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cronLogger{logger}), cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger}))),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register schedules job on spec. An empty spec leaves the job disabled and
// reports false.
func (s *Scheduler) Register(spec string, job Job) (bool, error) {
	if spec == "" {
		s.logger.Info("job disabled", "job", job.Name())
		return false, nil
	}
	if _, err := s.cron.AddFunc(spec, func() { s.run(job) }); err != nil {
		return false, fmt.Errorf("jobs: schedule %s: %w", job.Name(), err)
	}
	s.logger.Info("job scheduled", "job", job.Name(), "spec", spec)
	return true, nil
}

func (s *Scheduler) run(job Job) {
	start := time.Now()
	if err := job.Run(s.ctx); err != nil {
		s.logger.Error("job failed", "job", job.Name(), "error", err)
		return
	}
	s.logger.Info("job finished", "job", job.Name(), "duration_ms", time.Since(start).Milliseconds())
}

// Len returns the number of scheduled jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Start starts the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Shutdown stops scheduling, cancels running jobs and waits for them to
// return or for ctx to end.
func (s *Scheduler) Shutdown(ctx context.Context) {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
