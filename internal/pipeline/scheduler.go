package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/rainfall-features/internal/domain"
	"github.com/couchcryptid/rainfall-features/internal/report"
	"github.com/robfig/cron/v3"
)

// Runner runs one preparation batch.
type Runner interface {
	Run(ctx context.Context) (report.Summary, error)
}

// Scheduler re-runs a full batch on a cron schedule. Each run reprocesses the
// whole input; nothing is carried over between runs.
type Scheduler struct {
	schedule cron.Schedule
	spec     string
	runner   Runner
	logger   *slog.Logger
}

// NewScheduler parses a standard five-field cron expression (descriptors such
// as @daily are accepted) and binds it to runner.
func NewScheduler(spec string, runner Runner, logger *slog.Logger) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	return &Scheduler{schedule: schedule, spec: spec, runner: runner, logger: logger}, nil
}

// Start runs scheduled batches until ctx is cancelled, then waits for an
// in-flight run to finish. Overlapping ticks are skipped.
func (s *Scheduler) Start(ctx context.Context) {
	cl := cronLogger{logger: s.logger}
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cl),
		cron.Recover(cl),
	))
	c.Schedule(s.schedule, cron.FuncJob(func() { s.runOnce(ctx) }))

	c.Start()
	s.logger.Info("scheduler started", "schedule", s.spec, "next", s.schedule.Next(domain.Now()))
	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.runner.Run(ctx); err != nil {
		s.logger.Error("scheduled run failed", "error", err)
	}
}

// cronLogger adapts slog to the cron package's logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
