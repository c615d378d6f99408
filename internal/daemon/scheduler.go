package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-co-op/gocron/v2"

	"github.com/bayoss/landscape2/internal/foundation/errors"
	"github.com/bayoss/landscape2/internal/logfields"
	"github.com/bayoss/landscape2/internal/observability"
)

// Scheduler rebuilds the landscape on a cron schedule. A run that comes due
// while the previous build is still going is rescheduled, never stacked.
type Scheduler struct {
	scheduler gocron.Scheduler
	runner    *Runner
	expr      string
	job       gocron.Job
}

// NewScheduler creates a scheduler for the cron expression expr. Six-field
// expressions carry a leading seconds field.
func NewScheduler(runner *Runner, expr string) (*Scheduler, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, errors.ConfigError("schedule: cron expression is required").Build()
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, runner: runner, expr: expr}, nil
}

// Start registers the build job and starts the scheduler. Builds run with ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	withSeconds := len(strings.Fields(s.expr)) == 6
	job, err := s.scheduler.NewJob(
		gocron.CronJob(s.expr, withSeconds),
		gocron.NewTask(func() { s.executeBuild(ctx) }),
		gocron.WithName("landscape-build"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.scheduler.Shutdown()
		return errors.ConfigError(fmt.Sprintf("invalid cron expression %q", s.expr)).
			WithCause(err).
			Build()
	}
	s.job = job
	s.scheduler.Start()
	if next, err := job.NextRun(); err == nil {
		observability.InfoContext(ctx, "Scheduler started", logfields.Event(s.expr),
			slog.Time("next_run", next))
	}
	return nil
}

// Run starts the scheduler and blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Stop()
}

// Stop shuts the scheduler down, waiting for a running build to return.
func (s *Scheduler) Stop() error {
	observability.InfoContext(context.Background(), "Stopping scheduler")
	return s.scheduler.Shutdown()
}

func (s *Scheduler) executeBuild(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	_, _ = s.runner.Build(ctx, "schedule")
}
