package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/bayoss/landscape2/internal/daemon"
)

// ScheduleCmd implements the 'schedule' command.
type ScheduleCmd struct {
	BuildFlags
	Cron      string `name:"cron" help:"Cron expression (5 fields, or 6 with leading seconds)" required:""`
	Immediate bool   `name:"now" help:"Also build once at startup"`
}

func (s *ScheduleCmd) Run(_ *Global, root *CLI) error {
	cfg, err := resolveConfig(root, s.BuildFlags)
	if err != nil {
		return err
	}
	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	runner, err := daemon.NewRunner(svc, cfg)
	if err != nil {
		return err
	}
	sched, err := daemon.NewScheduler(runner, s.Cron)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if s.Immediate {
		_, _ = runner.Build(ctx, "startup")
	}
	return sched.Run(ctx)
}
