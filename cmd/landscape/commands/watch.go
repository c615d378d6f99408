package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/bayoss/landscape2/internal/daemon"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	BuildFlags
	Quiet    time.Duration `name:"quiet" help:"Wait for changes to settle this long before rebuilding" default:"500ms"`
	MaxDelay time.Duration `name:"max-delay" help:"Rebuild at the latest this long after the first change" default:"5s"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := resolveConfig(root, w.BuildFlags)
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
	watcher, err := daemon.NewWatcher(runner, cfg, daemon.DebouncerConfig{
		QuietWindow: w.Quiet,
		MaxDelay:    w.MaxDelay,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return watcher.Run(ctx)
}
