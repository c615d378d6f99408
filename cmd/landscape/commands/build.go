package commands

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
)

// BuildCmd runs a single build and exits.
type BuildCmd struct {
	BuildFlags
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := resolveConfig(root, b.BuildFlags)
	if err != nil {
		return err
	}
	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	// Ctrl-C cancels in-flight logo and collector requests.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := svc.Run(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("Landscape website built in %s (%s)\n", cfg.OutputDir, report.Summary())
	if n := len(report.DegradedLogos); n > 0 {
		fmt.Printf("%d item(s) rendered without logo: %s\n", n, strings.Join(report.DegradedLogos, ", "))
	}
	return nil
}
