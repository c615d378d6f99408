package daemon

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/bayoss/landscape2/internal/build"
	"github.com/bayoss/landscape2/internal/config"
	"github.com/bayoss/landscape2/internal/foundation/errors"
	"github.com/bayoss/landscape2/internal/logfields"
	"github.com/bayoss/landscape2/internal/observability"
)

// Runner runs builds of one configuration, one at a time.
type Runner struct {
	svc build.Service
	cfg *config.BuildConfig

	mu      sync.Mutex
	running atomic.Bool
	builds  atomic.Int64
	last    atomic.Pointer[build.Report]
}

// NewRunner creates a Runner.
func NewRunner(svc build.Service, cfg *config.BuildConfig) (*Runner, error) {
	if svc == nil {
		return nil, errors.ValidationError("build service is required").Build()
	}
	if cfg == nil {
		return nil, errors.ValidationError("build config is required").Build()
	}
	return &Runner{svc: svc, cfg: cfg}, nil
}

// Build runs a build and waits for it. Concurrent callers are serialized.
// Build failures are logged and returned; the daemon keeps running.
func (r *Runner) Build(ctx context.Context, reason string) (*build.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running.Store(true)
	defer r.running.Store(false)

	observability.InfoContext(ctx, "Starting build", logfields.Event(reason))
	report, err := r.svc.Run(ctx, r.cfg)
	r.builds.Add(1)
	if report != nil {
		r.last.Store(report)
	}
	if err != nil {
		observability.ErrorContext(ctx, "Build failed", logfields.Event(reason), logfields.Error(err))
	}
	return report, err
}

// Running reports whether a build is in progress.
func (r *Runner) Running() bool { return r.running.Load() }

// Builds is the number of builds run so far.
func (r *Runner) Builds() int64 { return r.builds.Load() }

// LastReport returns the report of the most recent build, if any.
func (r *Runner) LastReport() *build.Report { return r.last.Load() }
