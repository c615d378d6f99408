package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/bayoss/landscape2/internal/foundation/errors"
)

// DebouncerConfig tunes how rebuild requests are coalesced.
type DebouncerConfig struct {
	// QuietWindow is how long requests must stop before a build is triggered.
	QuietWindow time.Duration
	// MaxDelay caps how long a continuous stream of requests can postpone a build.
	MaxDelay time.Duration

	// CheckBuildRunning reports whether a build is currently running. While it
	// is, the debouncer holds the trigger and emits exactly one follow-up
	// once the build finished.
	CheckBuildRunning func() bool
	PollInterval      time.Duration
}

// Trigger describes a coalesced burst of requests.
type Trigger struct {
	Requests     int
	LastReason   string
	FirstRequest time.Time
	LastRequest  time.Time
	Cause        string // quiet, max_delay or after_run
}

// Debouncer coalesces bursts of rebuild requests into single triggers.
type Debouncer struct {
	cfg      DebouncerConfig
	requests chan string
	out      chan Trigger

	readyOnce sync.Once
	ready     chan struct{}

	mu              sync.Mutex
	pending         bool
	pendingAfterRun bool
	first           time.Time
	last            time.Time
	lastReason      string
	count           int
}

// NewDebouncer validates cfg and creates a Debouncer.
func NewDebouncer(cfg DebouncerConfig) (*Debouncer, error) {
	if cfg.QuietWindow <= 0 {
		return nil, errors.ValidationError("quiet window must be > 0").Build()
	}
	if cfg.MaxDelay <= 0 {
		return nil, errors.ValidationError("max delay must be > 0").Build()
	}
	if cfg.CheckBuildRunning == nil {
		cfg.CheckBuildRunning = func() bool { return false }
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 250 * time.Millisecond
	}
	return &Debouncer{
		cfg:      cfg,
		requests: make(chan string, 64),
		out:      make(chan Trigger, 1),
		ready:    make(chan struct{}),
	}, nil
}

// Request asks for a rebuild. It never blocks: when the request buffer is
// full a trigger is already pending and the request is folded into it.
func (d *Debouncer) Request(reason string) {
	select {
	case d.requests <- reason:
	default:
	}
}

// C delivers triggers.
func (d *Debouncer) C() <-chan Trigger { return d.out }

// Ready is closed once Run is consuming requests.
func (d *Debouncer) Ready() <-chan struct{} { return d.ready }

// Run processes requests until ctx is done.
func (d *Debouncer) Run(ctx context.Context) {
	d.readyOnce.Do(func() { close(d.ready) })

	quietTimer := newStoppedTimer()
	maxTimer := newStoppedTimer()
	pollTimer := newStoppedTimer()
	defer quietTimer.Stop()
	defer maxTimer.Stop()
	defer pollTimer.Stop()

	var quietC, maxC, pollC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case reason := <-d.requests:
			if d.onRequest(reason) {
				resetTimer(maxTimer, d.cfg.MaxDelay)
				maxC = maxTimer.C
			}
			resetTimer(quietTimer, d.cfg.QuietWindow)
			quietC = quietTimer.C
		case <-quietC:
			if d.tryEmit(ctx, "quiet") {
				quietC, maxC = nil, nil
			}
		case <-maxC:
			if d.tryEmit(ctx, "max_delay") {
				quietC, maxC = nil, nil
			}
		case <-pollC:
			pollC = nil
			if !d.tryEmit(ctx, "after_run") {
				resetTimer(pollTimer, d.cfg.PollInterval)
				pollC = pollTimer.C
				continue
			}
			quietC, maxC = nil, nil
		}

		if pollC == nil && d.waitingForRun() {
			resetTimer(pollTimer, d.cfg.PollInterval)
			pollC = pollTimer.C
		}
	}
}

// onRequest records a request and reports whether it opened a new burst.
func (d *Debouncer) onRequest(reason string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := time.Now()
	opened := !d.pending
	if opened {
		d.pending = true
		d.first = now
		d.count = 0
	}
	d.last = now
	d.lastReason = reason
	d.count++
	return opened
}

func (d *Debouncer) waitingForRun() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pendingAfterRun
}

// tryEmit sends the pending trigger unless a build is running, in which case
// it marks the trigger for a follow-up and returns false.
func (d *Debouncer) tryEmit(ctx context.Context, cause string) bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return true
	}
	if d.cfg.CheckBuildRunning() {
		d.pendingAfterRun = true
		d.mu.Unlock()
		return false
	}
	t := Trigger{
		Requests:     d.count,
		LastReason:   d.lastReason,
		FirstRequest: d.first,
		LastRequest:  d.last,
		Cause:        cause,
	}
	d.pending = false
	d.pendingAfterRun = false
	d.mu.Unlock()

	select {
	case d.out <- t:
	case <-ctx.Done():
	}
	return true
}

func newStoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	t.Stop()
	return t
}

func resetTimer(t *time.Timer, after time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(after)
}
