package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// BuildOutcomeLabel enumerates final build outcomes.
type BuildOutcomeLabel string

const (
	BuildOutcomeSuccess  BuildOutcomeLabel = "success"
	BuildOutcomeDegraded BuildOutcomeLabel = "degraded"
	BuildOutcomeFailed   BuildOutcomeLabel = "failed"
	BuildOutcomeCanceled BuildOutcomeLabel = "canceled"
)

// Recorder defines observability hooks for build, stage, logo and collector metrics.
// Implementations must be safe for concurrent use: logo results are recorded from
// concurrently running tasks.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	IncLogoResult(success bool)
	SetLogoConcurrency(n int)
	ObserveCollectorDuration(collector string, d time.Duration, success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)           {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)                   {}
func (NoopRecorder) IncStageResult(string, ResultLabel)                   {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)                    {}
func (NoopRecorder) IncLogoResult(bool)                                   {}
func (NoopRecorder) SetLogoConcurrency(int)                               {}
func (NoopRecorder) ObserveCollectorDuration(string, time.Duration, bool) {}
