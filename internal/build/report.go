package build

import (
	"fmt"
	"time"

	"github.com/bayoss/landscape2/internal/metrics"
)

// Outcome is the final result of a build.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeDegraded Outcome = "degraded" // completed with non-fatal warnings (e.g. missing logos)
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Report captures what a build did.
type Report struct {
	BuildID string    `json:"build_id"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Outcome Outcome   `json:"outcome"`

	Items                   int      `json:"items"`
	LogosPrepared           int      `json:"logos_prepared"`
	DegradedLogos           []string `json:"degraded_logos,omitempty"` // item names, load order
	CrunchbaseOrganizations int      `json:"crunchbase_organizations"`
	GithubRepositories      int      `json:"github_repositories"`
	AssetsCopied            int      `json:"assets_copied"`

	StageDurations map[StageName]time.Duration `json:"stage_durations"`
	StageResults   map[StageName]StageResult   `json:"stage_results"`

	Errors   []error `json:"-"` // fatal or canceled stage errors (at most one)
	Warnings []error `json:"-"` // non-fatal stage errors
}

func newReport(buildID string) *Report {
	return &Report{
		BuildID:        buildID,
		Start:          time.Now(),
		StageDurations: make(map[StageName]time.Duration),
		StageResults:   make(map[StageName]StageResult),
	}
}

// Duration is the wall time of the build.
func (r *Report) Duration() time.Duration { return r.End.Sub(r.Start) }

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("items=%d logos=%d degraded_logos=%d crunchbase=%d github=%d assets=%d duration=%s outcome=%s",
		r.Items, r.LogosPrepared, len(r.DegradedLogos), r.CrunchbaseOrganizations, r.GithubRepositories,
		r.AssetsCopied, r.Duration().Truncate(time.Millisecond), r.Outcome)
}

func (r *Report) recordStage(stage StageName, res StageResult, se *StageError) {
	r.StageResults[stage] = res
	if se == nil {
		return
	}
	if se.Kind == StageErrorWarning {
		r.Warnings = append(r.Warnings, se)
		return
	}
	r.Errors = append(r.Errors, se)
}

func (r *Report) finish() { r.End = time.Now() }

func (r *Report) deriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			if se, ok := e.(*StageError); ok && se.Kind == StageErrorCanceled {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = OutcomeDegraded
		return
	}
	r.Outcome = OutcomeSuccess
}

func (o Outcome) metricLabel() metrics.BuildOutcomeLabel {
	switch o {
	case OutcomeSuccess:
		return metrics.BuildOutcomeSuccess
	case OutcomeDegraded:
		return metrics.BuildOutcomeDegraded
	case OutcomeCanceled:
		return metrics.BuildOutcomeCanceled
	default:
		return metrics.BuildOutcomeFailed
	}
}

func (r StageResult) metricLabel() metrics.ResultLabel {
	switch r {
	case StageResultSuccess:
		return metrics.ResultSuccess
	case StageResultWarning:
		return metrics.ResultWarning
	case StageResultCanceled:
		return metrics.ResultCanceled
	default:
		return metrics.ResultFatal
	}
}
