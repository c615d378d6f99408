package build

import (
	"context"
	stdErrors "errors"
	"time"

	"github.com/bayoss/landscape2/internal/logfields"
	"github.com/bayoss/landscape2/internal/observability"
)

// runStages executes stages in order, recording timing and stopping on the
// first fatal or canceled stage error.
func runStages(ctx context.Context, bs *buildState, stages []StageDef) error {
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			se := NewCanceledStageError(st.Name, err)
			bs.report.recordStage(st.Name, StageResultCanceled, se)
			bs.recorder.IncStageResult(string(st.Name), StageResultCanceled.metricLabel())
			return se
		}

		stageCtx := observability.WithStage(ctx, string(st.Name))
		observability.DebugContext(stageCtx, "Stage started")
		t0 := time.Now()
		err := st.Fn(stageCtx, bs)
		dur := time.Since(t0)

		bs.report.StageDurations[st.Name] = dur
		bs.recorder.ObserveStageDuration(string(st.Name), dur)

		se := classifyStageError(ctx, st.Name, err)
		res := stageResult(se)
		bs.report.recordStage(st.Name, res, se)
		bs.recorder.IncStageResult(string(st.Name), res.metricLabel())
		observability.DebugContext(stageCtx, "Stage finished",
			logfields.DurationMS(float64(dur.Microseconds())/1000))

		if se != nil && se.Kind != StageErrorWarning {
			return se
		}
	}
	return nil
}

func classifyStageError(ctx context.Context, stage StageName, err error) *StageError {
	if err == nil {
		return nil
	}
	var se *StageError
	if stdErrors.As(err, &se) {
		return se
	}
	if ctx.Err() != nil && (stdErrors.Is(err, context.Canceled) || stdErrors.Is(err, context.DeadlineExceeded)) {
		return NewCanceledStageError(stage, err)
	}
	return NewFatalStageError(stage, err)
}

func stageResult(se *StageError) StageResult {
	if se == nil {
		return StageResultSuccess
	}
	switch se.Kind {
	case StageErrorWarning:
		return StageResultWarning
	case StageErrorCanceled:
		return StageResultCanceled
	default:
		return StageResultFatal
	}
}
