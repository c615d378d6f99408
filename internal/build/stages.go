package build

import (
	"context"
	"fmt"
)

// StageName identifies a build stage.
type StageName string

// Stages in execution order.
const (
	StageCheckAssets     StageName = "check_assets"
	StageSetupOutput     StageName = "setup_output"
	StageOpenCache       StageName = "open_cache"
	StageLoad            StageName = "load"
	StageEnrich          StageName = "enrich"
	StagePrepareLogos    StageName = "prepare_logos"
	StageCollectExternal StageName = "collect_external"
	StageGenerate        StageName = "generate"
)

// StageErrorKind says how the orchestrator reacts to a failed stage.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // stop; later stages do not run
	StageErrorWarning  StageErrorKind = "warning"  // recorded; the build goes on
	StageErrorCanceled StageErrorKind = "canceled" // the build context ended
)

// StageError ties a failure to the stage that produced it.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s (%s): %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func NewFatalStageError(stage StageName, err error) *StageError {
	return &StageError{StageErrorFatal, stage, err}
}

func NewWarnStageError(stage StageName, err error) *StageError {
	return &StageError{StageErrorWarning, stage, err}
}

func NewCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{StageErrorCanceled, stage, err}
}

// StageResult captures the outcome of a stage.
type StageResult string

const (
	StageResultSuccess  StageResult = "success"
	StageResultWarning  StageResult = "warning"
	StageResultFatal    StageResult = "fatal"
	StageResultCanceled StageResult = "canceled"
)

// Stage does one step of a build, reading and filling bs.
type Stage func(ctx context.Context, bs *buildState) error

type StageDef struct {
	Name StageName
	Fn   Stage
}

func defaultStages() []StageDef {
	return []StageDef{
		{StageCheckAssets, stageCheckAssets},
		{StageSetupOutput, stageSetupOutput},
		{StageOpenCache, stageOpenCache},
		{StageLoad, stageLoad},
		{StageEnrich, stageEnrich},
		{StagePrepareLogos, stagePrepareLogos},
		{StageCollectExternal, stageCollectExternal},
		{StageGenerate, stageGenerate},
	}
}
