package site

import (
	"context"
	"errors"
	"fmt"
	"time"

	"git.home.luguber.info/inful/blogsmith/internal/content"
	"git.home.luguber.info/inful/blogsmith/internal/metrics"
	"git.home.luguber.info/inful/blogsmith/internal/taxonomy"
)

// StageName is a strongly-typed identifier for a build stage. All canonical
// stages are declared as constants here for compile-time safety.
type StageName string

// Canonical stage names, in execution order.
const (
	StagePrepareOutput   StageName = "prepare_output"
	StageLoadContent     StageName = "load_content"
	StageBuildIndexes    StageName = "build_indexes"
	StageRenderDocuments StageName = "render_documents"
	StageRenderLists     StageName = "render_lists"
	StageRenderFeeds     StageName = "render_feeds"
	StagePostProcess     StageName = "post_process"
)

// Stage is a discrete unit of work in the site build.
type Stage func(ctx context.Context, bs *BuildState) error

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}
func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}
func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// BuildState carries mutable state across stages of one build.
type BuildState struct {
	Assembler *Assembler
	Docs      []content.Document // every loaded document, drafts included
	Visible   []content.Document // production set, home ordering (newest first)
	Index     taxonomy.Index     // derived from Visible
	Report    *BuildReport
	start     time.Time
}

// newBuildState constructs a BuildState.
func newBuildState(a *Assembler, report *BuildReport) *BuildState {
	return &BuildState{
		Assembler: a,
		Report:    report,
		start:     time.Now(),
	}
}

// runStages executes stages in order, recording timing and stopping on the
// first fatal error. Warnings are accumulated and the run continues.
func runStages(ctx context.Context, bs *BuildState, stages []StageDef) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := newCanceledStageError(st.Name, ctx.Err())
			bs.Report.recordStage(st.Name, 0, se, bs.Assembler.recorder)
			return se
		default:
		}

		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)

		var se *StageError
		if err != nil && !errors.As(err, &se) {
			// Wrap unknown errors as fatal by default.
			se = newFatalStageError(st.Name, err)
		}
		bs.Report.recordStage(st.Name, dur, se, bs.Assembler.recorder)

		if se != nil {
			switch se.Kind {
			case StageErrorWarning:
				continue
			default:
				return se
			}
		}
	}
	return nil
}

// stageResultOf maps a stage error (possibly nil) to a metrics result label.
func stageResultOf(se *StageError) metrics.ResultLabel {
	if se == nil {
		return metrics.ResultSuccess
	}
	switch se.Kind {
	case StageErrorWarning:
		return metrics.ResultWarning
	case StageErrorCanceled:
		return metrics.ResultCanceled
	default:
		return metrics.ResultFatal
	}
}
