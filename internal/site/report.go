package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/blogsmith/internal/metrics"
)

// BuildOutcome classifies a finished build.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// BuildReport captures metrics and issues for one build. The report is the
// single artifact allowed to vary between otherwise identical builds (build
// id and wall-clock timestamps); rendered pages stay byte-identical.
type BuildReport struct {
	BuildID        string                      `json:"build_id"`
	Start          time.Time                   `json:"start"`
	End            time.Time                   `json:"end"`
	Outcome        BuildOutcome                `json:"outcome"`
	Documents      int                         `json:"documents"`
	DraftsExcluded int                         `json:"drafts_excluded"`
	FutureExcluded int                         `json:"future_excluded"`
	PagesRendered  int                         `json:"pages_rendered"`
	FeedsWritten   int                         `json:"feeds_written"`
	StageDurations map[StageName]time.Duration `json:"stage_durations"`
	Warnings       []string                    `json:"warnings,omitempty"`
	Errors         []string                    `json:"errors,omitempty"`
}

// ReportFilename is the persisted report artifact inside the output tree.
const ReportFilename = "build-report.json"

func newBuildReport() *BuildReport {
	return &BuildReport{
		BuildID:        uuid.NewString(),
		Start:          time.Now(),
		StageDurations: make(map[StageName]time.Duration),
	}
}

// recordStage stores stage timing and classification, forwarding to the metrics recorder.
func (r *BuildReport) recordStage(stage StageName, dur time.Duration, se *StageError, recorder metrics.Recorder) {
	r.StageDurations[stage] = dur
	if recorder != nil {
		recorder.ObserveStageDuration(string(stage), dur)
		recorder.IncStageResult(string(stage), stageResultOf(se))
	}
	if se == nil {
		return
	}
	if se.Kind == StageErrorWarning {
		// Warning stages record their detail through AddWarning; the
		// aggregate StageError only classifies the stage for metrics.
		return
	}
	r.Errors = append(r.Errors, se.Error())
}

// AddWarning records a non-fatal issue that is not tied to a stage failure.
func (r *BuildReport) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// finish stamps the end time and derives the final outcome.
func (r *BuildReport) finish() {
	r.End = time.Now()
	switch {
	case len(r.Errors) > 0:
		r.Outcome = OutcomeFailed
	case len(r.Warnings) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

// Persist writes the report as JSON into the given directory (best effort,
// callers log rather than fail on error).
func (r *BuildReport) Persist(dir string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal build report: %w", err)
	}
	path := filepath.Join(dir, ReportFilename)
	// #nosec G306 -- build reports are public diagnostics
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write build report: %w", err)
	}
	return nil
}
