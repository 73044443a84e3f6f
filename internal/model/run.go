package model

import (
	"fmt"
	"time"
)

// ProgressEvent is one update on the unified progress stream. Percent is
// scoped to the current phase; the two stage ranges are never blended.
type ProgressEvent struct {
	Phase   Phase
	Percent float64 // 0..100
	Message string  // short human-friendly status, e.g. download speed
	RawLine string  // the subprocess line that produced this event
}

// WorkingPaths holds the file locations derived for one run after the
// download stage completes. Recreated per run, never mutated.
type WorkingPaths struct {
	OutputDir       string // per-run destination subfolder
	MergedMediaPath string // intermediate merged container (.mkv)
	InfoJSONPath    string // raw metadata sidecar written by the downloader
	SidecarPath     string // human-readable metadata.txt
	FinalOutputPath string // transcoded output in the requested container
}

// StageOutcome is the terminal result of one subprocess stage.
type StageOutcome struct {
	Success  bool
	ExitCode int
	Message  string
}

// StageSuccess returns the outcome for a stage that exited with code 0.
func StageSuccess() StageOutcome {
	return StageOutcome{Success: true}
}

// StageExitFailure returns the outcome for a stage that ran but exited
// with a non-zero code.
func StageExitFailure(exitCode int) StageOutcome {
	return StageOutcome{
		ExitCode: exitCode,
		Message:  fmt.Sprintf("exited with code %d", exitCode),
	}
}

// StageSpawnFailure returns the outcome for a stage whose executable could
// not be launched at all. Reported distinctly from a non-zero exit.
func StageSpawnFailure(err error) StageOutcome {
	return StageOutcome{
		ExitCode: -1,
		Message:  fmt.Sprintf("failed to start: %v", err),
	}
}

// StageCancelled returns the outcome for a stage terminated by user
// cancellation.
func StageCancelled() StageOutcome {
	return StageOutcome{ExitCode: -1, Message: "cancelled by user"}
}

// RunResult is the terminal outcome of a whole pipeline run. The
// orchestrator always resolves to one of these; nothing throws past it.
type RunResult struct {
	Success bool
	Message string
}

// RunState describes the lifecycle of a pipeline run record
type RunState string

const (
	// RunStateActive means the run is in progress
	RunStateActive RunState = "Active"

	// RunStateCompleted means the run finished successfully
	RunStateCompleted RunState = "Completed"

	// RunStateFailed means the run resolved to a failure outcome
	RunStateFailed RunState = "Failed"
)

// PipelineRun records one invocation of the pipeline for display purposes.
type PipelineRun struct {
	ID         string
	Request    PipelineRequest
	Descriptor *VideoDescriptor
	State      RunState
	Result     RunResult
	StartedAt  time.Time
	FinishedAt time.Time
}

// Elapsed returns the wall-clock duration of the run so far, or its final
// duration once finished.
func (r *PipelineRun) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
