package model

// Phase represents a discrete step in the unified pipeline lifecycle
type Phase string

const (
	// PhaseIdle means no pipeline run is in progress
	PhaseIdle Phase = "Idle"

	// PhaseDownloading means the download stage is producing output
	PhaseDownloading Phase = "Downloading"

	// PhaseDownloadComplete means the merged container has been finalized
	PhaseDownloadComplete Phase = "DownloadComplete"

	// PhaseTranscoding means the transcode stage is producing output
	PhaseTranscoding Phase = "Transcoding"

	// PhaseTranscodingComplete means the run finished successfully
	PhaseTranscodingComplete Phase = "TranscodingComplete"

	// PhaseErrored means an error signal was observed; terminal
	PhaseErrored Phase = "Errored"
)

// phaseOrder assigns each non-error phase its position in the lifecycle.
// Transitions may only move forward through this ordering.
var phaseOrder = map[Phase]int{
	PhaseIdle:                0,
	PhaseDownloading:         1,
	PhaseDownloadComplete:    2,
	PhaseTranscoding:         3,
	PhaseTranscodingComplete: 4,
}

// String returns the string representation of Phase
func (p Phase) String() string {
	return string(p)
}

// IsTerminal returns true if no further phase transitions are possible
func (p Phase) IsTerminal() bool {
	return p == PhaseTranscodingComplete || p == PhaseErrored
}

// CanAdvanceTo reports whether a transition from p to next is legal.
// Errored is reachable from any state; otherwise phases move strictly
// forward and never skip backwards.
func (p Phase) CanAdvanceTo(next Phase) bool {
	if p == PhaseErrored {
		return false
	}
	if next == PhaseErrored {
		return true
	}
	cur, ok := phaseOrder[p]
	if !ok {
		return false
	}
	target, ok := phaseOrder[next]
	if !ok {
		return false
	}
	return target >= cur
}
