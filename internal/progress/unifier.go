package progress

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/archivepull/archive-pull/internal/model"
)

// Marker lines exchanged between the pipeline stages and the unifier.
// MarkerTranscodeStart is printed by the download stage's exec hook with
// the merged file path appended; MarkerTranscodeDone is fed through the
// unifier once the transcode subprocess exits cleanly.
const (
	MarkerTranscodeStart = "Processing file:"
	MarkerTranscodeDone  = "Transcoding completed successfully"
)

// Substrings identifying the merged-container finalization line
const (
	DestinationPrefix   = "Destination:"
	MergerPrefix        = "[Merger] Merging formats into"
	MergedContainerHint = ".mkv"
)

// Example downloader progress line:
// [download]  42.5% of ~120.00MiB at 3.50MiB/s ETA 00:12
// Captures the percentage and the human-readable speed.
var downloadRe = regexp.MustCompile(`\[download\]\s+(\d{1,3}(?:\.\d+)?)%\s+of\s+~?\s*[\d.]+\S+\s+at\s+([\d.]+\S*B/s)`)

// Example transcoder progress line:
// frame= 1234 fps= 56 q=28.0 size=  10240KiB time=00:01:00.00 bitrate= ...
var timeRe = regexp.MustCompile(`time=(\d+):(\d+):(\d+(?:\.\d+)?)`)

// Error markers matched case-insensitively as substrings
var errorMarkers = []string{"error", "failed"}

// Tracker unifies the line-oriented output of both pipeline stages into a
// single monotonic lifecycle with one percentage and phase label. It is
// the only writer of phase/percent state; callers observe it exclusively
// through the emitted events.
type Tracker struct {
	mu              sync.Mutex
	phase           model.Phase
	percent         float64
	durationSeconds float64
	sawDownload     bool

	onEvent func(model.ProgressEvent)
	onLog   func(string)
}

// NewTracker creates a tracker for one run. durationSeconds is the total
// source duration used to derive transcode percentages; zero means the
// duration is unknown and no transcode percentage will be fabricated.
func NewTracker(durationSeconds float64) *Tracker {
	return &Tracker{
		phase:           model.PhaseIdle,
		durationSeconds: durationSeconds,
	}
}

// SetEventCallback sets the callback invoked for each unified progress event
func (t *Tracker) SetEventCallback(callback func(model.ProgressEvent)) {
	t.onEvent = callback
}

// SetLogCallback sets the callback invoked for every raw line, matched or not
func (t *Tracker) SetLogCallback(callback func(string)) {
	t.onLog = callback
}

// Phase returns the current lifecycle phase
func (t *Tracker) Phase() model.Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

// Percent returns the current phase-scoped percentage
func (t *Tracker) Percent() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.percent
}

// Ingest classifies one fully-buffered output line. Structural rules are
// evaluated in priority order and stop at the first match; error detection
// runs independently of the structural match. Lines matching nothing are
// still forwarded verbatim to the log stream with no state change.
func (t *Tracker) Ingest(line string) {
	if t.onLog != nil {
		t.onLog(line)
	}

	t.mu.Lock()
	event := t.classify(line)

	var errEvent *model.ProgressEvent
	if containsErrorMarker(line) && t.phase.CanAdvanceTo(model.PhaseErrored) {
		t.phase = model.PhaseErrored
		errEvent = &model.ProgressEvent{
			Phase:   model.PhaseErrored,
			Percent: t.percent,
			Message: strings.TrimSpace(line),
			RawLine: line,
		}
	}
	t.mu.Unlock()

	if t.onEvent != nil {
		if event != nil {
			t.onEvent(*event)
		}
		if errEvent != nil {
			t.onEvent(*errEvent)
		}
	}
}

// classify applies the structural rules; caller holds the lock.
func (t *Tracker) classify(line string) *model.ProgressEvent {
	if m := downloadRe.FindStringSubmatch(line); m != nil {
		percent, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil
		}
		t.sawDownload = true
		return t.advance(model.PhaseDownloading, percent, m[2], line)
	}

	// The downloader can print a Destination line before any progress when
	// the source needs no merge; completion waits for the first progress
	// line so an early announcement cannot lock out the download bar.
	if t.sawDownload &&
		(strings.Contains(line, MergerPrefix) ||
			(strings.Contains(line, DestinationPrefix) && strings.Contains(line, MergedContainerHint))) {
		return t.advance(model.PhaseDownloadComplete, 100, "Download complete", line)
	}

	if strings.Contains(line, MarkerTranscodeStart) {
		return t.beginTranscode(line)
	}

	if t.phase == model.PhaseTranscoding {
		if m := timeRe.FindStringSubmatch(line); m != nil {
			if t.durationSeconds <= 0 {
				// Unknown duration: surface the line, fabricate nothing
				return nil
			}
			elapsed := parseElapsedSeconds(m)
			percent := elapsed / t.durationSeconds * 100
			if percent > 100 {
				percent = 100
			}
			return t.advance(model.PhaseTranscoding, percent, "Transcoding", line)
		}
	}

	if strings.Contains(line, MarkerTranscodeDone) {
		return t.advance(model.PhaseTranscodingComplete, 100, "Transcoding complete", line)
	}

	return nil
}

// advance moves to the target phase when the transition is legal and
// clamps percentage regressions within the current phase. Returns the
// event to emit, or nil when the line must not change state.
func (t *Tracker) advance(phase model.Phase, percent float64, message, line string) *model.ProgressEvent {
	if !t.phase.CanAdvanceTo(phase) {
		return nil
	}
	if phase == t.phase && percent < t.percent {
		// Out-of-order subprocess output must never regress the display
		percent = t.percent
	}
	t.phase = phase
	t.percent = percent

	return &model.ProgressEvent{
		Phase:   phase,
		Percent: percent,
		Message: message,
		RawLine: line,
	}
}

// beginTranscode enters the transcode phase with a fresh 0-100 range. The
// two stage ranges are never blended into one combined scale.
func (t *Tracker) beginTranscode(line string) *model.ProgressEvent {
	if !t.phase.CanAdvanceTo(model.PhaseTranscoding) {
		return nil
	}
	if t.phase == model.PhaseTranscoding {
		// Duplicate handoff marker; keep the established range
		return nil
	}
	t.phase = model.PhaseTranscoding
	t.percent = 0

	return &model.ProgressEvent{
		Phase:   model.PhaseTranscoding,
		Percent: 0,
		Message: "Starting transcode",
		RawLine: line,
	}
}

func parseElapsedSeconds(m []string) float64 {
	hours, _ := strconv.ParseFloat(m[1], 64)
	minutes, _ := strconv.ParseFloat(m[2], 64)
	seconds, _ := strconv.ParseFloat(m[3], 64)
	return hours*3600 + minutes*60 + seconds
}

func containsErrorMarker(line string) bool {
	lower := strings.ToLower(line)
	for _, marker := range errorMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
