package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/archivepull/archive-pull/internal/meta"
	"github.com/archivepull/archive-pull/internal/model"
	"github.com/archivepull/archive-pull/internal/plan"
	"github.com/archivepull/archive-pull/internal/platform"
	"github.com/archivepull/archive-pull/internal/policy"
	"github.com/archivepull/archive-pull/internal/progress"
)

// Temp config file naming
const (
	ConfigFilePrefix = "archivepull-"
	ConfigFileSuffix = "-*.conf"
	RunIDPrefix      = "run-"
)

// Terminal run messages
const (
	MsgRunComplete   = "Download and processing complete!"
	MsgAlreadyActive = "a pipeline run is already active"
)

// Sidecar file permissions
const sidecarPermissions = 0644

// Service owns the two-stage pipeline: it sequences download and
// transcode, supervises both subprocesses, and resolves every invocation
// to a terminal RunResult. At most one run is active at a time.
type Service struct {
	bins       platform.Binaries
	capability policy.Capability

	mu      sync.Mutex
	active  bool
	current *model.PipelineRun
	cancel  context.CancelFunc

	onProgress func(model.ProgressEvent) // callback for UI updates
	onLog      func(string)              // raw log line stream
}

// NewService creates a pipeline service bound to the discovered binaries
// and the startup capability probe.
func NewService(bins platform.Binaries, capability policy.Capability) *Service {
	return &Service{
		bins:       bins,
		capability: capability,
	}
}

// SetProgressCallback sets the callback for unified progress events
func (s *Service) SetProgressCallback(callback func(model.ProgressEvent)) {
	s.onProgress = callback
}

// SetLogCallback sets the callback for raw subprocess log lines
func (s *Service) SetLogCallback(callback func(string)) {
	s.onLog = callback
}

// CurrentRun returns the active or most recent run record, if any
func (s *Service) CurrentRun() (*model.PipelineRun, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.current != nil
}

// Cancel aborts the active run, if any. The running subprocess is killed
// and the run resolves as a Failure with a cancellation message.
func (s *Service) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Run executes one full pipeline invocation and blocks until it resolves.
// A second invocation while one is active is rejected, never interleaved.
// The caller always receives a terminal RunResult value.
func (s *Service) Run(ctx context.Context, req model.PipelineRequest) model.RunResult {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return model.RunResult{Message: MsgAlreadyActive}
	}
	ctx, cancel := context.WithCancel(ctx)
	run := &model.PipelineRun{
		ID:        newRunID(),
		Request:   req,
		State:     model.RunStateActive,
		StartedAt: time.Now(),
	}
	s.active = true
	s.current = run
	s.cancel = cancel
	s.mu.Unlock()

	defer cancel()

	result := s.execute(ctx, run, req)

	s.mu.Lock()
	run.Result = result
	run.FinishedAt = time.Now()
	if result.Success {
		run.State = model.RunStateCompleted
	} else {
		run.State = model.RunStateFailed
	}
	s.active = false
	s.cancel = nil
	s.mu.Unlock()

	return result
}

// execute drives the staged protocol for one run. Every early return is a
// terminal failure; nothing propagates past this boundary as an error.
func (s *Service) execute(ctx context.Context, run *model.PipelineRun, req model.PipelineRequest) model.RunResult {
	req.MetadataFields = model.NormalizeMetadataFields(req.MetadataFields)

	descriptor, err := s.GetVideoInfo(ctx, req.URL)
	if err != nil {
		return model.RunResult{Message: err.Error()}
	}
	s.mu.Lock()
	run.Descriptor = descriptor
	s.mu.Unlock()

	isHDR := descriptor.IsHDR || req.HDROverride

	paths := plan.DeriveWorkingPaths(req.DestinationDir, descriptor, req.Container)
	if err := platform.CreateDirectoryIfNotExists(paths.OutputDir); err != nil {
		return model.RunResult{Message: fmt.Sprintf("cannot create output folder: %v", err)}
	}

	tracker := progress.NewTracker(descriptor.DurationSeconds)
	tracker.SetEventCallback(s.emitProgress)
	tracker.SetLogCallback(s.emitLog)

	configPath, err := writeTempConfig(run.ID, req, paths.OutputDir)
	if err != nil {
		return model.RunResult{Message: fmt.Sprintf("cannot write downloader config: %v", err)}
	}
	downloadPlan := plan.BuildDownloadPlan(req, paths.OutputDir, configPath)

	// Capture the exec hook's handoff marker so the merged path reflects
	// any filename adjustments made by the downloader.
	var mergedPath string
	outcome := runStage(ctx, s.bins.YtDLP, downloadPlan.Args, tracker, func(line string) {
		if idx := strings.Index(line, progress.MarkerTranscodeStart); idx >= 0 {
			mergedPath = strings.TrimSpace(line[idx+len(progress.MarkerTranscodeStart):])
		}
	})

	// The temp config comes off disk on every exit path, success or not
	if err := os.Remove(configPath); err != nil {
		log.Printf("failed to remove temp config %s: %v", configPath, err)
	}

	if !outcome.Success {
		return model.RunResult{Message: "download stage " + outcome.Message}
	}

	if mergedPath != "" && mergedPath != paths.MergedMediaPath {
		paths.MergedMediaPath = mergedPath
		paths.InfoJSONPath = plan.SwapExtension(mergedPath, plan.InfoJSONSuffix)
		paths.FinalOutputPath = plan.SwapExtension(mergedPath, req.Container)
	}

	// If the hook never fired, announce the handoff from the derived path
	if tracker.Phase() != model.PhaseTranscoding {
		tracker.Ingest(progress.MarkerTranscodeStart + " " + paths.MergedMediaPath)
	}

	tags := s.projectMetadata(req, paths)

	// Resolved exactly once, before the transcode stage starts
	encoding := policy.Resolve(req.Codec, s.capability, isHDR, req.Bitrates)
	args := plan.BuildTranscodeArgs(encoding, tags, paths.MergedMediaPath, paths.FinalOutputPath)

	outcome = runStage(ctx, s.bins.FFmpeg, args, tracker, nil)
	if !outcome.Success {
		return model.RunResult{Message: "transcode stage " + outcome.Message}
	}

	tracker.Ingest(progress.MarkerTranscodeDone)
	s.cleanupIntermediates(paths)

	return model.RunResult{Success: true, Message: MsgRunComplete}
}

// projectMetadata loads the raw sidecar and projects it to embeddable
// tags, writing the human-readable sidecar next to the output. Metadata
// problems are soft: the run continues without tags.
func (s *Service) projectMetadata(req model.PipelineRequest, paths model.WorkingPaths) []meta.Tag {
	raw, err := meta.Load(paths.InfoJSONPath)
	if err != nil {
		log.Printf("metadata load for %s: %v", paths.InfoJSONPath, err)
		s.emitLog("metadata sidecar unreadable, continuing without embedded tags")
		return nil
	}

	projection := meta.Project(raw, req.MetadataFields)
	if err := os.WriteFile(paths.SidecarPath, []byte(projection.Sidecar), sidecarPermissions); err != nil {
		log.Printf("sidecar write for %s: %v", paths.SidecarPath, err)
		s.emitLog("could not write metadata sidecar, continuing")
	}
	return projection.Tags
}

// cleanupIntermediates removes the merged container and its raw metadata
// sidecar after a successful transcode.
func (s *Service) cleanupIntermediates(paths model.WorkingPaths) {
	for _, path := range []string{paths.MergedMediaPath, paths.InfoJSONPath} {
		if err := os.Remove(path); err != nil {
			log.Printf("cleanup of %s: %v", path, err)
		}
	}
}

func (s *Service) emitProgress(event model.ProgressEvent) {
	if s.onProgress != nil {
		s.onProgress(event)
	}
}

func (s *Service) emitLog(line string) {
	if s.onLog != nil {
		s.onLog(line)
	}
}

// writeTempConfig materializes the download-stage configuration file for
// one run and returns its path.
func writeTempConfig(runID string, req model.PipelineRequest, outputDir string) (string, error) {
	file, err := os.CreateTemp("", ConfigFilePrefix+runID+ConfigFileSuffix)
	if err != nil {
		return "", err
	}
	defer file.Close()

	content := plan.BuildDownloadPlan(req, outputDir, file.Name()).ConfigContent
	if _, err := file.WriteString(content); err != nil {
		os.Remove(file.Name())
		return "", err
	}
	return file.Name(), nil
}

// newRunID generates a unique run ID using UUID v7 for better uniqueness
// and time ordering.
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to timestamp if UUID generation fails
		return fmt.Sprintf(RunIDPrefix+"%d", time.Now().UnixNano())
	}
	return RunIDPrefix + id.String()
}
