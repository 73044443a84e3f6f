package plan

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/archivepull/archive-pull/internal/meta"
	"github.com/archivepull/archive-pull/internal/model"
	"github.com/archivepull/archive-pull/internal/policy"
	"github.com/archivepull/archive-pull/internal/progress"
)

// Intermediate container produced by the download stage
const (
	MergedContainerExt = ".mkv"
	InfoJSONSuffix     = ".info.json"
	SidecarFileName    = "metadata.txt"
)

// Subtitle options applied when a transcript is requested
const (
	SubtitleLanguage = "en"
	SubtitleFormat   = "srt"
)

// OutputTemplate keeps the video ID in brackets so the merged file can be
// located deterministically after the download stage.
const OutputTemplate = "%(title)s [%(id)s].%(ext)s"

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// SanitizeTitle converts a video title into a filesystem-safe folder name:
// runs of non-alphanumeric characters collapse to a single underscore and
// the result is lowercased.
func SanitizeTitle(title string) string {
	sanitized := nonAlphanumeric.ReplaceAllString(title, "_")
	sanitized = strings.Trim(sanitized, "_")
	return strings.ToLower(sanitized)
}

// SwapExtension replaces the file extension of path with newExt, leaving
// every other path segment unchanged.
func SwapExtension(path, newExt string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + newExt
}

// DeriveWorkingPaths computes every file location for one run from the
// destination folder, the video descriptor, and the requested container.
func DeriveWorkingPaths(destination string, descriptor *model.VideoDescriptor, container string) model.WorkingPaths {
	outputDir := filepath.Join(destination, SanitizeTitle(descriptor.Title))
	merged := filepath.Join(outputDir, fmt.Sprintf("%s [%s]%s", descriptor.Title, descriptor.ID, MergedContainerExt))

	return model.WorkingPaths{
		OutputDir:       outputDir,
		MergedMediaPath: merged,
		InfoJSONPath:    SwapExtension(merged, InfoJSONSuffix),
		SidecarPath:     filepath.Join(outputDir, SidecarFileName),
		FinalOutputPath: SwapExtension(merged, container),
	}
}

// DownloadPlan is the full invocation for the download stage: the contents
// of the temporary configuration file plus the argument vector. Arguments
// are primitive tokens, never a concatenated shell string.
type DownloadPlan struct {
	ConfigContent string
	Args          []string
}

// BuildDownloadPlan produces the download-stage plan. The config always
// requests best-video+best-audio merged into the intermediate container,
// writes the raw metadata sidecar, and registers the exec hook that
// announces the merged file for the transcode handoff. Captions are added
// only when the request asks for a transcript.
func BuildDownloadPlan(req model.PipelineRequest, outputDir, configPath string) DownloadPlan {
	var b strings.Builder

	b.WriteString("# Download best video+audio combo\n")
	b.WriteString("-f bv*+ba/b\n\n")

	b.WriteString("# Merge to " + MergedContainerExt + " before transcoding\n")
	b.WriteString("--merge-output-format mkv\n\n")

	b.WriteString("# Output naming - keep the video ID in brackets\n")
	fmt.Fprintf(&b, "-o %q\n\n", filepath.Join(outputDir, OutputTemplate))

	b.WriteString("# Save simplified metadata\n")
	b.WriteString("--write-info-json\n")
	b.WriteString("--no-write-playlist-metafiles\n")
	b.WriteString("--no-write-comments\n")

	if req.Transcript {
		b.WriteString("\n# Get captions\n")
		b.WriteString("--write-auto-sub\n")
		fmt.Fprintf(&b, "--sub-lang %s\n", SubtitleLanguage)
		fmt.Fprintf(&b, "--convert-subs %s\n", SubtitleFormat)
	}

	b.WriteString("\n# Announce the merged file for the transcode handoff\n")
	fmt.Fprintf(&b, "--exec %q\n", "echo "+progress.MarkerTranscodeStart+" {}")

	return DownloadPlan{
		ConfigContent: b.String(),
		Args: []string{
			"--no-warnings",
			"-f", "bv*+ba/b",
			"--merge-output-format", "mkv",
			"--config-location", configPath,
			"-P", req.DestinationDir,
			"--progress",
			req.URL,
		},
	}
}

// BuildTranscodeArgs produces the transcode-stage argument vector in fixed
// order: input, video codec, rate-control/tuning flags, audio codec and
// bitrate, metadata tags, then the overwrite-allowed output path. The
// result is fully determined by the encoding plan and projection.
func BuildTranscodeArgs(encoding policy.EncodingPlan, tags []meta.Tag, inputPath, outputPath string) []string {
	args := []string{"-i", inputPath, "-c:v", encoding.Encoder}

	for _, flag := range encoding.Flags {
		args = append(args, flag.Key, flag.Value)
	}

	args = append(args, "-c:a", encoding.AudioCodec, "-b:a", encoding.AudioBitrate)

	for _, tag := range tags {
		args = append(args, "-metadata", tag.Key+"="+tag.Value)
	}

	return append(args, "-y", outputPath)
}
