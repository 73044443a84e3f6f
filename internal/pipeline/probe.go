package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/archivepull/archive-pull/internal/model"
)

// HDR markers scanned for in the source's format list
const (
	HDRFormatNote = "HDR"
	HDRCodecVP9   = "vp9.2"
	HDRCodecAV1   = "av01"
)

// videoInfo is the subset of the source query JSON the pipeline reads
type videoInfo struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Uploader  string        `json:"uploader"`
	Duration  float64       `json:"duration"`
	Thumbnail string        `json:"thumbnail"`
	Formats   []videoFormat `json:"formats"`
}

type videoFormat struct {
	FormatNote string `json:"format_note"`
	VCodec     string `json:"vcodec"`
}

// GetVideoInfo queries the source for the video descriptor in one blocking
// call. A failure here is fatal to a run: no subprocess stage is spawned.
func (s *Service) GetVideoInfo(ctx context.Context, url string) (*model.VideoDescriptor, error) {
	cmd := exec.CommandContext(ctx, s.bins.YtDLP, "-J", url)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("video info query: %s", firstLine(exitErr.Stderr))
		}
		return nil, fmt.Errorf("video info query: %w", err)
	}

	var info videoInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return nil, fmt.Errorf("video info query returned invalid JSON: %w", err)
	}

	return &model.VideoDescriptor{
		ID:              info.ID,
		Title:           info.Title,
		Channel:         info.Uploader,
		DurationSeconds: info.Duration,
		ThumbnailURL:    info.Thumbnail,
		IsHDR:           detectHDR(info.Formats),
	}, nil
}

// detectHDR reports whether any available format carries an HDR marker:
// an HDR format note, the vp9.2 profile, or an AV1 stream noted as HDR.
func detectHDR(formats []videoFormat) bool {
	for _, format := range formats {
		if strings.Contains(format.FormatNote, HDRFormatNote) {
			return true
		}
		if strings.Contains(format.VCodec, HDRCodecVP9) {
			return true
		}
		if strings.Contains(format.VCodec, HDRCodecAV1) && strings.Contains(format.FormatNote, HDRFormatNote) {
			return true
		}
	}
	return false
}

func firstLine(data []byte) string {
	text := strings.TrimSpace(string(data))
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}
	return text
}
