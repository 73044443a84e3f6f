package model

import "strings"

// Bitrate table keys, one per resolution/tier pair
const (
	Bitrate8KStandard    = "8k-standard"
	Bitrate8KHigh        = "8k-high"
	Bitrate4KStandard    = "4k-standard"
	Bitrate4KHigh        = "4k-high"
	Bitrate1440pStandard = "1440p-standard"
	Bitrate1440pHigh     = "1440p-high"
	Bitrate1080pStandard = "1080p-standard"
	Bitrate1080pHigh     = "1080p-high"
)

// BitrateKeys lists every resolution/tier slot in display order
var BitrateKeys = []string{
	Bitrate8KStandard,
	Bitrate8KHigh,
	Bitrate4KStandard,
	Bitrate4KHigh,
	Bitrate1440pStandard,
	Bitrate1440pHigh,
	Bitrate1080pStandard,
	Bitrate1080pHigh,
}

// Metadata field selection keys (canonical, case-normalized form)
const (
	MetadataFieldTitle      = "title"
	MetadataFieldChannel    = "channel"
	MetadataFieldUploadDate = "upload_date"
	MetadataFieldURL        = "url"
)

// PipelineRequest describes one download-and-transcode run. It is
// immutable once the run starts.
type PipelineRequest struct {
	URL            string
	DestinationDir string
	Codec          string
	Container      string          // output container extension, e.g. ".mp4"
	Bitrates       map[string]int  // resolution/tier key -> Mbps
	HDROverride    bool            // force HDR bitrate floors regardless of detection
	Transcript     bool            // request auto-captions converted to srt
	MetadataFields map[string]bool // case-normalized field key -> selected
}

// NormalizeMetadataField canonicalizes a metadata selection key so that
// differently-cased checkbox labels ("Upload Date", "upload date") map to
// one selection entry.
func NormalizeMetadataField(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// NormalizeMetadataFields returns a copy of the selection set with every
// key canonicalized. Duplicate keys that normalize to the same name are
// merged; a field is selected if any of its spellings was selected.
func NormalizeMetadataFields(fields map[string]bool) map[string]bool {
	normalized := make(map[string]bool, len(fields))
	for name, selected := range fields {
		key := NormalizeMetadataField(name)
		normalized[key] = normalized[key] || selected
	}
	return normalized
}

// VideoDescriptor holds the source metadata gathered by the pre-run query.
// It is produced once per run and read-only afterwards.
type VideoDescriptor struct {
	ID              string
	Title           string
	Channel         string
	DurationSeconds float64
	ThumbnailURL    string
	IsHDR           bool
}
