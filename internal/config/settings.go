package config

import (
	"fyne.io/fyne/v2"

	"github.com/archivepull/archive-pull/internal/model"
	"github.com/archivepull/archive-pull/internal/platform"
	"github.com/archivepull/archive-pull/internal/policy"
)

// Settings keys for Fyne preferences
const (
	KeyDestinationDir = "destination_directory"
	KeyCodec          = "codec_selection"
	KeyContainer      = "container_selection"
	KeyTranscript     = "transcript_requested"
	KeyHDROverride    = "hdr_override"

	// Per-slot and per-field keys are derived with these prefixes
	KeyBitratePrefix       = "bitrate_"
	KeyMetadataFieldPrefix = "metadata_field_"
)

// Default values
const (
	DefaultCodec      = policy.DefaultCodec
	DefaultContainer  = ".mp4"
	DefaultTranscript = false
)

// ContainerOptions are the output containers offered by the UI
var ContainerOptions = []string{".mp4", ".mov"}

// MetadataFieldKeys lists the embeddable fields in display order
var MetadataFieldKeys = []string{
	model.MetadataFieldTitle,
	model.MetadataFieldChannel,
	model.MetadataFieldUploadDate,
	model.MetadataFieldURL,
}

// Settings manages application configuration
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetDestinationDirectory returns the configured destination directory
func (s *Settings) GetDestinationDirectory() string {
	dir := s.app.Preferences().String(KeyDestinationDir)
	if dir == "" {
		// Use system default Downloads directory
		defaultDir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			defaultDir = "/tmp/downloads"
		}
		s.SetDestinationDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetDestinationDirectory sets the destination directory
func (s *Settings) SetDestinationDirectory(dir string) {
	s.app.Preferences().SetString(KeyDestinationDir, dir)
}

// GetCodec returns the configured codec selection
func (s *Settings) GetCodec() string {
	codec := s.app.Preferences().String(KeyCodec)
	if codec == "" {
		s.SetCodec(DefaultCodec)
		return DefaultCodec
	}
	return codec
}

// SetCodec sets the codec selection
func (s *Settings) SetCodec(codec string) {
	s.app.Preferences().SetString(KeyCodec, codec)
}

// GetCodecOptions returns the selectable codec names
func (s *Settings) GetCodecOptions() []string {
	return []string{
		policy.CodecH264GPU,
		policy.CodecH264CPU,
		policy.CodecH265GPU,
		policy.CodecH265CPU,
		policy.CodecProRes4LT,
		policy.CodecProRes422,
		policy.CodecProRes4HQ,
		policy.CodecProRes4444,
		policy.CodecDNxHD,
		policy.CodecAV1,
	}
}

// GetContainer returns the configured output container extension
func (s *Settings) GetContainer() string {
	container := s.app.Preferences().String(KeyContainer)
	if container == "" {
		s.SetContainer(DefaultContainer)
		return DefaultContainer
	}
	return container
}

// SetContainer sets the output container extension
func (s *Settings) SetContainer(container string) {
	s.app.Preferences().SetString(KeyContainer, container)
}

// GetBitrate returns the configured Mbps value for one resolution/tier
// slot, falling back to the built-in default.
func (s *Settings) GetBitrate(key string) int {
	return s.app.Preferences().IntWithFallback(KeyBitratePrefix+key, policy.DefaultBitrates[key])
}

// SetBitrate sets the Mbps value for one resolution/tier slot
func (s *Settings) SetBitrate(key string, mbps int) {
	if mbps < 1 {
		mbps = policy.DefaultBitrates[key]
	}
	s.app.Preferences().SetInt(KeyBitratePrefix+key, mbps)
}

// GetBitrates returns the full bitrate table, one value per slot
func (s *Settings) GetBitrates() map[string]int {
	bitrates := make(map[string]int, len(model.BitrateKeys))
	for _, key := range model.BitrateKeys {
		bitrates[key] = s.GetBitrate(key)
	}
	return bitrates
}

// GetTranscriptRequested returns whether captions should be fetched
func (s *Settings) GetTranscriptRequested() bool {
	return s.app.Preferences().BoolWithFallback(KeyTranscript, DefaultTranscript)
}

// SetTranscriptRequested sets whether captions should be fetched
func (s *Settings) SetTranscriptRequested(requested bool) {
	s.app.Preferences().SetBool(KeyTranscript, requested)
}

// GetHDROverride returns whether HDR bitrate floors are forced on
func (s *Settings) GetHDROverride() bool {
	return s.app.Preferences().BoolWithFallback(KeyHDROverride, false)
}

// SetHDROverride sets whether HDR bitrate floors are forced on
func (s *Settings) SetHDROverride(override bool) {
	s.app.Preferences().SetBool(KeyHDROverride, override)
}

// GetMetadataField returns whether one metadata field is selected for
// embedding. Every field defaults to on.
func (s *Settings) GetMetadataField(field string) bool {
	key := KeyMetadataFieldPrefix + model.NormalizeMetadataField(field)
	return s.app.Preferences().BoolWithFallback(key, true)
}

// SetMetadataField sets whether one metadata field is embedded
func (s *Settings) SetMetadataField(field string, selected bool) {
	key := KeyMetadataFieldPrefix + model.NormalizeMetadataField(field)
	s.app.Preferences().SetBool(key, selected)
}

// GetMetadataFields returns the full metadata selection set
func (s *Settings) GetMetadataFields() map[string]bool {
	fields := make(map[string]bool, len(MetadataFieldKeys))
	for _, field := range MetadataFieldKeys {
		fields[field] = s.GetMetadataField(field)
	}
	return fields
}
