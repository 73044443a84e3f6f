package policy

import (
	"fmt"
	"strings"

	"github.com/archivepull/archive-pull/internal/model"
)

// Codec selections offered by the UI
const (
	CodecH264GPU    = "H.264 (GPU)"
	CodecH264CPU    = "H.264 (CPU)"
	CodecH265GPU    = "H.265 (GPU)"
	CodecH265CPU    = "H.265 (CPU)"
	CodecProRes422  = "ProRes 422"
	CodecProRes4HQ  = "ProRes 422 HQ"
	CodecProRes4LT  = "ProRes 422 LT"
	CodecProRes4444 = "ProRes 4444"
	CodecDNxHD      = "DNxHD"
	CodecAV1        = "AV1"

	DefaultCodec = CodecH264GPU
)

// Encoder names
const (
	EncoderX264             = "libx264"
	EncoderX265             = "libx265"
	EncoderH264NVENC        = "h264_nvenc"
	EncoderHEVCNVENC        = "hevc_nvenc"
	EncoderH264VideoToolbox = "h264_videotoolbox"
	EncoderHEVCVideoToolbox = "hevc_videotoolbox"
	EncoderProRes           = "prores_ks"
	EncoderDNxHD            = "dnxhd"
	EncoderAOMAV1           = "libaom-av1"
)

// Audio settings applied to every transcode
const (
	AudioCodec   = "aac"
	AudioBitrate = "320k"
)

// ProRes profile identifiers for prores_ks
const (
	ProResProfile422LT = "1"
	ProResProfile422   = "2"
	ProResProfile422HQ = "3"
	ProResProfile4444  = "4"
)

// DNxHD uses a fixed rate regardless of the user bitrate table
const DNxHDBitrate = "120M"

// Operating systems with distinct hardware encoder policies
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
)

// DefaultBitrates are the fallback Mbps values per resolution/tier when
// the user table has no entry for a slot.
var DefaultBitrates = map[string]int{
	model.Bitrate8KStandard:    120,
	model.Bitrate8KHigh:        180,
	model.Bitrate4KStandard:    40,
	model.Bitrate4KHigh:        60,
	model.Bitrate1440pStandard: 16,
	model.Bitrate1440pHigh:     24,
	model.Bitrate1080pStandard: 8,
	model.Bitrate1080pHigh:     12,
}

// HDRBitrateFloors are the minimum Mbps values per resolution/tier applied
// to HDR content. The resolved bitrate never goes below the floor and
// never below the user-requested value.
var HDRBitrateFloors = map[string]int{
	model.Bitrate8KStandard:    200,
	model.Bitrate8KHigh:        300,
	model.Bitrate4KStandard:    120,
	model.Bitrate4KHigh:        170,
	model.Bitrate1440pStandard: 70,
	model.Bitrate1440pHigh:     100,
	model.Bitrate1080pStandard: 40,
	model.Bitrate1080pHigh:     60,
}

// Capability describes the hardware encoders available on this machine.
// It is probed once at startup and treated as read-only afterwards.
type Capability struct {
	OS       string
	Encoders map[string]bool
}

// HasEncoder reports whether ffmpeg exposes the named encoder
func (c Capability) HasEncoder(name string) bool {
	return c.Encoders[name]
}

// Flag is one encoder argument pair; order of flags is significant
type Flag struct {
	Key   string
	Value string
}

// EncodingPlan is the resolved transcode configuration for one run. It is
// computed exactly once, before the transcode stage starts.
type EncodingPlan struct {
	Encoder      string
	Flags        []Flag // rate-control and tuning flags, in apply order
	Bitrates     map[string]int
	AudioCodec   string
	AudioBitrate string
}

// AppliedBitrate returns the Mbps value used for the encoder's -b:v flag.
// Rate control keys off the 1080p standard slot.
func (p EncodingPlan) AppliedBitrate() int {
	return p.Bitrates[model.Bitrate1080pStandard]
}

// Resolve maps a codec selection to an encoding plan. Resolution always
// succeeds: unknown codecs fall back to CPU H.264 and missing bitrate
// entries fall back to defaults. A GPU request silently degrades to the
// CPU encoder of the same family when no hardware encoder is available.
func Resolve(codec string, cap Capability, isHDR bool, userBitrates map[string]int) EncodingPlan {
	plan := EncodingPlan{
		Bitrates:     ResolveBitrates(userBitrates, isHDR),
		AudioCodec:   AudioCodec,
		AudioBitrate: AudioBitrate,
	}

	rate := fmt.Sprintf("%dM", plan.Bitrates[model.Bitrate1080pStandard])

	switch {
	case strings.Contains(codec, "H.264"):
		if strings.Contains(codec, "GPU") {
			switch hardwareEncoder(cap, EncoderH264VideoToolbox, EncoderH264NVENC) {
			case EncoderH264VideoToolbox:
				plan.Encoder = EncoderH264VideoToolbox
				plan.Flags = []Flag{{"-b:v", rate}}
			case EncoderH264NVENC:
				plan.Encoder = EncoderH264NVENC
				plan.Flags = []Flag{{"-preset", "p7"}, {"-tune", "hq"}, {"-b:v", rate}}
			default:
				// GPU requested but unavailable: quality-targeted CPU fallback
				plan.Encoder = EncoderX264
				plan.Flags = []Flag{{"-preset", "fast"}, {"-crf", "23"}}
			}
		} else {
			plan.Encoder = EncoderX264
			plan.Flags = []Flag{{"-preset", "slow"}, {"-tune", "film"}, {"-b:v", rate}}
		}

	case strings.Contains(codec, "H.265"):
		if strings.Contains(codec, "GPU") {
			switch hardwareEncoder(cap, EncoderHEVCVideoToolbox, EncoderHEVCNVENC) {
			case EncoderHEVCVideoToolbox:
				plan.Encoder = EncoderHEVCVideoToolbox
				plan.Flags = []Flag{{"-b:v", rate}}
			case EncoderHEVCNVENC:
				plan.Encoder = EncoderHEVCNVENC
				plan.Flags = []Flag{{"-preset", "p7"}, {"-tune", "hq"}, {"-b:v", rate}}
			default:
				plan.Encoder = EncoderX265
				plan.Flags = []Flag{{"-preset", "medium"}, {"-b:v", rate}}
			}
		} else {
			plan.Encoder = EncoderX265
			plan.Flags = []Flag{{"-preset", "medium"}, {"-b:v", rate}}
		}

	case strings.Contains(codec, "ProRes"):
		plan.Encoder = EncoderProRes
		plan.Flags = []Flag{{"-profile:v", proresProfile(codec)}}

	case strings.Contains(codec, "DNxHD"):
		plan.Encoder = EncoderDNxHD
		plan.Flags = []Flag{{"-b:v", DNxHDBitrate}}

	case strings.Contains(codec, "AV1"):
		plan.Encoder = EncoderAOMAV1
		plan.Flags = []Flag{{"-crf", "30"}, {"-b:v", "0"}}

	default:
		// Unknown or empty selection: sane CPU default, never an error
		plan.Encoder = EncoderX264
		plan.Flags = []Flag{{"-preset", "slow"}, {"-tune", "film"}, {"-b:v", rate}}
	}

	return plan
}

// ResolveBitrates fills missing slots from defaults and, for HDR content,
// raises each slot to at least its HDR floor.
func ResolveBitrates(userBitrates map[string]int, isHDR bool) map[string]int {
	resolved := make(map[string]int, len(DefaultBitrates))
	for key, def := range DefaultBitrates {
		value := def
		if user, ok := userBitrates[key]; ok && user > 0 {
			value = user
		}
		if isHDR && value < HDRBitrateFloors[key] {
			value = HDRBitrateFloors[key]
		}
		resolved[key] = value
	}
	return resolved
}

// hardwareEncoder picks the platform hardware encoder for the codec
// family, or "" when none is usable. macOS always has VideoToolbox;
// Windows depends on the probed NVENC capability; everything else is CPU.
func hardwareEncoder(cap Capability, videotoolbox, nvenc string) string {
	switch cap.OS {
	case OSDarwin:
		return videotoolbox
	case OSWindows:
		if cap.HasEncoder(nvenc) {
			return nvenc
		}
		return ""
	default:
		return ""
	}
}

func proresProfile(codec string) string {
	switch {
	case strings.Contains(codec, "422 HQ"):
		return ProResProfile422HQ
	case strings.Contains(codec, "422 LT"):
		return ProResProfile422LT
	case strings.Contains(codec, "4444"):
		return ProResProfile4444
	default:
		return ProResProfile422
	}
}
