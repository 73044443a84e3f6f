package policy

import (
	"testing"

	"github.com/archivepull/archive-pull/internal/model"
)

func capabilityFor(os string, encoders ...string) Capability {
	set := make(map[string]bool, len(encoders))
	for _, name := range encoders {
		set[name] = true
	}
	return Capability{OS: os, Encoders: set}
}

func TestResolveBitrates_HDRFloorIsMonotonicMax(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		user     int
		isHDR    bool
		expected int
	}{
		{"user below floor is raised", model.Bitrate1080pStandard, 8, true, 40},
		{"user above floor is kept", model.Bitrate1080pStandard, 55, true, 55},
		{"user equal to floor is kept", model.Bitrate4KStandard, 120, true, 120},
		{"no HDR keeps user value", model.Bitrate1080pStandard, 8, false, 8},
		{"8k high floor applies", model.Bitrate8KHigh, 180, true, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved := ResolveBitrates(map[string]int{tt.key: tt.user}, tt.isHDR)
			if resolved[tt.key] != tt.expected {
				t.Errorf("ResolveBitrates()[%s] = %d, expected %d", tt.key, resolved[tt.key], tt.expected)
			}
		})
	}
}

func TestResolveBitrates_AllSlotsSatisfyHDRProperty(t *testing.T) {
	user := map[string]int{
		model.Bitrate8KStandard:    500,
		model.Bitrate1080pStandard: 1,
	}

	resolved := ResolveBitrates(user, true)

	for _, key := range model.BitrateKeys {
		if resolved[key] < HDRBitrateFloors[key] {
			t.Errorf("slot %s resolved to %d, below HDR floor %d", key, resolved[key], HDRBitrateFloors[key])
		}
		if requested, ok := user[key]; ok && resolved[key] < requested {
			t.Errorf("slot %s resolved to %d, below user request %d", key, resolved[key], requested)
		}
	}
}

func TestResolveBitrates_MissingSlotsFallBackToDefaults(t *testing.T) {
	resolved := ResolveBitrates(nil, false)

	for _, key := range model.BitrateKeys {
		if resolved[key] != DefaultBitrates[key] {
			t.Errorf("slot %s = %d, expected default %d", key, resolved[key], DefaultBitrates[key])
		}
	}
}

func TestResolve_GPUFallsBackToCPUSilently(t *testing.T) {
	tests := []struct {
		name            string
		codec           string
		cap             Capability
		expectedEncoder string
	}{
		{"h264 gpu on linux", CodecH264GPU, capabilityFor("linux"), EncoderX264},
		{"h264 gpu on windows without nvenc", CodecH264GPU, capabilityFor(OSWindows), EncoderX264},
		{"h264 gpu on windows with nvenc", CodecH264GPU, capabilityFor(OSWindows, EncoderH264NVENC), EncoderH264NVENC},
		{"h264 gpu on macos", CodecH264GPU, capabilityFor(OSDarwin), EncoderH264VideoToolbox},
		{"h265 gpu on linux", CodecH265GPU, capabilityFor("linux"), EncoderX265},
		{"h265 gpu on windows with nvenc", CodecH265GPU, capabilityFor(OSWindows, EncoderHEVCNVENC), EncoderHEVCNVENC},
		{"h265 gpu on macos", CodecH265GPU, capabilityFor(OSDarwin), EncoderHEVCVideoToolbox},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Resolve(tt.codec, tt.cap, false, nil)
			if plan.Encoder != tt.expectedEncoder {
				t.Errorf("Resolve(%s) encoder = %s, expected %s", tt.codec, plan.Encoder, tt.expectedEncoder)
			}
		})
	}
}

func TestResolve_ProResProfiles(t *testing.T) {
	tests := []struct {
		codec   string
		profile string
	}{
		{CodecProRes422, ProResProfile422},
		{CodecProRes4HQ, ProResProfile422HQ},
		{CodecProRes4LT, ProResProfile422LT},
		{CodecProRes4444, ProResProfile4444},
	}

	for _, tt := range tests {
		plan := Resolve(tt.codec, capabilityFor("linux"), false, nil)
		if plan.Encoder != EncoderProRes {
			t.Errorf("Resolve(%s) encoder = %s, expected %s", tt.codec, plan.Encoder, EncoderProRes)
		}
		if len(plan.Flags) != 1 || plan.Flags[0].Key != "-profile:v" || plan.Flags[0].Value != tt.profile {
			t.Errorf("Resolve(%s) flags = %v, expected single -profile:v %s", tt.codec, plan.Flags, tt.profile)
		}
	}
}

func TestResolve_ProResIgnoresBitrateTable(t *testing.T) {
	plan := Resolve(CodecProRes422, capabilityFor(OSDarwin), true, map[string]int{model.Bitrate1080pStandard: 99})

	for _, flag := range plan.Flags {
		if flag.Key == "-b:v" {
			t.Errorf("ProRes plan must not carry a video bitrate flag, got %v", plan.Flags)
		}
	}
}

func TestResolve_UnknownCodecDefaultsToCPUH264(t *testing.T) {
	tests := []string{"", "Totally Unknown", "VP8"}

	for _, codec := range tests {
		plan := Resolve(codec, Capability{}, false, nil)
		if plan.Encoder != EncoderX264 {
			t.Errorf("Resolve(%q) encoder = %s, expected %s", codec, plan.Encoder, EncoderX264)
		}
	}
}

func TestResolve_AudioSettingsAlwaysPresent(t *testing.T) {
	plan := Resolve(CodecAV1, Capability{}, false, nil)

	if plan.AudioCodec != AudioCodec {
		t.Errorf("audio codec = %s, expected %s", plan.AudioCodec, AudioCodec)
	}
	if plan.AudioBitrate != AudioBitrate {
		t.Errorf("audio bitrate = %s, expected %s", plan.AudioBitrate, AudioBitrate)
	}
}

func TestResolve_AppliedBitrateUsesHDRFloor(t *testing.T) {
	plan := Resolve(CodecH264CPU, Capability{}, true, map[string]int{model.Bitrate1080pStandard: 8})

	if plan.AppliedBitrate() != 40 {
		t.Errorf("AppliedBitrate() = %d, expected HDR floor 40", plan.AppliedBitrate())
	}

	found := false
	for _, flag := range plan.Flags {
		if flag.Key == "-b:v" && flag.Value == "40M" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected -b:v 40M in flags, got %v", plan.Flags)
	}
}
