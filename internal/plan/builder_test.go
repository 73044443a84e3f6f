package plan

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/archivepull/archive-pull/internal/meta"
	"github.com/archivepull/archive-pull/internal/model"
	"github.com/archivepull/archive-pull/internal/policy"
)

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{"punctuation collapses to underscores", "My Video: Part #1!", "my_video_part_1"},
		{"already safe", "simple", "simple"},
		{"uppercase lowered", "UPPER Case", "upper_case"},
		{"consecutive specials collapse", "a -- b..c", "a_b_c"},
		{"leading and trailing specials trimmed", "!!wow!!", "wow"},
		{"digits kept", "Top 10 of 2024", "top_10_of_2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeTitle(tt.title)
			if result != tt.expected {
				t.Errorf("SanitizeTitle(%q) = %q, expected %q", tt.title, result, tt.expected)
			}
		})
	}
}

func TestSwapExtension(t *testing.T) {
	tests := []struct {
		path     string
		newExt   string
		expected string
	}{
		{"/out/video.mkv", ".mp4", "/out/video.mp4"},
		{"/out/video.mkv", ".mov", "/out/video.mov"},
		{"/out/my.video [abc].mkv", ".mp4", "/out/my.video [abc].mp4"},
	}

	for _, test := range tests {
		result := SwapExtension(test.path, test.newExt)
		if result != test.expected {
			t.Errorf("SwapExtension(%s, %s) = %s, expected %s", test.path, test.newExt, result, test.expected)
		}
	}
}

func TestDeriveWorkingPaths(t *testing.T) {
	descriptor := &model.VideoDescriptor{
		ID:    "abc123",
		Title: "My Video: Part #1!",
	}

	paths := DeriveWorkingPaths("/dest", descriptor, ".mp4")

	expectedDir := filepath.Join("/dest", "my_video_part_1")
	if paths.OutputDir != expectedDir {
		t.Errorf("OutputDir = %s, expected %s", paths.OutputDir, expectedDir)
	}

	expectedMerged := filepath.Join(expectedDir, "My Video: Part #1! [abc123].mkv")
	if paths.MergedMediaPath != expectedMerged {
		t.Errorf("MergedMediaPath = %s, expected %s", paths.MergedMediaPath, expectedMerged)
	}

	if paths.InfoJSONPath != SwapExtension(expectedMerged, ".info.json") {
		t.Errorf("InfoJSONPath = %s", paths.InfoJSONPath)
	}
	if paths.SidecarPath != filepath.Join(expectedDir, SidecarFileName) {
		t.Errorf("SidecarPath = %s", paths.SidecarPath)
	}
	if !strings.HasSuffix(paths.FinalOutputPath, ".mp4") {
		t.Errorf("FinalOutputPath = %s, expected .mp4 suffix", paths.FinalOutputPath)
	}
	if filepath.Dir(paths.FinalOutputPath) != expectedDir {
		t.Errorf("FinalOutputPath dir = %s, expected %s", filepath.Dir(paths.FinalOutputPath), expectedDir)
	}
}

func TestBuildDownloadPlan_Args(t *testing.T) {
	req := model.PipelineRequest{
		URL:            "https://example.com/watch?v=abc123",
		DestinationDir: "/dest",
	}

	p := BuildDownloadPlan(req, "/dest/my_video", "/tmp/yt-dlp-run.conf")

	expectedArgs := []string{
		"--no-warnings",
		"-f", "bv*+ba/b",
		"--merge-output-format", "mkv",
		"--config-location", "/tmp/yt-dlp-run.conf",
		"-P", "/dest",
		"--progress",
		"https://example.com/watch?v=abc123",
	}

	if len(p.Args) != len(expectedArgs) {
		t.Fatalf("expected %d args, got %d: %v", len(expectedArgs), len(p.Args), p.Args)
	}
	for i, expected := range expectedArgs {
		if p.Args[i] != expected {
			t.Errorf("arg %d: expected %s, got %s", i, expected, p.Args[i])
		}
	}
}

func TestBuildDownloadPlan_URLIsSingleArgument(t *testing.T) {
	// A hostile URL must stay one argv token, never shell-interpreted
	hostile := "https://example.com/watch?v=a;rm -rf /"
	req := model.PipelineRequest{URL: hostile, DestinationDir: "/dest"}

	p := BuildDownloadPlan(req, "/dest/x", "/tmp/cfg")

	if p.Args[len(p.Args)-1] != hostile {
		t.Errorf("URL should be the final argv token, got %v", p.Args)
	}
}

func TestBuildDownloadPlan_ConfigContent(t *testing.T) {
	tests := []struct {
		name       string
		transcript bool
		wanted     []string
		unwanted   []string
	}{
		{
			name:       "without transcript",
			transcript: false,
			wanted: []string{
				"-f bv*+ba/b",
				"--merge-output-format mkv",
				"--write-info-json",
				"--no-write-playlist-metafiles",
				"--no-write-comments",
				"--exec",
				"Processing file:",
			},
			unwanted: []string{"--write-auto-sub"},
		},
		{
			name:       "with transcript",
			transcript: true,
			wanted: []string{
				"--write-auto-sub",
				"--sub-lang en",
				"--convert-subs srt",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := model.PipelineRequest{
				URL:            "https://example.com/w",
				DestinationDir: "/dest",
				Transcript:     tt.transcript,
			}
			p := BuildDownloadPlan(req, "/dest/x", "/tmp/cfg")

			for _, fragment := range tt.wanted {
				if !strings.Contains(p.ConfigContent, fragment) {
					t.Errorf("config missing %q:\n%s", fragment, p.ConfigContent)
				}
			}
			for _, fragment := range tt.unwanted {
				if strings.Contains(p.ConfigContent, fragment) {
					t.Errorf("config should not contain %q:\n%s", fragment, p.ConfigContent)
				}
			}
		})
	}
}

func TestBuildDownloadPlan_OutputTemplateUsesOutputDir(t *testing.T) {
	req := model.PipelineRequest{URL: "https://example.com/w", DestinationDir: "/dest"}

	p := BuildDownloadPlan(req, "/dest/my_video", "/tmp/cfg")

	if !strings.Contains(p.ConfigContent, filepath.Join("/dest/my_video", OutputTemplate)) {
		t.Errorf("config should point the output template at the run folder:\n%s", p.ConfigContent)
	}
}

func TestBuildTranscodeArgs_FixedOrder(t *testing.T) {
	encoding := policy.EncodingPlan{
		Encoder:      policy.EncoderX264,
		Flags:        []policy.Flag{{Key: "-preset", Value: "slow"}, {Key: "-tune", Value: "film"}, {Key: "-b:v", Value: "8M"}},
		AudioCodec:   policy.AudioCodec,
		AudioBitrate: policy.AudioBitrate,
	}
	tags := []meta.Tag{
		{Key: "title", Value: "Deep Dive"},
		{Key: "artist", Value: "Some Channel"},
	}

	args := BuildTranscodeArgs(encoding, tags, "/out/video.mkv", "/out/video.mp4")

	expected := []string{
		"-i", "/out/video.mkv",
		"-c:v", "libx264",
		"-preset", "slow",
		"-tune", "film",
		"-b:v", "8M",
		"-c:a", "aac",
		"-b:a", "320k",
		"-metadata", "title=Deep Dive",
		"-metadata", "artist=Some Channel",
		"-y", "/out/video.mp4",
	}

	if len(args) != len(expected) {
		t.Fatalf("expected %d args, got %d: %v", len(expected), len(args), args)
	}
	for i, want := range expected {
		if args[i] != want {
			t.Errorf("arg %d: expected %s, got %s", i, want, args[i])
		}
	}
}

func TestBuildTranscodeArgs_NoTags(t *testing.T) {
	encoding := policy.EncodingPlan{
		Encoder:      policy.EncoderProRes,
		Flags:        []policy.Flag{{Key: "-profile:v", Value: policy.ProResProfile422HQ}},
		AudioCodec:   policy.AudioCodec,
		AudioBitrate: policy.AudioBitrate,
	}

	args := BuildTranscodeArgs(encoding, nil, "/out/video.mkv", "/out/video.mov")

	joined := strings.Join(args, " ")
	if strings.Contains(joined, "-metadata") {
		t.Errorf("no tags selected, args should carry no -metadata flags: %v", args)
	}
	if args[len(args)-2] != "-y" || args[len(args)-1] != "/out/video.mov" {
		t.Errorf("output path with overwrite flag must come last: %v", args)
	}
}
