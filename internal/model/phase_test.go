package model

import "testing"

func TestPhase_IsTerminal(t *testing.T) {
	tests := []struct {
		phase    Phase
		expected bool
	}{
		{PhaseIdle, false},
		{PhaseDownloading, false},
		{PhaseDownloadComplete, false},
		{PhaseTranscoding, false},
		{PhaseTranscodingComplete, true},
		{PhaseErrored, true},
	}

	for _, test := range tests {
		result := test.phase.IsTerminal()
		if result != test.expected {
			t.Errorf("Phase(%s).IsTerminal() = %v, expected %v", test.phase, result, test.expected)
		}
	}
}

func TestPhase_CanAdvanceTo(t *testing.T) {
	tests := []struct {
		name     string
		from     Phase
		to       Phase
		expected bool
	}{
		{"idle to downloading", PhaseIdle, PhaseDownloading, true},
		{"downloading to download complete", PhaseDownloading, PhaseDownloadComplete, true},
		{"download complete to transcoding", PhaseDownloadComplete, PhaseTranscoding, true},
		{"transcoding to transcoding complete", PhaseTranscoding, PhaseTranscodingComplete, true},
		{"no backward transition", PhaseTranscoding, PhaseDownloading, false},
		{"no restart after success", PhaseTranscodingComplete, PhaseDownloading, false},
		{"errored from idle", PhaseIdle, PhaseErrored, true},
		{"errored from transcoding", PhaseTranscoding, PhaseErrored, true},
		{"errored is terminal", PhaseErrored, PhaseDownloading, false},
		{"errored stays errored only implicitly", PhaseErrored, PhaseErrored, false},
		{"same phase is allowed", PhaseDownloading, PhaseDownloading, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.from.CanAdvanceTo(tt.to)
			if result != tt.expected {
				t.Errorf("CanAdvanceTo(%s -> %s) = %v, expected %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestPhase_String(t *testing.T) {
	phase := PhaseDownloadComplete
	expected := "DownloadComplete"

	if phase.String() != expected {
		t.Errorf("Phase.String() = %s, expected %s", phase.String(), expected)
	}
}
