package model

import "testing"

func TestNormalizeMetadataField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"already canonical", "title", "title"},
		{"mixed case", "Title", "title"},
		{"space to underscore", "Upload Date", "upload_date"},
		{"surrounding whitespace", "  URL ", "url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeMetadataField(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeMetadataField(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizeMetadataFields_MergesDuplicateSpellings(t *testing.T) {
	fields := map[string]bool{
		"Upload Date": false,
		"upload_date": true,
		"Title":       true,
	}

	normalized := NormalizeMetadataFields(fields)

	if len(normalized) != 2 {
		t.Fatalf("expected 2 normalized keys, got %d", len(normalized))
	}
	if !normalized[MetadataFieldUploadDate] {
		t.Error("upload_date should be selected when any spelling is selected")
	}
	if !normalized[MetadataFieldTitle] {
		t.Error("title should be selected")
	}
}
