package meta

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/archivepull/archive-pull/internal/model"
)

// Embedded tag names
const (
	TagTitle   = "title"
	TagArtist  = "artist"
	TagDate    = "date"
	TagComment = "comment"
)

// CommentPrefix is prepended to the source URL in the comment tag
const CommentPrefix = "Source: "

// Raw is the subset of the downloader's info JSON sidecar the pipeline
// cares about. All fields are optional in the source.
type Raw struct {
	Title       string  `json:"title"`
	Uploader    string  `json:"uploader"`
	UploadDate  string  `json:"upload_date"`
	Description string  `json:"description"`
	WebpageURL  string  `json:"webpage_url"`
	Duration    float64 `json:"duration"`
}

// Tag is one embeddable key/value metadata pair; emitted in fixed order
type Tag struct {
	Key   string
	Value string
}

// Projection is the result of projecting raw downloader metadata: the
// conditional embeddable tag subset plus the unconditional sidecar text.
type Projection struct {
	Tags    []Tag
	Sidecar string
}

// Load reads and decodes the raw metadata sidecar. A missing or malformed
// file is a soft failure: the pipeline continues without metadata.
func Load(path string) (Raw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Raw{}, fmt.Errorf("failed to read metadata sidecar: %w", err)
	}

	var raw Raw
	if err := json.Unmarshal(data, &raw); err != nil {
		return Raw{}, fmt.Errorf("failed to parse metadata sidecar: %w", err)
	}
	return raw, nil
}

// Project filters the raw record down to the embeddable tags selected by
// the user and renders the human-readable sidecar block. The sidecar is
// always generated in full regardless of the selection; only the embedded
// tag subset is conditional. Selection keys are expected in canonical
// (case-normalized) form.
func Project(raw Raw, selected map[string]bool) Projection {
	var tags []Tag

	if selected[model.MetadataFieldTitle] && raw.Title != "" {
		tags = append(tags, Tag{TagTitle, raw.Title})
	}
	if selected[model.MetadataFieldChannel] && raw.Uploader != "" {
		tags = append(tags, Tag{TagArtist, raw.Uploader})
	}
	if selected[model.MetadataFieldUploadDate] && raw.UploadDate != "" {
		tags = append(tags, Tag{TagDate, raw.UploadDate})
	}
	if selected[model.MetadataFieldURL] && raw.WebpageURL != "" {
		tags = append(tags, Tag{TagComment, CommentPrefix + raw.WebpageURL})
	}

	return Projection{
		Tags:    tags,
		Sidecar: renderSidecar(raw),
	}
}

// renderSidecar formats the plain-text metadata block written next to the
// final output file.
func renderSidecar(raw Raw) string {
	return fmt.Sprintf(`
Title: %s
Channel: %s
Upload Date: %s
Duration: %d seconds
URL: %s

Description:
%s
`, raw.Title, raw.Uploader, raw.UploadDate, int(raw.Duration), raw.WebpageURL, raw.Description)
}
