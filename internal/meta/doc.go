package meta

// Package meta projects the raw metadata record written by the downloader
// into embeddable container tags and a human-readable sidecar text block.
// Metadata failures are always soft: a run continues without tags rather
// than aborting.
