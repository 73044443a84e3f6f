// Package pipeline orchestrates the two-stage archive pipeline: a
// download stage that fetches and merges the source media, then a
// transcode stage that re-encodes it into the requested codec and
// container. The Service supervises both subprocesses, unifies their
// progress output, and resolves every run to a terminal result.
package pipeline
