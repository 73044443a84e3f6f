package progress

// Package progress unifies the unstructured, line-oriented output of the
// download and transcode subprocesses into a single monotonic lifecycle:
// one phase label and one phase-scoped percentage. Classification rules
// are evaluated in a fixed priority order; error detection runs
// independently of structural matching.
