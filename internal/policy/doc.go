package policy

// Package policy resolves a requested codec family, hardware capability,
// and HDR detection into a concrete encoder configuration. Resolution is a
// pure function and always succeeds; GPU requests degrade silently to CPU
// encoders of the same family.
