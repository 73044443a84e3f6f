package platform

// Package platform contains OS/platform integration and external tooling
// glue: external binary discovery, hardware encoder capability probing,
// and filesystem helpers.
