package ui

// Package ui contains the Fyne-based desktop user interface for the
// application. It collects the pipeline request from form widgets, renders
// the unified progress stream and log, and delegates all work to the
// pipeline service. No pipeline logic lives here.
