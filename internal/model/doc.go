package model

// Package model defines domain data structures used across the app: the
// pipeline request, video descriptors, working paths, unified progress
// events, and phase enums. Structures are designed for direct binding in
// the UI and explicit state transitions.
