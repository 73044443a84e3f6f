package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconFolder   = "📁"
	IconHDR      = "☀"
)

// Text fragments
const (
	MiddleDotSeparator  = " · "
	DashPlaceholder     = "—"
	ProgressLabelFormat = "%s %.1f%%"
)

// Layout sizing
const (
	LogViewMinHeight float32 = 160

	WindowMinWidth  float32 = 640
	WindowMinHeight float32 = 520
)

// Log view retention
const (
	MaxLogLines = 500
)

// Debounce durations
const (
	URLPreviewDebounce = 600 * time.Millisecond
	PreviewTimeout     = 15 * time.Second
)
