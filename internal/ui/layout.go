package ui

import "time"

// Terminal size thresholds.
const (
	// LayoutCompactWidth is the width below which the logo is replaced by a
	// single-line wordmark.
	LayoutCompactWidth = 72

	// LayoutMinLogHeight is the smallest log pane worth drawing.
	LayoutMinLogHeight = 3
)

// Log display limits.
const (
	// DiagnosticFetchLimit is how many lines of the diagnostic log are read.
	DiagnosticFetchLimit = 1000
)

// Timing constants.
const (
	// DefaultUIInterval is the default snapshot refresh interval.
	DefaultUIInterval = 250 * time.Millisecond
)
