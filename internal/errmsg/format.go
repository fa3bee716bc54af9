// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playback operations
	OpOpenPlayer     Op = "open player"
	OpSwitchProvider Op = "switch provider"
	OpRetarget       Op = "change track"
	OpSeek           Op = "seek"

	// Provider session operations
	OpAcquire Op = "start provider session"
	OpRelease Op = "close provider session"

	// Analytics
	OpRecordPlay Op = "record play event"

	// Persistence
	OpStateLoad Op = "restore saved player state"
	OpStateSave Op = "save player state"
	OpQueueLoad Op = "load queue"
	OpQueueSave Op = "save queue"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
