package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrGaveUp is returned when the user declines to retry a failed submit.
	ErrGaveUp = errors.New("tui: submit abandoned")
)
