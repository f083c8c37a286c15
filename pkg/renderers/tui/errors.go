package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNotLoaded is returned when Run is handed a form without a schema.
	ErrNotLoaded = errors.New("tui: form has no schema loaded")
)
