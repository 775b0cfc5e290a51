package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoTemplate is returned when prompting starts before a template is
	// loaded.
	ErrNoTemplate = errors.New("tui: no template loaded")
)
