package engine

import "errors"

var (
	// ErrAlreadyRunning is returned by Run when the engine loop is already active.
	ErrAlreadyRunning = errors.New("engine already running")
)
