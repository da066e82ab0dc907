package dispatch

import "errors"

var (
	// ErrClosed is returned once the dispatcher no longer accepts commands.
	ErrClosed = errors.New("dispatch: closed")

	// ErrInternal marks a command whose execution failed unexpectedly.
	ErrInternal = errors.New("dispatch: internal error")
)
