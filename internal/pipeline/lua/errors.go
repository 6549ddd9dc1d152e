package lua

import "errors"

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNotAFrame is returned when a Lua value is not a frame userdata.
	ErrNotAFrame = errors.New("value is not a frame")
)
