package luahook

import "errors"

// Lua state errors.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNotFunction is returned when a chunk export expected to be a
	// function is some other value.
	ErrNotFunction = errors.New("export is not a function")
)
