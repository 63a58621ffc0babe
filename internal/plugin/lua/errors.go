package lua

import "errors"

var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNotAFunction is returned when calling a global that is not a
	// function.
	ErrNotAFunction = errors.New("not a lua function")
)
