package registry

import "errors"

// Registration faults. These indicate packaging defects and are fatal
// at startup, never recovered at runtime.
var (
	// ErrDuplicateID is returned when two contributions share an id
	// within one kind.
	ErrDuplicateID = errors.New("registry: duplicate descriptor id")

	// ErrEmptyID is returned for a descriptor with no id.
	ErrEmptyID = errors.New("registry: descriptor id is required")

	// ErrEmptyName is returned for a descriptor with no name.
	ErrEmptyName = errors.New("registry: descriptor name is required")

	// ErrNilHandler is returned for a contribution without a handler.
	ErrNilHandler = errors.New("registry: handler is required")
)
