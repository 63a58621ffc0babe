package plugin

import "errors"

var (
	// ErrNotFound is returned when no plugin matches an identifier.
	ErrNotFound = errors.New("plugin not found")

	// ErrAlreadyLoaded is returned when loading a plugin whose id is
	// already registered.
	ErrAlreadyLoaded = errors.New("plugin already loaded")

	// ErrABIMismatch is returned when a plugin declares an ABI
	// version the host does not speak.
	ErrABIMismatch = errors.New("plugin ABI version mismatch")

	// ErrNoInit is returned when the entry point defines no
	// plugin_init function.
	ErrNoInit = errors.New("entry point does not define plugin_init")

	// ErrBadRegistration is returned when plugin_init returns
	// something other than a well-formed registration table.
	ErrBadRegistration = errors.New("malformed registration")

	// ErrNotActive is returned when invoking a contribution of a
	// plugin that is not active.
	ErrNotActive = errors.New("plugin is not active")

	// ErrInvalidTransition is returned for an illegal lifecycle move.
	ErrInvalidTransition = errors.New("invalid state transition")
)
