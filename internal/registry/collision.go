package registry

import "fmt"

// Collision records one shadowing decision: two descriptors matched the
// same lookup key and the loser was shadowed. One record exists per
// losing descriptor. Records are retained until process exit or an
// explicit diagnostics reset; they are never silently dropped.
type Collision struct {
	// Kind is the registry kind the collision occurred in.
	Kind Kind

	// Key is the shared lookup key (name, alias, chord, or trigger).
	Key string

	// WinnerID and WinnerPriority identify the resolved descriptor.
	WinnerID       string
	WinnerPriority int16

	// ShadowedID and ShadowedPriority identify the losing descriptor.
	ShadowedID       string
	ShadowedPriority int16

	// WinnerSource and ShadowedSource record provenance for both sides.
	WinnerSource   Source
	ShadowedSource Source
}

// EqualPriority returns true if the collision was decided by provenance
// or registration order rather than priority.
func (c Collision) EqualPriority() bool {
	return c.WinnerPriority == c.ShadowedPriority
}

// String returns a one-line description of the collision.
func (c Collision) String() string {
	return fmt.Sprintf("%s %q: %s (prio %d, %s) shadows %s (prio %d, %s)",
		c.Kind, c.Key,
		c.WinnerID, c.WinnerPriority, c.WinnerSource,
		c.ShadowedID, c.ShadowedPriority, c.ShadowedSource)
}

// Suggestion returns an actionable hint for resolving the collision, or
// an empty string if the resolution is already unambiguous by priority.
func (c Collision) Suggestion() string {
	if !c.EqualPriority() {
		return ""
	}
	if c.WinnerSource.Type == c.ShadowedSource.Type {
		return fmt.Sprintf("equal priority %d from two %s sources; re-prioritize or rename one of %s / %s",
			c.WinnerPriority, c.WinnerSource.Type, c.WinnerID, c.ShadowedID)
	}
	return fmt.Sprintf("equal priority %d resolved by provenance (%s over %s); set explicit priorities to make the intent durable",
		c.WinnerPriority, c.WinnerSource.Type, c.ShadowedSource.Type)
}
