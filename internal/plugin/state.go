package plugin

import "fmt"

// State is a plugin's lifecycle position.
type State int

const (
	// StateUnloaded - no interpreter exists for the plugin.
	StateUnloaded State = iota

	// StateLoading - the entry point is executing.
	StateLoading

	// StateRegistered - registration succeeded but the plugin has
	// not been activated.
	StateRegistered

	// StateActive - the plugin's contributions are live.
	StateActive

	// StateDisabled - the plugin is loaded but its contributions are
	// ignored, either by user request or after an ABI mismatch.
	StateDisabled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateRegistered:
		return "registered"
	case StateActive:
		return "active"
	case StateDisabled:
		return "disabled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// validTransitions holds the allowed lifecycle moves.
var validTransitions = map[State][]State{
	StateUnloaded:   {StateLoading},
	StateLoading:    {StateRegistered, StateDisabled, StateUnloaded},
	StateRegistered: {StateActive, StateDisabled, StateUnloaded},
	StateActive:     {StateDisabled, StateUnloaded},
	StateDisabled:   {StateActive, StateUnloaded},
}

// CanTransition reports whether moving from s to next is legal.
func (s State) CanTransition(next State) bool {
	for _, t := range validTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}
