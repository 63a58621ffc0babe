// Package keymap resolves keystrokes to action names. Bindings are
// keybinding descriptors in the static registry, keyed by
// "<mode> <chord>"; runtime plugin bindings are consulted first so a
// plugin can rebind a chord without touching the static set.
package keymap

import (
	"strings"

	"github.com/fathom-editor/fathom/internal/input/key"
	"github.com/fathom-editor/fathom/internal/registry"
)

// Binding is the handler payload of a keybinding descriptor: the
// action the chord invokes.
type Binding struct {
	Action string
}

// RuntimeBindings is the plugin-side lookup, consulted before the
// static registry.
type RuntimeBindings interface {
	// FindActionByKey returns the action bound to a full
	// "<mode> <chord>" key by an active plugin.
	FindActionByKey(key string) (pluginID, action string, ok bool)

	// HasKeyPrefix reports whether any plugin binding key strictly
	// extends prefix, so multi-keystroke plugin chords can pend.
	HasKeyPrefix(prefix string) bool
}

// Status classifies a resolution step.
type Status int

const (
	// NoMatch - the chord matches nothing; it was discarded.
	NoMatch Status = iota
	// Pending - the chord is a prefix of at least one binding.
	Pending
	// Match - the chord resolved to an action.
	Match
)

// Resolution is the outcome of feeding one keystroke.
type Resolution struct {
	Status Status
	// Action is the resolved action name when Status is Match.
	Action string
	// FromPlugin names the plugin whose binding won, empty for a
	// static binding.
	FromPlugin string
	// Chord is the sequence that resolved or was discarded.
	Chord string
}

// Resolver accumulates keystrokes and resolves them against the
// registry's key axis. It tracks one pending chord at a time and is
// not safe for concurrent use; the event loop owns it.
type Resolver struct {
	static  *registry.Registry
	runtime RuntimeBindings

	pending []key.Event
}

// NewResolver creates a resolver over the static registry. runtime
// may be nil.
func NewResolver(static *registry.Registry, runtime RuntimeBindings) *Resolver {
	return &Resolver{static: static, runtime: runtime}
}

// BindingKey builds the registry key for a binding.
func BindingKey(mode, chord string) string {
	return mode + " " + chord
}

// Feed adds one keystroke in the given mode and tries to resolve the
// accumulated chord. An exact match resolves immediately even when a
// longer binding shares the prefix; ambiguous longer bindings lose to
// the shorter exact one.
func (r *Resolver) Feed(mode string, ev key.Event) Resolution {
	r.pending = append(r.pending, ev)
	chord := key.SequenceString(r.pending)
	full := BindingKey(mode, chord)

	if r.runtime != nil {
		if pluginID, actionName, ok := r.runtime.FindActionByKey(full); ok {
			r.pending = nil
			return Resolution{Status: Match, Action: actionName, FromPlugin: pluginID, Chord: chord}
		}
	}

	if desc, ok := r.static.FindByKey(registry.KindKeyBinding, full); ok {
		r.pending = nil
		if handler, ok := r.static.HandlerByID(registry.KindKeyBinding, desc.ID); ok {
			if b, ok := handler.(Binding); ok {
				return Resolution{Status: Match, Action: b.Action, Chord: chord}
			}
		}
		// A binding without a Binding payload is a registration bug;
		// treat the chord as unbound.
		return Resolution{Status: NoMatch, Chord: chord}
	}

	if r.hasPrefix(full) {
		return Resolution{Status: Pending, Chord: chord}
	}

	r.pending = nil
	return Resolution{Status: NoMatch, Chord: chord}
}

// PendingChord returns the chord accumulated so far.
func (r *Resolver) PendingChord() string {
	return key.SequenceString(r.pending)
}

// Reset discards the pending chord, as on <Esc> or a mode switch.
func (r *Resolver) Reset() {
	r.pending = nil
}

// hasPrefix reports whether any binding key, runtime or static,
// extends full.
func (r *Resolver) hasPrefix(full string) bool {
	if r.runtime != nil && r.runtime.HasKeyPrefix(full) {
		return true
	}
	for _, desc := range r.static.All(registry.KindKeyBinding) {
		if len(desc.Key) > len(full) && strings.HasPrefix(desc.Key, full) {
			return true
		}
	}
	return false
}
