// Package mode tracks the editor's modal state. Modes are registered
// by name; switching runs leave/enter hooks so modes can reset
// per-mode state such as a visual anchor or a command prompt.
package mode

import (
	"errors"
	"fmt"
	"sync"
)

// Standard mode names.
const (
	Normal  = "normal"
	Insert  = "insert"
	Visual  = "visual"
	Command = "command"
)

// ErrUnknownMode is returned when switching to an unregistered mode.
var ErrUnknownMode = errors.New("unknown mode")

// Mode is one modal state.
type Mode interface {
	// Name returns the mode's registry name.
	Name() string
	// InsertsText reports whether plain character keys become
	// document text instead of chord input.
	InsertsText() bool
	// Enter runs when the mode becomes current.
	Enter(prev string)
	// Leave runs before the mode stops being current.
	Leave(next string)
}

// Base is a no-hook mode other modes can embed.
type Base struct {
	ModeName string
	Inserts  bool
}

func (b Base) Name() string      { return b.ModeName }
func (b Base) InsertsText() bool { return b.Inserts }
func (b Base) Enter(_ string)    {}
func (b Base) Leave(_ string)    {}

// Manager holds the registered modes and the current one.
type Manager struct {
	mu       sync.RWMutex
	modes    map[string]Mode
	current  Mode
	onSwitch func(from, to string)
}

// NewManager registers the given modes and makes the first one
// current.
func NewManager(modes ...Mode) (*Manager, error) {
	if len(modes) == 0 {
		return nil, errors.New("at least one mode is required")
	}
	m := &Manager{modes: make(map[string]Mode, len(modes))}
	for _, md := range modes {
		if _, dup := m.modes[md.Name()]; dup {
			return nil, fmt.Errorf("duplicate mode %q", md.Name())
		}
		m.modes[md.Name()] = md
	}
	m.current = modes[0]
	return m, nil
}

// Standard returns a manager with the four standard modes, starting
// in normal mode.
func Standard() *Manager {
	m, _ := NewManager(
		Base{ModeName: Normal},
		Base{ModeName: Insert, Inserts: true},
		Base{ModeName: Visual},
		Base{ModeName: Command},
	)
	return m
}

// OnSwitch sets a hook observing every completed switch.
func (m *Manager) OnSwitch(fn func(from, to string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSwitch = fn
}

// Current returns the active mode's name.
func (m *Manager) Current() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Name()
}

// CurrentMode returns the active mode.
func (m *Manager) CurrentMode() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Switch changes the current mode. Switching to the current mode is
// a no-op.
func (m *Manager) Switch(name string) error {
	m.mu.Lock()
	next, ok := m.modes[name]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
	prev := m.current
	if prev.Name() == name {
		m.mu.Unlock()
		return nil
	}
	m.current = next
	hook := m.onSwitch
	m.mu.Unlock()

	prev.Leave(name)
	next.Enter(prev.Name())
	if hook != nil {
		hook(prev.Name(), name)
	}
	return nil
}

// Has reports whether a mode is registered.
func (m *Manager) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.modes[name]
	return ok
}
