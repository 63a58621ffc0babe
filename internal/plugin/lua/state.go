package lua

import (
	"context"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultExecutionTimeout bounds one guest execution. The VM checks
// the deadline between instructions, so even a guest that never calls
// back into the host unwinds with an error instead of blocking the
// event loop.
const DefaultExecutionTimeout = 5 * time.Second

// State is a sandboxed Lua interpreter for one extension guest.
//
// gopher-lua's LState is not goroutine-safe. The mutex serializes
// access from Go; Lua execution itself is single-threaded.
type State struct {
	L *lua.LState

	mu      sync.Mutex
	timeout time.Duration
	closed  bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout sets the per-execution deadline. Zero disables
// the bound.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) { s.timeout = d }
}

// NewState creates a sandboxed state with only the safe standard
// libraries open.
func NewState(opts ...StateOption) *State {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenPackage(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	// io, os, debug stay closed. Guests observe the editor through
	// the ed modules and nothing else.

	NewSandbox(L).Install()

	s := &State{L: L, timeout: DefaultExecutionTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Preload registers a module loader so guest code can require(name).
// Only the "ed" namespace passes the sandboxed require, so name must
// be "ed" or start with "ed.".
func (s *State) Preload(name string, loader lua.LGFunction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.L.PreloadModule(name, loader)
}

// DoString executes guest source code, recovering from panics so a
// faulting guest surfaces as an error rather than a crash.
func (s *State) DoString(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStateClosed
	}
	return s.bounded(func() error {
		return s.L.DoString(code)
	})
}

// DoFile executes a guest source file.
func (s *State) DoFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStateClosed
	}
	return s.bounded(func() error {
		return s.L.DoFile(path)
	})
}

// Call invokes a global guest function. A nil result slice means the
// function returned nothing.
func (s *State) Call(fn string, args ...lua.LValue) ([]lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStateClosed
	}

	fnVal := s.L.GetGlobal(fn)
	if fnVal == lua.LNil {
		return nil, fmt.Errorf("function %q not found", fn)
	}
	if fnVal.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%w: %q is a %s", ErrNotAFunction, fn, fnVal.Type())
	}

	top := s.L.GetTop()
	s.L.Push(fnVal)
	for _, arg := range args {
		s.L.Push(arg)
	}

	err := s.bounded(func() error {
		return s.L.PCall(len(args), lua.MultRet, nil)
	})
	if err != nil {
		s.L.SetTop(top)
		return nil, err
	}

	nRet := s.L.GetTop() - top
	if nRet <= 0 {
		return nil, nil
	}
	results := make([]lua.LValue, nRet)
	for i := range results {
		results[i] = s.L.Get(top + i + 1)
	}
	s.L.Pop(nRet)
	return results, nil
}

// CallValue invokes a Lua function value directly, for callbacks the
// guest handed to the host at registration time.
func (s *State) CallValue(fn *lua.LFunction, args ...lua.LValue) ([]lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStateClosed
	}

	top := s.L.GetTop()
	s.L.Push(fn)
	for _, arg := range args {
		s.L.Push(arg)
	}

	err := s.bounded(func() error {
		return s.L.PCall(len(args), lua.MultRet, nil)
	})
	if err != nil {
		s.L.SetTop(top)
		return nil, err
	}

	nRet := s.L.GetTop() - top
	if nRet <= 0 {
		return nil, nil
	}
	results := make([]lua.LValue, nRet)
	for i := range results {
		results[i] = s.L.Get(top + i + 1)
	}
	s.L.Pop(nRet)
	return results, nil
}

// GetGlobal returns a guest global, LNil after Close.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// bounded runs one guest execution under the deadline. The context is
// attached for the duration of the call and removed afterwards so the
// state stays reusable.
func (s *State) bounded(fn func() error) error {
	if s.timeout <= 0 {
		return s.recovered(fn)
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()
	return s.recovered(fn)
}

func (s *State) recovered(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// IsClosed reports whether Close has been called.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the interpreter. Further calls return ErrStateClosed.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.L.Close()
	s.closed = true
}
