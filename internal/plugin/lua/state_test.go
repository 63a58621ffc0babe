package lua_test

import (
	"strings"
	"testing"
	"time"

	glua "github.com/yuin/gopher-lua"

	"github.com/fathom-editor/fathom/internal/plugin/lua"
)

func TestDoStringAndCall(t *testing.T) {
	s := lua.NewState()
	defer s.Close()

	if err := s.DoString(`function add(a, b) return a + b end`); err != nil {
		t.Fatal(err)
	}
	results, err := s.Call("add", glua.LNumber(2), glua.LNumber(3))
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0] != glua.LNumber(5) {
		t.Errorf("results = %v", results)
	}
}

func TestCallMissingFunction(t *testing.T) {
	s := lua.NewState()
	defer s.Close()

	if _, err := s.Call("nope"); err == nil {
		t.Error("expected error for missing function")
	}
}

func TestGuestErrorDoesNotPoisonState(t *testing.T) {
	s := lua.NewState()
	defer s.Close()

	if err := s.DoString(`function boom() error("guest fault") end
function fine() return "ok" end`); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Call("boom"); err == nil {
		t.Fatal("expected guest error")
	}
	results, err := s.Call("fine")
	if err != nil {
		t.Fatalf("state unusable after guest error: %v", err)
	}
	if len(results) != 1 || results[0].String() != "ok" {
		t.Errorf("results = %v", results)
	}
}

func TestRunawayGuestIsInterrupted(t *testing.T) {
	s := lua.NewState(lua.WithExecutionTimeout(50 * time.Millisecond))
	defer s.Close()

	if err := s.DoString(`function spin() while true do end end
function fine() return "ok" end`); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.Call("spin")
		done <- err
	}()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected deadline error from runaway guest")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runaway guest was not interrupted")
	}

	// The deadline is per execution; the state keeps working.
	results, err := s.Call("fine")
	if err != nil {
		t.Fatalf("state unusable after interrupt: %v", err)
	}
	if len(results) != 1 || results[0].String() != "ok" {
		t.Errorf("results = %v", results)
	}
}

func TestSandboxBlocksUnsafeModules(t *testing.T) {
	s := lua.NewState()
	defer s.Close()

	for _, mod := range []string{"io", "os", "debug", "socket"} {
		err := s.DoString(`require("` + mod + `")`)
		if err == nil {
			t.Errorf("require(%q) should fail", mod)
		}
	}
}

func TestSandboxRemovesLoaders(t *testing.T) {
	s := lua.NewState()
	defer s.Close()

	for _, fn := range []string{"dofile", "loadfile", "load", "loadstring"} {
		err := s.DoString(fn + `("x")`)
		if err == nil || !strings.Contains(err.Error(), "nil") {
			t.Errorf("%s should be removed, err = %v", fn, err)
		}
	}
}

func TestSandboxAllowsSafeModules(t *testing.T) {
	s := lua.NewState()
	defer s.Close()

	err := s.DoString(`
local str = require("string")
local tbl = require("table")
local mth = require("math")
result = str.upper("hi")`)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.GetGlobal("result").String(); got != "HI" {
		t.Errorf("result = %q", got)
	}
}

func TestPreloadedEditorModule(t *testing.T) {
	s := lua.NewState()
	defer s.Close()

	s.Preload("ed.demo", func(L *glua.LState) int {
		mod := L.NewTable()
		L.SetField(mod, "greet", L.NewFunction(func(L *glua.LState) int {
			L.Push(glua.LString("hello " + L.CheckString(1)))
			return 1
		}))
		L.Push(mod)
		return 1
	})

	if err := s.DoString(`
local demo = require("ed.demo")
greeting = demo.greet("guest")`); err != nil {
		t.Fatal(err)
	}
	if got := s.GetGlobal("greeting").String(); got != "hello guest" {
		t.Errorf("greeting = %q", got)
	}
}

func TestClosedState(t *testing.T) {
	s := lua.NewState()
	s.Close()

	if err := s.DoString(`x = 1`); err != lua.ErrStateClosed {
		t.Errorf("expected ErrStateClosed, got %v", err)
	}
	if !s.IsClosed() {
		t.Error("IsClosed = false after Close")
	}
}
