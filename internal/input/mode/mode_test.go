package mode_test

import (
	"errors"
	"testing"

	"github.com/fathom-editor/fathom/internal/input/mode"
)

func TestStandardModes(t *testing.T) {
	m := mode.Standard()
	if m.Current() != mode.Normal {
		t.Errorf("initial mode = %s", m.Current())
	}
	for _, name := range []string{mode.Normal, mode.Insert, mode.Visual, mode.Command} {
		if !m.Has(name) {
			t.Errorf("missing mode %s", name)
		}
	}
	if !m.Has(mode.Insert) || m.CurrentMode().InsertsText() {
		t.Error("normal mode should not insert text")
	}
}

func TestSwitch(t *testing.T) {
	m := mode.Standard()
	if err := m.Switch(mode.Insert); err != nil {
		t.Fatal(err)
	}
	if m.Current() != mode.Insert {
		t.Errorf("mode = %s", m.Current())
	}
	if !m.CurrentMode().InsertsText() {
		t.Error("insert mode should insert text")
	}

	err := m.Switch("select")
	if !errors.Is(err, mode.ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
	if m.Current() != mode.Insert {
		t.Error("failed switch must not change mode")
	}
}

type hooked struct {
	mode.Base
	entered, left []string
}

func (h *hooked) Enter(prev string) { h.entered = append(h.entered, prev) }
func (h *hooked) Leave(next string) { h.left = append(h.left, next) }

func TestEnterLeaveHooks(t *testing.T) {
	a := &hooked{Base: mode.Base{ModeName: "a"}}
	b := &hooked{Base: mode.Base{ModeName: "b"}}
	m, err := mode.NewManager(a, b)
	if err != nil {
		t.Fatal(err)
	}

	var switches []string
	m.OnSwitch(func(from, to string) {
		switches = append(switches, from+">"+to)
	})

	if err := m.Switch("b"); err != nil {
		t.Fatal(err)
	}
	if len(a.left) != 1 || a.left[0] != "b" {
		t.Errorf("a.left = %v", a.left)
	}
	if len(b.entered) != 1 || b.entered[0] != "a" {
		t.Errorf("b.entered = %v", b.entered)
	}
	if len(switches) != 1 || switches[0] != "a>b" {
		t.Errorf("switches = %v", switches)
	}

	// Switching to the current mode runs no hooks.
	if err := m.Switch("b"); err != nil {
		t.Fatal(err)
	}
	if len(b.entered) != 1 || len(switches) != 1 {
		t.Error("self-switch should be a no-op")
	}
}

func TestDuplicateModeRejected(t *testing.T) {
	_, err := mode.NewManager(
		mode.Base{ModeName: "x"},
		mode.Base{ModeName: "x"},
	)
	if err == nil {
		t.Error("duplicate mode should fail")
	}
}
