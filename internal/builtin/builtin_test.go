package builtin_test

import (
	"testing"

	"github.com/fathom-editor/fathom/internal/action"
	"github.com/fathom-editor/fathom/internal/builtin"
	"github.com/fathom-editor/fathom/internal/input/keymap"
	"github.com/fathom-editor/fathom/internal/registry"
)

func buildRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.NewBuilder().Add(builtin.Entries()...).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return reg
}

func TestEntriesRegisterWithoutCollisions(t *testing.T) {
	reg := buildRegistry(t)
	if got := len(reg.Diagnostics()); got != 0 {
		t.Fatalf("Diagnostics() = %d collisions, want 0", got)
	}
	if reg.Count(registry.KindAction) == 0 {
		t.Fatal("no actions registered")
	}
	if reg.Count(registry.KindKeyBinding) == 0 {
		t.Fatal("no keybindings registered")
	}
	if reg.Count(registry.KindOption) != len(builtin.Options()) {
		t.Fatalf("Count(option) = %d, want %d", reg.Count(registry.KindOption), len(builtin.Options()))
	}
}

func TestDefaultBindingsResolve(t *testing.T) {
	reg := buildRegistry(t)
	cases := []struct {
		mode, chord, action string
	}{
		{"normal", "j", "move-down"},
		{"normal", "gg", "buffer-start"},
		{"insert", "<Esc>", "enter-normal"},
		{"visual", "d", "delete-char"},
	}
	for _, tc := range cases {
		key := keymap.BindingKey(tc.mode, tc.chord)
		h, ok := reg.HandlerByName(registry.KindKeyBinding, key)
		if !ok {
			t.Fatalf("binding %q not registered", key)
		}
		b, ok := h.(keymap.Binding)
		if !ok {
			t.Fatalf("binding %q handler is %T, want keymap.Binding", key, h)
		}
		if b.Action != tc.action {
			t.Errorf("binding %q -> %q, want %q", key, b.Action, tc.action)
		}
	}
}

func invoke(t *testing.T, reg *registry.Registry, name string, ctx action.Context) action.Result {
	t.Helper()
	h, ok := reg.HandlerByName(registry.KindAction, name)
	if !ok {
		t.Fatalf("action %q not registered", name)
	}
	fn, ok := h.(action.Handler)
	if !ok {
		t.Fatalf("action %q handler is %T", name, h)
	}
	return fn(ctx)
}

func TestMoveRightStepsGraphemes(t *testing.T) {
	reg := buildRegistry(t)
	text := "aéb"
	res := invoke(t, reg, "move-right", action.Context{Text: text, Cursor: 1, Count: 1})
	if res.Tag != action.TagMotion {
		t.Fatalf("Tag = %v, want motion", res.Tag)
	}
	if res.Selection.Head != 3 {
		t.Errorf("Head = %d, want 3 (past two-byte rune)", res.Selection.Head)
	}
}

func TestMoveLeftHonorsCount(t *testing.T) {
	reg := buildRegistry(t)
	res := invoke(t, reg, "move-left", action.Context{Text: "hello", Cursor: 4, Count: 3})
	if res.Selection.Head != 1 {
		t.Errorf("Head = %d, want 1", res.Selection.Head)
	}
}

func TestMoveExtendKeepsAnchor(t *testing.T) {
	reg := buildRegistry(t)
	ctx := action.Context{
		Text:      "hello",
		Cursor:    2,
		Selection: action.Selection{Anchor: 0, Head: 2},
		Count:     1,
		Extend:    true,
	}
	res := invoke(t, reg, "move-right", ctx)
	if res.Selection.Anchor != 0 || res.Selection.Head != 3 {
		t.Errorf("Selection = %+v, want anchor 0 head 3", res.Selection)
	}
}

func TestMoveDownClampsToShortLine(t *testing.T) {
	reg := buildRegistry(t)
	text := "abcdef\nxy\nqrstuv"
	res := invoke(t, reg, "move-down", action.Context{Text: text, Cursor: 4, Count: 1})
	// Column 4 does not exist on "xy"; land at its end.
	if res.Selection.Head != 9 {
		t.Errorf("Head = %d, want 9", res.Selection.Head)
	}
	res = invoke(t, reg, "move-down", action.Context{Text: text, Cursor: res.Selection.Head, Count: 1})
	if res.Selection.Head != 12 {
		t.Errorf("second Head = %d, want 12", res.Selection.Head)
	}
}

func TestMoveUpAtFirstLineStays(t *testing.T) {
	reg := buildRegistry(t)
	res := invoke(t, reg, "move-up", action.Context{Text: "ab\ncd", Cursor: 1, Count: 1})
	if res.Selection.Head != 1 {
		t.Errorf("Head = %d, want 1", res.Selection.Head)
	}
}

func TestLineBoundaries(t *testing.T) {
	reg := buildRegistry(t)
	text := "ab\ncdef\ngh"
	if res := invoke(t, reg, "line-start", action.Context{Text: text, Cursor: 5, Count: 1}); res.Selection.Head != 3 {
		t.Errorf("line-start Head = %d, want 3", res.Selection.Head)
	}
	if res := invoke(t, reg, "line-end", action.Context{Text: text, Cursor: 5, Count: 1}); res.Selection.Head != 7 {
		t.Errorf("line-end Head = %d, want 7", res.Selection.Head)
	}
	if res := invoke(t, reg, "buffer-end", action.Context{Text: text, Cursor: 0, Count: 1}); res.Selection.Head != len(text) {
		t.Errorf("buffer-end Head = %d, want %d", res.Selection.Head, len(text))
	}
}

func TestDeleteBackUsesGraphemeBoundary(t *testing.T) {
	reg := buildRegistry(t)
	res := invoke(t, reg, "delete-back", action.Context{Text: "aé", Cursor: 3, Count: 1})
	if res.Tag != action.TagEdit {
		t.Fatalf("Tag = %v, want edit", res.Tag)
	}
	if res.Edit.Kind != action.EditDelete || res.Edit.At != 1 || res.Edit.End != 3 {
		t.Errorf("Edit = %+v, want delete [1,3)", res.Edit)
	}
}

func TestDeleteBackAtStartIsNoop(t *testing.T) {
	reg := buildRegistry(t)
	res := invoke(t, reg, "delete-back", action.Context{Text: "ab", Cursor: 0, Count: 1})
	if res.Tag != action.TagOk {
		t.Errorf("Tag = %v, want ok", res.Tag)
	}
}

func TestModeChangeActions(t *testing.T) {
	reg := buildRegistry(t)
	res := invoke(t, reg, "enter-insert", action.Context{Mode: "normal"})
	if res.Tag != action.TagModeChange || res.Mode != "insert" {
		t.Errorf("result = %v, want mode-change(insert)", res)
	}
	res = invoke(t, reg, "quit", action.Context{})
	if res.Tag != action.TagQuit {
		t.Errorf("Tag = %v, want quit", res.Tag)
	}
}
