package plugin_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fathom-editor/fathom/internal/editor"
	"github.com/fathom-editor/fathom/internal/plugin"
	"github.com/fathom-editor/fathom/internal/plugin/hostctx"
)

// writePlugin lays out a plugin directory with a manifest and entry
// point.
func writePlugin(t *testing.T, name, source string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := `{"name": "` + name + `", "version": "1.0.0"}`
	if err := os.WriteFile(filepath.Join(dir, plugin.ManifestName), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "init.lua"), []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func loadHost(t *testing.T, ed *editor.Editor, name, source string) *plugin.Host {
	t.Helper()
	dir := writePlugin(t, name, source)
	manifest, err := plugin.LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	h := plugin.NewHost(manifest, ed)
	if err := h.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	return h
}

const upcasePlugin = `
local buf = require("ed.buffer")
local cur = require("ed.cursor")

function plugin_init()
  return {
    id = "upcase",
    abi = 1,
    actions = {
      { name = "upcase.insert", priority = 10, fn = function()
          buf.insert("X")
          cur.set_position(0)
        end },
    },
  }
end
`

func TestLifecycle(t *testing.T) {
	ed := editor.New(editor.WithText("abc"))
	h := loadHost(t, ed, "upcase", upcasePlugin)

	if h.State() != plugin.StateRegistered {
		t.Fatalf("state after load = %s", h.State())
	}
	if err := h.Activate(); err != nil {
		t.Fatal(err)
	}
	if h.State() != plugin.StateActive {
		t.Fatalf("state after activate = %s", h.State())
	}
	if err := h.Disable(); err != nil {
		t.Fatal(err)
	}
	if err := h.Enable(); err != nil {
		t.Fatal(err)
	}
	if err := h.Unload(); err != nil {
		t.Fatal(err)
	}
	if h.State() != plugin.StateUnloaded {
		t.Fatalf("state after unload = %s", h.State())
	}
}

func TestInvokeActionAppliesPendingOps(t *testing.T) {
	ed := editor.New(editor.WithText("abc"))
	if err := ed.SetCursor(3); err != nil {
		t.Fatal(err)
	}
	h := loadHost(t, ed, "upcase", upcasePlugin)
	if err := h.Activate(); err != nil {
		t.Fatal(err)
	}

	if err := h.InvokeAction("upcase.insert", plugin.ActionInput{}); err != nil {
		t.Fatal(err)
	}
	if got := ed.Text(); got != "abcX" {
		t.Errorf("text = %q", got)
	}
	if got := ed.Cursor(); got != 0 {
		t.Errorf("cursor = %d, want 0", got)
	}
}

func TestGuestTrapIsIsolated(t *testing.T) {
	ed := editor.New(editor.WithText("doc"))
	h := loadHost(t, ed, "trappy", `
local buf = require("ed.buffer")

function plugin_init()
  return {
    id = "trappy",
    abi = 1,
    actions = {
      { name = "trappy.go", fn = function()
          buf.insert("before-trap")
          error("deliberate fault")
        end },
    },
  }
end
`)
	if err := h.Activate(); err != nil {
		t.Fatal(err)
	}

	err := h.InvokeAction("trappy.go", plugin.ActionInput{})
	if err == nil {
		t.Fatal("expected trap error")
	}
	// Ops queued before the trap still apply.
	if got := ed.Text(); got != "before-trapdoc" {
		t.Errorf("text = %q", got)
	}
	// The plugin stays active; one bad call is not fatal.
	if h.State() != plugin.StateActive {
		t.Errorf("state = %s, want active", h.State())
	}
	// The fault reaches the user.
	msgs := ed.Messages()
	if len(msgs) == 0 || !msgs[len(msgs)-1].IsError {
		t.Errorf("expected an error message, got %v", msgs)
	}
	// The host keeps working.
	if err := h.InvokeAction("trappy.go", plugin.ActionInput{}); err == nil {
		t.Error("second invocation should still trap")
	}
}

func TestABIMismatchDisables(t *testing.T) {
	ed := editor.New()
	dir := writePlugin(t, "oldguest", `
function plugin_init()
  return { id = "oldguest", abi = 99, actions = {} }
end
`)
	manifest, err := plugin.LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	h := plugin.NewHost(manifest, ed)
	err = h.Load()
	if !errors.Is(err, plugin.ErrABIMismatch) {
		t.Fatalf("expected ErrABIMismatch, got %v", err)
	}
	if h.State() != plugin.StateDisabled {
		t.Errorf("state = %s, want disabled", h.State())
	}
	// A mismatched plugin cannot be re-enabled.
	if err := h.Enable(); !errors.Is(err, plugin.ErrABIMismatch) {
		t.Errorf("enable should refuse, got %v", err)
	}
	// Its contributions never run.
	if err := h.InvokeAction("anything", plugin.ActionInput{}); !errors.Is(err, plugin.ErrNotActive) {
		t.Errorf("invoke should refuse, got %v", err)
	}
}

func TestMissingPluginInit(t *testing.T) {
	ed := editor.New()
	dir := writePlugin(t, "empty", `x = 1`)
	manifest, err := plugin.LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	h := plugin.NewHost(manifest, ed)
	if err := h.Load(); !errors.Is(err, plugin.ErrNoInit) {
		t.Errorf("expected ErrNoInit, got %v", err)
	}
	if h.State() != plugin.StateUnloaded {
		t.Errorf("state = %s, want unloaded", h.State())
	}
}

func TestBadRegistration(t *testing.T) {
	ed := editor.New()
	dir := writePlugin(t, "badreg", `
function plugin_init()
  return "not a table"
end
`)
	manifest, err := plugin.LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	h := plugin.NewHost(manifest, ed)
	if err := h.Load(); !errors.Is(err, plugin.ErrBadRegistration) {
		t.Errorf("expected ErrBadRegistration, got %v", err)
	}
}

func TestHooksAndCommands(t *testing.T) {
	ed := editor.New(editor.WithText(""))
	h := loadHost(t, ed, "hooky", `
local buf = require("ed.buffer")
local sys = require("ed.system")

function plugin_init()
  return {
    id = "hooky",
    abi = 1,
    hooks = {
      { event = "buffer_saved", fn = function(input) sys.message("saw " .. input.hook_name) end },
    },
    commands = {
      { name = "hooky.stamp", fn = function(input) buf.insert(input.args[1] or "?") end },
    },
  }
end
`)
	if err := h.Activate(); err != nil {
		t.Fatal(err)
	}

	h.InvokeHook("buffer_saved")
	msgs := ed.Messages()
	if len(msgs) != 1 || msgs[0].Text != "saw buffer_saved" {
		t.Errorf("messages = %v", msgs)
	}

	if err := h.InvokeCommand("hooky.stamp", []string{"hi"}); err != nil {
		t.Fatal(err)
	}
	if got := ed.Text(); got != "hi" {
		t.Errorf("text = %q", got)
	}

	if err := h.InvokeCommand("hooky.nope", nil); !errors.Is(err, plugin.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestActionInputReachesGuest(t *testing.T) {
	ed := editor.New(editor.WithText("abc"))
	h := loadHost(t, ed, "echoer", `
local sys = require("ed.system")

function plugin_init()
  return {
    id = "echoer",
    abi = 1,
    actions = {
      { name = "echoer.report", fn = function(input)
          sys.message(input.action_name .. " x" .. input.count .. " on " .. input.editor_state.text)
        end },
    },
  }
end
`)
	if err := h.Activate(); err != nil {
		t.Fatal(err)
	}
	if err := h.InvokeAction("echoer.report", plugin.ActionInput{Count: 3}); err != nil {
		t.Fatal(err)
	}
	msgs := ed.Messages()
	if len(msgs) != 1 || msgs[0].Text != "echoer.report x3 on abc" {
		t.Errorf("messages = %v", msgs)
	}
}

func TestReturnedOutputTableIsFolded(t *testing.T) {
	ed := editor.New(editor.WithText("abc"))
	if err := ed.SetCursor(3); err != nil {
		t.Fatal(err)
	}
	h := loadHost(t, ed, "folder", `
function plugin_init()
  return {
    id = "folder",
    abi = 1,
    actions = {
      { name = "folder.go", fn = function()
          return { set_cursor = 0, insert_text = ">>", message = "done" }
        end },
    },
  }
end
`)
	if err := h.Activate(); err != nil {
		t.Fatal(err)
	}
	if err := h.InvokeAction("folder.go", plugin.ActionInput{}); err != nil {
		t.Fatal(err)
	}
	// set_cursor folds before insert_text, so the text lands at 0.
	if got := ed.Text(); got != ">>abc" {
		t.Errorf("text = %q", got)
	}
	msgs := ed.Messages()
	if len(msgs) != 1 || msgs[0].Text != "done" {
		t.Errorf("messages = %v", msgs)
	}
}

// orderEditor records the relative order of pending-op application and
// message delivery.
type orderEditor struct {
	*editor.Editor
	events []string
}

func (o *orderEditor) ApplyPending(ops []hostctx.PendingOp) (int, error) {
	o.events = append(o.events, "apply")
	return o.Editor.ApplyPending(ops)
}

func (o *orderEditor) ShowMessage(text string) {
	o.events = append(o.events, "message:"+text)
	o.Editor.ShowMessage(text)
}

func TestMessagesDeliveredAfterPendingOps(t *testing.T) {
	oe := &orderEditor{Editor: editor.New(editor.WithText("abc"))}
	dir := writePlugin(t, "talky", `
local buf = require("ed.buffer")
local sys = require("ed.system")

function plugin_init()
  return {
    id = "talky",
    abi = 1,
    actions = {
      { name = "talky.go", fn = function()
          sys.message("hello")
          buf.insert("x")
        end },
    },
  }
end
`)
	manifest, err := plugin.LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	h := plugin.NewHost(manifest, oe)
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}
	if err := h.Activate(); err != nil {
		t.Fatal(err)
	}
	oe.events = nil

	if err := h.InvokeAction("talky.go", plugin.ActionInput{}); err != nil {
		t.Fatal(err)
	}
	// The guest spoke before it edited, but the message must not
	// reach the user until the queued edit has landed.
	want := []string{"apply", "message:hello"}
	if len(oe.events) != len(want) || oe.events[0] != want[0] || oe.events[1] != want[1] {
		t.Errorf("events = %v, want %v", oe.events, want)
	}
}

func TestConfigDisablesAPIGroup(t *testing.T) {
	source := func() map[string]string {
		return map[string]string{"plugin-api-buffer": "false"}
	}

	dir := writePlugin(t, "wantsbuf", `
require("ed.buffer")
function plugin_init()
  return { id = "wantsbuf", abi = 1 }
end
`)
	manifest, err := plugin.LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	h := plugin.NewHost(manifest, editor.New(), plugin.WithConfigSource(source))
	if err := h.Load(); err == nil {
		t.Error("guest should not reach a group disabled by config")
	}

	dir = writePlugin(t, "wantscur", `
require("ed.cursor")
function plugin_init()
  return { id = "wantscur", abi = 1 }
end
`)
	manifest, err = plugin.LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	h = plugin.NewHost(manifest, editor.New(), plugin.WithConfigSource(source))
	if err := h.Load(); err != nil {
		t.Errorf("other groups should stay available: %v", err)
	}
}

func TestGuestSeesFrozenConfig(t *testing.T) {
	cfg := map[string]string{"theme": "default"}
	ed := editor.New()
	dir := writePlugin(t, "reader", `
local cfg = require("ed.config")
local sys = require("ed.system")

function plugin_init()
  return {
    id = "reader",
    abi = 1,
    actions = {
      { name = "reader.report", fn = function()
          sys.message(cfg.get("theme") or "unset")
        end },
    },
  }
end
`)
	manifest, err := plugin.LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	h := plugin.NewHost(manifest, ed, plugin.WithConfigSource(func() map[string]string {
		out := make(map[string]string, len(cfg))
		for k, v := range cfg {
			out[k] = v
		}
		return out
	}))
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}
	if err := h.Activate(); err != nil {
		t.Fatal(err)
	}

	if err := h.InvokeAction("reader.report", plugin.ActionInput{}); err != nil {
		t.Fatal(err)
	}
	cfg["theme"] = "light"
	if err := h.InvokeAction("reader.report", plugin.ActionInput{}); err != nil {
		t.Fatal(err)
	}
	msgs := ed.Messages()
	if len(msgs) < 2 || msgs[len(msgs)-2].Text != "default" || msgs[len(msgs)-1].Text != "light" {
		t.Errorf("messages = %v", msgs)
	}
}

func TestGuestCannotEscapeSandbox(t *testing.T) {
	ed := editor.New()
	dir := writePlugin(t, "sneaky", `
function plugin_init()
  local ok = pcall(function() return require("os") end)
  if ok then error("sandbox breached") end
  return { id = "sneaky", abi = 1 }
end
`)
	manifest, err := plugin.LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	h := plugin.NewHost(manifest, ed)
	if err := h.Load(); err != nil {
		t.Fatalf("load should succeed with os blocked: %v", err)
	}
}
