package plugin

import (
	"fmt"

	"github.com/google/uuid"
	glua "github.com/yuin/gopher-lua"

	"github.com/fathom-editor/fathom/internal/diag"
	"github.com/fathom-editor/fathom/internal/plugin/hostapi"
	"github.com/fathom-editor/fathom/internal/plugin/hostctx"
	"github.com/fathom-editor/fathom/internal/plugin/lua"
)

// ABIVersion is the host's guest interface version. A plugin whose
// registration declares a different abi is disabled at load.
const ABIVersion = 1

// HostEditor is what a plugin host needs from the editor. The editor
// package satisfies it directly.
type HostEditor interface {
	Snapshot() *hostctx.Context
	ApplyPending(ops []hostctx.PendingOp) (applied int, err error)
	ShowMessage(text string)
	ShowError(text string)
}

// ActionReg is one action a guest registered.
type ActionReg struct {
	Name     string
	Key      string
	Priority int
	fn       *glua.LFunction
}

// HookReg is one event hook a guest registered.
type HookReg struct {
	Event string
	fn    *glua.LFunction
}

// CommandReg is one command a guest registered.
type CommandReg struct {
	Name string
	fn   *glua.LFunction
}

// Registration is the contribution set plugin_init returned.
type Registration struct {
	ID       string
	ABI      int
	Actions  []ActionReg
	Hooks    []HookReg
	Commands []CommandReg
}

// Host runs one plugin: its interpreter, its registration, and its
// lifecycle state.
//
// A Host is driven from the event loop goroutine only. The current
// invocation context is a plain field for that reason; guest API
// callbacks read it on the same goroutine that set it.
type Host struct {
	manifest *Manifest
	instance string
	editor   HostEditor
	config   func() map[string]string
	log      *diag.Log

	state   State
	vm      *lua.State
	reg     Registration
	current *hostctx.Context
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithConfigSource supplies the option values copied into each
// invocation's snapshot. The same source gates API groups at load.
func WithConfigSource(fn func() map[string]string) HostOption {
	return func(h *Host) { h.config = fn }
}

// WithHostLog attaches a diagnostic log.
func WithHostLog(log *diag.Log) HostOption {
	return func(h *Host) { h.log = log }
}

// NewHost creates an unloaded host for a manifest.
func NewHost(manifest *Manifest, editor HostEditor, opts ...HostOption) *Host {
	h := &Host{
		manifest: manifest,
		instance: uuid.NewString(),
		editor:   editor,
		state:    StateUnloaded,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ID returns the plugin's registered id, falling back to the manifest
// name before registration completes.
func (h *Host) ID() string {
	if h.reg.ID != "" {
		return h.reg.ID
	}
	return h.manifest.Name
}

// Instance returns the unique id of this load of the plugin.
func (h *Host) Instance() string { return h.instance }

// Manifest returns the plugin's manifest.
func (h *Host) Manifest() *Manifest { return h.manifest }

// State returns the lifecycle state.
func (h *Host) State() State { return h.state }

// Registration returns the contribution set. Valid once the host has
// reached StateRegistered.
func (h *Host) Registration() Registration { return h.reg }

func (h *Host) transition(next State) error {
	if !h.state.CanTransition(next) {
		return fmt.Errorf("%w: %s: %s to %s", ErrInvalidTransition, h.ID(), h.state, next)
	}
	h.state = next
	return nil
}

// Load runs the entry point and collects the registration returned by
// plugin_init. On success the host is StateRegistered. An ABI
// mismatch leaves it StateDisabled; any other failure unloads it.
func (h *Host) Load() error {
	if err := h.transition(StateLoading); err != nil {
		return err
	}

	h.vm = lua.NewState()
	hostapi.Install(h.vm, &hostapi.Env{
		Current: func() *hostctx.Context { return h.current },
	}, h.enabledGroups())

	if err := h.vm.DoFile(h.manifest.EntryPath()); err != nil {
		h.teardown()
		return fmt.Errorf("plugin %s: entry point: %w", h.manifest.Name, err)
	}

	results, err := h.vm.Call("plugin_init")
	if err != nil {
		h.teardown()
		return fmt.Errorf("plugin %s: %w: %v", h.manifest.Name, ErrNoInit, err)
	}
	if len(results) == 0 {
		h.teardown()
		return fmt.Errorf("plugin %s: %w: plugin_init returned nothing", h.manifest.Name, ErrBadRegistration)
	}

	reg, err := parseRegistration(results[0])
	if err != nil {
		h.teardown()
		return fmt.Errorf("plugin %s: %w", h.manifest.Name, err)
	}
	if reg.ID == "" {
		reg.ID = h.manifest.Name
	}
	h.reg = reg

	if reg.ABI != ABIVersion {
		// Keep the interpreter so the user can inspect the plugin,
		// but never run its contributions.
		h.state = StateDisabled
		h.errorf("plugin %s declares abi %d, host speaks %d; disabled",
			reg.ID, reg.ABI, ABIVersion)
		return fmt.Errorf("plugin %s: %w: got %d, want %d",
			reg.ID, ErrABIMismatch, reg.ABI, ABIVersion)
	}

	h.state = StateRegistered
	h.infof("plugin %s %s registered (%d actions, %d hooks, %d commands)",
		reg.ID, h.manifest.Version, len(reg.Actions), len(reg.Hooks), len(reg.Commands))
	return nil
}

// enabledGroups intersects the manifest's API request with the host
// configuration, so an operator can withhold a capability group from
// every plugin regardless of what manifests ask for.
func (h *Host) enabledGroups() map[string]bool {
	enabled := h.manifest.APIGroups()
	if enabled == nil {
		names := hostapi.GroupNames()
		enabled = make(map[string]bool, len(names))
		for _, name := range names {
			enabled[name] = true
		}
	}
	if h.config != nil {
		cfg := h.config()
		for name := range enabled {
			if cfg["plugin-api-"+name] == "false" {
				delete(enabled, name)
			}
		}
	}
	return enabled
}

// Activate makes the plugin's contributions live and calls its
// optional plugin_activate function. A trap in plugin_activate is
// reported but does not deactivate the plugin.
func (h *Host) Activate() error {
	if err := h.transition(StateActive); err != nil {
		return err
	}
	if fn, ok := h.vm.GetGlobal("plugin_activate").(*glua.LFunction); ok {
		err := h.invoke(fn, func(ctx *hostctx.Context) glua.LValue {
			return hookInputTable(h.vm.L, "activate", ctx)
		})
		if err != nil {
			h.errorf("plugin %s: plugin_activate: %v", h.ID(), err)
		}
	}
	return nil
}

// Disable suspends the plugin's contributions without unloading it.
func (h *Host) Disable() error {
	return h.transition(StateDisabled)
}

// Enable re-activates a disabled plugin, unless it was disabled for
// an ABI mismatch.
func (h *Host) Enable() error {
	if h.state == StateDisabled && h.reg.ABI != ABIVersion {
		return fmt.Errorf("plugin %s: %w: cannot enable", h.ID(), ErrABIMismatch)
	}
	return h.transition(StateActive)
}

// Unload closes the interpreter. The host returns to StateUnloaded
// and can be loaded again.
func (h *Host) Unload() error {
	if err := h.transition(StateUnloaded); err != nil {
		return err
	}
	h.teardown()
	h.reg = Registration{}
	return nil
}

func (h *Host) teardown() {
	if h.vm != nil {
		h.vm.Close()
		h.vm = nil
	}
	h.state = StateUnloaded
}

// InvokeAction runs a registered action by name. The guest receives
// an ActionInput table and may answer with an output table, folded
// into the pending-op queue.
func (h *Host) InvokeAction(name string, in ActionInput) error {
	for _, a := range h.reg.Actions {
		if a.Name == name {
			return h.guarded(a.fn, func(ctx *hostctx.Context) glua.LValue {
				return actionInputTable(h.vm.L, name, in, ctx)
			})
		}
	}
	return fmt.Errorf("plugin %s: action %q: %w", h.ID(), name, ErrNotFound)
}

// InvokeHook runs every hook registered for an event.
func (h *Host) InvokeHook(event string) {
	for _, hk := range h.reg.Hooks {
		if hk.Event == event {
			err := h.guarded(hk.fn, func(ctx *hostctx.Context) glua.LValue {
				return hookInputTable(h.vm.L, event, ctx)
			})
			if err != nil {
				h.errorf("plugin %s: hook %s: %v", h.ID(), event, err)
			}
		}
	}
}

// InvokeCommand runs a registered command with its arguments.
func (h *Host) InvokeCommand(name string, args []string) error {
	for _, c := range h.reg.Commands {
		if c.Name == name {
			return h.guarded(c.fn, func(ctx *hostctx.Context) glua.LValue {
				return commandInputTable(h.vm.L, name, args, ctx)
			})
		}
	}
	return fmt.Errorf("plugin %s: command %q: %w", h.ID(), name, ErrNotFound)
}

// guarded rejects invocations outside StateActive, then runs the
// snapshot / call / apply cycle.
func (h *Host) guarded(fn *glua.LFunction, payload func(*hostctx.Context) glua.LValue) error {
	if h.state != StateActive {
		return fmt.Errorf("plugin %s: %w (%s)", h.ID(), ErrNotActive, h.state)
	}
	return h.invoke(fn, payload)
}

// invoke snapshots the editor, runs the guest function, and applies
// whatever the guest queued. A guest trap still applies the ops
// queued before the trap; the trap itself surfaces as a diagnostic
// and an error return, never as a crash or a deactivation.
func (h *Host) invoke(fn *glua.LFunction, payload func(*hostctx.Context) glua.LValue) error {
	ctx := h.editor.Snapshot()
	if h.config != nil {
		ctx.Config = h.config()
	}
	h.current = ctx
	ret, callErr := h.vm.CallValue(fn, payload(ctx))
	h.current = nil

	if callErr == nil && len(ret) > 0 {
		foldOutput(ctx, ret[0])
	}

	pending := ctx.Pending()
	applied, applyErr := h.editor.ApplyPending(pending)
	h.flushMessages(ctx)

	if callErr != nil {
		h.errorf("plugin %s trapped: %v (%d of %d queued ops applied)",
			h.ID(), callErr, applied, len(pending))
		h.editor.ShowError(fmt.Sprintf("plugin %s: %v", h.ID(), callErr))
		return fmt.Errorf("plugin %s: %w", h.ID(), callErr)
	}
	if applyErr != nil {
		h.errorf("plugin %s: %v", h.ID(), applyErr)
		return applyErr
	}
	return nil
}

// flushMessages emits the guest's queued notifications. They follow
// pending-op application so the user never sees a message about an
// edit that has not landed yet.
func (h *Host) flushMessages(ctx *hostctx.Context) {
	for _, m := range ctx.Messages() {
		if m.IsError {
			h.editor.ShowError(m.Text)
		} else {
			h.editor.ShowMessage(m.Text)
		}
	}
}

func (h *Host) infof(format string, args ...any) {
	if h.log != nil {
		h.log.Infof("plugin", format, args...)
	}
}

func (h *Host) errorf(format string, args ...any) {
	if h.log != nil {
		h.log.Errorf("plugin", format, args...)
	}
}

// parseRegistration converts plugin_init's return value.
func parseRegistration(v glua.LValue) (Registration, error) {
	tbl, ok := v.(*glua.LTable)
	if !ok {
		return Registration{}, fmt.Errorf("%w: plugin_init returned %s", ErrBadRegistration, v.Type())
	}

	var reg Registration
	reg.ID = lstring(tbl.RawGetString("id"))
	abi, ok := tbl.RawGetString("abi").(glua.LNumber)
	if !ok {
		return Registration{}, fmt.Errorf("%w: abi is required", ErrBadRegistration)
	}
	reg.ABI = int(abi)

	var parseErr error
	eachEntry(tbl.RawGetString("actions"), func(entry *glua.LTable) {
		fn, ok := entry.RawGetString("fn").(*glua.LFunction)
		name := lstring(entry.RawGetString("name"))
		if !ok || name == "" {
			parseErr = fmt.Errorf("%w: action needs name and fn", ErrBadRegistration)
			return
		}
		reg.Actions = append(reg.Actions, ActionReg{
			Name:     name,
			Key:      lstring(entry.RawGetString("key")),
			Priority: lint(entry.RawGetString("priority")),
			fn:       fn,
		})
	})
	eachEntry(tbl.RawGetString("hooks"), func(entry *glua.LTable) {
		fn, ok := entry.RawGetString("fn").(*glua.LFunction)
		event := lstring(entry.RawGetString("event"))
		if !ok || event == "" {
			parseErr = fmt.Errorf("%w: hook needs event and fn", ErrBadRegistration)
			return
		}
		reg.Hooks = append(reg.Hooks, HookReg{Event: event, fn: fn})
	})
	eachEntry(tbl.RawGetString("commands"), func(entry *glua.LTable) {
		fn, ok := entry.RawGetString("fn").(*glua.LFunction)
		name := lstring(entry.RawGetString("name"))
		if !ok || name == "" {
			parseErr = fmt.Errorf("%w: command needs name and fn", ErrBadRegistration)
			return
		}
		reg.Commands = append(reg.Commands, CommandReg{Name: name, fn: fn})
	})
	if parseErr != nil {
		return Registration{}, parseErr
	}
	return reg, nil
}

func eachEntry(v glua.LValue, fn func(entry *glua.LTable)) {
	list, ok := v.(*glua.LTable)
	if !ok {
		return
	}
	list.ForEach(func(_, item glua.LValue) {
		if entry, ok := item.(*glua.LTable); ok {
			fn(entry)
		}
	})
}

func lstring(v glua.LValue) string {
	if s, ok := v.(glua.LString); ok {
		return string(s)
	}
	return ""
}

func lint(v glua.LValue) int {
	if n, ok := v.(glua.LNumber); ok {
		return int(n)
	}
	return 0
}
