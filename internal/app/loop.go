package app

import (
	"strings"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/fathom-editor/fathom/internal/action"
	"github.com/fathom-editor/fathom/internal/dispatch"
	"github.com/fathom-editor/fathom/internal/dispatch/capctx"
	"github.com/fathom-editor/fathom/internal/input/key"
	"github.com/fathom-editor/fathom/internal/input/keymap"
	"github.com/fathom-editor/fathom/internal/input/mode"
	"github.com/fathom-editor/fathom/internal/plugin"
	"github.com/fathom-editor/fathom/internal/registry"
)

// Run drives the terminal event loop until a quit result or a screen
// error. SetScreen must have been called with an initialized screen.
func (a *App) Run() error {
	if a.screen == nil {
		return ErrNoScreen
	}
	defer a.screen.Fini()

	events := make(chan tcell.Event, 32)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	a.render()
	for {
		select {
		case id, ok := <-a.reloadChannel():
			if !ok {
				a.reloads = nil
				continue
			}
			if err := a.plugins.Reload(id); err != nil {
				a.log.Warnf("plugin", "reload %s: %v", id, err)
			}
			a.render()

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch tev := ev.(type) {
			case *tcell.EventResize:
				a.screen.Sync()
			case *tcell.EventKey:
				if err := a.HandleKey(key.FromTcell(tev)); err != nil {
					if err == ErrQuit {
						return nil
					}
					return err
				}
			}
			a.render()
		}
	}
}

// reloadChannel returns the dev-reload channel, or a nil channel that
// never fires when watching is off.
func (a *App) reloadChannel() <-chan string {
	return a.reloads
}

// HandleKey processes one keystroke through the modal input path:
// command-line editing in command mode, direct insertion in inserting
// modes, chord resolution everywhere. It returns ErrQuit when a
// terminal result asked the loop to stop.
func (a *App) HandleKey(ev key.Event) error {
	switch {
	case a.modes.Current() == mode.Command:
		a.handleCommandKey(ev)
	case a.modes.CurrentMode().InsertsText() && isTextKey(ev):
		a.insertRune(ev)
	default:
		a.handleChordKey(ev)
	}
	if a.quit {
		return ErrQuit
	}
	return nil
}

// isTextKey reports whether the event inserts itself in an inserting
// mode rather than feeding the chord resolver.
func isTextKey(ev key.Event) bool {
	if ev.IsRune() {
		return true
	}
	return ev.Key == key.KeySpace && !ev.Mods.Has(key.ModCtrl) && !ev.Mods.Has(key.ModAlt)
}

func (a *App) insertRune(ev key.Event) {
	r := ev.Rune
	if ev.Key == key.KeySpace {
		r = ' '
	}
	if err := a.editor.ApplyEdit(action.InsertAtCursor(string(r))); err != nil {
		a.editor.ShowError(err.Error())
	}
}

// handleCommandKey edits the command line. Enter runs it, Escape
// abandons it; both return to normal mode.
func (a *App) handleCommandKey(ev key.Event) {
	switch {
	case ev.Key == key.KeyEscape:
		_ = a.modes.Switch(mode.Normal)
	case ev.Key == key.KeyEnter:
		line := string(a.cmdline)
		_ = a.modes.Switch(mode.Normal)
		a.runCommandLine(line)
	case ev.Key == key.KeyBackspace:
		if len(a.cmdline) > 0 {
			a.cmdline = a.cmdline[:len(a.cmdline)-1]
		} else {
			_ = a.modes.Switch(mode.Normal)
		}
	case ev.Key == key.KeySpace:
		a.cmdline = append(a.cmdline, ' ')
	case ev.IsRune():
		a.cmdline = append(a.cmdline, ev.Rune)
	}
}

// runCommandLine parses and executes one ex command line. A leading
// slash is a search, everything else is name plus arguments.
func (a *App) runCommandLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if strings.HasPrefix(line, "/") {
		a.editor.SetPattern(line[1:])
		a.dispatch(action.SearchNext(false), false)
		a.drainQueue()
		return
	}
	fields := strings.Fields(line)
	res := a.commands.Run(fields[0], fields[1:])
	a.dispatch(res, false)
	a.drainQueue()
}

// handleChordKey feeds normal/visual/insert special keys through the
// count accumulator and the chord resolver.
func (a *App) handleChordKey(ev key.Event) {
	if a.isCountDigit(ev) {
		a.count = a.count*10 + int(ev.Rune-'0')
		return
	}

	res := a.resolver.Feed(a.modes.Current(), ev)
	switch res.Status {
	case keymap.Pending:
		return
	case keymap.NoMatch:
		a.count = 0
		a.log.Debugf("input", "unbound chord %q in %s mode", res.Chord, a.modes.Current())
		return
	}

	count := a.count
	a.count = 0
	a.runResolved(res, count)
}

// isCountDigit reports whether the keystroke extends a pending count.
// A bare 0 stays a chord (line-start); 0 after other digits counts.
func (a *App) isCountDigit(ev key.Event) bool {
	if !ev.IsRune() || !unicode.IsDigit(ev.Rune) {
		return false
	}
	if a.resolver.PendingChord() != "" {
		return false
	}
	return ev.Rune != '0' || a.count > 0
}

// runResolved executes a resolved binding: plugin actions go through
// their host's snapshot cycle, static actions through the dispatch
// pipeline.
func (a *App) runResolved(res keymap.Resolution, count int) {
	if res.FromPlugin != "" {
		host, err := a.plugins.Get(res.FromPlugin)
		if err != nil {
			a.log.Warnf("input", "binding %q: %v", res.Chord, err)
			return
		}
		in := plugin.ActionInput{Count: count, Extend: a.modes.Current() == mode.Visual}
		if err := host.InvokeAction(res.Action, in); err != nil {
			a.log.Warnf("input", "plugin action %s: %v", res.Action, err)
		}
		a.drainQueue()
		return
	}
	a.RunAction(res.Action, count)
}

// RunAction invokes an action by name. Active plugin actions shadow
// static ones, mirroring chord resolution.
func (a *App) RunAction(name string, count int) {
	if host, ok := a.plugins.FindAction(name); ok {
		in := plugin.ActionInput{Count: count, Extend: a.modes.Current() == mode.Visual}
		if err := host.InvokeAction(name, in); err != nil {
			a.log.Warnf("input", "plugin action %s: %v", name, err)
		}
		a.drainQueue()
		return
	}

	h, ok := a.registry.HandlerByName(registry.KindAction, name)
	if !ok {
		a.editor.ShowError("unknown action: " + name)
		return
	}
	fn, ok := h.(action.Handler)
	if !ok {
		a.log.Errorf("input", "action %s: handler is %T", name, h)
		return
	}

	extend := a.modes.Current() == mode.Visual
	res := fn(a.actionContext(count, extend))
	a.dispatch(res, extend)
	a.drainQueue()
}

// actionContext snapshots editor state for one handler invocation.
func (a *App) actionContext(count int, extend bool) action.Context {
	if count < 1 {
		count = 1
	}
	return action.Context{
		Text:      a.editor.Text(),
		Cursor:    a.editor.Cursor(),
		Selection: a.editor.Selection(),
		Mode:      a.modes.Current(),
		Count:     count,
		Extend:    extend,
		ReadOnly:  a.editor.ReadOnly(),
	}
}

// capabilities builds the capability context for one dispatch. Edit is
// withheld on a read-only buffer so edit results fall through to the
// chain's diagnostics instead of faulting.
func (a *App) capabilities() *capctx.Context {
	ctx := &capctx.Context{
		Selection: a.editor,
		Search:    a.editor,
		Scratch:   a.editor,
		Message:   a.editor,
		Modes:     a.modes,
	}
	if !a.editor.ReadOnly() {
		ctx.Edit = a.editor
	}
	return ctx
}

func (a *App) dispatch(res action.Result, extend bool) {
	if a.pipeline.Dispatch(res, a.capabilities(), extend) == dispatch.Quit {
		a.quit = true
	}
}

// drainQueue runs deferred commands in order. Commands enqueued while
// draining run in the same pass.
func (a *App) drainQueue() {
	a.queue.Drain(func(qc dispatch.QueuedCommand) {
		res := a.commands.Run(qc.Name, qc.Args)
		a.dispatch(res, false)
	})
}
