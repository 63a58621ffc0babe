// Package command runs ex-style commands. Commands live in the static
// registry as command descriptors; plugin commands are consulted
// first, matching action lookup. A command failure is one message to
// the user, never a stopped editor.
package command

import (
	"fmt"

	"github.com/fathom-editor/fathom/internal/action"
	"github.com/fathom-editor/fathom/internal/config"
	"github.com/fathom-editor/fathom/internal/diag"
	"github.com/fathom-editor/fathom/internal/editor"
	"github.com/fathom-editor/fathom/internal/plugin"
	"github.com/fathom-editor/fathom/internal/registry"
)

// Context carries what command handlers operate on.
type Context struct {
	Editor   *editor.Editor
	Config   *config.Store
	Registry *registry.Registry
	Plugins  *plugin.Manager
	Log      *diag.Log
}

// Handler executes one command.
type Handler func(ctx *Context, args []string) (action.Result, error)

// Error is a user-facing command failure. Anything else wrapping out
// of a handler is reported with the command name prefixed.
type Error struct {
	Command string
	Message string
}

func (e *Error) Error() string {
	return e.Command + ": " + e.Message
}

// Errorf builds a user-facing command failure.
func Errorf(command, format string, args ...any) *Error {
	return &Error{Command: command, Message: fmt.Sprintf(format, args...)}
}

// Runner resolves and executes commands.
type Runner struct {
	ctx *Context
}

// NewRunner creates a runner over a command context.
func NewRunner(ctx *Context) *Runner {
	return &Runner{ctx: ctx}
}

// Run executes a command by name. Plugin commands shadow static ones.
// Failures become a single error message; the returned result is what
// the dispatch pipeline should process next.
func (r *Runner) Run(name string, args []string) action.Result {
	if r.ctx.Plugins != nil {
		if host, ok := r.ctx.Plugins.FindCommand(name); ok {
			if err := host.InvokeCommand(name, args); err != nil {
				r.fail(name, err)
			}
			return action.Ok()
		}
	}

	handlerAny, ok := r.ctx.Registry.HandlerByName(registry.KindCommand, name)
	if !ok {
		r.ctx.Editor.ShowError(fmt.Sprintf("unknown command: %s", name))
		return action.Ok()
	}
	handler, ok := handlerAny.(Handler)
	if !ok {
		r.fail(name, fmt.Errorf("registered without a command handler"))
		return action.Ok()
	}

	res, err := handler(r.ctx, args)
	if err != nil {
		r.fail(name, err)
		return action.Ok()
	}
	return res
}

// fail reports a command failure as one user message plus a
// diagnostic record.
func (r *Runner) fail(name string, err error) {
	if cerr, ok := err.(*Error); ok {
		r.ctx.Editor.ShowError(cerr.Error())
	} else {
		r.ctx.Editor.ShowError(fmt.Sprintf("%s: %v", name, err))
	}
	if r.ctx.Log != nil {
		r.ctx.Log.Errorf("command", "%s: %v", name, err)
	}
}
