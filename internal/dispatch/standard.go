package dispatch

import (
	"github.com/fathom-editor/fathom/internal/action"
	"github.com/fathom-editor/fathom/internal/dispatch/capctx"
	"github.com/fathom-editor/fathom/internal/diag"
)

// RegisterStandard wires the core result handlers into a pipeline.
// Registration order within each tag is the dispatch order. Quit is the
// only terminal tag in the core set.
func RegisterStandard(p *Pipeline, queue *CommandQueue, log *diag.Log) {
	p.Register(action.TagOk, NewHandlerFunc("core.ok", nil,
		func(action.Result, *capctx.Context, bool) Outcome {
			return Handled
		}))

	p.Register(action.TagEdit, NewHandlerFunc("core.edit", nil,
		func(res action.Result, ctx *capctx.Context, _ bool) Outcome {
			if ctx.Edit == nil {
				// Read-only buffer or withheld capability; let the
				// chain fall through rather than fault.
				return NotHandled
			}
			if err := ctx.Edit.ApplyEdit(res.Edit); err != nil {
				if ctx.Message != nil {
					ctx.Message.ShowError(err.Error())
				}
				if log != nil {
					log.Warnf("dispatch", "edit failed: %v", err)
				}
				return Handled
			}
			return Handled
		}))

	p.Register(action.TagMotion, NewHandlerFunc("core.motion", nil,
		func(res action.Result, ctx *capctx.Context, extend bool) Outcome {
			if ctx.Selection == nil {
				return NotHandled
			}
			sel := res.Selection
			if extend {
				// Keep the existing anchor, move only the head.
				sel.Anchor = ctx.Selection.Selection().Anchor
			}
			if err := ctx.Selection.SetSelection(sel); err != nil {
				if log != nil {
					log.Warnf("dispatch", "motion rejected: %v", err)
				}
				return Handled
			}
			return Handled
		}))

	p.Register(action.TagModeChange, NewHandlerFunc("core.mode", nil,
		func(res action.Result, ctx *capctx.Context, _ bool) Outcome {
			if ctx.Modes == nil {
				return NotHandled
			}
			if err := ctx.Modes.Switch(res.Mode); err != nil {
				if ctx.Message != nil {
					ctx.Message.ShowError(err.Error())
				}
				return Handled
			}
			return Handled
		}))

	p.Register(action.TagOpenScratch, NewHandlerFunc("core.scratch.open", nil,
		func(res action.Result, ctx *capctx.Context, _ bool) Outcome {
			if ctx.Scratch == nil {
				return NotHandled
			}
			if err := ctx.Scratch.OpenScratch(res.Focus); err != nil {
				if ctx.Message != nil {
					ctx.Message.ShowError(err.Error())
				}
			}
			return Handled
		}))

	p.Register(action.TagCloseScratch, NewHandlerFunc("core.scratch.close", nil,
		func(_ action.Result, ctx *capctx.Context, _ bool) Outcome {
			if ctx.Scratch == nil {
				return NotHandled
			}
			if err := ctx.Scratch.CloseScratch(); err != nil {
				if ctx.Message != nil {
					ctx.Message.ShowError(err.Error())
				}
			}
			return Handled
		}))

	p.Register(action.TagSearchNext, NewHandlerFunc("core.search", nil,
		func(res action.Result, ctx *capctx.Context, _ bool) Outcome {
			if ctx.Search == nil || ctx.Selection == nil {
				return NotHandled
			}
			pattern := ctx.Search.LastPattern()
			if pattern == "" {
				if ctx.Message != nil {
					ctx.Message.ShowMessage("no previous search")
				}
				return Handled
			}
			cur := ctx.Selection.Selection()
			start, end, ok, err := ctx.Search.FindNext(pattern, cur.End())
			if err != nil {
				if ctx.Message != nil {
					ctx.Message.ShowError(err.Error())
				}
				return Handled
			}
			if !ok {
				if ctx.Message != nil {
					ctx.Message.ShowMessage("pattern not found: " + pattern)
				}
				return Handled
			}
			// Single-selection editor: AddSelection degrades to
			// selecting the match, same as a plain advance.
			_ = ctx.Selection.SetSelection(action.Selection{Anchor: start, Head: end})
			return Handled
		}))

	p.Register(action.TagCommand, NewHandlerFunc("core.defer", nil,
		func(res action.Result, _ *capctx.Context, _ bool) Outcome {
			queue.Enqueue(res.Command, res.Args)
			return Handled
		}))

	p.RegisterTerminal(action.TagQuit)
	p.Register(action.TagQuit, NewHandlerFunc("core.quit", nil,
		func(action.Result, *capctx.Context, bool) Outcome {
			return Quit
		}))
}
