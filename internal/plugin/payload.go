package plugin

import (
	glua "github.com/yuin/gopher-lua"

	"github.com/fathom-editor/fathom/internal/plugin/hostctx"
)

// ActionInput carries the modifiers of one action invocation into the
// guest.
type ActionInput struct {
	Count  int
	Extend bool
	Char   rune
}

// editorState marshals the snapshot fields every guest payload
// carries.
func editorState(L *glua.LState, ctx *hostctx.Context) *glua.LTable {
	tbl := L.NewTable()
	L.SetField(tbl, "text", glua.LString(ctx.Text))
	L.SetField(tbl, "cursor", glua.LNumber(ctx.Cursor))
	L.SetField(tbl, "selection_anchor", glua.LNumber(ctx.SelAnchor))
	L.SetField(tbl, "selection_head", glua.LNumber(ctx.SelHead))
	L.SetField(tbl, "mode", glua.LString(ctx.Mode))
	return tbl
}

func actionInputTable(L *glua.LState, name string, in ActionInput, ctx *hostctx.Context) glua.LValue {
	tbl := L.NewTable()
	L.SetField(tbl, "action_name", glua.LString(name))
	L.SetField(tbl, "count", glua.LNumber(in.Count))
	L.SetField(tbl, "extend", glua.LBool(in.Extend))
	if in.Char != 0 {
		L.SetField(tbl, "char_arg", glua.LString(string(in.Char)))
	}
	L.SetField(tbl, "editor_state", editorState(L, ctx))
	return tbl
}

func hookInputTable(L *glua.LState, event string, ctx *hostctx.Context) glua.LValue {
	tbl := L.NewTable()
	L.SetField(tbl, "hook_name", glua.LString(event))
	L.SetField(tbl, "editor_state", editorState(L, ctx))
	L.SetField(tbl, "extra", L.NewTable())
	return tbl
}

func commandInputTable(L *glua.LState, name string, args []string, ctx *hostctx.Context) glua.LValue {
	tbl := L.NewTable()
	L.SetField(tbl, "command_name", glua.LString(name))
	largs := L.NewTable()
	for _, a := range args {
		largs.Append(glua.LString(a))
	}
	L.SetField(tbl, "args", largs)
	L.SetField(tbl, "editor_state", editorState(L, ctx))
	return tbl
}

// foldOutput translates a returned output table into the pending
// operations and queued messages the equivalent API calls would have
// produced, appended after anything the guest queued explicitly. Fold
// order is fixed: cursor, selection, insert, delete, open_file, then
// message and error.
func foldOutput(ctx *hostctx.Context, v glua.LValue) {
	tbl, ok := v.(*glua.LTable)
	if !ok {
		return
	}
	if n, ok := tbl.RawGetString("set_cursor").(glua.LNumber); ok {
		ctx.Request(hostctx.PendingOp{Kind: hostctx.OpSetCursor, Offset: int(n)})
	}
	if sel, ok := tbl.RawGetString("set_selection").(*glua.LTable); ok {
		ctx.Request(hostctx.PendingOp{
			Kind:   hostctx.OpSetSelection,
			Anchor: lint(sel.RawGetString("anchor")),
			Head:   lint(sel.RawGetString("head")),
		})
	}
	if s := lstring(tbl.RawGetString("insert_text")); s != "" {
		ctx.Request(hostctx.PendingOp{Kind: hostctx.OpInsert, Text: s})
	}
	if b, ok := tbl.RawGetString("delete").(glua.LBool); ok && bool(b) {
		ctx.Request(hostctx.PendingOp{Kind: hostctx.OpDelete})
	}
	if s := lstring(tbl.RawGetString("open_file")); s != "" {
		ctx.Request(hostctx.PendingOp{Kind: hostctx.OpOpenFile, Path: s})
	}
	if s := lstring(tbl.RawGetString("message")); s != "" {
		ctx.Post(s, false)
	}
	if s := lstring(tbl.RawGetString("error")); s != "" {
		ctx.Post(s, true)
	}
}
