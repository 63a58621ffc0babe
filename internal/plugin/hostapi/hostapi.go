// Package hostapi declares the functions an extension guest can call.
// The API is a table of groups; each group becomes a preloaded
// "ed.<group>" Lua module. Reads come from the invocation's snapshot
// and writes become pending operations, so a guest never touches live
// editor state from inside a call.
package hostapi

import (
	"strings"

	glua "github.com/yuin/gopher-lua"

	"github.com/fathom-editor/fathom/internal/plugin/hostctx"
	"github.com/fathom-editor/fathom/internal/plugin/lua"
)

// Env supplies the host-side services the API groups draw on beyond
// the per-call snapshot.
type Env struct {
	// Current returns the snapshot context for the invocation in
	// progress, nil outside any invocation.
	Current func() *hostctx.Context
}

// Func is one guest-callable function within a group.
type Func struct {
	Name string
	Fn   func(env *Env, ctx *hostctx.Context, L *glua.LState) int
}

// Group is a named set of functions exposed as one ed.<name> module.
type Group struct {
	Name  string
	Funcs []Func
}

// Groups returns the full API declaration. Hosts install a subset of
// these; the set itself is fixed.
func Groups() []Group {
	return []Group{
		{Name: "buffer", Funcs: []Func{
			{Name: "text", Fn: bufferText},
			{Name: "insert", Fn: bufferInsert},
			{Name: "delete", Fn: bufferDelete},
		}},
		{Name: "cursor", Funcs: []Func{
			{Name: "position", Fn: cursorPosition},
			{Name: "set_position", Fn: cursorSetPosition},
			{Name: "selection", Fn: cursorSelection},
			{Name: "set_selection", Fn: cursorSetSelection},
		}},
		{Name: "config", Funcs: []Func{
			{Name: "get", Fn: configGet},
		}},
		{Name: "file", Funcs: []Func{
			{Name: "path", Fn: filePath},
			{Name: "open", Fn: fileOpen},
		}},
		{Name: "search", Funcs: []Func{
			{Name: "find", Fn: searchFind},
		}},
		{Name: "system", Funcs: []Func{
			{Name: "message", Fn: systemMessage},
			{Name: "error", Fn: systemError},
			{Name: "mode", Fn: systemMode},
		}},
	}
}

// GroupNames returns the names of every declared group.
func GroupNames() []string {
	groups := Groups()
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	return names
}

// Install preloads the named groups into a guest state. A nil
// enabled set installs everything; a non-nil set installs exactly its
// members, so an empty map installs nothing. Unknown names are
// ignored; the manifest layer validates them beforehand.
func Install(state *lua.State, env *Env, enabled map[string]bool) {
	for _, g := range Groups() {
		if enabled != nil && !enabled[g.Name] {
			continue
		}
		group := g
		state.Preload("ed."+group.Name, func(L *glua.LState) int {
			mod := L.NewTable()
			for _, fn := range group.Funcs {
				f := fn
				L.SetField(mod, f.Name, L.NewFunction(func(L *glua.LState) int {
					ctx := env.Current()
					if ctx == nil {
						L.RaiseError("ed.%s.%s called outside an invocation", group.Name, f.Name)
						return 0
					}
					return f.Fn(env, ctx, L)
				}))
			}
			L.Push(mod)
			return 1
		})
	}
}

func bufferText(_ *Env, ctx *hostctx.Context, L *glua.LState) int {
	L.Push(glua.LString(ctx.Text))
	return 1
}

func bufferInsert(_ *Env, ctx *hostctx.Context, L *glua.LState) int {
	text := L.CheckString(1)
	if ctx.ReadOnly {
		L.Push(glua.LFalse)
		L.Push(glua.LString("document is read-only"))
		return 2
	}
	ctx.Request(hostctx.PendingOp{Kind: hostctx.OpInsert, Text: text})
	L.Push(glua.LTrue)
	return 1
}

func bufferDelete(_ *Env, ctx *hostctx.Context, L *glua.LState) int {
	if ctx.ReadOnly {
		L.Push(glua.LFalse)
		L.Push(glua.LString("document is read-only"))
		return 2
	}
	ctx.Request(hostctx.PendingOp{Kind: hostctx.OpDelete})
	L.Push(glua.LTrue)
	return 1
}

func cursorPosition(_ *Env, ctx *hostctx.Context, L *glua.LState) int {
	L.Push(glua.LNumber(ctx.Cursor))
	return 1
}

func cursorSetPosition(_ *Env, ctx *hostctx.Context, L *glua.LState) int {
	offset := L.CheckInt(1)
	ctx.Request(hostctx.PendingOp{Kind: hostctx.OpSetCursor, Offset: offset})
	return 0
}

func cursorSelection(_ *Env, ctx *hostctx.Context, L *glua.LState) int {
	L.Push(glua.LNumber(ctx.SelAnchor))
	L.Push(glua.LNumber(ctx.SelHead))
	return 2
}

func cursorSetSelection(_ *Env, ctx *hostctx.Context, L *glua.LState) int {
	anchor := L.CheckInt(1)
	head := L.CheckInt(2)
	ctx.Request(hostctx.PendingOp{Kind: hostctx.OpSetSelection, Anchor: anchor, Head: head})
	return 0
}

// configGet reads from the snapshot's frozen option map, so a config
// reload during the call cannot change values mid-invocation.
func configGet(_ *Env, ctx *hostctx.Context, L *glua.LState) int {
	key := L.CheckString(1)
	if v, ok := ctx.Config[key]; ok {
		L.Push(glua.LString(v))
	} else {
		L.Push(glua.LNil)
	}
	return 1
}

func filePath(_ *Env, ctx *hostctx.Context, L *glua.LState) int {
	if ctx.FilePath == "" {
		L.Push(glua.LNil)
	} else {
		L.Push(glua.LString(ctx.FilePath))
	}
	return 1
}

func fileOpen(_ *Env, ctx *hostctx.Context, L *glua.LState) int {
	path := L.CheckString(1)
	ctx.Request(hostctx.PendingOp{Kind: hostctx.OpOpenFile, Path: path})
	return 0
}

// searchFind searches the snapshot, not the live document, so a guest
// sees results consistent with the text it read.
func searchFind(_ *Env, ctx *hostctx.Context, L *glua.LState) int {
	pattern := L.CheckString(1)
	from := L.OptInt(2, 0)
	if from < 0 || from > len(ctx.Text) || pattern == "" {
		L.Push(glua.LNil)
		return 1
	}
	i := strings.Index(ctx.Text[from:], pattern)
	if i < 0 {
		L.Push(glua.LNil)
		return 1
	}
	L.Push(glua.LNumber(from + i))
	L.Push(glua.LNumber(from + i + len(pattern)))
	return 2
}

// systemMessage and systemError queue on the context rather than
// reaching the user directly; the host emits the queue once pending
// operations have been applied.
func systemMessage(_ *Env, ctx *hostctx.Context, L *glua.LState) int {
	ctx.Post(L.CheckString(1), false)
	return 0
}

func systemError(_ *Env, ctx *hostctx.Context, L *glua.LState) int {
	ctx.Post(L.CheckString(1), true)
	return 0
}

func systemMode(_ *Env, ctx *hostctx.Context, L *glua.LState) int {
	L.Push(glua.LString(ctx.Mode))
	return 1
}
