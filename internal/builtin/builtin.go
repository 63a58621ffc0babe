// Package builtin contributes the editor's default actions, motions,
// keybindings, and options. Everything here goes through the same
// registry and dispatch path as plugin contributions; nothing is
// special-cased.
package builtin

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/fathom-editor/fathom/internal/action"
	"github.com/fathom-editor/fathom/internal/config"
	"github.com/fathom-editor/fathom/internal/input/keymap"
	"github.com/fathom-editor/fathom/internal/input/mode"
	"github.com/fathom-editor/fathom/internal/plugin/hostapi"
	"github.com/fathom-editor/fathom/internal/registry"
)

// Entries returns every builtin contribution for the registry
// builder.
func Entries() []registry.Entry {
	var entries []registry.Entry
	entries = append(entries, actionEntries()...)
	entries = append(entries, keyBindingEntries()...)
	entries = append(entries, optionEntries()...)
	return entries
}

func actionEntries() []registry.Entry {
	acts := []struct {
		name    string
		desc    string
		flags   registry.Flags
		handler action.Handler
	}{
		{"enter-insert", "switch to insert mode", 0, modeChange(mode.Insert)},
		{"enter-normal", "switch to normal mode", 0, modeChange(mode.Normal)},
		{"enter-visual", "switch to visual mode", 0, modeChange(mode.Visual)},
		{"enter-command", "switch to command mode", 0, modeChange(mode.Command)},
		{"move-left", "move one grapheme left", registry.FlagRepeatable, moveLeft},
		{"move-right", "move one grapheme right", registry.FlagRepeatable, moveRight},
		{"move-up", "move one line up", registry.FlagRepeatable, moveUp},
		{"move-down", "move one line down", registry.FlagRepeatable, moveDown},
		{"line-start", "move to start of line", 0, lineStart},
		{"line-end", "move to end of line", 0, lineEnd},
		{"buffer-start", "move to start of document", 0, bufferStart},
		{"buffer-end", "move to end of document", 0, bufferEnd},
		{"delete-char", "delete the selection or the grapheme under the cursor", registry.FlagRepeatable, deleteChar},
		{"delete-back", "delete the grapheme before the cursor", registry.FlagRepeatable, deleteBack},
		{"insert-newline", "insert a line break", 0, insertNewline},
		{"search-next", "jump to the next match of the last search", registry.FlagRepeatable, searchNext},
		{"close-scratch", "close the scratch window", 0, closeScratch},
		{"quit", "leave the editor", 0, quit},
	}

	entries := make([]registry.Entry, 0, len(acts))
	for _, a := range acts {
		entries = append(entries, registry.Entry{
			Kind: registry.KindAction,
			Descriptor: registry.Descriptor{
				ID:     "core." + a.name,
				Name:   a.name,
				Source: registry.Builtin(),
				Flags:  a.flags,
			},
			Handler: a.handler,
		})
	}
	return entries
}

// defaultBindings maps "<mode> <chord>" to the action it triggers.
var defaultBindings = []struct {
	mode   string
	chord  string
	action string
}{
	{mode.Normal, "i", "enter-insert"},
	{mode.Normal, "v", "enter-visual"},
	{mode.Normal, ":", "enter-command"},
	{mode.Normal, "h", "move-left"},
	{mode.Normal, "l", "move-right"},
	{mode.Normal, "k", "move-up"},
	{mode.Normal, "j", "move-down"},
	{mode.Normal, "0", "line-start"},
	{mode.Normal, "$", "line-end"},
	{mode.Normal, "gg", "buffer-start"},
	{mode.Normal, "G", "buffer-end"},
	{mode.Normal, "x", "delete-char"},
	{mode.Normal, "n", "search-next"},
	{mode.Normal, "ZZ", "quit"},
	{mode.Insert, "<Esc>", "enter-normal"},
	{mode.Insert, "<CR>", "insert-newline"},
	{mode.Insert, "<BS>", "delete-back"},
	{mode.Visual, "<Esc>", "enter-normal"},
	{mode.Visual, "h", "move-left"},
	{mode.Visual, "l", "move-right"},
	{mode.Visual, "k", "move-up"},
	{mode.Visual, "j", "move-down"},
	{mode.Visual, "x", "delete-char"},
	{mode.Visual, "d", "delete-char"},
	{mode.Command, "<Esc>", "enter-normal"},
}

func keyBindingEntries() []registry.Entry {
	entries := make([]registry.Entry, 0, len(defaultBindings))
	for _, b := range defaultBindings {
		key := keymap.BindingKey(b.mode, b.chord)
		entries = append(entries, registry.Entry{
			Kind: registry.KindKeyBinding,
			Descriptor: registry.Descriptor{
				ID:     "core.key." + b.mode + "." + b.chord,
				Name:   key,
				Key:    key,
				Source: registry.Builtin(),
			},
			Handler: keymap.Binding{Action: b.action},
		})
	}
	return entries
}

// Options returns the builtin option declarations for the config
// store.
func Options() []config.Option {
	opts := []config.Option{
		{Name: "tabstop", Type: config.TypeInt, Default: 4, Description: "spaces a tab counts for"},
		{Name: "wrap", Type: config.TypeBool, Default: false, Description: "soft-wrap long lines"},
		{Name: "theme", Type: config.TypeString, Default: "default", Description: "color theme name"},
		{Name: "scrolloff", Type: config.TypeInt, Default: 2, Description: "lines kept visible around the cursor"},
		{Name: "ignorecase", Type: config.TypeBool, Default: false, Description: "case-insensitive search"},
	}
	for _, group := range hostapi.GroupNames() {
		opts = append(opts, config.Option{
			Name:        "plugin-api-" + group,
			Type:        config.TypeBool,
			Default:     true,
			Description: "expose the ed." + group + " module to plugins",
		})
	}
	return opts
}

func optionEntries() []registry.Entry {
	opts := Options()
	entries := make([]registry.Entry, 0, len(opts))
	for _, o := range opts {
		entries = append(entries, registry.Entry{
			Kind: registry.KindOption,
			Descriptor: registry.Descriptor{
				ID:     "core.opt." + o.Name,
				Name:   o.Name,
				Source: registry.Builtin(),
			},
			Handler: o,
		})
	}
	return entries
}

func modeChange(name string) action.Handler {
	return func(action.Context) action.Result {
		return action.ModeChange(name)
	}
}

func quit(action.Context) action.Result {
	return action.Quit()
}

func closeScratch(action.Context) action.Result {
	return action.CloseScratch()
}

func searchNext(ctx action.Context) action.Result {
	return action.SearchNext(ctx.Extend)
}

func insertNewline(action.Context) action.Result {
	return action.Edit(action.InsertAtCursor("\n"))
}

func deleteChar(ctx action.Context) action.Result {
	return action.Edit(action.DeleteSelection())
}

func deleteBack(ctx action.Context) action.Result {
	if ctx.Cursor == 0 {
		return action.Ok()
	}
	prev := prevGrapheme(ctx.Text, ctx.Cursor)
	return action.Edit(action.EditOp{Kind: action.EditDelete, At: prev, End: ctx.Cursor})
}

// motion builds a Motion result honoring the extend flag: extending
// keeps the anchor, plain movement collapses to the new position.
func motion(ctx action.Context, to int) action.Result {
	if ctx.Extend {
		return action.Motion(action.Selection{Anchor: ctx.Selection.Anchor, Head: to})
	}
	return action.Motion(action.Selection{Anchor: to, Head: to})
}

func count(ctx action.Context) int {
	if ctx.Count > 0 {
		return ctx.Count
	}
	return 1
}

func moveLeft(ctx action.Context) action.Result {
	pos := ctx.Cursor
	for i := 0; i < count(ctx); i++ {
		pos = prevGrapheme(ctx.Text, pos)
	}
	return motion(ctx, pos)
}

func moveRight(ctx action.Context) action.Result {
	pos := ctx.Cursor
	for i := 0; i < count(ctx); i++ {
		pos = nextGrapheme(ctx.Text, pos)
	}
	return motion(ctx, pos)
}

func moveUp(ctx action.Context) action.Result {
	pos := ctx.Cursor
	for i := 0; i < count(ctx); i++ {
		pos = lineShift(ctx.Text, pos, -1)
	}
	return motion(ctx, pos)
}

func moveDown(ctx action.Context) action.Result {
	pos := ctx.Cursor
	for i := 0; i < count(ctx); i++ {
		pos = lineShift(ctx.Text, pos, +1)
	}
	return motion(ctx, pos)
}

func lineStart(ctx action.Context) action.Result {
	return motion(ctx, startOfLine(ctx.Text, ctx.Cursor))
}

func lineEnd(ctx action.Context) action.Result {
	return motion(ctx, endOfLine(ctx.Text, ctx.Cursor))
}

func bufferStart(ctx action.Context) action.Result {
	return motion(ctx, 0)
}

func bufferEnd(ctx action.Context) action.Result {
	return motion(ctx, len(ctx.Text))
}

func nextGrapheme(text string, offset int) int {
	if offset >= len(text) {
		return len(text)
	}
	_, rest, _, _ := uniseg.FirstGraphemeClusterInString(text[offset:], -1)
	return len(text) - len(rest)
}

func prevGrapheme(text string, offset int) int {
	if offset <= 0 {
		return 0
	}
	start := strings.LastIndexByte(text[:offset], '\n') + 1
	if start == offset {
		return offset - 1
	}
	pos := start
	state := -1
	rest := text[start:offset]
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if pos+len(cluster) >= offset {
			break
		}
		pos += len(cluster)
	}
	return pos
}

func startOfLine(text string, offset int) int {
	return strings.LastIndexByte(text[:offset], '\n') + 1
}

func endOfLine(text string, offset int) int {
	if i := strings.IndexByte(text[offset:], '\n'); i >= 0 {
		return offset + i
	}
	return len(text)
}

// lineShift moves offset one line up or down, keeping the byte column
// where the target line allows it.
func lineShift(text string, offset, dir int) int {
	lineStart := startOfLine(text, offset)
	col := offset - lineStart

	var targetStart int
	if dir < 0 {
		if lineStart == 0 {
			return offset
		}
		targetStart = startOfLine(text, lineStart-1)
	} else {
		lineEnd := endOfLine(text, offset)
		if lineEnd >= len(text) {
			return offset
		}
		targetStart = lineEnd + 1
	}

	targetEnd := endOfLine(text, targetStart)
	if targetStart+col > targetEnd {
		return targetEnd
	}
	return targetStart + col
}
