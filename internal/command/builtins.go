package command

import (
	"fmt"
	"strings"

	"github.com/fathom-editor/fathom/internal/action"
	"github.com/fathom-editor/fathom/internal/registry"
)

// Builtins returns the built-in command entries for the registry
// builder.
func Builtins() []registry.Entry {
	cmds := []struct {
		name    string
		aliases []string
		desc    string
		handler Handler
	}{
		{"quit", []string{"q"}, "close the editor", cmdQuit},
		{"open", []string{"e", "edit"}, "open a file", cmdOpen},
		{"set", nil, "set or show an option", cmdSet},
		{"undo", nil, "undo the last change", cmdUndo},
		{"redo", nil, "redo the last undone change", cmdRedo},
		{"messages", nil, "show the message history", cmdMessages},
		{"plugins", nil, "list loaded plugins", cmdPlugins},
		{"plugin-load", nil, "load a plugin from a directory", cmdPluginLoad},
		{"plugin-enable", nil, "enable a plugin", cmdPluginEnable},
		{"plugin-disable", nil, "disable a plugin", cmdPluginDisable},
		{"plugin-reload", nil, "reload a plugin from disk", cmdPluginReload},
		{"registry-info", nil, "summarize registered extensions", cmdRegistryInfo},
		{"registry-doctor", nil, "report extension collisions", cmdRegistryDoctor},
	}

	entries := make([]registry.Entry, 0, len(cmds))
	for _, c := range cmds {
		entries = append(entries, registry.Entry{
			Kind: registry.KindCommand,
			Descriptor: registry.Descriptor{
				ID:      "core.cmd." + c.name,
				Name:    c.name,
				Aliases: c.aliases,
				Source:  registry.Builtin(),
			},
			Handler: c.handler,
		})
	}
	return entries
}

func cmdQuit(_ *Context, _ []string) (action.Result, error) {
	return action.Quit(), nil
}

func cmdOpen(ctx *Context, args []string) (action.Result, error) {
	if len(args) != 1 {
		return action.Ok(), Errorf("open", "usage: open <path>")
	}
	if err := ctx.Editor.OpenFile(args[0]); err != nil {
		return action.Ok(), Errorf("open", "%v", err)
	}
	return action.Ok(), nil
}

func cmdSet(ctx *Context, args []string) (action.Result, error) {
	switch len(args) {
	case 1:
		value, ok := ctx.Config.Lookup(args[0])
		if !ok {
			return action.Ok(), Errorf("set", "unknown option %q", args[0])
		}
		ctx.Editor.ShowMessage(fmt.Sprintf("%s=%s", args[0], value))
		return action.Ok(), nil
	case 2:
		if err := ctx.Config.SetFromString(args[0], args[1]); err != nil {
			return action.Ok(), Errorf("set", "%v", err)
		}
		return action.Ok(), nil
	default:
		return action.Ok(), Errorf("set", "usage: set <option> [value]")
	}
}

func cmdUndo(ctx *Context, _ []string) (action.Result, error) {
	if err := ctx.Editor.Undo(); err != nil {
		return action.Ok(), Errorf("undo", "%v", err)
	}
	return action.Ok(), nil
}

func cmdRedo(ctx *Context, _ []string) (action.Result, error) {
	if err := ctx.Editor.Redo(); err != nil {
		return action.Ok(), Errorf("redo", "%v", err)
	}
	return action.Ok(), nil
}

func cmdMessages(ctx *Context, _ []string) (action.Result, error) {
	var b strings.Builder
	for _, m := range ctx.Editor.Messages() {
		if m.IsError {
			b.WriteString("E: ")
		}
		b.WriteString(m.Text)
		b.WriteByte('\n')
	}
	ctx.Editor.AppendScratch(b.String())
	return action.OpenScratch(true), nil
}

func cmdPlugins(ctx *Context, _ []string) (action.Result, error) {
	if ctx.Plugins == nil {
		return action.Ok(), Errorf("plugins", "plugin support is off")
	}
	hosts := ctx.Plugins.List()
	if len(hosts) == 0 {
		ctx.Editor.ShowMessage("no plugins loaded")
		return action.Ok(), nil
	}
	var b strings.Builder
	for _, h := range hosts {
		m := h.Manifest()
		fmt.Fprintf(&b, "%s %s [%s] %s\n", h.ID(), m.Version, h.State(), m.Description)
	}
	ctx.Editor.AppendScratch(b.String())
	return action.OpenScratch(true), nil
}

func cmdPluginLoad(ctx *Context, args []string) (action.Result, error) {
	if ctx.Plugins == nil {
		return action.Ok(), Errorf("plugin-load", "plugin support is off")
	}
	if len(args) != 1 {
		return action.Ok(), Errorf("plugin-load", "usage: plugin-load <dir>")
	}
	host, err := ctx.Plugins.Load(args[0])
	if err != nil {
		return action.Ok(), Errorf("plugin-load", "%v", err)
	}
	ctx.Editor.ShowMessage(fmt.Sprintf("loaded %s (%s)", host.ID(), host.State()))
	return action.Ok(), nil
}

func cmdPluginEnable(ctx *Context, args []string) (action.Result, error) {
	return pluginLifecycle(ctx, "plugin-enable", args, func(id string) error {
		return ctx.Plugins.Enable(id)
	})
}

func cmdPluginDisable(ctx *Context, args []string) (action.Result, error) {
	return pluginLifecycle(ctx, "plugin-disable", args, func(id string) error {
		return ctx.Plugins.Disable(id)
	})
}

func cmdPluginReload(ctx *Context, args []string) (action.Result, error) {
	return pluginLifecycle(ctx, "plugin-reload", args, func(id string) error {
		return ctx.Plugins.Reload(id)
	})
}

func pluginLifecycle(ctx *Context, name string, args []string, op func(id string) error) (action.Result, error) {
	if ctx.Plugins == nil {
		return action.Ok(), Errorf(name, "plugin support is off")
	}
	if len(args) != 1 {
		return action.Ok(), Errorf(name, "usage: %s <plugin>", name)
	}
	if err := op(args[0]); err != nil {
		return action.Ok(), Errorf(name, "%v", err)
	}
	ctx.Editor.ShowMessage(fmt.Sprintf("%s: %s", name, args[0]))
	return action.Ok(), nil
}

func cmdRegistryInfo(ctx *Context, _ []string) (action.Result, error) {
	var b strings.Builder
	kinds := []registry.Kind{
		registry.KindAction, registry.KindCommand, registry.KindMotion,
		registry.KindTextObject, registry.KindKeyBinding,
		registry.KindOption, registry.KindMenu,
	}
	for _, k := range kinds {
		n := ctx.Registry.Count(k)
		if n == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s: %d\n", k, n)
	}
	if ctx.Plugins != nil {
		for _, h := range ctx.Plugins.List() {
			reg := h.Registration()
			fmt.Fprintf(&b, "plugin %s [%s]: %d actions, %d hooks, %d commands\n",
				h.ID(), h.State(), len(reg.Actions), len(reg.Hooks), len(reg.Commands))
		}
	}
	fmt.Fprintf(&b, "collisions: %d\n", len(ctx.Registry.Diagnostics()))
	ctx.Editor.AppendScratch(b.String())
	return action.OpenScratch(true), nil
}

func cmdRegistryDoctor(ctx *Context, _ []string) (action.Result, error) {
	collisions := ctx.Registry.Diagnostics()
	if len(collisions) == 0 {
		ctx.Editor.ShowMessage("registry is clean: no collisions")
		return action.Ok(), nil
	}
	var b strings.Builder
	for _, c := range collisions {
		b.WriteString(c.String())
		b.WriteByte('\n')
		if c.EqualPriority() {
			b.WriteString("  suggestion: ")
			b.WriteString(c.Suggestion())
			b.WriteByte('\n')
		}
	}
	ctx.Editor.AppendScratch(b.String())
	return action.OpenScratch(true), nil
}
