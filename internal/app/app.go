// Package app wires the editor together: registry, config, modes,
// plugins, the dispatch pipeline, and the terminal event loop. All
// state mutation happens on the loop goroutine; nothing here is
// shared across goroutines except the channels feeding the loop.
package app

import (
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/fathom-editor/fathom/internal/builtin"
	"github.com/fathom-editor/fathom/internal/command"
	"github.com/fathom-editor/fathom/internal/config"
	"github.com/fathom-editor/fathom/internal/diag"
	"github.com/fathom-editor/fathom/internal/dispatch"
	"github.com/fathom-editor/fathom/internal/editor"
	"github.com/fathom-editor/fathom/internal/input/keymap"
	"github.com/fathom-editor/fathom/internal/input/mode"
	"github.com/fathom-editor/fathom/internal/plugin"
	"github.com/fathom-editor/fathom/internal/registry"
)

// ErrQuit signals a requested exit from the event loop.
var ErrQuit = errors.New("quit requested")

// ErrNoScreen is returned by Run when no terminal screen is attached.
var ErrNoScreen = errors.New("no screen attached")

// Options configures an App.
type Options struct {
	// File is opened on startup when non-empty.
	File string

	// ConfigPath points at the TOML configuration file.
	ConfigPath string

	// PluginDir is the root directory scanned for plugins.
	PluginDir string

	// StateFile persists plugin enable/disable choices.
	StateFile string

	// ReadOnly opens the buffer read-only.
	ReadOnly bool

	// WatchConfig reloads the configuration file on change.
	WatchConfig bool

	// DevPlugins enables source watching for every loaded plugin.
	DevPlugins bool

	// DevPath loads one extra plugin from an arbitrary directory and
	// watches its sources.
	DevPath string

	// Debug lowers the diagnostic log threshold.
	Debug bool
}

// App owns every component and the event loop that drives them.
type App struct {
	opts Options

	log      *diag.Log
	registry *registry.Registry
	config   *config.Store
	editor   *editor.Editor
	modes    *mode.Manager
	plugins  *plugin.Manager
	pipeline *dispatch.Pipeline
	queue    *dispatch.CommandQueue
	commands *command.Runner
	resolver *keymap.Resolver

	screen  tcell.Screen
	reloads <-chan string

	// Input state owned by the loop goroutine.
	count   int
	cmdline []rune
	quit    bool
}

// New builds the application in dependency order. Missing config or
// plugin directories are reported and survived; a broken registry is
// not.
func New(opts Options) (*App, error) {
	a := &App{opts: opts, log: diag.NewLog(512)}
	if opts.Debug {
		a.log.SetMinLevel(diag.LevelDebug)
	}

	reg, err := registry.NewBuilder().
		Add(builtin.Entries()...).
		Add(command.Builtins()...).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}
	a.registry = reg
	for _, c := range reg.Diagnostics() {
		a.log.Warnf("registry", "%s", c.String())
	}

	store, err := config.NewStore(builtin.Options(), config.WithStoreLog(a.log))
	if err != nil {
		return nil, fmt.Errorf("build config: %w", err)
	}
	a.config = store
	if opts.ConfigPath != "" {
		if err := store.Load(opts.ConfigPath); err != nil {
			a.log.Warnf("config", "load %s: %v", opts.ConfigPath, err)
		} else if opts.WatchConfig {
			if err := store.Watch(); err != nil {
				a.log.Warnf("config", "watch: %v", err)
			}
		}
	}

	edOpts := []editor.Option{editor.WithLog(a.log), editor.WithReadOnly(opts.ReadOnly)}
	a.editor = editor.New(edOpts...)
	if opts.File != "" {
		if err := a.editor.OpenFile(opts.File); err != nil {
			return nil, fmt.Errorf("open %s: %w", opts.File, err)
		}
	}

	a.modes = mode.Standard()
	a.modes.OnSwitch(func(from, to string) {
		a.editor.SetMode(to)
		if from == mode.Command {
			a.cmdline = a.cmdline[:0]
		}
		if a.plugins != nil {
			a.plugins.EmitHook("mode:" + to)
		}
	})

	a.queue = dispatch.NewCommandQueue()
	a.pipeline = dispatch.NewPipeline(a.log)
	dispatch.RegisterStandard(a.pipeline, a.queue, a.log)

	mgrOpts := []plugin.ManagerOption{
		plugin.WithManagerLog(a.log),
		plugin.WithManagerConfig(store.Snapshot),
	}
	if opts.StateFile != "" {
		mgrOpts = append(mgrOpts, plugin.WithStateFile(opts.StateFile))
	}
	a.plugins = plugin.NewManager(a.editor, reg, mgrOpts...)
	if opts.PluginDir != "" {
		if err := a.plugins.LoadAll(opts.PluginDir); err != nil {
			a.log.Warnf("plugin", "load all: %v", err)
		}
		if opts.DevPlugins {
			a.watchPlugins()
		}
	}
	if opts.DevPath != "" {
		if h, err := a.plugins.Load(opts.DevPath); err != nil {
			a.log.Warnf("plugin", "dev load %s: %v", opts.DevPath, err)
		} else if ch, err := a.plugins.WatchDev(h.ID()); err != nil {
			a.log.Warnf("plugin", "dev watch %s: %v", h.ID(), err)
		} else {
			a.reloads = ch
		}
	}

	a.commands = command.NewRunner(&command.Context{
		Editor:   a.editor,
		Config:   store,
		Registry: reg,
		Plugins:  a.plugins,
		Log:      a.log,
	})

	a.resolver = keymap.NewResolver(reg, runtimeBindings{a.plugins})
	return a, nil
}

// watchPlugins subscribes every loaded plugin to source watching. The
// shared reload channel is drained by the event loop.
func (a *App) watchPlugins() {
	for _, h := range a.plugins.List() {
		ch, err := a.plugins.WatchDev(h.ID())
		if err != nil {
			a.log.Warnf("plugin", "watch %s: %v", h.ID(), err)
			continue
		}
		a.reloads = ch
	}
}

// SetScreen attaches an initialized terminal screen. Must be called
// before Run.
func (a *App) SetScreen(s tcell.Screen) {
	a.screen = s
}

// Log returns the diagnostic log.
func (a *App) Log() *diag.Log { return a.log }

// Registry returns the static registry.
func (a *App) Registry() *registry.Registry { return a.registry }

// Editor returns the document editor.
func (a *App) Editor() *editor.Editor { return a.editor }

// Config returns the option store.
func (a *App) Config() *config.Store { return a.config }

// Plugins returns the plugin manager.
func (a *App) Plugins() *plugin.Manager { return a.plugins }

// Modes returns the mode manager.
func (a *App) Modes() *mode.Manager { return a.modes }

// Close releases watchers and interpreter state.
func (a *App) Close() error {
	var first error
	if a.plugins != nil {
		for _, h := range a.plugins.List() {
			if err := a.plugins.Unload(h.ID()); err != nil && first == nil {
				first = err
			}
		}
		if err := a.plugins.Close(); err != nil && first == nil {
			first = err
		}
	}
	if a.config != nil {
		if err := a.config.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// runtimeBindings adapts the plugin manager to the keymap resolver.
type runtimeBindings struct {
	m *plugin.Manager
}

func (rb runtimeBindings) FindActionByKey(key string) (pluginID, action string, ok bool) {
	h, name, ok := rb.m.FindActionByKey(key)
	if !ok {
		return "", "", false
	}
	return h.ID(), name, true
}

func (rb runtimeBindings) HasKeyPrefix(prefix string) bool {
	return rb.m.HasKeyPrefix(prefix)
}
