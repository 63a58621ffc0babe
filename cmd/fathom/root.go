package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/fathom-editor/fathom/internal/app"
)

var (
	// Global flags.
	configPath string
	pluginDir  string
	stateFile  string
	readOnly   bool
	devPlugins bool
	devPath    string
	debug      bool
)

// rootCmd opens the editor on the given file, or on an empty buffer.
var rootCmd = &cobra.Command{
	Use:   "fathom [file]",
	Short: "A modal text editor scriptable with Lua plugins",
	Long: `Fathom is a modal terminal text editor. Behavior is assembled from
a static registry of actions, keybindings, and options; Lua plugins
contribute to the same registry at runtime and can shadow builtins.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := appOptions()
		if len(args) == 1 {
			opts.File = args[0]
		}

		a, err := app.New(opts)
		if err != nil {
			return err
		}
		defer a.Close()

		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("open terminal: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("init terminal: %w", err)
		}
		a.SetScreen(screen)
		return a.Run()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the TOML configuration file")
	rootCmd.PersistentFlags().StringVarP(&pluginDir, "plugins", "p", "", "Plugin root directory")
	rootCmd.PersistentFlags().StringVar(&stateFile, "state", "", "Plugin state file (default: user config dir)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.Flags().BoolVarP(&readOnly, "readonly", "R", false, "Open the buffer read-only")
	rootCmd.Flags().BoolVar(&devPlugins, "dev", false, "Reload plugins when their sources change")
	rootCmd.Flags().StringVar(&devPath, "dev-path", "", "Load and watch one extra plugin from this directory")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// appOptions translates flags into application options, filling in
// user-directory defaults for anything not given explicitly.
func appOptions() app.Options {
	opts := app.Options{
		ConfigPath:  configPath,
		PluginDir:   pluginDir,
		StateFile:   stateFile,
		ReadOnly:    readOnly,
		DevPlugins:  devPlugins,
		DevPath:     devPath,
		WatchConfig: true,
		Debug:       debug,
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return opts
	}
	dir := filepath.Join(base, "fathom")
	if opts.ConfigPath == "" {
		if p := filepath.Join(dir, "config.toml"); fileExists(p) {
			opts.ConfigPath = p
		}
	}
	if opts.PluginDir == "" {
		if p := filepath.Join(dir, "plugins"); fileExists(p) {
			opts.PluginDir = p
		}
	}
	if opts.StateFile == "" {
		opts.StateFile = filepath.Join(dir, "state.json")
	}
	return opts
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
