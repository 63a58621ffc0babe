package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fathom-editor/fathom/internal/app"
	"github.com/fathom-editor/fathom/internal/plugin"
	"github.com/fathom-editor/fathom/internal/registry"
)

// pluginsCmd groups headless plugin inspection commands. They build
// the full application without a terminal so resolution, manifests,
// and state all behave exactly as in an editing session.
var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Inspect Lua plugins",
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List plugins and their lifecycle states",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := headlessApp()
		if err != nil {
			return err
		}
		defer a.Close()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tVERSION\tSTATE\tACTIONS\tCOMMANDS")
		for _, h := range a.Plugins().List() {
			reg := h.Registration()
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
				h.ID(), h.Manifest().Version, h.State(), len(reg.Actions), len(reg.Commands))
		}
		return w.Flush()
	},
}

var pluginsEnableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Enable a plugin and persist the choice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlugins(func(a *app.App) error {
			return a.Plugins().Enable(args[0])
		})
	},
}

var pluginsDisableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Disable a plugin and persist the choice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlugins(func(a *app.App) error {
			return a.Plugins().Disable(args[0])
		})
	},
}

var pluginsAddCmd = &cobra.Command{
	Use:   "add <dir>",
	Short: "Install a plugin directory into the plugin root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		man, err := plugin.LoadManifest(args[0])
		if err != nil {
			return fmt.Errorf("not a plugin directory: %w", err)
		}

		root, err := pluginRoot()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(root, 0o755); err != nil {
			return fmt.Errorf("create plugin root: %w", err)
		}

		target := filepath.Join(root, man.Name)
		if _, err := os.Stat(target); err == nil {
			return fmt.Errorf("plugin already installed: %s", man.Name)
		}
		if err := copyDir(args[0], target); err != nil {
			return fmt.Errorf("install %s: %w", man.Name, err)
		}
		fmt.Printf("installed %s %s\n", man.Name, man.Version)
		return nil
	},
}

var pluginsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Delete an installed plugin from the plugin root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := pluginRoot()
		if err != nil {
			return err
		}
		target := filepath.Join(root, args[0])
		if _, err := plugin.LoadManifest(target); err != nil {
			return fmt.Errorf("plugin not found: %s", args[0])
		}
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("remove %s: %w", args[0], err)
		}
		fmt.Printf("removed %s\n", args[0])
		return nil
	},
}

var pluginsReloadCmd = &cobra.Command{
	Use:   "reload <id>",
	Short: "Reload a plugin from disk and report the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlugins(func(a *app.App) error {
			return a.Plugins().Reload(args[0])
		})
	},
}

// pluginRoot resolves the directory that `add` and `remove` operate on,
// creating nothing. Unlike appOptions it keeps the default path even
// when the directory does not exist yet.
func pluginRoot() (string, error) {
	if pluginDir != "" {
		return pluginDir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve plugin root: %w", err)
	}
	return filepath.Join(base, "fathom", "plugins"), nil
}

func copyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, info.Mode().Perm())
	})
}

// withPlugins runs one manager operation inside a headless session.
func withPlugins(fn func(*app.App) error) error {
	a, err := headlessApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect the contribution registry",
}

var registryInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show registration counts per kind",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := headlessApp()
		if err != nil {
			return err
		}
		defer a.Close()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, k := range allKinds() {
			fmt.Fprintf(w, "%s\t%d\n", k, a.Registry().Count(k))
		}
		return w.Flush()
	},
}

var registryDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Report collisions and shadowed contributions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := headlessApp()
		if err != nil {
			return err
		}
		defer a.Close()

		collisions := a.Registry().Diagnostics()
		if len(collisions) == 0 {
			fmt.Println("no collisions")
			return nil
		}
		for _, c := range collisions {
			fmt.Println(c.String())
			if c.EqualPriority() {
				fmt.Println("  " + c.Suggestion())
			}
		}
		return nil
	},
}

// headlessApp builds the application with no screen attached.
func headlessApp() (*app.App, error) {
	return app.New(appOptions())
}

func allKinds() []registry.Kind {
	return []registry.Kind{
		registry.KindAction, registry.KindCommand, registry.KindMotion,
		registry.KindTextObject, registry.KindKeyBinding,
		registry.KindOption, registry.KindMenu,
	}
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
	pluginsCmd.AddCommand(pluginsListCmd)
	pluginsCmd.AddCommand(pluginsEnableCmd)
	pluginsCmd.AddCommand(pluginsDisableCmd)
	pluginsCmd.AddCommand(pluginsAddCmd)
	pluginsCmd.AddCommand(pluginsRemoveCmd)
	pluginsCmd.AddCommand(pluginsReloadCmd)
	rootCmd.AddCommand(registryCmd)
	registryCmd.AddCommand(registryInfoCmd)
	registryCmd.AddCommand(registryDoctorCmd)
}
