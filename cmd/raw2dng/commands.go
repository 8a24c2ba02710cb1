package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kalambet/raw2dng/internal/config"
	"github.com/kalambet/raw2dng/internal/prefs"
	"github.com/kalambet/raw2dng/internal/readme"
	"github.com/kalambet/raw2dng/internal/watch"
)

// --- prefs ---

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or update the application preferences",
	Long: `Show or update the preferences stored in preferences.ini.

Keys are case-sensitive and written as Section.Key:
  ` + strings.Join(prefs.ValidKeys(), "\n  "),
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show all preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		keys := prefs.ShowAll(store)
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(keys)
		}
		for _, k := range keys {
			printKV(cmd.OutOrStdout(), k.Key, k.Value)
		}
		return nil
	},
}

var prefsGetCmd = &cobra.Command{
	Use:   "get <Section.Key>",
	Short: "Print one preference value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		value, err := prefs.GetKey(store, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set <Section.Key> <value>",
	Short: "Set a preference and write the file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		store, err := openStore()
		if err != nil {
			return err
		}
		if err := prefs.SetKey(store, key, value); err != nil {
			return err
		}

		stored, _ := prefs.GetKey(store, key)
		printSuccess("Set %s = %s", key, stored)
		return nil
	},
}

var prefsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the preferences file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := prefsPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var prefsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore every preference to its default",
	RunE: func(cmd *cobra.Command, args []string) error {
		if confirm, _ := cmd.Flags().GetBool("confirm"); !confirm {
			printWarning("This overwrites all preferences with their defaults.")
			return fmt.Errorf("pass --confirm to reset preferences")
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.Reset(); err != nil {
			return err
		}
		printSuccess("Preferences reset to defaults")
		return nil
	},
}

var prefsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print preferences whenever the file changes on disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		out := cmd.OutOrStdout()
		w := watch.New(store.Path(), store, watch.WithNotify(func(err error) {
			if err != nil {
				printError("reload failed: %v", err)
				return
			}
			printStep("%s changed", store.Path())
			for _, k := range prefs.ShowAll(store) {
				printKV(out, k.Key, k.Value)
			}
		}))
		return w.Run(ctx)
	},
}

func init() {
	prefsShowCmd.Flags().Bool("json", false, "print as JSON")
	prefsResetCmd.Flags().Bool("confirm", false, "confirm reset")
	prefsCmd.AddCommand(prefsShowCmd, prefsGetCmd, prefsSetCmd, prefsPathCmd, prefsResetCmd, prefsWatchCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the tool configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration after environment and flags",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, k := range config.ShowAll(cfg) {
			printKV(cmd.OutOrStdout(), k.Key, k.Value)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}

// --- readme ---

var readmeCmd = &cobra.Command{
	Use:   "readme",
	Short: "Convert README.md to a plain-text README.txt",
	Long: `Convert README.md to a plain-text README.txt.

Line endings are normalized, <br/> and </br> tags are removed together with
any --strip literals, and on Windows the output uses CRLF line endings.

Examples:
  raw2dng readme
  raw2dng readme --in docs/README.md --out dist/README.txt
  raw2dng readme --strip '![screenshot](doc/screenshot.png)'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, _ := cmd.Flags().GetString("in")
		out, _ := cmd.Flags().GetString("out")
		strip, _ := cmd.Flags().GetStringArray("strip")
		crlf, _ := cmd.Flags().GetBool("crlf")

		if err := readme.ConvertFile(in, out, readme.Options{Strip: strip, CRLF: crlf}); err != nil {
			return err
		}
		printSuccess("Wrote %s", out)
		return nil
	},
}

func init() {
	readmeCmd.Flags().String("in", "README.md", "markdown source")
	readmeCmd.Flags().String("out", "README.txt", "plain-text output")
	readmeCmd.Flags().StringArray("strip", nil, "literal text to remove (repeatable)")
	readmeCmd.Flags().Bool("crlf", readme.DefaultCRLF(), "write CRLF line endings")
}

// signalContext is the context long-running commands block on.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
