package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kalambet/raw2dng/internal/config"
	"github.com/kalambet/raw2dng/internal/prefs"
)

var version = "dev"

var (
	cfg        config.Config
	noColor    bool
	flagPath   string
	flagLog    string
	flagAtomic bool
)

var rootCmd = &cobra.Command{
	Use:           "raw2dng",
	Short:         "Manage raw2dng preferences and release files",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("prefs") {
			loaded.Prefs.Path = flagPath
		}
		if flags.Changed("atomic") {
			loaded.Prefs.Atomic = flagAtomic
		}
		if flags.Changed("log-level") {
			loaded.Log.Level = flagLog
			if err := loaded.Validate(); err != nil {
				return err
			}
		}
		cfg = loaded

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()})))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "raw2dng version %s\n", version)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagPath, "prefs", "", "preferences file (default: preferences.ini next to the executable)")
	pf.BoolVar(&flagAtomic, "atomic", false, "write preferences via temp file and rename")
	pf.StringVar(&flagLog, "log-level", "info", "log level: debug, info, warn, error")
	pf.BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(prefsCmd, configCmd, readmeCmd, serveCmd, mcpCmd, versionCmd)
}

// openStore opens the preference store honoring --prefs and --atomic.
func openStore() (*prefs.Store, error) {
	var opts []prefs.Option
	if cfg.Prefs.Atomic {
		opts = append(opts, prefs.WithAtomicWrite())
	}
	if cfg.Prefs.Path != "" {
		return prefs.Open(cfg.Prefs.Path, opts...)
	}
	return prefs.OpenDefault(opts...)
}

// prefsPath resolves the preferences location without opening the file.
func prefsPath() (string, error) {
	if cfg.Prefs.Path != "" {
		return cfg.Prefs.Path, nil
	}
	return prefs.DefaultPath()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
