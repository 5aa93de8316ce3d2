// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for sheldon.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables debug output.
	verbose bool
	// configDirFlag overrides the config directory.
	configDirFlag string
	// dataDirFlag overrides the data directory.
	dataDirFlag string
	// profileFlag selects the active plugin profile.
	profileFlag string

	// logger writes all diagnostics to stderr; stdout is reserved for the
	// generated script.
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})

	// rootCmd represents the base command when called without subcommands.
	rootCmd = &cobra.Command{
		Use:   "sheldon",
		Short: "A fast, configurable shell plugin manager",
		Long: TitleStyle.Render("sheldon") + SubtitleStyle.Render(" - a fast, configurable shell plugin manager") + `

sheldon reads a declarative TOML configuration describing shell plugins
(git repositories, single remote files, or local directories), installs
their sources into a shared cache, and renders one shell script for your
shell to source at startup.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'sheldon init' to create a config file
  2. Add plugins with 'sheldon add' or by editing the config
  3. Put 'eval "$(sheldon source)"' in your shell rc file`,
	}
)

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "config directory (default $XDG_CONFIG_HOME/sheldon)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (default $XDG_DATA_HOME/sheldon)")
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", os.Getenv("SHELDON_PROFILE"), "active plugin profile")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(sourceCmd)
}

// initLogging applies the --verbose flag to the shared logger.
func initLogging() {
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
