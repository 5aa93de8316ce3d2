// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kvnxiao/sheldon/internal/config"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in the default editor",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runEdit()
	},
}

func runEdit() error {
	p, err := resolvePaths()
	if err != nil {
		return err
	}
	mu, err := acquireMutex(p, false)
	if err != nil {
		return err
	}
	defer mu.Release()

	original, err := os.ReadFile(p.configFile)
	if err != nil {
		return fmt.Errorf("failed to read config file %s (run 'sheldon init' first): %w", p.configFile, err)
	}
	if _, _, err := config.Parse(original); err != nil {
		logger.Warn("config file is currently invalid", "error", err)
	}

	editor := editorCommand()
	if editor == "" {
		return fmt.Errorf("no editor found; set $VISUAL or $EDITOR")
	}

	args := strings.Fields(editor)
	args = append(args, p.configFile)
	cmd := exec.Command(args[0], args[1:]...) //nolint:gosec // Editor comes from the user's own environment
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor exited with an error: %w", err)
	}

	edited, err := os.ReadFile(p.configFile)
	if err != nil {
		return fmt.Errorf("failed to re-read config file: %w", err)
	}
	if _, _, err := config.Parse(edited); err != nil {
		// Restore the pre-edit contents so a broken config never sticks.
		if writeErr := os.WriteFile(p.configFile, original, 0o644); writeErr != nil {
			logger.Warn("could not restore previous config", "error", writeErr)
		}
		return fmt.Errorf("edited config is invalid, reverting: %w", err)
	}

	status("Updated", p.configFile)
	return nil
}

// editorCommand returns the user's preferred editor command line.
func editorCommand() string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	for _, fallback := range []string{"vim", "vi", "nano"} {
		if _, err := exec.LookPath(fallback); err == nil {
			return fallback
		}
	}
	return ""
}
