// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// starterConfigs are the commented config files written by `sheldon init`,
// keyed by shell.
var starterConfigs = map[string]string{
	"zsh": `shell = "zsh"

# For documentation of the format, run 'sheldon --help' or see the README.
#
# [[plugins]]
# name = "zsh-syntax-highlighting"
# github = "zsh-users/zsh-syntax-highlighting"
`,
	"bash": `shell = "bash"

# For documentation of the format, run 'sheldon --help' or see the README.

matches = ["*.plugin.bash", "*.plugin.sh", "*.bash", "*.sh"]

# [[plugins]]
# name = "bash-preexec"
# github = "rcaloras/bash-preexec"
`,
}

var (
	initShell string

	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize a new config file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit()
		},
	}
)

func init() {
	initCmd.Flags().StringVar(&initShell, "shell", "zsh", "shell to initialize for (zsh or bash)")
}

func runInit() error {
	contents, ok := starterConfigs[initShell]
	if !ok {
		return fmt.Errorf("unsupported shell %q (expected zsh or bash)", initShell)
	}

	p, err := resolvePaths()
	if err != nil {
		return err
	}
	mu, err := acquireMutex(p, false)
	if err != nil {
		return err
	}
	defer mu.Release()

	if _, err := os.Stat(p.configFile); err == nil {
		status("Unchanged", p.configFile)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(p.configFile), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(p.configFile, []byte(contents), 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", p.configFile, err)
	}
	status("Initialized", p.configFile)
	return nil
}
