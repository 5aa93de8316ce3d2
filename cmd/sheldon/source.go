// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kvnxiao/sheldon/internal/lock"
)

var (
	sourceRelock bool

	sourceCmd = &cobra.Command{
		Use:   "source",
		Short: "Generate and print the shell script",
		Long: `Generate and print the shell script to stdout.

The previous lock file is reused when the configuration is unchanged and
every resolved source still exists on disk, so the common case performs no
network access. Plugins that fail to resolve are logged and skipped; the
script is still produced from the ones that succeeded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSource(cmd.Context())
		},
	}
)

func init() {
	sourceCmd.Flags().BoolVar(&sourceRelock, "relock", false, "force a full re-resolution")
}

// runSource is the best-effort entry point: the script is rendered from
// whatever plugins succeeded, and the lock file is only overwritten when
// every plugin resolved, so a transient failure never clobbers a good lock.
func runSource(ctx context.Context) error {
	p, err := resolvePaths()
	if err != nil {
		return err
	}
	// The happy path only reads, but a relock mutates the cache, so the
	// mutex is mandatory for source as well.
	mu, err := acquireMutex(p, true)
	if err != nil {
		return err
	}
	defer mu.Release()

	cfg, err := loadConfig(p)
	if err != nil {
		return err
	}

	writeLock := true
	var locked *lock.LockedConfig
	if sourceRelock || newerThan(p.configFile, p.lockFile) {
		locked, err = relock(ctx, cfg, p)
	} else {
		prior, readErr := lock.ReadFile(p.lockFile)
		if readErr == nil && prior.Verify(cfg, profileFlag) {
			statusVerbose("Unlocked", p.lockFile)
			writeLock = false
			locked = prior
		} else {
			// Corrupt, missing, or stale lock file: rebuild from scratch.
			locked, err = relock(ctx, cfg, p)
		}
	}
	if err != nil {
		return err
	}

	if writeLock && len(locked.Errors) == 0 {
		if err := locked.WriteFile(p.lockFile); err != nil {
			return err
		}
		status("Locked", p.lockFile)
	}
	for _, failure := range locked.Errors {
		logger.Error(failure.Message)
	}

	fmt.Print(locked.Script())
	return nil
}
