// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kvnxiao/sheldon/internal/config"
	"github.com/kvnxiao/sheldon/internal/lock"
)

var (
	lockUpdate bool

	lockCmd = &cobra.Command{
		Use:   "lock",
		Short: "Install plugin sources and write the lock file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLock(cmd.Context())
		},
	}
)

func init() {
	lockCmd.Flags().BoolVar(&lockUpdate, "update", false, "update plugins pinned to tags or revisions too")
}

// runLock is the strict-mode entry point: any plugin failure makes the
// whole command fail, and the previous lock file is left untouched.
func runLock(ctx context.Context) error {
	p, err := resolvePaths()
	if err != nil {
		return err
	}
	// Exclusive access is mandatory here; we are about to mutate the cache.
	mu, err := acquireMutex(p, true)
	if err != nil {
		return err
	}
	defer mu.Release()

	cfg, err := loadConfig(p)
	if err != nil {
		return err
	}

	locked, err := relock(ctx, cfg, p)
	if err != nil {
		return err
	}

	if len(locked.Errors) > 0 {
		for _, failure := range locked.Errors[:len(locked.Errors)-1] {
			logger.Error(failure.Message)
		}
		return errors.New(locked.Errors[len(locked.Errors)-1].Message)
	}

	if err := locked.WriteFile(p.lockFile); err != nil {
		return err
	}
	status("Locked", p.lockFile)
	return nil
}

// relock prunes stale cache entries and resolves the full configuration.
func relock(ctx context.Context, cfg *config.Config, p paths) (*lock.LockedConfig, error) {
	for _, w := range lock.Clean(cfg, p.dataDir) {
		logger.Warn(w)
	}

	locked, err := lock.Lock(ctx, cfg, lock.Options{
		DataDir: p.dataDir,
		Update:  lockUpdate,
		Profile: profileFlag,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve plugins: %w", err)
	}
	for i := range locked.Plugins {
		statusVerbose("Checked", locked.Plugins[i].Name)
	}
	return locked, nil
}
