// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Remove a plugin from the config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runRemove(args[0])
	},
}

func runRemove(name string) error {
	p, err := resolvePaths()
	if err != nil {
		return err
	}
	mu, err := acquireMutex(p, false)
	if err != nil {
		return err
	}
	defer mu.Release()

	cfg, err := loadConfig(p)
	if err != nil {
		return err
	}

	kept := cfg.Plugins[:0]
	found := false
	for _, plugin := range cfg.Plugins {
		if plugin.Name == name {
			found = true
			continue
		}
		kept = append(kept, plugin)
	}
	if !found {
		return fmt.Errorf("no plugin named %q is configured", name)
	}
	cfg.Plugins = kept

	if err := cfg.Save(p.configFile); err != nil {
		return err
	}
	status("Removed", name)
	status("Updated", p.configFile)
	return nil
}
