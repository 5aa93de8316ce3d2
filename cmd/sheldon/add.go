// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kvnxiao/sheldon/internal/config"
)

var (
	addPlugin config.Plugin

	addCmd = &cobra.Command{
		Use:   "add NAME",
		Short: "Add a new plugin to the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runAdd(args[0])
		},
	}
)

func init() {
	addCmd.Flags().StringVar(&addPlugin.Github, "github", "", "GitHub repository as owner/repo")
	addCmd.Flags().StringVar(&addPlugin.Git, "git", "", "git repository URL")
	addCmd.Flags().StringVar(&addPlugin.Remote, "remote", "", "remote file URL")
	addCmd.Flags().StringVar(&addPlugin.Local, "local", "", "local directory")
	addCmd.Flags().StringVar(&addPlugin.Branch, "branch", "", "git branch to track")
	addCmd.Flags().StringVar(&addPlugin.Tag, "tag", "", "git tag to pin")
	addCmd.Flags().StringVar(&addPlugin.Rev, "rev", "", "git revision to pin")
	addCmd.Flags().StringSliceVar(&addPlugin.Use, "use", nil, "glob patterns selecting files")
	addCmd.Flags().StringSliceVar(&addPlugin.Apply, "apply", nil, "templates to apply")
	addCmd.Flags().StringSliceVar(&addPlugin.Profiles, "profiles", nil, "profiles the plugin is active in")
}

func runAdd(name string) error {
	p, err := resolvePaths()
	if err != nil {
		return err
	}
	mu, err := acquireMutex(p, false)
	if err != nil {
		return err
	}
	defer mu.Release()

	plugin := addPlugin
	plugin.Name = name
	if _, err := plugin.Source(); err != nil {
		return err
	}

	cfg, err := loadConfig(p)
	if err != nil {
		// A missing config file is not fatal for add; start from scratch.
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		cfg = &config.Config{}
	}

	for i := range cfg.Plugins {
		if cfg.Plugins[i].Name == name {
			return fmt.Errorf("plugin %q is already configured", name)
		}
	}
	cfg.Plugins = append(cfg.Plugins, plugin)

	if err := cfg.Save(p.configFile); err != nil {
		return err
	}
	status("Added", name)
	status("Updated", p.configFile)
	return nil
}
