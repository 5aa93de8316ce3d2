// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"
	"path/filepath"

	"github.com/kvnxiao/sheldon/internal/config"
	"github.com/kvnxiao/sheldon/internal/fsmutex"
)

// paths bundles the filesystem locations one command invocation works with.
type paths struct {
	configDir  string
	dataDir    string
	configFile string
	lockFile   string
}

// resolvePaths computes the config/data locations from flags, environment,
// and platform conventions.
func resolvePaths() (paths, error) {
	configDir := configDirFlag
	if configDir == "" {
		dir, err := config.ConfigDir()
		if err != nil {
			return paths{}, err
		}
		configDir = dir
	}
	dataDir := dataDirFlag
	if dataDir == "" {
		dir, err := config.DataDir()
		if err != nil {
			return paths{}, err
		}
		dataDir = dir
	}
	return paths{
		configDir:  configDir,
		dataDir:    dataDir,
		configFile: filepath.Join(configDir, config.ConfigFileName),
		lockFile:   filepath.Join(dataDir, config.LockFileName),
	}, nil
}

// acquireMutex takes the cross-process lock on the config directory. When
// required is false a failure is downgraded to a warning and a nil mutex is
// returned; Release on a nil mutex is a no-op.
func acquireMutex(p paths, required bool) (*fsmutex.Mutex, error) {
	mu, err := fsmutex.Acquire(p.configDir)
	if err != nil {
		if required {
			return nil, err
		}
		logger.Warn("could not lock config directory", "error", err)
		return nil, nil
	}
	statusVerbose("Locked", "config directory "+p.configDir)
	return mu, nil
}

// loadConfig loads and validates the plugins config, logging any advisory
// warnings.
func loadConfig(p paths) (*config.Config, error) {
	cfg, warnings, err := config.Load(p.configFile)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logger.Warn(w)
	}
	status("Loaded", p.configFile)
	return cfg, nil
}

// newerThan reports whether left was modified more recently than right.
// Missing files on either side count as "not newer".
func newerThan(left, right string) bool {
	li, err := os.Stat(left)
	if err != nil {
		return false
	}
	ri, err := os.Stat(right)
	if err != nil {
		return false
	}
	return li.ModTime().After(ri.ModTime())
}
