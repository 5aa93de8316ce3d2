// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	// AppName is the application name, used for directory discovery.
	AppName = "sheldon"
	// ConfigFileName is the plugins configuration file name.
	ConfigFileName = "plugins.toml"
	// LockFileName is the lock artifact file name.
	LockFileName = "plugins.lock"
)

// ConfigDir returns the sheldon configuration directory. $SHELDON_CONFIG_DIR
// wins when set; otherwise platform conventions apply: %APPDATA% on Windows,
// ~/Library/Application Support on macOS, and $XDG_CONFIG_HOME (defaulting
// to ~/.config) elsewhere.
func ConfigDir() (string, error) {
	if dir := os.Getenv("SHELDON_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	var configDir string
	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// DataDir returns the sheldon data directory holding the source cache and
// the lock file. $SHELDON_DATA_DIR wins when set; otherwise $XDG_DATA_HOME
// (defaulting to ~/.local/share) on Linux, the config-dir convention on
// Windows/macOS.
func DataDir() (string, error) {
	if dir := os.Getenv("SHELDON_DATA_DIR"); dir != "" {
		return dir, nil
	}

	switch runtime.GOOS {
	case "windows", "darwin":
		return ConfigDir()
	default:
		dataDir := os.Getenv("XDG_DATA_HOME")
		if dataDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			dataDir = filepath.Join(home, ".local", "share")
		}
		return filepath.Join(dataDir, AppName), nil
	}
}
