// SPDX-License-Identifier: MPL-2.0

package config

import (
	"path/filepath"
	"testing"
)

func TestDirOverrides(t *testing.T) {
	t.Setenv("SHELDON_CONFIG_DIR", filepath.Join(t.TempDir(), "cfg"))
	t.Setenv("SHELDON_DATA_DIR", filepath.Join(t.TempDir(), "data"))

	configDir, err := ConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(configDir) != "cfg" {
		t.Errorf("expected SHELDON_CONFIG_DIR to win, got %s", configDir)
	}

	dataDir, err := DataDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(dataDir) != "data" {
		t.Errorf("expected SHELDON_DATA_DIR to win, got %s", dataDir)
	}
}
