// SPDX-License-Identifier: MPL-2.0

package lock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// WriteFile serializes the locked config to the lock artifact at path. The
// write is staged through a temporary file and renamed so a crash never
// leaves a half-written artifact behind.
func (lc *LockedConfig) WriteFile(path string) error {
	data, err := toml.Marshal(lc)
	if err != nil {
		return fmt.Errorf("failed to serialize lock file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create lock file directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".lock-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary lock file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // No-op after successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec // Write error already reported
		return fmt.Errorf("failed to write lock file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write lock file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move lock file into place: %w", err)
	}
	return nil
}

// ReadFile deserializes the lock artifact at path. Any failure — missing
// file, unparseable TOML, or a format-version mismatch — is a LockfileError;
// callers treat it as "no lock file" and rebuild rather than failing.
func ReadFile(path string) (*LockedConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LockfileError{Path: path, Err: err}
	}

	var lc LockedConfig
	if err := toml.Unmarshal(data, &lc); err != nil {
		return nil, &LockfileError{Path: path, Err: err}
	}
	if lc.Version != lockFormatVersion {
		return nil, &LockfileError{Path: path, Err: fmt.Errorf("unsupported format version %d", lc.Version)}
	}
	if lc.Fingerprint == "" {
		return nil, &LockfileError{Path: path, Err: fmt.Errorf("missing fingerprint")}
	}
	return &lc, nil
}
