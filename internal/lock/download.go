// SPDX-License-Identifier: MPL-2.0

package lock

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// maxDownloadBytes caps a single remote plugin file (50 MB). Plugin scripts
// are small; the cap prevents unbounded disk consumption from a misbehaving
// server. A body over the cap fails the download rather than being cached
// truncated.
var maxDownloadBytes int64 = 50 << 20

// download fetches url into dest. The write is staged through a temporary
// file and renamed, so a failed download never leaves a truncated cache
// entry behind.
func download(ctx context.Context, client *http.Client, url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only body

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // No-op after successful rename

	// Read one byte past the cap so an exactly-at-limit body still succeeds
	// while anything larger is detected instead of truncated.
	n, err := io.Copy(tmp, io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		tmp.Close() //nolint:errcheck,gosec // Write error already reported
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if n > maxDownloadBytes {
		tmp.Close() //nolint:errcheck,gosec // Oversized body already reported
		return fmt.Errorf("%s exceeds the %d byte download limit", url, maxDownloadBytes)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("failed to move download into place: %w", err)
	}
	return nil
}
