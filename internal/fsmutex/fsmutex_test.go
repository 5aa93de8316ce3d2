// SPDX-License-Identifier: MPL-2.0

//go:build unix

package fsmutex

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAcquireReleaseCycle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "config")

	mu, err := Acquire(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, lockFileName)); err != nil {
		t.Errorf("expected the lock file to exist: %v", err)
	}
	mu.Release()

	// The lock must be reacquirable after release.
	again, err := Acquire(dir)
	if err != nil {
		t.Fatalf("failed to reacquire: %v", err)
	}
	again.Release()

	// Release is idempotent, including on nil.
	again.Release()
	var nilMu *Mutex
	nilMu.Release()
}

func TestAcquireCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	mu, err := Acquire(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer mu.Release()

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("expected the directory to be created: %v", err)
	}
}
