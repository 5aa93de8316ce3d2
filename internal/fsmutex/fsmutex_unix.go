// SPDX-License-Identifier: MPL-2.0

//go:build unix

// Package fsmutex serializes concurrent sheldon invocations against the
// shared cache and config directories with a filesystem-level exclusive
// lock. The kernel releases the flock automatically when the process exits,
// so a crash never leaves the directory permanently locked.
package fsmutex

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"golang.org/x/sys/unix"
)

// lockFileName is the well-known lock file shared by all sheldon processes
// working on one config directory. The zero-byte file is harmless if
// orphaned.
const lockFileName = ".sheldonlock"

type (
	// Mutex holds a blocking exclusive flock on a well-known file inside the
	// protected directory. Acquire it before the resolve-and-write-lock
	// sequence and Release it on every exit path.
	Mutex struct {
		file *os.File
	}

	// MutexError reports a failure to acquire the cross-process lock.
	//
	//nolint:revive // fsmutex.MutexError matches the error taxonomy name
	MutexError struct {
		Path string
		Err  error
	}
)

func (e *MutexError) Error() string {
	return fmt.Sprintf("failed to lock %s: %v", e.Path, e.Err)
}

func (e *MutexError) Unwrap() error { return e.Err }

// Acquire opens (creating if absent) the lock file inside dir and takes a
// blocking exclusive flock: callers wait rather than fail when another
// process holds the lock.
func Acquire(dir string) (*Mutex, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &MutexError{Path: dir, Err: err}
	}
	path := filepath.Join(dir, lockFileName)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, &MutexError{Path: path, Err: err}
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close() //nolint:errcheck,gosec // Lock acquisition already failed
		return nil, &MutexError{Path: path, Err: err}
	}
	return &Mutex{file: f}, nil
}

// Release unlocks the flock and closes the file descriptor. It is safe to
// call multiple times; subsequent calls are no-ops.
func (m *Mutex) Release() {
	if m == nil || m.file == nil {
		return
	}
	// LOCK_UN before Close for explicitness; Close also releases the flock.
	if err := unix.Flock(int(m.file.Fd()), unix.LOCK_UN); err != nil {
		log.Debug("flock unlock failed", "error", err)
	}
	if err := m.file.Close(); err != nil {
		log.Debug("lock file close failed", "error", err)
	}
	m.file = nil
}
