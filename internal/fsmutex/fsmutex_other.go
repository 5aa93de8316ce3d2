// SPDX-License-Identifier: MPL-2.0

//go:build !unix

// Package fsmutex serializes concurrent sheldon invocations against the
// shared cache and config directories with a filesystem-level exclusive
// lock.
package fsmutex

import "fmt"

type (
	// Mutex is the non-Unix stub. Without flock, concurrent invocations are
	// not serialized; Acquire still succeeds so the tool remains usable.
	Mutex struct{}

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

// Acquire is a no-op on platforms without flock.
func Acquire(dir string) (*Mutex, error) {
	_ = dir
	return &Mutex{}, nil
}

// Release is a no-op on platforms without flock.
func (m *Mutex) Release() {}
