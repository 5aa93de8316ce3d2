// SPDX-License-Identifier: MPL-2.0

// Package lock implements the resolution-and-locking core: it materializes
// every configured plugin source on disk (cloning, downloading, or
// validating as the source kind requires), selects files with glob patterns,
// renders them through templates into shell-script fragments, and assembles
// the result into a fingerprinted LockedConfig that can be persisted,
// cheaply re-verified, and turned into the final script.
//
// Resolution fans out over a bounded worker pool; equivalent sources are
// collapsed to a single fetch; per-plugin failures are collected without
// aborting siblings; output order always equals configuration declaration
// order.
package lock
