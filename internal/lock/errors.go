// SPDX-License-Identifier: MPL-2.0

package lock

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLockfileInvalid is the sentinel error wrapped by LockfileError. Callers
// treat a lockfile failing with it as absent and fall back to a full rebuild.
var ErrLockfileInvalid = errors.New("invalid lock file")

type (
	// NotFoundError reports a local source path that does not exist or is
	// not readable.
	NotFoundError struct {
		Plugin string
		Path   string
		Err    error
	}

	// GitError reports a failed clone, fetch, or checkout.
	GitError struct {
		Plugin string
		URL    string
		Err    error
	}

	// NetworkError reports a failed remote file download.
	NetworkError struct {
		Plugin string
		URL    string
		Err    error
	}

	// TemplateError reports a plugin applying a template name that is
	// neither built in nor defined in the configuration.
	TemplateError struct {
		Plugin   string
		Template string
	}

	// NoMatchError reports explicit `use` patterns that matched no files.
	NoMatchError struct {
		Plugin   string
		Patterns []string
	}

	// LockfileError reports a corrupt or unreadable lock artifact.
	LockfileError struct {
		Path string
		Err  error
	}
)

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("plugin %q: local source %s not found", e.Plugin, e.Path)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

func (e *GitError) Error() string {
	return fmt.Sprintf("plugin %q: git source %s: %v", e.Plugin, e.URL, e.Err)
}

func (e *GitError) Unwrap() error { return e.Err }

func (e *NetworkError) Error() string {
	return fmt.Sprintf("plugin %q: failed to download %s: %v", e.Plugin, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *TemplateError) Error() string {
	return fmt.Sprintf("plugin %q: unknown template %q", e.Plugin, e.Template)
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("plugin %q: no files matched patterns [%s]", e.Plugin, strings.Join(e.Patterns, ", "))
}

func (e *LockfileError) Error() string {
	return fmt.Sprintf("lock file %s: %v", e.Path, e.Err)
}

func (e *LockfileError) Unwrap() error { return ErrLockfileInvalid }
