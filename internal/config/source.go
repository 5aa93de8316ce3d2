// SPDX-License-Identifier: MPL-2.0

package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// SourceGit is a source cloned from a git repository.
	SourceGit SourceKind = "git"
	// SourceRemote is a single file downloaded from a URL.
	SourceRemote SourceKind = "remote"
	// SourceLocal is a pre-existing directory on disk.
	SourceLocal SourceKind = "local"

	// RefDefault tracks the repository's default branch.
	RefDefault RefKind = ""
	// RefBranch tracks a named branch.
	RefBranch RefKind = "branch"
	// RefTag pins a tag.
	RefTag RefKind = "tag"
	// RefRev pins an exact revision.
	RefRev RefKind = "rev"
)

type (
	// SourceKind discriminates the Source variants.
	SourceKind string

	// RefKind discriminates git reference kinds. Branch and default are
	// movable references; tag and rev are pinned.
	RefKind string

	// GitReference identifies the git reference a plugin tracks.
	GitReference struct {
		Kind  RefKind
		Value string
	}

	// Source is the normalized descriptor of where a plugin's files come
	// from. Exactly one variant applies, selected by Kind: URL and Reference
	// for git, URL for remote, Path for local. Two sources are equivalent
	// iff they have the same Kind and the same normalized field values;
	// equivalence is computed by Key, never by identity.
	Source struct {
		Kind      SourceKind
		URL       string
		Reference GitReference
		Path      string
	}
)

// Movable reports whether the reference can change on the remote without the
// descriptor changing, which means an existing checkout may need updating.
func (r GitReference) Movable() bool {
	return r.Kind == RefDefault || r.Kind == RefBranch
}

func (r GitReference) String() string {
	if r.Kind == RefDefault {
		return "HEAD"
	}
	return fmt.Sprintf("%s=%s", r.Kind, r.Value)
}

// Key returns the deterministic cache key for the source. Equivalent sources
// always map to the same key, which is what collapses N plugins sharing a
// source into one fetch.
func (s Source) Key() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\x00%s", s.Kind, s.URL, s.Reference.Kind, s.Reference.Value, s.Path)
	return hex.EncodeToString(h.Sum(nil))
}

func (s Source) String() string {
	switch s.Kind {
	case SourceGit:
		if s.Reference.Kind == RefDefault {
			return s.URL
		}
		return fmt.Sprintf("%s@%s", s.URL, s.Reference.Value)
	case SourceRemote:
		return s.URL
	case SourceLocal:
		return s.Path
	}
	return string(s.Kind)
}

// normalizeGitURL strips the parts of a git URL that do not affect identity
// so that spellings like "https://github.com/o/r.git" and
// "https://github.com/o/r" dedupe to the same cache entry.
func normalizeGitURL(url string) string {
	url = strings.TrimSuffix(strings.TrimSpace(url), "/")
	return strings.TrimSuffix(url, ".git")
}

// expandTilde replaces a leading "~" with the user's home directory.
func expandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
