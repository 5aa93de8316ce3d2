// SPDX-License-Identifier: MPL-2.0

// Package testutil provides shared helpers for package tests: scratch git
// repositories built in-process via go-git, and bulk file writing.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// WriteFiles writes each name -> contents entry under dir, creating parent
// directories as needed.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, contents := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
}

// InitRepo initializes a git repository at dir, writes files, and commits
// them. The repository can be cloned by URL using the directory path.
func InitRepo(t *testing.T, dir string, files map[string]string) *git.Repository {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", dir, err)
	}
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repo at %s: %v", dir, err)
	}
	CommitFiles(t, repo, dir, files, "initial commit")
	return repo
}

// CommitFiles writes files into the repository worktree and commits them,
// returning the commit hash.
func CommitFiles(t *testing.T, repo *git.Repository, dir string, files map[string]string, message string) string {
	t.Helper()
	WriteFiles(t, dir, files)

	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		t.Fatalf("failed to stage files: %v", err)
	}
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "test",
			Email: "test@example.invalid",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
	return hash.String()
}

// CreateTag creates a lightweight tag pointing at the current HEAD.
func CreateTag(t *testing.T, repo *git.Repository, name string) {
	t.Helper()
	head, err := repo.Head()
	if err != nil {
		t.Fatalf("failed to get HEAD: %v", err)
	}
	if _, err := repo.CreateTag(name, head.Hash(), nil); err != nil {
		t.Fatalf("failed to create tag %s: %v", name, err)
	}
}
