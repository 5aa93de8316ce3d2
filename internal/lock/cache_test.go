// SPDX-License-Identifier: MPL-2.0

package lock

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kvnxiao/sheldon/internal/config"
)

func TestCacheAcquireDedupes(t *testing.T) {
	c := newCache(t.TempDir())
	src := config.Source{Kind: config.SourceRemote, URL: "https://example.com/x.zsh"}

	var fetches atomic.Int32
	fetch := func() (string, error) {
		fetches.Add(1)
		return "/resolved/x", nil
	}

	// Concurrent callers for the same key wait on one fetch.
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loc, err := c.acquire(src, fetch)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if loc != "/resolved/x" {
				t.Errorf("unexpected location %q", loc)
			}
		}()
	}
	wg.Wait()

	// A later caller in the same run reuses the recorded result.
	if _, err := c.acquire(src, fetch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := fetches.Load(); got != 1 {
		t.Errorf("expected exactly one fetch, got %d", got)
	}
}

func TestCacheAcquireFailureIsNotCached(t *testing.T) {
	c := newCache(t.TempDir())
	src := config.Source{Kind: config.SourceGit, URL: "https://example.com/r"}

	calls := 0
	if _, err := c.acquire(src, func() (string, error) {
		calls++
		return "", fmt.Errorf("boom")
	}); err == nil {
		t.Fatal("expected an error")
	}

	// The failure is not memoized; the next caller retries.
	loc, err := c.acquire(src, func() (string, error) {
		calls++
		return "/ok", nil
	})
	if err != nil || loc != "/ok" {
		t.Fatalf("expected retry to succeed, got %q, %v", loc, err)
	}
	if calls != 2 {
		t.Errorf("expected two fetch attempts, got %d", calls)
	}
}

func TestCacheDistinctKeysIndependent(t *testing.T) {
	c := newCache(t.TempDir())
	a := config.Source{Kind: config.SourceRemote, URL: "https://example.com/a"}
	b := config.Source{Kind: config.SourceRemote, URL: "https://example.com/b"}

	locA, err := c.acquire(a, func() (string, error) { return "/a", nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	locB, err := c.acquire(b, func() (string, error) { return "/b", nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if locA == locB {
		t.Error("expected distinct keys to resolve independently")
	}
}

func TestCachePathDerivation(t *testing.T) {
	root := t.TempDir()
	c := newCache(root)

	cases := map[string]struct {
		got  string
		want string
	}{
		"https git": {
			c.gitDir(config.Source{Kind: config.SourceGit, URL: "https://github.com/owner/repo"}),
			filepath.Join(root, "repos", "github.com", "owner", "repo"),
		},
		"scp-like git": {
			c.gitDir(config.Source{Kind: config.SourceGit, URL: "git@github.com:owner/repo"}),
			filepath.Join(root, "repos", "github.com", "owner", "repo"),
		},
		"tagged git": {
			c.gitDir(config.Source{
				Kind:      config.SourceGit,
				URL:       "https://github.com/owner/repo",
				Reference: config.GitReference{Kind: config.RefTag, Value: "v1.0.0"},
			}),
			filepath.Join(root, "repos", "github.com", "owner", "repo@tag-v1.0.0"),
		},
		"download": {
			c.downloadPath("https://example.com/dir/file.zsh"),
			filepath.Join(root, "downloads", "example.com", "dir", "file.zsh"),
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %s, want %s", tc.got, tc.want)
			}
		})
	}
}

func TestGitDirDistinctPerReference(t *testing.T) {
	c := newCache(t.TempDir())
	const url = "https://github.com/owner/repo"

	refs := []config.GitReference{
		{},
		{Kind: config.RefBranch, Value: "develop"},
		{Kind: config.RefTag, Value: "v1.0.0"},
		{Kind: config.RefRev, Value: "f34db33f"},
		// Slashes in ref names must not collide with their sanitized spelling.
		{Kind: config.RefBranch, Value: "release/v1"},
		{Kind: config.RefBranch, Value: "release-v1"},
	}

	seen := make(map[string]config.GitReference, len(refs))
	for _, ref := range refs {
		dir := c.gitDir(config.Source{Kind: config.SourceGit, URL: url, Reference: ref})
		if prior, dup := seen[dir]; dup {
			t.Errorf("references %v and %v share checkout directory %s", prior, ref, dir)
		}
		seen[dir] = ref
	}
}
