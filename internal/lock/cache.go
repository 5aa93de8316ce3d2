// SPDX-License-Identifier: MPL-2.0

package lock

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/kvnxiao/sheldon/internal/config"
)

const (
	// reposDirName holds one checkout per distinct git source.
	reposDirName = "repos"
	// downloadsDirName holds one file per distinct remote source.
	downloadsDirName = "downloads"
)

// cache deduplicates source fetches within one resolution run. The first
// caller to acquire a given descriptor key performs the fetch; concurrent
// callers for the same key wait on that result; distinct keys proceed
// independently. A key fetched earlier in the same run is returned without
// repeating any work.
type cache struct {
	root string

	group singleflight.Group

	mu   sync.Mutex
	done map[string]string
}

func newCache(root string) *cache {
	return &cache{
		root: root,
		done: make(map[string]string),
	}
}

// acquire returns the resolved filesystem location for src, invoking fetch
// at most once per descriptor key for the lifetime of the cache.
func (c *cache) acquire(src config.Source, fetch func() (string, error)) (string, error) {
	key := src.Key()

	c.mu.Lock()
	if loc, ok := c.done[key]; ok {
		c.mu.Unlock()
		return loc, nil
	}
	c.mu.Unlock()

	loc, err, _ := c.group.Do(key, func() (any, error) {
		loc, err := fetch()
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		c.done[key] = loc
		c.mu.Unlock()
		return loc, nil
	})
	if err != nil {
		return "", err
	}
	return loc.(string), nil
}

// gitDir returns the checkout directory for a git source. The URL maps to a
// host-rooted path and the reference names an entry inside it, so plugins
// tracking the same repository at different refs own independent worktrees:
// "https://github.com/owner/repo" -> <root>/repos/github.com/owner/repo,
// the same URL at tag v1.0.0 -> <root>/repos/github.com/owner/repo@tag-v1.0.0.
func (c *cache) gitDir(src config.Source) string {
	return filepath.Join(c.root, reposDirName, urlPathSegments(src.URL)+refSuffix(src.Reference))
}

// refSuffix encodes a git reference as a path-safe directory suffix. The
// default branch gets none. A value that needed sanitizing also carries a
// short hash of the original, so distinct refs never share a suffix.
func refSuffix(ref config.GitReference) string {
	if ref.Kind == config.RefDefault {
		return ""
	}
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, ref.Value)
	if safe != ref.Value {
		sum := sha256.Sum256([]byte(ref.Value))
		safe = fmt.Sprintf("%s-%x", safe, sum[:4])
	}
	return fmt.Sprintf("@%s-%s", ref.Kind, safe)
}

// downloadPath returns the cache file for a remote URL, e.g.
// "https://example.com/a/b.zsh" -> <root>/downloads/example.com/a/b.zsh.
func (c *cache) downloadPath(remoteURL string) string {
	return filepath.Join(c.root, downloadsDirName, urlPathSegments(remoteURL))
}

// urlPathSegments converts a URL into a path-safe relative location rooted
// at the host. The conversion is deterministic, so equivalent descriptors
// land in the same cache entry.
func urlPathSegments(rawURL string) string {
	var parts []string
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		parts = append([]string{u.Host}, strings.Split(u.Path, "/")...)
	} else {
		// scp-like syntax, e.g. "git@github.com:owner/repo"
		s := strings.TrimPrefix(rawURL, "git@")
		s = strings.ReplaceAll(s, ":", "/")
		parts = strings.Split(s, "/")
	}

	safe := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" && p != "." && p != ".." {
			safe = append(safe, p)
		}
	}
	if len(safe) == 0 {
		return fmt.Sprintf("unnamed-%x", []byte(rawURL))
	}
	return filepath.Join(safe...)
}
