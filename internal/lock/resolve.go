// SPDX-License-Identifier: MPL-2.0

package lock

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/kvnxiao/sheldon/internal/config"
)

// locker carries the shared state of one resolution run.
type locker struct {
	cfg    *config.Config
	opts   Options
	cache  *cache
	git    *gitFetcher
	client *http.Client
}

// resolvePlugin materializes one plugin's source, selects its files, and
// renders its script fragments.
func (l *locker) resolvePlugin(ctx context.Context, plugin *config.Plugin) (*LockedPlugin, error) {
	src, err := plugin.Source()
	if err != nil {
		return nil, err
	}

	location, err := l.resolveSource(ctx, plugin.Name, src)
	if err != nil {
		return nil, err
	}

	var (
		dir   string
		files []string
	)
	if src.Kind == config.SourceRemote {
		// A remote source is a single file; it is its own match set.
		dir = filepath.Dir(location)
		files = []string{location}
	} else {
		dir = location
		patterns, explicit := l.cfg.MatchesFor(plugin)
		if explicit {
			files, err = matchFiles(dir, plugin.Name, patterns)
			if err == nil && len(files) == 0 {
				err = &NoMatchError{Plugin: plugin.Name, Patterns: patterns}
			}
		} else {
			files, err = discoverFiles(dir, plugin.Name, patterns)
		}
		if err != nil {
			return nil, err
		}
	}

	fragments, err := render(l.cfg, plugin, dir, files)
	if err != nil {
		return nil, err
	}

	return &LockedPlugin{
		Name:      plugin.Name,
		Dir:       location,
		Files:     files,
		Fragments: fragments,
	}, nil
}

// resolveSource ensures the source's content exists on disk and returns its
// location: a directory for git/local sources, a file for remote ones.
// Fetching goes through the cache, so equivalent sources across plugins
// trigger exactly one fetch; the error is attributed to the requesting
// plugin by name.
func (l *locker) resolveSource(ctx context.Context, name string, src config.Source) (string, error) {
	switch src.Kind {
	case config.SourceGit:
		dir := l.cache.gitDir(src)
		loc, err := l.cache.acquire(src, func() (string, error) {
			if err := l.git.ensure(ctx, src.URL, src.Reference, dir, l.opts.Update); err != nil {
				return "", err
			}
			return dir, nil
		})
		if err != nil {
			return "", &GitError{Plugin: name, URL: src.URL, Err: err}
		}
		return loc, nil

	case config.SourceRemote:
		dest := l.cache.downloadPath(src.URL)
		loc, err := l.cache.acquire(src, func() (string, error) {
			// Presence alone is freshness: remote content is immutable per
			// descriptor, so an existing cache entry is never re-fetched.
			if _, err := os.Stat(dest); err == nil {
				return dest, nil
			}
			if err := download(ctx, l.client, src.URL, dest); err != nil {
				return "", err
			}
			return dest, nil
		})
		if err != nil {
			return "", &NetworkError{Plugin: name, URL: src.URL, Err: err}
		}
		return loc, nil

	case config.SourceLocal:
		info, err := os.Stat(src.Path)
		if err != nil {
			return "", &NotFoundError{Plugin: name, Path: src.Path, Err: err}
		}
		if !info.IsDir() {
			return "", &NotFoundError{Plugin: name, Path: src.Path, Err: fmt.Errorf("not a directory")}
		}
		return src.Path, nil

	default:
		return "", fmt.Errorf("unhandled source kind %q", src.Kind)
	}
}
