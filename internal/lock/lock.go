// SPDX-License-Identifier: MPL-2.0

package lock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kvnxiao/sheldon/internal/config"
)

// lockFormatVersion is bumped whenever the lock artifact layout changes;
// a mismatch makes the artifact read as invalid, forcing a rebuild.
const lockFormatVersion = 1

type (
	// Options configures one resolution run.
	Options struct {
		// DataDir is the root of the source cache and the lock file.
		DataDir string

		// Update re-fetches pinned git references that would otherwise be
		// left untouched.
		Update bool

		// Profile selects which profile-tagged plugins participate.
		Profile string

		// Parallelism bounds the resolution worker pool. Zero means the
		// number of CPUs.
		Parallelism int

		// Client is the HTTP client for remote downloads. Nil means
		// http.DefaultClient.
		Client *http.Client
	}

	// LockedConfig is the fully resolved, fingerprinted result of one
	// resolution run. It is immutable once produced, serializable to the
	// lock artifact, and re-verifiable against a live configuration.
	LockedConfig struct {
		Version     int       `toml:"version"`
		Fingerprint string    `toml:"fingerprint"`
		Profile     string    `toml:"profile,omitempty"`
		CreatedAt   time.Time `toml:"created_at"`

		// Plugins is ordered by configuration declaration order.
		Plugins []LockedPlugin `toml:"plugins,omitempty"`

		// Errors holds the per-plugin failures of the run, ordered by the
		// failing plugins' declaration order.
		Errors []PluginFailure `toml:"errors,omitempty"`
	}

	// LockedPlugin is one successfully resolved and rendered plugin.
	LockedPlugin struct {
		Name string `toml:"name"`

		// Dir is the resolved location: a directory for git/local sources,
		// a file for remote ones.
		Dir string `toml:"dir"`

		// Files are the matched files, deterministically sorted.
		Files []string `toml:"files,omitempty"`

		// Fragments are the rendered shell-script snippets, in template
		// (then file) order.
		Fragments []string `toml:"fragments,omitempty"`
	}

	// PluginFailure records one plugin's resolution or render failure.
	PluginFailure struct {
		Name    string `toml:"name"`
		Message string `toml:"message"`

		// Err is the underlying error; not serialized.
		Err error `toml:"-"`
	}
)

// Lock resolves every active plugin in cfg and assembles the LockedConfig.
// Resolution fans out over a bounded worker pool; a failing plugin is
// recorded in Errors by name and never aborts its siblings, so partial
// results are always produced. The returned error is reserved for
// environmental failures that prevent the run from starting at all.
func Lock(ctx context.Context, cfg *config.Config, opts Options) (*LockedConfig, error) {
	if opts.DataDir == "" {
		dir, err := config.DataDir()
		if err != nil {
			return nil, err
		}
		opts.DataDir = dir
	}
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	workers := opts.Parallelism
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	l := &locker{
		cfg:    cfg,
		opts:   opts,
		cache:  newCache(opts.DataDir),
		git:    newGitFetcher(),
		client: client,
	}

	var active []*config.Plugin
	for i := range cfg.Plugins {
		if cfg.Plugins[i].ActiveFor(opts.Profile) {
			active = append(active, &cfg.Plugins[i])
		}
	}

	// Each worker writes only its own slot, so declaration order survives
	// arbitrary completion order without further synchronization.
	resolved := make([]*LockedPlugin, len(active))
	failed := make([]*PluginFailure, len(active))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, plugin := range active {
		g.Go(func() error {
			lp, err := l.resolvePlugin(ctx, plugin)
			if err != nil {
				failed[i] = &PluginFailure{Name: plugin.Name, Message: err.Error(), Err: err}
				return nil
			}
			resolved[i] = lp
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // Workers never return errors; failures land in slots

	locked := &LockedConfig{
		Version:     lockFormatVersion,
		Fingerprint: Fingerprint(cfg, opts.Profile),
		Profile:     opts.Profile,
		CreatedAt:   time.Now().UTC(),
	}
	for i := range active {
		switch {
		case resolved[i] != nil:
			locked.Plugins = append(locked.Plugins, *resolved[i])
		case failed[i] != nil:
			locked.Errors = append(locked.Errors, *failed[i])
		}
	}
	return locked, nil
}

// Verify reports whether the locked result can be reused for cfg without
// re-resolving: the fingerprint must match the one recomputed from cfg and
// every resolved location must still exist on disk.
func (lc *LockedConfig) Verify(cfg *config.Config, profile string) bool {
	if lc.Fingerprint != Fingerprint(cfg, profile) {
		return false
	}
	for i := range lc.Plugins {
		if _, err := os.Stat(lc.Plugins[i].Dir); err != nil {
			return false
		}
	}
	return true
}

// Script concatenates every plugin's fragments, in order, into the final
// shell script. Pure function; plugins with no fragments contribute nothing.
func (lc *LockedConfig) Script() string {
	var b strings.Builder
	for i := range lc.Plugins {
		for _, fragment := range lc.Plugins[i].Fragments {
			b.WriteString(fragment)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Fingerprint computes a deterministic digest of the entire configuration
// value plus the active profile. Structurally equal configurations always
// produce the same fingerprint; any semantic change (a plugin added, a
// reference or pattern or template changed) produces a different one.
func Fingerprint(cfg *config.Config, profile string) string {
	h := sha256.New()
	field := func(parts ...string) {
		for _, p := range parts {
			io.WriteString(h, p) //nolint:errcheck,gosec // hash.Hash never errors
			h.Write([]byte{0})   //nolint:errcheck,gosec // hash.Hash never errors
		}
		h.Write([]byte{'\n'}) //nolint:errcheck,gosec // hash.Hash never errors
	}

	field("shell", cfg.Shell)
	field("profile", profile)
	field(append([]string{"matches"}, cfg.Matches...)...)
	field(append([]string{"apply"}, cfg.Apply...)...)

	names := make([]string, 0, len(cfg.Templates))
	for name := range cfg.Templates {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		field("template", name, cfg.Templates[name])
	}

	for i := range cfg.Plugins {
		p := &cfg.Plugins[i]
		// Hash the normalized descriptor so equivalent spellings of the
		// same source do not change the fingerprint.
		src, err := p.Source()
		if err != nil {
			field("plugin", p.Name, "invalid")
			continue
		}
		field("plugin", p.Name, string(src.Kind), src.URL, string(src.Reference.Kind), src.Reference.Value, src.Path)
		field(append([]string{"use"}, p.Use...)...)
		field(append([]string{"plugin-apply"}, p.Apply...)...)
		field(append([]string{"profiles"}, p.Profiles...)...)
	}

	return hex.EncodeToString(h.Sum(nil))
}
