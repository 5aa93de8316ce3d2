// SPDX-License-Identifier: MPL-2.0

package lock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kvnxiao/sheldon/internal/config"
	"github.com/kvnxiao/sheldon/internal/testutil"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestCleanPrunesUnreferencedEntries(t *testing.T) {
	dataDir := t.TempDir()
	c := newCache(dataDir)

	cfg := &config.Config{
		Plugins: []config.Plugin{
			{Name: "kept-repo", Git: "https://github.com/owner/kept"},
			{Name: "kept-pinned", Git: "https://github.com/owner/pinned", Tag: "v1.0.0"},
			{Name: "kept-file", Remote: "https://example.com/kept.zsh"},
		},
	}

	keptRepo := c.gitDir(config.Source{Kind: config.SourceGit, URL: "https://github.com/owner/kept"})
	keptPinned := c.gitDir(config.Source{
		Kind:      config.SourceGit,
		URL:       "https://github.com/owner/pinned",
		Reference: config.GitReference{Kind: config.RefTag, Value: "v1.0.0"},
	})
	staleRepo := c.gitDir(config.Source{Kind: config.SourceGit, URL: "https://github.com/other/stale"})
	keptFile := c.downloadPath("https://example.com/kept.zsh")
	staleFile := c.downloadPath("https://example.com/stale.zsh")

	testutil.WriteFiles(t, keptRepo, map[string]string{"a.zsh": ""})
	testutil.WriteFiles(t, keptPinned, map[string]string{"p.zsh": ""})
	testutil.WriteFiles(t, staleRepo, map[string]string{"b.zsh": ""})
	writeFile(t, keptFile, "# kept")
	writeFile(t, staleFile, "# stale")

	if warnings := Clean(cfg, dataDir); len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	for _, kept := range []string{keptRepo, keptPinned, keptFile} {
		if _, err := os.Stat(kept); err != nil {
			t.Errorf("expected referenced entry %s to survive cleaning", kept)
		}
	}
	for _, stale := range []string{staleRepo, staleFile} {
		if _, err := os.Stat(stale); !os.IsNotExist(err) {
			t.Errorf("expected unreferenced entry %s to be removed", stale)
		}
	}
}

func TestCleanMissingAreasIsQuiet(t *testing.T) {
	cfg := &config.Config{}
	if warnings := Clean(cfg, filepath.Join(t.TempDir(), "empty")); len(warnings) != 0 {
		t.Errorf("expected no warnings for a missing cache, got %v", warnings)
	}
}
