// SPDX-License-Identifier: MPL-2.0

package lock

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kvnxiao/sheldon/internal/config"
)

// Clean prunes cache entries under dataDir that no plugin in cfg references
// anymore. It runs before resolution; failures are reported as warnings and
// never abort the run.
func Clean(cfg *config.Config, dataDir string) []string {
	c := newCache(dataDir)

	expected := make(map[string]struct{})
	for i := range cfg.Plugins {
		src, err := cfg.Plugins[i].Source()
		if err != nil {
			continue
		}
		switch src.Kind {
		case config.SourceGit:
			expected[c.gitDir(src)] = struct{}{}
		case config.SourceRemote:
			expected[c.downloadPath(src.URL)] = struct{}{}
		case config.SourceLocal:
			// Local sources live outside the cache.
		}
	}

	var warnings []string
	for _, area := range []string{
		filepath.Join(dataDir, reposDirName),
		filepath.Join(dataDir, downloadsDirName),
	} {
		warnings = append(warnings, cleanArea(area, expected)...)
	}
	return warnings
}

// cleanArea removes every entry under area that neither is an expected
// location nor contains one.
func cleanArea(area string, expected map[string]struct{}) []string {
	var warnings []string
	err := filepath.WalkDir(area, func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == area {
			return err
		}
		if _, keep := expected[path]; keep {
			// SkipDir from a file entry would skip the rest of its parent
			// directory, hiding unreferenced siblings from the walk.
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if containsExpected(path, expected) {
			return nil
		}
		if rmErr := os.RemoveAll(path); rmErr != nil {
			warnings = append(warnings, fmt.Sprintf("failed to remove unused cache entry %s: %v", path, rmErr))
		}
		if d.IsDir() {
			return fs.SkipDir
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		warnings = append(warnings, fmt.Sprintf("failed to clean cache area %s: %v", area, err))
	}
	return warnings
}

// containsExpected reports whether path is an ancestor of any expected
// location.
func containsExpected(path string, expected map[string]struct{}) bool {
	prefix := path + string(filepath.Separator)
	for loc := range expected {
		if strings.HasPrefix(loc, prefix) {
			return true
		}
	}
	return false
}
