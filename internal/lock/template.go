// SPDX-License-Identifier: MPL-2.0

package lock

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kvnxiao/sheldon/internal/config"
)

// placeholderPattern matches mustache-style placeholders like "{{ name }}".
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

const (
	placeholderName = "name"
	placeholderDir  = "dir"
	placeholderFile = "file"
)

// expand substitutes recognized placeholders in template. Unrecognized
// placeholders are left verbatim so shells using "{{" literally keep working.
func expand(template string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(m string) string {
		key := placeholderPattern.FindStringSubmatch(m)[1]
		if v, ok := vars[key]; ok {
			return v
		}
		return m
	})
}

// usesFile reports whether a template references the per-file placeholder,
// which makes it render once per matched file instead of once per plugin.
func usesFile(template string) bool {
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if m[1] == placeholderFile {
			return true
		}
	}
	return false
}

// matchFiles expands glob patterns against the resolved directory and
// returns the union of matches, deduplicated and sorted by path. Patterns
// may reference the {{ name }} placeholder.
func matchFiles(dir, name string, patterns []string) ([]string, error) {
	vars := map[string]string{placeholderName: name}
	fsys := os.DirFS(dir)

	set := make(map[string]struct{})
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, expand(pattern, vars))
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			info, err := fs.Stat(fsys, m)
			if err != nil || info.IsDir() {
				continue
			}
			set[filepath.Join(dir, filepath.FromSlash(m))] = struct{}{}
		}
	}

	files := make([]string, 0, len(set))
	for f := range set {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}

// discoverFiles applies the default discovery rule for plugins without
// explicit `use` patterns: patterns are tried in order and the first one
// matching at least one file wins. Zero matches is not an error here, since
// non-file templates can still apply.
func discoverFiles(dir, name string, patterns []string) ([]string, error) {
	for _, pattern := range patterns {
		files, err := matchFiles(dir, name, []string{pattern})
		if err != nil {
			return nil, err
		}
		if len(files) > 0 {
			return files, nil
		}
	}
	return nil, nil
}

// render applies the plugin's templates, in order, to the resolved location.
// Templates referencing {{ file }} render once per matched file in file
// order; others render once. Each rendering yields one script fragment.
func render(cfg *config.Config, plugin *config.Plugin, dir string, files []string) ([]string, error) {
	vars := map[string]string{
		placeholderName: plugin.Name,
		placeholderDir:  dir,
	}

	var fragments []string
	for _, tmplName := range cfg.ApplyFor(plugin) {
		body, ok := cfg.TemplateFor(tmplName)
		if !ok {
			return nil, &TemplateError{Plugin: plugin.Name, Template: tmplName}
		}
		if usesFile(body) {
			for _, file := range files {
				fileVars := map[string]string{
					placeholderName: plugin.Name,
					placeholderDir:  dir,
					placeholderFile: file,
				}
				fragments = append(fragments, expand(body, fileVars))
			}
		} else {
			fragments = append(fragments, expand(body, vars))
		}
	}
	return fragments, nil
}
