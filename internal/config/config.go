// SPDX-License-Identifier: MPL-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

var (
	// ErrInvalidConfig is the sentinel error wrapped by ConfigError.
	ErrInvalidConfig = errors.New("invalid config")

	// defaultTemplates are the built-in templates. A template containing the
	// {{ file }} placeholder is rendered once per matched file; the others
	// are rendered once per plugin.
	defaultTemplates = map[string]string{
		"source": `source "{{ file }}"`,
		"PATH":   `export PATH="{{ dir }}:$PATH"`,
		"path":   `path=( "{{ dir }}" $path )`,
		"fpath":  `fpath=( "{{ dir }}" $fpath )`,
	}

	// defaultMatches are the file-discovery patterns tried, in order, when a
	// plugin declares no `use` patterns. The first pattern that matches at
	// least one file wins.
	defaultMatches = []string{
		"{{ name }}.plugin.zsh",
		"*.plugin.zsh",
		"init.zsh",
		"*.zsh",
		"*.sh",
		"*.zsh-theme",
	}

	// defaultApply is the template list applied when a plugin declares none.
	defaultApply = []string{"source"}
)

type (
	// Config is a fully loaded and validated plugins configuration. Plugin
	// order equals declaration order in the file and is preserved all the
	// way into the generated script.
	Config struct {
		// Shell is the target shell ("zsh" or "bash"); informational only.
		Shell string `toml:"shell,omitempty"`

		// Matches overrides the default file-discovery patterns applied to
		// plugins without explicit `use` patterns.
		Matches []string `toml:"matches,omitempty"`

		// Apply overrides the default template list for plugins without an
		// explicit `apply`.
		Apply []string `toml:"apply,omitempty"`

		// Templates are user-defined templates, merged over the built-ins.
		Templates map[string]string `toml:"templates,omitempty"`

		// Plugins is the ordered plugin list.
		Plugins []Plugin `toml:"plugins,omitempty"`
	}

	// Plugin is one configured plugin as written in the TOML file. Exactly
	// one of Github, Git, Remote, or Local must be set.
	Plugin struct {
		// Name uniquely identifies the plugin within the configuration.
		Name string `toml:"name"`

		// Github is an "owner/repo" shorthand for a GitHub repository.
		Github string `toml:"github,omitempty"`
		// Git is a full git URL.
		Git string `toml:"git,omitempty"`
		// Remote is the URL of a single downloadable file.
		Remote string `toml:"remote,omitempty"`
		// Local is a pre-existing directory on disk.
		Local string `toml:"local,omitempty"`

		// Branch, Tag, and Rev select the git reference; at most one may be
		// set. All empty means the default branch.
		Branch string `toml:"branch,omitempty"`
		Tag    string `toml:"tag,omitempty"`
		Rev    string `toml:"rev,omitempty"`

		// Use is the ordered glob pattern list selecting files within the
		// resolved source. Empty means the default discovery rule applies.
		Use []string `toml:"use,omitempty"`

		// Apply is the ordered template name list. Empty means the config
		// (or built-in) default applies.
		Apply []string `toml:"apply,omitempty"`

		// Profiles restricts the plugin to the named profiles. Empty means
		// the plugin is always active.
		Profiles []string `toml:"profiles,omitempty"`
	}

	// ConfigError reports a configuration that failed validation. It is
	// always produced before the resolution core runs.
	//
	//nolint:revive // config.ConfigError matches the error taxonomy name
	ConfigError struct {
		Plugin string
		Reason string
	}
)

func (e *ConfigError) Error() string {
	if e.Plugin == "" {
		return fmt.Sprintf("invalid config: %s", e.Reason)
	}
	return fmt.Sprintf("invalid config: plugin %q: %s", e.Plugin, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// Load reads, parses, and validates the config file at path. The returned
// warnings are advisory and never affect control flow.
func Load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses and validates raw TOML config contents.
func Parse(data []byte) (*Config, []string, error) {
	var cfg Config
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, nil, &ConfigError{Reason: err.Error()}
	}
	warnings, err := cfg.validate()
	if err != nil {
		return nil, nil, err
	}
	return &cfg, warnings, nil
}

// Save writes the config back to path, creating parent directories as
// needed. Comments in a hand-edited file are not preserved.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// validate checks the whole configuration and returns advisory warnings.
func (c *Config) validate() ([]string, error) {
	var warnings []string
	seen := make(map[string]struct{}, len(c.Plugins))
	for i := range c.Plugins {
		p := &c.Plugins[i]
		if p.Name == "" {
			return nil, &ConfigError{Reason: fmt.Sprintf("plugin at index %d has no name", i)}
		}
		if _, dup := seen[p.Name]; dup {
			return nil, &ConfigError{Plugin: p.Name, Reason: "duplicate plugin name"}
		}
		seen[p.Name] = struct{}{}

		src, err := p.Source()
		if err != nil {
			return nil, err
		}
		if src.Kind == SourceRemote && len(p.Use) > 0 {
			warnings = append(warnings, fmt.Sprintf("plugin %q: `use` patterns are ignored for remote sources", p.Name))
		}
		if src.Kind != SourceGit && (p.Branch != "" || p.Tag != "" || p.Rev != "") {
			warnings = append(warnings, fmt.Sprintf("plugin %q: branch/tag/rev only apply to git sources", p.Name))
		}
	}
	return warnings, nil
}

// Source normalizes the plugin's raw TOML fields into a Source descriptor.
func (p *Plugin) Source() (Source, error) {
	var kinds int
	for _, set := range []bool{p.Github != "", p.Git != "", p.Remote != "", p.Local != ""} {
		if set {
			kinds++
		}
	}
	if kinds != 1 {
		return Source{}, &ConfigError{Plugin: p.Name, Reason: "exactly one of github, git, remote, or local must be set"}
	}

	ref, err := p.reference()
	if err != nil {
		return Source{}, err
	}

	switch {
	case p.Github != "":
		if strings.Count(p.Github, "/") != 1 {
			return Source{}, &ConfigError{Plugin: p.Name, Reason: fmt.Sprintf("github source %q is not of the form owner/repo", p.Github)}
		}
		return Source{Kind: SourceGit, URL: normalizeGitURL("https://github.com/" + p.Github), Reference: ref}, nil
	case p.Git != "":
		return Source{Kind: SourceGit, URL: normalizeGitURL(p.Git), Reference: ref}, nil
	case p.Remote != "":
		if ref.Kind != RefDefault {
			return Source{}, &ConfigError{Plugin: p.Name, Reason: "branch/tag/rev cannot be used with a remote source"}
		}
		return Source{Kind: SourceRemote, URL: strings.TrimSpace(p.Remote)}, nil
	default:
		if ref.Kind != RefDefault {
			return Source{}, &ConfigError{Plugin: p.Name, Reason: "branch/tag/rev cannot be used with a local source"}
		}
		return Source{Kind: SourceLocal, Path: expandTilde(p.Local)}, nil
	}
}

// reference extracts the git reference, enforcing that at most one of
// branch, tag, and rev is set.
func (p *Plugin) reference() (GitReference, error) {
	var refs []GitReference
	if p.Branch != "" {
		refs = append(refs, GitReference{Kind: RefBranch, Value: p.Branch})
	}
	if p.Tag != "" {
		refs = append(refs, GitReference{Kind: RefTag, Value: p.Tag})
	}
	if p.Rev != "" {
		refs = append(refs, GitReference{Kind: RefRev, Value: p.Rev})
	}
	switch len(refs) {
	case 0:
		return GitReference{}, nil
	case 1:
		return refs[0], nil
	default:
		return GitReference{}, &ConfigError{Plugin: p.Name, Reason: "at most one of branch, tag, or rev may be set"}
	}
}

// MatchesFor returns the discovery patterns for a plugin: its own `use`
// patterns when present, otherwise the config-level (or built-in) defaults.
// The second result reports whether the patterns were explicit; explicit
// patterns matching zero files are an error, defaults are not.
func (c *Config) MatchesFor(p *Plugin) (patterns []string, explicit bool) {
	if len(p.Use) > 0 {
		return p.Use, true
	}
	if len(c.Matches) > 0 {
		return c.Matches, false
	}
	return defaultMatches, false
}

// ApplyFor returns the template names applied to a plugin.
func (c *Config) ApplyFor(p *Plugin) []string {
	if len(p.Apply) > 0 {
		return p.Apply
	}
	if len(c.Apply) > 0 {
		return c.Apply
	}
	return defaultApply
}

// TemplateFor looks up a template body by name, consulting user-defined
// templates before the built-ins.
func (c *Config) TemplateFor(name string) (string, bool) {
	if body, ok := c.Templates[name]; ok {
		return body, true
	}
	body, ok := defaultTemplates[name]
	return body, ok
}

// ActiveFor reports whether the plugin participates under the given profile.
// A plugin with no profile tags is always active.
func (p *Plugin) ActiveFor(profile string) bool {
	if len(p.Profiles) == 0 {
		return true
	}
	for _, want := range p.Profiles {
		if want == profile {
			return true
		}
	}
	return false
}
