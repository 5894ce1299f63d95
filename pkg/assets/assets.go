// Package assets loads the source tree calvin deploys from.
//
// An asset is a Markdown file with optional YAML frontmatter:
//
//	---
//	description: Review the staged diff
//	kind: prompt        # prompt | rule | skill
//	scope: project      # project | user
//	targets: [claude]   # empty means every enabled adapter
//	---
//	body...
//
// The asset id is its path below the source directory without the
// extension, so "review/pr.md" has id "review/pr".
package assets

import (
	"bytes"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/calvin/pkg/errors"
	"github.com/arthur-debert/calvin/pkg/internal/hashutil"
	"github.com/arthur-debert/calvin/pkg/logging"
	"github.com/arthur-debert/calvin/pkg/types"
	"gopkg.in/yaml.v3"
)

// Extension is the suffix of asset files.
const Extension = ".md"

// IgnoreFile marks a directory whose contents are not assets.
const IgnoreFile = ".calvinignore"

// Kind is what an asset becomes in a target tool.
type Kind string

const (
	KindPrompt Kind = "prompt"
	KindRule   Kind = "rule"
	KindSkill  Kind = "skill"
)

// Asset is one parsed source file.
type Asset struct {
	ID string
	// Source is the slash path relative to the source directory.
	Source      string
	Description string
	Kind        Kind
	Scope       types.Scope
	Targets     []string
	Body        []byte
	// Digest covers the raw source bytes.
	Digest string
}

// TargetsAdapter reports whether the asset is meant for the named adapter.
func (a Asset) TargetsAdapter(name string) bool {
	if len(a.Targets) == 0 {
		return true
	}
	for _, t := range a.Targets {
		if t == name {
			return true
		}
	}
	return false
}

type frontmatter struct {
	Description string   `yaml:"description"`
	Kind        string   `yaml:"kind"`
	Scope       string   `yaml:"scope"`
	Targets     []string `yaml:"targets"`
}

// IsAssetPath reports whether a relative source path names an asset.
// Hidden files and directories are never assets.
func IsAssetPath(rel string) bool {
	rel = path.Clean(strings.ReplaceAll(rel, "\\", "/"))
	if !strings.HasSuffix(rel, Extension) {
		return false
	}
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") {
			return false
		}
	}
	return true
}

// ID derives the asset id from its relative source path.
func ID(rel string) string {
	return strings.TrimSuffix(path.Clean(rel), Extension)
}

// Parse builds an asset from the bytes at rel.
func Parse(rel string, data []byte) (Asset, error) {
	rel = path.Clean(rel)
	a := Asset{
		ID:     ID(rel),
		Source: rel,
		Kind:   KindPrompt,
		Scope:  types.ScopeProject,
		Digest: hashutil.Digest(data),
	}

	head, body, has := splitFrontmatter(data)
	a.Body = body
	if !has {
		return a, nil
	}

	var fm frontmatter
	if err := yaml.Unmarshal(head, &fm); err != nil {
		return Asset{}, errors.Wrapf(err, errors.ErrAssetParse, "invalid frontmatter in %s", rel).
			WithDetail(errors.DetailPath, rel)
	}

	a.Description = fm.Description
	a.Targets = fm.Targets
	switch Kind(fm.Kind) {
	case "":
	case KindPrompt, KindRule, KindSkill:
		a.Kind = Kind(fm.Kind)
	default:
		return Asset{}, errors.Newf(errors.ErrAssetParse, "%s: unknown kind %q", rel, fm.Kind).
			WithDetail(errors.DetailPath, rel)
	}
	scope, err := types.ParseScope(fm.Scope)
	if err != nil {
		return Asset{}, errors.Wrapf(err, errors.ErrAssetParse, "%s: bad scope", rel).
			WithDetail(errors.DetailPath, rel)
	}
	a.Scope = scope
	return a, nil
}

func splitFrontmatter(data []byte) (head, body []byte, ok bool) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	if !bytes.HasPrefix(data, []byte("---\n")) {
		return nil, data, false
	}
	rest := data[4:]
	if bytes.HasPrefix(rest, []byte("---\n")) {
		return nil, rest[4:], true
	}
	end := bytes.Index(rest, []byte("\n---\n"))
	if end < 0 {
		if bytes.HasSuffix(rest, []byte("\n---")) {
			return rest[:len(rest)-4], nil, true
		}
		return nil, data, false
	}
	return rest[:end], rest[end+5:], true
}

// List returns every asset path below dir, relative and sorted.
func List(fsys types.FS, dir string) ([]string, error) {
	logger := logging.GetLogger("assets")

	if _, err := fsys.Stat(dir); err != nil {
		return nil, errors.Wrapf(err, errors.ErrNotFound, "source directory %s not found", dir).
			WithDetail(errors.DetailPath, dir).
			WithRemediation("create it or set source.dir in .calvin.toml")
	}

	var out []string
	var walk func(abs, rel string) error
	walk = func(abs, rel string) error {
		entries, err := fsys.ReadDir(abs)
		if err != nil {
			return errors.Wrapf(err, errors.ErrAssetParse, "cannot list %s", abs)
		}
		for _, e := range entries {
			if e.Name() == IgnoreFile {
				logger.Debug().Str("dir", rel).Msg("skipping directory with ignore file")
				return nil
			}
		}
		for _, e := range entries {
			child := path.Join(rel, e.Name())
			if strings.HasPrefix(e.Name(), ".") {
				continue
			}
			if e.IsDir() {
				if err := walk(filepath.Join(abs, e.Name()), child); err != nil {
					return err
				}
				continue
			}
			if IsAssetPath(child) {
				out = append(out, child)
			}
		}
		return nil
	}
	if err := walk(dir, ""); err != nil {
		return nil, err
	}

	sort.Strings(out)
	logger.Debug().Str("dir", dir).Int("count", len(out)).Msg("assets found")
	return out, nil
}

// Load parses every asset below dir.
func Load(fsys types.FS, dir string) ([]Asset, error) {
	paths, err := List(fsys, dir)
	if err != nil {
		return nil, err
	}
	out := make([]Asset, 0, len(paths))
	for _, rel := range paths {
		a, err := LoadOne(fsys, dir, rel)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// LoadOne reads and parses a single asset.
func LoadOne(fsys types.FS, dir, rel string) (Asset, error) {
	data, err := fsys.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		return Asset{}, errors.Wrapf(err, errors.ErrAssetParse, "cannot read %s", rel).
			WithDetail(errors.DetailPath, rel)
	}
	return Parse(rel, data)
}
