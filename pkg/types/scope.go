package types

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Scope selects the root a destination path is relative to.
type Scope string

const (
	ScopeProject Scope = "project"
	ScopeUser    Scope = "user"
)

// ParseScope accepts the scope names used in source frontmatter and keys.
// An empty string means project scope.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeProject, "":
		return ScopeProject, nil
	case ScopeUser:
		return ScopeUser, nil
	}
	return "", fmt.Errorf("unknown scope %q", s)
}

// Key identifies one deployed file: a scope plus a slash-separated path
// relative to that scope's root.
type Key struct {
	Scope Scope
	Path  string
}

// NewKey cleans p into the canonical slash form.
func NewKey(scope Scope, p string) Key {
	return Key{Scope: scope, Path: path.Clean(filepath.ToSlash(p))}
}

// String renders the key the way the lockfile stores it: "<scope>:<path>".
func (k Key) String() string {
	return string(k.Scope) + ":" + k.Path
}

// Less orders keys by path first so that plans read top-down by location.
func (k Key) Less(other Key) bool {
	if k.Path != other.Path {
		return k.Path < other.Path
	}
	return k.Scope < other.Scope
}

// Contained reports an error when the key's path could resolve outside its
// scope root: absolute paths, the root itself, and anything climbing "..".
func (k Key) Contained() error {
	p := k.Path
	switch {
	case p == "" || p == ".":
		return fmt.Errorf("path %q names the %s root itself", p, k.Scope)
	case path.IsAbs(p) || filepath.IsAbs(p) || filepath.VolumeName(p) != "":
		return fmt.Errorf("path %q is absolute", p)
	case p == ".." || strings.HasPrefix(p, "../"):
		return fmt.Errorf("path %q leaves the %s root", p, k.Scope)
	}
	return nil
}

// ParseKey is the inverse of Key.String. Keys that escape their scope root
// are rejected.
func ParseKey(s string) (Key, error) {
	scopeStr, p, ok := strings.Cut(s, ":")
	if !ok || p == "" || scopeStr == "" {
		return Key{}, fmt.Errorf("malformed key %q: want <scope>:<path>", s)
	}
	scope, err := ParseScope(scopeStr)
	if err != nil {
		return Key{}, fmt.Errorf("malformed key %q: %w", s, err)
	}
	key := NewKey(scope, p)
	if err := key.Contained(); err != nil {
		return Key{}, fmt.Errorf("malformed key %q: %w", s, err)
	}
	return key, nil
}

// Roots maps each scope to an absolute directory on disk.
type Roots struct {
	Project string
	User    string
}

// Dir returns the root for scope.
func (r Roots) Dir(scope Scope) string {
	if scope == ScopeUser {
		return r.User
	}
	return r.Project
}

// Abs joins the key's path onto its scope root.
func (r Roots) Abs(k Key) string {
	return filepath.Join(r.Dir(k.Scope), filepath.FromSlash(k.Path))
}

// Rel turns an absolute path under the scope root back into a key.
func (r Roots) Rel(scope Scope, abs string) (Key, error) {
	rel, err := filepath.Rel(r.Dir(scope), abs)
	if err != nil {
		return Key{}, err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return Key{}, fmt.Errorf("%s is outside the %s root", abs, scope)
	}
	return NewKey(scope, rel), nil
}
