package watch

import (
	"path"
	"strings"

	"github.com/arthur-debert/calvin/pkg/errors"
	"github.com/gobwas/glob"
)

// Matcher decides which source paths never trigger a pass.
type Matcher struct {
	patterns []string
	globs    []glob.Glob
}

// NewMatcher compiles slash-separated glob patterns. "**" crosses
// directories, "*" does not.
func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{patterns: patterns}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigValid, "watch.ignore: bad pattern %q", p)
		}
		m.globs = append(m.globs, g)
		// "**/x" also matches x at the top level.
		if rest := strings.TrimPrefix(p, "**/"); rest != p {
			if g, err := glob.Compile(rest, '/'); err == nil {
				m.globs = append(m.globs, g)
			}
		}
	}
	return m, nil
}

// Match reports whether rel, or any directory containing it, is ignored.
func (m *Matcher) Match(rel string) bool {
	if m == nil {
		return false
	}
	for p := path.Clean(rel); p != "." && p != "/"; p = path.Dir(p) {
		for _, g := range m.globs {
			if g.Match(p) {
				return true
			}
		}
	}
	return false
}
