package config

import (
	"fmt"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// Matcher matches project-relative slash paths against ignore globs.
// "*" stays within one path segment, "**" crosses segments, and a
// pattern without a slash is also tried against the base name.
type Matcher struct {
	patterns []compiledGlob
}

type compiledGlob struct {
	source   string
	glob     glob.Glob
	baseOnly bool
}

// CompileGlobs compiles patterns into a Matcher. The first malformed
// pattern is reported.
func CompileGlobs(patterns []string) (*Matcher, error) {
	m := &Matcher{patterns: make([]compiledGlob, 0, len(patterns))}
	for _, p := range patterns {
		p = strings.TrimPrefix(p, "./")
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", p, err)
		}
		m.patterns = append(m.patterns, compiledGlob{
			source:   p,
			glob:     g,
			baseOnly: !strings.Contains(p, "/"),
		})
	}
	return m, nil
}

// Match reports whether p matches any pattern. A nil Matcher matches nothing.
func (m *Matcher) Match(p string) bool {
	if m == nil {
		return false
	}
	for _, g := range m.patterns {
		if g.glob.Match(p) {
			return true
		}
		if g.baseOnly && g.glob.Match(path.Base(p)) {
			return true
		}
	}
	return false
}

// Empty reports whether the matcher has no patterns.
func (m *Matcher) Empty() bool {
	return m == nil || len(m.patterns) == 0
}
