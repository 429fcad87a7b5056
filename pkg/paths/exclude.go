package paths

import (
	"path/filepath"
	"strings"
)

type patternKind uint8

const (
	// matches any single path component
	kindComponent patternKind = iota
	// matches the whole relative path
	kindPath
	// contains one "**"
	kindDoublestar
)

type pattern struct {
	kind   patternKind
	glob   string
	prefix string
	suffix string
}

// ExcludeMatcher decides which paths Generate leaves out of a manifest.
// Patterns follow gitignore loosely: a bare name or glob matches any
// component, a pattern with a slash matches the full path, and one
// "**" spans any number of directories.
type ExcludeMatcher struct {
	patterns []pattern
}

func NewExcludeMatcher(globs []string) *ExcludeMatcher {
	m := &ExcludeMatcher{}
	for _, g := range globs {
		m.patterns = append(m.patterns, compile(g))
	}
	return m
}

func compile(glob string) pattern {
	glob = strings.TrimSuffix(glob, "/")
	if before, after, ok := strings.Cut(glob, "**"); ok &&
		!strings.Contains(after, "**") {
		return pattern{
			kind:   kindDoublestar,
			glob:   glob,
			prefix: strings.TrimSuffix(before, "/"),
			suffix: strings.TrimPrefix(after, "/"),
		}
	}
	if strings.Contains(glob, "/") {
		return pattern{kind: kindPath, glob: glob}
	}
	return pattern{kind: kindComponent, glob: glob}
}

func (m *ExcludeMatcher) Match(relPath string) bool {
	for _, p := range m.patterns {
		if p.match(relPath) {
			return true
		}
	}
	return false
}

func (p pattern) match(relPath string) bool {
	switch p.kind {
	case kindDoublestar:
		if !strings.Contains(p.glob, "/") &&
			anyComponent(p.glob, relPath) {
			return true
		}
		return p.matchDoublestar(relPath)
	case kindPath:
		matched, _ := filepath.Match(p.glob, relPath)
		return matched
	default:
		return anyComponent(p.glob, relPath)
	}
}

func anyComponent(glob, relPath string) bool {
	for part := range strings.SplitSeq(relPath, "/") {
		if matched, _ := filepath.Match(glob, part); matched {
			return true
		}
	}
	return false
}

func (p pattern) matchDoublestar(relPath string) bool {
	switch {
	case p.prefix == "" && p.suffix == "":
		return true
	case p.prefix == "":
		return matchTail(p.suffix, relPath)
	case p.suffix == "":
		return relPath == p.prefix ||
			strings.HasPrefix(relPath, p.prefix+"/")
	}
	rest, ok := strings.CutPrefix(relPath, p.prefix+"/")
	if !ok {
		return false
	}
	return matchTail(p.suffix, rest)
}

func matchTail(glob, relPath string) bool {
	parts := strings.Split(relPath, "/")
	for i := range parts {
		tail := strings.Join(parts[i:], "/")
		if matched, _ := filepath.Match(glob, tail); matched {
			return true
		}
	}
	return false
}
