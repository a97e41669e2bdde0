// Package ignore implements the glob-matching half of the Workspace's
// is_path_ignored contract (spec §4.5/§6): files.include/files.ignore globs,
// plus the .gitignore-style patterns handed to LoadVCSIgnoreFile. The
// package does not read vcs.useIgnoreFile; loaded patterns always apply.
// Discovering which VCS is in use and walking the filesystem tree for
// an ignore file remain out of scope (spec §1); this package only matches
// patterns it is handed.
package ignore

import (
	"bufio"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher evaluates a path against include/ignore glob lists and an optional
// set of VCS ignore-file patterns.
type Matcher struct {
	include     []string
	ignore      []string
	vcsPatterns []string
}

// New builds a Matcher from config-supplied include/ignore globs.
func New(include, ignore []string) *Matcher {
	return &Matcher{include: include, ignore: ignore}
}

// LoadVCSIgnoreFile parses .gitignore-style contents (one pattern per line,
// blank lines and '#' comments skipped) and stores them for IsIgnored.
func (m *Matcher) LoadVCSIgnoreFile(contents string) {
	var patterns []string
	scanner := bufio.NewScanner(strings.NewReader(contents))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	m.vcsPatterns = patterns
}

// IsIgnored reports whether path should be excluded from analysis: it is
// ignored if files.ignore or a VCS ignore pattern matches it, or if
// files.include is non-empty and nothing in it matches. path is expected
// relative to the workspace root, using '/' separators.
func (m *Matcher) IsIgnored(path string) bool {
	if matchesAny(m.ignore, path) {
		return true
	}
	if matchesAny(m.vcsPatterns, path) {
		return true
	}
	if len(m.include) > 0 && !matchesAny(m.include, path) {
		return true
	}
	return false
}

func matchesAny(patterns []string, path string) bool {
	for _, p := range patterns {
		for _, candidate := range expandGlob(p) {
			if ok, err := doublestar.Match(candidate, path); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// expandGlob turns one gitignore/files.ignore-style pattern into the set of
// doublestar patterns that should match it, covering anchorless fragments
// ("*.sql" matching at any depth) and directory patterns ("vendor/" matching
// the directory itself and everything under it).
func expandGlob(p string) []string {
	base := strings.TrimSuffix(p, "/")
	variants := []string{p, "**/" + base}
	if strings.HasSuffix(p, "/") {
		variants = append(variants, base+"/**", "**/"+base+"/**")
	}
	return variants
}
