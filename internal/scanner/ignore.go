package scanner

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IgnorePattern represents a single gitignore-style pattern.
type IgnorePattern struct {
	pattern     string // Original pattern
	glob        string // doublestar pattern the path is matched against
	isNegation  bool   // True if pattern starts with !
	isDirectory bool   // True if pattern ends with /
	isAbsolute  bool   // True if pattern is anchored to the scan root
}

// ParseIgnorePattern parses a gitignore-style pattern string.
// The pattern is anchored when it starts with / or contains a slash in the
// middle; otherwise it matches at any depth.
func ParseIgnorePattern(pattern string) IgnorePattern {
	p := IgnorePattern{pattern: pattern}

	if strings.HasPrefix(pattern, "!") {
		p.isNegation = true
		pattern = pattern[1:]
	}

	if strings.HasSuffix(pattern, "/") {
		p.isDirectory = true
		pattern = strings.TrimSuffix(pattern, "/")
	}

	if strings.HasPrefix(pattern, "/") {
		p.isAbsolute = true
		pattern = pattern[1:]
	} else if strings.Contains(pattern, "/") && !strings.HasPrefix(pattern, "**/") {
		p.isAbsolute = true
	}

	p.glob = pattern
	if !p.isAbsolute && !strings.HasPrefix(pattern, "**/") {
		p.glob = "**/" + pattern
	}
	return p
}

// Match reports whether path (slash separated, relative to the scan root)
// is covered by the pattern. A path is covered when it or one of its parent
// directories matches.
func (p IgnorePattern) Match(relPath string) bool {
	if p.glob == "" || p.glob == "**/" {
		return false
	}
	relPath = strings.ToLower(path.Clean(relPath))
	glob := strings.ToLower(p.glob)

	if !p.isDirectory && matchGlob(glob, relPath) {
		return true
	}
	for dir := path.Dir(relPath); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if matchGlob(glob, dir) {
			return true
		}
	}
	return false
}

// MatchDir reports whether the directory at relPath itself is covered.
func (p IgnorePattern) MatchDir(relPath string) bool {
	relPath = strings.ToLower(path.Clean(relPath))
	return matchGlob(strings.ToLower(p.glob), relPath)
}

// IsNegation returns true if this pattern is a negation pattern.
func (p IgnorePattern) IsNegation() bool {
	return p.isNegation
}

// String returns the pattern as written in the ignore file.
func (p IgnorePattern) String() string {
	return p.pattern
}

func matchGlob(glob, name string) bool {
	ok, err := doublestar.Match(glob, name)
	return err == nil && ok
}
