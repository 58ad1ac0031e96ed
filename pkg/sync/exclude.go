package sync

import (
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// Excluder matches relative paths against gitignore-style patterns.
// Patterns support:
//   - Simple glob patterns: *.tmp, *.log
//   - Directory patterns: .git/, node_modules/
//   - Path patterns: build/*, **/test/*
//   - Negation: !important.log
type Excluder struct {
	patterns []string
	matcher  *ignore.GitIgnore
}

// NewExcluder compiles patterns. Blank lines and comments are ignored; a nil
// Excluder is returned when nothing remains.
func NewExcluder(patterns []string) *Excluder {
	var lines []string
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		lines = append(lines, filepath.ToSlash(p))
	}
	if len(lines) == 0 {
		return nil
	}
	return &Excluder{
		patterns: lines,
		matcher:  ignore.CompileIgnoreLines(lines...),
	}
}

// Patterns returns the compiled patterns
func (e *Excluder) Patterns() []string {
	if e == nil {
		return nil
	}
	return e.patterns
}

// Match reports whether relativePath is excluded. Directory-only patterns
// such as "build/" match a directory itself only when isDir is set.
func (e *Excluder) Match(relativePath string, isDir bool) bool {
	if e == nil {
		return false
	}
	p := filepath.ToSlash(relativePath)
	if isDir {
		p += "/"
	}
	return e.matcher.MatchesPath(p)
}
