package walker

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// skipDirs are directory names never descended into, compared case
// insensitively.
var skipDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	".repoconvert": {},
	".idea":        {},
	".vscode":      {},
	".venv":        {},
	".next":        {},
	"__pycache__":  {},
	"node_modules": {},
	"vendor":       {},
	"dist":         {},
	"build":        {},
	"target":       {},
}

// ValidatePatterns returns an error naming the first malformed glob.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(filepath.ToSlash(p)) {
			return fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return nil
}

// MatchesInclude reports whether relPath matches one of patterns. An empty
// list includes everything.
func MatchesInclude(relPath string, patterns []string) bool {
	return len(patterns) == 0 || matchAny(relPath, patterns)
}

// MatchesExclude reports whether relPath matches one of patterns. An empty
// list excludes nothing.
func MatchesExclude(relPath string, patterns []string) bool {
	return matchAny(relPath, patterns)
}

// matchAny tries every pattern against the whole slash-separated path and
// against its base name, so "*.go" matches files at any depth.
func matchAny(relPath string, patterns []string) bool {
	rel := filepath.ToSlash(relPath)
	base := path.Base(rel)
	for _, p := range patterns {
		p = filepath.ToSlash(p)
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(p, base); ok {
			return true
		}
	}
	return false
}

// ignoreRule is one line of a .gitignore. Anchored rules contain a slash
// and match the path from the root; the rest match a single path element.
type ignoreRule struct {
	pattern  string
	dirOnly  bool
	anchored bool
}

// filter decides which entries of one tree are listed.
type filter struct {
	include []string
	exclude []string
	ignore  []ignoreRule
}

func newFilter(root string, include, exclude []string) (*filter, error) {
	if err := ValidatePatterns(include); err != nil {
		return nil, fmt.Errorf("walker: include: %w", err)
	}
	if err := ValidatePatterns(exclude); err != nil {
		return nil, fmt.Errorf("walker: exclude: %w", err)
	}
	return &filter{
		include: include,
		exclude: exclude,
		ignore:  loadGitignore(filepath.Join(root, ".gitignore")),
	}, nil
}

// skipDir is checked for every directory, so rules that match a directory
// hide everything below it.
func (f *filter) skipDir(rel string) bool {
	if _, ok := skipDirs[strings.ToLower(path.Base(rel))]; ok {
		return true
	}
	return f.ignored(rel, true)
}

func (f *filter) keepFile(rel string) bool {
	if f.ignored(rel, false) {
		return false
	}
	return MatchesInclude(rel, f.include) && !MatchesExclude(rel, f.exclude)
}

func (f *filter) ignored(rel string, isDir bool) bool {
	for _, r := range f.ignore {
		if r.dirOnly && !isDir {
			continue
		}
		target := path.Base(rel)
		if r.anchored {
			target = rel
		}
		if ok, _ := doublestar.Match(r.pattern, target); ok {
			return true
		}
	}
	return false
}

// loadGitignore parses the root .gitignore. Negated rules are not
// supported and are dropped.
func loadGitignore(file string) []ignoreRule {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil
	}

	var rules []ignoreRule
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		r := ignoreRule{dirOnly: strings.HasSuffix(line, "/")}
		line = strings.TrimSuffix(line, "/")
		r.anchored = strings.Contains(line, "/")
		r.pattern = strings.TrimPrefix(line, "/")
		if r.pattern != "" && doublestar.ValidatePattern(r.pattern) {
			rules = append(rules, r)
		}
	}
	return rules
}
