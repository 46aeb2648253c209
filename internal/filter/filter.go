// Package filter decides which discovered files take part in an import,
// using ordered rsync-style include/exclude globs and size bounds.
package filter

import (
	"path"
	"strings"
)

// Rule represents a single include or exclude filter rule.
type Rule struct {
	Pattern *compiledPattern
	Include bool // true=include, false=exclude
}

// Chain holds an ordered list of filter rules plus size filters.
// The zero value accepts everything.
type Chain struct {
	rules   []Rule
	minSize int64
	maxSize int64
}

// NewChain creates an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// AddExclude adds an exclude rule for the given pattern.
func (c *Chain) AddExclude(pattern string) error {
	return c.add(pattern, false)
}

// AddInclude adds an include rule for the given pattern.
func (c *Chain) AddInclude(pattern string) error {
	return c.add(pattern, true)
}

func (c *Chain) add(pattern string, include bool) error {
	cp, err := compilePattern(pattern)
	if err != nil {
		return err
	}
	c.rules = append(c.rules, Rule{Pattern: cp, Include: include})
	return nil
}

// SetMinSize sets the minimum file size filter.
func (c *Chain) SetMinSize(n int64) {
	c.minSize = n
}

// SetMaxSize sets the maximum file size filter.
func (c *Chain) SetMaxSize(n int64) {
	c.maxSize = n
}

// Empty reports whether the chain has no rules and no size filters.
func (c *Chain) Empty() bool {
	return c == nil || (len(c.rules) == 0 && c.minSize == 0 && c.maxSize == 0)
}

// Match reports whether the file at relPath (slash-separated, relative to
// the import root) with the given size should be kept.
//
// Rules are tried in order and the first that matches decides. A rule
// matches a file when it matches the file's path or any of its parent
// directories, so "Live/" drops everything under a Live directory.
// Files no rule matches are kept.
func (c *Chain) Match(relPath string, size int64) bool {
	if c == nil {
		return true
	}
	if c.minSize > 0 && size < c.minSize {
		return false
	}
	if c.maxSize > 0 && size > c.maxSize {
		return false
	}

	relPath = strings.TrimPrefix(path.Clean(relPath), "/")
	parents := parentDirs(relPath)

	for _, rule := range c.rules {
		if rule.Pattern.match(relPath, false) {
			return rule.Include
		}
		for _, dir := range parents {
			if rule.Pattern.match(dir, true) {
				return rule.Include
			}
		}
	}
	return true
}

// parentDirs returns the directory prefixes of relPath, outermost first:
// "a/b/c.flac" yields "a", "a/b".
func parentDirs(relPath string) []string {
	var dirs []string
	for i := 0; i < len(relPath); i++ {
		if relPath[i] == '/' {
			dirs = append(dirs, relPath[:i])
		}
	}
	return dirs
}
