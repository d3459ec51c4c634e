// Package scanner finds the content files utility classes are collected from
// and watches them for changes.
package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Config selects content files relative to the project root.
type Config struct {
	// Include glob patterns. Empty means every file.
	Include []string `yaml:"content" json:"content"`
	// Exclude glob patterns, applied to files and directories.
	Exclude []string `yaml:"exclude" json:"exclude"`
}

// DefaultConfig returns the content globs used when a project declares none.
func DefaultConfig() Config {
	return Config{
		Include: []string{
			"**/*.html",
			"**/*.ts",
			"**/*.tsx",
			"**/*.js",
			"**/*.jsx",
			"**/*.vue",
			"**/*.svelte",
			"**/*.md",
			"**/*.mdx",
		},
		Exclude: []string{
			"node_modules/**",
			".git/**",
			"dist/**",
			"build/**",
			".next/**",
			"coverage/**",
			"out/**",
			"**/*.min.js",
		},
	}
}

// Validate reports the first malformed pattern.
func (c Config) Validate() error {
	for _, pattern := range c.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	for _, pattern := range c.Include {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}
	return nil
}

// Excluded reports whether the slash-separated relative path matches an
// exclude pattern.
func (c Config) Excluded(rel string) bool {
	for _, pattern := range c.Exclude {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

// Included reports whether a relative file path is content.
func (c Config) Included(rel string) bool {
	if c.Excluded(rel) {
		return false
	}
	if len(c.Include) == 0 {
		return true
	}
	for _, pattern := range c.Include {
		if m, _ := doublestar.Match(pattern, rel); m {
			return true
		}
	}
	return false
}

// Discover walks root applying the include/exclude globs from cfg.
// Returns a sorted slice of absolute file paths for deterministic output.
func Discover(root string, cfg Config) ([]string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	var files []string

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Continue walking on errors.
		}
		if path == absRoot {
			return nil
		}

		rel := relative(absRoot, path)

		if d.IsDir() {
			if cfg.Excluded(rel) || cfg.Excluded(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if cfg.Included(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func relative(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}
