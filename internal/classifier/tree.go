package classifier

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// maxWalkEntries bounds how many entries a single glob search may visit.
const maxWalkEntries = 10000

// skippedDirs are never descended into by glob searches.
var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	"dist":         true,
	"build":        true,
	"target":       true,
	".next":        true,
}

var errMatched = errors.New("matched")

// tree answers structural questions about a project tree. Every failure
// (missing root, unreadable directory) reads as "absent".
type tree struct {
	root  string
	globs map[string]bool
}

func newTree(root string) *tree {
	return &tree{root: root, globs: make(map[string]bool)}
}

// exists reports whether the named top-level file exists.
func (p *tree) exists(name string) bool {
	if p.root == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(p.root, name))
	return err == nil
}

// matchesAny reports whether any path under the root matches one of the
// doublestar patterns. Results are memoized per pattern.
func (p *tree) matchesAny(patterns ...string) bool {
	for _, pattern := range patterns {
		if p.glob(pattern) {
			return true
		}
	}
	return false
}

func (p *tree) glob(pattern string) bool {
	if hit, ok := p.globs[pattern]; ok {
		return hit
	}
	hit := p.walk(pattern)
	p.globs[pattern] = hit
	return hit
}

func (p *tree) walk(pattern string) bool {
	if p.root == "" {
		return false
	}
	info, err := os.Stat(p.root)
	if err != nil || !info.IsDir() {
		return false
	}

	visited := 0
	err = fs.WalkDir(os.DirFS(p.root), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == "." {
			return nil
		}
		if d.IsDir() && skippedDirs[d.Name()] {
			return fs.SkipDir
		}
		visited++
		if visited > maxWalkEntries {
			return fs.SkipAll
		}
		if ok, _ := doublestar.Match(pattern, path); ok {
			return errMatched
		}
		return nil
	})
	return errors.Is(err, errMatched)
}
