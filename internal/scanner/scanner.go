package scanner

import (
	"errors"
	"path/filepath"
	"strings"
)

// Options tune a scan.
type Options struct {
	// ReadmePath overrides README discovery. A missing explicit README is an
	// error; a missing discovered one is not.
	ReadmePath string
	// IncludeManifestDeps merges manifest-derived tags into the tech stack.
	IncludeManifestDeps bool
}

// Scanner analyzes a project directory to detect its characteristics.
type Scanner struct {
	rootDir string
	opts    Options
}

// New creates a new Scanner for the given root directory.
func New(rootDir string, opts Options) *Scanner {
	return &Scanner{rootDir: rootDir, opts: opts}
}

// Scan analyzes the project and returns detected information. A project
// without a README still scans; its textual fields are empty.
func (s *Scanner) Scan() (*ProjectInfo, error) {
	root := s.rootDir
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	info := &ProjectInfo{
		Name:      strings.ReplaceAll(strings.ToLower(filepath.Base(root)), " ", "-"),
		RootDir:   root,
		TechStack: []string{},
	}

	readmePath := s.opts.ReadmePath
	if readmePath == "" {
		found, err := FindReadme(root)
		if err != nil && !errors.Is(err, ErrReadmeNotFound) {
			return nil, err
		}
		readmePath = found
	}

	if readmePath != "" {
		readme, err := ParseReadme(readmePath)
		switch {
		case err == nil:
			info.Name = readme.Name
			info.RawName = readme.RawName
			info.Description = readme.Description
			info.TechStack = readme.TechStack
			info.Features = readme.Features
			info.Readme = readme.Content
			info.ReadmePath = readme.Path
		case s.opts.ReadmePath != "":
			return nil, err
		case !errors.Is(err, ErrEmptyReadme):
			return nil, err
		}
	}

	info.Files = topLevelFiles(root)
	info.Structure = detectStructure(root, info.Files)
	info.ManifestTech = ManifestTech(root)
	if s.opts.IncludeManifestDeps {
		info.TechStack = mergeTags(info.TechStack, info.ManifestTech)
	}

	return info, nil
}

// mergeTags appends the tags of extra not already in base, preserving order.
func mergeTags(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	merged := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, t := range list {
			if !seen[t] {
				seen[t] = true
				merged = append(merged, t)
			}
		}
	}
	return merged
}
