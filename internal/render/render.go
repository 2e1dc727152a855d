// Package render serializes a resolved skill set into a skills document.
package render

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/andywolf/rulesgen/internal/skill"
)

// ErrUnknownFormat is returned for formats other than markdown, json and yaml.
var ErrUnknownFormat = errors.New("unknown output format")

// Format selects a renderer.
type Format string

const (
	Markdown Format = "markdown"
	JSON     Format = "json"
	YAML     Format = "yaml"
)

// DocumentVersion is written into every rendered document.
const DocumentVersion = "1.0"

// Formats lists the supported formats.
var Formats = []Format{Markdown, JSON, YAML}

// ParseFormat resolves a case-insensitive format name. "md" and "yml" are
// accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md", "":
		return Markdown, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, s)
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	switch f {
	case JSON:
		return ".json"
	case YAML:
		return ".yaml"
	default:
		return ".md"
	}
}

// Document is everything a renderer needs.
type Document struct {
	ProjectName string
	ProjectType string
	Confidence  float64
	TechStack   []string
	Description string
	Features    []string
	Layout      Layout
	Version     string
	GeneratedBy string
	Skills      []skill.Skill
}

// Layout is the part of the project structure an agent needs to find its
// way around.
type Layout struct {
	EntryPoints []string
	SourceDirs  []string
	TestDirs    []string
	CISystem    string
	HasDocker   bool
}

// IsZero reports whether nothing about the layout was detected.
func (l Layout) IsZero() bool {
	return len(l.EntryPoints) == 0 && len(l.SourceDirs) == 0 && len(l.TestDirs) == 0 &&
		l.CISystem == "" && !l.HasDocker
}

// Render serializes doc in format f.
func Render(f Format, doc Document) (string, error) {
	if doc.Version == "" {
		doc.Version = DocumentVersion
	}
	switch f {
	case Markdown:
		return renderMarkdown(doc)
	case JSON:
		return renderJSON(doc)
	case YAML:
		return renderYAML(doc)
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, f)
}

// OutputPath returns the default location of the skills document for a
// project: <dir>/<project>-skills.<ext>.
func OutputPath(dir, projectName string, f Format) string {
	if projectName == "" {
		projectName = "project"
	}
	return filepath.Join(dir, projectName+"-skills"+f.Extension())
}
