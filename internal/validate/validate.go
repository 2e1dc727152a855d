// Package validate reports on the quality of scanned project data and of
// rendered documents. Errors mean the output is unusable; warnings and info
// are advisory.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/andywolf/rulesgen/internal/render"
	"github.com/andywolf/rulesgen/internal/scanner"
	"github.com/andywolf/rulesgen/internal/template"
)

const (
	minDescriptionLen = 20
	maxDescriptionLen = 500
	minFeatures       = 3
	minReadmeLen      = 100
	minDocumentLines  = 10
)

var (
	namePattern      = regexp.MustCompile(`^[a-z0-9-]+$`)
	emptyLinkPattern = regexp.MustCompile(`\[([^\]]+)\]\(\s*\)`)
)

// Kind names the document being validated.
type Kind string

const (
	Skills Kind = "skills"
	Rules  Kind = "rules"
)

var (
	requiredRulesSections = []string{"CONTEXT", "DO", "DON'T", "PRIORITIES", "WORKFLOWS"}
	recommendedSkills     = []string{"PROJECT CONTEXT", "CORE SKILLS", "USAGE"}
)

// Result collects findings by severity.
type Result struct {
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Info     []string `json:"info,omitempty"`
}

// Valid reports whether there are no errors.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Merge appends other's findings to r.
func (r *Result) Merge(other Result) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Info = append(r.Info, other.Info...)
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Result) infof(format string, args ...any) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

// Project checks the scanned metadata a document is generated from.
func Project(info *scanner.ProjectInfo) Result {
	var r Result
	if info == nil {
		r.errorf("no project data")
		return r
	}

	switch {
	case info.Name == "" || info.Name == "unknown":
		r.errorf("project name is missing or could not be detected")
	case !namePattern.MatchString(info.Name):
		r.warnf("project name %q contains special characters", info.Name)
	}

	desc := strings.TrimSpace(info.Description)
	switch n := len([]rune(desc)); {
	case n == 0:
		r.warnf("no description extracted from README")
	case n < minDescriptionLen:
		r.warnf("description is very short (%d chars)", n)
	case n > maxDescriptionLen:
		r.infof("description is long (%d chars) and will be truncated in documents", n)
	}

	if len(info.TechStack) == 0 {
		r.warnf("no tech stack detected")
	} else {
		r.infof("detected %d technologies: %s", len(info.TechStack), strings.Join(info.TechStack, ", "))
	}

	switch n := len(info.Features); {
	case n == 0:
		r.warnf("no features detected")
	case n < minFeatures:
		r.infof("only %d features detected", n)
	default:
		r.infof("detected %d features", n)
	}

	if info.ReadmePath == "" {
		r.warnf("no README found")
		return r
	}
	if len(info.Readme) < minReadmeLen {
		r.warnf("README content is very short")
	}
	if !strings.Contains(info.Readme, "## ") && !strings.Contains(info.Readme, "---") {
		r.warnf("README may lack structure (no section headings found)")
	}
	return r
}

// Document checks a rendered markdown document of the given kind.
func Document(content string, kind Kind) Result {
	var r Result

	if !strings.HasPrefix(content, "---") {
		r.errorf("missing YAML frontmatter in %s document", kind)
	}
	if !strings.Contains(content, render.GeneratedStartMarker) || !strings.Contains(content, render.GeneratedEndMarker) {
		r.warnf("%s document has no generated section markers; regeneration will not preserve edits", kind)
	}

	switch kind {
	case Rules:
		for _, section := range requiredRulesSections {
			if !hasHeading(content, section) {
				r.errorf("missing required section: %s", section)
			}
		}
	case Skills:
		for _, section := range recommendedSkills {
			if !strings.Contains(strings.ToUpper(content), section) {
				r.warnf("missing recommended section: %s", section)
			}
		}
	}

	r.Merge(Placeholders(content))

	if lines := strings.Count(content, "\n") + 1; lines < minDocumentLines {
		r.warnf("content seems short (%d lines)", lines)
	}
	for _, issue := range CheckMarkdown(content) {
		r.warnf("%s", issue)
	}
	return r
}

// Placeholders warns about {name} tokens that survived adaptation.
func Placeholders(content string) Result {
	var r Result
	if names := template.Placeholders(content); len(names) > 0 {
		r.warnf("unreplaced placeholders: %s", strings.Join(names, ", "))
	}
	return r
}

// hasHeading reports whether content has a level-2 heading that starts with
// name, so "DO" matches "## DO (must follow)".
func hasHeading(content, name string) bool {
	for _, line := range strings.Split(content, "\n") {
		h, ok := strings.CutPrefix(line, "## ")
		if !ok {
			continue
		}
		if h == name || strings.HasPrefix(h, name+" ") {
			return true
		}
	}
	return false
}

// CheckMarkdown reports unclosed code fences, empty links and skipped
// heading levels. Lines inside fences are not treated as headings.
func CheckMarkdown(content string) []string {
	var issues []string

	fences := 0
	prev := 0
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			fences++
			continue
		}
		if fences%2 == 1 {
			continue
		}
		level := headingLevel(line)
		if level == 0 {
			continue
		}
		if prev > 0 && level > prev+1 {
			issues = append(issues, fmt.Sprintf("heading level jump: %d to %d", prev, level))
		}
		prev = level
	}
	if fences%2 != 0 {
		issues = append(issues, "unclosed code block")
	}

	if links := emptyLinkPattern.FindAllStringSubmatch(content, -1); len(links) > 0 {
		texts := make([]string, 0, len(links))
		for _, m := range links {
			texts = append(texts, m[1])
		}
		issues = append(issues, "empty links: "+strings.Join(texts, ", "))
	}
	return issues
}

func headingLevel(line string) int {
	n := 0
	for n < len(line) && n < 7 && line[n] == '#' {
		n++
	}
	if n == 0 || n > 6 || n >= len(line) || line[n] != ' ' {
		return 0
	}
	return n
}
