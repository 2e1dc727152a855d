package render

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
)

const (
	maxContextLen = 200
	maxPriorities = 5
)

var defaultPriorities = []string{
	"Correctness and reliability",
	"Readability and maintainability",
	"Test coverage for new behavior",
}

var baseDo = []string{
	"Follow the existing code style and project structure",
	"Keep functions small and focused",
	"Handle errors explicitly and with context",
}

var baseDont = []string{
	"Commit secrets, credentials or .env files",
	"Add dependencies without a clear need",
	"Leave commented-out code or debug output behind",
}

// Project-type specific rules, keyed by detected type.
var (
	typeDo = map[string][]string{
		"agent": {
			"Log every tool call and model response",
			"Keep prompts in versioned files",
		},
		"ml_pipeline": {
			"Pin dataset and model versions",
			"Fix random seeds so runs are reproducible",
		},
		"web_app": {
			"Validate user input at the request boundary",
			"Keep handlers thin and move logic into services",
		},
		"cli_tool": {
			"Document every flag in the command help",
			"Exit non-zero on failure",
		},
		"library": {
			"Keep the public API documented",
			"Follow semantic versioning for releases",
		},
		"generator": {
			"Keep templates separate from generation logic",
			"Make generated output deterministic",
		},
	}
	typeDont = map[string][]string{
		"agent":       {"Let the agent act without a step limit"},
		"ml_pipeline": {"Train on data that was not versioned"},
		"web_app":     {"Build SQL or HTML by string concatenation"},
		"cli_tool":    {"Print diagnostics to stdout"},
		"library":     {"Break exported APIs in a minor release"},
		"generator":   {"Overwrite hand-written content outside generated sections"},
	}
)

var rulesTmpl = template.Must(template.New("rules").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(rulesTemplate))

type rulesView struct {
	ProjectName string
	Version     string
	GeneratedBy string
	Context     string
	Stack       string
	Do          []string
	Dont        []string
	Priorities  []string
	Workflows   []string
}

// RenderRules renders the coding rules document for doc. Rules are always
// markdown.
func RenderRules(doc Document) (string, error) {
	if doc.Version == "" {
		doc.Version = DocumentVersion
	}

	view := rulesView{
		ProjectName: doc.ProjectName,
		Version:     doc.Version,
		GeneratedBy: doc.GeneratedBy,
		Context:     truncate(doc.Description, maxContextLen),
		Stack:       "general",
		Do:          rulesDo(doc),
		Dont:        append(append([]string(nil), baseDont...), typeDont[doc.ProjectType]...),
		Priorities:  priorities(doc.Features),
		Workflows:   workflows(doc),
	}
	if view.Context == "" {
		view.Context = "Coding rules for " + doc.ProjectName + "."
	}
	if len(doc.TechStack) > 0 {
		view.Stack = strings.Join(doc.TechStack, ", ")
	}

	var buf bytes.Buffer
	if err := rulesTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to execute rules template: %w", err)
	}
	return buf.String(), nil
}

// RulesPath returns the default location of the rules document:
// <dir>/<project>-rules.md.
func RulesPath(dir, projectName string) string {
	if projectName == "" {
		projectName = "project"
	}
	return filepath.Join(dir, projectName+"-rules.md")
}

func rulesDo(doc Document) []string {
	var items []string
	if len(doc.TechStack) > 0 {
		items = append(items, "Use "+strings.Join(doc.TechStack, ", ")+" idiomatically")
	}
	items = append(items, baseDo...)
	if len(doc.Layout.TestDirs) > 0 {
		items = append(items, "Add tests under "+strings.Join(doc.Layout.TestDirs, ", ")+" for new functionality")
	} else {
		items = append(items, "Write tests for new functionality")
	}
	return append(items, typeDo[doc.ProjectType]...)
}

func priorities(features []string) []string {
	if len(features) == 0 {
		return defaultPriorities
	}
	if len(features) > maxPriorities {
		features = features[:maxPriorities]
	}
	return features
}

func workflows(doc Document) []string {
	l := doc.Layout
	var items []string
	if len(l.EntryPoints) > 0 {
		items = append(items, "Start from "+strings.Join(l.EntryPoints, ", ")+" when tracing behavior")
	}
	items = append(items, "Run the test suite before every commit")
	if l.CISystem != "" {
		items = append(items, "Keep the "+l.CISystem+" pipeline green")
	}
	if l.HasDocker {
		items = append(items, "Check that the Docker image still builds")
	}
	return append(items, "Regenerate these rules with `rulesgen generate --write` after major changes")
}
