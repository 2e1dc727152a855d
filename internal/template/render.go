// Package template substitutes {placeholder} tokens in skill text with
// project values.
package template

import (
	"regexp"
)

// placeholderPattern matches {name} tokens. Names follow identifier rules so
// JSON snippets and shell braces in usage examples are left alone.
var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Well-known placeholder names.
const (
	ProjectName = "project_name"
	ProjectType = "project_type"
)

// Render substitutes {name} placeholders in text with values from vars.
// Unknown placeholders are left as-is.
func Render(text string, vars map[string]string) string {
	if len(vars) == 0 || text == "" {
		return text
	}

	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := match[1 : len(match)-1]
		if value, ok := vars[name]; ok {
			return value
		}
		return match
	})
}

// Placeholders returns the distinct placeholder names in text, in order of
// first appearance.
func Placeholders(text string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// MergeVariables merges base variables with overrides. Overrides win on
// name collision.
func MergeVariables(base, overrides map[string]string) map[string]string {
	if len(base) == 0 && len(overrides) == 0 {
		return nil
	}

	result := make(map[string]string, len(base)+len(overrides))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range overrides {
		result[k] = v
	}
	return result
}
