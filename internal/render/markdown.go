package render

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/andywolf/rulesgen/internal/skill"
)

const (
	// Markers for regeneration-safe sections
	GeneratedStartMarker = "<!-- rulesgen:generated:start -->"
	GeneratedEndMarker   = "<!-- rulesgen:generated:end -->"
)

const maxDomainLen = 100

// Categories rendered ahead of all others, after the project's own type is
// slotted in third.
var leadingCategories = []string{"core", "tech", "", "agent", skill.DefaultCategory}

var markdownTmpl = template.Must(template.New("skills").Funcs(template.FuncMap{
	"join":       strings.Join,
	"title":      titleCase,
	"usage":      formatUsage,
	"showSource": func(src string) bool { return src != "" && src != "project" },
}).Parse(markdownTemplate))

type section struct {
	Heading string
	Skills  []skill.Skill
}

type markdownView struct {
	Document
	Domain   string
	Sections []section
}

func renderMarkdown(doc Document) (string, error) {
	view := markdownView{
		Document: doc,
		Domain:   truncate(doc.Description, maxDomainLen),
		Sections: groupByCategory(doc.Skills, doc.ProjectType),
	}
	var buf bytes.Buffer
	if err := markdownTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// groupByCategory buckets skills by category. Leading categories come
// first, then the rest in order of first appearance.
func groupByCategory(skills []skill.Skill, projectType string) []section {
	buckets := make(map[string][]skill.Skill)
	var seen []string
	for _, s := range skills {
		cat := s.Category
		if cat == "" {
			cat = skill.DefaultCategory
		}
		if _, ok := buckets[cat]; !ok {
			seen = append(seen, cat)
		}
		buckets[cat] = append(buckets[cat], s)
	}

	order := make([]string, 0, len(seen)+len(leadingCategories))
	placed := make(map[string]bool)
	for _, cat := range leadingCategories {
		if cat == "" {
			cat = projectType
		}
		if cat != "" && !placed[cat] {
			placed[cat] = true
			order = append(order, cat)
		}
	}
	for _, cat := range seen {
		if !placed[cat] {
			placed[cat] = true
			order = append(order, cat)
		}
	}

	var sections []section
	for _, cat := range order {
		if len(buckets[cat]) == 0 {
			continue
		}
		sections = append(sections, section{
			Heading: heading(cat, projectType),
			Skills:  buckets[cat],
		})
	}
	return sections
}

func heading(category, projectType string) string {
	h := strings.ToUpper(strings.ReplaceAll(category, "_", " "))
	if category == "core" || category == "tech" || category == projectType {
		return h + " SKILLS"
	}
	return "ADDITIONAL: " + h
}

// titleCase turns "web_app" into "Web App".
func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = strings.ToUpper(string(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// formatUsage fences plain usage examples as shell; examples that bring
// their own fences are kept verbatim.
func formatUsage(u string) string {
	u = strings.TrimRight(u, "\n")
	if strings.Contains(u, "```") {
		return u
	}
	return "```bash\n" + u + "\n```"
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
