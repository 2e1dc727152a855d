package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// ErrReadmeNotFound is returned when no README can be located.
	ErrReadmeNotFound = errors.New("readme not found")
	// ErrEmptyReadme is returned when a README has no content.
	ErrEmptyReadme = errors.New("readme is empty")
)

// TechKeywords are the technology tags recognized in README text and
// manifest dependencies.
var TechKeywords = []string{
	"python", "fastapi", "flask", "django", "react", "vue", "angular",
	"typescript", "javascript", "node", "express",
	"pytorch", "tensorflow", "sklearn", "transformers",
	"docker", "kubernetes", "redis", "postgres", "mongodb",
	"gemini", "openai", "anthropic", "claude", "gpt", "langchain",
	"ffmpeg", "opencv", "pillow", "moviepy",
	"click", "argparse", "typer", "fire",
	"terraform", "helm", "aws", "gcp", "azure",
}

const (
	maxFeatures       = 10
	maxDescriptionLen = 200
)

var (
	keywordPatterns = compileKeywordPatterns(TechKeywords)

	h1Pattern        = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	badgePattern     = regexp.MustCompile(`\[!\[.*?\]\(.*?\)\]\(.*?\)|\[!\[.*?\]\(.*?\)\]|!\[.*?\]\(.*?\)`)
	nonWordPattern   = regexp.MustCompile(`[^\w\s-]`)
	spacePattern     = regexp.MustCompile(`\s+`)
	headerPattern    = regexp.MustCompile(`^\s*#+`)
	ignoredSection   = regexp.MustCompile(`Example|Sample|Supported|Comparison`)
	codeBlockPattern = regexp.MustCompile("(?s)```.*?```")
	listItemPattern  = regexp.MustCompile(`^\s*(?:[-*]|✅)\s+(.+)$`)
	featureHeading   = regexp.MustCompile(`(?i)^#{1,2}\s*(features|key|what|capabilities)`)
	linkPattern      = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	strongPattern    = regexp.MustCompile(`(\*\*|__)(.+?)(\*\*|__)`)
	emphasisPattern  = regexp.MustCompile(`\*([^*]+)\*`)
)

func compileKeywordPatterns(keywords []string) map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(keywords))
	for _, kw := range keywords {
		patterns[kw] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
	}
	return patterns
}

// FindReadme locates the README in rootDir. README.md is preferred; any
// markdown file with "readme" in its name is accepted otherwise.
func FindReadme(rootDir string) (string, error) {
	preferred := filepath.Join(rootDir, "README.md")
	if fileExists(preferred) {
		return preferred, nil
	}

	entries, err := os.ReadDir(rootDir)
	if err != nil {
		return "", fmt.Errorf("%w in %s", ErrReadmeNotFound, rootDir)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(name), ".md") {
			continue
		}
		if strings.Contains(strings.ToLower(name), "readme") {
			return filepath.Join(rootDir, name), nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrReadmeNotFound, rootDir)
}

// ParseReadme reads the README at path and extracts its metadata.
func ParseReadme(path string) (*Readme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrReadmeNotFound, path)
		}
		return nil, fmt.Errorf("reading readme: %w", err)
	}

	content := string(data)
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyReadme, path)
	}

	fallback := filepath.Base(filepath.Dir(path))
	if abs, err := filepath.Abs(path); err == nil {
		fallback = filepath.Base(filepath.Dir(abs))
	}

	r := ParseReadmeContent(content, fallback)
	r.Path = path
	return &r, nil
}

// ParseReadmeContent extracts metadata from README text. fallbackName is
// used when the document has no top-level heading.
func ParseReadmeContent(content, fallbackName string) Readme {
	name, raw := extractName(content, fallbackName)
	return Readme{
		Name:        name,
		RawName:     raw,
		Description: extractDescription(content),
		TechStack:   ExtractTechStack(content),
		Features:    extractFeatures(content),
		Content:     content,
	}
}

func extractName(content, fallback string) (name, raw string) {
	m := h1Pattern.FindStringSubmatch(content)
	if m == nil {
		return strings.ReplaceAll(strings.ToLower(fallback), " ", "-"), ""
	}
	raw = strings.TrimSpace(badgePattern.ReplaceAllString(m[1], ""))
	name = nonWordPattern.ReplaceAllString(raw, "")
	name = strings.ToLower(strings.TrimSpace(name))
	name = spacePattern.ReplaceAllString(name, "-")
	if name == "" {
		name = strings.ReplaceAll(strings.ToLower(fallback), " ", "-")
	}
	return name, raw
}

// ExtractTechStack returns the known technologies mentioned in content, in
// keyword order. Example, sample, supported and comparison sections and
// fenced code blocks are ignored.
func ExtractTechStack(content string) []string {
	cleaned := codeBlockPattern.ReplaceAllString(stripIgnoredSections(content), "")
	cleaned = strings.ToLower(cleaned)

	found := make([]string, 0)
	for _, kw := range TechKeywords {
		if keywordPatterns[kw].MatchString(cleaned) {
			found = append(found, kw)
		}
	}
	return found
}

func stripIgnoredSections(content string) string {
	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))
	skipping := false
	for _, line := range lines {
		if headerPattern.MatchString(line) {
			skipping = ignoredSection.MatchString(line)
		}
		if !skipping {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func extractFeatures(content string) []string {
	var section []string
	inSection := false
	for _, line := range strings.Split(content, "\n") {
		if headerPattern.MatchString(line) {
			if inSection {
				break
			}
			inSection = featureHeading.MatchString(strings.TrimSpace(line))
			continue
		}
		if inSection {
			section = append(section, line)
		}
	}

	features := listItems(section, 0)
	if len(features) == 0 {
		early := content[:len(content)/2]
		features = listItems(strings.Split(early, "\n"), 200)
	}
	if len(features) > maxFeatures {
		features = features[:maxFeatures]
	}
	return features
}

func listItems(lines []string, maxLen int) []string {
	var items []string
	for _, line := range lines {
		m := listItemPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		item := strings.TrimSpace(m[1])
		n := utf8.RuneCountInString(item)
		if n <= 5 || (maxLen > 0 && n >= maxLen) {
			continue
		}
		items = append(items, item)
	}
	return items
}

// extractDescription returns the first paragraph following the first
// heading, stripped of links and emphasis.
func extractDescription(content string) string {
	lines := strings.Split(content, "\n")

	start := -1
	for i, line := range lines {
		if strings.HasPrefix(line, "#") {
			start = i + 1
			break
		}
	}
	if start < 0 {
		start = 0
	}

	for start < len(lines) {
		para, next := paragraphAt(lines, start)
		if para == "" {
			break
		}
		if !isBadgeLine(para) {
			return cleanDescription(para)
		}
		start = next
	}
	return ""
}

// paragraphAt returns the first paragraph at or after line i and the index
// following it. Headings end the search.
func paragraphAt(lines []string, i int) (string, int) {
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	var parts []string
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, "#") {
			break
		}
		parts = append(parts, line)
		i++
	}
	return strings.Join(parts, " "), i
}

func isBadgeLine(s string) bool {
	return strings.TrimSpace(badgePattern.ReplaceAllString(s, "")) == ""
}

func cleanDescription(desc string) string {
	desc = linkPattern.ReplaceAllString(desc, "$1")
	desc = strongPattern.ReplaceAllString(desc, "$2")
	desc = emphasisPattern.ReplaceAllString(desc, "$1")
	desc = strings.TrimSpace(desc)
	if utf8.RuneCountInString(desc) > maxDescriptionLen {
		desc = strings.TrimSpace(string([]rune(desc)[:maxDescriptionLen]))
	}
	return desc
}
