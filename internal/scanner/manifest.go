package scanner

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/muhammadmuzzammil1998/jsonc"
)

// dependencyAliases maps package names that do not contain a keyword to the
// keyword they imply.
var dependencyAliases = map[string]string{
	"torch":               "pytorch",
	"scikit-learn":        "sklearn",
	"opencv-python":       "opencv",
	"psycopg2":            "postgres",
	"psycopg2-binary":     "postgres",
	"asyncpg":             "postgres",
	"pg":                  "postgres",
	"pymongo":             "mongodb",
	"mongoose":            "mongodb",
	"motor":               "mongodb",
	"google-generativeai": "gemini",
	"google-genai":        "gemini",
	"boto3":               "aws",
	"ioredis":             "redis",
	"next":                "react",
}

var keywordSet = func() map[string]bool {
	set := make(map[string]bool, len(TechKeywords))
	for _, kw := range TechKeywords {
		set[kw] = true
	}
	return set
}()

// ManifestTech returns the technology tags implied by the dependency
// manifests at the top of rootDir. Unreadable or malformed manifests
// contribute nothing.
func ManifestTech(rootDir string) []string {
	var deps []string
	var langs []string

	if d, ok := pyprojectDeps(filepath.Join(rootDir, "pyproject.toml")); ok {
		deps = append(deps, d...)
		langs = append(langs, "python")
	}
	if d, ok := requirementsDeps(filepath.Join(rootDir, "requirements.txt")); ok {
		deps = append(deps, d...)
		langs = append(langs, "python")
	}
	if d, ok := packageJSONDeps(filepath.Join(rootDir, "package.json")); ok {
		deps = append(deps, d...)
		langs = append(langs, "javascript")
	}
	if d, ok := goModDeps(filepath.Join(rootDir, "go.mod")); ok {
		deps = append(deps, d...)
	}

	found := make(map[string]bool)
	for _, l := range langs {
		found[l] = true
	}
	for _, dep := range deps {
		for _, tag := range dependencyTags(dep) {
			found[tag] = true
		}
	}

	tags := make([]string, 0, len(found))
	for _, kw := range TechKeywords {
		if found[kw] {
			tags = append(tags, kw)
		}
	}
	return tags
}

// dependencyTags maps a package name to keywords, either through an alias or
// by splitting it into name segments.
func dependencyTags(dep string) []string {
	dep = strings.ToLower(strings.TrimSpace(dep))
	if dep == "" {
		return nil
	}
	if alias, ok := dependencyAliases[dep]; ok {
		return []string{alias}
	}

	var tags []string
	for _, part := range strings.FieldsFunc(dep, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == '/' || r == '@'
	}) {
		if alias, ok := dependencyAliases[part]; ok {
			tags = append(tags, alias)
		} else if keywordSet[part] {
			tags = append(tags, part)
		}
	}
	return tags
}

// requirementName strips version specifiers, extras and markers from a
// PEP 508 requirement string.
func requirementName(req string) string {
	if i := strings.IndexAny(req, "<>=!~[;( "); i >= 0 {
		req = req[:i]
	}
	return strings.TrimSpace(req)
}

type pyproject struct {
	Project struct {
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Dependencies    map[string]any `toml:"dependencies"`
			DevDependencies map[string]any `toml:"dev-dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

func pyprojectDeps(path string) ([]string, bool) {
	if !fileExists(path) {
		return nil, false
	}
	var p pyproject
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return nil, true
	}

	var deps []string
	for _, req := range p.Project.Dependencies {
		deps = append(deps, requirementName(req))
	}
	for _, group := range p.Project.OptionalDependencies {
		for _, req := range group {
			deps = append(deps, requirementName(req))
		}
	}
	for name := range p.Tool.Poetry.Dependencies {
		deps = append(deps, name)
	}
	for name := range p.Tool.Poetry.DevDependencies {
		deps = append(deps, name)
	}
	return deps, true
}

func requirementsDeps(path string) ([]string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var deps []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if name := requirementName(line); name != "" {
			deps = append(deps, name)
		}
	}
	return deps, true
}

func packageJSONDeps(path string) ([]string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := jsonc.Unmarshal(data, &pkg); err != nil {
		return nil, true
	}

	deps := make([]string, 0, len(pkg.Dependencies)+len(pkg.DevDependencies))
	for name := range pkg.Dependencies {
		deps = append(deps, name)
	}
	for name := range pkg.DevDependencies {
		deps = append(deps, name)
	}
	return deps, true
}

func goModDeps(path string) ([]string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var deps []string
	inRequire := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "require (":
			inRequire = true
			continue
		case inRequire && line == ")":
			inRequire = false
			continue
		case strings.HasPrefix(line, "require "):
			line = strings.TrimPrefix(line, "require ")
		case !inRequire:
			continue
		}
		if fields := strings.Fields(line); len(fields) > 0 {
			deps = append(deps, fields[0])
		}
	}
	return deps, true
}
