// Package importers loads external skill packs: directories of agent-rules
// files with YAML frontmatter, or SKILL.md skill directories.
package importers

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/andywolf/rulesgen/internal/skill"
)

// Source tags and categories stamped on imported skills.
const (
	AgentRulesSource   = "agent-rules"
	AgentRulesCategory = "project_rules"
	SkillMDSource      = "vercel-agent-skills"
	SkillMDCategory    = "vercel_skill"

	// SkillFileName marks a SKILL.md-style pack.
	SkillFileName = "SKILL.md"
)

var yamlFrontmatter = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// Pack is a named set of imported skills.
type Pack struct {
	Name   string
	Path   string
	Skills []skill.Skill
}

// Importer reads a pack from a file or directory.
type Importer interface {
	Import(path string) (*Pack, error)
}

// ForPath picks the importer for the layout at path: any SKILL.md below a
// directory selects the SKILL.md importer, everything else is read as
// agent rules.
func ForPath(path string) Importer {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return AgentRules{}
	}
	matches, err := doublestar.Glob(os.DirFS(path), "**/"+SkillFileName)
	if err == nil && len(matches) > 0 {
		return SkillMD{}
	}
	return AgentRules{}
}

// LoadPack imports the pack at path with the importer its layout calls for.
func LoadPack(path string) (*Pack, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open pack %s: %w", path, err)
	}
	return ForPath(path).Import(path)
}

// LoadPacks resolves each reference as a path, falling back to baseDir/ref,
// and imports it. Missing, failing and empty packs are logged and skipped.
func LoadPacks(refs []string, baseDir string, logger *slog.Logger) []Pack {
	if logger == nil {
		logger = slog.Default()
	}

	var packs []Pack
	for _, ref := range refs {
		path, ok := resolve(ref, baseDir)
		if !ok {
			logger.Warn("skill pack not found", "pack", ref)
			continue
		}
		pack, err := LoadPack(path)
		if err != nil {
			logger.Warn("failed to load skill pack", "pack", ref, "error", err)
			continue
		}
		if len(pack.Skills) == 0 {
			logger.Warn("no skills found in pack", "pack", ref)
			continue
		}
		logger.Debug("loaded skill pack", "pack", pack.Name, "skills", len(pack.Skills))
		packs = append(packs, *pack)
	}
	return packs
}

func resolve(ref, baseDir string) (string, bool) {
	if ref == "" {
		return "", false
	}
	if _, err := os.Stat(ref); err == nil {
		return ref, true
	}
	if baseDir != "" && !filepath.IsAbs(ref) {
		p := filepath.Join(baseDir, ref)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// Merge appends pack skills whose names are not already present. Resolved
// skills always win over pack skills, and earlier packs over later ones.
func Merge(skills []skill.Skill, packs []Pack) []skill.Skill {
	seen := make(map[string]bool, len(skills))
	out := make([]skill.Skill, 0, len(skills))
	for _, s := range skills {
		seen[s.Name] = true
		out = append(out, s)
	}
	for _, p := range packs {
		for _, s := range p.Skills {
			if seen[s.Name] {
				continue
			}
			seen[s.Name] = true
			out = append(out, s.Clone())
		}
	}
	return out
}

// AgentRules imports .md and .mdc files carrying YAML frontmatter. Files
// without frontmatter and README files are skipped.
type AgentRules struct{}

type agentRuleMeta struct {
	Description string `yaml:"description"`
	Globs       any    `yaml:"globs"`
}

func (AgentRules) Import(path string) (*Pack, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pack %s: %w", path, err)
	}

	pack := &Pack{Name: filepath.Base(path), Path: path}

	if !info.IsDir() {
		s, ok, err := parseAgentRule(path)
		if err != nil {
			return nil, err
		}
		if ok {
			pack.Skills = append(pack.Skills, s)
		}
		return pack, nil
	}

	files, err := doublestar.Glob(os.DirFS(path), "**/*.{md,mdc}")
	if err != nil {
		return nil, fmt.Errorf("failed to scan pack %s: %w", path, err)
	}
	sort.Strings(files)

	for _, rel := range files {
		if strings.EqualFold(filepath.Base(rel), "readme.md") {
			continue
		}
		s, ok, err := parseAgentRule(filepath.Join(path, filepath.FromSlash(rel)))
		if err != nil {
			return nil, err
		}
		if ok {
			pack.Skills = append(pack.Skills, s)
		}
	}
	return pack, nil
}

func parseAgentRule(path string) (skill.Skill, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return skill.Skill{}, false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var meta agentRuleMeta
	if _, err := frontmatter.MustParse(bytes.NewReader(data), &meta, yamlFrontmatter); err != nil {
		// No or unreadable frontmatter: not a rule file.
		return skill.Skill{}, false, nil
	}

	s := skill.Skill{
		Name:        strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Description: meta.Description,
		Category:    AgentRulesCategory,
		Triggers:    globList(meta.Globs),
		Source:      AgentRulesSource,
	}
	if meta.Description != "" {
		s.WhenToUse = []string{meta.Description}
	}
	return s, true, nil
}

// globList accepts globs written as a YAML list or a comma separated string.
func globList(v any) []string {
	var out []string
	switch g := v.(type) {
	case string:
		for _, part := range strings.Split(g, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	case []any:
		for _, item := range g {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// SkillMD imports <name>/SKILL.md directories. The directory name is the
// skill name and the whole file body is its usage text.
type SkillMD struct{}

type skillMDMeta struct {
	Description string `yaml:"description"`
}

func (SkillMD) Import(path string) (*Pack, error) {
	fsys := os.DirFS(path)
	files, err := doublestar.Glob(fsys, "**/"+SkillFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to scan pack %s: %w", path, err)
	}
	sort.Strings(files)

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	pack := &Pack{Name: filepath.Base(abs), Path: path}
	for _, rel := range files {
		data, err := fs.ReadFile(fsys, rel)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", rel, err)
		}

		name := filepath.Base(filepath.Dir(filepath.Join(abs, filepath.FromSlash(rel))))

		var meta skillMDMeta
		body, err := frontmatter.Parse(bytes.NewReader(data), &meta, yamlFrontmatter)
		if err != nil {
			body = data
		}

		description := meta.Description
		if description == "" {
			description = "Imported skill: " + name
		}
		pack.Skills = append(pack.Skills, skill.Skill{
			Name:         name,
			Description:  description,
			Category:     SkillMDCategory,
			UsageExample: strings.TrimSpace(string(body)),
			Source:       SkillMDSource,
		})
	}
	return pack, nil
}
