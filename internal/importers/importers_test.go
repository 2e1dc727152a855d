package importers

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andywolf/rulesgen/internal/skill"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func agentRulesPack(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "agent-rules")
	writeFile(t, filepath.Join(dir, "commit.mdc"), `---
description: Write conventional commits
globs: ["*.go", "*.py"]
---
Use feat/fix prefixes.
`)
	writeFile(t, filepath.Join(dir, "nested", "testing.md"), `---
description: Keep tests fast
globs: "*_test.go, tests/**"
---
Body
`)
	writeFile(t, filepath.Join(dir, "README.md"), "---\ndescription: not a rule\n---\n")
	writeFile(t, filepath.Join(dir, "plain.md"), "# No frontmatter here\n")
	return dir
}

func TestAgentRules_Import(t *testing.T) {
	dir := agentRulesPack(t)

	pack, err := AgentRules{}.Import(dir)
	require.NoError(t, err)
	assert.Equal(t, "agent-rules", pack.Name)
	require.Len(t, pack.Skills, 2)

	commit := pack.Skills[0]
	assert.Equal(t, "commit", commit.Name)
	assert.Equal(t, "Write conventional commits", commit.Description)
	assert.Equal(t, AgentRulesCategory, commit.Category)
	assert.Equal(t, AgentRulesSource, commit.Source)
	assert.Equal(t, []string{"*.go", "*.py"}, commit.Triggers)
	assert.Equal(t, []string{"Write conventional commits"}, commit.WhenToUse)

	rule := pack.Skills[1]
	assert.Equal(t, "testing", rule.Name)
	assert.Equal(t, []string{"*_test.go", "tests/**"}, rule.Triggers)
}

func TestAgentRules_SingleFile(t *testing.T) {
	dir := agentRulesPack(t)

	pack, err := AgentRules{}.Import(filepath.Join(dir, "commit.mdc"))
	require.NoError(t, err)
	require.Len(t, pack.Skills, 1)
	assert.Equal(t, "commit", pack.Skills[0].Name)
}

func TestSkillMD_Import(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vercel-skills")
	writeFile(t, filepath.Join(dir, "react-best-practices", SkillFileName), "# React\n\nPrefer server components.\n")
	writeFile(t, filepath.Join(dir, "skills", "web-design", SkillFileName), `---
name: web-design
description: Review UI against design guidelines
---
Check spacing and contrast.
`)

	pack, err := SkillMD{}.Import(dir)
	require.NoError(t, err)
	assert.Equal(t, "vercel-skills", pack.Name)
	require.Len(t, pack.Skills, 2)

	react := pack.Skills[0]
	assert.Equal(t, "react-best-practices", react.Name)
	assert.Equal(t, "Imported skill: react-best-practices", react.Description)
	assert.Equal(t, SkillMDCategory, react.Category)
	assert.Equal(t, SkillMDSource, react.Source)
	assert.Equal(t, "# React\n\nPrefer server components.", react.UsageExample)

	design := pack.Skills[1]
	assert.Equal(t, "web-design", design.Name)
	assert.Equal(t, "Review UI against design guidelines", design.Description)
	assert.Equal(t, "Check spacing and contrast.", design.UsageExample)
}

func TestForPath(t *testing.T) {
	skillsDir := t.TempDir()
	writeFile(t, filepath.Join(skillsDir, "a", SkillFileName), "content")

	_, ok := ForPath(skillsDir).(SkillMD)
	assert.True(t, ok, "directory with SKILL.md should use the SKILL.md importer")

	_, ok = ForPath(agentRulesPack(t)).(AgentRules)
	assert.True(t, ok)

	_, ok = ForPath(filepath.Join(t.TempDir(), "missing")).(AgentRules)
	assert.True(t, ok)
}

func TestLoadPack_Missing(t *testing.T) {
	_, err := LoadPack(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadPacks(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	base := t.TempDir()
	writeFile(t, filepath.Join(base, "shared", "style.md"), "---\ndescription: Style guide\n---\n")
	writeFile(t, filepath.Join(base, "empty", "notes.md"), "no frontmatter")

	absolute := agentRulesPack(t)

	packs := LoadPacks([]string{absolute, "shared", "empty", "missing", ""}, base, logger)
	require.Len(t, packs, 2)
	assert.Equal(t, "agent-rules", packs[0].Name)
	assert.Equal(t, "shared", packs[1].Name)
	assert.Equal(t, "style", packs[1].Skills[0].Name)
}

func TestMerge(t *testing.T) {
	resolved := []skill.Skill{
		{Name: "code-review", Source: skill.SourceBuiltin},
		{Name: "commit", Source: skill.SourceLearned},
	}
	packs := []Pack{
		{Name: "one", Skills: []skill.Skill{
			{Name: "commit", Source: AgentRulesSource},
			{Name: "testing", Source: AgentRulesSource, Triggers: []string{"*_test.go"}},
		}},
		{Name: "two", Skills: []skill.Skill{
			{Name: "testing", Source: SkillMDSource},
			{Name: "design", Source: SkillMDSource},
		}},
	}

	merged := Merge(resolved, packs)

	var names, sources []string
	for _, s := range merged {
		names = append(names, s.Name)
		sources = append(sources, s.Source)
	}
	assert.Equal(t, []string{"code-review", "commit", "testing", "design"}, names)
	assert.Equal(t, []string{skill.SourceBuiltin, skill.SourceLearned, AgentRulesSource, SkillMDSource}, sources)

	merged[2].Triggers[0] = "changed"
	assert.Equal(t, "*_test.go", packs[0].Skills[1].Triggers[0])

	assert.Len(t, Merge(resolved, nil), 2)
}
