package sources

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andywolf/rulesgen/internal/config"
	"github.com/andywolf/rulesgen/internal/skill"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func names(skills []skill.Skill) []string {
	out := make([]string, len(skills))
	for i, s := range skills {
		out[i] = s.Name
	}
	return out
}

func need(name string) skill.Need {
	return skill.Need{Type: skill.NeedTech, Name: name, Confidence: 1, Priority: skill.PriorityNormal}
}

func TestPriority(t *testing.T) {
	order := []string{"learned", "awesome", "builtin"}
	assert.Equal(t, 3, Priority("learned", order))
	assert.Equal(t, 2, Priority("awesome", order))
	assert.Equal(t, 1, Priority("builtin", order))
	assert.Equal(t, DefaultPriority, Priority("remote", order))
	assert.Equal(t, DefaultPriority, Priority("builtin", nil))

	assert.Equal(t, 3, Priority("builtin", []string{"builtin", "awesome", "learned"}))
}

func templateFS() fstest.MapFS {
	return fstest.MapFS{
		"fastapi.yaml": {Data: []byte(`- name: fastapi-expert
  description: Expert in FastAPI
  category: tech
  triggers: [fastapi]
`)},
		"ml.yaml": {Data: []byte(`- name: model-reviewer
  description: Review ML models
  category: ml_pipeline
`)},
		"broken.yaml": {Data: []byte("- name: [unterminated\n")},
		"notes.txt":   {Data: []byte("not a template")},
	}
}

func TestBuiltin_Discover(t *testing.T) {
	b := NewBuiltin(templateFS(), 1, discardLogger())

	t.Run("exact name", func(t *testing.T) {
		found, err := b.Discover([]skill.Need{need("fastapi-expert")})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "fastapi-expert", found[0].Name)
		assert.Equal(t, skill.SourceBuiltin, found[0].Source)
	})

	t.Run("need name inside skill name", func(t *testing.T) {
		found, err := b.Discover([]skill.Need{need("FastAPI")})
		require.NoError(t, err)
		assert.Equal(t, []string{"fastapi-expert"}, names(found))
	})

	t.Run("category", func(t *testing.T) {
		found, err := b.Discover([]skill.Need{{Type: skill.NeedProjectType, Name: "ml_pipeline"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"model-reviewer"}, names(found))
	})

	t.Run("every match is collected", func(t *testing.T) {
		found, err := b.Discover([]skill.Need{need("fastapi"), need("fastapi-expert"), need("nothing")})
		require.NoError(t, err)
		assert.Equal(t, []string{"fastapi-expert", "fastapi-expert"}, names(found))
	})

	t.Run("returned skills are independent", func(t *testing.T) {
		found, err := b.Discover([]skill.Need{need("fastapi")})
		require.NoError(t, err)
		found[0].Description = "changed"
		found[0].Triggers[0] = "changed"

		again, err := b.Discover([]skill.Need{need("fastapi")})
		require.NoError(t, err)
		assert.Equal(t, "Expert in FastAPI", again[0].Description)
		assert.Equal(t, []string{"fastapi"}, again[0].Triggers)
	})
}

func TestBuiltin_EmbeddedTemplates(t *testing.T) {
	b := NewBuiltin(nil, 1, discardLogger())

	all, err := b.List()
	require.NoError(t, err)
	require.NotEmpty(t, all)

	seen := map[string]bool{}
	categories := map[string]bool{}
	for _, s := range all {
		assert.False(t, seen[s.Name], "duplicate template %s", s.Name)
		seen[s.Name] = true
		categories[s.Category] = true
		assert.Equal(t, skill.SourceBuiltin, s.Source)
		assert.NotEmpty(t, s.Description, s.Name)
		assert.NoError(t, skill.ValidateName(s.Name))
	}
	for _, c := range []string{"core", "tech", "agent", "ml_pipeline", "web_app", "cli_tool", "library", "generator"} {
		assert.True(t, categories[c], "no template for category %s", c)
	}
	assert.True(t, seen["react-expert"])
	assert.True(t, seen["docker-optimizer"])
}

func writeRecords(t *testing.T, dir, file, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0644))
}

func TestLearned_Discover(t *testing.T) {
	dir := t.TempDir()
	writeRecords(t, dir, "my_skills.yaml", `- name: custom-audit
  category: core
  description: Custom audit skill
`)

	l := NewLearned(dir, true, 3, discardLogger())
	found, err := l.Discover([]skill.Need{{Type: skill.NeedCore, Name: "custom-audit"}})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "custom-audit", found[0].Name)
	assert.Equal(t, skill.SourceLearned, found[0].Source)

	found, err = l.Discover([]skill.Need{{Type: skill.NeedCore, Name: "core"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"custom-audit"}, names(found))
}

func TestLearned_MissingDirectory(t *testing.T) {
	l := NewLearned(filepath.Join(t.TempDir(), "absent"), true, 3, discardLogger())

	found, err := l.Discover([]skill.Need{need("core")})
	require.NoError(t, err)
	assert.Empty(t, found)

	all, err := l.List()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestLearned_SaveSkill(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "learned")
	l := NewLearned(dir, true, 3, discardLogger())

	path, err := l.SaveSkill(skill.Skill{
		Name:        "release-check",
		Description: "Check release notes",
		Category:    "core",
		Confidence:  0.7,
		Source:      "awesome",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "release-check.yaml"), path)
	assert.True(t, l.Exists("release-check"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "name: release-check")
	assert.Contains(t, content, "source: learned")
	assert.NotContains(t, content, "avoid_if")
	assert.NotContains(t, content, "confidence")
	assert.NotContains(t, content, "adaptation")

	// Last write wins.
	_, err = l.SaveSkill(skill.Skill{Name: "release-check", Description: "Updated", Category: "core"})
	require.NoError(t, err)

	found, err := l.Discover([]skill.Need{need("release-check")})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Updated", found[0].Description)
}

func TestLearned_SaveSkillErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewLearned(dir, false, 3, discardLogger()).SaveSkill(skill.Skill{Name: "x"})
	assert.True(t, errors.Is(err, ErrAutoSaveDisabled))

	_, err = NewLearned(dir, true, 3, discardLogger()).SaveSkill(skill.Skill{Name: "../escape"})
	assert.True(t, errors.Is(err, skill.ErrInvalidName))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func awesomeFS() fstest.MapFS {
	return fstest.MapFS{
		"security/fastapi.yaml": {Data: []byte(`name: fastapi-security-auditor
category: tech
description: Audit FastAPI endpoints
skill:
  triggers: [fastapi]
  when_to_use: [Adding endpoints]
  checks: [auth dependencies]
matches:
  tech_stack: [fastapi, starlette]
  files: [main.py, app.py]
`)},
		"ui/react.yml": {Data: []byte(`name: react-expert
category: tech
description: React review
skill:
  tools: [eslint]
matches:
  tech_stack: [react]
  confidence: 0.9
`)},
		"low.yaml": {Data: []byte(`name: vue-hints
skill: {}
matches:
  tech_stack: [vue]
  confidence: 0.3
`)},
		"zero.yaml": {Data: []byte(`name: zero-conf
skill: {}
matches:
  tech_stack: [django]
  confidence: 0
`)},
		"legacy.yaml": {Data: []byte(`- name: legacy-skill
  description: Plain record
`)},
		"broken.yaml":   {Data: []byte("name: broken\nskill: {}\n")},
		"bad-conf.yaml": {Data: []byte("name: overconfident\nskill: {}\nmatches:\n  confidence: 2\n")},
		"README.md":     {Data: []byte("# community skills")},
	}
}

func TestAwesome_Load(t *testing.T) {
	a := NewAwesome(awesomeFS(), 0.8, 2, discardLogger())

	all, err := a.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"fastapi-security-auditor", "react-expert", "vue-hints", "zero-conf", "legacy-skill"}, names(all))
	for _, s := range all {
		assert.Equal(t, skill.SourceAwesome, s.Source)
	}
}

func TestAwesome_Discover(t *testing.T) {
	a := NewAwesome(awesomeFS(), 0.8, 2, discardLogger())

	tests := []struct {
		name     string
		need     skill.Need
		wantName string
		wantConf float64
	}{
		{
			name:     "tech stack with default confidence",
			need:     need("fastapi"),
			wantName: "fastapi-security-auditor",
			wantConf: 0.8,
		},
		{
			name:     "tech stack with declared confidence",
			need:     need("react"),
			wantName: "react-expert",
			wantConf: 0.9,
		},
		{
			name: "file overlap",
			need: skill.Need{
				Type:    skill.NeedCore,
				Name:    "custom-check",
				Context: map[string]any{skill.ContextFiles: []string{"app.py", "README.md"}},
			},
			wantName: "fastapi-security-auditor",
			wantConf: 0.7,
		},
		{
			name:     "exact name",
			need:     need("legacy-skill"),
			wantName: "legacy-skill",
			wantConf: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := a.Discover([]skill.Need{tt.need})
			require.NoError(t, err)
			require.Len(t, found, 1)
			assert.Equal(t, tt.wantName, found[0].Name)
			assert.Equal(t, tt.wantConf, found[0].Confidence)
		})
	}

	t.Run("below threshold", func(t *testing.T) {
		found, err := a.Discover([]skill.Need{need("vue")})
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("declared zero confidence is not defaulted", func(t *testing.T) {
		found, err := a.Discover([]skill.Need{need("django")})
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("tech and file evidence keep the higher score", func(t *testing.T) {
		n := need("fastapi")
		n.Context = map[string]any{skill.ContextFiles: []string{"main.py"}}
		found, err := a.Discover([]skill.Need{n})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, 0.8, found[0].Confidence)
	})

	t.Run("matches are independent clones", func(t *testing.T) {
		files := skill.Need{Name: "custom-check", Context: map[string]any{skill.ContextFiles: []string{"main.py"}}}
		found, err := a.Discover([]skill.Need{need("fastapi"), files})
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, 0.8, found[0].Confidence)
		assert.Equal(t, 0.7, found[1].Confidence)

		found[0].Matches.TechStack[0] = "changed"
		all, err := a.List()
		require.NoError(t, err)
		for _, s := range all {
			if s.Name == "fastapi-security-auditor" {
				assert.Equal(t, []string{"fastapi", "starlette"}, s.Matches.TechStack)
				assert.Zero(t, s.Confidence)
			}
		}
	})
}

func TestAwesome_NilFS(t *testing.T) {
	a := NewAwesome(nil, 0.8, 2, discardLogger())
	found, err := a.Discover([]skill.Need{need("react")})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default().SkillSources
	cfg.Learned.Path = t.TempDir()

	srcs, err := FromConfig(cfg, discardLogger())
	require.NoError(t, err)
	require.Len(t, srcs, 2)

	got := map[string]int{}
	for _, s := range srcs {
		got[s.Name()] = s.Priority()
	}
	assert.Equal(t, map[string]int{"builtin": 1, "learned": 3}, got)

	cfg.Awesome = config.SourceConfig{Enabled: true, Path: t.TempDir()}
	srcs, err = FromConfig(cfg, discardLogger())
	require.NoError(t, err)
	require.Len(t, srcs, 3)
	assert.Equal(t, "awesome", srcs[2].Name())
	assert.Equal(t, 2, srcs[2].Priority())

	cfg.Awesome.Path = ""
	cfg.Builtin.Enabled = false
	srcs, err = FromConfig(cfg, discardLogger())
	require.NoError(t, err)
	require.Len(t, srcs, 1)
	assert.Equal(t, "learned", srcs[0].Name())
}

func TestFromConfig_UnlistedSourceGetsDefaultPriority(t *testing.T) {
	cfg := config.Default().SkillSources
	cfg.Learned.Enabled = false
	cfg.PreferenceOrder = []string{"learned"}

	srcs, err := FromConfig(cfg, discardLogger())
	require.NoError(t, err)
	require.Len(t, srcs, 1)
	assert.Equal(t, DefaultPriority, srcs[0].Priority())
}
