package classifier

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestClassify_AgentScenario(t *testing.T) {
	c := New(nil)
	res := c.Classify(Signals{
		Name:       "helper",
		TechStack:  []string{"openai"},
		ReadmeText: "An autonomous agent system.",
		Root:       t.TempDir(),
	})

	assert.Equal(t, Agent, res.PrimaryType)
	assert.InDelta(t, 0.8, res.Confidence, 1e-9)
}

func TestClassify_WebAppScenario(t *testing.T) {
	res := New(nil).Classify(Signals{
		Name:       "shop",
		TechStack:  []string{"fastapi", "react"},
		ReadmeText: "Start the server on localhost:8000",
		Root:       t.TempDir(),
	})

	assert.Equal(t, WebApp, res.PrimaryType)
	assert.InDelta(t, 0.7, res.AllScores[WebApp], 1e-9)
}

func TestClassify_ConfidenceBoundsAndCategory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "api/routes.py", "")
	writeFile(t, root, "templates/base.html", "")
	writeFile(t, root, "main.py", "")

	inputs := []Signals{
		{},
		{Name: "x", ReadmeText: "nothing relevant"},
		{
			Name:       "mega-template-generator",
			TechStack:  []string{"openai", "pytorch", "ffmpeg", "fastapi", "click"},
			ReadmeText: "agent llm autonomous orchestration workflow model train dataset generate scaffold boilerplate template create- server cli import",
			Root:       root,
		},
	}
	for _, sig := range inputs {
		res := Score(sig)
		assert.GreaterOrEqual(t, res.Confidence, 0.0)
		assert.LessOrEqual(t, res.Confidence, 1.0)
		assert.True(t, res.PrimaryType.Valid(), "primary %q", res.PrimaryType)
		for _, c := range Categories {
			assert.GreaterOrEqual(t, res.AllScores[c], 0.0)
		}
	}
}

func TestClassify_EmptyInputDefaultsToFirstCategory(t *testing.T) {
	res := Score(Signals{})
	assert.Equal(t, Agent, res.PrimaryType)
	assert.Zero(t, res.Confidence)
	assert.Empty(t, res.SecondaryTypes)
}

func TestClassify_MissingRootFailsClosed(t *testing.T) {
	res := Score(Signals{Name: "ghost", Root: filepath.Join(t.TempDir(), "does-not-exist")})
	for _, c := range Categories {
		assert.Zero(t, res.AllScores[c], "category %s", c)
	}
}

func TestHybridPenalty_Exact(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "api/app.py", "")

	sig := Signals{
		Name:       "assistant",
		TechStack:  []string{"openai", "fastapi"},
		ReadmeText: "An autonomous agent exposing an api on localhost.",
		Root:       root,
	}

	raw := newScores()
	e := newEvidence(sig)
	agentSignals(raw, e)
	webAppSignals(raw, e)
	require.Greater(t, raw[Agent], hybridThreshold)

	res := Score(sig)
	assert.Equal(t, raw[WebApp]*0.6, res.AllScores[WebApp])
}

func TestHybridPenalty_NotAppliedBelowThreshold(t *testing.T) {
	s := Scores{Agent: 0.6, MLPipeline: 0.5, WebApp: 0.7}
	applyHybridPenalty(s)
	assert.Equal(t, 0.7, s[WebApp])
}

func TestGeneratorNeverSecondary(t *testing.T) {
	scores := Scores{
		Agent:      0.9,
		Generator:  0.8,
		WebApp:     0.5,
		MLPipeline: 0,
		CLITool:    0,
		Library:    0,
	}
	res := rank(scores)
	assert.Equal(t, Agent, res.PrimaryType)
	assert.NotContains(t, res.SecondaryTypes, Generator)
	assert.Equal(t, []Category{WebApp}, res.SecondaryTypes)
}

func TestSecondaryTypes_ThresholdAndLimit(t *testing.T) {
	res := rank(Scores{
		Agent:      1.2,
		MLPipeline: 0.9,
		WebApp:     0.8,
		CLITool:    0.7,
		Library:    0.3,
		Generator:  0,
	})
	assert.Equal(t, []Category{MLPipeline, WebApp}, res.SecondaryTypes)
	assert.Equal(t, 1.0, res.Confidence)

	res = rank(Scores{Agent: 0.5, MLPipeline: 0.3, WebApp: 0.1})
	assert.Empty(t, res.SecondaryTypes)
}

func TestMonotonicity_FrameworkTags(t *testing.T) {
	root := t.TempDir()
	base := Signals{Name: "p", ReadmeText: "a server with a model", Root: root}

	strong := map[Category]string{
		Agent:      "anthropic",
		MLPipeline: "pytorch",
		WebApp:     "django",
		CLITool:    "typer",
	}
	for cat, tag := range strong {
		before := Score(base).AllScores[cat]
		with := base
		with.TechStack = append([]string{}, tag)
		after := Score(with).AllScores[cat]
		assert.GreaterOrEqual(t, after, before, "category %s tag %s", cat, tag)
	}
}

func TestStructuralSignals(t *testing.T) {
	t.Run("main.py without api is a cli", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "main.py", "")
		res := Score(Signals{Name: "tool", Root: root})
		assert.InDelta(t, 0.3, res.AllScores[CLITool], 1e-9)
		assert.Zero(t, res.AllScores[WebApp])
	})

	t.Run("api dir blocks cli structure bonus", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "main.py", "")
		writeFile(t, root, "src/api/v1.py", "")
		res := Score(Signals{Name: "svc", Root: root})
		assert.Zero(t, res.AllScores[CLITool])
		assert.InDelta(t, 0.3, res.AllScores[WebApp], 1e-9)
	})

	t.Run("routers dir counts as web", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "app/routers/users.py", "")
		res := Score(Signals{Name: "svc", Root: root})
		assert.InDelta(t, 0.3, res.AllScores[WebApp], 1e-9)
	})

	t.Run("packaging without main is a library", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "pyproject.toml", "")
		res := Score(Signals{Name: "lib", ReadmeText: "pip install lib", Root: root})
		assert.InDelta(t, 0.7, res.AllScores[Library], 1e-9)
		assert.Equal(t, Library, res.PrimaryType)
	})

	t.Run("templates dir and name make a generator", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "templates/app/README.md", "")
		res := Score(Signals{Name: "project-generator", ReadmeText: "Scaffold new apps", Root: root})
		assert.InDelta(t, 0.75, res.AllScores[Generator], 1e-9)
		assert.Equal(t, Generator, res.PrimaryType)
	})

	t.Run("vendored api dirs are ignored", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "node_modules/pkg/api/index.js", "")
		res := Score(Signals{Name: "site", Root: root})
		assert.Zero(t, res.AllScores[WebApp])
	})

	t.Run("build output api dirs are ignored", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "main.py", "")
		writeFile(t, root, "build/lib/api/handlers.py", "")
		res := Score(Signals{Name: "tool", Root: root})
		assert.Zero(t, res.AllScores[WebApp])
		assert.InDelta(t, 0.3, res.AllScores[CLITool], 1e-9)
	})
}

func TestTree_SkippedDirs(t *testing.T) {
	root := t.TempDir()
	for dir := range skippedDirs {
		writeFile(t, root, dir+"/api/x.py", "")
	}
	tr := newTree(root)
	assert.False(t, tr.matchesAny(apiGlob))

	writeFile(t, root, "services/api/x.py", "")
	assert.True(t, newTree(root).matchesAny(apiGlob))
	assert.False(t, tr.matchesAny(apiGlob), "results are memoized per tree")
}

func TestTree_WalkLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("creates a large tree")
	}
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a"), 0755))
	for i := 0; i < maxWalkEntries; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "a", fmt.Sprintf("f%05d", i)), nil, 0644))
	}
	// Walked in lexical order, so z/ comes after the limit is spent.
	writeFile(t, root, "z/api/x.py", "")

	assert.False(t, newTree(root).matchesAny(apiGlob))
}

func TestKeywordDensityCaps(t *testing.T) {
	res := Score(Signals{ReadmeText: "agent llm autonomous orchestration workflow intelligence semantic search ai-powered"})
	assert.InDelta(t, 0.5, res.AllScores[Agent], 1e-9)

	res = Score(Signals{ReadmeText: "model train dataset inference pipeline video frame"})
	assert.InDelta(t, 0.4, res.AllScores[MLPipeline], 1e-9)

	res = Score(Signals{ReadmeText: "generate template scaffold boilerplate create-app"})
	assert.InDelta(t, 0.4, res.AllScores[Generator], 1e-9)
}

type countingCache struct {
	inner Cache
	hits  int
}

func (c *countingCache) Get(key string) (Result, bool) {
	r, ok := c.inner.Get(key)
	if ok {
		c.hits++
	}
	return r, ok
}

func (c *countingCache) Add(key string, value Result) bool {
	return c.inner.Add(key, value)
}

func TestClassify_CacheIdempotence(t *testing.T) {
	inner, err := NewLRU(DefaultCacheSize)
	require.NoError(t, err)
	cache := &countingCache{inner: inner}
	c := New(cache)

	root := t.TempDir()
	sig := Signals{Name: "p", TechStack: []string{"flask"}, ReadmeText: "http server", Root: root}

	first := c.Classify(sig)
	// Changing the tree after the first call does not affect a cache hit.
	writeFile(t, root, "api/x.py", "")
	second := c.Classify(sig)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.hits)

	// Mutating a returned result never leaks into the cache.
	second.AllScores[WebApp] = 42
	third := c.Classify(sig)
	assert.Equal(t, first, third)

	// A README edit changes the key.
	sig.ReadmeText = "http server with a cli"
	c.Classify(sig)
	assert.Equal(t, 2, cache.hits)
}

func TestCacheKey_Stability(t *testing.T) {
	a := Signals{Name: "p", TechStack: []string{"a", "b"}, ReadmeText: "r", Root: "/x"}
	b := Signals{Name: "p", TechStack: []string{"b", "a"}, ReadmeText: "r", Root: "/x"}
	c := Signals{Name: "p", TechStack: []string{"ab"}, ReadmeText: "r", Root: "/x"}

	assert.Equal(t, CacheKey(a), CacheKey(a))
	assert.NotEqual(t, CacheKey(a), CacheKey(b))
	assert.NotEqual(t, CacheKey(a), CacheKey(c))
}
