package classifier

import (
	"math"
	"strings"
)

// Evidence tables. Tech tags are compared exactly against the lowercase
// stack; keywords are case-insensitive substrings of the README.
var (
	llmProviders  = []string{"gemini", "openai", "anthropic", "claude", "gpt", "langchain"}
	agentKeywords = []string{
		"agent", "llm", "autonomous", "orchestration",
		"workflow", "intelligence", "semantic search", "ai-powered",
	}

	mlFrameworks = []string{"pytorch", "torch", "tensorflow", "sklearn", "transformers", "pandas"}
	videoTools   = []string{"ffmpeg", "opencv", "pillow", "moviepy"}
	mlKeywords   = []string{
		"model", "train", "dataset", "inference", "pipeline",
		"video", "frame", "segment", "media", "broadcast", "accuracy",
	}

	webFrameworks = []string{"fastapi", "flask", "django", "react", "vue", "angular", "nextjs", "svelte"}
	webKeywords   = []string{"server", "port", "localhost", "http", "api"}

	cliLibraries = []string{"click", "argparse", "typer", "fire"}
	cliKeywords  = []string{"command", "cli", "terminal", "usage:"}

	libraryKeywords = []string{"import", "package", "library", "pip install"}

	generatorKeywords = []string{"generate", "template", "scaffold", "boilerplate", "create-"}
)

// Layout globs.
const (
	apiGlob       = "**/api/**"
	routersGlob   = "**/routers/**"
	templatesGlob = "**/templates/**"
)

const (
	hybridThreshold = 0.6
	hybridPenalty   = 0.6
)

// evidence bundles the normalized inputs shared by every signal function.
type evidence struct {
	name   string
	tech   map[string]bool
	readme string
	fs     *tree
}

func newEvidence(sig Signals) *evidence {
	tech := make(map[string]bool, len(sig.TechStack))
	for _, t := range sig.TechStack {
		tech[strings.ToLower(strings.TrimSpace(t))] = true
	}
	return &evidence{
		name:   strings.ToLower(sig.Name),
		tech:   tech,
		readme: strings.ToLower(sig.ReadmeText),
		fs:     newTree(sig.Root),
	}
}

func (e *evidence) hasAnyTech(tags []string) bool {
	for _, t := range tags {
		if e.tech[t] {
			return true
		}
	}
	return false
}

func (e *evidence) keywordCount(keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(e.readme, kw) {
			n++
		}
	}
	return n
}

func (e *evidence) hasAnyKeyword(keywords []string) bool {
	return e.keywordCount(keywords) > 0
}

// density converts a keyword hit count into a capped score contribution.
func density(count int, weight, limit float64) float64 {
	return math.Min(float64(count)*weight, limit)
}

func agentSignals(s Scores, e *evidence) {
	if e.hasAnyTech(llmProviders) {
		s[Agent] += 0.5
	}
	s[Agent] += density(e.keywordCount(agentKeywords), 0.15, 0.5)
}

func mlPipelineSignals(s Scores, e *evidence) {
	if e.hasAnyTech(mlFrameworks) {
		s[MLPipeline] += 0.5
	}
	if e.hasAnyTech(videoTools) {
		s[MLPipeline] += 0.4
	}
	s[MLPipeline] += density(e.keywordCount(mlKeywords), 0.1, 0.4)
}

func webAppSignals(s Scores, e *evidence) {
	if e.hasAnyTech(webFrameworks) {
		s[WebApp] += 0.5
	}
	if e.fs.matchesAny(apiGlob, routersGlob) {
		s[WebApp] += 0.3
	}
	if e.hasAnyKeyword(webKeywords) {
		s[WebApp] += 0.2
	}
}

func cliToolSignals(s Scores, e *evidence) {
	if e.hasAnyTech(cliLibraries) {
		s[CLITool] += 0.5
	}
	if e.fs.exists("main.py") && !e.fs.matchesAny(apiGlob) {
		s[CLITool] += 0.3
	}
	if e.hasAnyKeyword(cliKeywords) {
		s[CLITool] += 0.2
	}
}

func librarySignals(s Scores, e *evidence) {
	packaged := e.fs.exists("setup.py") || e.fs.exists("pyproject.toml")
	if packaged && !e.fs.exists("main.py") {
		s[Library] += 0.4
	}
	if e.hasAnyKeyword(libraryKeywords) {
		s[Library] += 0.3
	}
}

func generatorSignals(s Scores, e *evidence) {
	if strings.Contains(e.name, "generator") || strings.Contains(e.name, "template") {
		s[Generator] += 0.3
	}
	if e.fs.matchesAny(templatesGlob) {
		s[Generator] += 0.3
	}
	s[Generator] += density(e.keywordCount(generatorKeywords), 0.15, 0.4)
}

// applyHybridPenalty dampens web_app when agent or ml_pipeline evidence is strong.
func applyHybridPenalty(s Scores) {
	if s[Agent] > hybridThreshold || s[MLPipeline] > hybridThreshold {
		s[WebApp] *= hybridPenalty
	}
}
