// Package orchestrator resolves the skill set for a project by querying every
// registered source in priority order and merging what they return.
package orchestrator

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/andywolf/rulesgen/internal/classifier"
	"github.com/andywolf/rulesgen/internal/scanner"
	"github.com/andywolf/rulesgen/internal/skill"
	"github.com/andywolf/rulesgen/internal/sources"
	"github.com/andywolf/rulesgen/internal/template"
)

// DefaultProjectName is substituted when the project has no name.
const DefaultProjectName = "project"

// FallbackSource tags skills synthesized by the orchestrator itself.
const FallbackSource = "project"

const techCategory = "tech"

// Analyzer classifies a project and derives its needs. *needs.Analyzer
// satisfies it.
type Analyzer interface {
	Detect(info *scanner.ProjectInfo) classifier.Result
	NeedsFor(info *scanner.ProjectInfo, detected classifier.Result) []skill.Need
}

// Result is the outcome of one resolution run.
type Result struct {
	RunID     string
	Detection classifier.Result
	Needs     []skill.Need
	Skills    []skill.Skill
}

// Orchestrator owns the ordered source list. It is not safe for concurrent
// Register calls.
type Orchestrator struct {
	analyzer Analyzer
	sources  []sources.Source
	logger   *slog.Logger
}

// New creates an Orchestrator with no sources.
func New(analyzer Analyzer, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{analyzer: analyzer, logger: logger}
}

// Register adds src and keeps the list sorted by descending priority.
// Sources of equal priority stay in registration order.
func (o *Orchestrator) Register(src sources.Source) {
	if src == nil {
		return
	}
	o.sources = append(o.sources, src)
	sort.SliceStable(o.sources, func(i, j int) bool {
		return o.sources[i].Priority() > o.sources[j].Priority()
	})
}

// Sources returns the registered sources in query order.
func (o *Orchestrator) Sources() []sources.Source {
	out := make([]sources.Source, len(o.sources))
	copy(out, o.sources)
	return out
}

// Detect classifies info with the orchestrator's analyzer. The analyzer's
// cache makes a following Orchestrate on the same project a cache hit.
func (o *Orchestrator) Detect(info *scanner.ProjectInfo) classifier.Result {
	if info == nil {
		info = &scanner.ProjectInfo{}
	}
	return o.analyzer.Detect(info)
}

// Orchestrate classifies the project, derives its needs and resolves them
// against every source. It never fails: sources that error or panic are
// logged and contribute nothing.
func (o *Orchestrator) Orchestrate(info *scanner.ProjectInfo) Result {
	runID := uuid.New().String()
	logger := o.logger.With("run_id", runID)

	if info == nil {
		info = &scanner.ProjectInfo{}
	}

	detected := o.analyzer.Detect(info)
	needs := o.analyzer.NeedsFor(info, detected)
	logger.Debug("analyzed project",
		"project", info.Name,
		"primary_type", detected.PrimaryType,
		"confidence", detected.Confidence,
		"needs", len(needs))

	candidates := o.discover(needs, logger)
	unique := dedupe(candidates, logger)

	vars := map[string]string{
		template.ProjectName: projectName(info),
		template.ProjectType: string(detected.PrimaryType),
	}
	skills := make([]skill.Skill, 0, len(unique)+1)
	for _, s := range unique {
		skills = append(skills, Adapt(s, vars))
	}

	if fb, ok := fallbackExpert(skills, info.TechStack); ok {
		logger.Debug("added generic expert", "skill", fb.Name)
		skills = append(skills, fb)
	}

	logger.Info("resolved skills",
		"project", info.Name,
		"candidates", len(candidates),
		"skills", len(skills))

	return Result{
		RunID:     runID,
		Detection: detected,
		Needs:     needs,
		Skills:    skills,
	}
}

// discover queries every source in priority order and concatenates the
// results.
func (o *Orchestrator) discover(needs []skill.Need, logger *slog.Logger) []skill.Skill {
	var all []skill.Skill
	for _, src := range o.sources {
		found, err := safeDiscover(src, needs)
		if err != nil {
			logger.Error("skill discovery failed", "source", src.Name(), "error", err)
			continue
		}
		logger.Debug("discovered skills", "source", src.Name(), "priority", src.Priority(), "count", len(found))
		all = append(all, found...)
	}
	return all
}

func safeDiscover(src sources.Source, needs []skill.Need) (found []skill.Skill, err error) {
	defer func() {
		if r := recover(); r != nil {
			found = nil
			err = fmt.Errorf("panic in source %s: %v", src.Name(), r)
		}
	}()
	return src.Discover(needs)
}

// dedupe keeps the first skill seen for every name.
func dedupe(candidates []skill.Skill, logger *slog.Logger) []skill.Skill {
	seen := make(map[string]bool, len(candidates))
	out := make([]skill.Skill, 0, len(candidates))
	for _, s := range candidates {
		if seen[s.Name] {
			logger.Debug("dropping duplicate skill", "skill", s.Name, "source", s.Source)
			continue
		}
		seen[s.Name] = true
		out = append(out, s)
	}
	return out
}

// Adapt returns a copy of s with placeholders in its description and usage
// example substituted. Scalar params declared by the skill act as defaults;
// vars win on collision. s itself is not modified.
func Adapt(s skill.Skill, vars map[string]string) skill.Skill {
	out := s.Clone()
	out.Adaptation.OriginalName = s.Name
	out.Adaptation.AdaptedFor = vars[template.ProjectName]

	merged := template.MergeVariables(paramVars(s.Params), vars)

	var fields []string
	if d := template.Render(out.Description, merged); d != out.Description {
		out.Description = d
		fields = append(fields, "description")
	}
	if u := template.Render(out.UsageExample, merged); u != out.UsageExample {
		out.UsageExample = u
		fields = append(fields, "usage_example")
	}
	out.Adaptation.AdaptedFields = fields
	return out
}

// paramVars turns the scalar entries of params into placeholder values.
// Lists and maps have no single textual form and are skipped.
func paramVars(params map[string]any) map[string]string {
	if len(params) == 0 {
		return nil
	}
	vars := make(map[string]string, len(params))
	for k, v := range params {
		switch v.(type) {
		case string, bool, int, int64, float64:
			vars[k] = fmt.Sprint(v)
		}
	}
	return vars
}

// fallbackExpert synthesizes a generic expert for the first declared tech
// when no tech skill was resolved.
func fallbackExpert(skills []skill.Skill, techStack []string) (skill.Skill, bool) {
	if len(techStack) == 0 || techStack[0] == "" {
		return skill.Skill{}, false
	}
	tech := techStack[0]
	name := tech + "-expert"
	for _, s := range skills {
		if s.Category == techCategory || s.Name == name {
			return skill.Skill{}, false
		}
	}
	return skill.Skill{
		Name:        name,
		Description: fmt.Sprintf("Expert in %s projects, patterns, and best practices.", tech),
		Category:    techCategory,
		WhenToUse: []string{
			fmt.Sprintf("Complex %s specific implementation", tech),
			fmt.Sprintf("Debugging %s errors", tech),
		},
		Source: FallbackSource,
	}, true
}

// ListAll returns every skill held by sources that can enumerate their
// contents, in priority order. Duplicates across sources are kept.
func (o *Orchestrator) ListAll() []skill.Skill {
	var all []skill.Skill
	for _, src := range o.sources {
		lister, ok := src.(sources.Lister)
		if !ok {
			continue
		}
		listed, err := safeList(src.Name(), lister)
		if err != nil {
			o.logger.Error("skill listing failed", "source", src.Name(), "error", err)
			continue
		}
		all = append(all, listed...)
	}
	return all
}

func safeList(name string, l sources.Lister) (listed []skill.Skill, err error) {
	defer func() {
		if r := recover(); r != nil {
			listed = nil
			err = fmt.Errorf("panic in source %s: %v", name, r)
		}
	}()
	return l.List()
}

func projectName(info *scanner.ProjectInfo) string {
	if info.Name == "" {
		return DefaultProjectName
	}
	return info.Name
}
