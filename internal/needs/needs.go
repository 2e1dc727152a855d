// Package needs turns project metadata into the prioritized list of skill
// needs that sources try to satisfy.
package needs

import (
	"strings"

	"github.com/andywolf/rulesgen/internal/classifier"
	"github.com/andywolf/rulesgen/internal/scanner"
	"github.com/andywolf/rulesgen/internal/skill"
)

// CoreNeed is the name of the baseline need every project receives.
const CoreNeed = "core"

const (
	declaredConfidence = 1.0
	expertConfidence   = 0.9
	expertSuffix       = "-expert"
)

// Classifier detects a project's type. *classifier.Classifier satisfies it.
type Classifier interface {
	Classify(sig classifier.Signals) classifier.Result
}

// Analyzer derives needs from scanned projects.
type Analyzer struct {
	classifier Classifier
}

// NewAnalyzer creates an Analyzer. A nil classifier classifies without a cache.
func NewAnalyzer(c Classifier) *Analyzer {
	if c == nil {
		c = classifier.New(nil)
	}
	return &Analyzer{classifier: c}
}

// Signals builds the classifier input for info.
func Signals(info *scanner.ProjectInfo) classifier.Signals {
	if info == nil {
		return classifier.Signals{}
	}
	return classifier.Signals{
		Name:       info.Name,
		TechStack:  info.TechStack,
		ReadmeText: info.Readme,
		Root:       info.RootDir,
	}
}

// Detect classifies the project.
func (a *Analyzer) Detect(info *scanner.ProjectInfo) classifier.Result {
	return a.classifier.Classify(Signals(info))
}

// Analyze returns the needs for info. The result always ends with the
// critical core need, so it is never empty.
func (a *Analyzer) Analyze(info *scanner.ProjectInfo) []skill.Need {
	return a.NeedsFor(info, a.Detect(info))
}

// NeedsFor builds the needs for info from an existing detection result.
func (a *Analyzer) NeedsFor(info *scanner.ProjectInfo, detected classifier.Result) []skill.Need {
	var files []string
	var techs []string
	if info != nil {
		files = info.Files
		techs = normalizeTags(info.TechStack)
	}

	needs := make([]skill.Need, 0, 2+2*len(techs))
	needs = append(needs, skill.Need{
		Type:       skill.NeedProjectType,
		Name:       string(detected.PrimaryType),
		Confidence: detected.Confidence,
		Priority:   skill.PriorityCritical,
		Context: map[string]any{
			skill.ContextSecondaryTypes: detected.SecondaryNames(),
			skill.ContextFiles:          append([]string(nil), files...),
		},
	})

	for _, tech := range techs {
		needs = append(needs,
			skill.Need{
				Type:       skill.NeedTech,
				Name:       tech,
				Confidence: declaredConfidence,
				Priority:   skill.PriorityNormal,
				Context:    map[string]any{},
			},
			skill.Need{
				Type:       skill.NeedTech,
				Name:       tech + expertSuffix,
				Confidence: expertConfidence,
				Priority:   skill.PriorityOptional,
				Context:    map[string]any{},
			},
		)
	}

	needs = append(needs, skill.Need{
		Type:       skill.NeedCore,
		Name:       CoreNeed,
		Confidence: declaredConfidence,
		Priority:   skill.PriorityCritical,
		Context:    map[string]any{},
	})
	return needs
}

// normalizeTags lowercases tags and drops blanks and repeats, keeping the
// first occurrence.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
