package render

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/andywolf/rulesgen/internal/skill"
)

type structuredDoc struct {
	Meta   meta            `json:"meta" yaml:"meta"`
	Skills []exportedSkill `json:"skills" yaml:"skills"`
}

type meta struct {
	Project    string      `json:"project" yaml:"project"`
	Type       string      `json:"type" yaml:"type"`
	Confidence float64     `json:"confidence" yaml:"confidence"`
	TechStack  []string    `json:"tech_stack" yaml:"tech_stack"`
	Layout     *layoutMeta `json:"layout,omitempty" yaml:"layout,omitempty"`
	Version    string      `json:"version" yaml:"version"`
	Generator  string      `json:"generator,omitempty" yaml:"generator,omitempty"`
}

type layoutMeta struct {
	EntryPoints []string `json:"entry_points,omitempty" yaml:"entry_points,omitempty"`
	SourceDirs  []string `json:"source_dirs,omitempty" yaml:"source_dirs,omitempty"`
	TestDirs    []string `json:"test_dirs,omitempty" yaml:"test_dirs,omitempty"`
	CISystem    string   `json:"ci_system,omitempty" yaml:"ci_system,omitempty"`
	HasDocker   bool     `json:"has_docker,omitempty" yaml:"has_docker,omitempty"`
}

// exportedSkill is the published shape of a skill. List fields are always
// present, possibly empty.
type exportedSkill struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Category    string         `json:"category" yaml:"category"`
	Triggers    []string       `json:"triggers" yaml:"triggers"`
	Tools       []string       `json:"tools" yaml:"tools"`
	WhenToUse   []string       `json:"when_to_use" yaml:"when_to_use"`
	AvoidIf     []string       `json:"avoid_if" yaml:"avoid_if"`
	Checks      []string       `json:"checks,omitempty" yaml:"checks,omitempty"`
	Input       string         `json:"input,omitempty" yaml:"input,omitempty"`
	Output      string         `json:"output,omitempty" yaml:"output,omitempty"`
	Usage       string         `json:"usage,omitempty" yaml:"usage,omitempty"`
	Params      map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
	Source      string         `json:"source" yaml:"source"`
	AdaptedFor  string         `json:"adapted_for,omitempty" yaml:"adapted_for,omitempty"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func export(doc Document) structuredDoc {
	out := structuredDoc{
		Meta: meta{
			Project:    doc.ProjectName,
			Type:       doc.ProjectType,
			Confidence: doc.Confidence,
			TechStack:  nonNil(doc.TechStack),
			Version:    doc.Version,
			Generator:  doc.GeneratedBy,
		},
		Skills: make([]exportedSkill, 0, len(doc.Skills)),
	}
	if l := doc.Layout; !l.IsZero() {
		out.Meta.Layout = &layoutMeta{
			EntryPoints: l.EntryPoints,
			SourceDirs:  l.SourceDirs,
			TestDirs:    l.TestDirs,
			CISystem:    l.CISystem,
			HasDocker:   l.HasDocker,
		}
	}
	for _, s := range doc.Skills {
		category := s.Category
		if category == "" {
			category = skill.DefaultCategory
		}
		out.Skills = append(out.Skills, exportedSkill{
			Name:        s.Name,
			Description: s.Description,
			Category:    category,
			Triggers:    nonNil(s.Triggers),
			Tools:       nonNil(s.Tools),
			WhenToUse:   nonNil(s.WhenToUse),
			AvoidIf:     nonNil(s.AvoidIf),
			Checks:      s.Checks,
			Input:       s.InputDesc,
			Output:      s.OutputDesc,
			Usage:       s.UsageExample,
			Params:      s.Params,
			Source:      s.Source,
			AdaptedFor:  s.Adaptation.AdaptedFor,
		})
	}
	return out
}

func renderJSON(doc Document) (string, error) {
	data, err := json.MarshalIndent(export(doc), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode json: %w", err)
	}
	return string(data) + "\n", nil
}

func renderYAML(doc Document) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(export(doc)); err != nil {
		return "", fmt.Errorf("failed to encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode yaml: %w", err)
	}
	return buf.String(), nil
}
