// Package skill defines skills, the needs they satisfy, and the YAML record
// format used to store them on disk.
package skill

// NeedType classifies where a need came from.
type NeedType string

const (
	NeedTech        NeedType = "tech"
	NeedProjectType NeedType = "project_type"
	NeedCore        NeedType = "core"
)

// Priority ranks how important it is that a need gets satisfied.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityNormal   Priority = "normal"
	PriorityOptional Priority = "optional"
)

// Source tags for the three skill sources. A skill's Source field carries
// the tag of the source that produced it.
const (
	SourceBuiltin = "builtin"
	SourceLearned = "learned"
	SourceAwesome = "awesome"
)

// Context keys carried by needs.
const (
	ContextSecondaryTypes = "secondary_types"
	ContextFiles          = "files"
)

// Need is a requirement derived from project analysis that skill sources
// attempt to satisfy.
type Need struct {
	Type       NeedType
	Name       string
	Confidence float64
	Priority   Priority
	Context    map[string]any
}

// Strings returns the context value for key as a string slice. Missing keys
// and values of other types yield nil.
func (n Need) Strings(key string) []string {
	switch v := n.Context[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// MatchSpec is the predicate block attached to community skills.
type MatchSpec struct {
	TechStack []string `yaml:"tech_stack,omitempty" json:"tech_stack,omitempty"`
	// Confidence is nil when the record does not declare one.
	Confidence *float64 `yaml:"confidence,omitempty" json:"confidence,omitempty"`
	Files      []string `yaml:"files,omitempty" json:"files,omitempty"`
}

// Adaptation records how a skill was personalised for a project.
type Adaptation struct {
	OriginalName  string   `yaml:"original_name,omitempty" json:"original_name,omitempty"`
	AdaptedFor    string   `yaml:"adapted_for,omitempty" json:"adapted_for,omitempty"`
	AdaptedFields []string `yaml:"adapted_fields,omitempty" json:"adapted_fields,omitempty"`
}

// Skill is a reusable instruction snippet for an AI coding assistant. Name is
// the unique key within a resolution run.
type Skill struct {
	Name         string         `yaml:"name" json:"name"`
	Description  string         `yaml:"description" json:"description"`
	Category     string         `yaml:"category,omitempty" json:"category"`
	Triggers     []string       `yaml:"triggers,omitempty" json:"triggers"`
	Tools        []string       `yaml:"tools,omitempty" json:"tools"`
	WhenToUse    []string       `yaml:"when_to_use,omitempty" json:"when_to_use"`
	AvoidIf      []string       `yaml:"avoid_if,omitempty" json:"avoid_if"`
	Checks       []string       `yaml:"checks,omitempty" json:"checks,omitempty"`
	InputDesc    string         `yaml:"input_desc,omitempty" json:"input,omitempty"`
	OutputDesc   string         `yaml:"output_desc,omitempty" json:"output,omitempty"`
	UsageExample string         `yaml:"usage_example,omitempty" json:"usage,omitempty"`
	Source       string         `yaml:"source,omitempty" json:"source"`
	Confidence   float64        `yaml:"confidence,omitempty" json:"confidence,omitempty"`
	Params       map[string]any `yaml:"params,omitempty" json:"params,omitempty"`
	Matches      *MatchSpec     `yaml:"matches,omitempty" json:"-"`
	Adaptation   Adaptation     `yaml:"adaptation,omitempty" json:"adaptation,omitempty"`
}

// DefaultCategory is assigned to records that do not declare one.
const DefaultCategory = "general"

// Clone returns a deep copy so a cached template can be handed out to
// several matches without aliasing.
func (s Skill) Clone() Skill {
	c := s
	c.Triggers = cloneStrings(s.Triggers)
	c.Tools = cloneStrings(s.Tools)
	c.WhenToUse = cloneStrings(s.WhenToUse)
	c.AvoidIf = cloneStrings(s.AvoidIf)
	c.Checks = cloneStrings(s.Checks)
	c.Adaptation.AdaptedFields = cloneStrings(s.Adaptation.AdaptedFields)
	if s.Params != nil {
		c.Params = make(map[string]any, len(s.Params))
		for k, v := range s.Params {
			c.Params[k] = v
		}
	}
	if s.Matches != nil {
		m := *s.Matches
		m.TechStack = cloneStrings(s.Matches.TechStack)
		m.Files = cloneStrings(s.Matches.Files)
		if s.Matches.Confidence != nil {
			conf := *s.Matches.Confidence
			m.Confidence = &conf
		}
		c.Matches = &m
	}
	return c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
