// Package classifier infers a project's type from its declared tech stack,
// README text, and directory layout using weighted heuristic signals.
package classifier

// Category is one of the fixed project types.
type Category string

const (
	Agent      Category = "agent"
	MLPipeline Category = "ml_pipeline"
	WebApp     Category = "web_app"
	CLITool    Category = "cli_tool"
	Library    Category = "library"
	Generator  Category = "generator"
)

// Categories lists every category in canonical order. Ties in score are
// broken by this order.
var Categories = []Category{Agent, MLPipeline, WebApp, CLITool, Library, Generator}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Scores maps each category to its non-negative accumulated score.
type Scores map[Category]float64

func newScores() Scores {
	s := make(Scores, len(Categories))
	for _, c := range Categories {
		s[c] = 0
	}
	return s
}

func (s Scores) clone() Scores {
	c := make(Scores, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// Signals is the classifier's view of a project.
type Signals struct {
	Name       string
	TechStack  []string
	ReadmeText string
	Root       string
}

// Result is the outcome of a classification.
type Result struct {
	PrimaryType    Category   `json:"primary_type"`
	SecondaryTypes []Category `json:"secondary_types"`
	Confidence     float64    `json:"confidence"`
	AllScores      Scores     `json:"all_scores"`
}

// Clone returns a copy that shares no mutable state with r.
func (r Result) Clone() Result {
	c := r
	if r.SecondaryTypes != nil {
		c.SecondaryTypes = make([]Category, len(r.SecondaryTypes))
		copy(c.SecondaryTypes, r.SecondaryTypes)
	}
	c.AllScores = r.AllScores.clone()
	return c
}

// SecondaryNames returns the secondary types as plain strings.
func (r Result) SecondaryNames() []string {
	names := make([]string, len(r.SecondaryTypes))
	for i, c := range r.SecondaryTypes {
		names[i] = string(c)
	}
	return names
}
