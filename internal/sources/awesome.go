package sources

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/andywolf/rulesgen/internal/skill"
)

//go:embed awesome.schema.json
var awesomeSchemaJSON []byte

const awesomeSchemaURL = "mem://schemas/awesome-skill.schema.json"

const (
	exactMatchScore = 1.0
	fileMatchScore  = 0.7
	matchThreshold  = 0.5
)

var (
	schemaOnce    sync.Once
	awesomeSchema *jsonschema.Schema
	schemaErr     error
)

func compileAwesomeSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(awesomeSchemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("decode awesome schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(awesomeSchemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("register awesome schema: %w", err)
			return
		}
		awesomeSchema, schemaErr = c.Compile(awesomeSchemaURL)
	})
	return awesomeSchema, schemaErr
}

// awesomeRecord is the on-disk shape of a community skill.
type awesomeRecord struct {
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
	Skill       struct {
		Triggers  []string `yaml:"triggers"`
		Tools     []string `yaml:"tools"`
		WhenToUse []string `yaml:"when_to_use"`
		AvoidIf   []string `yaml:"avoid_if"`
		Checks    []string `yaml:"checks"`
	} `yaml:"skill"`
	Matches skill.MatchSpec `yaml:"matches"`
}

func (r awesomeRecord) toSkill() skill.Skill {
	category := r.Category
	if category == "" {
		category = skill.DefaultCategory
	}
	m := r.Matches
	return skill.Skill{
		Name:        r.Name,
		Description: r.Description,
		Category:    category,
		Triggers:    r.Skill.Triggers,
		Tools:       r.Skill.Tools,
		WhenToUse:   r.Skill.WhenToUse,
		AvoidIf:     r.Skill.AvoidIf,
		Checks:      r.Skill.Checks,
		Matches:     &m,
	}
}

// Awesome serves community skills that declare their own match predicates.
// The tree is walked recursively and loaded once.
type Awesome struct {
	fsys              fs.FS
	defaultConfidence float64
	priority          int
	logger            *slog.Logger

	once    sync.Once
	records []skill.Skill
}

// NewAwesome creates a community source over fsys. defaultConfidence scores
// tech-stack matches for records that do not declare a confidence. A nil
// fsys yields an empty source.
func NewAwesome(fsys fs.FS, defaultConfidence float64, priority int, logger *slog.Logger) *Awesome {
	return &Awesome{
		fsys:              fsys,
		defaultConfidence: defaultConfidence,
		priority:          priority,
		logger:            orDefault(logger),
	}
}

func (a *Awesome) Name() string  { return skill.SourceAwesome }
func (a *Awesome) Priority() int { return a.priority }

func (a *Awesome) load() []skill.Skill {
	a.once.Do(func() {
		if a.fsys == nil {
			return
		}
		paths, err := doublestar.Glob(a.fsys, "**/*.{yaml,yml}")
		if err != nil {
			a.logger.Warn("failed to scan community skills", "error", err)
			return
		}
		sort.Strings(paths)

		seen := make(map[string]bool)
		for _, p := range paths {
			data, err := fs.ReadFile(a.fsys, p)
			if err != nil {
				a.logger.Warn("skipping skill file", "source", skill.SourceAwesome, "error", &skill.FileError{File: p, Err: err})
				continue
			}
			records, err := parseAwesome(data)
			if err != nil {
				a.logger.Warn("skipping skill file", "source", skill.SourceAwesome, "error", &skill.FileError{File: p, Err: err})
				continue
			}
			for _, r := range records {
				if seen[r.Name] {
					a.logger.Debug("duplicate community skill", "skill", r.Name, "file", p)
					continue
				}
				seen[r.Name] = true
				r.Source = skill.SourceAwesome
				a.records = append(a.records, r)
			}
		}
	})
	return a.records
}

// parseAwesome decodes either a single community record, validated against
// the embedded schema, or a list of plain skill records.
func parseAwesome(data []byte) ([]skill.Skill, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse community skill: %w", err)
	}

	switch doc.(type) {
	case nil:
		return nil, nil
	case []any:
		return skill.ParseRecords(data)
	case map[string]any:
		if err := validateAwesome(doc); err != nil {
			return nil, err
		}
		var rec awesomeRecord
		if err := yaml.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode community skill: %w", err)
		}
		return []skill.Skill{rec.toSkill()}, nil
	default:
		return nil, fmt.Errorf("unexpected community skill document %T", doc)
	}
}

func validateAwesome(doc any) error {
	schema, err := compileAwesomeSchema()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("community skill is not JSON compatible: %w", err)
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decode community skill: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("invalid community skill: %w", err)
	}
	return nil
}

// score rates how well rec satisfies need. An exact name is a full match;
// otherwise the tech-stack and file predicates contribute.
func (a *Awesome) score(rec skill.Skill, need skill.Need) float64 {
	if rec.Name == need.Name {
		return exactMatchScore
	}
	if rec.Matches == nil {
		return 0
	}

	var score float64
	if slices.Contains(rec.Matches.TechStack, need.Name) {
		score = a.defaultConfidence
		if rec.Matches.Confidence != nil {
			score = *rec.Matches.Confidence
		}
	}
	if len(rec.Matches.Files) > 0 && intersects(rec.Matches.Files, need.Strings(skill.ContextFiles)) {
		score = max(score, fileMatchScore)
	}
	return score
}

// Discover returns a clone of every record scoring at least the match
// threshold against a need, carrying the score as its confidence.
func (a *Awesome) Discover(needs []skill.Need) ([]skill.Skill, error) {
	records := a.load()

	var found []skill.Skill
	for _, need := range needs {
		for _, rec := range records {
			s := a.score(rec, need)
			if s < matchThreshold {
				continue
			}
			c := rec.Clone()
			c.Confidence = s
			found = append(found, c)
		}
	}
	return found, nil
}

// List returns every community record.
func (a *Awesome) List() ([]skill.Skill, error) {
	return cloneAll(a.load()), nil
}

func intersects(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]bool, len(b))
	for _, v := range b {
		set[v] = true
	}
	for _, v := range a {
		if set[v] {
			return true
		}
	}
	return false
}
