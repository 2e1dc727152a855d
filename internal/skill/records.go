package skill

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidName is returned when a skill name cannot be used as a record key.
var ErrInvalidName = errors.New("invalid skill name")

// namePattern restricts persisted names so they are safe as file names.
var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

var unsafeNameChars = regexp.MustCompile(`[^a-z0-9-]`)

// ValidateName reports whether name can be persisted as a record file.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// SanitizeName lowercases name, turns spaces into dashes and strips anything
// outside [a-z0-9-].
func SanitizeName(name string) (string, error) {
	safe := unsafeNameChars.ReplaceAllString(strings.ReplaceAll(strings.ToLower(name), " ", "-"), "")
	if safe == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return safe, nil
}

// ParseRecords decodes a template document. The document is either a list of
// records or a single record. Records without a name are dropped.
func ParseRecords(data []byte) ([]Skill, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse skill records: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	var records []Skill
	switch root := node.Content[0]; root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&records); err != nil {
			return nil, fmt.Errorf("failed to decode skill list: %w", err)
		}
	case yaml.MappingNode:
		var single Skill
		if err := root.Decode(&single); err != nil {
			return nil, fmt.Errorf("failed to decode skill: %w", err)
		}
		records = []Skill{single}
	default:
		return nil, fmt.Errorf("unexpected skill document kind %d", root.Kind)
	}

	out := records[:0]
	for _, r := range records {
		if strings.TrimSpace(r.Name) == "" {
			continue
		}
		if r.Category == "" {
			r.Category = DefaultCategory
		}
		out = append(out, r)
	}
	return out, nil
}

// MarshalRecords encodes skills in the list form read by ParseRecords.
// Empty fields are omitted.
func MarshalRecords(skills []Skill) ([]byte, error) {
	data, err := yaml.Marshal(skills)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal skill records: %w", err)
	}
	return data, nil
}

// FileError describes a template file that could not be loaded.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// LoadDir loads every *.yaml and *.yml file at the top level of fsys, in
// lexical order. Files that fail to parse are reported in the returned error
// slice and skipped; the remaining files still load.
func LoadDir(fsys fs.FS) ([]Skill, []error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, []error{err}
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch path.Ext(e.Name()) {
		case ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var (
		skills []Skill
		errs   []error
	)
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			errs = append(errs, &FileError{File: name, Err: err})
			continue
		}
		records, err := ParseRecords(data)
		if err != nil {
			errs = append(errs, &FileError{File: name, Err: err})
			continue
		}
		skills = append(skills, records...)
	}
	return skills, errs
}
