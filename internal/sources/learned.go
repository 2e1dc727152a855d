package sources

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/andywolf/rulesgen/internal/skill"
)

// ErrAutoSaveDisabled is returned by SaveSkill when persistence is turned off.
var ErrAutoSaveDisabled = errors.New("learned skills auto-save is disabled")

// Learned serves skills from a user-writable directory. The directory is
// re-read on every call so saved skills are visible immediately.
type Learned struct {
	dir      string
	autoSave bool
	priority int
	logger   *slog.Logger
}

// NewLearned creates a learned source over dir.
func NewLearned(dir string, autoSave bool, priority int, logger *slog.Logger) *Learned {
	return &Learned{dir: dir, autoSave: autoSave, priority: priority, logger: orDefault(logger)}
}

func (l *Learned) Name() string  { return skill.SourceLearned }
func (l *Learned) Priority() int { return l.priority }

// Dir returns the backing directory.
func (l *Learned) Dir() string { return l.dir }

func (l *Learned) load() []skill.Skill {
	if l.dir == "" {
		return nil
	}
	return loadTagged(os.DirFS(l.dir), skill.SourceLearned, l.logger)
}

// Discover returns every learned skill matching a need.
func (l *Learned) Discover(needs []skill.Need) ([]skill.Skill, error) {
	return matchRecords(l.load(), needs), nil
}

// List returns every learned skill.
func (l *Learned) List() ([]skill.Skill, error) {
	return l.load(), nil
}

// Exists reports whether a record named name has been saved.
func (l *Learned) Exists(name string) bool {
	_, err := os.Stat(l.recordPath(name))
	return err == nil
}

func (l *Learned) recordPath(name string) string {
	return filepath.Join(l.dir, name+".yaml")
}

// SaveSkill writes s as <name>.yaml in the learned directory, replacing any
// previous record of the same name. The directory is created on first use.
func (l *Learned) SaveSkill(s skill.Skill) (string, error) {
	if !l.autoSave {
		return "", ErrAutoSaveDisabled
	}
	if err := skill.ValidateName(s.Name); err != nil {
		return "", err
	}
	if l.dir == "" {
		return "", fmt.Errorf("learned skills directory is not configured")
	}

	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create learned skills directory: %w", err)
	}

	rec := s.Clone()
	rec.Source = skill.SourceLearned
	rec.Confidence = 0
	rec.Matches = nil
	rec.Adaptation = skill.Adaptation{}

	data, err := skill.MarshalRecords([]skill.Skill{rec})
	if err != nil {
		return "", err
	}

	path := l.recordPath(s.Name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write learned skill: %w", err)
	}

	l.logger.Debug("saved learned skill", "skill", s.Name, "path", path)
	return path, nil
}
