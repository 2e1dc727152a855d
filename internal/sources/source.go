// Package sources provides the skill sources consulted during resolution:
// builtin templates, the user's learned library, and community packs.
package sources

import (
	"errors"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/andywolf/rulesgen/internal/skill"
)

// DefaultPriority is used for sources absent from the preference order.
const DefaultPriority = 0

// Source offers skills for a set of needs. Sources with a higher priority
// win naming conflicts.
type Source interface {
	Name() string
	Priority() int
	Discover(needs []skill.Need) ([]skill.Skill, error)
}

// Lister is implemented by sources that can enumerate every skill they hold.
type Lister interface {
	List() ([]skill.Skill, error)
}

// Priority ranks name by its position in order: the first entry gets
// len(order), the last gets 1. Names not in order get DefaultPriority.
func Priority(name string, order []string) int {
	for i, n := range order {
		if n == name {
			return len(order) - i
		}
	}
	return DefaultPriority
}

// matchRecords returns a clone of every record that satisfies a need, in
// need order. A record matches when its name equals the need name, contains
// it case-insensitively, or when its category equals the need name. The same
// record may be returned once per matching need.
func matchRecords(records []skill.Skill, needs []skill.Need) []skill.Skill {
	var found []skill.Skill
	for _, need := range needs {
		if need.Name == "" {
			continue
		}
		needName := strings.ToLower(need.Name)
		for _, rec := range records {
			if rec.Name == need.Name ||
				strings.Contains(strings.ToLower(rec.Name), needName) ||
				rec.Category == need.Name {
				found = append(found, rec.Clone())
			}
		}
	}
	return found
}

// loadTagged loads the records in fsys and stamps them with source. A
// missing directory yields no records; broken files are logged and skipped.
func loadTagged(fsys fs.FS, source string, logger *slog.Logger) []skill.Skill {
	records, errs := skill.LoadDir(fsys)
	for _, err := range errs {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("skill directory not found", "source", source)
			continue
		}
		logger.Warn("skipping skill file", "source", source, "error", err)
	}
	for i := range records {
		records[i].Source = source
	}
	return records
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
