package sources

import (
	"embed"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/andywolf/rulesgen/internal/skill"
)

//go:embed templates/*.yaml
var embeddedTemplates embed.FS

// EmbeddedTemplates returns the skill templates compiled into the binary.
func EmbeddedTemplates() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Builtin serves the shipped skill templates. Templates are read once.
type Builtin struct {
	fsys     fs.FS
	priority int
	logger   *slog.Logger

	once    sync.Once
	records []skill.Skill
}

// NewBuiltin creates a builtin source over fsys. A nil fsys uses the
// embedded templates.
func NewBuiltin(fsys fs.FS, priority int, logger *slog.Logger) *Builtin {
	if fsys == nil {
		fsys = EmbeddedTemplates()
	}
	return &Builtin{fsys: fsys, priority: priority, logger: orDefault(logger)}
}

func (b *Builtin) Name() string  { return skill.SourceBuiltin }
func (b *Builtin) Priority() int { return b.priority }

func (b *Builtin) load() []skill.Skill {
	b.once.Do(func() {
		b.records = loadTagged(b.fsys, skill.SourceBuiltin, b.logger)
	})
	return b.records
}

// Discover returns every template matching a need.
func (b *Builtin) Discover(needs []skill.Need) ([]skill.Skill, error) {
	return matchRecords(b.load(), needs), nil
}

// List returns every template.
func (b *Builtin) List() ([]skill.Skill, error) {
	return cloneAll(b.load()), nil
}

func cloneAll(records []skill.Skill) []skill.Skill {
	out := make([]skill.Skill, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
