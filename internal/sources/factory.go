package sources

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/andywolf/rulesgen/internal/config"
	"github.com/andywolf/rulesgen/internal/skill"
)

// FromConfig builds the enabled sources, each ranked by the preference
// order. An empty builtin path selects the embedded templates.
func FromConfig(cfg config.SkillSourcesConfig, logger *slog.Logger) ([]Source, error) {
	logger = orDefault(logger)
	order := cfg.PreferenceOrder

	var out []Source

	if cfg.Builtin.Enabled {
		b, err := builtinFromConfig(cfg, logger)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}

	if cfg.Learned.Enabled {
		l, err := LearnedFromConfig(cfg, logger)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}

	if cfg.Awesome.Enabled {
		if cfg.Awesome.Path == "" {
			logger.Warn("awesome source enabled without a path; skipping")
		} else {
			dir, err := resolveDir(cfg.Awesome.Path)
			if err != nil {
				return nil, err
			}
			conf, ok := cfg.Confidence[skill.SourceAwesome]
			if !ok {
				conf = config.DefaultAwesomeConfidence
			}
			out = append(out, NewAwesome(os.DirFS(dir), conf, Priority(skill.SourceAwesome, order), logger))
		}
	}

	return out, nil
}

func builtinFromConfig(cfg config.SkillSourcesConfig, logger *slog.Logger) (*Builtin, error) {
	priority := Priority(skill.SourceBuiltin, cfg.PreferenceOrder)
	if cfg.Builtin.Path == "" {
		return NewBuiltin(nil, priority, logger), nil
	}
	dir, err := resolveDir(cfg.Builtin.Path)
	if err != nil {
		return nil, err
	}
	return NewBuiltin(os.DirFS(dir), priority, logger), nil
}

// LearnedFromConfig builds the learned source regardless of whether it is
// enabled for discovery, so skills can still be saved.
func LearnedFromConfig(cfg config.SkillSourcesConfig, logger *slog.Logger) (*Learned, error) {
	path := cfg.Learned.Path
	if path == "" {
		path = config.DefaultLearnedPath
	}
	dir, err := resolveDir(path)
	if err != nil {
		return nil, err
	}
	return NewLearned(dir, cfg.Learned.AutoSave, Priority(skill.SourceLearned, cfg.PreferenceOrder), orDefault(logger)), nil
}

func resolveDir(path string) (string, error) {
	expanded, err := config.ExpandHome(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return abs, nil
}
