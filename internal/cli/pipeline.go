package cli

import (
	"fmt"
	"log/slog"

	"github.com/andywolf/rulesgen/internal/classifier"
	"github.com/andywolf/rulesgen/internal/config"
	"github.com/andywolf/rulesgen/internal/llm"
	"github.com/andywolf/rulesgen/internal/needs"
	"github.com/andywolf/rulesgen/internal/orchestrator"
	"github.com/andywolf/rulesgen/internal/render"
	"github.com/andywolf/rulesgen/internal/scanner"
	"github.com/andywolf/rulesgen/internal/sources"
	"github.com/andywolf/rulesgen/internal/validate"
)

// scanProject scans root and runs the optional augmentation step.
func scanProject(cfg *config.Config, root, readmePath string, logger *slog.Logger) (*scanner.ProjectInfo, error) {
	s := scanner.New(root, scanner.Options{
		ReadmePath:          readmePath,
		IncludeManifestDeps: cfg.Analysis.IncludeManifestDeps,
	})
	info, err := s.Scan()
	if err != nil {
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	if info.ReadmePath == "" {
		logger.Warn("no README found, classifying from layout only", "root", info.RootDir)
	}
	return llm.Augment(info, cfg.LLM, logger), nil
}

// newAnalyzer builds a needs analyzer backed by a bounded classification
// cache.
func newAnalyzer(cfg *config.Config) (*needs.Analyzer, error) {
	cache, err := classifier.NewLRU(cfg.Analysis.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create classification cache: %w", err)
	}
	return needs.NewAnalyzer(classifier.New(cache)), nil
}

// newOrchestrator wires the analyzer and every enabled source.
func newOrchestrator(cfg *config.Config, logger *slog.Logger) (*orchestrator.Orchestrator, error) {
	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return nil, err
	}

	srcs, err := sources.FromConfig(cfg.SkillSources, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to configure skill sources: %w", err)
	}

	o := orchestrator.New(analyzer, logger)
	for _, src := range srcs {
		logger.Debug("registered skill source", "source", src.Name(), "priority", src.Priority())
		o.Register(src)
	}
	return o, nil
}

// logValidation logs every finding of r for the named subject at its
// severity.
func logValidation(logger *slog.Logger, subject string, r validate.Result) {
	for _, e := range r.Errors {
		logger.Error("validation failed", "subject", subject, "error", e)
	}
	for _, w := range r.Warnings {
		logger.Warn("validation warning", "subject", subject, "warning", w)
	}
	for _, i := range r.Info {
		logger.Debug("validation", "subject", subject, "info", i)
	}
}

// layoutOf keeps the parts of the scanned structure that documents show.
func layoutOf(s scanner.ProjectStructure) render.Layout {
	return render.Layout{
		EntryPoints: s.EntryPoints,
		SourceDirs:  s.SourceDirs,
		TestDirs:    s.TestDirs,
		CISystem:    s.CISystem,
		HasDocker:   s.HasDocker,
	}
}
