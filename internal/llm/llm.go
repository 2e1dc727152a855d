// Package llm is the hook for optional model-assisted project analysis. It
// performs no network I/O: augmentation currently returns the project
// unchanged.
package llm

import (
	"log/slog"
	"os"

	"github.com/andywolf/rulesgen/internal/config"
	"github.com/andywolf/rulesgen/internal/scanner"
)

// Environment variables consulted when the config carries no API key.
var apiKeyEnv = map[string]string{
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

// APIKey returns the configured key, falling back to the provider's
// environment variable.
func APIKey(cfg config.LLMConfig) string {
	if cfg.APIKey != "" {
		return cfg.APIKey
	}
	if env, ok := apiKeyEnv[cfg.Provider]; ok {
		return os.Getenv(env)
	}
	return ""
}

// Augment returns info unchanged. When augmentation is enabled without an
// API key a warning is logged.
func Augment(info *scanner.ProjectInfo, cfg config.LLMConfig, logger *slog.Logger) *scanner.ProjectInfo {
	if !cfg.Enabled {
		return info
	}
	if logger == nil {
		logger = slog.Default()
	}

	if APIKey(cfg) == "" {
		logger.Warn("llm enabled but no API key provided, skipping analysis", "provider", cfg.Provider)
		return info
	}

	logger.Info("llm analysis is not available in this build, skipping", "provider", cfg.Provider, "model", cfg.Model)
	return info
}
