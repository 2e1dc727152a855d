package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/andywolf/rulesgen/internal/skill"
)

// Output formats understood by the renderers.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
)

const (
	DefaultLearnedPath       = "~/.rulesgen/learned_skills"
	DefaultCacheSize         = 128
	DefaultAwesomeConfidence = 0.8
)

// Config represents the full rulesgen configuration
type Config struct {
	LLM          LLMConfig          `mapstructure:"llm" yaml:"llm"`
	Generation   GenerationConfig   `mapstructure:"generation" yaml:"generation"`
	Packs        PacksConfig        `mapstructure:"packs" yaml:"packs"`
	Analysis     AnalysisConfig     `mapstructure:"analysis" yaml:"analysis"`
	SkillSources SkillSourcesConfig `mapstructure:"skill_sources" yaml:"skill_sources"`
}

// LLMConfig controls the optional augmentation step
type LLMConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Provider string `mapstructure:"provider" yaml:"provider"`
	APIKey   string `mapstructure:"api_key" yaml:"api_key"`
	Model    string `mapstructure:"model" yaml:"model,omitempty"`
}

// GenerationConfig contains output settings
type GenerationConfig struct {
	OutputFormat    string `mapstructure:"output_format" yaml:"output_format"`
	IncludeExamples bool   `mapstructure:"include_examples" yaml:"include_examples"`
	Verbose         bool   `mapstructure:"verbose" yaml:"verbose"`
}

// PacksConfig lists external skill packs merged after resolution
type PacksConfig struct {
	Enabled bool     `mapstructure:"enabled" yaml:"enabled"`
	Sources []string `mapstructure:"sources" yaml:"sources"`
}

// AnalysisConfig tunes project analysis
type AnalysisConfig struct {
	IncludeManifestDeps bool `mapstructure:"include_manifest_deps" yaml:"include_manifest_deps"`
	CacheSize           int  `mapstructure:"cache_size" yaml:"cache_size"`
}

// SourceConfig is the common block for a skill source
type SourceConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// LearnedSourceConfig adds persistence settings to the learned source
type LearnedSourceConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Path     string `mapstructure:"path" yaml:"path"`
	AutoSave bool   `mapstructure:"auto_save" yaml:"auto_save"`
}

// SkillSourcesConfig configures the skill sources and their ranking
type SkillSourcesConfig struct {
	Builtin         SourceConfig        `mapstructure:"builtin" yaml:"builtin"`
	Learned         LearnedSourceConfig `mapstructure:"learned" yaml:"learned"`
	Awesome         SourceConfig        `mapstructure:"awesome" yaml:"awesome"`
	PreferenceOrder []string            `mapstructure:"preference_order" yaml:"preference_order"`
	Confidence      map[string]float64  `mapstructure:"confidence" yaml:"confidence"`
}

// KnownSources lists the valid preference_order entries, in default order.
var KnownSources = []string{skill.SourceLearned, skill.SourceAwesome, skill.SourceBuiltin}

// SetDefaults registers defaults that cannot be inferred from zero values.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("generation.output_format", FormatMarkdown)
	v.SetDefault("generation.include_examples", true)
	v.SetDefault("packs.enabled", true)
	v.SetDefault("analysis.cache_size", DefaultCacheSize)
	v.SetDefault("skill_sources.builtin.enabled", true)
	v.SetDefault("skill_sources.learned.enabled", true)
	v.SetDefault("skill_sources.learned.path", DefaultLearnedPath)
	v.SetDefault("skill_sources.learned.auto_save", true)
	v.SetDefault("skill_sources.awesome.enabled", false)
	v.SetDefault("skill_sources.preference_order", KnownSources)
	v.SetDefault("skill_sources.confidence.awesome", DefaultAwesomeConfidence)
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadFrom(v)
	if err != nil {
		// Defaults always decode.
		panic(err)
	}
	return cfg
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom decodes the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply defaults
	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "anthropic"
	}

	if cfg.Generation.OutputFormat == "" {
		cfg.Generation.OutputFormat = FormatMarkdown
	}
	cfg.Generation.OutputFormat = strings.ToLower(cfg.Generation.OutputFormat)

	if cfg.Analysis.CacheSize == 0 {
		cfg.Analysis.CacheSize = DefaultCacheSize
	}

	if cfg.SkillSources.Learned.Path == "" {
		cfg.SkillSources.Learned.Path = DefaultLearnedPath
	}

	if cfg.SkillSources.PreferenceOrder == nil {
		cfg.SkillSources.PreferenceOrder = append([]string(nil), KnownSources...)
	}

	if cfg.SkillSources.Confidence == nil {
		cfg.SkillSources.Confidence = map[string]float64{}
	}
	if _, ok := cfg.SkillSources.Confidence[skill.SourceAwesome]; !ok {
		cfg.SkillSources.Confidence[skill.SourceAwesome] = DefaultAwesomeConfidence
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validFormats := map[string]bool{FormatMarkdown: true, FormatJSON: true, FormatYAML: true}
	if !validFormats[c.Generation.OutputFormat] {
		return fmt.Errorf("invalid output_format: %s (must be markdown, json, or yaml)", c.Generation.OutputFormat)
	}

	validProviders := map[string]bool{"anthropic": true, "gemini": true}
	if !validProviders[c.LLM.Provider] {
		return fmt.Errorf("invalid llm provider: %s (must be anthropic or gemini)", c.LLM.Provider)
	}

	if c.Analysis.CacheSize < 1 {
		return fmt.Errorf("invalid cache_size: %d (must be at least 1)", c.Analysis.CacheSize)
	}

	known := make(map[string]bool, len(KnownSources))
	for _, name := range KnownSources {
		known[name] = true
	}
	seen := make(map[string]bool, len(c.SkillSources.PreferenceOrder))
	for _, name := range c.SkillSources.PreferenceOrder {
		if !known[name] {
			return fmt.Errorf("invalid preference_order entry: %s (must be one of %s)", name, strings.Join(KnownSources, ", "))
		}
		if seen[name] {
			return fmt.Errorf("duplicate preference_order entry: %s", name)
		}
		seen[name] = true
	}

	for name, conf := range c.SkillSources.Confidence {
		if conf < 0 || conf > 1 {
			return fmt.Errorf("invalid confidence for %s: %v (must be between 0 and 1)", name, conf)
		}
	}

	return nil
}

// ExpandHome resolves a leading ~ to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
