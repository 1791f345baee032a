// Package config loads sociogram settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/sociogram/internal/analysis"
	"github.com/abhisek/sociogram/internal/llm"
	"github.com/abhisek/sociogram/internal/narrative"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Cache backends.
const (
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config is the whole configuration file.
type Config struct {
	// DB is the SQLite path. Empty means the default data directory.
	DB       string `yaml:"db"`
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	Analysis  AnalysisConfig  `yaml:"analysis"`
	Narrative NarrativeConfig `yaml:"narrative"`
	LLM       LLMConfig       `yaml:"llm"`
	Cache     CacheConfig     `yaml:"cache"`
}

// AnalysisConfig holds the reciprocity cut-offs.
type AnalysisConfig struct {
	HighThreshold int `yaml:"high_threshold" validate:"min=0,max=100"`
	LowThreshold  int `yaml:"low_threshold" validate:"min=0,max=100,ltfield=HighThreshold"`
}

// NarrativeConfig controls text generation.
type NarrativeConfig struct {
	Language    string  `yaml:"language" validate:"required"`
	MaxTokens   int     `yaml:"max_tokens" validate:"min=1,max=8192"`
	Temperature float64 `yaml:"temperature" validate:"min=0,max=1"`

	// Parallel bounds concurrent requests for narrate --all.
	Parallel int `yaml:"parallel" validate:"min=1,max=32"`
}

// LLMConfig selects the model. API keys come from the environment only.
type LLMConfig struct {
	Provider  string        `yaml:"provider" validate:"omitempty,oneof=gemini anthropic openai openrouter mock"`
	Model     string        `yaml:"model"`
	Safety    string        `yaml:"safety" validate:"omitempty,oneof=OFF BLOCK_NONE BLOCK_ONLY_HIGH BLOCK_MEDIUM_AND_ABOVE BLOCK_LOW_AND_ABOVE"`
	Timeout   time.Duration `yaml:"timeout" validate:"gte=0"`
	RateLimit float64       `yaml:"rate_limit" validate:"gte=0"`
	Burst     int           `yaml:"burst" validate:"gte=0"`
}

// CacheConfig selects where generated narratives are kept.
type CacheConfig struct {
	Backend   string        `yaml:"backend" validate:"oneof=sqlite redis none"`
	RedisAddr string        `yaml:"redis_addr" validate:"required_if=Backend redis"`
	TTL       time.Duration `yaml:"ttl" validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() *Config {
	th := analysis.DefaultThresholds()
	nc := narrative.DefaultConfig()
	lc := llm.DefaultConfig()
	return &Config{
		LogLevel: "info",
		Analysis: AnalysisConfig{
			HighThreshold: th.High,
			LowThreshold:  th.Low,
		},
		Narrative: NarrativeConfig{
			Language:    nc.Language,
			MaxTokens:   nc.MaxTokens,
			Temperature: nc.Temperature,
			Parallel:    4,
		},
		LLM: LLMConfig{
			Timeout:   lc.Timeout,
			RateLimit: lc.RateLimit.RequestsPerSecond,
			Burst:     lc.RateLimit.Burst,
		},
		Cache: CacheConfig{
			Backend:   CacheSQLite,
			RedisAddr: "localhost:6379",
			TTL:       7 * 24 * time.Hour,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/sociogram/config.yaml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "sociogram", "config.yaml"), nil
}

// Load reads path (or SOCIOGRAM_CONFIG, or the default path when both are
// empty), applies environment overrides and validates the result. A
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("SOCIOGRAM_CONFIG")
	}
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field constraint.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	str := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	str(&c.DB, "SOCIOGRAM_DB")
	str(&c.LogLevel, "SOCIOGRAM_LOG_LEVEL")
	str(&c.Narrative.Language, "SOCIOGRAM_LANGUAGE")
	str(&c.LLM.Provider, "SOCIOGRAM_LLM_PROVIDER")
	str(&c.LLM.Model, "SOCIOGRAM_LLM_MODEL")
	str(&c.Cache.Backend, "SOCIOGRAM_CACHE")
	str(&c.Cache.RedisAddr, "SOCIOGRAM_REDIS_ADDR")

	if v := os.Getenv("SOCIOGRAM_PARALLEL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SOCIOGRAM_PARALLEL: %w", err)
		}
		c.Narrative.Parallel = n
	}
	return nil
}

// Thresholds returns the analysis cut-offs.
func (c *Config) Thresholds() analysis.Thresholds {
	return analysis.Thresholds{High: c.Analysis.HighThreshold, Low: c.Analysis.LowThreshold}
}

// NarrativeSettings returns the narrative service settings.
func (c *Config) NarrativeSettings() narrative.Config {
	return narrative.Config{
		Language:    c.Narrative.Language,
		MaxTokens:   c.Narrative.MaxTokens,
		Temperature: c.Narrative.Temperature,
	}
}

// LLMSettings builds the provider configuration. Keys are discovered from
// the vendors' standard variables, then the file's provider and model
// apply, then SOCIOGRAM_* variables. ok reports whether the chosen
// provider has credentials.
func (c *Config) LLMSettings() (cfg llm.Config, ok bool) {
	cfg = llm.DefaultConfig()
	if c.LLM.Provider == "" {
		if found, ok := llm.DiscoverConfig(); ok {
			cfg = found
		}
	} else {
		cfg.Provider = c.LLM.Provider
		fillVendorKey(&cfg)
	}
	cfg = cfg.WithEnv()
	cfg.SetModel(c.LLM.Model)
	if c.LLM.Safety != "" {
		cfg.Gemini.SafetyThreshold = c.LLM.Safety
	}

	if c.LLM.Timeout > 0 {
		cfg.Timeout = c.LLM.Timeout
	}
	cfg.RateLimit = llm.RateLimitConfig{
		RequestsPerSecond: c.LLM.RateLimit,
		Burst:             c.LLM.Burst,
	}
	return cfg, cfg.HasKey()
}

// fillVendorKey reads the selected provider's standard key variable.
func fillVendorKey(cfg *llm.Config) {
	switch cfg.Provider {
	case llm.ProviderGemini:
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	case llm.ProviderAnthropic:
		cfg.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	case llm.ProviderOpenAI:
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	case llm.ProviderOpenRouter:
		cfg.OpenRouter.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}
}
