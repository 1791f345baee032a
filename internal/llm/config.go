package llm

import (
	"fmt"
	"os"
	"slices"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderGemini     = "gemini"
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config selects and configures the narrative model.
type Config struct {
	// Provider is one of the Provider* names.
	Provider string

	Gemini     GeminiConfig
	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig
	RateLimit  RateLimitConfig

	// Timeout bounds a single Generate call including retries. Default 60s.
	Timeout time.Duration
}

// GeminiConfig holds Gemini settings.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash-lite"

	// SafetyThreshold is one of GeminiSafetyLevels, applied to every harm
	// category. Default: DefaultGeminiSafety.
	SafetyThreshold string
}

// AnthropicConfig holds Anthropic settings.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI settings.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional, for OpenAI-compatible servers.
}

// OpenRouterConfig holds OpenRouter settings.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.0-flash-lite-001"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retries of transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// RateLimitConfig throttles outgoing requests. Zero RequestsPerSecond
// disables the limiter.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig uses Gemini, the model family the survey tool was built on.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderGemini,
		Gemini: GeminiConfig{
			Model:           "gemini-flash-lite",
			SafetyThreshold: DefaultGeminiSafety,
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-lite-001",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2,
			Burst:             2,
		},
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv is DefaultConfig with SOCIOGRAM_* overrides applied.
func ConfigFromEnv() Config {
	return DefaultConfig().WithEnv()
}

// WithEnv returns a copy of c with SOCIOGRAM_* environment overrides.
func (c Config) WithEnv() Config {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	set(&c.Provider, "SOCIOGRAM_LLM_PROVIDER")

	set(&c.Gemini.APIKey, "SOCIOGRAM_GEMINI_API_KEY")
	set(&c.Gemini.Model, "SOCIOGRAM_GEMINI_MODEL")
	set(&c.Gemini.SafetyThreshold, "SOCIOGRAM_GEMINI_SAFETY")

	set(&c.Anthropic.APIKey, "SOCIOGRAM_ANTHROPIC_API_KEY")
	set(&c.Anthropic.Model, "SOCIOGRAM_ANTHROPIC_MODEL")

	set(&c.OpenAI.APIKey, "SOCIOGRAM_OPENAI_API_KEY")
	set(&c.OpenAI.Model, "SOCIOGRAM_OPENAI_MODEL")
	set(&c.OpenAI.BaseURL, "SOCIOGRAM_OPENAI_BASE_URL")

	set(&c.OpenRouter.APIKey, "SOCIOGRAM_OPENROUTER_API_KEY")
	set(&c.OpenRouter.Model, "SOCIOGRAM_OPENROUTER_MODEL")

	return c
}

// DiscoverConfig probes the vendors' standard API key variables in order
// Gemini, OpenAI, Anthropic, OpenRouter and returns a Config for the first
// one found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = ProviderGemini
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = ProviderOpenAI
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = ProviderAnthropic
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = ProviderOpenRouter
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// SetModel overrides the model of the selected provider. Empty is a no-op.
func (c *Config) SetModel(model string) {
	if model == "" {
		return
	}
	switch c.Provider {
	case ProviderGemini:
		c.Gemini.Model = model
	case ProviderAnthropic:
		c.Anthropic.Model = model
	case ProviderOpenAI:
		c.OpenAI.Model = model
	case ProviderOpenRouter:
		c.OpenRouter.Model = model
	}
}

// HasKey reports whether the selected provider has credentials.
func (c Config) HasKey() bool {
	return c.Validate() == nil
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("SOCIOGRAM_GEMINI_API_KEY is required for the gemini provider")
		}
		if t := c.Gemini.SafetyThreshold; t != "" && !slices.Contains(GeminiSafetyLevels, t) {
			return fmt.Errorf("unknown gemini safety threshold %q", t)
		}
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("SOCIOGRAM_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("SOCIOGRAM_OPENAI_API_KEY is required for the openai provider")
		}
	case ProviderOpenRouter:
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("SOCIOGRAM_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case ProviderMock:
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
