package llm

import "testing"

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
		"SOCIOGRAM_LLM_PROVIDER", "SOCIOGRAM_GEMINI_API_KEY", "SOCIOGRAM_GEMINI_MODEL",
		"SOCIOGRAM_GEMINI_SAFETY",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderGemini {
		t.Fatalf("default provider = %q", cfg.Provider)
	}
	if got := resolveModel(cfg.Gemini.Model, geminiModels); got != "gemini-2.0-flash-lite" {
		t.Fatalf("default gemini model resolves to %q", got)
	}
}

func TestConfigFromEnv(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("SOCIOGRAM_GEMINI_API_KEY", "g-key")
	t.Setenv("SOCIOGRAM_GEMINI_MODEL", "gemini-flash")

	cfg := ConfigFromEnv()
	if cfg.Gemini.APIKey != "g-key" || cfg.Gemini.Model != "gemini-flash" {
		t.Fatalf("env not applied: %+v", cfg.Gemini)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestGeminiSafetyFromEnv(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("SOCIOGRAM_GEMINI_API_KEY", "g-key")

	cfg := ConfigFromEnv()
	if cfg.Gemini.SafetyThreshold != DefaultGeminiSafety {
		t.Fatalf("default safety = %q", cfg.Gemini.SafetyThreshold)
	}

	t.Setenv("SOCIOGRAM_GEMINI_SAFETY", "BLOCK_MEDIUM_AND_ABOVE")
	cfg = ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	t.Setenv("SOCIOGRAM_GEMINI_SAFETY", "BLOCK_EVERYTHING")
	if err := ConfigFromEnv().Validate(); err == nil {
		t.Fatal("expected an unknown safety threshold to be rejected")
	}
}

func TestDiscoverConfig(t *testing.T) {
	clearKeyEnv(t)
	if _, ok := DiscoverConfig(); ok {
		t.Fatal("expected no config without keys")
	}

	t.Setenv("ANTHROPIC_API_KEY", "a-key")
	t.Setenv("OPENAI_API_KEY", "o-key")
	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != ProviderOpenAI || cfg.OpenAI.APIKey != "o-key" {
		t.Fatalf("expected openai to win over anthropic, got %q", cfg.Provider)
	}
}

func TestSetModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ProviderAnthropic
	cfg.SetModel("claude-sonnet")
	if cfg.Anthropic.Model != "claude-sonnet" {
		t.Fatalf("model = %q", cfg.Anthropic.Model)
	}
	cfg.SetModel("")
	if cfg.Anthropic.Model != "claude-sonnet" {
		t.Fatal("empty model must not override")
	}
}
