package llm

import (
	"context"
	"fmt"
	"log/slog"
)

// NewProvider creates a Provider from configuration, wrapped as
//
//	caller → timeout → retry → rate limit → logging → base
//
// so each retry is throttled and recorded separately. events may be nil to
// skip event logging.
func NewProvider(ctx context.Context, cfg Config, events EventRecorder, logger *slog.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderMock:
		base = NewEchoProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return Wrap(base, cfg, events, logger), nil
}

// Wrap applies the standard decorator chain to an existing provider.
func Wrap(base Provider, cfg Config, events EventRecorder, logger *slog.Logger) Provider {
	p := base
	if events != nil {
		p = WithLogging(p, cfg.Provider, events, logger)
	}
	p = WithRateLimit(p, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	if cfg.Retry.MaxAttempts > 0 {
		p = WithRetry(p, cfg.Retry, logger)
	}
	return WithTimeout(p, cfg.Timeout)
}
