package llm

import (
	"cmp"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const (
	openRouterBaseURL = "https://openrouter.ai/api/v1"
	openRouterReferer = "https://github.com/abhisek/sociogram"
	openRouterTitle   = "sociogram"
)

// NewOpenRouterProvider talks to OpenRouter's OpenAI-compatible endpoint.
// Models are OpenRouter slugs such as "google/gemini-2.0-flash-lite-001".
// Every request carries OpenRouter's app attribution headers.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter API key is required")
	}
	cc := openai.DefaultConfig(cfg.APIKey)
	cc.BaseURL = cmp.Or(cfg.BaseURL, openRouterBaseURL)
	cc.HTTPClient = &http.Client{Transport: attribution{next: http.DefaultTransport}}
	return newOpenAIProvider(cc, cfg.Model), nil
}

// attribution sets the HTTP-Referer and X-Title headers OpenRouter uses to
// credit the calling app.
type attribution struct {
	next http.RoundTripper
}

func (a attribution) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("HTTP-Referer", openRouterReferer)
	r.Header.Set("X-Title", openRouterTitle)
	return a.next.RoundTrip(r)
}
