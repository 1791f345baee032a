package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

var anthropicModels = map[string]string{
	"claude-haiku":  "claude-haiku-4-5-20251001",
	"claude-sonnet": "claude-sonnet-4-20250514",
}

// AnthropicProvider writes narratives with Claude models.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

// NewAnthropicProvider creates a Claude-backed provider.
func NewAnthropicProvider(cfg AnthropicConfig) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic API key is required")
	}
	return newAnthropicProvider(cfg.Model, option.WithAPIKey(cfg.APIKey)), nil
}

// newAnthropicProvider turns the SDK's built-in retries off; RetryProvider
// owns retrying.
func newAnthropicProvider(model string, opts ...option.RequestOption) *AnthropicProvider {
	opts = append(opts, option.WithMaxRetries(0))
	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  resolveModel(model, anthropicModels),
	}
}

func (p *AnthropicProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	msg, err := p.client.Messages.New(ctx, p.params(req))
	if err != nil {
		return nil, anthropicError(err)
	}

	text, ok := anthropicText(msg)
	r := reply{
		text:  text,
		model: string(msg.Model),
		stop:  stopEnd,
		usage: Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
			TotalTokens:  int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}
	switch msg.StopReason {
	case anthropic.StopReasonRefusal:
		r.stop, r.blocked = stopBlocked, string(msg.StopReason)
	case anthropic.StopReasonMaxTokens:
		r.stop = stopMaxTokens
	default:
		if !ok {
			return nil, &ErrInvalidResponse{Err: errors.New("anthropic reply has no text block")}
		}
	}
	return finish(req, r)
}

func (p *AnthropicProvider) ModelID() string {
	return p.model
}

func (p *AnthropicProvider) params(req Request) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(req.MaxTokens),
		Messages: turns(req.Messages, func(fromModel bool, text string) anthropic.MessageParam {
			if fromModel {
				return anthropic.NewAssistantMessage(anthropic.NewTextBlock(text))
			}
			return anthropic.NewUserMessage(anthropic.NewTextBlock(text))
		}),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if req.Schema != nil {
		params.OutputConfig = anthropic.OutputConfigParam{
			Format: anthropic.JSONOutputFormatParam{Schema: req.Schema.Definition},
		}
	}
	return params
}

// anthropicText joins the text blocks of a reply. ok is false when there
// are none.
func anthropicText(msg *anthropic.Message) (text string, ok bool) {
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
			ok = true
		}
	}
	return b.String(), ok
}

func anthropicError(err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return &ErrProviderUnavailable{Err: err}
	}
	var wait time.Duration
	if apiErr.Response != nil {
		wait = retryAfter(apiErr.Response.Header)
	}
	return fromStatus(apiErr.StatusCode, wait, err)
}
