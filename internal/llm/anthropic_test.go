package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
)

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return newAnthropicProvider("claude-haiku",
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL))
}

func claudeMessage(stop string, texts ...string) map[string]any {
	content := make([]map[string]any, len(texts))
	for i, text := range texts {
		content[i] = map[string]any{"type": "text", "text": text}
	}
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     content,
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func TestAnthropicProvider_StudentNarrative(t *testing.T) {
	var sent map[string]any
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&sent); err != nil {
			t.Errorf("decode request: %v", err)
		}
		replyJSON(t, http.StatusOK, claudeMessage("end_turn", "Mina gives generous ratings. ", "Few classmates rate her back."))(w, r)
	})

	resp, err := p.Generate(context.Background(), studentRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "Mina gives generous ratings. Few classmates rate her back." {
		t.Fatalf("expected text blocks joined, got %q", resp.Text())
	}
	if resp.Usage.TotalTokens != 80 || resp.StopReason != "end" {
		t.Fatalf("usage %+v, stop %q", resp.Usage, resp.StopReason)
	}
	if sent["model"] != "claude-haiku-4-5-20251001" {
		t.Fatalf("model alias not resolved: %v", sent["model"])
	}
	if _, ok := sent["output_config"]; ok {
		t.Fatal("prose narratives must not request structured output")
	}
}

func TestAnthropicProvider_ConcernSummary(t *testing.T) {
	var sent map[string]any
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&sent); err != nil {
			t.Errorf("decode request: %v", err)
		}
		replyJSON(t, http.StatusOK, claudeMessage("end_turn", concernAnswer))(w, r)
	})

	resp, err := p.Generate(context.Background(), concernRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != concernAnswer {
		t.Fatalf("content = %s", resp.Content)
	}
	if _, ok := sent["output_config"]; !ok {
		t.Fatal("expected the concern schema to be sent as output_config")
	}
}

func TestAnthropicProvider_RefusalIsBlocked(t *testing.T) {
	p := newTestAnthropicProvider(t, replyJSON(t, http.StatusOK, claudeMessage("refusal")))

	_, err := p.Generate(context.Background(), studentRequest())
	var blocked *ErrContentBlocked
	if !errors.As(err, &blocked) || blocked.Reason != "refusal" {
		t.Fatalf("expected ErrContentBlocked(refusal), got: %T (%v)", err, err)
	}
}

func TestAnthropicProvider_NoTextIsInvalid(t *testing.T) {
	p := newTestAnthropicProvider(t, replyJSON(t, http.StatusOK, claudeMessage("end_turn")))

	_, err := p.Generate(context.Background(), studentRequest())
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
	}
}

func TestAnthropicProvider_RateLimitCarriesRetryAfter(t *testing.T) {
	calls := 0
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Retry-After", "7")
		replyJSON(t, http.StatusTooManyRequests, map[string]any{
			"type":  "error",
			"error": map[string]any{"type": "rate_limit_error", "message": "slow down"},
		})(w, r)
	})

	_, err := p.Generate(context.Background(), studentRequest())
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T (%v)", err, err)
	}
	if rl.RetryAfter != 7*time.Second {
		t.Fatalf("RetryAfter = %s", rl.RetryAfter)
	}
	if calls != 1 {
		t.Fatalf("the SDK must not retry on its own, got %d calls", calls)
	}
}

func TestAnthropicProvider_HTTPErrors(t *testing.T) {
	body := map[string]any{"type": "error", "error": map[string]any{"type": "api_error", "message": "x"}}

	p := newTestAnthropicProvider(t, replyJSON(t, http.StatusUnauthorized, body))
	_, err := p.Generate(context.Background(), studentRequest())
	var rejected *ErrRequestRejected
	if !errors.As(err, &rejected) || rejected.Status != http.StatusUnauthorized {
		t.Fatalf("expected ErrRequestRejected(401), got: %T (%v)", err, err)
	}

	p = newTestAnthropicProvider(t, replyJSON(t, http.StatusInternalServerError, body))
	_, err = p.Generate(context.Background(), studentRequest())
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T (%v)", err, err)
	}
}

func TestAnthropicModelAliases(t *testing.T) {
	tests := map[string]string{
		"claude-haiku":             "claude-haiku-4-5-20251001",
		"claude-sonnet":            "claude-sonnet-4-20250514",
		"claude-opus-4-1-20250805": "claude-opus-4-1-20250805",
	}
	for in, want := range tests {
		if got := resolveModel(in, anthropicModels); got != want {
			t.Errorf("resolveModel(%q) = %q, want %q", in, got, want)
		}
	}
}
