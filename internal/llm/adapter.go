package llm

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Normalized Response.StopReason values.
const (
	stopEnd       = "end"
	stopMaxTokens = "max_tokens"
	stopBlocked   = "blocked"
)

// reply is what a vendor adapter reduces its SDK response to.
type reply struct {
	text  string
	usage Usage
	model string
	stop  string

	// blocked names the filter that fired when stop is stopBlocked.
	blocked string
}

// finish applies the checks every vendor shares. A safety block becomes
// *ErrContentBlocked. Structured output cut off at MaxTokens becomes
// *ErrMaxTokensExceeded; truncated prose is returned as is.
func finish(req Request, r reply) (*Response, error) {
	if r.stop == stopBlocked {
		return nil, &ErrContentBlocked{Reason: r.blocked}
	}

	content := json.RawMessage(r.text)
	if req.Schema != nil {
		if r.stop == stopMaxTokens {
			return nil, &ErrMaxTokensExceeded{Content: content}
		}
		var err error
		if content, err = conform(req.Schema, content); err != nil {
			return nil, err
		}
	}

	return &Response{
		Content:    content,
		Usage:      r.usage,
		Model:      r.model,
		StopReason: r.stop,
	}, nil
}

// fromStatus classifies a vendor HTTP failure.
func fromStatus(status int, retryAfter time.Duration, err error) error {
	switch status {
	case http.StatusTooManyRequests:
		return &ErrRateLimit{RetryAfter: retryAfter, Err: err}
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
		http.StatusNotFound, http.StatusRequestEntityTooLarge, http.StatusUnprocessableEntity:
		return &ErrRequestRejected{Status: status, Err: err}
	default:
		return &ErrProviderUnavailable{Err: err}
	}
}

// retryAfter reads a Retry-After header given in seconds.
func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(h.Get("Retry-After")))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// turns converts the conversation into a vendor's message type.
func turns[T any](msgs []Message, conv func(fromModel bool, text string) T) []T {
	out := make([]T, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, conv(m.Role == RoleAssistant, m.Content))
	}
	return out
}

// resolveModel maps a short name such as "claude-haiku" to a vendor model
// ID. Unknown names are taken to be IDs already.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}

// stringList reads a JSON Schema keyword holding strings ("required",
// "enum") from a definition map.
func stringList(v any) []string {
	switch vs := v.(type) {
	case []string:
		return vs
	case []any:
		out := make([]string, 0, len(vs))
		for _, e := range vs {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
