package llm

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// MockResponse is one canned answer for MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockText is a canned plain-text answer.
func MockText(text string) MockResponse {
	return MockResponse{Content: json.RawMessage(text)}
}

// MockProvider answers from a FIFO queue and records every request.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	fallback  func(Request) MockResponse
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given queue. Once the
// queue is empty every call fails with ErrProviderUnavailable.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// NewEchoProvider answers every request offline. Prose requests get
// "[mock] " plus the first line of the last message; structured requests
// get the smallest document their schema accepts. It backs the "mock"
// provider setting.
func NewEchoProvider() *MockProvider {
	return &MockProvider{fallback: echo}
}

// Generate pops the next canned answer, or asks the fallback when the
// queue is empty.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	var next MockResponse
	switch {
	case len(m.responses) > 0:
		next = m.responses[0]
		m.responses = m.responses[1:]
	case m.fallback != nil:
		next = m.fallback(req)
	default:
		return nil, &ErrProviderUnavailable{}
	}

	if next.Err != nil {
		return nil, next.Err
	}

	content := next.Content
	if req.Schema != nil {
		var err error
		if content, err = conform(req.Schema, content); err != nil {
			return nil, err
		}
	}

	return &Response{
		Content:    content,
		Usage:      next.Usage,
		Model:      "mock",
		StopReason: stopEnd,
	}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse queues another answer.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request.
func (m *MockProvider) LastCall() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return Request{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}

func echo(req Request) MockResponse {
	if req.Schema != nil {
		doc, err := json.Marshal(skeleton(req.Schema.Definition))
		if err != nil {
			return MockResponse{Err: err}
		}
		return MockResponse{Content: doc}
	}
	var line string
	if n := len(req.Messages); n > 0 {
		line, _, _ = strings.Cut(strings.TrimSpace(req.Messages[n-1].Content), "\n")
	}
	return MockText("[mock] " + line)
}

// skeleton builds the smallest value def accepts: required properties
// only, empty arrays, zero numbers and the first enum value.
func skeleton(def map[string]any) any {
	switch def["type"] {
	case "object":
		props, _ := def["properties"].(map[string]any)
		out := make(map[string]any)
		for _, name := range stringList(def["required"]) {
			sub, _ := props[name].(map[string]any)
			out[name] = skeleton(sub)
		}
		return out
	case "array":
		return []any{}
	case "integer", "number":
		return 0
	case "boolean":
		return false
	}
	if enum := stringList(def["enum"]); len(enum) > 0 {
		return enum[0]
	}
	return ""
}
