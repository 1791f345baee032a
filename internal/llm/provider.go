package llm

import (
	"context"
	"encoding/json"
)

// Provider is the text-generation collaborator. Narrative code builds a
// Request, hands it to a Provider and gets text (or schema-checked JSON)
// back. Credentials, retries and rate limits live in the Provider chain,
// never in the callers.
type Provider interface {
	// Generate sends one request. When req.Schema is set the provider asks
	// for structured output and validates it before returning.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System sets the model's role, e.g. "you are a school counsellor".
	System string

	// Messages is the conversation. Narratives are single-turn, so this is
	// normally one user message carrying the prompt.
	Messages []Message

	// Schema, when set, requests JSON conforming to it. When nil the
	// response is free text.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a JSON Schema for structured output.
type Schema struct {
	// Name identifies the schema (tool name for Anthropic, schema name for
	// OpenAI). Kebab-case, e.g. "concern-summary".
	Name string

	Description string

	// Definition is the JSON Schema as a map.
	Definition map[string]any
}

// Response is the model's output.
type Response struct {
	// Content is validated JSON when the request carried a Schema and the
	// raw generated text otherwise.
	Content json.RawMessage

	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to "end", "max_tokens" or "blocked".
	StopReason string
}

// Text returns Content as plain text.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Content)
}

// Usage is token consumption for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
