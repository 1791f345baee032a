package llm

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

// concernSchema mirrors the class concern summary the narrative package asks
// for.
func concernSchema() *Schema {
	return &Schema{
		Name:        "concern-summary",
		Description: "Summary of the worries students wrote in a survey",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"summary": map[string]any{"type": "string"},
				"themes": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"watch": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"student": map[string]any{"type": "string"},
							"reason":  map[string]any{"type": "string"},
						},
						"required":             []any{"student", "reason"},
						"additionalProperties": false,
					},
				},
			},
			"required":             []any{"summary", "themes", "watch"},
			"additionalProperties": false,
		},
	}
}

const concernAnswer = `{"summary":"Two students wrote about being left out at lunch.","themes":["exclusion"],"watch":[{"student":"Mina","reason":"Named by three classmates as left out."}]}`

func studentRequest() Request {
	return Request{
		System:    "You are a school counsellor writing for a homeroom teacher.",
		Messages:  []Message{{Role: RoleUser, Content: "Student: Mina\nGiven average: 72.5\nReceived average: 48.0"}},
		MaxTokens: 512,
	}
}

func concernRequest() Request {
	return Request{
		System:    "Summarize what students wrote.",
		Messages:  []Message{{Role: RoleUser, Content: "Worries:\n- Mina: nobody sits with me"}},
		Schema:    concernSchema(),
		MaxTokens: 512,
	}
}

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2,
	}
}

// replyJSON answers every request with status and body.
func replyJSON(t *testing.T, status int, body any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("encode reply: %v", err)
		}
	}
}
