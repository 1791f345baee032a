package narrative

import "github.com/abhisek/sociogram/internal/llm"

// ConcernsSchema defines the JSON schema for the class concern summary.
var ConcernsSchema = &llm.Schema{
	Name:        "concern-summary",
	Description: "Summary of the worries and messages students wrote in a relationship survey",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "3-6 sentence overview for the teacher",
			},
			"themes": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Recurring topics, 1-5 short keywords or phrases",
			},
			"watch": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"student": map[string]any{
							"type":        "string",
							"description": "Student name exactly as written in the input",
						},
						"reason": map[string]any{
							"type":        "string",
							"description": "One sentence on why",
						},
					},
					"required":             []any{"student", "reason"},
					"additionalProperties": false,
				},
				"description": "Students who may need the teacher's attention; empty if none",
			},
		},
		"required":             []any{"summary", "themes", "watch"},
		"additionalProperties": false,
	},
}

type concernsOutput struct {
	Summary string       `json:"summary"`
	Themes  []string     `json:"themes"`
	Watch   []WatchEntry `json:"watch"`
}
