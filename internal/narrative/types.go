package narrative

import (
	"fmt"
	"time"
)

// Kind selects what a narrative describes.
type Kind string

const (
	KindStudent  Kind = "student"
	KindClass    Kind = "class"
	KindConcerns Kind = "concerns"
)

// ParseKind converts text to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindStudent, KindClass, KindConcerns:
		return k, nil
	}
	return "", fmt.Errorf("unknown narrative kind %q", s)
}

// Narrative is generated (or cached) text about a student or a class.
type Narrative struct {
	SurveyID  string
	Kind      Kind
	StudentID string // empty for class-wide kinds

	Text string

	// Themes and Watch are filled for KindConcerns only.
	Themes []string
	Watch  []WatchEntry

	Model       string
	GeneratedAt time.Time
	Annotation  string
	Cached      bool
}

// WatchEntry is a student the model suggests keeping an eye on.
type WatchEntry struct {
	Student string `json:"student"`
	Reason  string `json:"reason"`
}
