package survey

import (
	"fmt"
	"strings"
	"time"
)

// Class is a group of students owned by one teacher.
type Class struct {
	ID        string
	Name      string
	Teacher   string
	CreatedAt time.Time
}

// Student is a roster member of exactly one class.
type Student struct {
	ID      string
	ClassID string
	Name    string
}

// State is the advisory lifecycle state of a survey instance.
// The analysis engine does not look at it.
type State string

const (
	StatePending State = "pending"
	StateOpen    State = "open"
	StateClosed  State = "closed"
)

// ParseState converts text to a State.
func ParseState(s string) (State, error) {
	switch st := State(strings.ToLower(strings.TrimSpace(s))); st {
	case StatePending, StateOpen, StateClosed:
		return st, nil
	}
	return "", fmt.Errorf("unknown survey state %q", s)
}

// Survey is one relationship survey issued to a class.
type Survey struct {
	ID          string
	ClassID     string
	Name        string
	Description string
	State       State
	CreatedAt   time.Time
}

// FreeText holds the open questions of a response. None of these are
// used for numeric aggregation.
type FreeText struct {
	PraiseFriend    string // a classmate the student wants to praise
	DifficultFriend string // a classmate the student finds hard to get along with
	Concern         string // the student's own worry
	TeacherMessage  string // anything else for the teacher
}

// Empty reports whether every field is blank.
func (f FreeText) Empty() bool {
	return strings.TrimSpace(f.PraiseFriend) == "" &&
		strings.TrimSpace(f.DifficultFriend) == "" &&
		strings.TrimSpace(f.Concern) == "" &&
		strings.TrimSpace(f.TeacherMessage) == ""
}

// Response is a stored survey submission as it comes out of persistence.
// Ratings is the opaque serialized payload; see EncodeRatings.
type Response struct {
	ID          string
	SurveyID    string
	SubmitterID string
	Ratings     []byte
	FreeText    FreeText
	SubmittedAt time.Time
}
