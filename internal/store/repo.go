package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/sociogram/internal/survey"
)

// ErrNotFound is returned by updates that target a row that does not exist.
// Single-row getters return (nil, nil) instead.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact match when set
}

// ClassRepo manages classes and their rosters.
type ClassRepo interface {
	Create(ctx context.Context, c *survey.Class) error
	Get(ctx context.Context, id string) (*survey.Class, error)
	List(ctx context.Context) ([]survey.Class, error)

	// AddStudents appends students to the class roster in the given order.
	// IDs are assigned when empty.
	AddStudents(ctx context.Context, classID string, students []survey.Student) error

	// Students returns the roster in enrolment order.
	Students(ctx context.Context, classID string) ([]survey.Student, error)
}

// SurveyRepo manages survey instances.
type SurveyRepo interface {
	Create(ctx context.Context, s *survey.Survey) error
	Get(ctx context.Context, id string) (*survey.Survey, error)
	ListByClass(ctx context.Context, classID string) ([]survey.Survey, error)
	SetState(ctx context.Context, id string, state survey.State) error
}

// ResponseRepo stores submissions.
type ResponseRepo interface {
	// Submit appends a response. Resubmissions are kept; analysis uses the
	// first one per submitter.
	Submit(ctx context.Context, r *survey.Response) error

	// ListBySurvey returns responses in submission order.
	ListBySurvey(ctx context.Context, surveyID string) ([]survey.Response, error)
}

// NarrativeKey identifies one cached narrative. StudentID is empty for
// class-wide kinds.
type NarrativeKey struct {
	SurveyID  string
	StudentID string
	Kind      string
}

// Narrative is a cached model output with an optional teacher note.
type Narrative struct {
	NarrativeKey
	Text        string
	Payload     []byte // structured output, if the kind has one
	Model       string
	Annotation  string
	GeneratedAt time.Time
}

// NarrativeRepo caches generated narratives.
type NarrativeRepo interface {
	Get(ctx context.Context, key NarrativeKey) (*Narrative, error)

	// Put inserts or replaces the entry. A replaced entry keeps its
	// annotation unless n carries a new one.
	Put(ctx context.Context, n *Narrative) error

	// Annotate sets the teacher note. ErrNotFound if nothing is cached.
	Annotate(ctx context.Context, key NarrativeKey, note string) error

	ListBySurvey(ctx context.Context, surveyID string) ([]Narrative, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLMRequestEventData.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates events by one dimension (purpose or model).
type LLMUsage struct {
	Key          string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs float64
}

// EventRepo records and queries LLM calls.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
