package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/sociogram/internal/analysis"
	"github.com/abhisek/sociogram/internal/llm"
	"github.com/abhisek/sociogram/internal/store"
)

// ErrNoProvider is returned when generation is needed but no model is
// configured.
var ErrNoProvider = errors.New("no LLM provider configured")

// failureMarkers start text that is an error report, not a narrative.
var failureMarkers = []string{"error:", "오류:"}

// UnusableError means the model returned text that reports a failure
// instead of a narrative. An empty answer is not unusable.
type UnusableError struct {
	Text string
}

func (e *UnusableError) Error() string {
	line, _, _ := strings.Cut(strings.TrimSpace(e.Text), "\n")
	return fmt.Sprintf("narrative service returned an unusable result: %q", line)
}

// IsUnusable reports whether text begins with a failure marker.
func IsUnusable(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, m := range failureMarkers {
		if strings.HasPrefix(t, m) {
			return true
		}
	}
	return false
}

// Request selects the narrative to produce.
type Request struct {
	SurveyID  string
	Kind      Kind
	StudentID string // required for KindStudent, ignored otherwise

	// Refresh skips the cache lookup. The new result still replaces the
	// cached one.
	Refresh bool

	Prompt PromptOptions
}

func (r Request) key() store.NarrativeKey {
	k := store.NarrativeKey{SurveyID: r.SurveyID, Kind: string(r.Kind)}
	if r.Kind == KindStudent {
		k.StudentID = r.StudentID
	}
	return k
}

// Service produces narratives, consulting a cache first.
type Service struct {
	provider llm.Provider
	cache    store.NarrativeRepo
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a narrative service. provider may be nil when only
// cached narratives are wanted; cache may be nil to disable caching.
func NewService(provider llm.Provider, cache store.NarrativeRepo, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		provider: provider,
		cache:    cache,
		cfg:      cfg,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Generate returns the narrative for req, from cache when possible.
// Provider failures are wrapped, so callers can still errors.As them
// (for example *llm.ErrContentBlocked).
func (s *Service) Generate(ctx context.Context, req Request, res *analysis.Result) (*Narrative, error) {
	if req.Kind == KindStudent && req.StudentID == "" {
		return nil, fmt.Errorf("student narrative needs a student ID")
	}
	if req.Kind != KindStudent {
		req.StudentID = ""
	}
	key := req.key()

	if s.cache != nil && !req.Refresh {
		cached, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("narrative cache lookup failed", "kind", req.Kind, "error", err)
		} else if cached != nil {
			n, err := fromStored(cached)
			if err == nil {
				return n, nil
			}
			s.logger.Warn("discarding unreadable cached narrative", "kind", req.Kind, "error", err)
		}
	}

	if s.provider == nil {
		return nil, ErrNoProvider
	}

	llmReq, err := s.buildRequest(req, res)
	if err != nil {
		return nil, err
	}

	ctx = llm.WithPurpose(ctx, "narrative-"+string(req.Kind))
	resp, err := s.provider.Generate(ctx, llmReq)
	if err != nil {
		return nil, fmt.Errorf("%s narrative: %w", req.Kind, err)
	}

	n := &Narrative{
		SurveyID:    req.SurveyID,
		Kind:        req.Kind,
		StudentID:   req.StudentID,
		Model:       resp.Model,
		GeneratedAt: s.now(),
	}
	var payload []byte

	if req.Kind == KindConcerns {
		var out concernsOutput
		if err := json.Unmarshal(resp.Content, &out); err != nil {
			return nil, fmt.Errorf("parse concern summary: %w", err)
		}
		if IsUnusable(out.Summary) {
			return nil, &UnusableError{Text: out.Summary}
		}
		n.Text, n.Themes, n.Watch = out.Summary, out.Themes, out.Watch
		payload = resp.Content
	} else {
		text := strings.TrimSpace(resp.Text())
		if IsUnusable(text) {
			return nil, &UnusableError{Text: text}
		}
		n.Text = text
	}

	if s.cache != nil {
		err := s.cache.Put(ctx, &store.Narrative{
			NarrativeKey: key,
			Text:         n.Text,
			Payload:      payload,
			Model:        n.Model,
			GeneratedAt:  n.GeneratedAt,
		})
		if err != nil {
			s.logger.Warn("failed to cache narrative", "kind", req.Kind, "error", err)
		} else if stored, err := s.cache.Get(ctx, key); err == nil && stored != nil {
			n.Annotation = stored.Annotation
		}
	}

	return n, nil
}

// Annotate attaches a teacher note to a cached narrative.
func (s *Service) Annotate(ctx context.Context, surveyID string, kind Kind, studentID, note string) error {
	if s.cache == nil {
		return fmt.Errorf("annotations need a narrative cache")
	}
	key := Request{SurveyID: surveyID, Kind: kind, StudentID: studentID}.key()
	return s.cache.Annotate(ctx, key, note)
}

// Cached lists every cached narrative of a survey.
func (s *Service) Cached(ctx context.Context, surveyID string) ([]Narrative, error) {
	if s.cache == nil {
		return nil, nil
	}
	stored, err := s.cache.ListBySurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	out := make([]Narrative, 0, len(stored))
	for i := range stored {
		n, err := fromStored(&stored[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, nil
}

func (s *Service) buildRequest(req Request, res *analysis.Result) (llm.Request, error) {
	opts := req.Prompt
	if opts.Language == "" {
		opts.Language = s.cfg.Language
	}

	var system, prompt string
	var schema *llm.Schema

	switch req.Kind {
	case KindStudent:
		system, prompt = studentSystemPrompt, BuildStudentPrompt(res, req.StudentID, opts)
	case KindClass:
		system, prompt = classSystemPrompt, BuildClassPrompt(res, opts)
	case KindConcerns:
		system, prompt = concernsSystemPrompt, BuildConcernsPrompt(res, opts)
		schema = ConcernsSchema
	default:
		return llm.Request{}, fmt.Errorf("unknown narrative kind %q", req.Kind)
	}

	return llm.Request{
		System: system,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: prompt},
		},
		Schema:      schema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}, nil
}

func fromStored(sn *store.Narrative) (*Narrative, error) {
	n := &Narrative{
		SurveyID:    sn.SurveyID,
		Kind:        Kind(sn.Kind),
		StudentID:   sn.StudentID,
		Text:        sn.Text,
		Model:       sn.Model,
		GeneratedAt: sn.GeneratedAt,
		Annotation:  sn.Annotation,
		Cached:      true,
	}
	if len(sn.Payload) > 0 {
		var out concernsOutput
		if err := json.Unmarshal(sn.Payload, &out); err != nil {
			return nil, fmt.Errorf("decode cached payload: %w", err)
		}
		n.Themes, n.Watch = out.Themes, out.Watch
	}
	return n, nil
}
