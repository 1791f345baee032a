// Package analysis turns raw survey responses into relationship statistics:
// who gave and received which scores, which pairs rated each other and how,
// and how scores are spread across the class.
//
// Everything here is a pure function of its inputs. Nothing blocks, nothing
// mutates the caller's data, and results may be shared read-only between
// goroutines.
package analysis

import (
	"fmt"

	"github.com/abhisek/sociogram/internal/survey"
)

// Options tunes an analysis run.
type Options struct {
	Thresholds Thresholds
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{Thresholds: DefaultThresholds()}
}

// Result is everything derived from one snapshot of responses.
type Result struct {
	Roster     *survey.Roster
	Thresholds Thresholds

	Records []Record
	Stats   NormalizeStats

	Given    []GivenSummary
	Received []ReceivedSummary
	Pairs    []Pair

	// Distribution is nil when no valid rating exists.
	Distribution *Distribution

	Praised Mentions
	Flagged Mentions
}

// Analyze runs the full pipeline. The only error is invalid options.
func Analyze(responses []survey.Response, roster *survey.Roster, opts Options) (*Result, error) {
	if err := opts.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}

	norm := Normalize(responses, roster)

	res := &Result{
		Roster:     roster,
		Thresholds: opts.Thresholds,
		Records:    norm.Records,
		Stats:      norm.Stats,
		Given:      GivenScores(norm.Records),
		Received:   ReceivedScores(norm.Records),
		Pairs:      Reciprocity(norm.Records, roster, opts.Thresholds),
		Praised:    PraiseMentions(norm.Records, roster),
		Flagged:    DifficultyMentions(norm.Records, roster),
	}
	if d, ok := Distribute(PooledScores(norm.Records)); ok {
		res.Distribution = &d
	}
	return res, nil
}

// GivenBy returns the given-score summary for id.
func (r *Result) GivenBy(id string) (GivenSummary, bool) {
	for _, g := range r.Given {
		if g.StudentID == id {
			return g, true
		}
	}
	return GivenSummary{}, false
}

// ReceivedBy returns the received-score summary for id.
func (r *Result) ReceivedBy(id string) (ReceivedSummary, bool) {
	for _, s := range r.Received {
		if s.StudentID == id {
			return s, true
		}
	}
	return ReceivedSummary{}, false
}

// RecordOf returns the normalized record submitted by id.
func (r *Result) RecordOf(id string) (Record, bool) {
	for _, rec := range r.Records {
		if rec.SubmitterID == id {
			return rec, true
		}
	}
	return Record{}, false
}

// PairsOf returns the reciprocal pairs id belongs to.
func (r *Result) PairsOf(id string) []Pair {
	var out []Pair
	for _, p := range r.Pairs {
		if p.Involves(id) {
			out = append(out, p)
		}
	}
	return out
}

// CategoryCounts tallies reciprocal pairs per category.
func (r *Result) CategoryCounts() map[Category]int {
	return CountCategories(r.Pairs)
}

// TopReceived returns up to n students with the highest received average.
func (r *Result) TopReceived(n int) []ReceivedSummary { return TopReceived(r.Received, n) }

// BottomReceived returns up to n students with the lowest received average.
func (r *Result) BottomReceived(n int) []ReceivedSummary { return BottomReceived(r.Received, n) }

// TopGiven returns up to n students with the highest given average: the
// warmest raters.
func (r *Result) TopGiven(n int) []GivenSummary { return TopGiven(r.Given, n) }

// BottomGiven returns up to n students with the lowest given average.
func (r *Result) BottomGiven(n int) []GivenSummary { return BottomGiven(r.Given, n) }

// ScoresFor returns every score id received, keyed by rater, in record
// order.
func (r *Result) ScoresFor(id string) []RaterScore {
	var out []RaterScore
	for _, rec := range r.Records {
		if s, ok := rec.Score(id); ok {
			out = append(out, RaterScore{RaterID: rec.SubmitterID, Score: s})
		}
	}
	return out
}

// RaterScore is one score a student received.
type RaterScore struct {
	RaterID string
	Score   int
}

// Respondents returns roster members who submitted a response, in roster
// order.
func (r *Result) Respondents() []survey.Student {
	submitted := make(map[string]bool, len(r.Records))
	for _, rec := range r.Records {
		submitted[rec.SubmitterID] = true
	}
	var out []survey.Student
	for _, s := range r.Roster.Students() {
		if submitted[s.ID] {
			out = append(out, s)
		}
	}
	return out
}

// NonRespondents returns roster members with no response, in roster order.
func (r *Result) NonRespondents() []survey.Student {
	submitted := make(map[string]bool, len(r.Records))
	for _, rec := range r.Records {
		submitted[rec.SubmitterID] = true
	}
	var out []survey.Student
	for _, s := range r.Roster.Students() {
		if !submitted[s.ID] {
			out = append(out, s)
		}
	}
	return out
}
