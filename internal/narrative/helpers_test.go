package narrative

import (
	"testing"

	"github.com/abhisek/sociogram/internal/analysis"
	"github.com/abhisek/sociogram/internal/survey"
)

// testResult builds a four-student class where Dan never responded and a
// submitter missing from the roster left a worry.
//
//	Ana -> Bob 80, Cy 90
//	Bob -> Ana 85, Cy 30
//	Cy  -> Ana 20
func testResult(t *testing.T) *analysis.Result {
	t.Helper()

	roster := survey.NewRoster([]survey.Student{
		{ID: "id-ana", Name: "Ana"},
		{ID: "id-bob", Name: "Bob"},
		{ID: "id-cy", Name: "Cy"},
		{ID: "id-dan", Name: "Dan"},
	})

	rate := func(scores map[string]int, order ...string) []byte {
		return survey.EncodeRatings(scores, order)
	}
	responses := []survey.Response{
		{
			ID: "r1", SubmitterID: "id-ana",
			Ratings:  rate(map[string]int{"id-bob": 80, "id-cy": 90}, "id-bob", "id-cy"),
			FreeText: survey.FreeText{PraiseFriend: "Bob", Concern: "the math test"},
		},
		{
			ID: "r2", SubmitterID: "id-bob",
			Ratings:  rate(map[string]int{"id-ana": 85, "id-cy": 30}, "id-ana", "id-cy"),
			FreeText: survey.FreeText{PraiseFriend: "ana; Cy", DifficultFriend: "Cy"},
		},
		{
			ID: "r3", SubmitterID: "id-cy",
			Ratings:  rate(map[string]int{"id-ana": 20}, "id-ana"),
			FreeText: survey.FreeText{DifficultFriend: "Someone Else", TeacherMessage: "I want to change seats"},
		},
		{
			ID: "r4", SubmitterID: "ghost-submitter-xyz",
			FreeText: survey.FreeText{Concern: "lonely at lunch"},
		},
	}

	res, err := analysis.Analyze(responses, roster, analysis.DefaultOptions())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	return res
}
