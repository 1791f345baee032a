package narrative

import (
	"strings"
	"testing"

	"github.com/abhisek/sociogram/internal/analysis"
	"github.com/abhisek/sociogram/internal/survey"
)

func assertContains(t *testing.T, prompt string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(prompt, w) {
			t.Errorf("prompt missing %q\n--- prompt ---\n%s", w, prompt)
		}
	}
}

func assertNoIDs(t *testing.T, prompt string) {
	t.Helper()
	for _, id := range []string{"id-ana", "id-bob", "id-cy", "id-dan"} {
		if strings.Contains(prompt, id) {
			t.Errorf("prompt leaks raw id %q", id)
		}
	}
}

func TestBuildStudentPrompt(t *testing.T) {
	res := testResult(t)
	prompt := BuildStudentPrompt(res, "id-ana", PromptOptions{ClassName: "4-1", Language: "Korean"})

	assertContains(t, prompt,
		"Class: 4-1",
		"Answer in Korean.",
		"Student: Ana",
		"Scores given: average 85.0 over 2 classmates",
		"  - Bob: 80",
		"  - Cy: 90",
		"Scores received: average 52.5 from 2 classmates\n  - from Bob: 85\n  - from Cy: 20\n",
		"- Bob: gives 80, receives 85 (mutual high)",
		"- Cy: gives 90, receives 20 (one-sided: this student feels close, the feeling is not returned)",
		"- as someone to praise: Bob",
		"- as hard to get along with: None",
		"- worry: the math test",
		"- message to the teacher: None",
	)
	assertNoIDs(t, prompt)
}

func TestBuildStudentPrompt_OtherSideOfOneSidedPair(t *testing.T) {
	res := testResult(t)
	prompt := BuildStudentPrompt(res, "id-cy", PromptOptions{})

	assertContains(t, prompt,
		"- Ana: gives 20, receives 90 (one-sided: the classmate feels close, this student does not)",
		"- as someone to praise: Bob",
		"- as hard to get along with: Bob",
	)
}

func TestBuildStudentPrompt_NoData(t *testing.T) {
	res := testResult(t)
	prompt := BuildStudentPrompt(res, "id-dan", PromptOptions{})

	assertContains(t, prompt,
		"Student: Dan",
		"Survey response: not submitted",
		"Scores given: insufficient data",
		"Scores received: insufficient data",
		"Reciprocal relationships:\nNone",
	)
	if strings.Contains(prompt, "average 0.0") {
		t.Error("missing data must not render as zero")
	}
	if strings.Contains(prompt, "worry:") {
		t.Error("non-respondent prompt must not show own answers")
	}
}

func TestBuildStudentPrompt_UnknownStudentUsesPlaceholder(t *testing.T) {
	res := testResult(t)
	prompt := BuildStudentPrompt(res, "zzzzzzzz-1234-5678", PromptOptions{})
	assertContains(t, prompt, "Student: unknown-zzzzzzzz")
}

func TestBuildClassPrompt(t *testing.T) {
	res := testResult(t)
	prompt := BuildClassPrompt(res, PromptOptions{SurveyName: "spring"})

	assertContains(t, prompt,
		"Survey: spring",
		"Respondents: 3 of 4 students",
		"Highest received averages:\n1. Bob: 80.0 (1 ratings)\n2. Cy: 60.0 (2 ratings)\n3. Ana: 52.5 (2 ratings)",
		"Lowest received averages:\n1. Ana: 52.5 (2 ratings)",
		"Warmest raters (highest given averages):\n1. Ana: 85.0 (2 ratings given)\n2. Bob: 57.5 (2 ratings given)\n3. Cy: 20.0 (1 ratings given)",
		"Most reserved raters (lowest given averages):\n1. Cy: 20.0 (1 ratings given)",
		"- mutual high: 1",
		"- A rates B high, one-directional: 1",
		"- mutual low: 0",
		"- ratings: 5",
		"- mean: 61.0",
		"- median: 80.0",
		"- 80-100: 3",
		"Did not respond: Dan",
	)
	assertNoIDs(t, prompt)
}

func TestBuildClassPrompt_NoResponses(t *testing.T) {
	roster := survey.NewRoster([]survey.Student{{ID: "id-ana", Name: "Ana"}})
	res, err := analysis.Analyze(nil, roster, analysis.DefaultOptions())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	prompt := BuildClassPrompt(res, PromptOptions{})
	assertContains(t, prompt,
		"Respondents: 0 of 1 students",
		"Highest received averages:\ninsufficient data",
		"Score distribution:\ninsufficient data",
	)
}

func TestBuildClassPrompt_SingleRatingHasNoStdDev(t *testing.T) {
	roster := survey.NewRoster([]survey.Student{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}})
	responses := []survey.Response{
		{ID: "r", SubmitterID: "a", Ratings: survey.EncodeRatings(map[string]int{"b": 40}, []string{"b"})},
	}
	res, err := analysis.Analyze(responses, roster, analysis.DefaultOptions())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	prompt := BuildClassPrompt(res, PromptOptions{})
	assertContains(t, prompt, "- mean: 40.0", "- standard deviation: insufficient data")
}

func TestBuildConcernsPrompt(t *testing.T) {
	res := testResult(t)
	prompt := BuildConcernsPrompt(res, PromptOptions{})

	assertContains(t, prompt,
		"Ana\n- wants to praise: Bob",
		"- worry: the math test",
		"Cy\n- wants to praise: None\n- finds hard to get along with: Someone Else",
		"- message to the teacher: I want to change seats",
		"unknown-ghost-su\n",
		"- worry: lonely at lunch",
		"Most often named as someone to praise:\n- Ana (1)\n- Bob (1)\n- Cy (1)",
		"Most often named as hard to get along with:\n- Cy (1)",
	)
	assertNoIDs(t, prompt)
}

func TestPlaceholderName(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"0123456789abcdef", "unknown-01234567"},
		{"short", "unknown-short"},
		{"학생아이디열자리입니다", "unknown-학생아이디열자리"},
	}
	for _, tt := range tests {
		if got := placeholderName(tt.id); got != tt.want {
			t.Errorf("placeholderName(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
