package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/sociogram/internal/analysis"
	"github.com/abhisek/sociogram/internal/narrative"
	"github.com/abhisek/sociogram/internal/survey"
)

func analyze(t *testing.T, responses []survey.Response) *analysis.Result {
	t.Helper()
	roster := survey.NewRoster([]survey.Student{
		{ID: "a", Name: "Ana"},
		{ID: "b", Name: "Bob"},
		{ID: "c", Name: "Cy"},
	})
	res, err := analysis.Analyze(responses, roster, analysis.DefaultOptions())
	require.NoError(t, err)
	return res
}

func sampleResult(t *testing.T) *analysis.Result {
	return analyze(t, []survey.Response{
		{
			ID: "r1", SubmitterID: "a",
			Ratings:  survey.EncodeRatings(map[string]int{"b": 90, "c": 10}, []string{"b", "c"}),
			FreeText: survey.FreeText{PraiseFriend: "Bob"},
		},
		{
			ID: "r2", SubmitterID: "b",
			Ratings: survey.EncodeRatings(map[string]int{"a": 80, "x": 50}, []string{"a", "x"}),
		},
		{ID: "r3", SubmitterID: "b"},
	})
}

func TestAnalysisMarkdown(t *testing.T) {
	out := Analysis(sampleResult(t), Options{Mode: Markdown, Title: "4-1 spring"})

	for _, want := range []string{
		"# 4-1 spring",
		"Respondents: 2 of 3 students",
		"## Scores by student",
		"| Ana | 50.0 | 2 | 80.0 | 1 |",
		"| Bob | 80.0 | 1 | 90.0 | 1 |",
		"| Cy | insufficient data | 0 | 10.0 | 1 |",
		"## Rater tendencies",
		"| warmest | Bob | 80.0 | 1 |",
		"| warmest | Ana | 50.0 | 2 |",
		"| most reserved | Ana | 50.0 | 2 |",
		"| Ana | Bob | 90 | 80 | mutual high |",
		"| mutual high | 1 |",
		"| 80-100 | 2 | ",
		"| Bob | Ana | - |",
		"## Did not respond",
		"Cy",
		"| ratings of unknown classmates | 1 |",
		"| duplicate responses | 1 |",
	} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, strings.ToLower(out), "| total | 1 |")
}

func TestAnalysisNoData(t *testing.T) {
	out := Analysis(analyze(t, nil), Options{Mode: Markdown})

	assert.Contains(t, out, "Respondents: 0 of 3 students")
	assert.Contains(t, out, "## Score distribution\n\n_insufficient data_")
	assert.Contains(t, out, "## Reciprocal pairs\n\n_insufficient data_")
	assert.NotContains(t, out, "## Named in free text")
	assert.NotContains(t, out, "## Ignored input")
	assert.NotContains(t, out, "## Rater tendencies")
	assert.NotContains(t, out, "| 0.0 |")
}

func TestAnalysisSingleRatingStdDev(t *testing.T) {
	res := analyze(t, []survey.Response{
		{ID: "r", SubmitterID: "a", Ratings: survey.EncodeRatings(map[string]int{"b": 40}, []string{"b"})},
	})
	out := Analysis(res, Options{Mode: Markdown})
	assert.Contains(t, out, "| 1 | 40.0 | 40.0 | insufficient data |")
}

func TestAnalysisASCII(t *testing.T) {
	out := Analysis(sampleResult(t), Options{Mode: ASCII, Title: "report"})

	assert.Contains(t, out, "report")
	assert.Contains(t, out, "Scores by student")
	assert.Contains(t, out, "┌")
	assert.Contains(t, out, "insufficient data")
}

func TestNarrative(t *testing.T) {
	n := &narrative.Narrative{
		Kind:        narrative.KindConcerns,
		Text:        "Lunch time is hard for some.",
		Themes:      []string{"lunch", "seating"},
		Watch:       []narrative.WatchEntry{{Student: "Cy", Reason: "Eats alone."}},
		Model:       "gemini-2.0-flash-lite",
		GeneratedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Annotation:  "Check in on Monday",
		Cached:      true,
	}

	out := Narrative(n, "Concerns", Markdown)
	assert.True(t, strings.HasPrefix(out, "## Concerns\n\n"))
	assert.Contains(t, out, "Lunch time is hard for some.")
	assert.Contains(t, out, "- lunch\n- seating")
	assert.Contains(t, out, "| Cy | Eats alone. |")
	assert.Contains(t, out, "> Teacher note: Check in on Monday")
	assert.Contains(t, out, "_cached, generated by gemini-2.0-flash-lite at ")
}

func TestNarrativeEmptyText(t *testing.T) {
	out := Narrative(&narrative.Narrative{Model: "mock"}, "Ana", Markdown)
	assert.Contains(t, out, "(the model returned no text)")
	assert.NotContains(t, out, "cached")
}

func TestBar(t *testing.T) {
	assert.Equal(t, "", bar(0, 10))
	assert.Equal(t, "#", bar(1, 100))
	assert.Equal(t, strings.Repeat("#", 10), bar(5, 10))
	assert.Equal(t, strings.Repeat("#", 20), bar(3, 3))
}

func TestTableLen(t *testing.T) {
	tbl := NewTable(ASCII)
	tbl.Header("a", "b")
	tbl.Row(1, 2)
	tbl.Row(3, 4)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, Markdown, ParseMode(true))
	assert.Equal(t, ASCII, ParseMode(false))
}
