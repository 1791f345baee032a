package analysis

import "github.com/abhisek/sociogram/internal/survey"

func testRoster(names ...string) *survey.Roster {
	students := make([]survey.Student, len(names))
	for i, n := range names {
		students[i] = survey.Student{ID: idOf(n), ClassID: "class-1", Name: n}
	}
	return survey.NewRoster(students)
}

func idOf(name string) string { return "id-" + name }

func resp(id, submitter, payload string) survey.Response {
	return survey.Response{
		ID:          id,
		SurveyID:    "survey-1",
		SubmitterID: idOf(submitter),
		Ratings:     []byte(payload),
	}
}
