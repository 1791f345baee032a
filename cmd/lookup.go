package cmd

import (
	"context"
	"fmt"

	"github.com/abhisek/sociogram/internal/store"
	"github.com/abhisek/sociogram/internal/survey"
)

// findClass accepts a class ID or an exact class name.
func findClass(ctx context.Context, repo store.ClassRepo, idOrName string) (*survey.Class, error) {
	c, err := repo.Get(ctx, idOrName)
	if err != nil {
		return nil, fmt.Errorf("get class: %w", err)
	}
	if c != nil {
		return c, nil
	}

	classes, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	var match *survey.Class
	for i := range classes {
		if classes[i].Name != idOrName {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("class name %q is ambiguous; use the class ID", idOrName)
		}
		match = &classes[i]
	}
	if match == nil {
		return nil, fmt.Errorf("class %q not found", idOrName)
	}
	return match, nil
}

// surveyContext is a survey with its class roster.
type surveyContext struct {
	Survey *survey.Survey
	Class  *survey.Class
	Roster *survey.Roster
}

func loadSurvey(ctx context.Context, s *store.Store, surveyID string) (*surveyContext, error) {
	sv, err := s.SurveyRepo().Get(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("get survey: %w", err)
	}
	if sv == nil {
		return nil, fmt.Errorf("survey %q not found", surveyID)
	}

	class, err := s.ClassRepo().Get(ctx, sv.ClassID)
	if err != nil {
		return nil, fmt.Errorf("get class: %w", err)
	}
	if class == nil {
		return nil, fmt.Errorf("class %q of survey %q not found", sv.ClassID, surveyID)
	}

	students, err := s.ClassRepo().Students(ctx, sv.ClassID)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	return &surveyContext{Survey: sv, Class: class, Roster: survey.NewRoster(students)}, nil
}

// student resolves a name or ID against the roster.
func (sc *surveyContext) student(idOrName string) (survey.Student, error) {
	st, ok := sc.Roster.Lookup(idOrName)
	if !ok {
		return survey.Student{}, fmt.Errorf("student %q is not on the roster of %s", idOrName, sc.Class.Name)
	}
	return st, nil
}
