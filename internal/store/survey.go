package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/sociogram/internal/survey"
)

var surveyColumns = []string{"id", "class_id", "name", "description", "state", "created_at"}

type surveyRepo struct {
	db *sql.DB
}

func (r *surveyRepo) Create(ctx context.Context, s *survey.Survey) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.State == "" {
		s.State = survey.StatePending
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(SurveysTable.Name).
		Columns(surveyColumns...).
		Values(s.ID, s.ClassID, s.Name, s.Description, string(s.State), s.CreatedAt).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save survey: %w", err)
	}
	return nil
}

func (r *surveyRepo) Get(ctx context.Context, id string) (*survey.Survey, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(surveyColumns...).
		From(b.Table(SurveysTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()

	s, err := scanSurvey(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query survey: %w", err)
	}
	return s, nil
}

func (r *surveyRepo) ListByClass(ctx context.Context, classID string) ([]survey.Survey, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(surveyColumns...).
		From(b.Table(SurveysTable.Name)).
		Where(entsql.EQ("class_id", classID)).
		OrderBy("created_at").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query surveys: %w", err)
	}
	defer rows.Close()

	var out []survey.Survey
	for rows.Next() {
		s, err := scanSurvey(rows)
		if err != nil {
			return nil, fmt.Errorf("scan survey: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *surveyRepo) SetState(ctx context.Context, id string, state survey.State) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Update(SurveysTable.Name).
		Set("state", string(state)).
		Where(entsql.EQ("id", id)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update survey state: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("survey %s: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSurvey(row rowScanner) (*survey.Survey, error) {
	var s survey.Survey
	var state string
	if err := row.Scan(&s.ID, &s.ClassID, &s.Name, &s.Description, &state, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.State = survey.State(state)
	return &s, nil
}
