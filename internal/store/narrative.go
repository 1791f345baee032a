package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

var narrativeColumns = []string{
	"survey_id", "student_id", "kind", "text", "payload", "model", "annotation", "generated_at",
}

type narrativeRepo struct {
	db *sql.DB
}

func (r *narrativeRepo) Get(ctx context.Context, key NarrativeKey) (*Narrative, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(narrativeColumns...).
		From(b.Table(NarrativesTable.Name)).
		Where(keyPredicate(key)).
		Query()

	n, err := scanNarrative(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query narrative: %w", err)
	}
	return n, nil
}

func (r *narrativeRepo) Put(ctx context.Context, n *Narrative) error {
	if n.GeneratedAt.IsZero() {
		n.GeneratedAt = time.Now().UTC()
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(NarrativesTable.Name).
		Columns(narrativeColumns...).
		Values(n.SurveyID, n.StudentID, n.Kind, n.Text, n.Payload, n.Model, n.Annotation, n.GeneratedAt).
		OnConflict(
			entsql.ConflictColumns("survey_id", "student_id", "kind"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("text")
				u.SetExcluded("payload")
				u.SetExcluded("model")
				u.SetExcluded("generated_at")
				if n.Annotation != "" {
					u.SetExcluded("annotation")
				}
			}),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save narrative: %w", err)
	}
	return nil
}

func (r *narrativeRepo) Annotate(ctx context.Context, key NarrativeKey, note string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Update(NarrativesTable.Name).
		Set("annotation", note).
		Where(keyPredicate(key)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("annotate narrative: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("narrative %s/%s/%s: %w", key.SurveyID, key.Kind, key.StudentID, ErrNotFound)
	}
	return nil
}

func (r *narrativeRepo) ListBySurvey(ctx context.Context, surveyID string) ([]Narrative, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(narrativeColumns...).
		From(b.Table(NarrativesTable.Name)).
		Where(entsql.EQ("survey_id", surveyID)).
		OrderBy("kind", "student_id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query narratives: %w", err)
	}
	defer rows.Close()

	var out []Narrative
	for rows.Next() {
		n, err := scanNarrative(rows)
		if err != nil {
			return nil, fmt.Errorf("scan narrative: %w", err)
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

func keyPredicate(key NarrativeKey) *entsql.Predicate {
	return entsql.And(
		entsql.EQ("survey_id", key.SurveyID),
		entsql.EQ("student_id", key.StudentID),
		entsql.EQ("kind", key.Kind),
	)
}

func scanNarrative(row rowScanner) (*Narrative, error) {
	var n Narrative
	if err := row.Scan(&n.SurveyID, &n.StudentID, &n.Kind, &n.Text, &n.Payload,
		&n.Model, &n.Annotation, &n.GeneratedAt); err != nil {
		return nil, err
	}
	return &n, nil
}
