package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/sociogram/internal/survey"
)

var responseColumns = []string{
	"id", "survey_id", "submitter_id", "ratings",
	"praise_friend", "difficult_friend", "concern", "teacher_message",
	"submitted_at",
}

type responseRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *responseRepo) Submit(ctx context.Context, resp *survey.Response) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	if resp.ID == "" {
		resp.ID = uuid.NewString()
	}
	if resp.SubmittedAt.IsZero() {
		resp.SubmittedAt = time.Now().UTC()
	}

	ft := resp.FreeText
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(ResponsesTable.Name).
		Columns(append([]string{"sequence"}, responseColumns...)...).
		Values(seqNum, resp.ID, resp.SurveyID, resp.SubmitterID, resp.Ratings,
			ft.PraiseFriend, ft.DifficultFriend, ft.Concern, ft.TeacherMessage,
			resp.SubmittedAt).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save response: %w", err)
	}
	return nil
}

func (r *responseRepo) ListBySurvey(ctx context.Context, surveyID string) ([]survey.Response, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(responseColumns...).
		From(b.Table(ResponsesTable.Name)).
		Where(entsql.EQ("survey_id", surveyID)).
		OrderBy("sequence").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	var out []survey.Response
	for rows.Next() {
		var resp survey.Response
		ft := &resp.FreeText
		if err := rows.Scan(&resp.ID, &resp.SurveyID, &resp.SubmitterID, &resp.Ratings,
			&ft.PraiseFriend, &ft.DifficultFriend, &ft.Concern, &ft.TeacherMessage,
			&resp.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		out = append(out, resp)
	}
	return out, rows.Err()
}
