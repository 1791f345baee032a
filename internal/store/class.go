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

type classRepo struct {
	db *sql.DB
}

func (r *classRepo) Create(ctx context.Context, c *survey.Class) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(ClassesTable.Name).
		Columns("id", "name", "teacher", "created_at").
		Values(c.ID, c.Name, c.Teacher, c.CreatedAt).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save class: %w", err)
	}
	return nil
}

func (r *classRepo) Get(ctx context.Context, id string) (*survey.Class, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select("id", "name", "teacher", "created_at").
		From(b.Table(ClassesTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()

	var c survey.Class
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.Name, &c.Teacher, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query class: %w", err)
	}
	return &c, nil
}

func (r *classRepo) List(ctx context.Context) ([]survey.Class, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select("id", "name", "teacher", "created_at").
		From(b.Table(ClassesTable.Name)).
		OrderBy("created_at", "name").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query classes: %w", err)
	}
	defer rows.Close()

	var out []survey.Class
	for rows.Next() {
		var c survey.Class
		if err := rows.Scan(&c.ID, &c.Name, &c.Teacher, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan class: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *classRepo) AddStudents(ctx context.Context, classID string, students []survey.Student) error {
	if len(students) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select("COALESCE(MAX(position), -1)").
		From(b.Table(StudentsTable.Name)).
		Where(entsql.EQ("class_id", classID)).
		Query()
	var last int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&last); err != nil {
		return fmt.Errorf("query roster position: %w", err)
	}

	ins := b.Insert(StudentsTable.Name).Columns("id", "name", "position", "class_id")
	for i := range students {
		if students[i].ID == "" {
			students[i].ID = uuid.NewString()
		}
		students[i].ClassID = classID
		ins.Values(students[i].ID, students[i].Name, last+1+i, classID)
	}
	query, args = ins.Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save students: %w", err)
	}

	return tx.Commit()
}

func (r *classRepo) Students(ctx context.Context, classID string) ([]survey.Student, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select("id", "class_id", "name").
		From(b.Table(StudentsTable.Name)).
		Where(entsql.EQ("class_id", classID)).
		OrderBy("position").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	var out []survey.Student
	for rows.Next() {
		var s survey.Student
		if err := rows.Scan(&s.ID, &s.ClassID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
