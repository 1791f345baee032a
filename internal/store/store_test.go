package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/sociogram/internal/survey"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range Tables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table.Name,
		).Scan(&name)
		if err != nil {
			t.Fatalf("table %s: %v", table.Name, err)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.ClassRepo().Create(ctx, &survey.Class{Name: "3-2"}); err != nil {
		t.Fatalf("create class: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	classes, err := s.ClassRepo().List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(classes) != 1 || classes[0].Name != "3-2" {
		t.Fatalf("classes after reopen = %+v", classes)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func seedClass(t *testing.T, s *Store, names ...string) (*survey.Class, []survey.Student) {
	t.Helper()
	ctx := context.Background()

	c := &survey.Class{Name: "4-1", Teacher: "Ms. Park"}
	if err := s.ClassRepo().Create(ctx, c); err != nil {
		t.Fatalf("create class: %v", err)
	}
	students := make([]survey.Student, len(names))
	for i, n := range names {
		students[i] = survey.Student{Name: n}
	}
	if err := s.ClassRepo().AddStudents(ctx, c.ID, students); err != nil {
		t.Fatalf("add students: %v", err)
	}
	return c, students
}

func TestClassRepo(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.ClassRepo()

	c, added := seedClass(t, s, "Ana", "Bob")

	got, err := repo.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Name != "4-1" || got.Teacher != "Ms. Park" {
		t.Fatalf("get = %+v", got)
	}

	missing, err := repo.Get(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("get missing = %+v, %v; want nil, nil", missing, err)
	}

	// Later enrolments go after existing ones.
	more := []survey.Student{{Name: "Cy"}}
	if err := repo.AddStudents(ctx, c.ID, more); err != nil {
		t.Fatalf("add more: %v", err)
	}

	roster, err := repo.Students(ctx, c.ID)
	if err != nil {
		t.Fatalf("students: %v", err)
	}
	want := []string{"Ana", "Bob", "Cy"}
	if len(roster) != len(want) {
		t.Fatalf("roster len = %d, want %d", len(roster), len(want))
	}
	for i, st := range roster {
		if st.Name != want[i] || st.ClassID != c.ID {
			t.Errorf("roster[%d] = %+v, want name %s", i, st, want[i])
		}
	}
	if roster[0].ID != added[0].ID {
		t.Errorf("assigned ID not written back: %q vs %q", roster[0].ID, added[0].ID)
	}
}

func TestClassDeleteCascades(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c, _ := seedClass(t, s, "Ana")
	if err := s.SurveyRepo().Create(ctx, &survey.Survey{ClassID: c.ID, Name: "spring"}); err != nil {
		t.Fatalf("create survey: %v", err)
	}

	if _, err := s.DB().Exec("DELETE FROM classes WHERE id = ?", c.ID); err != nil {
		t.Fatalf("delete class: %v", err)
	}

	var n int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM students").Scan(&n); err != nil || n != 0 {
		t.Fatalf("students after cascade = %d (%v)", n, err)
	}
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM surveys").Scan(&n); err != nil || n != 0 {
		t.Fatalf("surveys after cascade = %d (%v)", n, err)
	}
}

func TestSurveyRepo(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.SurveyRepo()

	c, _ := seedClass(t, s, "Ana")
	sv := &survey.Survey{ClassID: c.ID, Name: "spring", Description: "first term"}
	if err := repo.Create(ctx, sv); err != nil {
		t.Fatalf("create: %v", err)
	}
	if sv.State != survey.StatePending {
		t.Fatalf("default state = %q", sv.State)
	}

	if err := repo.SetState(ctx, sv.ID, survey.StateOpen); err != nil {
		t.Fatalf("set state: %v", err)
	}
	got, err := repo.Get(ctx, sv.ID)
	if err != nil || got == nil {
		t.Fatalf("get: %+v, %v", got, err)
	}
	if got.State != survey.StateOpen || got.Description != "first term" {
		t.Fatalf("get = %+v", got)
	}

	err = repo.SetState(ctx, "missing", survey.StateClosed)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("set state on missing survey: %v, want ErrNotFound", err)
	}

	list, err := repo.ListByClass(ctx, c.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("list = %+v, %v", list, err)
	}
}

func TestResponseRepoKeepsSubmissionOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.ResponseRepo()

	c, st := seedClass(t, s, "Ana", "Bob")
	sv := &survey.Survey{ClassID: c.ID, Name: "spring"}
	if err := s.SurveyRepo().Create(ctx, sv); err != nil {
		t.Fatalf("create survey: %v", err)
	}

	// Same timestamp on purpose: order must come from the sequence.
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	first := &survey.Response{
		SurveyID:    sv.ID,
		SubmitterID: st[1].ID,
		Ratings:     survey.EncodeRatings(map[string]int{st[0].ID: 80}, []string{st[0].ID}),
		FreeText:    survey.FreeText{PraiseFriend: "Ana", Concern: "tests"},
		SubmittedAt: at,
	}
	second := &survey.Response{SurveyID: sv.ID, SubmitterID: st[0].ID, SubmittedAt: at}
	for _, r := range []*survey.Response{first, second} {
		if err := repo.Submit(ctx, r); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	got, err := repo.ListBySurvey(ctx, sv.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != first.ID || got[1].ID != second.ID {
		t.Fatalf("order = %s, %s", got[0].ID, got[1].ID)
	}
	if string(got[0].Ratings) != string(first.Ratings) {
		t.Errorf("ratings = %s, want %s", got[0].Ratings, first.Ratings)
	}
	if got[0].FreeText != first.FreeText {
		t.Errorf("free text = %+v", got[0].FreeText)
	}
	if len(got[1].Ratings) != 0 {
		t.Errorf("expected empty ratings, got %q", got[1].Ratings)
	}
}

func TestNarrativeRepo(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.NarrativeRepo()

	key := NarrativeKey{SurveyID: "sv", StudentID: "st", Kind: "student"}

	n, err := repo.Get(ctx, key)
	if err != nil || n != nil {
		t.Fatalf("get empty = %+v, %v", n, err)
	}

	if err := repo.Annotate(ctx, key, "note"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("annotate missing: %v, want ErrNotFound", err)
	}

	if err := repo.Put(ctx, &Narrative{NarrativeKey: key, Text: "v1", Model: "m1"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := repo.Annotate(ctx, key, "talk to parents"); err != nil {
		t.Fatalf("annotate: %v", err)
	}

	// Regenerating replaces the text but keeps the teacher's note.
	if err := repo.Put(ctx, &Narrative{NarrativeKey: key, Text: "v2", Model: "m2"}); err != nil {
		t.Fatalf("put again: %v", err)
	}
	n, err = repo.Get(ctx, key)
	if err != nil || n == nil {
		t.Fatalf("get: %+v, %v", n, err)
	}
	if n.Text != "v2" || n.Model != "m2" || n.Annotation != "talk to parents" {
		t.Fatalf("narrative = %+v", n)
	}

	classKey := NarrativeKey{SurveyID: "sv", Kind: "class"}
	if err := repo.Put(ctx, &Narrative{NarrativeKey: classKey, Text: "class", Payload: []byte(`{"a":1}`)}); err != nil {
		t.Fatalf("put class: %v", err)
	}
	list, err := repo.ListBySurvey(ctx, "sv")
	if err != nil || len(list) != 2 {
		t.Fatalf("list = %+v, %v", list, err)
	}
	if list[0].Kind != "class" || string(list[0].Payload) != `{"a":1}` {
		t.Errorf("list[0] = %+v", list[0])
	}
}

func TestEventRepo(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.EventRepo()

	events := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.0-flash-lite", Purpose: "narrative-student", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true, RequestBody: "req", ResponseBody: "resp"},
		{Provider: "gemini", Model: "gemini-2.0-flash-lite", Purpose: "narrative-student", InputTokens: 120, OutputTokens: 0, LatencyMs: 400, ErrorMessage: "blocked"},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "narrative-class", InputTokens: 300, OutputTokens: 90, LatencyMs: 600, Success: true},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 || all[0].Purpose != "narrative-class" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1, Purpose: "narrative-student"})
	if err != nil || len(limited) != 1 || limited[0].ErrorMessage != "blocked" {
		t.Fatalf("filtered query = %+v, %v", limited, err)
	}

	first, err := repo.GetLLMEvent(ctx, all[2].ID)
	if err != nil || first == nil {
		t.Fatalf("get: %+v, %v", first, err)
	}
	if first.RequestBody != "req" || first.ResponseBody != "resp" || !first.Success {
		t.Fatalf("event = %+v", first)
	}
	if missing, err := repo.GetLLMEvent(ctx, 9999); err != nil || missing != nil {
		t.Fatalf("get missing = %+v, %v", missing, err)
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("usage rows = %d, want 2", len(byPurpose))
	}
	u := byPurpose[0]
	if u.Key != "narrative-student" || u.Calls != 2 || u.Failures != 1 || u.InputTokens != 220 || u.AvgLatencyMs != 300 {
		t.Fatalf("usage = %+v", u)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil || len(byModel) != 2 {
		t.Fatalf("usage by model = %+v, %v", byModel, err)
	}
}
