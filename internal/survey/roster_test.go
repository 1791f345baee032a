package survey

import (
	"encoding/json"
	"testing"
)

func TestNewRoster_FirstDuplicateWins(t *testing.T) {
	r := NewRoster([]Student{
		{ID: "a", Name: "Alice"},
		{ID: "b", Name: "Bob"},
		{ID: "a", Name: "Alice Again"},
	})

	if r.Len() != 2 {
		t.Fatalf("len = %d, want 2", r.Len())
	}
	if name, _ := r.Name("a"); name != "Alice" {
		t.Errorf("name = %q, want Alice", name)
	}
	if i, _ := r.Index("b"); i != 1 {
		t.Errorf("index(b) = %d, want 1", i)
	}
}

func TestRoster_Lookup(t *testing.T) {
	r := NewRoster([]Student{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}})

	tests := []struct {
		in     string
		wantID string
		ok     bool
	}{
		{"a", "a", true},
		{"Bob", "b", true},
		{"Carol", "", false},
	}
	for _, tt := range tests {
		got, ok := r.Lookup(tt.in)
		if ok != tt.ok || got.ID != tt.wantID {
			t.Errorf("Lookup(%q) = (%q, %v), want (%q, %v)", tt.in, got.ID, ok, tt.wantID, tt.ok)
		}
	}
}

func TestRoster_StudentsIsACopy(t *testing.T) {
	r := NewRoster([]Student{{ID: "a", Name: "Alice"}})
	s := r.Students()
	s[0].Name = "changed"
	if name, _ := r.Name("a"); name != "Alice" {
		t.Fatalf("roster mutated through Students(): %q", name)
	}
}

func TestParseState(t *testing.T) {
	for _, in := range []string{"pending", "OPEN", " closed "} {
		if _, err := ParseState(in); err != nil {
			t.Errorf("ParseState(%q): %v", in, err)
		}
	}
	if _, err := ParseState("archived"); err == nil {
		t.Error("expected error for unknown state")
	}
}

func TestEncodeRatings(t *testing.T) {
	got := EncodeRatings(map[string]int{"b": 80, "c": 20}, []string{"c", "x", "b"})
	want := `{"c":{"intimacy":20},"b":{"intimacy":80}}`
	if string(got) != want {
		t.Fatalf("payload = %s, want %s", got, want)
	}

	var decoded map[string]map[string]int
	if err := json.Unmarshal(got, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
}

func TestFreeText_Empty(t *testing.T) {
	if !(FreeText{Concern: "  "}).Empty() {
		t.Error("whitespace-only free text should be empty")
	}
	if (FreeText{TeacherMessage: "hi"}).Empty() {
		t.Error("free text with a message should not be empty")
	}
}
