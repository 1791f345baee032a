package analysis

import (
	"testing"

	"github.com/abhisek/sociogram/internal/survey"
)

func TestClassify(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		ab, ba int
		want   Category
	}{
		{80, 90, CategoryMutualHigh},
		{75, 75, CategoryMutualHigh},
		{35, 35, CategoryMutualLow},
		{0, 10, CategoryMutualLow},
		{75, 35, CategoryAHighOnly},
		{100, 0, CategoryAHighOnly},
		{35, 75, CategoryBHighOnly},
		{74, 90, CategoryMixed},
		{36, 20, CategoryMixed},
		{50, 50, CategoryMixed},
		{90, 50, CategoryMixed},
	}
	for _, tt := range tests {
		if got := Classify(tt.ab, tt.ba, th); got != tt.want {
			t.Errorf("Classify(%d, %d) = %s, want %s", tt.ab, tt.ba, got, tt.want)
		}
	}
}

func TestClassify_TotalAndDeterministic(t *testing.T) {
	th := Thresholds{High: 60, Low: 40}
	valid := make(map[Category]bool)
	for _, c := range Categories() {
		valid[c] = true
	}
	for ab := 0; ab <= 100; ab++ {
		for ba := 0; ba <= 100; ba++ {
			c := Classify(ab, ba, th)
			if !valid[c] {
				t.Fatalf("Classify(%d, %d) = %q, not a known category", ab, ba, c)
			}
			if Classify(ab, ba, th) != c {
				t.Fatalf("Classify(%d, %d) not deterministic", ab, ba)
			}
		}
	}
}

func TestThresholds_Validate(t *testing.T) {
	tests := []struct {
		th    Thresholds
		valid bool
	}{
		{DefaultThresholds(), true},
		{Thresholds{High: 100, Low: 0}, true},
		{Thresholds{High: 50, Low: 50}, false},
		{Thresholds{High: 40, Low: 60}, false},
		{Thresholds{High: 101, Low: 10}, false},
		{Thresholds{High: 50, Low: -1}, false},
	}
	for _, tt := range tests {
		err := tt.th.Validate()
		if (err == nil) != tt.valid {
			t.Errorf("Validate(%+v) err = %v, want valid=%v", tt.th, err, tt.valid)
		}
	}
}

func TestReciprocity_OnlyBothDirections(t *testing.T) {
	roster := testRoster("Alice", "Bob", "Carol")
	norm := Normalize([]survey.Response{
		resp("r1", "Alice", `{"id-Bob":{"intimacy":80},"id-Carol":{"intimacy":20}}`),
		resp("r2", "Bob", `{"id-Alice":{"intimacy":90},"id-Carol":{"intimacy":50}}`),
	}, roster)

	pairs := Reciprocity(norm.Records, roster, DefaultThresholds())
	if len(pairs) != 1 {
		t.Fatalf("pairs = %+v, want 1", pairs)
	}
	p := pairs[0]
	if p.A != idOf("Alice") || p.B != idOf("Bob") || p.AtoB != 80 || p.BtoA != 90 {
		t.Errorf("pair = %+v", p)
	}
	if p.Category != CategoryMutualHigh {
		t.Errorf("category = %s, want mutual_high", p.Category)
	}
}

func TestReciprocity_ZeroIsPresent(t *testing.T) {
	roster := testRoster("Alice", "Bob")
	norm := Normalize([]survey.Response{
		resp("r1", "Alice", `{"id-Bob":{"intimacy":0}}`),
		resp("r2", "Bob", `{"id-Alice":{"intimacy":0}}`),
	}, roster)

	pairs := Reciprocity(norm.Records, roster, DefaultThresholds())
	if len(pairs) != 1 || pairs[0].Category != CategoryMutualLow {
		t.Fatalf("pairs = %+v, want one mutual_low pair", pairs)
	}
}

func TestReciprocity_RosterOrder(t *testing.T) {
	roster := testRoster("Alice", "Bob", "Carol")
	// Carol submits first, so her edges are discovered first.
	norm := Normalize([]survey.Response{
		resp("r1", "Carol", `{"id-Bob":{"intimacy":10},"id-Alice":{"intimacy":90}}`),
		resp("r2", "Bob", `{"id-Carol":{"intimacy":80},"id-Alice":{"intimacy":50}}`),
		resp("r3", "Alice", `{"id-Carol":{"intimacy":20},"id-Bob":{"intimacy":60}}`),
	}, roster)

	pairs := Reciprocity(norm.Records, roster, DefaultThresholds())
	if len(pairs) != 3 {
		t.Fatalf("pairs = %d, want 3", len(pairs))
	}

	want := []struct {
		a, b   string
		ab, ba int
		cat    Category
	}{
		{"Alice", "Bob", 60, 50, CategoryMixed},
		{"Alice", "Carol", 20, 90, CategoryBHighOnly},
		{"Bob", "Carol", 80, 10, CategoryAHighOnly},
	}
	for i, w := range want {
		p := pairs[i]
		if p.A != idOf(w.a) || p.B != idOf(w.b) || p.AtoB != w.ab || p.BtoA != w.ba || p.Category != w.cat {
			t.Errorf("pairs[%d] = %+v, want %s->%s %d/%d %s", i, p, w.a, w.b, w.ab, w.ba, w.cat)
		}
	}
}

func TestPair_Helpers(t *testing.T) {
	p := Pair{A: "a", B: "b", AtoB: 10, BtoA: 20}
	if !p.Involves("a") || p.Involves("c") {
		t.Error("Involves wrong")
	}
	if p.Other("a") != "b" || p.Other("b") != "a" {
		t.Error("Other wrong")
	}
	if p.ScoreFrom("a") != 10 || p.ScoreFrom("b") != 20 {
		t.Error("ScoreFrom wrong")
	}
}

func TestCountCategories_AllKeysPresent(t *testing.T) {
	counts := CountCategories([]Pair{{Category: CategoryMixed}, {Category: CategoryMixed}})
	if len(counts) != len(Categories()) {
		t.Fatalf("counts has %d keys, want %d", len(counts), len(Categories()))
	}
	if counts[CategoryMixed] != 2 || counts[CategoryMutualHigh] != 0 {
		t.Errorf("counts = %v", counts)
	}
}
