package analysis

import (
	"cmp"
	"slices"

	"github.com/abhisek/sociogram/internal/survey"
)

// Category classifies a pair of students who rated each other.
type Category string

const (
	CategoryMutualHigh Category = "mutual_high"
	CategoryMutualLow  Category = "mutual_low"
	CategoryAHighOnly  Category = "a_rates_b_high" // A rates B high, B rates A low
	CategoryBHighOnly  Category = "b_rates_a_high" // B rates A high, A rates B low
	CategoryMixed      Category = "mixed"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{
		CategoryMutualHigh,
		CategoryMutualLow,
		CategoryAHighOnly,
		CategoryBHighOnly,
		CategoryMixed,
	}
}

// Label returns a human-readable name.
func (c Category) Label() string {
	switch c {
	case CategoryMutualHigh:
		return "mutual high"
	case CategoryMutualLow:
		return "mutual low"
	case CategoryAHighOnly:
		return "A rates B high, one-directional"
	case CategoryBHighOnly:
		return "B rates A high, one-directional"
	case CategoryMixed:
		return "mixed/moderate"
	}
	return string(c)
}

// Thresholds are the classification cut-offs. A score at or above High is
// high; at or below Low is low.
type Thresholds struct {
	High int `validate:"min=0,max=100"`
	Low  int `validate:"min=0,max=100,ltfield=High"`
}

// DefaultThresholds returns high=75, low=35.
func DefaultThresholds() Thresholds {
	return Thresholds{High: 75, Low: 35}
}

// Validate checks the bounds and that Low < High.
func (t Thresholds) Validate() error { return validate.Struct(t) }

// Classify is total: every (ab, ba) yields exactly one category.
func Classify(ab, ba int, t Thresholds) Category {
	switch {
	case ab >= t.High && ba >= t.High:
		return CategoryMutualHigh
	case ab <= t.Low && ba <= t.Low:
		return CategoryMutualLow
	case ab >= t.High && ba <= t.Low:
		return CategoryAHighOnly
	case ba >= t.High && ab <= t.Low:
		return CategoryBHighOnly
	default:
		return CategoryMixed
	}
}

// Pair is two students who rated each other. A precedes B in roster order.
type Pair struct {
	A        string
	B        string
	AtoB     int
	BtoA     int
	Category Category
}

// Involves reports whether id is one side of the pair.
func (p Pair) Involves(id string) bool { return p.A == id || p.B == id }

// Other returns the partner of id.
func (p Pair) Other(id string) string {
	if p.A == id {
		return p.B
	}
	return p.A
}

// ScoreFrom returns the score id gave the partner.
func (p Pair) ScoreFrom(id string) int {
	if p.A == id {
		return p.AtoB
	}
	return p.BtoA
}

type edge struct {
	from string
	to   string
}

// Reciprocity finds every pair of roster members with ratings in both
// directions. A score of 0 counts as present.
//
// Rather than enumerating all C(N,2) roster pairs, it indexes every rating
// once and visits only edges whose reverse exists, so the cost is
// O(R + P log P) for R ratings and P reciprocal pairs. The final sort puts
// pairs in roster order, the same order a combinations walk would produce.
func Reciprocity(records []Record, roster *survey.Roster, t Thresholds) []Pair {
	index := make(map[edge]int)
	var edges []edge
	for _, rec := range records {
		for _, pr := range rec.Ratings {
			e := edge{from: rec.SubmitterID, to: pr.PeerID}
			if _, dup := index[e]; dup {
				continue
			}
			index[e] = pr.Rating.Intimacy
			edges = append(edges, e)
		}
	}

	var pairs []Pair
	for _, e := range edges {
		back, ok := index[edge{from: e.to, to: e.from}]
		if !ok {
			continue
		}
		ai, aok := roster.Index(e.from)
		bi, bok := roster.Index(e.to)
		if !aok || !bok || ai > bi {
			continue
		}
		ab := index[e]
		pairs = append(pairs, Pair{
			A:        e.from,
			B:        e.to,
			AtoB:     ab,
			BtoA:     back,
			Category: Classify(ab, back, t),
		})
	}

	slices.SortFunc(pairs, func(x, y Pair) int {
		xa, _ := roster.Index(x.A)
		ya, _ := roster.Index(y.A)
		if c := cmp.Compare(xa, ya); c != 0 {
			return c
		}
		xb, _ := roster.Index(x.B)
		yb, _ := roster.Index(y.B)
		return cmp.Compare(xb, yb)
	})
	return pairs
}

// CountCategories tallies pairs per category. Every category is present
// in the result, possibly with zero.
func CountCategories(pairs []Pair) map[Category]int {
	out := make(map[Category]int, len(Categories()))
	for _, c := range Categories() {
		out[c] = 0
	}
	for _, p := range pairs {
		out[p.Category]++
	}
	return out
}
