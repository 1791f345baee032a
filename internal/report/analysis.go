// Package report renders analysis results and narratives as terminal or
// Markdown text.
package report

import (
	"fmt"
	"strings"

	"github.com/abhisek/sociogram/internal/analysis"
	"github.com/abhisek/sociogram/internal/narrative"
)

// raterRows is how many students each end of the rater ranking shows.
const raterRows = 3

// Options configures a rendered report.
type Options struct {
	Mode  Mode
	Title string
}

// Analysis renders every section of an analysis result.
func Analysis(res *analysis.Result, opts Options) string {
	w := &writer{mode: opts.Mode}
	name := func(id string) string { return narrative.DisplayName(res.Roster, id) }

	if opts.Title != "" {
		w.title(opts.Title)
	}
	w.line("Respondents: %d of %d students", len(res.Respondents()), res.Roster.Len())
	w.line("High threshold: %d, low threshold: %d", res.Thresholds.High, res.Thresholds.Low)
	w.line("")

	w.section("Scores by student")
	scores := NewTable(opts.Mode)
	scores.Header("Student", "Given avg", "Given n", "Received avg", "Received n")
	scores.AlignRight(2, 3, 4, 5)
	for _, s := range res.Roster.Students() {
		g, gok := res.GivenBy(s.ID)
		r, rok := res.ReceivedBy(s.ID)
		scores.Row(s.Name,
			average(g.Average, gok && g.Count > 0), g.Count,
			average(r.Average, rok && r.Count > 0), r.Count)
	}
	w.table(scores)

	if warm := res.TopGiven(raterRows); len(warm) > 0 {
		w.section("Rater tendencies")
		raters := NewTable(opts.Mode)
		raters.Header("Tendency", "Student", "Given avg", "Given n")
		raters.AlignRight(3, 4)
		for _, g := range warm {
			raters.Row("warmest", name(g.StudentID), fmt.Sprintf("%.1f", g.Average), g.Count)
		}
		for _, g := range res.BottomGiven(raterRows) {
			raters.Row("most reserved", name(g.StudentID), fmt.Sprintf("%.1f", g.Average), g.Count)
		}
		w.table(raters)
	}

	w.section("Reciprocal pairs")
	if len(res.Pairs) == 0 {
		w.hint(narrative.InsufficientData)
	} else {
		pairs := NewTable(opts.Mode)
		pairs.Header("A", "B", "A to B", "B to A", "Category")
		pairs.AlignRight(3, 4)
		for _, p := range res.Pairs {
			pairs.Row(name(p.A), name(p.B), p.AtoB, p.BtoA, p.Category.Label())
		}
		w.table(pairs)
	}

	counts := res.CategoryCounts()
	cats := NewTable(opts.Mode)
	cats.Header("Category", "Pairs")
	cats.AlignRight(2)
	total := 0
	for _, c := range analysis.Categories() {
		cats.Row(c.Label(), counts[c])
		total += counts[c]
	}
	cats.Footer("Total", total)
	w.table(cats)

	w.section("Score distribution")
	writeDistribution(w, res.Distribution)

	if len(res.Praised) > 0 || len(res.Flagged) > 0 {
		w.section("Named in free text")
		mentions := NewTable(opts.Mode)
		mentions.Header("Student", "Praised by", "Hard to get along with for")
		for _, s := range res.Roster.Students() {
			praised, flagged := res.Praised[s.ID], res.Flagged[s.ID]
			if len(praised) == 0 && len(flagged) == 0 {
				continue
			}
			mentions.Row(s.Name, nameList(praised, name), nameList(flagged, name))
		}
		w.table(mentions)
	}

	if missing := res.NonRespondents(); len(missing) > 0 {
		w.section("Did not respond")
		out := make([]string, len(missing))
		for i, s := range missing {
			out[i] = s.Name
		}
		w.line("%s\n", strings.Join(out, ", "))
	}

	if dropped := droppedRows(res.Stats); len(dropped) > 0 {
		w.section("Ignored input")
		t := NewTable(opts.Mode)
		t.Header("Reason", "Count")
		t.AlignRight(2)
		for _, d := range dropped {
			t.Row(d.reason, d.count)
		}
		w.table(t)
	}

	return w.String()
}

func writeDistribution(w *writer, d *analysis.Distribution) {
	if d == nil {
		w.hint(narrative.InsufficientData)
		return
	}

	stats := NewTable(w.mode)
	stats.Header("Ratings", "Mean", "Median", "Std dev")
	stats.AlignRight(1, 2, 3, 4)
	sd := narrative.InsufficientData
	if d.StdDevDefined {
		sd = fmt.Sprintf("%.1f", d.StdDev)
	}
	stats.Row(d.Count, fmt.Sprintf("%.1f", d.Mean), fmt.Sprintf("%.1f", d.Median), sd)
	w.table(stats)

	buckets := NewTable(w.mode)
	buckets.Header("Range", "Ratings", "")
	buckets.AlignRight(2)
	for i, label := range analysis.BucketLabels {
		buckets.Row(label, d.Buckets[i], bar(d.Buckets[i], d.Count))
	}
	w.table(buckets)
}

// bar draws a 20-cell histogram bar for n out of total.
func bar(n, total int) string {
	if total == 0 || n == 0 {
		return ""
	}
	width := n * 20 / total
	if width == 0 {
		width = 1
	}
	return strings.Repeat("#", width)
}

func average(v float64, ok bool) string {
	if !ok {
		return narrative.InsufficientData
	}
	return fmt.Sprintf("%.1f", v)
}

func nameList(ids []string, name func(string) string) string {
	if len(ids) == 0 {
		return "-"
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = name(id)
	}
	return strings.Join(out, ", ")
}

type droppedRow struct {
	reason string
	count  int
}

func droppedRows(s analysis.NormalizeStats) []droppedRow {
	all := []droppedRow{
		{"malformed rating payloads", s.Malformed},
		{"ratings of unknown classmates", s.UnknownPeers},
		{"invalid scores", s.InvalidScores},
		{"self ratings", s.SelfRatings},
		{"responses from unknown students", s.UnknownSubmitters},
		{"duplicate responses", s.Duplicates},
	}
	var out []droppedRow
	for _, r := range all {
		if r.count > 0 {
			out = append(out, r)
		}
	}
	return out
}
