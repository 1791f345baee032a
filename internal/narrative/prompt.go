package narrative

import (
	"fmt"
	"sort"
	"strings"

	"github.com/abhisek/sociogram/internal/analysis"
	"github.com/abhisek/sociogram/internal/survey"
)

// InsufficientData stands in for any figure computed from zero data points.
const InsufficientData = "insufficient data"

// rankSize is how many students the class prompt lists at each end.
const rankSize = 3

const studentSystemPrompt = `You are an experienced school counsellor helping a homeroom teacher read the results of a classroom relationship survey.

Rules:
- Students rated how close they feel to each classmate on a 0-100 scale.
- Describe the student's position in the class in 4-6 sentences: how warmly they rate others, how others rate them, and which relationships are mutual or one-sided.
- Mention who praised the student and who finds them hard to get along with only if the data says so.
- Where a figure is "insufficient data", say so plainly. Never treat it as zero.
- Suggest one or two concrete, gentle actions for the teacher.
- Refer to students only by the names given. Do not invent names, numbers or events.`

const classSystemPrompt = `You are an experienced school counsellor helping a homeroom teacher read the results of a classroom relationship survey.

Rules:
- Students rated how close they feel to each classmate on a 0-100 scale.
- Summarize the class climate in 5-8 sentences: overall warmth, spread of scores, mutual versus one-sided relationships.
- Name students who appear well connected and students who may be isolated, using only the lists provided.
- Where a figure is "insufficient data", say so plainly. Never treat it as zero.
- End with two or three suggestions for class activities or follow-up.
- Do not invent names, numbers or events.`

const concernsSystemPrompt = `You are an experienced school counsellor reading the open answers students wrote in a classroom relationship survey.

Rules:
- Summarize what students are worried about and what they want the teacher to know.
- Extract recurring themes as short keywords.
- List students who may need the teacher's attention, with one sentence each. Use names exactly as written in the input. Leave the list empty if nobody stands out.
- Be factual and kind. Do not diagnose.`

// PromptOptions carries context the analysis result does not hold.
type PromptOptions struct {
	ClassName  string
	SurveyName string
	Language   string
}

// names substitutes roster names for IDs and never fails.
type names struct {
	roster *survey.Roster
}

func (n names) of(id string) string {
	if n.roster != nil {
		if name, ok := n.roster.Name(id); ok && strings.TrimSpace(name) != "" {
			return name
		}
	}
	return placeholderName(id)
}

func (n names) list(ids []string) string {
	if len(ids) == 0 {
		return "None"
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = n.of(id)
	}
	return strings.Join(out, ", ")
}

// DisplayName returns the roster name for id, or a placeholder derived
// from the ID when the roster does not know it.
func DisplayName(roster *survey.Roster, id string) string {
	return names{roster: roster}.of(id)
}

// placeholderName is used when an ID has no roster entry.
func placeholderName(id string) string {
	r := []rune(id)
	if len(r) > 8 {
		r = r[:8]
	}
	return "unknown-" + string(r)
}

// BuildStudentPrompt describes one student for KindStudent.
func BuildStudentPrompt(res *analysis.Result, studentID string, opts PromptOptions) string {
	n := names{roster: res.Roster}
	var b strings.Builder

	writeHeader(&b, opts)
	fmt.Fprintf(&b, "Student: %s\n", n.of(studentID))

	rec, responded := res.RecordOf(studentID)
	if !responded {
		b.WriteString("Survey response: not submitted\n")
	}

	if g, ok := res.GivenBy(studentID); ok && g.Count > 0 {
		fmt.Fprintf(&b, "Scores given: average %.1f over %d classmates\n", g.Average, g.Count)
		for _, pr := range rec.Ratings {
			fmt.Fprintf(&b, "  - %s: %d\n", n.of(pr.PeerID), pr.Rating.Intimacy)
		}
	} else {
		fmt.Fprintf(&b, "Scores given: %s\n", InsufficientData)
	}

	if r, ok := res.ReceivedBy(studentID); ok && r.Count > 0 {
		fmt.Fprintf(&b, "Scores received: average %.1f from %d classmates\n", r.Average, r.Count)
		for _, rs := range res.ScoresFor(studentID) {
			fmt.Fprintf(&b, "  - from %s: %d\n", n.of(rs.RaterID), rs.Score)
		}
	} else {
		fmt.Fprintf(&b, "Scores received: %s\n", InsufficientData)
	}

	b.WriteString("\nReciprocal relationships:\n")
	pairs := res.PairsOf(studentID)
	if len(pairs) == 0 {
		b.WriteString("None\n")
	}
	for _, p := range pairs {
		other := p.Other(studentID)
		fmt.Fprintf(&b, "- %s: gives %d, receives %d (%s)\n",
			n.of(other), p.ScoreFrom(studentID), p.ScoreFrom(other), perspectiveLabel(p, studentID))
	}

	b.WriteString("\nNamed by classmates:\n")
	fmt.Fprintf(&b, "- as someone to praise: %s\n", n.list(res.Praised[studentID]))
	fmt.Fprintf(&b, "- as hard to get along with: %s\n", n.list(res.Flagged[studentID]))

	if responded {
		b.WriteString("\nThe student's own answers:\n")
		fmt.Fprintf(&b, "- worry: %s\n", orNone(rec.FreeText.Concern))
		fmt.Fprintf(&b, "- message to the teacher: %s\n", orNone(rec.FreeText.TeacherMessage))
	}

	return strings.TrimRight(b.String(), "\n")
}

// BuildClassPrompt describes the whole class for KindClass.
func BuildClassPrompt(res *analysis.Result, opts PromptOptions) string {
	n := names{roster: res.Roster}
	var b strings.Builder

	writeHeader(&b, opts)
	fmt.Fprintf(&b, "Respondents: %d of %d students\n", len(res.Respondents()), res.Roster.Len())

	writeRanking := func(title string, rows []analysis.ReceivedSummary) {
		fmt.Fprintf(&b, "\n%s:\n", title)
		if len(rows) == 0 {
			fmt.Fprintf(&b, "%s\n", InsufficientData)
			return
		}
		for i, r := range rows {
			fmt.Fprintf(&b, "%d. %s: %.1f (%d ratings)\n", i+1, n.of(r.StudentID), r.Average, r.Count)
		}
	}
	writeRanking("Highest received averages", res.TopReceived(rankSize))
	writeRanking("Lowest received averages", res.BottomReceived(rankSize))

	writeRaters := func(title string, rows []analysis.GivenSummary) {
		if len(rows) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n%s:\n", title)
		for i, g := range rows {
			fmt.Fprintf(&b, "%d. %s: %.1f (%d ratings given)\n", i+1, n.of(g.StudentID), g.Average, g.Count)
		}
	}
	writeRaters("Warmest raters (highest given averages)", res.TopGiven(rankSize))
	writeRaters("Most reserved raters (lowest given averages)", res.BottomGiven(rankSize))

	b.WriteString("\nReciprocal pairs by category:\n")
	counts := res.CategoryCounts()
	for _, c := range analysis.Categories() {
		fmt.Fprintf(&b, "- %s: %d\n", c.Label(), counts[c])
	}

	b.WriteString("\nScore distribution:\n")
	b.WriteString(describeDistribution(res.Distribution))

	if missing := res.NonRespondents(); len(missing) > 0 {
		ids := make([]string, len(missing))
		for i, s := range missing {
			ids[i] = s.ID
		}
		fmt.Fprintf(&b, "\nDid not respond: %s\n", n.list(ids))
	}

	return strings.TrimRight(b.String(), "\n")
}

// BuildConcernsPrompt lists every free-text answer for KindConcerns.
func BuildConcernsPrompt(res *analysis.Result, opts PromptOptions) string {
	n := names{roster: res.Roster}
	var b strings.Builder

	writeHeader(&b, opts)
	b.WriteString("Open answers by student:\n")

	written := 0
	for _, rec := range res.Records {
		ft := rec.FreeText
		if ft.Empty() {
			continue
		}
		written++
		fmt.Fprintf(&b, "\n%s\n", n.of(rec.SubmitterID))
		fmt.Fprintf(&b, "- wants to praise: %s\n", orNone(ft.PraiseFriend))
		fmt.Fprintf(&b, "- finds hard to get along with: %s\n", orNone(ft.DifficultFriend))
		fmt.Fprintf(&b, "- worry: %s\n", orNone(ft.Concern))
		fmt.Fprintf(&b, "- message to the teacher: %s\n", orNone(ft.TeacherMessage))
	}
	if written == 0 {
		fmt.Fprintf(&b, "%s\n", InsufficientData)
	}

	writeMentionTally(&b, "Most often named as someone to praise", res.Praised, n)
	writeMentionTally(&b, "Most often named as hard to get along with", res.Flagged, n)

	return strings.TrimRight(b.String(), "\n")
}

func writeHeader(b *strings.Builder, opts PromptOptions) {
	if opts.ClassName != "" {
		fmt.Fprintf(b, "Class: %s\n", opts.ClassName)
	}
	if opts.SurveyName != "" {
		fmt.Fprintf(b, "Survey: %s\n", opts.SurveyName)
	}
	if opts.Language != "" {
		fmt.Fprintf(b, "Answer in %s.\n", opts.Language)
	}
	b.WriteString("\n")
}

func describeDistribution(d *analysis.Distribution) string {
	if d == nil {
		return InsufficientData + "\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "- ratings: %d\n", d.Count)
	fmt.Fprintf(&b, "- mean: %.1f\n", d.Mean)
	fmt.Fprintf(&b, "- median: %.1f\n", d.Median)
	if d.StdDevDefined {
		fmt.Fprintf(&b, "- standard deviation: %.1f\n", d.StdDev)
	} else {
		fmt.Fprintf(&b, "- standard deviation: %s\n", InsufficientData)
	}
	for i, label := range analysis.BucketLabels {
		fmt.Fprintf(&b, "- %s: %d\n", label, d.Buckets[i])
	}
	return b.String()
}

func writeMentionTally(b *strings.Builder, title string, m analysis.Mentions, n names) {
	if len(m) == 0 {
		return
	}
	type tally struct {
		name  string
		count int
	}
	rows := make([]tally, 0, len(m))
	for id, by := range m {
		rows = append(rows, tally{name: n.of(id), count: len(by)})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].name < rows[j].name
	})
	if len(rows) > rankSize {
		rows = rows[:rankSize]
	}

	fmt.Fprintf(b, "\n%s:\n", title)
	for _, r := range rows {
		fmt.Fprintf(b, "- %s (%d)\n", r.name, r.count)
	}
}

// perspectiveLabel names a pair's category as seen from id's side.
func perspectiveLabel(p analysis.Pair, id string) string {
	switch p.Category {
	case analysis.CategoryAHighOnly, analysis.CategoryBHighOnly:
		rater := p.A
		if p.Category == analysis.CategoryBHighOnly {
			rater = p.B
		}
		if rater == id {
			return "one-sided: this student feels close, the feeling is not returned"
		}
		return "one-sided: the classmate feels close, this student does not"
	}
	return p.Category.Label()
}

func orNone(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "None"
	}
	return s
}
