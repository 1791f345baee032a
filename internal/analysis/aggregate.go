package analysis

// Score bounds of the intimacy scale.
const (
	MinScore = 0
	MaxScore = 100
)

// GivenSummary describes the scores one student handed out.
type GivenSummary struct {
	StudentID string
	Average   float64
	Count     int
	Scores    []int // encounter order
}

// ReceivedSummary describes the scores one student was given by others.
type ReceivedSummary struct {
	StudentID string
	Average   float64
	Count     int
}

// GivenScores summarizes each submitter's outgoing ratings. Submitters with
// no valid rating are left out: absence means "no data", which is not the
// same as having rated everyone zero. Output follows record order.
func GivenScores(records []Record) []GivenSummary {
	var out []GivenSummary
	for _, rec := range records {
		if len(rec.Ratings) == 0 {
			continue
		}
		scores := make([]int, len(rec.Ratings))
		for i, pr := range rec.Ratings {
			scores[i] = pr.Rating.Intimacy
		}
		out = append(out, GivenSummary{
			StudentID: rec.SubmitterID,
			Average:   mean(scores),
			Count:     len(scores),
			Scores:    scores,
		})
	}
	return out
}

// ReceivedScores summarizes the ratings each student received, whether or
// not that student responded. Students nobody rated are left out.
//
// Output is in discovery order: the order in which targets are first seen
// while walking records and their ratings.
func ReceivedScores(records []Record) []ReceivedSummary {
	type acc struct {
		sum   int
		count int
	}
	var order []string
	totals := make(map[string]*acc)

	for _, rec := range records {
		for _, pr := range rec.Ratings {
			a, ok := totals[pr.PeerID]
			if !ok {
				a = &acc{}
				totals[pr.PeerID] = a
				order = append(order, pr.PeerID)
			}
			a.sum += pr.Rating.Intimacy
			a.count++
		}
	}

	out := make([]ReceivedSummary, 0, len(order))
	for _, id := range order {
		a := totals[id]
		out = append(out, ReceivedSummary{
			StudentID: id,
			Average:   float64(a.sum) / float64(a.count),
			Count:     a.count,
		})
	}
	return out
}

// PooledScores flattens every valid rating class-wide.
func PooledScores(records []Record) []int {
	var out []int
	for _, rec := range records {
		for _, pr := range rec.Ratings {
			out = append(out, pr.Rating.Intimacy)
		}
	}
	return out
}

func mean(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}
