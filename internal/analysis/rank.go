package analysis

import (
	"cmp"
	"slices"
)

// The ranking helpers below are for display. They sort stably on the
// average, so ties keep their incoming (discovery) order. That makes the
// result deterministic, not a strict ranking.

// TopReceived returns up to n entries with the highest received average.
func TopReceived(in []ReceivedSummary, n int) []ReceivedSummary {
	return extremes(in, n, func(s ReceivedSummary) float64 { return s.Average }, true)
}

// BottomReceived returns up to n entries with the lowest received average.
func BottomReceived(in []ReceivedSummary, n int) []ReceivedSummary {
	return extremes(in, n, func(s ReceivedSummary) float64 { return s.Average }, false)
}

// TopGiven returns up to n entries with the highest given average.
func TopGiven(in []GivenSummary, n int) []GivenSummary {
	return extremes(in, n, func(s GivenSummary) float64 { return s.Average }, true)
}

// BottomGiven returns up to n entries with the lowest given average.
func BottomGiven(in []GivenSummary, n int) []GivenSummary {
	return extremes(in, n, func(s GivenSummary) float64 { return s.Average }, false)
}

func extremes[T any](in []T, n int, key func(T) float64, desc bool) []T {
	if n <= 0 || len(in) == 0 {
		return nil
	}
	sorted := slices.Clone(in)
	slices.SortStableFunc(sorted, func(a, b T) int {
		if desc {
			return cmp.Compare(key(b), key(a))
		}
		return cmp.Compare(key(a), key(b))
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
