package analysis

import (
	"github.com/montanaflynn/stats"
)

// Distribution summarizes every rating submitted class-wide.
//
// StdDev is the sample standard deviation (divides by N-1). With a single
// rating it is undefined; StdDevDefined is false and StdDev is zero.
type Distribution struct {
	Count         int
	Mean          float64
	Median        float64
	StdDev        float64
	StdDevDefined bool

	// Buckets counts scores in 0-19, 20-39, 40-59, 60-79 and 80-100.
	Buckets [5]int
}

// BucketLabels names the Buckets entries.
var BucketLabels = [5]string{"0-19", "20-39", "40-59", "60-79", "80-100"}

// Distribute computes the distribution of values. ok is false when there
// are no values; callers must show "insufficient data" rather than zeros.
func Distribute(values []int) (d Distribution, ok bool) {
	if len(values) == 0 {
		return Distribution{}, false
	}

	data := make(stats.Float64Data, len(values))
	for i, v := range values {
		data[i] = float64(v)
		d.Buckets[bucketOf(v)]++
	}
	d.Count = len(values)

	var err error
	if d.Mean, err = stats.Mean(data); err != nil {
		return Distribution{}, false
	}
	if d.Median, err = stats.Median(data); err != nil {
		return Distribution{}, false
	}
	if len(values) > 1 {
		if sd, err := stats.StandardDeviationSample(data); err == nil {
			d.StdDev = sd
			d.StdDevDefined = true
		}
	}
	return d, true
}

func bucketOf(v int) int {
	switch {
	case v < 20:
		return 0
	case v < 40:
		return 1
	case v < 60:
		return 2
	case v < 80:
		return 3
	default:
		return 4
	}
}
