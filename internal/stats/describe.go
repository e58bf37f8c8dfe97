package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Descriptive summarizes a numeric sample.
type Descriptive struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"stdDev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Describe returns mean, median, population standard deviation and range. An empty sample
// yields the zero value.
func Describe(values []float64) Descriptive {
	if len(values) == 0 {
		return Descriptive{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return Descriptive{
		N:      len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Median: Quantile(sorted, 0.5),
		StdDev: math.Sqrt(stat.PopVariance(sorted, nil)),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
}

// Quantile interpolates linearly between closest ranks of an ascending sample.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// Percent returns round(count/base*100), or 0 for an empty base.
func Percent(count, base int) int {
	if base <= 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(base) * 100))
}
