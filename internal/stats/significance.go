// Package stats holds the two-proportion significance test and the descriptive statistics
// reported alongside numeric and scale tables.
package stats

import "math"

// Significance markers.
const (
	Higher = "*"
	Lower  = "↓"
)

// DefaultAlpha is the significance level used when none is configured.
const DefaultAlpha = 0.05

// ZTest is the outcome of comparing two proportions.
type ZTest struct {
	Significant bool
	PValue      float64
	Z           float64
	// Direction is Higher, Lower or "".
	Direction string
}

// ZTestForProportions compares c1/t1 against c2/t2 with a pooled-variance two-tailed z-test.
// Empty groups or a zero standard error yield p = 1, z = 0.
func ZTestForProportions(c1, t1, c2, t2 int, alpha float64) ZTest {
	if t1 == 0 || t2 == 0 {
		return ZTest{PValue: 1}
	}
	n1, n2 := float64(t1), float64(t2)
	p1, p2 := float64(c1)/n1, float64(c2)/n2
	pooled := float64(c1+c2) / (n1 + n2)
	se := math.Sqrt(pooled * (1 - pooled) * (1/n1 + 1/n2))
	if se == 0 || math.IsNaN(se) {
		return ZTest{PValue: 1}
	}
	z := (p1 - p2) / se
	p := 2 * (1 - NormalCDF(math.Abs(z)))
	res := ZTest{PValue: p, Z: z, Significant: p < alpha}
	if res.Significant {
		if z > 0 {
			res.Direction = Higher
		} else {
			res.Direction = Lower
		}
	}
	return res
}

// NormalCDF is the standard normal CDF via the Abramowitz-Stegun polynomial (error < 7.5e-8).
func NormalCDF(x float64) float64 {
	const (
		b0 = 0.2316419
		b1 = 0.3193815
		b2 = -0.3565638
		b3 = 1.781478
		b4 = -1.821256
		b5 = 1.330274
	)
	ax := math.Abs(x)
	t := 1 / (1 + b0*ax)
	pdf := math.Exp(-ax*ax/2) / math.Sqrt(2*math.Pi)
	poly := t * (b1 + t*(b2+t*(b3+t*(b4+t*b5))))
	upper := pdf * poly
	if x >= 0 {
		return 1 - upper
	}
	return upper
}

// PerformSignificanceTests flags each banner cell against the Total column (column 0) of the
// same row. bases holds the per-column base; column 0 is never flagged.
func PerformSignificanceTests(absolute [][]int, bases []int, alpha float64) [][]string {
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultAlpha
	}
	out := make([][]string, len(absolute))
	for r, row := range absolute {
		flags := make([]string, len(row))
		if len(row) == 0 {
			out[r] = flags
			continue
		}
		totalBase := baseAt(bases, 0)
		for c := 1; c < len(row); c++ {
			res := ZTestForProportions(row[c], baseAt(bases, c), row[0], totalBase, alpha)
			flags[c] = res.Direction
		}
		out[r] = flags
	}
	return out
}

func baseAt(bases []int, i int) int {
	if i < len(bases) {
		return bases[i]
	}
	return 0
}
