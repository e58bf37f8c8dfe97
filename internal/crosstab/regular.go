package crosstab

import (
	"fmt"
	"math"
	"strconv"

	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
	"github.com/KaramelBytes/tabloom-cli/internal/detect"
	"github.com/KaramelBytes/tabloom-cli/internal/stats"
)

// percentTolerance is how far a single-response column may drift from 100% before a warning.
const percentTolerance = 5

// RegularCrossTab tabulates one plain column: a row per distinct answer, then a Total row.
// It returns nil when the column has no non-blank values.
func RegularCrossTab(ds *dataset.Dataset, variable string, qt detect.QuestionType, lay *Layout, displayName string) *Result {
	width := lay.Width()
	catIndex := make(map[string]int)
	var cats []string
	for _, v := range ds.Column(variable) {
		if v == "" {
			continue
		}
		if _, ok := catIndex[v]; !ok {
			catIndex[v] = len(cats)
			cats = append(cats, v)
		}
	}
	if len(cats) == 0 {
		return nil
	}
	sortCategories(cats)
	for i, c := range cats {
		catIndex[c] = i
	}

	counts := make([][]int, len(cats))
	for i := range counts {
		counts[i] = make([]int, width)
	}
	bases := make([]int, width)
	numeric := make([][]float64, width)
	wantNumbers := qt == detect.Scale || qt == detect.Numeric || qt == detect.Ranking
	var cols []int
	for i := 0; i < ds.Len(); i++ {
		row := ds.Row(i)
		v := row.Value(variable)
		if v == "" {
			continue
		}
		cols = lay.columnsFor(row, cols)
		ci := catIndex[v]
		var f float64
		var isNum bool
		if wantNumbers {
			if x, err := strconv.ParseFloat(v, 64); err == nil {
				f, isNum = x, true
			}
		}
		for _, c := range cols {
			counts[ci][c]++
			bases[c]++
			if isNum {
				numeric[c] = append(numeric[c], f)
			}
		}
	}

	res := &Result{
		Name:             variable,
		DisplayName:      displayName,
		Headers:          append([]string(nil), lay.Headers...),
		BaseValues:       bases,
		QuestionType:     qt,
		ValidationErrors: []string{},
	}
	for i, c := range cats {
		res.RowLabels = append(res.RowLabels, c)
		res.Absolute = append(res.Absolute, counts[i])
		res.Percentage = append(res.Percentage, percentRow(counts[i], bases))
	}
	res.RowLabels = append(res.RowLabels, TotalHeader)
	res.Absolute = append(res.Absolute, append([]int(nil), bases...))
	totalPct := make([]string, width)
	for c, b := range bases {
		totalPct[c] = "0%"
		if b > 0 {
			totalPct[c] = "100%"
		}
	}
	res.Percentage = append(res.Percentage, totalPct)

	switch qt {
	case detect.Scale:
		res.Scale = scaleBoxes(numeric, bases)
		res.Descriptives = describeColumns(numeric)
	case detect.Numeric:
		res.Descriptives = describeColumns(numeric)
	case detect.Ranking:
		res.Ranking = singleColumnRanking(numeric, bases)
	case detect.SingleChoice, detect.Binary:
		res.ValidationErrors = append(res.ValidationErrors, checkPercentSums(res, len(cats))...)
	case detect.MultipleChoice, detect.OpenEnded, detect.Date:
	}
	res.ValidationErrors = append(res.ValidationErrors, emptyColumnWarnings(res)...)
	return res
}

func describeColumns(values [][]float64) []stats.Descriptive {
	out := make([]stats.Descriptive, len(values))
	for i, v := range values {
		out[i] = stats.Describe(v)
	}
	return out
}

// scaleBoxes derives top and bottom box scores. Three-point boxes need a scale of six or more
// points. Returns nil when no value is numeric.
func scaleBoxes(values [][]float64, bases []int) *ScaleCalculations {
	if len(values) == 0 || len(values[0]) == 0 {
		return nil
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values[0] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	sc := &ScaleCalculations{Min: int(math.Round(lo)), Max: int(math.Round(hi))}
	sc.Points = sc.Max - sc.Min + 1
	depth := 2
	if sc.Points >= 6 {
		depth = 3
	}
	depth = min(depth, sc.Points)

	count := func(keep func(float64) bool) []int {
		out := make([]int, len(values))
		for c, vs := range values {
			for _, v := range vs {
				if keep(v) {
					out[c]++
				}
			}
		}
		return out
	}
	for k := 1; k <= depth; k++ {
		cut := float64(sc.Max - k + 1)
		label := boxLabel("Top", k, sc.Max-k+1, sc.Max)
		sc.Boxes = append(sc.Boxes, newBox(label, count(func(v float64) bool { return v >= cut }), bases))
	}
	for k := 1; k <= depth; k++ {
		cut := float64(sc.Min + k - 1)
		label := boxLabel("Bottom", k, sc.Min, sc.Min+k-1)
		sc.Boxes = append(sc.Boxes, newBox(label, count(func(v float64) bool { return v <= cut }), bases))
	}
	return sc
}

func boxLabel(side string, k, from, to int) string {
	if k == 1 {
		return fmt.Sprintf("%s Box (%d)", side, from)
	}
	return fmt.Sprintf("%s %d Box (%d-%d)", side, k, from, to)
}

// singleColumnRanking counts rank positions 1, 2, 3 and the cumulative 1+2 and 1+2+3 views.
func singleColumnRanking(values [][]float64, bases []int) *RankingCalculations {
	count := func(keep func(float64) bool) []int {
		out := make([]int, len(values))
		for c, vs := range values {
			for _, v := range vs {
				if keep(v) {
					out[c]++
				}
			}
		}
		return out
	}
	rc := &RankingCalculations{MaxRanks: maxRankViews}
	for r := 1; r <= maxRankViews; r++ {
		r := float64(r)
		rc.Boxes = append(rc.Boxes, newBox(fmt.Sprintf("Rank %g", r), count(func(v float64) bool { return v == r }), bases))
	}
	rc.Boxes = append(rc.Boxes,
		newBox("Rank 1+2", count(func(v float64) bool { return v >= 1 && v <= 2 }), bases),
		newBox("Rank 1+2+3", count(func(v float64) bool { return v >= 1 && v <= 3 }), bases),
	)
	return rc
}
