package crosstab

import (
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
)

// TotalHeader labels column 0 of every table.
const TotalHeader = "Total"

// Banner is one grouping variable's span of columns.
type Banner struct {
	Variable string   `json:"variable"`
	Label    string   `json:"label"`
	Answers  []string `json:"answers"`
	// StartCol and EndCol are the inclusive column span in Layout.Headers.
	StartCol int `json:"startCol"`
	EndCol   int `json:"endCol"`
}

// Layout is the composed column structure shared by every table of a run.
type Layout struct {
	Headers []string
	Banners []Banner
	lookup  []map[string]int
}

// BuildLayout composes a leading Total column followed by each banner variable's answers, sorted,
// as found in ds. A banner without answers contributes no columns.
func BuildLayout(ds *dataset.Dataset, bannerVars []string, label func(string) string) *Layout {
	l := &Layout{Headers: []string{TotalHeader}}
	for _, v := range bannerVars {
		seen := make(map[string]struct{})
		for _, val := range ds.Column(v) {
			if val != "" {
				seen[val] = struct{}{}
			}
		}
		answers := make([]string, 0, len(seen))
		for a := range seen {
			answers = append(answers, a)
		}
		sortCategories(answers)

		b := Banner{Variable: v, Label: label(v), Answers: answers, StartCol: len(l.Headers)}
		idx := make(map[string]int, len(answers))
		for _, a := range answers {
			idx[a] = len(l.Headers)
			l.Headers = append(l.Headers, a)
		}
		b.EndCol = len(l.Headers) - 1
		l.Banners = append(l.Banners, b)
		l.lookup = append(l.lookup, idx)
	}
	return l
}

// Width is the number of columns.
func (l *Layout) Width() int { return len(l.Headers) }

// columnsFor appends to buf the columns a row counts toward: Total plus at most one answer column
// per banner.
func (l *Layout) columnsFor(row dataset.Row, buf []int) []int {
	buf = append(buf[:0], 0)
	for i, b := range l.Banners {
		if c, ok := l.lookup[i][row.Value(b.Variable)]; ok {
			buf = append(buf, c)
		}
	}
	return buf
}

// sortCategories orders values numerically when all of them are numbers, lexically otherwise.
func sortCategories(vals []string) {
	nums := make(map[string]float64, len(vals))
	for _, v := range vals {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			sort.Strings(vals)
			return
		}
		nums[v] = f
	}
	sort.SliceStable(vals, func(i, j int) bool {
		if nums[vals[i]] != nums[vals[j]] {
			return nums[vals[i]] < nums[vals[j]]
		}
		return vals[i] < vals[j]
	})
}
