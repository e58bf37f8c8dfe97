package crosstab

import (
	"strings"

	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
	"github.com/KaramelBytes/tabloom-cli/internal/detect"
	"github.com/KaramelBytes/tabloom-cli/internal/textnorm"
)

// NetLabel is the trailing row of a multi-select table.
const NetLabel = "NET: Any Response"

var unselectedValues = map[string]struct{}{
	"0": {}, "no": {}, "false": {}, "n/a": {}, "na": {}, "null": {}, "undefined": {},
}

// Selected reports whether a multi-select cell counts as a selection.
func Selected(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return false
	}
	_, no := unselectedValues[v]
	return !no
}

// MultiSelectCrossTab tabulates a battery with one row per column. Every column shares the base
// of rows selecting anything, so a column's percentages can add up past 100.
// Returns nil when the dataset has no rows.
func MultiSelectCrossTab(ds *dataset.Dataset, name string, columns []string, lay *Layout, displayName string) *Result {
	if ds.Len() == 0 {
		return nil
	}
	width := lay.Width()
	counts := make([][]int, len(columns))
	for i := range counts {
		counts[i] = make([]int, width)
	}
	bases := make([]int, width)
	var cols []int
	for i := 0; i < ds.Len(); i++ {
		row := ds.Row(i)
		cols = lay.columnsFor(row, cols)
		picked := false
		for j, col := range columns {
			if !Selected(row.Value(col)) {
				continue
			}
			picked = true
			for _, c := range cols {
				counts[j][c]++
			}
		}
		if picked {
			for _, c := range cols {
				bases[c]++
			}
		}
	}

	res := &Result{
		Name:             name,
		DisplayName:      displayName,
		Headers:          append([]string(nil), lay.Headers...),
		BaseValues:       bases,
		QuestionType:     detect.MultipleChoice,
		ValidationErrors: []string{},
	}
	for j, label := range OptionLabels(columns) {
		res.RowLabels = append(res.RowLabels, label)
		res.Absolute = append(res.Absolute, counts[j])
		res.Percentage = append(res.Percentage, percentRow(counts[j], bases))
	}
	res.RowLabels = append(res.RowLabels, NetLabel)
	res.Absolute = append(res.Absolute, append([]int(nil), bases...))
	res.Percentage = append(res.Percentage, percentRow(bases, bases))
	res.ValidationErrors = append(res.ValidationErrors, emptyColumnWarnings(res)...)
	return res
}

// OptionLabels strips a battery's shared question stem from each column header. The stem is the
// delimiter-based question root when every column yields the same one, else the longest common
// prefix cut back to a word boundary.
func OptionLabels(columns []string) []string {
	out := make([]string, len(columns))
	if len(columns) == 0 {
		return out
	}
	root0, _, delim0 := detect.QuestionRoot(columns[0])
	sameRoot := delim0 != ""
	options := make([]string, len(columns))
	for i, c := range columns {
		root, opt, delim := detect.QuestionRoot(c)
		if delim == "" || root != root0 || strings.TrimSpace(opt) == "" {
			sameRoot = false
			break
		}
		options[i] = opt
	}
	if sameRoot && len(columns) > 1 {
		for i, o := range options {
			out[i] = textnorm.CleanLabel(o)
		}
		return out
	}
	prefix := commonPrefix(columns)
	for i, c := range columns {
		label := strings.Trim(strings.TrimPrefix(c, prefix), " -_:|.")
		if label == "" || len(columns) == 1 {
			label = c
		}
		out[i] = textnorm.CleanLabel(label)
	}
	return out
}

// commonPrefix returns the longest prefix shared by all values, cut at the last separator so
// that "Q1_Apple"/"Q1_Avocado" yields "Q1_" rather than "Q1_A".
func commonPrefix(vals []string) string {
	p := vals[0]
	for _, v := range vals[1:] {
		for !strings.HasPrefix(v, p) {
			p = p[:len(p)-1]
		}
	}
	if i := strings.LastIndexAny(p, " -_:|."); i >= 0 {
		return p[:i+1]
	}
	return ""
}
