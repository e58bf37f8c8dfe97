package crosstab

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
	"github.com/KaramelBytes/tabloom-cli/internal/detect"
)

// maxRankViews caps how many rank levels a ranking table reports.
const maxRankViews = 3

type rankView struct {
	label  string
	levels []int
}

// rankViews lists single-rank views for each level, then the cumulative 1+2 and 1+2+3 views
// that the available levels allow.
func rankViews(levels int) []rankView {
	levels = min(levels, maxRankViews)
	var views []rankView
	for l := 0; l < levels; l++ {
		views = append(views, rankView{label: fmt.Sprintf("Rank %d", l+1), levels: []int{l}})
	}
	if levels >= 2 {
		views = append(views, rankView{label: "Rank 1+2", levels: []int{0, 1}})
	}
	if levels >= 3 {
		views = append(views, rankView{label: "Rank 1+2+3", levels: []int{0, 1, 2}})
	}
	return views
}

// RankingCrossTab tabulates a ranking battery as one section per rank view with a row per
// option, labelled "<view> - <option>". A cell counts rows that gave the option any of the
// view's ranks; the base counts rows that ranked anything. Returns nil when the dataset has no rows.
func RankingCrossTab(ds *dataset.Dataset, name string, rg RankingGroup, lay *Layout, displayName string) *Result {
	if ds.Len() == 0 {
		return nil
	}
	width := lay.Width()
	views := rankViews(len(rg.Levels))
	counts := make([][][]int, len(views))
	for v := range views {
		counts[v] = make([][]int, len(rg.Options))
		for o := range rg.Options {
			counts[v][o] = make([]int, width)
		}
	}
	bases := make([]int, width)
	marked := make([][]bool, min(len(rg.Levels), maxRankViews))
	for l := range marked {
		marked[l] = make([]bool, len(rg.Options))
	}

	var cols []int
	for i := 0; i < ds.Len(); i++ {
		row := ds.Row(i)
		ranked := false
		for l := range marked {
			for o := range rg.Options {
				marked[l][o] = o < len(rg.Levels[l]) && Selected(row.Value(rg.Levels[l][o]))
				ranked = ranked || marked[l][o]
			}
		}
		if !ranked {
			continue
		}
		cols = lay.columnsFor(row, cols)
		for _, c := range cols {
			bases[c]++
		}
		for v, view := range views {
			for o := range rg.Options {
				hit := false
				for _, l := range view.levels {
					hit = hit || marked[l][o]
				}
				if !hit {
					continue
				}
				for _, c := range cols {
					counts[v][o][c]++
				}
			}
		}
	}

	res := &Result{
		Name:             name,
		DisplayName:      displayName,
		Headers:          append([]string(nil), lay.Headers...),
		BaseValues:       bases,
		QuestionType:     detect.Ranking,
		ValidationErrors: []string{},
		Ranking: &RankingCalculations{
			MaxRanks: len(marked),
			Options:  append([]string(nil), rg.Options...),
		},
	}
	for v, view := range views {
		res.Ranking.Views = append(res.Ranking.Views, view.label)
		for o, opt := range rg.Options {
			res.RowLabels = append(res.RowLabels, view.label+" - "+strings.TrimSpace(opt))
			res.Absolute = append(res.Absolute, counts[v][o])
			res.Percentage = append(res.Percentage, percentRow(counts[v][o], bases))
		}
	}
	res.ValidationErrors = append(res.ValidationErrors, emptyColumnWarnings(res)...)
	return res
}
