package crosstab

import (
	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
	"github.com/KaramelBytes/tabloom-cli/internal/detect"
	"github.com/KaramelBytes/tabloom-cli/internal/openend"
)

const (
	// FullResponsesLabel heads an open-ended table.
	FullResponsesLabel = "FULL RESPONSES"
	// SeparatorLabel marks the empty row between the full-response row and the themes.
	SeparatorLabel = "---"
	// OtherLabel counts answers that hit no library theme.
	OtherLabel = "Other"

	maxFullSamples  = 10
	maxThemeSamples = 5
)

// OpenEndedCrossTab counts non-blank answers and breaks them down by library theme. Themes with
// fewer than minThemeSize answers are left out. Returns nil when the column has no answers.
func OpenEndedCrossTab(ds *dataset.Dataset, variable string, lay *Layout, displayName string, minThemeSize int) *Result {
	width := lay.Width()
	var texts []string
	var rowCols [][]int
	bases := make([]int, width)
	for i := 0; i < ds.Len(); i++ {
		row := ds.Row(i)
		v := row.Value(variable)
		if v == "" {
			continue
		}
		cols := lay.columnsFor(row, nil)
		for _, c := range cols {
			bases[c]++
		}
		texts = append(texts, v)
		rowCols = append(rowCols, cols)
	}
	if len(texts) == 0 {
		return nil
	}

	data := &OpenEndedData{
		TotalResponses: len(texts),
		Samples:        append([]string(nil), texts[:min(len(texts), maxFullSamples)]...),
		Themes:         []ThemeSummary{},
	}
	res := &Result{
		Name:             variable,
		DisplayName:      displayName,
		Headers:          append([]string(nil), lay.Headers...),
		BaseValues:       bases,
		QuestionType:     detect.OpenEnded,
		ValidationErrors: []string{},
		OpenEnded:        data,
		RowLabels:        []string{FullResponsesLabel, SeparatorLabel},
		Absolute:         [][]int{append([]int(nil), bases...), make([]int, width)},
		Percentage:       [][]string{percentRow(bases, bases), make([]string, width)},
	}

	matches, unmatched := openend.ExtractThemes(texts, minThemeSize)
	addTheme := func(summary ThemeSummary, indices []int) {
		counts := make([]int, width)
		for _, idx := range indices {
			for _, c := range rowCols[idx] {
				counts[c]++
			}
			if len(summary.Samples) < maxThemeSamples {
				summary.Samples = append(summary.Samples, texts[idx])
			}
		}
		summary.Count = len(indices)
		data.Themes = append(data.Themes, summary)
		res.RowLabels = append(res.RowLabels, summary.Name)
		res.Absolute = append(res.Absolute, counts)
		res.Percentage = append(res.Percentage, percentRow(counts, bases))
	}
	for _, m := range matches {
		addTheme(ThemeSummary{
			Name:        m.Theme.Name,
			Description: m.Theme.Description,
			Keywords:    append([]string(nil), m.Theme.Keywords...),
			Samples:     []string{},
		}, m.Indices)
	}
	// Answers in themes below minThemeSize are in no row.
	if len(matches) > 0 && len(unmatched) > 0 && len(unmatched) >= minThemeSize {
		addTheme(ThemeSummary{
			Name:        OtherLabel,
			Description: "Responses that match no known theme",
			Keywords:    []string{},
			Samples:     []string{},
		}, unmatched)
	}
	if len(matches) == 0 {
		res.ValidationErrors = append(res.ValidationErrors, "no themes extracted")
	}
	res.ValidationErrors = append(res.ValidationErrors, emptyColumnWarnings(res)...)
	return res
}
