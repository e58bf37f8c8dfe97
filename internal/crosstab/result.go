// Package crosstab builds survey cross-tabulations: one table per analysis variable, broken
// down by banner variables and annotated with significance flags.
package crosstab

import (
	"fmt"

	"github.com/KaramelBytes/tabloom-cli/internal/detect"
	"github.com/KaramelBytes/tabloom-cli/internal/stats"
)

// Result is one cross-tab table. Absolute, Percentage, Significance and RowLabels are parallel;
// every row has one cell per header.
type Result struct {
	Name             string              `json:"name"`
	DisplayName      string              `json:"displayName"`
	Absolute         [][]int             `json:"absolute"`
	Percentage       [][]string          `json:"percentage"`
	RowLabels        []string            `json:"rowLabels"`
	Headers          []string            `json:"headers"`
	BaseValues       []int               `json:"baseValues"`
	Significance     [][]string          `json:"significance"`
	QuestionType     detect.QuestionType `json:"questionType"`
	ValidationErrors []string            `json:"validationErrors"`

	Scale        *ScaleCalculations   `json:"scaleCalculations,omitempty"`
	Ranking      *RankingCalculations `json:"rankingCalculations,omitempty"`
	OpenEnded    *OpenEndedData       `json:"openEndedData,omitempty"`
	Descriptives []stats.Descriptive  `json:"descriptives,omitempty"`
}

// Box is a derived row such as "Top 2 Box" or "Rank 1+2", one value per header.
type Box struct {
	Label       string   `json:"label"`
	Counts      []int    `json:"counts"`
	Percentages []string `json:"percentages"`
}

// ScaleCalculations holds top/bottom box scores for a scale question.
type ScaleCalculations struct {
	Min    int   `json:"min"`
	Max    int   `json:"max"`
	Points int   `json:"points"`
	Boxes  []Box `json:"boxes"`
}

// RankingCalculations describes a ranking table. Boxes is set for single-column rankings; battery
// tables carry their views as rows and list them in Views.
type RankingCalculations struct {
	MaxRanks int      `json:"maxRanks"`
	Options  []string `json:"options,omitempty"`
	Views    []string `json:"views,omitempty"`
	Boxes    []Box    `json:"boxes,omitempty"`
}

// OpenEndedData carries verbatim samples and the themes found in them.
type OpenEndedData struct {
	TotalResponses int            `json:"totalResponses"`
	Samples        []string       `json:"samples"`
	Themes         []ThemeSummary `json:"themes"`
}

// ThemeSummary is one theme row's metadata.
type ThemeSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Count       int      `json:"count"`
	Samples     []string `json:"samples"`
}

// CheckShape verifies the parallel-array invariant.
func (r *Result) CheckShape() error {
	n := len(r.RowLabels)
	if len(r.Absolute) != n || len(r.Percentage) != n || len(r.Significance) != n {
		return fmt.Errorf("table %q: %d labels, %d count rows, %d percentage rows, %d significance rows",
			r.Name, n, len(r.Absolute), len(r.Percentage), len(r.Significance))
	}
	w := len(r.Headers)
	if len(r.BaseValues) != w {
		return fmt.Errorf("table %q: %d bases for %d headers", r.Name, len(r.BaseValues), w)
	}
	for i := 0; i < n; i++ {
		if len(r.Absolute[i]) != w || len(r.Percentage[i]) != w || len(r.Significance[i]) != w {
			return fmt.Errorf("table %q: row %d (%q) is not %d cells wide", r.Name, i, r.RowLabels[i], w)
		}
	}
	return nil
}

// percentString formats round(count/base*100) as "NN%".
func percentString(count, base int) string {
	return fmt.Sprintf("%d%%", stats.Percent(count, base))
}

func percentRow(counts, bases []int) []string {
	out := make([]string, len(counts))
	for i, c := range counts {
		out[i] = percentString(c, bases[i])
	}
	return out
}

func newBox(label string, counts, bases []int) Box {
	return Box{Label: label, Counts: counts, Percentages: percentRow(counts, bases)}
}
