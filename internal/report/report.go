// Package report renders cross-tab runs as Markdown, XLSX workbooks and JSON documents.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/tabloom-cli/internal/crosstab"
	apperrors "github.com/KaramelBytes/tabloom-cli/internal/errors"
	"github.com/KaramelBytes/tabloom-cli/internal/utils"
)

// Options selects which value matrices are rendered.
type Options struct {
	Counts      bool `json:"counts" yaml:"counts"`
	Percentages bool `json:"percentages" yaml:"percentages"`
}

// DefaultOptions renders both counts and percentages.
func DefaultOptions() Options { return Options{Counts: true, Percentages: true} }

// Validate requires at least one matrix.
func (o Options) Validate() error {
	if !o.Counts && !o.Percentages {
		return apperrors.NewValidationError("select counts, percentages or both")
	}
	return nil
}

// Document is the JSON export of a run.
type Document struct {
	GeneratedAt  time.Time         `json:"generatedAt"`
	TotalRows    int               `json:"totalRows"`
	FilteredRows int               `json:"filteredRows"`
	Config       crosstab.Config   `json:"config"`
	Banners      []crosstab.Banner `json:"banners"`
	Results      []crosstab.Result `json:"results"`
}

// WriteJSON writes the run and the config that produced it to path.
func WriteJSON(path string, run *crosstab.Run, cfg crosstab.Config) error {
	doc := Document{
		GeneratedAt:  time.Now().UTC(),
		TotalRows:    run.TotalRows,
		FilteredRows: run.FilteredRows,
		Config:       cfg,
		Banners:      run.Banners,
		Results:      run.Results,
	}
	b, err := utils.PrettyJSON(doc)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(path, b)
}

// formatCell renders one cell for text output. Flags follow the percentage.
func formatCell(count int, pct, flag string, opts Options) string {
	switch {
	case opts.Counts && opts.Percentages:
		return fmt.Sprintf("%d (%s%s)", count, pct, flag)
	case opts.Percentages:
		return pct + flag
	default:
		return strconv.Itoa(count)
	}
}

func safeVal(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
}

func title(r crosstab.Result) string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.Name
}
