package crosstab

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
	"github.com/KaramelBytes/tabloom-cli/internal/detect"
	apperrors "github.com/KaramelBytes/tabloom-cli/internal/errors"
	"github.com/KaramelBytes/tabloom-cli/internal/filter"
	"github.com/KaramelBytes/tabloom-cli/internal/logging"
	"github.com/KaramelBytes/tabloom-cli/internal/openend"
	"github.com/KaramelBytes/tabloom-cli/internal/stats"
)

// detectSampleRows bounds how many values are used to type a column the config leaves untyped.
const detectSampleRows = 200

// Run is the output of one Generate call.
type Run struct {
	Results      []Result `json:"results"`
	Banners      []Banner `json:"banners"`
	TotalRows    int      `json:"totalRows"`
	FilteredRows int      `json:"filteredRows"`
}

// Generate validates cfg, filters ds and builds one table per table variable, in config order.
// Variables without valid data are skipped with a warning. Custom variables fail the run with an
// error wrapping apperrors.ErrUnsupported.
func Generate(ctx context.Context, ds *dataset.Dataset, cfg Config, coding openend.Settings) (*Run, error) {
	if err := cfg.Validate(ds); err != nil {
		return nil, err
	}
	if err := coding.Validate(); err != nil {
		return nil, err
	}
	log := logging.Component("crosstab")

	filtered := filter.Apply(ds, cfg.Filters, cfg.NestedFilters)
	lay := BuildLayout(filtered, cfg.BannerVariables, cfg.displayName)
	run := &Run{
		Results:      []Result{},
		Banners:      lay.Banners,
		TotalRows:    ds.Len(),
		FilteredRows: filtered.Len(),
	}
	log.Debug("generating cross-tabs",
		slog.Int("rows", run.TotalRows),
		slog.Int("filtered_rows", run.FilteredRows),
		slog.Int("tables", len(cfg.TableVariables)),
		slog.Int("columns", lay.Width()),
	)

	alpha := cfg.alpha()
	for _, v := range cfg.TableVariables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := buildTable(filtered, cfg, v, lay, coding)
		if err != nil {
			return nil, err
		}
		if res == nil {
			log.Warn("no valid data for variable, skipping", slog.String("variable", v))
			continue
		}
		res.Significance = stats.PerformSignificanceTests(res.Absolute, res.BaseValues, alpha)
		if err := res.CheckShape(); err != nil {
			return nil, fmt.Errorf("build table: %w", err)
		}
		for _, w := range res.ValidationErrors {
			log.Warn("table warning", slog.String("variable", v), slog.String("warning", w))
		}
		run.Results = append(run.Results, *res)
	}
	return run, nil
}

func buildTable(ds *dataset.Dataset, cfg Config, v string, lay *Layout, coding openend.Settings) (*Result, error) {
	display := cfg.displayName(v)
	if _, ok := cfg.CustomVariables[v]; ok {
		return nil, apperrors.NewUnsupportedError(fmt.Sprintf("custom variable %q cannot be tabulated", v)).
			WithContext("variable", v)
	}
	if cols, ok := cfg.MultiSelectGroups[v]; ok {
		return MultiSelectCrossTab(ds, v, cols, lay, display), nil
	}
	if rg, ok := cfg.RankingGroups[v]; ok {
		return RankingCrossTab(ds, v, rg, lay, display), nil
	}

	qt, ok := cfg.QuestionTypes[v]
	if !ok {
		col := ds.Column(v)
		qt = detect.DetectColumnType(v, col[:min(len(col), detectSampleRows)]).Type
	}
	switch qt {
	case detect.OpenEnded:
		return OpenEndedCrossTab(ds, v, lay, display, coding.MinCategorySize), nil
	case detect.SingleChoice, detect.MultipleChoice, detect.Scale, detect.Ranking,
		detect.Binary, detect.Numeric, detect.Date:
		return RegularCrossTab(ds, v, qt, lay, display), nil
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("variable %q has unknown question type %q", v, qt))
	}
}
