package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/tabloom-cli/internal/crosstab"
	"github.com/KaramelBytes/tabloom-cli/internal/stats"
)

// IndexSheet lists every table in a workbook.
const IndexSheet = "Index"

const (
	titleRow     = 1
	bannerRow    = 3
	answerRow    = 4
	firstDataRow = 5
)

// TableSheet is the sheet name used for the i-th table (0-based).
func TableSheet(i int) string { return fmt.Sprintf("T%d", i+1) }

// WriteXLSX saves a workbook for results to path.
func WriteXLSX(path string, results []crosstab.Result, banners []crosstab.Banner, cfg *crosstab.Config, opts Options) error {
	f, err := Workbook(results, banners, cfg, opts)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

type styles struct {
	bold     int
	centered int
}

// Workbook builds an Index sheet followed by one sheet per table. Each table sheet opens with a
// two-row banner header: banner labels merged across their answers, then the answers.
func Workbook(results []crosstab.Result, banners []crosstab.Banner, cfg *crosstab.Config, opts Options) (*excelize.File, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), IndexSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename index sheet: %w", err)
	}
	var st styles
	var err error
	if st.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		f.Close()
		return nil, fmt.Errorf("create style: %w", err)
	}
	if st.centered, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("create style: %w", err)
	}

	if err := writeIndex(f, results, banners, cfg, st); err != nil {
		f.Close()
		return nil, err
	}
	for i, r := range results {
		if err := writeTable(f, TableSheet(i), r, banners, opts, st); err != nil {
			f.Close()
			return nil, fmt.Errorf("table %q: %w", r.Name, err)
		}
	}
	return f, nil
}

// sheetWriter tracks the next free row of a sheet and keeps the first write error.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
	err   error
}

func (w *sheetWriter) set(col, row int, v any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellValue(w.sheet, cell, v)
}

func (w *sheetWriter) style(col1, row1, col2, row2, id int) {
	if w.err != nil {
		return
	}
	from, _ := excelize.CoordinatesToCellName(col1, row1)
	to, _ := excelize.CoordinatesToCellName(col2, row2)
	w.err = w.f.SetCellStyle(w.sheet, from, to, id)
}

func (w *sheetWriter) merge(col1, row1, col2, row2 int) {
	if w.err != nil || (col1 == col2 && row1 == row2) {
		return
	}
	from, _ := excelize.CoordinatesToCellName(col1, row1)
	to, _ := excelize.CoordinatesToCellName(col2, row2)
	w.err = w.f.MergeCell(w.sheet, from, to)
}

// line writes label followed by cells on the next row.
func (w *sheetWriter) line(label string, cells ...any) {
	w.set(1, w.row, label)
	for i, c := range cells {
		w.set(i+2, w.row, c)
	}
	w.row++
}

func writeIndex(f *excelize.File, results []crosstab.Result, banners []crosstab.Banner, cfg *crosstab.Config, st styles) error {
	w := &sheetWriter{f: f, sheet: IndexSheet, row: 1}
	w.line("#", "Table", "Type", "Base", "Warnings")
	w.style(1, 1, 5, 1, st.bold)
	for i, r := range results {
		base := 0
		if len(r.BaseValues) > 0 {
			base = r.BaseValues[0]
		}
		row := w.row
		w.line(TableSheet(i), title(r), string(r.QuestionType), base, len(r.ValidationErrors))
		if w.err == nil {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			w.err = f.SetCellHyperLink(IndexSheet, cell, TableSheet(i)+"!A1", "Location")
		}
	}
	w.row++
	for _, b := range banners {
		w.line("Banner", b.Label, strings.Join(b.Answers, ", "))
	}
	if cfg != nil {
		alpha := cfg.Alpha
		if alpha <= 0 {
			alpha = stats.DefaultAlpha
		}
		w.line("Alpha", alpha)
		w.line("Filters", len(cfg.Filters)+len(cfg.NestedFilters))
	}
	if w.err != nil {
		return fmt.Errorf("write index: %w", w.err)
	}
	if err := f.SetColWidth(IndexSheet, "B", "B", 50); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, r crosstab.Result, banners []crosstab.Banner, opts Options, st styles) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	w := &sheetWriter{f: f, sheet: sheet}
	width := len(r.Headers)
	w.set(1, titleRow, title(r))
	w.style(1, titleRow, 1, titleRow, st.bold)
	w.set(2, titleRow, string(r.QuestionType))

	// Column 0 of a result lands in sheet column 2.
	w.set(2, bannerRow, crosstab.TotalHeader)
	w.merge(2, bannerRow, 2, answerRow)
	for _, b := range banners {
		if b.EndCol < b.StartCol || b.EndCol >= width {
			continue
		}
		w.set(b.StartCol+2, bannerRow, b.Label)
		w.merge(b.StartCol+2, bannerRow, b.EndCol+2, bannerRow)
	}
	for c := 1; c < width; c++ {
		w.set(c+2, answerRow, r.Headers[c])
	}
	w.style(2, bannerRow, width+1, answerRow, st.centered)

	w.row = firstDataRow
	w.line("Base", toAny(r.BaseValues)...)
	w.style(1, firstDataRow, width+1, firstDataRow, st.bold)
	for i, label := range r.RowLabels {
		if label == crosstab.SeparatorLabel {
			w.row++
			continue
		}
		writeValues(w, label, r.Absolute[i], r.Percentage[i], r.Significance[i], opts)
	}
	if r.Scale != nil {
		writeBoxSection(w, fmt.Sprintf("Scale %d-%d", r.Scale.Min, r.Scale.Max), r.Scale.Boxes, opts, st)
	}
	if r.Ranking != nil {
		writeBoxSection(w, "Rank boxes", r.Ranking.Boxes, opts, st)
	}
	if len(r.Descriptives) > 0 {
		w.row++
		mean := make([]any, len(r.Descriptives))
		median := make([]any, len(r.Descriptives))
		sd := make([]any, len(r.Descriptives))
		for c, d := range r.Descriptives {
			mean[c], median[c], sd[c] = d.Mean, d.Median, d.StdDev
		}
		w.line("Mean", mean...)
		w.line("Median", median...)
		w.line("Std dev", sd...)
	}
	if oe := r.OpenEnded; oe != nil && len(oe.Samples) > 0 {
		w.row++
		w.line("Sample responses")
		w.style(1, w.row-1, 1, w.row-1, st.bold)
		for _, s := range oe.Samples {
			w.line(s)
		}
	}
	if len(r.ValidationErrors) > 0 {
		w.row++
		w.line("Notes")
		w.style(1, w.row-1, 1, w.row-1, st.bold)
		for _, e := range r.ValidationErrors {
			w.line(e)
		}
	}
	if w.err != nil {
		return w.err
	}
	return f.SetColWidth(sheet, "A", "A", 40)
}

// writeValues emits a count row, a percentage row, or both. Significance flags follow the
// percentages; count-only output carries no flags.
func writeValues(w *sheetWriter, label string, counts []int, pcts, flags []string, opts Options) {
	if opts.Counts {
		w.line(label, toAny(counts)...)
	}
	if opts.Percentages {
		cells := make([]any, len(pcts))
		for c, p := range pcts {
			flag := ""
			if c < len(flags) {
				flag = flags[c]
			}
			cells[c] = p + flag
		}
		pctLabel := label
		if opts.Counts {
			pctLabel = ""
		}
		w.line(pctLabel, cells...)
	}
}

func writeBoxSection(w *sheetWriter, heading string, boxes []crosstab.Box, opts Options, st styles) {
	if len(boxes) == 0 {
		return
	}
	w.row++
	w.line(heading)
	w.style(1, w.row-1, 1, w.row-1, st.bold)
	for _, b := range boxes {
		writeValues(w, b.Label, b.Counts, b.Percentages, nil, opts)
	}
}

func toAny(v []int) []any {
	out := make([]any, len(v))
	for i, n := range v {
		out[i] = n
	}
	return out
}
