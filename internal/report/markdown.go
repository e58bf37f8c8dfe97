package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/tabloom-cli/internal/crosstab"
	"github.com/KaramelBytes/tabloom-cli/internal/stats"
)

// Markdown renders every table as a pipe table with banner context, derived rows and notes.
func Markdown(results []crosstab.Result, banners []crosstab.Banner, opts Options) string {
	var b strings.Builder
	b.WriteString("[CROSS-TAB SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Tables: %d\n", len(results)))
	for _, bn := range banners {
		b.WriteString(fmt.Sprintf("Banner: %s (%s)\n", safeVal(bn.Label), safeVal(strings.Join(bn.Answers, ", "))))
	}
	b.WriteString(fmt.Sprintf("Significance: %s higher, %s lower than Total\n", stats.Higher, stats.Lower))

	for _, r := range results {
		b.WriteString(fmt.Sprintf("\n[TABLE] %s (%s)\n", safeVal(title(r)), r.QuestionType))
		writeHeader(&b, "", r.Headers)
		writeRow(&b, "Base", intCells(r.BaseValues))
		for i, label := range r.RowLabels {
			if label == crosstab.SeparatorLabel {
				continue
			}
			cells := make([]string, len(r.Headers))
			for c := range cells {
				cells[c] = formatCell(r.Absolute[i][c], r.Percentage[i][c], r.Significance[i][c], opts)
			}
			writeRow(&b, label, cells)
		}
		if r.Scale != nil && len(r.Scale.Boxes) > 0 {
			b.WriteString(fmt.Sprintf("\n[SCALE %d-%d]\n", r.Scale.Min, r.Scale.Max))
			writeBoxes(&b, r.Headers, r.Scale.Boxes, opts)
		}
		if r.Ranking != nil && len(r.Ranking.Boxes) > 0 {
			b.WriteString("\n[RANK BOXES]\n")
			writeBoxes(&b, r.Headers, r.Ranking.Boxes, opts)
		}
		if len(r.Descriptives) > 0 {
			b.WriteString("\n[DESCRIPTIVES]\n")
			writeHeader(&b, "", r.Headers)
			stat := func(label string, f func(stats.Descriptive) float64) {
				cells := make([]string, len(r.Descriptives))
				for c, d := range r.Descriptives {
					cells[c] = "-"
					if d.N > 0 {
						cells[c] = fmt.Sprintf("%.2f", f(d))
					}
				}
				writeRow(&b, label, cells)
			}
			stat("Mean", func(d stats.Descriptive) float64 { return d.Mean })
			stat("Median", func(d stats.Descriptive) float64 { return d.Median })
			stat("Std dev", func(d stats.Descriptive) float64 { return d.StdDev })
		}
		if oe := r.OpenEnded; oe != nil {
			b.WriteString(fmt.Sprintf("\n[RESPONSES] %d total\n", oe.TotalResponses))
			for _, s := range oe.Samples {
				b.WriteString("- " + safeVal(s) + "\n")
			}
			for _, th := range oe.Themes {
				b.WriteString(fmt.Sprintf("- %s (%d): %s\n", th.Name, th.Count, safeVal(strings.Join(th.Samples, " | "))))
			}
		}
		if len(r.ValidationErrors) > 0 {
			b.WriteString("\n[NOTES]\n")
			for _, w := range r.ValidationErrors {
				b.WriteString("- " + w + "\n")
			}
		}
	}
	return b.String()
}

func writeBoxes(b *strings.Builder, headers []string, boxes []crosstab.Box, opts Options) {
	writeHeader(b, "", headers)
	for _, bx := range boxes {
		cells := make([]string, len(bx.Counts))
		for c := range cells {
			cells[c] = formatCell(bx.Counts[c], bx.Percentages[c], "", opts)
		}
		writeRow(b, bx.Label, cells)
	}
}

func writeHeader(b *strings.Builder, corner string, headers []string) {
	writeRow(b, corner, headers)
	b.WriteString("|")
	for i := 0; i <= len(headers); i++ {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
}

func writeRow(b *strings.Builder, label string, cells []string) {
	b.WriteString("| ")
	b.WriteString(safeVal(label))
	for _, c := range cells {
		b.WriteString(" | ")
		b.WriteString(safeVal(c))
	}
	b.WriteString(" |\n")
}

func intCells(v []int) []string {
	out := make([]string, len(v))
	for i, n := range v {
		out[i] = strconv.Itoa(n)
	}
	return out
}
