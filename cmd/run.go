package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/tabloom-cli/internal/crosstab"
	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
	"github.com/KaramelBytes/tabloom-cli/internal/openend"
	"github.com/KaramelBytes/tabloom-cli/internal/report"
	"github.com/KaramelBytes/tabloom-cli/internal/study"
	"github.com/KaramelBytes/tabloom-cli/internal/utils"
)

var (
	runData        datasetFlags
	runStudy       string
	runAnalysis    string
	runOutputPath  string
	runCounts      bool
	runPercentages bool
	runAlpha       float64
	runQuiet       bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Generate banner cross-tabs with significance testing",
	Example: `  tabloom run survey.csv -a analysis.yaml
  tabloom run survey.xlsx --sheet Responses -a analysis.yaml -o tables.xlsx
  tabloom run -s wave1 --alpha 0.10
  tabloom run -s wave1 -o tables.md --percentages=false`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Flags persist between invocations in the same process; reset the ones not given.
		provided := map[string]bool{}
		cmd.Flags().Visit(func(fl *pflag.Flag) { provided[fl.Name] = true })
		if !provided["alpha"] {
			runAlpha = 0
		}
		if !provided["output"] {
			runOutputPath = ""
		}

		var (
			st  *study.Study
			ds  *dataset.Dataset
			ac  *crosstab.Config
			err error
		)
		if runStudy != "" || len(args) == 0 {
			if st, err = currentStudy(runStudy); err != nil {
				return err
			}
		}
		switch {
		case len(args) == 1:
			if ds, err = runData.load(args[0]); err != nil {
				return err
			}
		case st != nil:
			if ds, err = st.LoadDataset(); err != nil {
				return err
			}
		}
		switch {
		case runAnalysis != "":
			if ac, err = crosstab.LoadConfigFile(runAnalysis); err != nil {
				return err
			}
		case st != nil && st.Analysis != nil:
			c := *st.Analysis
			ac = &c
		default:
			return fmt.Errorf("--analysis is required (or save one to the study with 'tabloom study set-analysis')")
		}
		if provided["alpha"] {
			ac.Alpha = runAlpha
		} else if ac.Alpha == 0 && cfg != nil {
			ac.Alpha = cfg.Alpha
		}

		opts := report.DefaultOptions()
		coding := openend.DefaultSettings()
		if cfg != nil {
			opts = cfg.ReportOptions()
			coding = cfg.Coding()
		}
		if st != nil {
			coding = st.CodingSettings(coding)
		}
		if provided["counts"] {
			opts.Counts = runCounts
		}
		if provided["percentages"] {
			opts.Percentages = runPercentages
		}
		if err := opts.Validate(); err != nil {
			return err
		}

		start := time.Now()
		run, err := crosstab.Generate(cmd.Context(), ds, *ac, coding)
		if err != nil {
			return err
		}

		out := runOutputPath
		if out == "" && st != nil {
			if out, err = st.OutputPath(fmt.Sprintf("crosstabs-%s.xlsx", start.Format("20060102-150405"))); err != nil {
				return err
			}
		}
		w := cmd.OutOrStdout()
		if out == "" {
			fmt.Fprint(w, report.Markdown(run.Results, run.Banners, opts))
		} else if err := writeReport(out, run, *ac, opts); err != nil {
			return err
		}

		if st != nil {
			st.RecordRun(len(run.Results), out)
			if err := st.Save(); err != nil {
				return err
			}
		}
		if !runQuiet && out != "" {
			fmt.Fprintf(w, "✓ %d tables from %d of %d rows written to %s (%s)\n",
				len(run.Results), run.FilteredRows, run.TotalRows, out, time.Since(start).Round(time.Millisecond))
		}
		return nil
	},
}

// writeReport picks the report format from the output extension.
func writeReport(path string, run *crosstab.Run, ac crosstab.Config, opts report.Options) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return report.WriteXLSX(path, run.Results, run.Banners, &ac, opts)
	case ".json":
		return report.WriteJSON(path, run, ac)
	case ".md", ".markdown", ".txt":
		return utils.SafeWriteFile(path, []byte(report.Markdown(run.Results, run.Banners, opts)))
	default:
		return fmt.Errorf("unsupported output format %q (use .xlsx, .json or .md)", filepath.Ext(path))
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	runData.register(runCmd)
	runCmd.Flags().StringVarP(&runStudy, "study", "s", "", "study to run (uses its dataset and saved analysis; defaults to the study enclosing the working directory)")
	runCmd.Flags().StringVarP(&runAnalysis, "analysis", "a", "", "analysis config file (.yaml or .json)")
	runCmd.Flags().StringVarP(&runOutputPath, "output", "o", "", "write the report to a file (.xlsx, .json or .md); Markdown to stdout if omitted")
	runCmd.Flags().BoolVar(&runCounts, "counts", true, "show counts in table cells")
	runCmd.Flags().BoolVar(&runPercentages, "percentages", true, "show column percentages in table cells")
	runCmd.Flags().Float64Var(&runAlpha, "alpha", 0, "significance level (default from config, 0.05)")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "suppress the summary line")
}
