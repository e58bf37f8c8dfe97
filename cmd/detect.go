package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/crosstab"
	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
	"github.com/KaramelBytes/tabloom-cli/internal/detect"
	"github.com/KaramelBytes/tabloom-cli/internal/study"
	"github.com/KaramelBytes/tabloom-cli/internal/utils"
)

var (
	detData       datasetFlags
	detStudy      string
	detBanners    []string
	detOutputPath string
	detJSON       bool
	detSampleRows int
	detMinConf    float64
)

var detectCmd = &cobra.Command{
	Use:   "detect [file]",
	Short: "Detect question types, multi-select and ranking batteries in a survey file",
	Long: `Detect classifies every column, groups multi-select and ranking batteries and proposes a
starter analysis config. Use --output to write the config, or --study to save it to a study.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			ds  *dataset.Dataset
			st  *study.Study
			src string
			err error
		)
		switch {
		case len(args) == 1:
			src = args[0]
			if ds, err = detData.load(src); err != nil {
				return err
			}
			if detStudy != "" {
				if st, err = loadStudyByName(detStudy); err != nil {
					return err
				}
			}
		case detStudy != "":
			if st, err = loadStudyByName(detStudy); err != nil {
				return err
			}
			if ds, err = st.LoadDataset(); err != nil {
				return err
			}
			src = st.Dataset.Path
		default:
			return fmt.Errorf("provide a file or --study")
		}
		for _, b := range detBanners {
			if !ds.Has(b) {
				return fmt.Errorf("banner %q is not a column", b)
			}
		}

		opt := detect.DefaultProfileOptions()
		if cfg != nil && cfg.DetectSampleRows > 0 {
			opt.SampleSize = cfg.DetectSampleRows
		}
		if cfg != nil && cfg.MultiSelectMinConfidence > 0 {
			opt.MinConfidence = cfg.MultiSelectMinConfidence
		}
		if cmd.Flags().Changed("sample-rows") {
			opt.SampleSize = detSampleRows
		}
		if cmd.Flags().Changed("min-confidence") {
			opt.MinConfidence = detMinConf
		}
		p := detect.BuildProfile(ds, opt)
		ac := crosstab.ConfigFromProfile(p, detBanners)

		out := cmd.OutOrStdout()
		if detJSON {
			b, err := utils.PrettyJSON(map[string]any{"profile": p, "config": ac})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
		} else {
			writeProfile(out, filepath.Base(src), ds, p)
		}

		if detOutputPath != "" {
			if err := crosstab.SaveConfigFile(&ac, detOutputPath); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Wrote starter analysis to %s\n", detOutputPath)
		}
		if st != nil {
			if len(args) == 1 {
				if _, err := st.SetDataset(src, detData.sheet); err != nil {
					return err
				}
			}
			if len(ac.TableVariables) == 0 {
				return fmt.Errorf("no table variables detected; nothing to save")
			}
			if err := st.SetAnalysis(ac, ds); err != nil {
				return err
			}
			if err := st.Save(); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Saved starter analysis to study '%s'\n", st.Name)
		}
		return nil
	},
}

func writeProfile(w io.Writer, name string, ds *dataset.Dataset, p *detect.Profile) {
	var b strings.Builder
	b.WriteString("[DATASET]\n")
	b.WriteString(fmt.Sprintf("File: %s\nRows: %d\nColumns: %d\n\n", name, ds.Len(), len(p.Headers)))

	b.WriteString("[COLUMN TYPES]\n")
	for _, col := range p.Columns() {
		d := p.Types[col]
		b.WriteString(fmt.Sprintf("- %s: %s (%.2f) %s\n", col, d.Type, d.Confidence, d.Reasoning))
	}
	if len(p.Candidates) > 0 {
		accepted := make(map[string]bool, len(p.Accepted))
		for _, a := range p.Accepted {
			accepted[a.Root] = true
		}
		b.WriteString("\n[MULTI-SELECT BATTERIES]\n")
		for _, c := range p.Candidates {
			status := "rejected"
			if accepted[c.Root] {
				status = "accepted"
			}
			b.WriteString(fmt.Sprintf("- %s: %d columns, confidence %.2f (%s)\n", c.Root, len(c.Columns), c.Confidence, status))
		}
	}
	if len(p.Ranking) > 0 {
		b.WriteString("\n[RANKING BATTERIES]\n")
		for _, r := range p.Ranking {
			b.WriteString(fmt.Sprintf("- %s: %s (ranks 1-%d)\n", r.Root, strings.Join(r.Options, ", "), r.MaxRanks))
		}
	}
	counts := make(map[detect.QuestionType]int)
	for _, col := range p.Columns() {
		counts[p.Types[col].Type]++
	}
	types := make([]string, 0, len(counts))
	for t, n := range counts {
		types = append(types, fmt.Sprintf("%s=%d", t, n))
	}
	sort.Strings(types)
	b.WriteString("\n[SUMMARY]\n")
	b.WriteString(strings.Join(types, ", "))
	b.WriteString("\n")
	fmt.Fprint(w, b.String())
}

func init() {
	rootCmd.AddCommand(detectCmd)
	detData.register(detectCmd)
	detectCmd.Flags().StringVarP(&detStudy, "study", "s", "", "study to read the dataset from, or to save the starter analysis to")
	detectCmd.Flags().StringSliceVarP(&detBanners, "banner", "b", nil, "banner column(s) for the starter analysis (repeatable)")
	detectCmd.Flags().StringVarP(&detOutputPath, "output", "o", "", "write the starter analysis config (.yaml or .json)")
	detectCmd.Flags().BoolVar(&detJSON, "json", false, "print the profile and starter config as JSON")
	detectCmd.Flags().IntVar(&detSampleRows, "sample-rows", 200, "rows inspected for detection (0 = all)")
	detectCmd.Flags().Float64Var(&detMinConf, "min-confidence", 0.5, "minimum confidence to accept a multi-select battery")
}
