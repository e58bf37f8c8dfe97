package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/crosstab"
)

var (
	stName  string
	stSheet string
)

var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "Manage a study's dataset and saved analysis",
}

var studySetDatasetCmd = &cobra.Command{
	Use:   "set-dataset <file>",
	Short: "Attach a CSV/TSV/XLSX file to a study",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := currentStudy(stName)
		if err != nil {
			return err
		}
		ds, err := s.SetDataset(args[0], stSheet)
		if err != nil {
			return err
		}
		if s.Analysis != nil {
			if err := s.Analysis.Validate(ds); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: saved analysis no longer matches the dataset: %v\n", err)
			}
		}
		if err := s.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Dataset set for %s: %d rows, %d columns\n", s.Name, ds.Len(), len(ds.Headers()))
		return nil
	},
}

var studySetAnalysisCmd = &cobra.Command{
	Use:   "set-analysis <config.yaml|config.json>",
	Short: "Validate an analysis config against the study dataset and save it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := currentStudy(stName)
		if err != nil {
			return err
		}
		ac, err := crosstab.LoadConfigFile(args[0])
		if err != nil {
			return err
		}
		ds, err := s.LoadDataset()
		if err != nil {
			return err
		}
		if err := s.SetAnalysis(*ac, ds); err != nil {
			return err
		}
		if err := s.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Analysis saved for %s: %d tables, %d banners\n",
			s.Name, len(ac.TableVariables), len(ac.BannerVariables))
		return nil
	},
}

var studyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a study's dataset, analysis and runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := currentStudy(stName)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "name: %s\n", s.Name)
		fmt.Fprintf(out, "id: %s\n", s.ID)
		if s.Description != "" {
			fmt.Fprintf(out, "description: %s\n", s.Description)
		}
		if s.Dataset != nil {
			fmt.Fprintf(out, "dataset: %s (%d rows, %d columns)\n", filepath.Base(s.Dataset.Path), s.Dataset.Rows, s.Dataset.Columns)
		} else {
			fmt.Fprintln(out, "dataset: (none)")
		}
		if a := s.Analysis; a != nil {
			fmt.Fprintf(out, "tables: %s\n", strings.Join(a.TableVariables, ", "))
			fmt.Fprintf(out, "banners: %s\n", strings.Join(a.BannerVariables, ", "))
		} else {
			fmt.Fprintln(out, "analysis: (none)")
		}
		fmt.Fprintf(out, "runs: %d\n", len(s.Runs))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(studyCmd)
	studyCmd.AddCommand(studySetDatasetCmd)
	studyCmd.AddCommand(studySetAnalysisCmd)
	studyCmd.AddCommand(studyShowCmd)

	studyCmd.PersistentFlags().StringVarP(&stName, "study", "s", "", "study name (defaults to the study enclosing the working directory)")
	studySetDatasetCmd.Flags().StringVar(&stSheet, "sheet", "", "XLSX: sheet name")
}
