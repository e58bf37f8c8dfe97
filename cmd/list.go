package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/study"
	"github.com/KaramelBytes/tabloom-cli/internal/utils"
)

var (
	listRuns      bool
	listStudyName string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List studies, or the runs of one study",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if !listRuns {
			return listAllStudies(cmd)
		}
		if listStudyName == "" {
			return fmt.Errorf("--study is required when using --runs")
		}
		s, err := loadStudyByName(listStudyName)
		if err != nil {
			return err
		}
		if len(s.Runs) == 0 {
			fmt.Fprintln(out, "(no runs)")
			return nil
		}
		for _, r := range s.Runs {
			fmt.Fprintf(out, "- %s: %s, %d tables → %s\n", r.ID, r.At.Format("2006-01-02 15:04"), r.Tables, r.Output)
		}
		return nil
	},
}

func listAllStudies(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	root, err := defaultStudiesDir()
	if err != nil {
		return err
	}
	dirs, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	found := false
	for _, e := range dirs {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if _, err := os.Stat(filepath.Join(dir, utils.StudyFile)); err != nil {
			continue
		}
		found = true
		s, err := study.LoadStudy(dir)
		if err != nil {
			fmt.Fprintf(out, "- %s (unreadable: %v)\n", e.Name(), err)
			continue
		}
		data := "no dataset"
		if s.Dataset != nil {
			data = fmt.Sprintf("%s, %d rows", filepath.Base(s.Dataset.Path), s.Dataset.Rows)
		}
		fmt.Fprintf(out, "- %s (%s, %d runs)\n", s.Name, data, len(s.Runs))
	}
	if !found {
		fmt.Fprintln(out, "(no studies)")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listRuns, "runs", false, "list runs of a study")
	listCmd.Flags().StringVarP(&listStudyName, "study", "s", "", "study name for --runs")
}
