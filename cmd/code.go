package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
	"github.com/KaramelBytes/tabloom-cli/internal/openend"
	"github.com/KaramelBytes/tabloom-cli/internal/utils"
)

var (
	codeData       datasetFlags
	codeStudy      string
	codeColumn     string
	codeMethod     string
	codeMinSize    int
	codeMaxCats    int
	codeThreshold  float64
	codeMinLen     int
	codeOutputPath string
	codeJSON       bool
)

var codeCmd = &cobra.Command{
	Use:   "code [file]",
	Short: "Code an open-ended column into categories",
	Example: `  tabloom code survey.csv --column "Why did you choose us?"
  tabloom code -s wave1 --column Comments --method clustering --max-categories 8 -o comments.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(codeColumn) == "" {
			return fmt.Errorf("--column is required")
		}
		var (
			ds  *dataset.Dataset
			err error
		)
		settings := openend.DefaultSettings()
		if cfg != nil {
			settings = cfg.Coding()
		}
		switch {
		case len(args) == 1:
			if ds, err = codeData.load(args[0]); err != nil {
				return err
			}
		case codeStudy != "":
			st, err := loadStudyByName(codeStudy)
			if err != nil {
				return err
			}
			if ds, err = st.LoadDataset(); err != nil {
				return err
			}
			settings = st.CodingSettings(settings)
		default:
			return fmt.Errorf("provide a data file or --study")
		}
		if !ds.Has(codeColumn) {
			return fmt.Errorf("column %q not found", codeColumn)
		}

		cmd.Flags().Visit(func(fl *pflag.Flag) {
			switch fl.Name {
			case "method":
				settings.Method = openend.Method(strings.ToLower(codeMethod))
			case "min-size":
				settings.MinCategorySize = codeMinSize
			case "max-categories":
				settings.MaxCategories = codeMaxCats
			case "threshold":
				settings.SimilarityThreshold = codeThreshold
			case "min-length":
				settings.MinResponseLength = codeMinLen
			}
		})

		coding, err := openend.Code(cmd.Context(), codeColumn, ds.Column(codeColumn), settings)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if codeOutputPath != "" || codeJSON {
			b, err := utils.PrettyJSON(coding)
			if err != nil {
				return err
			}
			if codeOutputPath != "" {
				if err := utils.SafeWriteFile(codeOutputPath, b); err != nil {
					return err
				}
				fmt.Fprintf(out, "✓ Coded %d responses into %d categories: %s\n", len(coding.Responses), len(coding.Categories), codeOutputPath)
				return nil
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		writeCoding(cmd, coding)
		return nil
	},
}

func writeCoding(cmd *cobra.Command, c *openend.Coding) {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[CODING] %s (%s)\n", c.QuestionColumn, c.Settings.Method))
	b.WriteString(fmt.Sprintf("Responses: %d\nCategories: %d\n", len(c.Responses), len(c.Categories)))
	for _, cat := range c.Categories {
		b.WriteString(fmt.Sprintf("\n- %s: %d responses (confidence %.2f)\n", cat.Name, cat.ResponseCount, cat.Confidence))
		if len(cat.Keywords) > 0 {
			b.WriteString("  Keywords: " + strings.Join(cat.Keywords, ", ") + "\n")
		}
		for _, s := range cat.SampleResponses {
			b.WriteString("  > " + s + "\n")
		}
	}
	fmt.Fprint(cmd.OutOrStdout(), b.String())
}

func init() {
	rootCmd.AddCommand(codeCmd)
	codeData.register(codeCmd)
	codeCmd.Flags().StringVarP(&codeStudy, "study", "s", "", "study whose dataset to read")
	codeCmd.Flags().StringVarP(&codeColumn, "column", "c", "", "open-ended column to code")
	codeCmd.Flags().StringVar(&codeMethod, "method", "keywords", "coding method: keywords|clustering")
	codeCmd.Flags().IntVar(&codeMinSize, "min-size", 2, "minimum responses per category")
	codeCmd.Flags().IntVar(&codeMaxCats, "max-categories", 10, "maximum number of categories")
	codeCmd.Flags().Float64Var(&codeThreshold, "threshold", 0.7, "clustering: largest cosine distance still merged")
	codeCmd.Flags().IntVar(&codeMinLen, "min-length", 3, "ignore responses shorter than this many characters")
	codeCmd.Flags().StringVarP(&codeOutputPath, "output", "o", "", "write the coding result as JSON")
	codeCmd.Flags().BoolVar(&codeJSON, "json", false, "print the coding result as JSON")
}
