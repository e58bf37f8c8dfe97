package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
)

// datasetFlags are shared by commands that read a data file.
type datasetFlags struct {
	sheet      string
	sheetIndex int
	delimiter  string
	maxRows    int
}

func (f *datasetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "XLSX: sheet name")
	cmd.Flags().IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet not provided)")
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab' (auto-detect if omitted)")
	cmd.Flags().IntVar(&f.maxRows, "max-rows", 0, "maximum data rows to read (0 = unlimited)")
}

func (f *datasetFlags) options() (dataset.LoadOptions, error) {
	opt := dataset.LoadOptions{Sheet: f.sheet, SheetIndex: f.sheetIndex, MaxRows: f.maxRows}
	switch strings.ToLower(strings.TrimSpace(f.delimiter)) {
	case "":
	case ",":
		opt.Delimiter = ','
	case ";":
		opt.Delimiter = ';'
	case "|":
		opt.Delimiter = '|'
	case "\t", "tab":
		opt.Delimiter = '\t'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	return opt, nil
}

func (f *datasetFlags) load(path string) (*dataset.Dataset, error) {
	opt, err := f.options()
	if err != nil {
		return nil, err
	}
	return dataset.Load(path, opt)
}
