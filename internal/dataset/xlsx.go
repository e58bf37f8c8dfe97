package dataset

import (
	"fmt"
	"strings"

	apperrors "github.com/KaramelBytes/tabloom-cli/internal/errors"
	"github.com/xuri/excelize/v2"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(path string) bool {
	p := strings.ToLower(path)
	return strings.HasSuffix(p, ".xlsx") || strings.HasSuffix(p, ".xlsm")
}

func (xlsxLoader) Load(path string, opt LoadOptions) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewLoadError("open workbook", err)
	}
	defer f.Close()

	sheet, err := pickSheet(f.GetSheetList(), opt)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewLoadError(fmt.Sprintf("read sheet %q", sheet), err)
	}
	// excelize trims trailing empty rows but keeps interior ones
	grid := make([][]string, 0, len(rows))
	for i, r := range rows {
		if i > 0 && blankRecord(r) {
			continue
		}
		grid = append(grid, r)
	}
	return fromGrid(fmt.Sprintf("%s[%s]", path, sheet), grid, opt.MaxRows)
}

func pickSheet(sheets []string, opt LoadOptions) (string, error) {
	if len(sheets) == 0 {
		return "", apperrors.NewLoadError("workbook has no sheets", nil)
	}
	if opt.Sheet != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, opt.Sheet) {
				return s, nil
			}
		}
		return "", apperrors.NewLoadError(fmt.Sprintf("sheet %q not found", opt.Sheet), nil)
	}
	idx := opt.SheetIndex
	if idx <= 0 {
		idx = 1
	}
	if idx > len(sheets) {
		return "", apperrors.NewLoadError(fmt.Sprintf("sheet index %d out of range (workbook has %d)", idx, len(sheets)), nil)
	}
	return sheets[idx-1], nil
}
