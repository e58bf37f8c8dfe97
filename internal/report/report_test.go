package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/tabloom-cli/internal/crosstab"
	"github.com/KaramelBytes/tabloom-cli/internal/dataset"
	"github.com/KaramelBytes/tabloom-cli/internal/detect"
	apperrors "github.com/KaramelBytes/tabloom-cli/internal/errors"
	"github.com/KaramelBytes/tabloom-cli/internal/openend"
)

func sampleRun(t *testing.T) (*crosstab.Run, crosstab.Config) {
	t.Helper()
	var rows [][]string
	for i := 0; i < 20; i++ {
		region := "North"
		if i%2 == 1 {
			region = "South"
		}
		gender := "Male"
		if i%4 >= 2 {
			gender = "Female"
		}
		rows = append(rows, []string{gender, region, fmt.Sprint(i%5 + 1)})
	}
	ds := dataset.New([]string{"Gender", "Region", "Satisfaction"}, rows)
	cfg := crosstab.Config{
		TableVariables:  []string{"Gender", "Satisfaction"},
		BannerVariables: []string{"Region"},
		QuestionTypes: map[string]detect.QuestionType{
			"Gender":       detect.SingleChoice,
			"Satisfaction": detect.Scale,
		},
		DisplayNames: map[string]string{"Region": "Sales region"},
	}
	run, err := crosstab.Generate(context.Background(), ds, cfg, openend.DefaultSettings())
	require.NoError(t, err)
	require.Len(t, run.Results, 2)
	return run, cfg
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())
	assert.NoError(t, Options{Counts: true}.Validate())
	err := Options{}.Validate()
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "30 (75%*)", formatCell(30, "75%", "*", DefaultOptions()))
	assert.Equal(t, "75%", formatCell(30, "75%", "", Options{Percentages: true}))
	assert.Equal(t, "30", formatCell(30, "75%", "*", Options{Counts: true}))
}

func TestMarkdown(t *testing.T) {
	run, _ := sampleRun(t)
	md := Markdown(run.Results, run.Banners, DefaultOptions())

	assert.True(t, strings.HasPrefix(md, "[CROSS-TAB SUMMARY]\nTables: 2\n"))
	assert.Contains(t, md, "Banner: Sales region (North, South)")
	assert.Contains(t, md, "[TABLE] Gender (single-choice)")
	assert.Contains(t, md, "|  | Total | North | South |")
	assert.Contains(t, md, "| Base | 20 | 10 | 10 |")
	assert.Contains(t, md, "| Male | 10 (50%) | 5 (50%) | 5 (50%) |")
	assert.Contains(t, md, "[SCALE 1-5]")
	assert.Contains(t, md, "| Top Box (5) | 4 (20%) |")
	assert.Contains(t, md, "[DESCRIPTIVES]")

	pctOnly := Markdown(run.Results, run.Banners, Options{Percentages: true})
	assert.Contains(t, pctOnly, "| Male | 50% | 50% | 50% |")
}

func TestWorkbook(t *testing.T) {
	run, cfg := sampleRun(t)
	path := filepath.Join(t.TempDir(), "tables.xlsx")
	require.NoError(t, WriteXLSX(path, run.Results, run.Banners, &cfg, DefaultOptions()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{IndexSheet, "T1", "T2"}, f.GetSheetList())
	v, err := f.GetCellValue(IndexSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Gender", v)

	// two-row banner header
	for cell, want := range map[string]string{
		"A1": "Gender", "B3": "Total", "C3": "Sales region", "C4": "North", "D4": "South",
		"A5": "Base", "B5": "20",
	} {
		got, err := f.GetCellValue("T1", cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, cell)
	}
	merged, err := f.GetMergeCells("T1")
	require.NoError(t, err)
	refs := make([]string, 0, len(merged))
	for _, m := range merged {
		refs = append(refs, m.GetStartAxis()+":"+m.GetEndAxis())
	}
	assert.ElementsMatch(t, []string{"B3:B4", "C3:D3"}, refs)

	rows, err := f.GetRows("T1")
	require.NoError(t, err)
	// Base, then Female count and percentage rows
	assert.Equal(t, []string{"Female", "10", "5", "5"}, rows[5])
	assert.Equal(t, []string{"", "50%", "50%", "50%"}, rows[6])
}

func TestWorkbook_RejectsEmptyOptions(t *testing.T) {
	run, cfg := sampleRun(t)
	_, err := Workbook(run.Results, run.Banners, &cfg, Options{})
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	run, cfg := sampleRun(t)
	path := filepath.Join(t.TempDir(), "tables.json")
	require.NoError(t, WriteJSON(path, run, cfg))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc Document
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, 20, doc.TotalRows)
	require.Len(t, doc.Results, 2)
	assert.Equal(t, "Gender", doc.Results[0].Name)
	assert.Equal(t, cfg.TableVariables, doc.Config.TableVariables)
}
