package dataset

import (
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/KaramelBytes/tabloom-cli/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestNew_NormalizesHeadersAndRows(t *testing.T) {
	d := New([]string{"Gender", "", "Gender", " Region "}, [][]string{
		{"Male", "x"},
		{" Female ", "", "dup", "North", "extra"},
	})

	assert.Equal(t, []string{"Gender", "Column_2", "Gender_2", "Region"}, d.Headers())
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, "", d.Value(0, "Region"))
	assert.Equal(t, "Female", d.Value(1, "Gender"))
	assert.Equal(t, "dup", d.Row(1).Value("Gender_2"))

	_, ok := d.Row(0).Get("Missing")
	assert.False(t, ok)
}

func TestSubset_SharesRowsWithoutMutation(t *testing.T) {
	d := New([]string{"A"}, [][]string{{"1"}, {"2"}, {"3"}})
	s := d.Subset([]int{2, 0})

	assert.Equal(t, []string{"3", "1"}, s.Column("A"))
	assert.Equal(t, 3, d.Len())
	assert.Equal(t, []string{"1", "2", "3"}, d.Column("A"))
}

func TestFromRecords_FormatsNumbers(t *testing.T) {
	d := FromRecords([]string{"Age", "Score", "Note"}, [][]any{{float64(34), 7.5, nil}})
	assert.Equal(t, "34", d.Value(0, "Age"))
	assert.Equal(t, "7.5", d.Value(0, "Score"))
	assert.Equal(t, "", d.Value(0, "Note"))
}

func TestReadCSV_SniffsDelimiterAndStripsBOM(t *testing.T) {
	in := "\xEF\xBB\xBFGender;Region\nMale;North\n;\nFemale;South\n"
	d, err := ReadCSV(strings.NewReader(in), "survey.csv", LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Gender", "Region"}, d.Headers())
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, "South", d.Value(1, "Region"))
}

func TestReadCSV_EmptyInputIsLoadError(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), "empty.csv", LoadOptions{})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindLoad, apperrors.KindOf(err))
}

func TestReadCSV_MaxRows(t *testing.T) {
	in := "A\n1\n2\n3\n"
	d, err := ReadCSV(strings.NewReader(in), "a.csv", LoadOptions{MaxRows: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, d.Column("A"))
}

func TestLoad_XLSXBySheetName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.xlsx")
	f := excelize.NewFile()
	_, err := f.NewSheet("Responses")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Responses", "A1", &[]any{"Gender", "Age"}))
	require.NoError(t, f.SetSheetRow("Responses", "A2", &[]any{"Male", 34}))
	require.NoError(t, f.SetSheetRow("Responses", "A3", &[]any{"Female", 29}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	d, err := Load(path, LoadOptions{Sheet: "responses"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gender", "Age"}, d.Headers())
	assert.Equal(t, []string{"34", "29"}, d.Column("Age"))

	_, err = Load(path, LoadOptions{Sheet: "nope"})
	assert.Equal(t, apperrors.KindLoad, apperrors.KindOf(err))
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.docx")
	require.NoError(t, writeFile(path, "x"))
	_, err := Load(path, LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file format")
}
