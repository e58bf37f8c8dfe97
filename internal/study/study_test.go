package study_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabloom-cli/internal/crosstab"
	apperrors "github.com/KaramelBytes/tabloom-cli/internal/errors"
	"github.com/KaramelBytes/tabloom-cli/internal/openend"
	"github.com/KaramelBytes/tabloom-cli/internal/study"
)

func writeCSV(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "survey.csv")
	require.NoError(t, os.WriteFile(path, []byte("Gender,Region\nMale,North\nFemale,South\nMale,South\n"), 0o644))
	return path
}

func TestStudy_SaveLoad(t *testing.T) {
	tdir := t.TempDir()
	root := filepath.Join(tdir, "brand")
	s := study.NewStudy("brand", "brand tracker", root)
	_, err := uuid.Parse(s.ID)
	require.NoError(t, err)

	ds, err := s.SetDataset(writeCSV(t, tdir), "")
	require.NoError(t, err)
	assert.Equal(t, 3, s.Dataset.Rows)
	assert.Equal(t, 2, s.Dataset.Columns)

	cfg := crosstab.Config{TableVariables: []string{"Gender"}, BannerVariables: []string{"Region"}}
	require.NoError(t, s.SetAnalysis(cfg, ds))
	s.RecordRun(1, "outputs/tables.xlsx")
	require.NoError(t, s.Save())

	loaded, err := study.LoadStudy(root)
	require.NoError(t, err)
	assert.Equal(t, s.ID, loaded.ID)
	assert.Equal(t, root, loaded.RootDir())
	require.NotNil(t, loaded.Analysis)
	assert.Equal(t, []string{"Gender"}, loaded.Analysis.TableVariables)
	require.Len(t, loaded.Runs, 1)
	assert.Equal(t, 1, loaded.Runs[0].Tables)

	again, err := loaded.LoadDataset()
	require.NoError(t, err)
	assert.Equal(t, 3, again.Len())
}

func TestStudy_SetAnalysisValidates(t *testing.T) {
	tdir := t.TempDir()
	s := study.NewStudy("x", "", tdir)
	ds, err := s.SetDataset(writeCSV(t, tdir), "")
	require.NoError(t, err)

	err = s.SetAnalysis(crosstab.Config{TableVariables: []string{"Age"}}, ds)
	require.Error(t, err)
	assert.Nil(t, s.Analysis)
}

func TestLoadStudy_Missing(t *testing.T) {
	_, err := study.LoadStudy(t.TempDir())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestStudy_NoDataset(t *testing.T) {
	s := study.NewStudy("x", "", t.TempDir())
	_, err := s.LoadDataset()
	assert.Equal(t, apperrors.KindConfig, apperrors.KindOf(err))
}

func TestStudy_CodingOverride(t *testing.T) {
	s := study.NewStudy("x", "", t.TempDir())
	def := openend.DefaultSettings()
	assert.Equal(t, def, s.CodingSettings(def))

	custom := def
	custom.Method = openend.MethodClustering
	s.Coding = &custom
	assert.Equal(t, openend.MethodClustering, s.CodingSettings(def).Method)
}

func TestStudy_OutputPath(t *testing.T) {
	root := t.TempDir()
	s := study.NewStudy("x", "", root)
	p, err := s.OutputPath("tables.xlsx")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, study.OutputsDir, "tables.xlsx"), p)
	info, err := os.Stat(filepath.Dir(p))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
