package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabloom-cli/internal/crosstab"
	"github.com/KaramelBytes/tabloom-cli/internal/study"
)

// resetFlags restores every flag to its default so invocations do not leak into each other.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(args ...string) (string, error) {
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCLI is a helper to execute the root command with args.
func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(args...)
	require.NoError(t, err, "command %v failed: %s", args, out)
	return out
}

// setupHome isolates config and studies under a temporary HOME.
func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg = nil
	return home
}

func writeSurvey(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Gender,Region,Satisfaction,Comments\n")
	comments := []string{"Too expensive for what you get", "Great value overall", "Delivery was slow", "Friendly staff"}
	for i := 0; i < 40; i++ {
		gender := "Male"
		if i%2 == 1 {
			gender = "Female"
		}
		region := "North"
		if i >= 20 {
			region = "South"
		}
		fmt.Fprintf(&b, "%s,%s,%d,%s\n", gender, region, i%5+1, comments[i%len(comments)])
	}
	path := filepath.Join(dir, "survey.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func writeAnalysis(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "analysis.yaml")
	require.NoError(t, crosstab.SaveConfigFile(&crosstab.Config{
		TableVariables:  []string{"Gender", "Satisfaction"},
		BannerVariables: []string{"Region"},
	}, path))
	return path
}

func TestCLI_RunMarkdownToStdout(t *testing.T) {
	home := setupHome(t)
	data := writeSurvey(t, home)
	analysis := writeAnalysis(t, home)

	out := runCLI(t, "run", data, "-a", analysis)
	assert.Contains(t, out, "[CROSS-TAB SUMMARY]")
	assert.Contains(t, out, "Tables: 2")
	assert.Contains(t, out, "[TABLE] Gender")
	assert.Contains(t, out, "North")
}

func TestCLI_RunWritesEachFormat(t *testing.T) {
	home := setupHome(t)
	data := writeSurvey(t, home)
	analysis := writeAnalysis(t, home)

	for _, name := range []string{"tables.xlsx", "tables.json", "tables.md"} {
		path := filepath.Join(home, name)
		out := runCLI(t, "run", data, "-a", analysis, "-o", path)
		assert.Contains(t, out, "2 tables from 40 of 40 rows")
		info, err := os.Stat(path)
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}

	_, err := execute("run", data, "-a", analysis, "-o", filepath.Join(home, "tables.pdf"))
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestCLI_RunRejectsNoMatrices(t *testing.T) {
	home := setupHome(t)
	data := writeSurvey(t, home)
	analysis := writeAnalysis(t, home)

	_, err := execute("run", data, "-a", analysis, "--counts=false", "--percentages=false")
	assert.ErrorContains(t, err, "select counts, percentages or both")
}

func TestCLI_StudyWorkflow(t *testing.T) {
	home := setupHome(t)
	data := writeSurvey(t, home)

	runCLI(t, "init", "wave1", "-d", "first wave", "--dataset", data)
	out := runCLI(t, "detect", "-s", "wave1", "-b", "Region")
	assert.Contains(t, out, "[COLUMN TYPES]")
	assert.Contains(t, out, "Saved starter analysis to study 'wave1'")

	out = runCLI(t, "run", "-s", "wave1", "-q")
	assert.Empty(t, strings.TrimSpace(out))

	st, err := study.LoadStudy(filepath.Join(home, ".tabloom", "studies", "wave1"))
	require.NoError(t, err)
	require.NotNil(t, st.Analysis)
	assert.Equal(t, []string{"Region"}, st.Analysis.BannerVariables)
	assert.NotContains(t, st.Analysis.TableVariables, "Region")
	require.Len(t, st.Runs, 1)
	assert.Equal(t, ".xlsx", filepath.Ext(st.Runs[0].Output))
	_, err = os.Stat(st.Runs[0].Output)
	assert.NoError(t, err)

	out = runCLI(t, "list", "--runs", "-s", "wave1")
	assert.Contains(t, out, st.Runs[0].ID)
}

func TestCLI_StudyResolvedFromWorkingDirectory(t *testing.T) {
	home := setupHome(t)
	data := writeSurvey(t, home)
	runCLI(t, "init", "wave2", "--dataset", data)
	runCLI(t, "detect", "-s", "wave2", "-b", "Region")

	dir := filepath.Join(home, ".tabloom", "studies", "wave2")
	nested := filepath.Join(dir, study.OutputsDir)
	require.NoError(t, os.MkdirAll(nested, 0o755))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	out := runCLI(t, "study", "show")
	assert.Contains(t, out, "name: wave2")
	assert.Contains(t, out, "banners: Region")

	runCLI(t, "run", "-q")
	st, err := study.LoadStudy(dir)
	require.NoError(t, err)
	assert.Len(t, st.Runs, 1)

	require.NoError(t, os.Chdir(home))
	_, err = execute("run")
	assert.ErrorContains(t, err, "--study is required outside a study directory")
}

func TestCLI_DetectWritesStarterConfig(t *testing.T) {
	home := setupHome(t)
	data := writeSurvey(t, home)
	path := filepath.Join(home, "starter.yaml")

	out := runCLI(t, "detect", data, "-b", "Region", "-o", path)
	assert.Contains(t, out, "[DATASET]")
	assert.Contains(t, out, "Rows: 40")

	ac, err := crosstab.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Contains(t, ac.TableVariables, "Gender")
	assert.Equal(t, []string{"Region"}, ac.BannerVariables)

	_, err = execute("detect", data, "-b", "Missing")
	assert.ErrorContains(t, err, `banner "Missing" is not a column`)
}

func TestCLI_CodeColumn(t *testing.T) {
	home := setupHome(t)
	data := writeSurvey(t, home)

	out := runCLI(t, "code", data, "--column", "Comments")
	assert.Contains(t, out, "[CODING] Comments (keywords)")
	assert.Contains(t, out, "Responses: 40")

	_, err := execute("code", data, "--column", "Nope")
	assert.ErrorContains(t, err, `column "Nope" not found`)
	_, err = execute("code", data)
	assert.ErrorContains(t, err, "--column is required")
}
