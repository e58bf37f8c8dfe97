package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabloom-cli/internal/openend"
)

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.05, c.Alpha)
	assert.True(t, c.ShowCounts)
	assert.True(t, c.ShowPercentages)
	assert.Equal(t, filepath.Join(home, ".tabloom", "studies"), c.StudiesDir)
	assert.Equal(t, openend.DefaultSettings(), c.Coding())
	assert.NoError(t, c.ReportOptions().Validate())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")

	c, err := Load(path)
	require.NoError(t, err)
	c.Alpha = 0.1
	c.CodingMethod = string(openend.MethodClustering)
	c.ShowCounts = false
	require.NoError(t, Save(c, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.1, got.Alpha)
	assert.Equal(t, openend.MethodClustering, got.Coding().Method)
	assert.False(t, got.ShowCounts)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TABLOOM_ALPHA", "0.01")
	t.Setenv("TABLOOM_LOG_LEVEL", "debug")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.01, c.Alpha)
	assert.Equal(t, "debug", c.LogLevel)
}
