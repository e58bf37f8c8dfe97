package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, SafeWriteFile(path, []byte(`{"a":1}`)))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(b))
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestPrettyJSON(t *testing.T) {
	b, err := PrettyJSON(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}", string(b))

	_, err = PrettyJSON(func() {})
	assert.Error(t, err)
}

func TestFindStudyRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "outputs", "2024")
	require.NoError(t, EnsureDir(nested))
	require.NoError(t, os.WriteFile(filepath.Join(root, StudyFile), []byte("{}"), 0o644))
	file := filepath.Join(nested, "tables.xlsx")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	got, err := FindStudyRoot(file)
	require.NoError(t, err)
	assert.Equal(t, root, got)

	_, err = FindStudyRoot(t.TempDir())
	assert.Error(t, err)
}
