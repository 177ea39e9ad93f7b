package testutil

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings(t *testing.T) {
	s, err := LoadSettings(filepath.Join("testdata", "settings.json"))
	require.NoError(t, err)
	assert.Empty(t, s.TestDir)

	dir := t.TempDir()
	pth := filepath.Join(dir, "settings.json")
	require.NoError(t, ioutil.WriteFile(pth, []byte(`{"testDir": "/tmp/gitlib-tests"}`), 0600))
	s, err = LoadSettings(pth)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/gitlib-tests", s.TestDir)

	require.NoError(t, ioutil.WriteFile(pth, []byte(`{"testDir": `), 0600))
	_, err = LoadSettings(pth)
	require.Error(t, err)

	_, err = LoadSettings(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}

func TestRepoDir(t *testing.T) {
	t.Run("temporary", func(t *testing.T) {
		dir := RepoDir(t, Settings{}, "testRepo")
		assert.Equal(t, "testRepo", filepath.Base(dir))
		_, err := os.Stat(dir)
		assert.True(t, os.IsNotExist(err))
	})

	base := t.TempDir()
	var dir string
	t.Run("configured", func(t *testing.T) {
		dir = RepoDir(t, Settings{TestDir: base}, "testRepo")
		assert.Equal(t, filepath.Join(base, "testRepo"), dir)
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0700))
	})

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "the repository must be removed when the test ends")
}
