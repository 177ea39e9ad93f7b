// Package testutil provides helpers for tests running against a real file system.
package testutil

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"
)

// SettingsEnv overrides the location of the settings file
const SettingsEnv = "GITLIB_TEST_SETTINGS"

// Settings for integration tests
type Settings struct {
	// TestDir hosts the repositories created by tests. When empty, a per-test temporary directory is used.
	TestDir string `json:"testDir"`
}

// LoadSettings reads test settings from a JSON file
func LoadSettings(pth string) (Settings, error) {
	data, err := ioutil.ReadFile(pth)
	if err != nil {
		return Settings{}, fmt.Errorf("reading test settings: %w", err)
	}
	var s Settings
	if err = jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("decoding test settings from %s: %w", pth, err)
	}
	return s, nil
}

// MustLoadSettings loads the settings file designated by GITLIB_TEST_SETTINGS, or defaultPath.
// The test fails if the file can't be read.
func MustLoadSettings(t testing.TB, defaultPath string) Settings {
	t.Helper()
	pth := defaultPath
	if env := os.Getenv(SettingsEnv); env != "" {
		pth = env
	}
	s, err := LoadSettings(pth)
	if err != nil {
		t.Fatalf("%v", err)
	}
	return s
}

// RepoDir returns the path at which a test may create a repository named name.
//
// The directory doesn't exist yet and is removed when the test ends, whatever its outcome.
func RepoDir(t testing.TB, s Settings, name string) string {
	t.Helper()
	if s.TestDir == "" {
		return filepath.Join(t.TempDir(), name)
	}

	dir := filepath.Join(s.TestDir, name)
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("clearing leftover test repository %s: %v", dir, err)
	}
	t.Cleanup(func() {
		_ = os.RemoveAll(dir)
	})
	return dir
}
