package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) {
	t.Helper()
	dir, err := filepath.Abs("../internal/modules/rentals/dataset/testdata")
	require.NoError(t, err)
	for _, k := range []string{"ENV_FILE", "CONFIG_FILE", "APP_ENV", "DAY_FILE", "HOUR_FILE", "DB_DSN"} {
		t.Setenv(k, "")
	}
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DATA_SOURCE", "csv")
	t.Setenv("DATA_DIR", dir)
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "rentals.db"))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func TestSummary_AllFilters(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "summary")
	require.NoError(t, err)

	assert.Contains(t, out, "10 hourly")
	assert.Contains(t, out, "9 daily")
	assert.Contains(t, out, "Top Season: Fall with 10,664 rentals.")

	fall := strings.Index(out, "Fall")
	spring := strings.Index(out, "Spring")
	require.True(t, fall >= 0 && spring >= 0, "season rows missing:\n%s", out)
	assert.Less(t, fall, spring, "seasons should be ordered by total descending")
}

func TestSummary_Flags(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "summary", "--season=1,2", "--weather=Clear", "--from=2011-01-01", "--to=2011-06-30")
	require.NoError(t, err)
	// Clear days in seasons 1 and 2 within the window: 2011-01-03 (1349) and 2011-04-02 (2808).
	assert.Contains(t, out, "Top Season: Summer with 2,808 rentals.")
	assert.Contains(t, out, "2 daily")
}

func TestSummary_EmptySelection(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "summary", "--season=")
	require.NoError(t, err)
	assert.Contains(t, out, "No rentals match the current filters.")
	assert.Contains(t, out, "N/A")
}

func TestSummary_InvalidFlags(t *testing.T) {
	tests := [][]string{
		{"summary", "--weather=Sunny"},
		{"summary", "--season=spring"},
		{"summary", "--from=01/02/2011"},
		{"summary", "--from=2011-02-01", "--to=2011-01-01"},
		{"summary", "extra-arg"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			setupEnv(t)
			_, err := execute(t, args...)
			assert.Error(t, err)
		})
	}
}

func TestImport(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "import")
	require.NoError(t, err)
	assert.Contains(t, out, "imported 9 daily and 10 hourly records")

	t.Setenv("DATA_SOURCE", "sqlite")
	out, err = execute(t, "summary", "--season=4")
	require.NoError(t, err)
	assert.Contains(t, out, "Top Season: Winter with 5,347 rentals.")
}

func TestConfigErrorStopsCommand(t *testing.T) {
	setupEnv(t)
	t.Setenv("APP_ENV", "staging")

	_, err := execute(t, "summary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, appName+" version "+version)
}
