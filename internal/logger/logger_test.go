package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"info", zerolog.InfoLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warning", zerolog.WarnLevel},
		{"warn", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestInitWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "elog.log")
	require.NoError(t, Init(Options{Level: "debug", Format: "json", File: path}))
	assert.Equal(t, path, GetLogPath())

	Info("queried %s", "Security")
	Debug("limit=%d", 10)
	Close()
	assert.Equal(t, "", GetLogPath())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `"message":"queried Security"`)
	assert.Contains(t, content, `"message":"limit=10"`)
	assert.Contains(t, content, `"caller":"logger_test.go:`)
}

func TestInitDirectoryGetsGeneratedName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(Options{Level: "info", File: dir}))
	defer Close()

	path := GetLogPath()
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "elog_"))
	assert.True(t, strings.HasSuffix(path, ".log"))
}

func TestLevelFiltersMessages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "elog.log")
	require.NoError(t, Init(Options{Level: "warn", File: path}))

	Info("hidden")
	Warn("shown")
	Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Init(Options{Level: "loud"}))
}

func TestLoggingWithoutInitIsSilent(t *testing.T) {
	Close()
	assert.NotPanics(t, func() {
		Debug("nothing")
		Section("nothing")
		Command("powershell", "-NoProfile")
		CommandResult("powershell", 1, "boom", nil)
	})
}
