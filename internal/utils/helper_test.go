package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.sql")
	assert.False(t, FileExists(path))
	require.NoError(t, os.WriteFile(path, []byte("SELECT 1;"), 0o644))
	assert.True(t, FileExists(path))
}

func TestGetFileSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.sql")
	require.NoError(t, os.WriteFile(path, []byte("12345"), 0o644))
	size, err := GetFileSize(path)
	require.NoError(t, err)
	assert.EqualValues(t, 5, size)

	_, err = GetFileSize(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", FormatDuration(250*time.Millisecond))
	assert.Equal(t, "1.50s", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "2m5s", FormatDuration(125*time.Second))
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.Start()
	m.AddStatement(10*time.Millisecond, true)
	m.AddStatement(30*time.Millisecond, false)
	m.End()

	assert.EqualValues(t, 2, m.StatementCount)
	assert.EqualValues(t, 1, m.SuccessCount)
	assert.EqualValues(t, 1, m.FailureCount)
	assert.Equal(t, 20*time.Millisecond, m.AverageDuration())
	assert.Contains(t, m.String(), "statements=2")
}

func TestNewLoggerBadLevel(t *testing.T) {
	_, err := NewLogger(filepath.Join(t.TempDir(), "x.log"), "loud", false)
	assert.Error(t, err)
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.log")
	logger, err := NewLogger(path, "debug", false)
	require.NoError(t, err)
	logger.Infow("hello", "k", "v")
	logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}
