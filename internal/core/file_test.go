package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyuangang/sql-batch-runner/pkg/models"
)

func writeSQLFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProcessFilePassed(t *testing.T) {
	e := newTestExecutor(t, false)
	dir := t.TempDir()
	path := writeSQLFile(t, dir, "setup.sql", `
-- schema plus a probe query
CREATE TABLE pets (name TEXT);
INSERT INTO pets VALUES ('rex');
SELECT name FROM pets;
`)

	fr := e.ProcessFile(context.Background(), path)
	assert.Empty(t, fr.Error)
	require.Len(t, fr.Results, 3)
	assert.Equal(t, models.FilePassed, fr.Status())
	assert.Equal(t, models.StatementFetch, fr.Results[2].Type)
	assert.EqualValues(t, 1, *fr.Results[2].RowCount)
}

func TestProcessFileSecurityRejected(t *testing.T) {
	e := newTestExecutor(t, false)
	dir := t.TempDir()
	path := writeSQLFile(t, dir, "danger.sql", "DROP DATABASE prod;")

	fr := e.ProcessFile(context.Background(), path)
	assert.NotEmpty(t, fr.Error)
	assert.Contains(t, fr.Error, "dangerous operation")
	assert.Empty(t, fr.Results, "rejected files must not execute anything")
	assert.Equal(t, models.FileFailed, fr.Status())
}

func TestProcessFileWrongExtension(t *testing.T) {
	e := newTestExecutor(t, false)
	dir := t.TempDir()
	path := writeSQLFile(t, dir, "notes.txt", "SELECT 1;")

	fr := e.ProcessFile(context.Background(), path)
	assert.NotEmpty(t, fr.Error)
	assert.Empty(t, fr.Results)
}

func TestProcessFileMissing(t *testing.T) {
	e := newTestExecutor(t, false)
	fr := e.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "nope.sql"))
	assert.NotEmpty(t, fr.Error)
	assert.Equal(t, models.FileFailed, fr.Status())
}

func TestProcessFileCommentOnly(t *testing.T) {
	e := newTestExecutor(t, false)
	dir := t.TempDir()
	path := writeSQLFile(t, dir, "empty.sql", "-- nothing here\n/* still nothing */\n")

	fr := e.ProcessFile(context.Background(), path)
	assert.Empty(t, fr.Error)
	assert.Empty(t, fr.Results)
	assert.Equal(t, models.FilePassed, fr.Status())
}

func TestProcessFilesSummary(t *testing.T) {
	e := newTestExecutor(t, false)
	dir := t.TempDir()

	good := writeSQLFile(t, dir, "good.sql", "CREATE TABLE a (x INT); INSERT INTO a VALUES (1);")
	mixed := writeSQLFile(t, dir, "mixed.sql", "INSERT INTO a VALUES (2); NOT SQL AT ALL;")
	bad := writeSQLFile(t, dir, "bad.sql", "SELECT * FROM no_such_table;")

	summary := e.ProcessFiles(context.Background(), []string{good, mixed, bad}, nil)
	assert.Equal(t, 3, summary.FilesProcessed)
	assert.Equal(t, 1, summary.FilesPassed)
	assert.Equal(t, 1, summary.FilesMixed)
	assert.Equal(t, 1, summary.FilesFailed)
	assert.False(t, summary.Ok())

	require.Len(t, summary.Files, 3)
	assert.Equal(t, models.FilePassed, summary.Files[0].Status())
	assert.Equal(t, models.FileMixed, summary.Files[1].Status())
	assert.Equal(t, models.FileFailed, summary.Files[2].Status())
}

func TestProcessFilesAllPassed(t *testing.T) {
	e := newTestExecutor(t, true)
	dir := t.TempDir()

	one := writeSQLFile(t, dir, "one.sql", "CREATE TABLE b (x INT);")
	two := writeSQLFile(t, dir, "two.sql", "INSERT INTO b VALUES (7); SELECT x FROM b;")

	summary := e.ProcessFiles(context.Background(), []string{one, two}, nil)
	assert.Equal(t, 2, summary.FilesProcessed)
	assert.Equal(t, 2, summary.FilesPassed)
	assert.True(t, summary.Ok())
	assert.Positive(t, e.Metrics().Duration())
}
