package core

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyuangang/sql-batch-runner/internal/config"
	"github.com/iyuangang/sql-batch-runner/internal/utils"
	"github.com/iyuangang/sql-batch-runner/pkg/models"
)

// newTestExecutor wires an executor to a fresh file-backed SQLite database.
// File-backed, not in-memory, so every transaction sees the same database.
func newTestExecutor(t *testing.T, stopOnError bool) *Executor {
	t.Helper()
	tmpDir := t.TempDir()

	cfg := config.Default()
	cfg.DatabaseURL = fmt.Sprintf("sqlite:///%s", filepath.Join(tmpDir, "test.db"))
	cfg.Execution.StopOnError = stopOnError

	logger, err := utils.NewLogger(filepath.Join(tmpDir, "test.log"), "debug", false)
	require.NoError(t, err)

	exec, err := NewExecutor(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { exec.Close() })
	return exec
}

func countRows(t *testing.T, e *Executor, query string) int64 {
	t.Helper()
	results, err := e.ExecuteStatements(context.Background(), []string{query}, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, models.StatementFetch, results[0].Type)
	return *results[0].RowCount
}

func TestNewExecutorBadURL(t *testing.T) {
	cfg := config.Default()
	cfg.DatabaseURL = "mssql://host/db"
	logger, err := utils.NewLogger(filepath.Join(t.TempDir(), "test.log"), "info", false)
	require.NoError(t, err)

	_, err = NewExecutor(cfg, logger)
	assert.Error(t, err)
}

func TestExecuteStatementsEmpty(t *testing.T) {
	e := newTestExecutor(t, true)
	results, err := e.ExecuteStatements(context.Background(), nil, true)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestExecuteStatementsFetch(t *testing.T) {
	e := newTestExecutor(t, false)
	ctx := context.Background()

	setup := []string{
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)",
		"INSERT INTO users (id, name) VALUES (1, 'ann')",
		"INSERT INTO users (id, name) VALUES (2, 'bo')",
	}
	results, err := e.ExecuteStatements(ctx, setup, false)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, models.StatementExecute, r.Type)
		assert.Equal(t, true, r.Result)
		assert.Nil(t, r.Error)
	}
	// Engine-reported affected count for the inserts.
	require.NotNil(t, results[1].RowCount)
	assert.Equal(t, int64(1), *results[1].RowCount)

	results, err = e.ExecuteStatements(ctx, []string{"SELECT id, name FROM users ORDER BY id"}, false)
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, models.StatementFetch, r.Type)
	assert.Equal(t, []string{"id", "name"}, r.Columns)
	require.NotNil(t, r.RowCount)
	assert.Equal(t, int64(2), *r.RowCount)

	rows := r.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "ann", rows[0]["name"])
	assert.Equal(t, "bo", rows[1]["name"])
}

func TestExecuteStatementsCTE(t *testing.T) {
	e := newTestExecutor(t, false)
	ctx := context.Background()

	_, err := e.ExecuteStatements(ctx, []string{
		"CREATE TABLE t (x INTEGER)",
	}, false)
	require.NoError(t, err)

	// A CTE wrapping an INSERT is an execute: no row payload.
	results, err := e.ExecuteStatements(ctx, []string{
		"WITH src AS (SELECT 41 AS x) INSERT INTO t SELECT x + 1 FROM src",
	}, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.StatementExecute, results[0].Type)
	assert.Equal(t, true, results[0].Result)

	// A CTE wrapping a SELECT is a fetch.
	results, err = e.ExecuteStatements(ctx, []string{
		"WITH vals AS (SELECT x FROM t) SELECT * FROM vals",
	}, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.StatementFetch, results[0].Type)
	rows := results[0].Rows()
	require.Len(t, rows, 1)
	assert.EqualValues(t, 42, rows[0]["x"])
}

// Scenario: stop_on_error=true aborts at the failing statement and rolls the
// whole transaction back. SQLite DDL is transactional, so the table created
// by the first statement must be gone afterwards.
func TestExecuteStatementsStopOnError(t *testing.T) {
	e := newTestExecutor(t, true)
	ctx := context.Background()

	statements := []string{
		"CREATE TABLE t (x INTEGER)",
		"THIS IS NOT SQL",
		"INSERT INTO t VALUES (1)",
	}
	results, err := e.ExecuteStatements(ctx, statements, true)
	require.NoError(t, err)

	// Third statement was never attempted.
	require.Len(t, results, 2)
	assert.Equal(t, models.StatementExecute, results[0].Type)
	assert.Nil(t, results[0].Error)
	assert.Equal(t, models.StatementError, results[1].Type)
	require.NotNil(t, results[1].Error)
	assert.Nil(t, results[1].Result)
	assert.Nil(t, results[1].RowCount)

	count := countRows(t, e, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 't'")
	assert.Zero(t, count, "CREATE TABLE must be rolled back with the batch")
}

// Scenario: stop_on_error=false isolates failures, so every statement yields
// a record and the surrounding statements commit independently.
func TestExecuteStatementsContinueOnError(t *testing.T) {
	e := newTestExecutor(t, false)
	ctx := context.Background()

	statements := []string{
		"CREATE TABLE t (x INTEGER)",
		"THIS IS NOT SQL",
		"INSERT INTO t VALUES (1)",
	}
	results, err := e.ExecuteStatements(ctx, statements, false)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, models.StatementExecute, results[0].Type)
	assert.Equal(t, models.StatementError, results[1].Type)
	assert.Equal(t, models.StatementExecute, results[2].Type)

	assert.EqualValues(t, 1, countRows(t, e, "SELECT x FROM t"))
}

func TestExecuteStatementsResultOrder(t *testing.T) {
	e := newTestExecutor(t, false)
	ctx := context.Background()

	statements := []string{
		"CREATE TABLE seq (n INTEGER)",
		"INSERT INTO seq VALUES (1)",
		"INSERT INTO seq VALUES (2)",
		"SELECT n FROM seq ORDER BY n",
	}
	results, err := e.ExecuteStatements(ctx, statements, false)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for i, r := range results {
		assert.Equal(t, statements[i], r.Statement, "result %d out of order", i)
	}
}

func TestFetchFailureProducesErrorRecord(t *testing.T) {
	e := newTestExecutor(t, false)
	results, err := e.ExecuteStatements(context.Background(),
		[]string{"SELECT * FROM missing_table"}, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.StatementError, results[0].Type)
	require.NotNil(t, results[0].Error)
	assert.NotEmpty(t, *results[0].Error)
}
