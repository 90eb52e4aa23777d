// Package core executes parsed SQL batches against a database and assembles
// structured per-statement results.
package core

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/iyuangang/sql-batch-runner/internal/config"
	"github.com/iyuangang/sql-batch-runner/internal/db"
	"github.com/iyuangang/sql-batch-runner/internal/security"
	"github.com/iyuangang/sql-batch-runner/internal/sqlparse"
	"github.com/iyuangang/sql-batch-runner/internal/utils"
	"github.com/iyuangang/sql-batch-runner/pkg/models"
)

// Executor runs statement batches. It is a pure consumer of the connection
// pool and the security validator; all state lives in the database.
type Executor struct {
	pool      *db.Pool
	logger    *zap.SugaredLogger
	validator *security.Validator
	cfg       *config.Config
	metrics   *utils.Metrics
}

// NewExecutor connects to the configured database and prepares an executor.
func NewExecutor(cfg *config.Config, logger *zap.SugaredLogger) (*Executor, error) {
	pool, err := db.NewPool(cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}

	return &Executor{
		pool:      pool,
		logger:    logger,
		validator: security.NewValidator(cfg.Security),
		cfg:       cfg,
		metrics:   utils.NewMetrics(),
	}, nil
}

// Metrics exposes the run counters.
func (e *Executor) Metrics() *utils.Metrics {
	return e.metrics
}

// Close releases the database connection.
func (e *Executor) Close() error {
	return e.pool.Close()
}

// execer is the common surface of *sql.Tx used per statement.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ExecuteStatements runs statements in order under one of two transaction
// policies.
//
// stopOnError=true: one transaction for the whole batch. The first failing
// statement is recorded, the transaction is rolled back (undoing earlier
// statements), and the remaining statements are not attempted.
//
// stopOnError=false: each statement runs in its own transaction. Failures
// are rolled back individually and execution continues, so n statements
// always produce n records.
//
// Statement failures are data, not errors: the error return is reserved for
// fatal conditions outside statement execution (cannot begin or commit a
// transaction).
func (e *Executor) ExecuteStatements(ctx context.Context, statements []string, stopOnError bool) ([]models.ExecutionResult, error) {
	if len(statements) == 0 {
		return []models.ExecutionResult{}, nil
	}
	if stopOnError {
		return e.executeSingleTx(ctx, statements)
	}
	return e.executeIsolated(ctx, statements)
}

func (e *Executor) executeSingleTx(ctx context.Context, statements []string) ([]models.ExecutionResult, error) {
	tx, err := e.pool.BeginTx(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]models.ExecutionResult, 0, len(statements))
	for _, stmt := range statements {
		res := e.runStatement(ctx, tx, stmt)
		results = append(results, res)
		e.metrics.AddStatement(res.Duration, !res.Failed())

		if res.Failed() {
			if rbErr := tx.Rollback(); rbErr != nil {
				e.logger.Warnw("rollback failed", "error", rbErr)
			}
			e.logger.Infow("batch aborted on first error",
				"executed", len(results), "total", len(statements))
			return results, nil
		}
	}

	if err := tx.Commit(); err != nil {
		return results, err
	}
	return results, nil
}

func (e *Executor) executeIsolated(ctx context.Context, statements []string) ([]models.ExecutionResult, error) {
	results := make([]models.ExecutionResult, 0, len(statements))
	for _, stmt := range statements {
		tx, err := e.pool.BeginTx(ctx)
		if err != nil {
			return results, err
		}

		res := e.runStatement(ctx, tx, stmt)
		if res.Failed() {
			if rbErr := tx.Rollback(); rbErr != nil {
				e.logger.Warnw("rollback failed", "error", rbErr)
			}
		} else if err := tx.Commit(); err != nil {
			res = models.NewErrorResult(stmt, err, res.Duration)
		}

		results = append(results, res)
		e.metrics.AddStatement(res.Duration, !res.Failed())
	}
	return results, nil
}

// runStatement classifies and executes one statement, converting any
// database error into an error record.
func (e *Executor) runStatement(ctx context.Context, tx execer, stmt string) models.ExecutionResult {
	stmtType := sqlparse.DetectStatementType(stmt)
	start := time.Now()

	if stmtType == models.StatementFetch {
		columns, rows, err := e.fetchRows(ctx, tx, stmt)
		duration := time.Since(start)
		if err != nil {
			e.logger.Errorw("statement failed", "sql", stmt, "error", err)
			return models.NewErrorResult(stmt, err, duration)
		}
		e.logger.Debugw("statement fetched", "sql", stmt, "rows", len(rows), "duration", duration)
		return models.NewFetchResult(stmt, columns, rows, duration)
	}

	result, err := tx.ExecContext(ctx, stmt)
	duration := time.Since(start)
	if err != nil {
		e.logger.Errorw("statement failed", "sql", stmt, "error", err)
		return models.NewErrorResult(stmt, err, duration)
	}

	var affected *int64
	if n, err := result.RowsAffected(); err == nil {
		affected = &n
	}
	e.logger.Debugw("statement executed", "sql", stmt, "duration", duration)
	return models.NewExecuteResult(stmt, affected, duration)
}

// fetchRows collects a full result set as ordered column names plus one
// map per row. []byte values are converted to strings so results render
// and marshal cleanly.
func (e *Executor) fetchRows(ctx context.Context, tx execer, stmt string) ([]string, []map[string]any, error) {
	rows, err := tx.QueryContext(ctx, stmt)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	out := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		scanArgs := make([]any, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, nil, err
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			switch v := values[i].(type) {
			case []byte:
				row[col] = string(v)
			default:
				row[col] = v
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return columns, out, nil
}
