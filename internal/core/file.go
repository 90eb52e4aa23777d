package core

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/iyuangang/sql-batch-runner/internal/sqlparse"
	"github.com/iyuangang/sql-batch-runner/internal/utils"
	"github.com/iyuangang/sql-batch-runner/pkg/models"
)

// ProcessFile validates, parses, and executes one SQL file. A security
// violation or read failure aborts the file before any statement runs, so
// such files carry a file-level error and zero statement results.
func (e *Executor) ProcessFile(ctx context.Context, path string) models.FileResult {
	start := time.Now()
	fr := models.FileResult{Path: path}

	fail := func(err error) models.FileResult {
		e.logger.Errorw("file rejected", "file", path, "error", err)
		fr.Error = err.Error()
		fr.Duration = time.Since(start)
		return fr
	}

	if err := e.validator.ValidatePath(path); err != nil {
		return fail(err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fail(fmt.Errorf("read sql file: %w", err))
	}

	if err := e.validator.ValidateContent(string(content)); err != nil {
		return fail(err)
	}

	statements := sqlparse.ParseStatements(string(content))
	if len(statements) == 0 {
		e.logger.Infow("no executable statements", "file", path)
		fr.Results = []models.ExecutionResult{}
		fr.Duration = time.Since(start)
		return fr
	}

	e.logger.Infow("executing file",
		"file", path,
		"statements", len(statements),
		"stop_on_error", e.cfg.Execution.StopOnError)

	timeout := time.Duration(e.cfg.Execution.TimeoutSeconds) * time.Second
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results, err := e.ExecuteStatements(execCtx, statements, e.cfg.Execution.StopOnError)
	fr.Results = results
	if err != nil {
		// Fatal condition (transaction could not begin or commit), not a
		// per-statement failure.
		fr.Error = err.Error()
	}
	fr.Duration = time.Since(start)
	return fr
}

// ProcessFiles executes a batch of files in the given order and aggregates
// the outcomes. progress may be nil.
func (e *Executor) ProcessFiles(ctx context.Context, paths []string, progress *utils.Progress) *models.BatchSummary {
	summary := &models.BatchSummary{}
	e.metrics.Start()

	for _, path := range paths {
		summary.Add(e.ProcessFile(ctx, path))
		if progress != nil {
			progress.Increment()
		}
	}

	e.metrics.End()
	e.logger.Infow("batch finished",
		"files", summary.FilesProcessed,
		"passed", summary.FilesPassed,
		"failed", summary.FilesFailed,
		"mixed", summary.FilesMixed,
		"stats", e.metrics.String())
	return summary
}
