package models

import "time"

// StatementType classifies how a statement's outcome is reported.
type StatementType string

const (
	// StatementFetch returns a row set to the caller.
	StatementFetch StatementType = "fetch"
	// StatementExecute mutates state or returns only a status/count.
	StatementExecute StatementType = "execute"
	// StatementError marks a statement whose execution failed.
	// It exists only at the execution layer, never as a classification.
	StatementError StatementType = "error"
)

// ExecutionResult is one record per executed statement. The JSON field set
// {statement, statement_type, result, row_count, error} is a stable contract
// for downstream consumers and must not change shape.
//
// Exactly one of the following holds per record:
//   - fetch success:   Result is the row slice, RowCount == len(rows), Error nil
//   - execute success: Result is true, RowCount is the affected count or nil, Error nil
//   - failure:         Result nil, RowCount nil, Error is the message
type ExecutionResult struct {
	Statement string        `json:"statement"`
	Type      StatementType `json:"statement_type"`
	Result    any           `json:"result"`
	RowCount  *int64        `json:"row_count"`
	Error     *string       `json:"error"`

	// Columns preserves the result-set column order for rendering.
	Columns  []string      `json:"-"`
	Duration time.Duration `json:"-"`
}

// NewFetchResult builds a successful fetch record.
func NewFetchResult(stmt string, columns []string, rows []map[string]any, d time.Duration) ExecutionResult {
	if rows == nil {
		rows = []map[string]any{}
	}
	count := int64(len(rows))
	return ExecutionResult{
		Statement: stmt,
		Type:      StatementFetch,
		Result:    rows,
		RowCount:  &count,
		Columns:   columns,
		Duration:  d,
	}
}

// NewExecuteResult builds a successful execute record. affected is nil when
// the engine does not report a count.
func NewExecuteResult(stmt string, affected *int64, d time.Duration) ExecutionResult {
	return ExecutionResult{
		Statement: stmt,
		Type:      StatementExecute,
		Result:    true,
		RowCount:  affected,
		Duration:  d,
	}
}

// NewErrorResult builds a failure record from a statement-level error.
func NewErrorResult(stmt string, err error, d time.Duration) ExecutionResult {
	msg := err.Error()
	return ExecutionResult{
		Statement: stmt,
		Type:      StatementError,
		Error:     &msg,
		Duration:  d,
	}
}

// Failed reports whether the record represents a failed statement.
func (r ExecutionResult) Failed() bool {
	return r.Type == StatementError
}

// Rows returns the fetched rows, or nil for non-fetch records.
func (r ExecutionResult) Rows() []map[string]any {
	rows, _ := r.Result.([]map[string]any)
	return rows
}
