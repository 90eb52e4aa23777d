// Package output renders batch results as human-readable text or as JSON
// with the stable per-statement record shape.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/iyuangang/sql-batch-runner/pkg/models"
)

// Format selects a rendering.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat converts a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown output format: %q", s)
}

// Printer writes batch results to a single destination.
type Printer struct {
	w      io.Writer
	format Format
}

func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format}
}

// PrintSummary renders the whole batch. JSON output is one document holding
// every file with its statement records.
func (p *Printer) PrintSummary(summary *models.BatchSummary) error {
	if p.format == FormatJSON {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	for i := range summary.Files {
		p.printFile(&summary.Files[i])
	}

	fmt.Fprintf(p.w, "\n%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(p.w, "Summary: %d/%d files processed successfully\n",
		summary.FilesPassed, summary.FilesProcessed)
	fmt.Fprintf(p.w, "%s\n", strings.Repeat("=", 60))
	return nil
}

func (p *Printer) printFile(fr *models.FileResult) {
	fmt.Fprintf(p.w, "\n%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(p.w, "Results for: %s (%s)\n", fr.Path, fr.Status())
	fmt.Fprintf(p.w, "%s\n", strings.Repeat("=", 60))

	if fr.Error != "" {
		fmt.Fprintf(p.w, "Error: %s\n", fr.Error)
		if len(fr.Results) == 0 {
			return
		}
	}

	for i, r := range fr.Results {
		fmt.Fprintf(p.w, "\nStatement %d:\n", i+1)
		fmt.Fprintf(p.w, "Type: %s\n", r.Type)
		fmt.Fprintf(p.w, "SQL: %s\n", r.Statement)

		switch r.Type {
		case models.StatementError:
			fmt.Fprintf(p.w, "Error: %s\n", *r.Error)
		case models.StatementFetch:
			fmt.Fprintf(p.w, "Rows returned: %d\n", *r.RowCount)
			if rows := r.Rows(); len(rows) > 0 {
				p.printRows(r.Columns, rows)
			} else {
				fmt.Fprintln(p.w, "(no rows)")
			}
		default:
			fmt.Fprintln(p.w, "Statement executed successfully")
		}
		fmt.Fprintf(p.w, "%s\n", strings.Repeat("-", 40))
	}
}

// printRows renders a result set in column order.
func (p *Printer) printRows(columns []string, rows []map[string]any) {
	table := tablewriter.NewWriter(p.w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader(columns)

	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = formatCell(row[col])
		}
		table.Append(cells)
	}
	table.Render()
}

func formatCell(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}
