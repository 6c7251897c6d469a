// package formatter renders run summaries to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/sparkify/internal/models"
	"github.com/desertthunder/sparkify/internal/shared"
	"github.com/desertthunder/sparkify/internal/tasks"
)

// Format names accepted by [Export] and [WriteReport].
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
)

// ExportToCSV converts a RunResult to CSV with columns: Directory, Metric, Value.
//
// Each directory contributes its file counts followed by one row per table it inserted into.
func ExportToCSV(result *tasks.RunResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Directory", "Metric", "Value"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, dir := range result.Dirs() {
		records := [][]string{
			{dir.Root, "found", strconv.Itoa(dir.Found)},
			{dir.Root, "processed", strconv.Itoa(dir.Processed)},
			{dir.Root, "failed", strconv.Itoa(len(dir.Failed))},
		}
		for _, table := range tablesOf(dir) {
			records = append(records, []string{dir.Root, "rows." + string(table), strconv.Itoa(dir.Rows[table])})
		}

		for _, record := range records {
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a RunResult to Markdown with a section and row table per directory
func ExportToMarkdown(result *tasks.RunResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# ETL Run\n\n")
	buf.WriteString(fmt.Sprintf("**Started**: %s\n", result.StartedAt.Format(time.RFC3339)))
	buf.WriteString(fmt.Sprintf("**Duration**: %s\n\n", formatDuration(result.Duration())))

	for _, dir := range result.Dirs() {
		buf.WriteString(fmt.Sprintf("## %s\n\n", dir.Root))
		buf.WriteString(fmt.Sprintf("**Files**: %d found, %d processed, %d failed\n", dir.Found, dir.Processed, len(dir.Failed)))
		if dir.Events > 0 {
			buf.WriteString(fmt.Sprintf("**Events**: %d read, %d song plays, %d resolved\n", dir.Events, dir.Plays, dir.Resolved))
		}
		buf.WriteString("\n")

		if tables := tablesOf(dir); len(tables) > 0 {
			buf.WriteString("| Table | Rows |\n|---|---|\n")
			for _, table := range tables {
				buf.WriteString(fmt.Sprintf("| %s | %d |\n", table, dir.Rows[table]))
			}
			buf.WriteString("\n")
		}

		if len(dir.Failed) > 0 {
			buf.WriteString("### Failed files\n\n")
			for _, fe := range dir.Failed {
				buf.WriteString(fmt.Sprintf("- `%s`: %v\n", fe.Path, fe.Err))
			}
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a RunResult to plain text format
func ExportToText(result *tasks.RunResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Run finished in %s\n", formatDuration(result.Duration())))

	for _, dir := range result.Dirs() {
		buf.WriteString(fmt.Sprintf("\n%s\n", dir.Root))
		buf.WriteString(fmt.Sprintf("  files: %d found, %d processed, %d failed\n", dir.Found, dir.Processed, len(dir.Failed)))
		for _, table := range tablesOf(dir) {
			buf.WriteString(fmt.Sprintf("  %s: %d rows\n", table, dir.Rows[table]))
		}
		for _, fe := range dir.Failed {
			buf.WriteString(fmt.Sprintf("  skipped %s: %v\n", fe.Path, fe.Err))
		}
	}

	return buf.Bytes(), nil
}

// Export renders result in the named format.
func Export(result *tasks.RunResult, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatText, "txt":
		return ExportToText(result)
	case FormatMarkdown, "md":
		return ExportToMarkdown(result)
	case FormatCSV:
		return ExportToCSV(result)
	default:
		return nil, fmt.Errorf("%w: unknown report format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteReport renders result in the named format and writes it to path.
func WriteReport(result *tasks.RunResult, format, path string) error {
	if path == "" {
		return fmt.Errorf("%w: report path", shared.ErrMissingArgument)
	}

	data, err := Export(result, format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}

	return nil
}

// tablesOf lists the tables dir inserted into, in load order.
func tablesOf(dir *tasks.DirResult) []models.Table {
	var tables []models.Table
	for _, table := range models.Tables {
		if _, ok := dir.Rows[table]; ok {
			tables = append(tables, table)
		}
	}
	return tables
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
