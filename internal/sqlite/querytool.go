package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

// ReadOnlyQueryTool executes ad-hoc SELECT statements against the read-only
// connection. The connection is opened with query_only, so writes fail at the
// driver level; the statement validation here rejects the operations that
// could still escape that restriction.
type ReadOnlyQueryTool struct {
	db      *Database
	timeout time.Duration
	maxRows int
}

// QueryResult is the tabular result of a query.
type QueryResult struct {
	Columns  []string `json:"columns"`
	Rows     [][]any  `json:"rows"`
	RowCount int      `json:"row_count"`
}

// NewReadOnlyQueryTool creates a query tool with default limits.
func NewReadOnlyQueryTool(db *Database) *ReadOnlyQueryTool {
	const defaultTimeout = 5 * time.Second
	const defaultMaxRows = 1000

	return &ReadOnlyQueryTool{
		db:      db,
		timeout: defaultTimeout,
		maxRows: defaultMaxRows,
	}
}

// WithTimeout configures the maximum execution time for queries.
func (t *ReadOnlyQueryTool) WithTimeout(timeout time.Duration) *ReadOnlyQueryTool {
	t.timeout = timeout
	return t
}

// WithMaxRows configures the maximum number of rows to return.
func (t *ReadOnlyQueryTool) WithMaxRows(maxRows int) *ReadOnlyQueryTool {
	t.maxRows = maxRows
	return t
}

//nolint:gochecknoglobals // compiled once at startup.
var restrictedStatements = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bATTACH\s+DATABASE\b`),
	regexp.MustCompile(`(?i)\bPRAGMA\b`),
	regexp.MustCompile(`(?i)\bLOAD_EXTENSION\b`),
}

// Validate rejects statements that are not plain read queries.
func (t *ReadOnlyQueryTool) Validate(query string) error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return errors.New("empty query")
	}

	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return errors.New("only SELECT queries are allowed")
	}

	for _, pattern := range restrictedStatements {
		if pattern.MatchString(trimmed) {
			return errors.New("query contains restricted operations")
		}
	}

	return nil
}

// Query validates and executes a read query, capping the result set at the
// configured maximum row count.
func (t *ReadOnlyQueryTool) Query(ctx context.Context, query string) (*QueryResult, error) {
	if err := t.Validate(query); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	rows, err := t.db.ReadOnly.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			t.db.logger.LogAttrs(ctx, slog.LevelError, "close rows", slog.Any("error", closeErr))
		}
	}()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	result := &QueryResult{
		Columns:  columns,
		Rows:     nil,
		RowCount: 0,
	}
	for rows.Next() {
		if result.RowCount >= t.maxRows {
			break
		}
		row, scanErr := scanGenericRow(rows, len(columns))
		if scanErr != nil {
			return nil, scanErr
		}
		result.Rows = append(result.Rows, row)
		result.RowCount++
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return result, nil
}

// scanGenericRow scans a row of unknown shape, converting byte slices to
// strings for JSON compatibility.
func scanGenericRow(rows interface{ Scan(...any) error }, columnCount int) ([]any, error) {
	values := make([]any, columnCount)
	pointers := make([]any, columnCount)
	for i := range values {
		pointers[i] = &values[i]
	}

	if err := rows.Scan(pointers...); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	for i, val := range values {
		if b, ok := val.([]byte); ok {
			values[i] = string(b)
		}
	}

	return values, nil
}
