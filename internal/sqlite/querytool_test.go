package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/liftforge/liftforge/internal/sqlite"
	"github.com/liftforge/liftforge/internal/testhelpers"
)

func newTestDatabase(t *testing.T) *sqlite.Database {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite.NewDatabase(ctx, ":memory:", testhelpers.NewLogger(testhelpers.NewWriter(t)))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("close database: %v", closeErr)
		}
	})

	return db
}

func TestReadOnlyQueryTool_Query(t *testing.T) {
	db := newTestDatabase(t)
	tool := sqlite.NewReadOnlyQueryTool(db)
	ctx := context.Background()

	result, err := tool.Query(ctx, "SELECT id, name FROM exercises WHERE name = 'Barbell Bench Press'")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if diff := cmp.Diff([]string{"id", "name"}, result.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if result.RowCount != 1 {
		t.Fatalf("expected 1 row, got %d", result.RowCount)
	}
	if got := result.Rows[0][1]; got != "Barbell Bench Press" {
		t.Errorf("expected exercise name, got %v", got)
	}
}

func TestReadOnlyQueryTool_Validate(t *testing.T) {
	db := newTestDatabase(t)
	tool := sqlite.NewReadOnlyQueryTool(db)

	allowed := []string{
		"SELECT * FROM exercises",
		"SELECT COUNT(*) FROM exercises WHERE exercise_type = 'strength'",
		"WITH counts AS (SELECT target_muscle, COUNT(*) AS n FROM exercises GROUP BY target_muscle) " +
			"SELECT * FROM counts ORDER BY n DESC",
	}
	for _, query := range allowed {
		t.Run(query, func(t *testing.T) {
			if err := tool.Validate(query); err != nil {
				t.Errorf("expected query to be allowed, got error: %v", err)
			}
		})
	}

	forbidden := []struct {
		query string
		desc  string
	}{
		{"INSERT INTO exercises (name) VALUES ('x')", "INSERT statement"},
		{"UPDATE exercises SET name = 'x'", "UPDATE statement"},
		{"DELETE FROM exercises", "DELETE statement"},
		{"DROP TABLE exercises", "DROP statement"},
		{"ATTACH DATABASE 'other.db' AS other", "ATTACH DATABASE"},
		{"PRAGMA table_info(exercises)", "PRAGMA statement"},
		{"SELECT LOAD_EXTENSION('x')", "LOAD_EXTENSION"},
		{"", "empty query"},
		{"   ", "whitespace only query"},
	}
	for _, tc := range forbidden {
		t.Run(tc.desc, func(t *testing.T) {
			if err := tool.Validate(tc.query); err == nil {
				t.Errorf("expected query to be forbidden: %s", tc.query)
			}
		})
	}
}

func TestReadOnlyQueryTool_RowLimit(t *testing.T) {
	db := newTestDatabase(t)
	tool := sqlite.NewReadOnlyQueryTool(db).WithMaxRows(2).WithTimeout(time.Second)
	ctx := context.Background()

	result, err := tool.Query(ctx, "SELECT id FROM exercises")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.RowCount != 2 {
		t.Errorf("expected row count limited to 2, got %d", result.RowCount)
	}
}

func TestReadOnlyQueryTool_RejectsWriteAtDriver(t *testing.T) {
	db := newTestDatabase(t)
	tool := sqlite.NewReadOnlyQueryTool(db)
	ctx := context.Background()

	// A SELECT that references a missing table surfaces the driver error.
	if _, err := tool.Query(ctx, "SELECT * FROM missing_table"); err == nil {
		t.Fatal("expected error for nonexistent table")
	}
}
