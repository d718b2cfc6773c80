package workout

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/liftforge/liftforge/internal/errors"
	"github.com/liftforge/liftforge/internal/sqlite"
)

const timestampFormat = "2006-01-02T15:04:05.000Z"
const dateFormat = time.DateOnly

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.NewSentinel("not found")

// baseRepository carries the shared database handle and logger for the
// SQLite-backed repositories.
type baseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newBaseRepository(db *sqlite.Database, logger *slog.Logger) baseRepository {
	return baseRepository{db: db, logger: logger}
}

// repository aggregates the per-concern repositories behind one handle.
type repository struct {
	catalog  *sqliteCatalogRepository
	sessions *sqliteSessionRepository
	prefs    *sqlitePreferencesRepository
	recovery *sqliteRecoveryRepository
}

func newRepository(db *sqlite.Database, logger *slog.Logger) *repository {
	return &repository{
		catalog:  newSQLiteCatalogRepository(db, logger),
		sessions: newSQLiteSessionRepository(db, logger),
		prefs:    newSQLitePreferencesRepository(db, logger),
		recovery: newSQLiteRecoveryRepository(db, logger),
	}
}

func formatDate(date time.Time) string {
	return date.Format(dateFormat)
}

// notFoundAs maps sql.ErrNoRows to the package sentinel so callers never
// depend on database/sql.
func notFoundAs(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
