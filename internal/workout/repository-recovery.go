package workout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/liftforge/liftforge/internal/sqlite"
)

// sqliteRecoveryRepository stores the per-muscle recovery snapshot.
type sqliteRecoveryRepository struct {
	baseRepository
}

func newSQLiteRecoveryRepository(db *sqlite.Database, logger *slog.Logger) *sqliteRecoveryRepository {
	return &sqliteRecoveryRepository{baseRepository: newBaseRepository(db, logger)}
}

// Snapshot reads the current recovery state. An empty table yields an empty
// snapshot; missing muscles are treated as fresh downstream.
func (r *sqliteRecoveryRepository) Snapshot(ctx context.Context) (_ RecoverySnapshot, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT muscle, recovery_percent, ready_in_hours, updated_at
		FROM muscle_recovery
		ORDER BY muscle`)
	if err != nil {
		return RecoverySnapshot{}, fmt.Errorf("query muscle recovery: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var snapshot RecoverySnapshot
	for rows.Next() {
		var (
			mr         MuscleRecovery
			updatedStr string
		)
		if err = rows.Scan(&mr.Muscle, &mr.RecoveryPercent, &mr.ReadyInHours, &updatedStr); err != nil {
			return RecoverySnapshot{}, fmt.Errorf("scan muscle recovery: %w", err)
		}
		var updatedAt time.Time
		if updatedAt, err = time.Parse(timestampFormat, updatedStr); err != nil {
			return RecoverySnapshot{}, fmt.Errorf("parse updated_at: %w", err)
		}
		if updatedAt.After(snapshot.UpdatedAt) {
			snapshot.UpdatedAt = updatedAt
		}
		snapshot.Muscles = append(snapshot.Muscles, mr)
	}
	if err = rows.Err(); err != nil {
		return RecoverySnapshot{}, fmt.Errorf("rows error: %w", err)
	}
	return snapshot, nil
}

// SetMuscle upserts one muscle's recovery state.
func (r *sqliteRecoveryRepository) SetMuscle(ctx context.Context, mr MuscleRecovery, at time.Time) error {
	_, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO muscle_recovery (muscle, recovery_percent, ready_in_hours, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (muscle) DO UPDATE SET
			recovery_percent = excluded.recovery_percent,
			ready_in_hours = excluded.ready_in_hours,
			updated_at = excluded.updated_at`,
		mr.Muscle, mr.RecoveryPercent, mr.ReadyInHours, at.UTC().Format(timestampFormat))
	if err != nil {
		return fmt.Errorf("upsert muscle recovery: %w", err)
	}
	return nil
}
