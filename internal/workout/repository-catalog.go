package workout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/liftforge/liftforge/internal/sqlite"
)

// sqliteCatalogRepository stores the exercise catalog.
type sqliteCatalogRepository struct {
	baseRepository
}

func newSQLiteCatalogRepository(db *sqlite.Database, logger *slog.Logger) *sqliteCatalogRepository {
	return &sqliteCatalogRepository{baseRepository: newBaseRepository(db, logger)}
}

// Get retrieves a single exercise by ID.
func (r *sqliteCatalogRepository) Get(ctx context.Context, id int) (Exercise, error) {
	var ex Exercise
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, name, exercise_type, body_part, target_muscle, equipment, complexity, notes_markdown
		FROM exercises
		WHERE id = ?`, id).Scan(
		&ex.ID, &ex.Name, &ex.Type, &ex.BodyPart, &ex.TargetMuscle, &ex.Equipment, &ex.Complexity, &ex.NotesMarkdown,
	)
	if err != nil {
		return Exercise{}, fmt.Errorf("query exercise: %w", notFoundAs(err))
	}

	if ex.Synergists, err = r.fetchSynergists(ctx, ex.ID); err != nil {
		return Exercise{}, fmt.Errorf("fetch synergists for exercise %d: %w", ex.ID, err)
	}
	return ex, nil
}

// List returns the whole catalog with synergist muscles attached.
func (r *sqliteCatalogRepository) List(ctx context.Context) (_ []Exercise, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, name, exercise_type, body_part, target_muscle, equipment, complexity, notes_markdown
		FROM exercises
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var exercises []Exercise
	for rows.Next() {
		var ex Exercise
		if err = rows.Scan(
			&ex.ID, &ex.Name, &ex.Type, &ex.BodyPart, &ex.TargetMuscle,
			&ex.Equipment, &ex.Complexity, &ex.NotesMarkdown,
		); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		exercises = append(exercises, ex)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	synergists, err := r.fetchAllSynergists(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch synergists: %w", err)
	}
	for i := range exercises {
		exercises[i].Synergists = synergists[exercises[i].ID]
	}
	return exercises, nil
}

// Upsert inserts or replaces an exercise, keyed by name when the ID is unset.
// Used by the catalog importer.
func (r *sqliteCatalogRepository) Upsert(ctx context.Context, ex Exercise) (_ Exercise, err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return ex, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	var result sql.Result
	if ex.ID > 0 {
		result, err = tx.ExecContext(ctx, `
			INSERT INTO exercises (id, name, exercise_type, body_part, target_muscle, equipment, complexity, notes_markdown)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name,
				exercise_type = excluded.exercise_type,
				body_part = excluded.body_part,
				target_muscle = excluded.target_muscle,
				equipment = excluded.equipment,
				complexity = excluded.complexity,
				notes_markdown = excluded.notes_markdown`,
			ex.ID, ex.Name, ex.Type, ex.BodyPart, ex.TargetMuscle, ex.Equipment, ex.Complexity, ex.NotesMarkdown)
	} else {
		result, err = tx.ExecContext(ctx, `
			INSERT INTO exercises (name, exercise_type, body_part, target_muscle, equipment, complexity, notes_markdown)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (name) DO UPDATE SET
				exercise_type = excluded.exercise_type,
				body_part = excluded.body_part,
				target_muscle = excluded.target_muscle,
				equipment = excluded.equipment,
				complexity = excluded.complexity,
				notes_markdown = excluded.notes_markdown`,
			ex.Name, ex.Type, ex.BodyPart, ex.TargetMuscle, ex.Equipment, ex.Complexity, ex.NotesMarkdown)
	}
	if err != nil {
		return ex, fmt.Errorf("upsert exercise: %w", err)
	}

	if ex.ID == 0 {
		// LastInsertId is unreliable after ON CONFLICT updates, so resolve by name.
		if err = tx.QueryRowContext(ctx, `SELECT id FROM exercises WHERE name = ?`, ex.Name).Scan(&ex.ID); err != nil {
			return ex, fmt.Errorf("resolve exercise id: %w", err)
		}
		_ = result
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM exercise_synergists WHERE exercise_id = ?`, ex.ID); err != nil {
		return ex, fmt.Errorf("clear synergists: %w", err)
	}
	for _, muscle := range ex.Synergists {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO exercise_synergists (exercise_id, muscle) VALUES (?, ?)`,
			ex.ID, muscle); err != nil {
			return ex, fmt.Errorf("insert synergist %s: %w", muscle, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return ex, fmt.Errorf("commit transaction: %w", err)
	}
	return ex, nil
}

func (r *sqliteCatalogRepository) fetchSynergists(ctx context.Context, exerciseID int) (_ []MuscleGroup, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT muscle FROM exercise_synergists WHERE exercise_id = ? ORDER BY muscle`, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("query synergists: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var muscles []MuscleGroup
	for rows.Next() {
		var m MuscleGroup
		if err = rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scan synergist: %w", err)
		}
		muscles = append(muscles, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return muscles, nil
}

func (r *sqliteCatalogRepository) fetchAllSynergists(ctx context.Context) (_ map[int][]MuscleGroup, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT exercise_id, muscle FROM exercise_synergists ORDER BY exercise_id, muscle`)
	if err != nil {
		return nil, fmt.Errorf("query synergists: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	synergists := make(map[int][]MuscleGroup)
	for rows.Next() {
		var (
			id int
			m  MuscleGroup
		)
		if err = rows.Scan(&id, &m); err != nil {
			return nil, fmt.Errorf("scan synergist: %w", err)
		}
		synergists[id] = append(synergists[id], m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return synergists, nil
}
