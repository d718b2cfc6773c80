package workout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/liftforge/liftforge/internal/sqlite"
)

// sqliteSessionRepository stores generated sessions and their feedback.
type sqliteSessionRepository struct {
	baseRepository
}

func newSQLiteSessionRepository(db *sqlite.Database, logger *slog.Logger) *sqliteSessionRepository {
	return &sqliteSessionRepository{baseRepository: newBaseRepository(db, logger)}
}

// Create persists a generated workout. Regenerating an identical context
// yields an identical ID, so conflicts replace the stored plan.
func (r *sqliteSessionRepository) Create(ctx context.Context, w GeneratedWorkout, split SplitType) error {
	payload, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal workout: %w", err)
	}

	_, err = r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO sessions (id, session_date, phase, goal, split_type, workout_json)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			session_date = excluded.session_date,
			phase = excluded.phase,
			goal = excluded.goal,
			split_type = excluded.split_type,
			workout_json = excluded.workout_json`,
		w.ID, formatDate(w.Date), w.Phase, w.Goal, split, string(payload))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Get retrieves a stored workout by ID.
func (r *sqliteSessionRepository) Get(ctx context.Context, id string) (GeneratedWorkout, error) {
	var payload string
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT workout_json FROM sessions WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		return GeneratedWorkout{}, fmt.Errorf("query session: %w", notFoundAs(err))
	}

	var w GeneratedWorkout
	if err = json.Unmarshal([]byte(payload), &w); err != nil {
		return GeneratedWorkout{}, fmt.Errorf("unmarshal workout: %w", err)
	}
	return w, nil
}

// GetByDate retrieves the stored workout for a calendar date.
func (r *sqliteSessionRepository) GetByDate(ctx context.Context, date time.Time) (GeneratedWorkout, error) {
	var payload string
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT workout_json FROM sessions WHERE session_date = ?
		ORDER BY created_at DESC LIMIT 1`, formatDate(date)).Scan(&payload)
	if err != nil {
		return GeneratedWorkout{}, fmt.Errorf("query session by date: %w", notFoundAs(err))
	}

	var w GeneratedWorkout
	if err = json.Unmarshal([]byte(payload), &w); err != nil {
		return GeneratedWorkout{}, fmt.Errorf("unmarshal workout: %w", err)
	}
	return w, nil
}

// LatestPhase returns the phase of the most recent session, or ErrNotFound
// when no session has been generated yet.
func (r *sqliteSessionRepository) LatestPhase(ctx context.Context) (SessionPhase, error) {
	var phase SessionPhase
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT phase FROM sessions ORDER BY session_date DESC, created_at DESC LIMIT 1`).Scan(&phase)
	if err != nil {
		return "", fmt.Errorf("query latest phase: %w", notFoundAs(err))
	}
	return phase, nil
}

// ListSummaries returns compact summaries of the sessions since a date, most
// recent last.
func (r *sqliteSessionRepository) ListSummaries(ctx context.Context, since time.Time) (_ []SessionSummary, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT s.id, s.session_date, s.workout_json,
		       COALESCE(sf.reported_rpe, 0),
		       COALESCE((SELECT SUM(ef.completed_sets * ef.completed_reps * ef.used_weight_kg)
		                 FROM exercise_feedback ef
		                 WHERE ef.session_id = s.id AND NOT ef.skipped), 0)
		FROM sessions s
		LEFT JOIN session_feedback sf ON sf.session_id = s.id
		WHERE s.session_date >= ?
		ORDER BY s.session_date ASC`, formatDate(since))
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var summaries []SessionSummary
	for rows.Next() {
		var (
			summary SessionSummary
			dateStr string
			payload string
		)
		if err = rows.Scan(&summary.ID, &dateStr, &payload, &summary.AverageRPE, &summary.TotalVolumeKg); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if summary.Date, err = time.Parse(dateFormat, dateStr); err != nil {
			return nil, fmt.Errorf("parse session date: %w", err)
		}

		var w GeneratedWorkout
		if err = json.Unmarshal([]byte(payload), &w); err != nil {
			return nil, fmt.Errorf("unmarshal workout: %w", err)
		}
		summary.DurationMinutes = w.EstimatedDurationSeconds / 60
		for _, ge := range w.Exercises {
			summary.Muscles = appendMuscle(summary.Muscles, ge.Exercise.TargetMuscle)
		}
		summaries = append(summaries, summary)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return summaries, nil
}

func appendMuscle(muscles []MuscleGroup, m MuscleGroup) []MuscleGroup {
	for _, existing := range muscles {
		if existing == m {
			return muscles
		}
	}
	return append(muscles, m)
}

// SaveFeedback stores the post-session feedback for a stored workout.
func (r *sqliteSessionRepository) SaveFeedback(ctx context.Context, fb PerformanceFeedback) (err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO session_feedback (session_id, difficulty, reported_rpe, completion_rate, recorded_at)
		SELECT id, ?, ?, ?, ? FROM sessions WHERE id = ?
		ON CONFLICT (session_id) DO UPDATE SET
			difficulty = excluded.difficulty,
			reported_rpe = excluded.reported_rpe,
			completion_rate = excluded.completion_rate,
			recorded_at = excluded.recorded_at`,
		fb.Difficulty, fb.OverallRPE, fb.CompletionRate,
		fb.RecordedAt.UTC().Format(timestampFormat), fb.WorkoutID)
	if err != nil {
		return fmt.Errorf("insert session feedback: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session %s: %w", fb.WorkoutID, ErrNotFound)
	}

	for _, ef := range fb.Exercises {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO exercise_feedback (session_id, exercise_id, completed_sets, completed_reps, used_weight_kg, skipped)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (session_id, exercise_id) DO UPDATE SET
				completed_sets = excluded.completed_sets,
				completed_reps = excluded.completed_reps,
				used_weight_kg = excluded.used_weight_kg,
				skipped = excluded.skipped`,
			fb.WorkoutID, ef.ExerciseID, ef.CompletedSets, ef.CompletedReps, ef.UsedWeightKg, ef.Skipped); err != nil {
			return fmt.Errorf("insert exercise feedback: %w", err)
		}

		if ef.UsedWeightKg > 0 && !ef.Skipped {
			if _, err = tx.ExecContext(ctx, `
				INSERT INTO personal_records (exercise_id, metric, value, recorded_at)
				VALUES (?, 'weight_kg', ?, ?)
				ON CONFLICT (exercise_id, metric) DO UPDATE SET
					value = excluded.value,
					recorded_at = excluded.recorded_at
				WHERE excluded.value > personal_records.value`,
				ef.ExerciseID, ef.UsedWeightKg, fb.RecordedAt.UTC().Format(timestampFormat)); err != nil {
				return fmt.Errorf("upsert personal record: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListFeedback returns all recorded session feedback since a date.
func (r *sqliteSessionRepository) ListFeedback(ctx context.Context, since time.Time) (_ []PerformanceFeedback, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT sf.session_id, sf.difficulty, sf.reported_rpe, sf.completion_rate, sf.recorded_at
		FROM session_feedback sf
		JOIN sessions s ON s.id = sf.session_id
		WHERE s.session_date >= ?
		ORDER BY sf.recorded_at ASC`, formatDate(since))
	if err != nil {
		return nil, fmt.Errorf("query session feedback: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var feedback []PerformanceFeedback
	for rows.Next() {
		var (
			fb          PerformanceFeedback
			recordedStr string
		)
		if err = rows.Scan(&fb.WorkoutID, &fb.Difficulty, &fb.OverallRPE, &fb.CompletionRate, &recordedStr); err != nil {
			return nil, fmt.Errorf("scan session feedback: %w", err)
		}
		if fb.RecordedAt, err = time.Parse(timestampFormat, recordedStr); err != nil {
			return nil, fmt.Errorf("parse recorded_at: %w", err)
		}
		if fb.Exercises, err = r.fetchExerciseFeedback(ctx, fb.WorkoutID); err != nil {
			return nil, fmt.Errorf("fetch exercise feedback: %w", err)
		}
		feedback = append(feedback, fb)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return feedback, nil
}

func (r *sqliteSessionRepository) fetchExerciseFeedback(ctx context.Context, sessionID string) (_ []ExerciseFeedback, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT exercise_id, completed_sets, completed_reps, used_weight_kg, skipped
		FROM exercise_feedback
		WHERE session_id = ?
		ORDER BY exercise_id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query exercise feedback: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var feedback []ExerciseFeedback
	for rows.Next() {
		var ef ExerciseFeedback
		if err = rows.Scan(&ef.ExerciseID, &ef.CompletedSets, &ef.CompletedReps, &ef.UsedWeightKg, &ef.Skipped); err != nil {
			return nil, fmt.Errorf("scan exercise feedback: %w", err)
		}
		feedback = append(feedback, ef)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return feedback, nil
}

// ListPersonalRecords returns the recorded bests joined with exercise names.
func (r *sqliteSessionRepository) ListPersonalRecords(ctx context.Context) (_ []PersonalRecord, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT pr.exercise_id, e.name, pr.value, pr.metric, pr.recorded_at
		FROM personal_records pr
		JOIN exercises e ON e.id = pr.exercise_id
		ORDER BY pr.exercise_id, pr.metric`)
	if err != nil {
		return nil, fmt.Errorf("query personal records: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var records []PersonalRecord
	for rows.Next() {
		var (
			pr          PersonalRecord
			recordedStr string
		)
		if err = rows.Scan(&pr.ExerciseID, &pr.ExerciseName, &pr.Value, &pr.Metric, &recordedStr); err != nil {
			return nil, fmt.Errorf("scan personal record: %w", err)
		}
		if pr.Date, err = time.Parse(timestampFormat, recordedStr); err != nil {
			return nil, fmt.Errorf("parse recorded_at: %w", err)
		}
		records = append(records, pr)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return records, nil
}
