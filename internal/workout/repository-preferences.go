package workout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/liftforge/liftforge/internal/sqlite"
)

// Profile is the persisted user profile plus standing preferences.
type Profile struct {
	User        UserProfile `json:"user"`
	Preferences Preferences `json:"preferences"`
}

// defaultProfile is returned before the user has saved anything.
func defaultProfile() Profile {
	return Profile{
		User: UserProfile{
			Goal:            GoalGeneral,
			Experience:      ExperienceBeginner,
			PreferredSplit:  SplitPushPullLower,
			WeeklyFrequency: 3,
			SessionMinutes:  45,
		},
		Preferences: Preferences{},
	}
}

// sqlitePreferencesRepository stores the single-row profile record.
type sqlitePreferencesRepository struct {
	baseRepository
}

func newSQLitePreferencesRepository(db *sqlite.Database, logger *slog.Logger) *sqlitePreferencesRepository {
	return &sqlitePreferencesRepository{baseRepository: newBaseRepository(db, logger)}
}

// Get retrieves the stored profile, falling back to defaults when the row is
// missing.
func (r *sqlitePreferencesRepository) Get(ctx context.Context) (Profile, error) {
	var (
		profile           = defaultProfile()
		equipmentCSV      string
		injuriesCSV       string
		preferredTypesCSV string
		bodyweightOnly    bool
		allowTimedWork    bool
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT goal, experience, preferred_split, session_minutes, weekly_frequency,
		       bodyweight_only, allow_timed_work, equipment, injuries, preferred_types,
		       schedule_constraint_minutes
		FROM preferences
		WHERE id = 1`).Scan(
		&profile.User.Goal, &profile.User.Experience, &profile.User.PreferredSplit,
		&profile.User.SessionMinutes, &profile.User.WeeklyFrequency,
		&bodyweightOnly, &allowTimedWork, &equipmentCSV, &injuriesCSV, &preferredTypesCSV,
		&profile.Preferences.ScheduleConstraintMinutes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultProfile(), nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("query preferences: %w", err)
	}

	profile.Preferences.BodyweightOnly = bodyweightOnly
	profile.Preferences.AllowTimedWork = allowTimedWork
	profile.Preferences.Equipment = parseEquipmentCSV(equipmentCSV)
	profile.Preferences.Injuries = splitCSV(injuriesCSV)
	profile.Preferences.PreferredTypes = parseExerciseTypeCSV(preferredTypesCSV)

	if profile.Preferences.DislikedExerciseIDs, err = r.fetchDislikes(ctx); err != nil {
		return Profile{}, fmt.Errorf("fetch dislikes: %w", err)
	}
	return profile, nil
}

// Set saves the profile.
func (r *sqlitePreferencesRepository) Set(ctx context.Context, profile Profile) (err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO preferences (id, goal, experience, preferred_split, session_minutes, weekly_frequency,
		                         bodyweight_only, allow_timed_work, equipment, injuries, preferred_types,
		                         schedule_constraint_minutes)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			goal = excluded.goal,
			experience = excluded.experience,
			preferred_split = excluded.preferred_split,
			session_minutes = excluded.session_minutes,
			weekly_frequency = excluded.weekly_frequency,
			bodyweight_only = excluded.bodyweight_only,
			allow_timed_work = excluded.allow_timed_work,
			equipment = excluded.equipment,
			injuries = excluded.injuries,
			preferred_types = excluded.preferred_types,
			schedule_constraint_minutes = excluded.schedule_constraint_minutes`,
		profile.User.Goal, profile.User.Experience, profile.User.PreferredSplit,
		profile.User.SessionMinutes, profile.User.WeeklyFrequency,
		profile.Preferences.BodyweightOnly, profile.Preferences.AllowTimedWork,
		formatEquipmentCSV(profile.Preferences.Equipment),
		joinCSV(profile.Preferences.Injuries),
		formatExerciseTypeCSV(profile.Preferences.PreferredTypes),
		profile.Preferences.ScheduleConstraintMinutes); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM disliked_exercises`); err != nil {
		return fmt.Errorf("clear dislikes: %w", err)
	}
	for _, id := range profile.Preferences.DislikedExerciseIDs {
		if _, err = tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO disliked_exercises (exercise_id) VALUES (?)`, id); err != nil {
			return fmt.Errorf("insert dislike %d: %w", id, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *sqlitePreferencesRepository) fetchDislikes(ctx context.Context) (_ []int, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT exercise_id FROM disliked_exercises ORDER BY exercise_id`)
	if err != nil {
		return nil, fmt.Errorf("query dislikes: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var ids []int
	for rows.Next() {
		var id int
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan dislike: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return ids, nil
}

func splitCSV(csv string) []string {
	if csv == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(csv, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

func joinCSV(parts []string) string {
	return strings.Join(parts, ",")
}

func parseEquipmentCSV(csv string) []EquipmentTag {
	parts := splitCSV(csv)
	if len(parts) == 0 {
		return nil
	}
	tags := make([]EquipmentTag, 0, len(parts))
	for _, p := range parts {
		tags = append(tags, EquipmentTag(p))
	}
	return tags
}

func formatEquipmentCSV(tags []EquipmentTag) string {
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		parts = append(parts, string(t))
	}
	return joinCSV(parts)
}

func parseExerciseTypeCSV(csv string) []ExerciseType {
	parts := splitCSV(csv)
	if len(parts) == 0 {
		return nil
	}
	types := make([]ExerciseType, 0, len(parts))
	for _, p := range parts {
		types = append(types, ExerciseType(p))
	}
	return types
}

func formatExerciseTypeCSV(types []ExerciseType) string {
	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, string(t))
	}
	return joinCSV(parts)
}
