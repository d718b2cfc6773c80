package workout

import (
	"fmt"
	"time"

	"github.com/liftforge/liftforge/internal/errors"
)

// SchemaVersion is the context schema version this engine accepts.
const SchemaVersion = "1"

// Sentinel errors surfaced by the engine. Only ErrInvalidContext is a hard
// failure; constraint exhaustion is absorbed through progressive relaxation
// and surfaces as ErrInsufficientCatalog only when even the bodyweight
// fallback cannot fill the minimum exercise count.
var (
	ErrInvalidContext      = errors.NewSentinel("invalid generation context")
	ErrInsufficientCatalog = errors.NewSentinel("insufficient exercise catalog")
)

// Requested duration bounds in minutes.
const (
	minSessionMinutes = 10
	maxSessionMinutes = 240
)

// UserProfile describes the user the workout is generated for.
type UserProfile struct {
	Goal                  Goal            `json:"goal"`
	Experience            ExperienceLevel `json:"experience"`
	Gender                string          `json:"gender,omitempty"`
	PreferredSplit        SplitType       `json:"preferred_split"`
	WeeklyFrequency       int             `json:"weekly_frequency"`
	SessionMinutes        int             `json:"session_minutes"`
	TimezoneOffsetMinutes int             `json:"timezone_offset_minutes"`
}

// Preferences carries the user's standing equipment and exercise preferences.
type Preferences struct {
	Equipment                 []EquipmentTag `json:"equipment"`
	BodyweightOnly            bool           `json:"bodyweight_only"`
	DislikedExerciseIDs       []int          `json:"disliked_exercise_ids,omitempty"`
	PreferredTypes            []ExerciseType `json:"preferred_types,omitempty"`
	Injuries                  []string       `json:"injuries,omitempty"`
	ScheduleConstraintMinutes int            `json:"schedule_constraint_minutes,omitempty"`
	AllowTimedWork            bool           `json:"allow_timed_work"`
}

// MuscleRecovery is one muscle's recovery snapshot from the external recovery
// subsystem.
type MuscleRecovery struct {
	Muscle          MuscleGroup `json:"muscle"`
	RecoveryPercent float64     `json:"recovery_percent"`
	ReadyInHours    float64     `json:"ready_in_hours"`
}

// RecoverySnapshot is the per-muscle recovery state plus optional readiness
// scores. Consumed read-only.
type RecoverySnapshot struct {
	Muscles        []MuscleRecovery `json:"muscles,omitempty"`
	ReadinessScore float64          `json:"readiness_score,omitempty"`
	HRVScore       float64          `json:"hrv_score,omitempty"`
	SleepScore     float64          `json:"sleep_score,omitempty"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// levelFor returns the discrete recovery level for a muscle. Muscles missing
// from the snapshot default to fresh.
func (s RecoverySnapshot) levelFor(muscle MuscleGroup) RecoveryLevel {
	for _, m := range s.Muscles {
		if m.Muscle == muscle {
			return levelForRecoveryPercent(m.RecoveryPercent)
		}
	}
	return RecoveryFresh
}

// SessionSummary is a compact record of a recent session.
type SessionSummary struct {
	ID              string        `json:"id"`
	Date            time.Time     `json:"date"`
	DurationMinutes int           `json:"duration_minutes"`
	Muscles         []MuscleGroup `json:"muscles,omitempty"`
	TotalVolumeKg   float64       `json:"total_volume_kg"`
	AverageRPE      float64       `json:"average_rpe"`
}

// PersonalRecord is a best recorded result for an exercise.
type PersonalRecord struct {
	ExerciseID   int       `json:"exercise_id"`
	ExerciseName string    `json:"exercise_name"`
	Value        float64   `json:"value"`
	Metric       string    `json:"metric"`
	Date         time.Time `json:"date"`
}

// TrainingHistory is the recent training record. All fields are optional;
// empty history never fails generation.
type TrainingHistory struct {
	Sessions        []SessionSummary      `json:"sessions,omitempty"`
	PersonalRecords []PersonalRecord      `json:"personal_records,omitempty"`
	Feedback        []PerformanceFeedback `json:"feedback,omitempty"`
}

// lastFeedback returns the most recent session feedback, or nil.
func (h TrainingHistory) lastFeedback() *PerformanceFeedback {
	var latest *PerformanceFeedback
	for i := range h.Feedback {
		f := &h.Feedback[i]
		if latest == nil || f.RecordedAt.After(latest.RecordedAt) {
			latest = f
		}
	}
	return latest
}

// lastUsedWeight returns the most recently reported working weight for an
// exercise, or 0 when none is known.
func (h TrainingHistory) lastUsedWeight(exerciseID int) float64 {
	var (
		weight float64
		at     time.Time
	)
	for _, f := range h.Feedback {
		for _, ef := range f.Exercises {
			if ef.ExerciseID == exerciseID && ef.UsedWeightKg > 0 && !ef.Skipped &&
				(at.IsZero() || f.RecordedAt.After(at)) {
				weight = ef.UsedWeightKg
				at = f.RecordedAt
			}
		}
	}
	return weight
}

// recordedWeight returns the personal-record weight for an exercise, or 0.
func (h TrainingHistory) recordedWeight(exerciseID int) float64 {
	for _, pr := range h.PersonalRecords {
		if pr.ExerciseID == exerciseID && pr.Metric == "weight_kg" {
			return pr.Value
		}
	}
	return 0
}

// SessionConstraints are the per-request knobs for one generation call.
// Muscles and Equipment override the profile/preferences when set.
type SessionConstraints struct {
	Muscles         []MuscleGroup  `json:"muscles,omitempty"`
	DurationMinutes int            `json:"duration_minutes"`
	Equipment       []EquipmentTag `json:"equipment,omitempty"`
	Seed            uint64         `json:"seed"`
	GeneratedAt     time.Time      `json:"generated_at"`
	Phase           SessionPhase   `json:"phase,omitempty"`
	IncludeWarmup   bool           `json:"include_warmup"`
	IncludeCooldown bool           `json:"include_cooldown"`
}

// ContextMetadata versions and attributes the context record.
type ContextMetadata struct {
	SchemaVersion string    `json:"schema_version"`
	GeneratedAt   time.Time `json:"generated_at"`
	Source        string    `json:"source,omitempty"`
}

// GenerationContext is the immutable input snapshot for one generation call.
// The alternate LLM strategy accepts this same schema as a drop-in
// substitute.
type GenerationContext struct {
	User        UserProfile        `json:"user"`
	Preferences Preferences        `json:"preferences"`
	Recovery    RecoverySnapshot   `json:"recovery"`
	History     TrainingHistory    `json:"history"`
	Constraints SessionConstraints `json:"constraints"`
	Metadata    ContextMetadata    `json:"metadata"`
}

// duration returns the requested session duration, falling back to the
// profile's typical duration.
func (c GenerationContext) duration() int {
	if c.Constraints.DurationMinutes > 0 {
		return c.Constraints.DurationMinutes
	}
	return c.User.SessionMinutes
}

// availableEquipment returns the effective equipment set for the call.
// Ad-hoc constraint equipment wins over standing preferences.
func (c GenerationContext) availableEquipment() []EquipmentTag {
	if len(c.Constraints.Equipment) > 0 {
		return c.Constraints.Equipment
	}
	return c.Preferences.Equipment
}

// phase returns the session phase, deriving the goal-aligned initial phase
// when the caller did not carry one over from the previous session.
func (c GenerationContext) phase() SessionPhase {
	if c.Constraints.Phase != "" {
		return c.Constraints.Phase
	}
	return phaseForGoal(c.User.Goal)
}

// Validate fails fast on unsupported enum values and out-of-range durations.
// Missing optional sections (history, recovery) are fine; documented defaults
// apply downstream.
func (c GenerationContext) Validate() error {
	if c.Metadata.SchemaVersion != SchemaVersion {
		return fmt.Errorf("%w: unsupported schema version %q", ErrInvalidContext, c.Metadata.SchemaVersion)
	}
	if !knownGoals[c.User.Goal] {
		return fmt.Errorf("%w: unknown goal %q", ErrInvalidContext, c.User.Goal)
	}
	switch c.User.Experience {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced:
	default:
		return fmt.Errorf("%w: unknown experience level %q", ErrInvalidContext, c.User.Experience)
	}
	switch c.User.PreferredSplit {
	case SplitPushPullLower, SplitUpperLower, SplitFullBody, "":
	default:
		return fmt.Errorf("%w: unknown split %q", ErrInvalidContext, c.User.PreferredSplit)
	}
	switch c.Constraints.Phase {
	case PhaseStrengthFocus, PhaseVolumeFocus, PhaseConditioningFocus, "":
	default:
		return fmt.Errorf("%w: unknown session phase %q", ErrInvalidContext, c.Constraints.Phase)
	}
	if d := c.duration(); d < minSessionMinutes || d > maxSessionMinutes {
		return fmt.Errorf("%w: duration %d minutes outside %d..%d", ErrInvalidContext, d, minSessionMinutes, maxSessionMinutes)
	}
	if c.Constraints.GeneratedAt.IsZero() && c.Metadata.GeneratedAt.IsZero() {
		return fmt.Errorf("%w: missing generation timestamp", ErrInvalidContext)
	}
	return nil
}
