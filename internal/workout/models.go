// Package workout implements the deterministic workout generation and
// periodization engine. Given a read-only context snapshot (catalog, equipment,
// recovery, history, seed) it produces a single GeneratedWorkout with no
// observable side effects.
package workout

import (
	"time"
)

// MuscleGroup identifies a trainable muscle group in the catalog taxonomy.
type MuscleGroup string

// Muscle group constants.
const (
	MuscleChest      MuscleGroup = "chest"
	MuscleBack       MuscleGroup = "back"
	MuscleShoulders  MuscleGroup = "shoulders"
	MuscleBiceps     MuscleGroup = "biceps"
	MuscleTriceps    MuscleGroup = "triceps"
	MuscleForearms   MuscleGroup = "forearms"
	MuscleQuadriceps MuscleGroup = "quadriceps"
	MuscleHamstrings MuscleGroup = "hamstrings"
	MuscleGlutes     MuscleGroup = "glutes"
	MuscleCalves     MuscleGroup = "calves"
	MuscleAbdominals MuscleGroup = "abdominals"
	MuscleLowerBack  MuscleGroup = "lower back"
)

// ExerciseType classifies the catalog entry by modality.
type ExerciseType string

// Exercise type constants.
const (
	ExerciseTypeStrength    ExerciseType = "strength"
	ExerciseTypeAerobic     ExerciseType = "aerobic"
	ExerciseTypeStretching  ExerciseType = "stretching"
	ExerciseTypePlyometrics ExerciseType = "plyometrics"
)

// Exercise is an immutable catalog entry. The catalog is owned by an external
// provider; this engine never mutates it.
type Exercise struct {
	ID            int           `json:"id"`
	Name          string        `json:"name"`
	Type          ExerciseType  `json:"type"`
	BodyPart      string        `json:"body_part"`
	Equipment     string        `json:"equipment"`
	TargetMuscle  MuscleGroup   `json:"target_muscle"`
	Synergists    []MuscleGroup `json:"synergists"`
	Complexity    int           `json:"complexity"`
	NotesMarkdown string        `json:"notes_markdown"`
}

// Goal is the user's primary training goal.
type Goal string

// Goal constants.
const (
	GoalStrength     Goal = "strength"
	GoalPower        Goal = "power"
	GoalPowerlifting Goal = "powerlifting"
	GoalHypertrophy  Goal = "hypertrophy"
	GoalGeneral      Goal = "general"
	GoalEndurance    Goal = "endurance"
	GoalTone         Goal = "tone"
	GoalSport        Goal = "sport"
)

// knownGoals enumerates every supported goal for context validation.
var knownGoals = map[Goal]bool{
	GoalStrength:     true,
	GoalPower:        true,
	GoalPowerlifting: true,
	GoalHypertrophy:  true,
	GoalGeneral:      true,
	GoalEndurance:    true,
	GoalTone:         true,
	GoalSport:        true,
}

// ExperienceLevel is the user's self-reported training experience.
type ExperienceLevel string

// Experience level constants.
const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

// maxComplexityFor returns the highest catalog complexity rating the
// experience level supports. Unrated exercises (complexity 0) always pass.
func maxComplexityFor(level ExperienceLevel) int {
	switch level {
	case ExperienceBeginner:
		return 2
	case ExperienceIntermediate:
		return 4
	case ExperienceAdvanced:
		return 5
	default:
		return 2
	}
}

// SplitType names a weekly muscle-split rotation.
type SplitType string

// Split type constants.
const (
	SplitPushPullLower SplitType = "push_pull_lower"
	SplitUpperLower    SplitType = "upper_lower"
	SplitFullBody      SplitType = "full_body"
)

// SessionPhase is the periodization emphasis of a single session. Phases cycle
// strength → volume → conditioning → strength with no terminal state.
type SessionPhase string

// Session phase constants.
const (
	PhaseStrengthFocus     SessionPhase = "strength_focus"
	PhaseVolumeFocus       SessionPhase = "volume_focus"
	PhaseConditioningFocus SessionPhase = "conditioning_focus"
)

// Next returns the following phase in the cycle.
func (p SessionPhase) Next() SessionPhase {
	switch p {
	case PhaseStrengthFocus:
		return PhaseVolumeFocus
	case PhaseVolumeFocus:
		return PhaseConditioningFocus
	case PhaseConditioningFocus:
		return PhaseStrengthFocus
	default:
		return PhaseVolumeFocus
	}
}

// repZone is the rep-range band and default rest implied by a phase.
type repZone struct {
	name        string
	low         int
	high        int
	restSeconds int
}

// Rep zones per phase. Keep data and behavior together; display strings
// belong to the caller.
var phaseZones = map[SessionPhase]repZone{
	PhaseStrengthFocus:     {name: "strength", low: 3, high: 6, restSeconds: 180},
	PhaseVolumeFocus:       {name: "hypertrophy", low: 8, high: 15, restSeconds: 90},
	PhaseConditioningFocus: {name: "endurance", low: 15, high: 25, restSeconds: 60},
}

// zone returns the rep zone for the phase, defaulting to the volume zone for
// unknown values.
func (p SessionPhase) zone() repZone {
	if z, ok := phaseZones[p]; ok {
		return z
	}
	return phaseZones[PhaseVolumeFocus]
}

// RecoveryLevel is the discrete per-muscle recovery status supplied by the
// external recovery subsystem.
type RecoveryLevel string

// Recovery level constants.
const (
	RecoveryFresh    RecoveryLevel = "fresh"
	RecoveryModerate RecoveryLevel = "moderate"
	RecoveryFatigued RecoveryLevel = "fatigued"
)

// recoveryAdjustment carries the fixed rep adjustment and intensity
// multiplier for a recovery level.
type recoveryAdjustment struct {
	repAdjustment       int
	intensityMultiplier float64
}

var recoveryAdjustments = map[RecoveryLevel]recoveryAdjustment{
	RecoveryFresh:    {repAdjustment: -1, intensityMultiplier: 1.0},
	RecoveryModerate: {repAdjustment: 0, intensityMultiplier: 0.9},
	RecoveryFatigued: {repAdjustment: 2, intensityMultiplier: 0.8},
}

// adjustment returns the rep/intensity table entry for the level. Unknown
// levels behave as moderate.
func (l RecoveryLevel) adjustment() recoveryAdjustment {
	if a, ok := recoveryAdjustments[l]; ok {
		return a
	}
	return recoveryAdjustments[RecoveryModerate]
}

// levelForRecoveryPercent maps a recovery percentage to the discrete level.
func levelForRecoveryPercent(percent float64) RecoveryLevel {
	switch {
	case percent >= 80:
		return RecoveryFresh
	case percent >= 50:
		return RecoveryModerate
	default:
		return RecoveryFatigued
	}
}

// RepRange is an inclusive rep-count band with Low <= High.
type RepRange struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// WorkoutFormat tags how exercises are sequenced within the session.
type WorkoutFormat string

// Workout format constants.
const (
	FormatStraightSets WorkoutFormat = "straight_sets"
	FormatSuperset     WorkoutFormat = "superset"
)

// TimeBudget is the decomposition of a session's requested duration. Derived
// per generation call and never persisted independently.
type TimeBudget struct {
	WarmupSeconds   int           `json:"warmup_seconds"`
	WorkSeconds     int           `json:"work_seconds"`
	CooldownSeconds int           `json:"cooldown_seconds"`
	BufferSeconds   int           `json:"buffer_seconds"`
	TotalSeconds    int           `json:"total_seconds"`
	Format          WorkoutFormat `json:"format"`
}

// WarmupSet is a single ramp-up set before the working sets of an exercise.
type WarmupSet struct {
	WeightKg float64 `json:"weight_kg"`
	Reps     int     `json:"reps"`
}

// GeneratedExercise is one prescribed exercise inside a GeneratedWorkout.
// Invariants: Reps.Low <= TargetReps <= Reps.High, SetCount >= 1,
// RestSeconds >= 0.
type GeneratedExercise struct {
	Exercise          Exercise    `json:"exercise"`
	SetCount          int         `json:"set_count"`
	Reps              RepRange    `json:"rep_range"`
	TargetReps        int         `json:"target_reps"`
	IntensityZone     string      `json:"intensity_zone"`
	SuggestedWeightKg *float64    `json:"suggested_weight_kg,omitempty"`
	RestSeconds       int         `json:"rest_seconds"`
	WarmupSets        []WarmupSet `json:"warmup_sets,omitempty"`
}

// AccessoryMove is a timed warm-up or cool-down movement.
type AccessoryMove struct {
	Exercise        Exercise `json:"exercise"`
	DurationSeconds int      `json:"duration_seconds"`
}

// GeneratedWorkout is the engine output: an immutable, time-bounded session
// plan. Downstream consumers copy values into their own session state.
type GeneratedWorkout struct {
	ID                       string              `json:"id"`
	Date                     time.Time           `json:"date"`
	Title                    string              `json:"title"`
	Goal                     Goal                `json:"goal"`
	Phase                    SessionPhase        `json:"phase"`
	Difficulty               ExperienceLevel     `json:"difficulty"`
	Format                   WorkoutFormat       `json:"format"`
	Exercises                []GeneratedExercise `json:"exercises"`
	Warmup                   []AccessoryMove     `json:"warmup,omitempty"`
	Cooldown                 []AccessoryMove     `json:"cooldown,omitempty"`
	EstimatedDurationSeconds int                 `json:"estimated_duration_seconds"`
}
