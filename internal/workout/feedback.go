package workout

import (
	"time"
)

// DifficultyRating is the discrete post-session difficulty judgment.
type DifficultyRating string

// Difficulty rating constants.
const (
	DifficultyTooEasy     DifficultyRating = "too_easy"
	DifficultyJustRight   DifficultyRating = "just_right"
	DifficultyChallenging DifficultyRating = "challenging"
	DifficultyTooHard     DifficultyRating = "too_hard"
)

// rpeBand maps a difficulty rating to its canonical RPE range and the
// estimated-RPE midpoint used when no explicit RPE was reported.
type rpeBand struct {
	low      float64
	high     float64
	estimate float64
}

var difficultyRPEBands = map[DifficultyRating]rpeBand{
	DifficultyTooEasy:     {low: 1, high: 5, estimate: 3},
	DifficultyJustRight:   {low: 5, high: 7, estimate: 6},
	DifficultyChallenging: {low: 7, high: 9, estimate: 8},
	DifficultyTooHard:     {low: 9, high: 10, estimate: 9.5},
}

// RPERange returns the canonical RPE band for the rating.
func (d DifficultyRating) RPERange() (low, high float64) {
	b := d.band()
	return b.low, b.high
}

// EstimatedRPE returns the midpoint estimate for the rating.
func (d DifficultyRating) EstimatedRPE() float64 {
	return d.band().estimate
}

func (d DifficultyRating) band() rpeBand {
	if b, ok := difficultyRPEBands[d]; ok {
		return b
	}
	return difficultyRPEBands[DifficultyJustRight]
}

// ExerciseFeedback records the performance of one exercise in a completed
// session.
type ExerciseFeedback struct {
	ExerciseID    int              `json:"exercise_id"`
	CompletedSets int              `json:"completed_sets"`
	CompletedReps int              `json:"completed_reps"`
	UsedWeightKg  float64          `json:"used_weight_kg"`
	Difficulty    DifficultyRating `json:"difficulty"`
	Skipped       bool             `json:"skipped"`
}

// PerformanceFeedback is created once per completed session by the caller and
// is immutable afterwards.
type PerformanceFeedback struct {
	WorkoutID      string             `json:"workout_id"`
	OverallRPE     float64            `json:"overall_rpe"`
	Difficulty     DifficultyRating   `json:"difficulty"`
	CompletionRate float64            `json:"completion_rate"`
	Exercises      []ExerciseFeedback `json:"exercises,omitempty"`
	RecordedAt     time.Time          `json:"recorded_at"`
}

// effectiveRPE prefers the reported RPE and falls back to the difficulty
// rating's estimate when no RPE was reported.
func (f PerformanceFeedback) effectiveRPE() float64 {
	if f.OverallRPE > 0 {
		return f.OverallRPE
	}
	return f.Difficulty.EstimatedRPE()
}
