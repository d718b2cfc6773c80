package workout

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/liftforge/liftforge/internal/ptr"
)

// Assembly constants.
const (
	accessoryMoveSeconds  = 60
	maxAccessoryMoves     = 4
	warmupSetRestSeconds  = 30
	firstWarmupSetFactor  = 0.5
	secondWarmupSetFactor = 0.7
	firstWarmupSetReps    = 8
	secondWarmupSetReps   = 5
	weightRoundingKg      = 0.5
)

// setCountFor returns the base working-set count for a phase. Beginners are
// capped at three sets.
func setCountFor(phase SessionPhase, experience ExperienceLevel) int {
	sets := 3
	if phase == PhaseStrengthFocus {
		sets = 4
	}
	if experience == ExperienceBeginner && sets > 3 {
		sets = 3
	}
	return sets
}

// assembleWorkout combines the selected exercises with the time budget and
// auto-regulation deltas into the final workout. All inputs are pre-validated
// by the upstream components; an invariant violation here is a programming
// error and is returned as such.
func assembleWorkout(
	genCtx GenerationContext,
	id string,
	date time.Time,
	muscles []MuscleGroup,
	phase SessionPhase,
	budget TimeBudget,
	selected []Exercise,
	pool []Exercise,
	rng *rand.Rand,
) (GeneratedWorkout, error) {
	zone := phase.zone()
	last := genCtx.History.lastFeedback()

	exercises := make([]GeneratedExercise, 0, len(selected))
	for _, ex := range selected {
		recovery := genCtx.Recovery.levelFor(ex.TargetMuscle)
		adj := autoRegulate(RepRange{Low: zone.low, High: zone.high}, recovery, last)

		rest := zone.restSeconds + adj.restDeltaSeconds
		if rest < 0 {
			rest = 0
		}

		ge := GeneratedExercise{
			Exercise:      ex,
			SetCount:      setCountFor(phase, genCtx.User.Experience),
			Reps:          adj.reps,
			TargetReps:    targetRepsFor(adj.reps, adj.targetBias),
			IntensityZone: zone.name,
			RestSeconds:   rest,
		}

		if weight := suggestedWeightFor(genCtx.History, ex, adj.intensityMultiplier); weight > 0 {
			ge.SuggestedWeightKg = ptr.Ref(weight)
			if genCtx.Constraints.IncludeWarmup {
				ge.WarmupSets = warmupSetsFor(weight)
			}
		}

		exercises = append(exercises, ge)
	}

	workout := GeneratedWorkout{
		ID:         id,
		Date:       date,
		Title:      titleForDay(muscles, phase),
		Goal:       genCtx.User.Goal,
		Phase:      phase,
		Difficulty: genCtx.User.Experience,
		Format:     budget.Format,
		Exercises:  exercises,
	}

	if genCtx.Constraints.IncludeWarmup {
		workout.Warmup = accessoryMoves(pool, muscles, budget.WarmupSeconds,
			[]ExerciseType{ExerciseTypeAerobic, ExerciseTypeStretching}, rng)
	}
	if genCtx.Constraints.IncludeCooldown {
		workout.Cooldown = accessoryMoves(pool, muscles, budget.CooldownSeconds,
			[]ExerciseType{ExerciseTypeStretching}, rng)
	}

	workout.EstimatedDurationSeconds = estimateDuration(workout, budget)

	if err := workout.validate(); err != nil {
		return GeneratedWorkout{}, fmt.Errorf("assembled workout failed validation: %w", err)
	}
	return workout, nil
}

// suggestedWeightFor derives a working weight from the most recent use of the
// exercise, falling back to the personal record, scaled by the intensity
// multiplier. Returns 0 when no load history exists.
func suggestedWeightFor(history TrainingHistory, ex Exercise, intensity float64) float64 {
	base := history.lastUsedWeight(ex.ID)
	if base == 0 {
		base = history.recordedWeight(ex.ID)
	}
	if base == 0 {
		return 0
	}
	return roundToIncrement(base*intensity, weightRoundingKg)
}

// warmupSetsFor builds the ramp-up sets toward a working weight.
func warmupSetsFor(workingWeightKg float64) []WarmupSet {
	return []WarmupSet{
		{WeightKg: roundToIncrement(workingWeightKg*firstWarmupSetFactor, weightRoundingKg), Reps: firstWarmupSetReps},
		{WeightKg: roundToIncrement(workingWeightKg*secondWarmupSetFactor, weightRoundingKg), Reps: secondWarmupSetReps},
	}
}

func roundToIncrement(v, increment float64) float64 {
	return math.Round(v/increment) * increment
}

// accessoryMoves fills the warm-up or cool-down window with timed movements
// of the wanted types, preferring moves that touch the day's muscles.
func accessoryMoves(pool []Exercise, muscles []MuscleGroup, windowSeconds int, types []ExerciseType, rng *rand.Rand) []AccessoryMove {
	count := windowSeconds / accessoryMoveSeconds
	if count > maxAccessoryMoves {
		count = maxAccessoryMoves
	}
	if count < 1 {
		return nil
	}

	wanted := make(map[ExerciseType]bool, len(types))
	for _, t := range types {
		wanted[t] = true
	}

	var matching, other []Exercise
	for _, ex := range pool {
		if !wanted[ex.Type] {
			continue
		}
		if worksAnyMuscle(ex, muscles) {
			matching = append(matching, ex)
		} else {
			other = append(other, ex)
		}
	}

	candidates := append(shuffled(matching, rng), shuffled(other, rng)...)
	if len(candidates) > count {
		candidates = candidates[:count]
	}

	moves := make([]AccessoryMove, 0, len(candidates))
	for _, ex := range candidates {
		moves = append(moves, AccessoryMove{Exercise: ex, DurationSeconds: accessoryMoveSeconds})
	}
	return moves
}

func worksAnyMuscle(ex Exercise, muscles []MuscleGroup) bool {
	for _, m := range muscles {
		if worksMuscle(ex, m) {
			return true
		}
	}
	return false
}

// shuffled returns a name-sorted copy shuffled with the seeded source so the
// result is deterministic for a fixed seed.
func shuffled(exercises []Exercise, rng *rand.Rand) []Exercise {
	out := make([]Exercise, len(exercises))
	copy(out, exercises)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// estimateDuration sums the constituent exercise times plus the fixed
// overhead. The estimate tracks the budget within the tolerance documented on
// GeneratedWorkout.
func estimateDuration(w GeneratedWorkout, budget TimeBudget) int {
	perRep := secondsPerRep
	if w.Phase == PhaseStrengthFocus {
		perRep = secondsPerStrengthRep
	}

	work := 0.0
	for _, ge := range w.Exercises {
		work += float64(ge.SetCount * (ge.TargetReps*perRep + ge.RestSeconds))
		for _, ws := range ge.WarmupSets {
			work += float64(ws.Reps*perRep + warmupSetRestSeconds)
		}
	}
	if w.Format == FormatSuperset {
		work *= supersetDensityFactor
	}

	total := int(work) + budget.BufferSeconds
	for _, m := range w.Warmup {
		total += m.DurationSeconds
	}
	for _, m := range w.Cooldown {
		total += m.DurationSeconds
	}
	return total
}

// validate checks the output invariants. Upstream components pre-validate all
// inputs, so a failure here means a bug in the pipeline, not bad input.
func (w GeneratedWorkout) validate() error {
	if w.ID == "" {
		return fmt.Errorf("workout has empty id")
	}
	if len(w.Exercises) == 0 {
		return fmt.Errorf("workout has no exercises")
	}

	seen := make(map[int]bool, len(w.Exercises))
	for _, ge := range w.Exercises {
		if seen[ge.Exercise.ID] {
			return fmt.Errorf("duplicate exercise %d in workout", ge.Exercise.ID)
		}
		seen[ge.Exercise.ID] = true

		if ge.SetCount < 1 {
			return fmt.Errorf("exercise %d has set count %d", ge.Exercise.ID, ge.SetCount)
		}
		if ge.Reps.Low > ge.Reps.High {
			return fmt.Errorf("exercise %d has inverted rep range %d-%d", ge.Exercise.ID, ge.Reps.Low, ge.Reps.High)
		}
		if ge.TargetReps < ge.Reps.Low || ge.TargetReps > ge.Reps.High {
			return fmt.Errorf("exercise %d target reps %d outside range %d-%d",
				ge.Exercise.ID, ge.TargetReps, ge.Reps.Low, ge.Reps.High)
		}
		if ge.RestSeconds < 0 {
			return fmt.Errorf("exercise %d has negative rest", ge.Exercise.ID)
		}
	}

	if w.EstimatedDurationSeconds < 0 {
		return fmt.Errorf("negative estimated duration")
	}
	return nil
}
