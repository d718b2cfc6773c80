package workout

import (
	"math"
)

// Time budget constants. All values are seconds unless noted.
const (
	// transitionBufferSeconds is always reserved for moving between
	// exercises and stations.
	transitionBufferSeconds = 60

	// Warm-up and cool-down scale with session length: fixed floors up to
	// shortSessionMinutes, then a linear ramp to the ceilings. The combined
	// ramp rate stays below 60 s/min so available work never shrinks as the
	// requested duration grows.
	shortWarmupSeconds           = 240
	fullWarmupSeconds            = 600
	warmupRampSecondsPerMinute   = 8
	shortCooldownSeconds         = 180
	fullCooldownSeconds          = 300
	cooldownRampSecondsPerMinute = 4

	shortSessionMinutes = 30

	// supersetWorkThresholdSeconds is the per-muscle work window below which
	// the denser superset format is chosen.
	supersetWorkThresholdSeconds = 600

	// supersetDensityFactor models rest shared across paired exercises.
	supersetDensityFactor = 0.75

	// Exercise count bounds.
	maxExercisesPerWorkout         = 10
	maxBeginnerExercisesPerWorkout = 6

	secondsPerStrengthRep = 4
	secondsPerRep         = 3
)

// warmupSecondsFor returns the warm-up length for a session duration when the
// warm-up preference is enabled.
func warmupSecondsFor(durationMinutes int) int {
	if durationMinutes <= shortSessionMinutes {
		return shortWarmupSeconds
	}
	warmup := shortWarmupSeconds + (durationMinutes-shortSessionMinutes)*warmupRampSecondsPerMinute
	if warmup > fullWarmupSeconds {
		return fullWarmupSeconds
	}
	return warmup
}

// cooldownSecondsFor returns the cool-down length for a session duration when
// the cool-down preference is enabled.
func cooldownSecondsFor(durationMinutes int) int {
	if durationMinutes <= shortSessionMinutes {
		return shortCooldownSeconds
	}
	cooldown := shortCooldownSeconds + (durationMinutes-shortSessionMinutes)*cooldownRampSecondsPerMinute
	if cooldown > fullCooldownSeconds {
		return fullCooldownSeconds
	}
	return cooldown
}

// budgetFor decomposes a requested duration into warm-up, work, cool-down and
// buffer seconds and decides the workout format. Available work never goes
// negative: warm-up is clamped down first, then cool-down, before touching
// the buffer.
func budgetFor(durationMinutes int, includeWarmup, includeCooldown bool, muscleCount int) TimeBudget {
	total := durationMinutes * 60

	warmup := 0
	if includeWarmup {
		warmup = warmupSecondsFor(durationMinutes)
	}
	cooldown := 0
	if includeCooldown {
		cooldown = cooldownSecondsFor(durationMinutes)
	}

	work := total - warmup - cooldown - transitionBufferSeconds
	if work < 0 {
		warmup += work
		if warmup < 0 {
			cooldown += warmup
			warmup = 0
		}
		if cooldown < 0 {
			cooldown = 0
		}
		work = total - warmup - cooldown - transitionBufferSeconds
		if work < 0 {
			work = 0
		}
	}

	return TimeBudget{
		WarmupSeconds:   warmup,
		WorkSeconds:     work,
		CooldownSeconds: cooldown,
		BufferSeconds:   transitionBufferSeconds,
		TotalSeconds:    total,
		Format:          formatFor(work, muscleCount),
	}
}

// formatFor chooses straight sets or supersets. Short work windows relative
// to the number of muscle groups prefer the denser superset format; the
// choice is monotone in available work seconds.
func formatFor(workSeconds, muscleCount int) WorkoutFormat {
	if muscleCount < 1 {
		muscleCount = 1
	}
	if workSeconds/muscleCount < supersetWorkThresholdSeconds {
		return FormatSuperset
	}
	return FormatStraightSets
}

// secondsPerExercise estimates how long one exercise occupies the work window
// for the given phase: sets x (rep execution + rest).
func secondsPerExercise(phase SessionPhase, experience ExperienceLevel) int {
	zone := phase.zone()
	sets := setCountFor(phase, experience)
	perRep := secondsPerRep
	if phase == PhaseStrengthFocus {
		perRep = secondsPerStrengthRep
	}
	targetReps := (zone.low + zone.high) / 2
	return sets * (targetReps*perRep + zone.restSeconds)
}

// exerciseCounts is the optimal total and per-muscle exercise count for a
// budget.
type exerciseCounts struct {
	total     int
	perMuscle int
}

// exerciseCountFor computes how many exercises fit the budget. The total is
// monotonically non-decreasing in duration for a fixed muscle-group count and
// experience level, so the capacity estimate ignores the format: applying the
// superset density bonus here would drop the count at the moment a longer
// session flips to straight sets. perMuscle is the total's rounded division
// across the requested muscle groups, minimum 1 per group.
func exerciseCountFor(budget TimeBudget, phase SessionPhase, experience ExperienceLevel, muscleCount int) exerciseCounts {
	if muscleCount < 1 {
		muscleCount = 1
	}

	perExercise := float64(secondsPerExercise(phase, experience))
	total := int(float64(budget.WorkSeconds) / perExercise)
	if total < 1 {
		total = 1
	}
	limit := maxExercisesPerWorkout
	if experience == ExperienceBeginner {
		limit = maxBeginnerExercisesPerWorkout
	}
	if total > limit {
		total = limit
	}

	perMuscle := int(math.Round(float64(total) / float64(muscleCount)))
	if perMuscle < 1 {
		perMuscle = 1
	}

	return exerciseCounts{total: total, perMuscle: perMuscle}
}
