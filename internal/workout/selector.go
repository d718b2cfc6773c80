package workout

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
)

// Exercise selection constants.
const (
	// minWorkoutExercises is the smallest workout the selector will accept
	// before relaxing filters further.
	minWorkoutExercises = 3

	// Ranking weights. Loadable implements beat elastic resistance for
	// load-driven goals whenever both survive filtering; the margin is wide
	// enough that no bonus combination can flip the ordering.
	targetMuscleBonus    = 2.0
	loadableBonus        = 3.0
	bandsOnlyPenalty     = 2.0
	conditioningBonus    = 1.5
	preferredTypeBonus   = 1.0
	compoundBonusPerUnit = 0.4
	compoundBonusMax     = 1.2
	ratedComplexityBonus = 0.2
	tieBreakJitter       = 0.25
)

// relaxation levels for progressive constraint relaxation. Preference filters
// drop before anything else; injury exclusions are never relaxed.
type relaxationLevel int

const (
	relaxNone relaxationLevel = iota
	relaxPreferences
	relaxBodyweight
)

// selectionCriteria gathers the inputs of one selection pass.
type selectionCriteria struct {
	muscles        []MuscleGroup
	goal           Goal
	experience     ExperienceLevel
	equipment      []EquipmentTag
	bodyweightOnly bool
	dislikes       []int
	preferredTypes []ExerciseType
	injuries       []string
	allowTimedWork bool
	perMuscle      int
	minTotal       int
}

// rankedExercise pairs an exercise with its resolved equipment and score for
// one muscle group.
type rankedExercise struct {
	exercise Exercise
	resolved equipmentSet
	score    float64
}

// selectExercises filters the catalog by equipment/injury/dislike constraints,
// ranks candidates per muscle group with a goal-aware score, and picks the top
// perMuscle per group in muscle order, deduplicated by exercise id.
//
// Constraint exhaustion is absorbed by relaxing preference filters first and
// falling back to bodyweight-only selection before failing with
// ErrInsufficientCatalog.
func selectExercises(pool []Exercise, criteria selectionCriteria, rng *rand.Rand) ([]Exercise, error) {
	for _, level := range []relaxationLevel{relaxNone, relaxPreferences, relaxBodyweight} {
		candidates := filterPool(pool, criteria, level)
		selected := pickTopRanked(candidates, criteria, level, rng)
		if len(selected) >= criteria.minTotal {
			return selected, nil
		}
	}
	return nil, fmt.Errorf("%w: fewer than %d exercises survive filtering for muscles %v",
		ErrInsufficientCatalog, criteria.minTotal, criteria.muscles)
}

// filterPool applies the hard filters for a relaxation level.
func filterPool(pool []Exercise, criteria selectionCriteria, level relaxationLevel) []rankedExercise {
	bodyweightPass := level == relaxBodyweight || criteria.bodyweightOnly || len(criteria.equipment) == 0

	available := newEquipmentSet(criteria.equipment...)
	available.add(EquipmentBodyweight)

	disliked := make(map[int]bool, len(criteria.dislikes))
	for _, id := range criteria.dislikes {
		disliked[id] = true
	}

	allowAerobic := criteria.allowTimedWork || phaseForGoal(criteria.goal) == PhaseConditioningFocus

	maxComplexity := maxComplexityFor(criteria.experience)

	var candidates []rankedExercise
	for _, ex := range pool {
		// Stretching belongs to warm-up/cool-down lists, never the main work.
		if ex.Type == ExerciseTypeStretching {
			continue
		}
		if ex.Type == ExerciseTypeAerobic && !allowAerobic {
			continue
		}
		if ex.Complexity > maxComplexity {
			continue
		}
		// Injury exclusions are a safety filter and apply at every level.
		if conflictsWithInjury(ex, criteria.injuries) {
			continue
		}
		if level == relaxNone && disliked[ex.ID] {
			continue
		}

		resolved := resolveEquipment(ex)
		if bodyweightPass {
			if !isBodyweightOnly(resolved) {
				continue
			}
		} else if !resolved.subsetOf(available) {
			continue
		}

		candidates = append(candidates, rankedExercise{exercise: ex, resolved: resolved})
	}
	return candidates
}

// conflictsWithInjury reports whether an exercise touches any injured area.
// Injury strings are matched case-insensitively against the target muscle,
// synergists, and body part.
func conflictsWithInjury(ex Exercise, injuries []string) bool {
	if len(injuries) == 0 {
		return false
	}
	target := strings.ToLower(string(ex.TargetMuscle))
	bodyPart := strings.ToLower(ex.BodyPart)
	for _, injury := range injuries {
		needle := strings.ToLower(strings.TrimSpace(injury))
		if needle == "" {
			continue
		}
		if strings.Contains(target, needle) || strings.Contains(bodyPart, needle) {
			return true
		}
		for _, syn := range ex.Synergists {
			if strings.Contains(strings.ToLower(string(syn)), needle) {
				return true
			}
		}
	}
	return false
}

// pickTopRanked ranks the candidates per muscle group and takes the top
// perMuscle from each bucket, concatenated in muscle-group order and
// deduplicated by exercise id.
func pickTopRanked(candidates []rankedExercise, criteria selectionCriteria, level relaxationLevel, rng *rand.Rand) []Exercise {
	chosen := make(map[int]bool)
	var selected []Exercise

	for _, muscle := range criteria.muscles {
		bucket := rankForMuscle(candidates, muscle, criteria, level, rng)
		taken := 0
		for _, rc := range bucket {
			if taken >= criteria.perMuscle {
				break
			}
			if chosen[rc.exercise.ID] {
				continue
			}
			chosen[rc.exercise.ID] = true
			selected = append(selected, rc.exercise)
			taken++
		}
	}
	return selected
}

// rankForMuscle scores the candidates working a muscle group and sorts them
// best first. Ties beyond the seeded jitter break on name then id so the
// ordering is fully deterministic for a fixed seed.
func rankForMuscle(candidates []rankedExercise, muscle MuscleGroup, criteria selectionCriteria, level relaxationLevel, rng *rand.Rand) []rankedExercise {
	var bucket []rankedExercise
	for _, rc := range candidates {
		if !worksMuscle(rc.exercise, muscle) {
			continue
		}
		rc.score = scoreExercise(rc, muscle, criteria, level) + rng.Float64()*tieBreakJitter
		bucket = append(bucket, rc)
	}

	sort.SliceStable(bucket, func(i, j int) bool {
		if bucket[i].score != bucket[j].score {
			return bucket[i].score > bucket[j].score
		}
		if bucket[i].exercise.Name != bucket[j].exercise.Name {
			return bucket[i].exercise.Name < bucket[j].exercise.Name
		}
		return bucket[i].exercise.ID < bucket[j].exercise.ID
	})
	return bucket
}

// worksMuscle reports whether the exercise targets the muscle directly or as
// a synergist.
func worksMuscle(ex Exercise, muscle MuscleGroup) bool {
	if ex.TargetMuscle == muscle {
		return true
	}
	for _, syn := range ex.Synergists {
		if syn == muscle {
			return true
		}
	}
	return false
}

// goalPrioritizesLoad reports whether the goal favors progressively loadable
// implements over elastic resistance.
func goalPrioritizesLoad(goal Goal) bool {
	switch goal {
	case GoalHypertrophy, GoalStrength, GoalPower, GoalPowerlifting, GoalGeneral:
		return true
	default:
		return false
	}
}

// scoreExercise computes the goal-aware ranking score for one candidate
// against one muscle group.
func scoreExercise(rc rankedExercise, muscle MuscleGroup, criteria selectionCriteria, level relaxationLevel) float64 {
	score := 0.0
	ex := rc.exercise

	if ex.TargetMuscle == muscle {
		score += targetMuscleBonus
	}

	if goalPrioritizesLoad(criteria.goal) {
		switch {
		case isLoadable(rc.resolved):
			score += loadableBonus
		case isBandsOnly(rc.resolved):
			score -= bandsOnlyPenalty
		}
	}

	if phaseForGoal(criteria.goal) == PhaseConditioningFocus &&
		(ex.Type == ExerciseTypeAerobic || ex.Type == ExerciseTypePlyometrics) {
		score += conditioningBonus
	}

	if level == relaxNone {
		for _, t := range criteria.preferredTypes {
			if ex.Type == t {
				score += preferredTypeBonus
				break
			}
		}
	}

	compound := compoundBonusPerUnit * float64(len(ex.Synergists))
	if compound > compoundBonusMax {
		compound = compoundBonusMax
	}
	score += compound

	if ex.Complexity > 0 && ex.Complexity <= maxComplexityFor(criteria.experience) {
		score += ratedComplexityBonus
	}

	return score
}
