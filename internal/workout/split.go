package workout

import (
	"time"
)

// Weekday schedules are pure, total mappings: every split defines muscles for
// all 7 weekdays (0=Sunday..6=Saturday) with no missing case.

var pushPullLowerSchedule = map[time.Weekday][]MuscleGroup{
	time.Sunday:    {MuscleChest, MuscleShoulders, MuscleTriceps},
	time.Monday:    {MuscleBack, MuscleBiceps},
	time.Tuesday:   {MuscleQuadriceps, MuscleHamstrings, MuscleGlutes, MuscleCalves},
	time.Wednesday: {MuscleChest, MuscleShoulders, MuscleTriceps},
	time.Thursday:  {MuscleBack, MuscleBiceps},
	time.Friday:    {MuscleQuadriceps, MuscleHamstrings, MuscleGlutes, MuscleCalves},
	time.Saturday:  {MuscleAbdominals, MuscleLowerBack},
}

var upperLowerSchedule = map[time.Weekday][]MuscleGroup{
	time.Sunday:    {MuscleChest, MuscleBack, MuscleShoulders, MuscleBiceps, MuscleTriceps},
	time.Monday:    {MuscleQuadriceps, MuscleHamstrings, MuscleGlutes, MuscleCalves},
	time.Tuesday:   {MuscleChest, MuscleBack, MuscleShoulders, MuscleBiceps, MuscleTriceps},
	time.Wednesday: {MuscleQuadriceps, MuscleHamstrings, MuscleGlutes, MuscleCalves},
	time.Thursday:  {MuscleChest, MuscleBack, MuscleShoulders, MuscleBiceps, MuscleTriceps},
	time.Friday:    {MuscleQuadriceps, MuscleHamstrings, MuscleGlutes, MuscleCalves},
	time.Saturday:  {MuscleAbdominals, MuscleLowerBack},
}

var fullBodySchedule = []MuscleGroup{
	MuscleChest, MuscleBack, MuscleShoulders, MuscleQuadriceps, MuscleHamstrings, MuscleAbdominals,
}

// musclesForDay maps a split type and calendar day to the ordered target
// muscle groups for that day.
func musclesForDay(split SplitType, date time.Time) []MuscleGroup {
	var muscles []MuscleGroup
	switch split {
	case SplitPushPullLower:
		muscles = pushPullLowerSchedule[date.Weekday()]
	case SplitUpperLower:
		muscles = upperLowerSchedule[date.Weekday()]
	case SplitFullBody, "":
		muscles = fullBodySchedule
	default:
		muscles = fullBodySchedule
	}

	// Copy so callers can never mutate the shared tables.
	out := make([]MuscleGroup, len(muscles))
	copy(out, muscles)
	return out
}

// phaseForGoal aligns the initial periodization phase with the training goal.
// The caller carries the current phase across sessions; cycling happens via
// SessionPhase.Next.
func phaseForGoal(goal Goal) SessionPhase {
	switch goal {
	case GoalStrength, GoalPower, GoalPowerlifting:
		return PhaseStrengthFocus
	case GoalHypertrophy, GoalGeneral:
		return PhaseVolumeFocus
	case GoalEndurance, GoalTone, GoalSport:
		return PhaseConditioningFocus
	default:
		return PhaseVolumeFocus
	}
}

// titleForDay derives a human-readable session title from the day's muscles
// and phase.
func titleForDay(muscles []MuscleGroup, phase SessionPhase) string {
	day := "Full Body"
	set := make(map[MuscleGroup]bool, len(muscles))
	for _, m := range muscles {
		set[m] = true
	}
	switch {
	case set[MuscleChest] && set[MuscleTriceps] && !set[MuscleBack]:
		day = "Push Day"
	case set[MuscleBack] && set[MuscleBiceps] && !set[MuscleChest]:
		day = "Pull Day"
	case set[MuscleQuadriceps] && !set[MuscleChest] && !set[MuscleBack]:
		day = "Lower Body Day"
	case set[MuscleAbdominals] && len(muscles) <= 2:
		day = "Core Day"
	}

	switch phase {
	case PhaseStrengthFocus:
		return day + " · Strength Focus"
	case PhaseConditioningFocus:
		return day + " · Conditioning Focus"
	case PhaseVolumeFocus:
		return day + " · Volume Focus"
	default:
		return day
	}
}
