package workout_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/liftforge/liftforge/internal/sqlite"
	"github.com/liftforge/liftforge/internal/testhelpers"
	"github.com/liftforge/liftforge/internal/workout"
)

func newTestService(t *testing.T) *workout.Service {
	t.Helper()

	ctx := context.Background()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("close database: %v", closeErr)
		}
	})

	return workout.NewService(db, logger, "")
}

func testProfile() workout.Profile {
	return workout.Profile{
		User: workout.UserProfile{
			Goal:            workout.GoalGeneral,
			Experience:      workout.ExperienceIntermediate,
			PreferredSplit:  workout.SplitPushPullLower,
			WeeklyFrequency: 3,
			SessionMinutes:  45,
		},
		Preferences: workout.Preferences{
			Equipment: []workout.EquipmentTag{
				workout.EquipmentBarbell, workout.EquipmentDumbbell,
				workout.EquipmentCable, workout.EquipmentMachine,
				workout.EquipmentFlatBench, workout.EquipmentSquatRack,
				workout.EquipmentPullupBar, workout.EquipmentEZBar,
			},
		},
	}
}

func TestServiceProfileRoundTrip(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	// Before anything is saved the defaults apply.
	initial, err := svc.GetProfile(ctx)
	if err != nil {
		t.Fatalf("get initial profile: %v", err)
	}
	if initial.User.Goal != workout.GoalGeneral {
		t.Errorf("default goal = %s, want %s", initial.User.Goal, workout.GoalGeneral)
	}

	saved := testProfile()
	saved.Preferences.DislikedExerciseIDs = []int{3, 6}
	saved.Preferences.Injuries = []string{"shoulders", "lower back"}
	saved.Preferences.PreferredTypes = []workout.ExerciseType{workout.ExerciseTypeStrength}
	saved.Preferences.ScheduleConstraintMinutes = 40
	if err = svc.SaveProfile(ctx, saved); err != nil {
		t.Fatalf("save profile: %v", err)
	}

	loaded, err := svc.GetProfile(ctx)
	if err != nil {
		t.Fatalf("reload profile: %v", err)
	}
	if diff := cmp.Diff(saved, loaded); diff != "" {
		t.Errorf("profile mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestServiceGenerateAndRetrieve(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.SaveProfile(ctx, testProfile()); err != nil {
		t.Fatalf("save profile: %v", err)
	}

	date := time.Now().UTC()
	generated, err := svc.GenerateWorkout(ctx, workout.GenerationRequest{
		Date:            date,
		DurationMinutes: 45,
		Seed:            99,
		IncludeWarmup:   true,
		IncludeCooldown: true,
	})
	if err != nil {
		t.Fatalf("generate workout: %v", err)
	}
	if len(generated.Exercises) == 0 {
		t.Fatal("generated workout has no exercises")
	}
	if generated.Phase != workout.PhaseVolumeFocus {
		t.Errorf("first session phase = %s, want %s", generated.Phase, workout.PhaseVolumeFocus)
	}

	byID, err := svc.GetWorkout(ctx, generated.ID)
	if err != nil {
		t.Fatalf("get workout by id: %v", err)
	}
	if byID.ID != generated.ID || len(byID.Exercises) != len(generated.Exercises) {
		t.Errorf("stored workout differs: id %s/%s, %d/%d exercises",
			byID.ID, generated.ID, len(byID.Exercises), len(generated.Exercises))
	}

	byDate, err := svc.GetSession(ctx, date)
	if err != nil {
		t.Fatalf("get session by date: %v", err)
	}
	if byDate.ID != generated.ID {
		t.Errorf("session lookup returned %s, want %s", byDate.ID, generated.ID)
	}

	if _, err = svc.GetWorkout(ctx, "no-such-id"); !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown workout, got %v", err)
	}
}

func TestServicePhaseAdvancesAcrossSessions(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.SaveProfile(ctx, testProfile()); err != nil {
		t.Fatalf("save profile: %v", err)
	}

	date := time.Now().UTC()
	first, err := svc.GenerateWorkout(ctx, workout.GenerationRequest{
		Date: date, DurationMinutes: 45, Seed: 1,
	})
	if err != nil {
		t.Fatalf("generate first workout: %v", err)
	}

	second, err := svc.GenerateWorkout(ctx, workout.GenerationRequest{
		Date: date.AddDate(0, 0, 1), DurationMinutes: 45, Seed: 2,
	})
	if err != nil {
		t.Fatalf("generate second workout: %v", err)
	}

	if second.Phase != first.Phase.Next() {
		t.Errorf("second session phase = %s, want %s after %s",
			second.Phase, first.Phase.Next(), first.Phase)
	}
}

func TestServiceFeedbackAndMetrics(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.SaveProfile(ctx, testProfile()); err != nil {
		t.Fatalf("save profile: %v", err)
	}

	generated, err := svc.GenerateWorkout(ctx, workout.GenerationRequest{
		Date: time.Now().UTC(), DurationMinutes: 45, Seed: 7,
	})
	if err != nil {
		t.Fatalf("generate workout: %v", err)
	}

	fb := workout.PerformanceFeedback{
		WorkoutID:      generated.ID,
		OverallRPE:     5,
		Difficulty:     workout.DifficultyJustRight,
		CompletionRate: 0.95,
		RecordedAt:     time.Now().UTC(),
		Exercises: []workout.ExerciseFeedback{
			{
				ExerciseID:    generated.Exercises[0].Exercise.ID,
				CompletedSets: generated.Exercises[0].SetCount,
				CompletedReps: generated.Exercises[0].TargetReps,
				UsedWeightKg:  50,
				Difficulty:    workout.DifficultyJustRight,
			},
		},
	}
	if err = svc.RecordFeedback(ctx, fb); err != nil {
		t.Fatalf("record feedback: %v", err)
	}

	metrics, err := svc.Metrics(ctx)
	if err != nil {
		t.Fatalf("compute metrics: %v", err)
	}
	if metrics.SampleCount != 1 {
		t.Errorf("sample count = %d, want 1", metrics.SampleCount)
	}
	if metrics.AverageRPE != 5 {
		t.Errorf("average RPE = %v, want 5", metrics.AverageRPE)
	}

	unknown := workout.PerformanceFeedback{WorkoutID: "missing", CompletionRate: 1}
	if err = svc.RecordFeedback(ctx, unknown); !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown workout, got %v", err)
	}
}

func TestServiceCatalog(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	exercises, err := svc.ListExercises(ctx)
	if err != nil {
		t.Fatalf("list exercises: %v", err)
	}
	if len(exercises) < 40 {
		t.Errorf("seed catalog has %d exercises, want at least 40", len(exercises))
	}

	benchPress, err := svc.GetExercise(ctx, 1)
	if err != nil {
		t.Fatalf("get exercise: %v", err)
	}
	if benchPress.Name != "Barbell Bench Press" {
		t.Errorf("exercise 1 = %q, want Barbell Bench Press", benchPress.Name)
	}
	if len(benchPress.Synergists) == 0 {
		t.Error("expected synergists on the bench press")
	}

	if _, err = svc.GetExercise(ctx, 99999); !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceImportExercises(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	imported, err := svc.ImportExercises(ctx, []workout.Exercise{
		{
			Name: "Trap Bar Deadlift", Type: workout.ExerciseTypeStrength,
			BodyPart: "legs", Equipment: "barbell", TargetMuscle: workout.MuscleHamstrings,
			Synergists: []workout.MuscleGroup{workout.MuscleGlutes, workout.MuscleLowerBack},
			Complexity: 3,
		},
		{
			// Same name as a seeded entry: updates in place instead of
			// duplicating.
			Name: "Push-Up", Type: workout.ExerciseTypeStrength,
			BodyPart: "chest", Equipment: "body only", TargetMuscle: workout.MuscleChest,
			Complexity: 2,
		},
	})
	if err != nil {
		t.Fatalf("import exercises: %v", err)
	}
	if imported != 2 {
		t.Errorf("imported = %d, want 2", imported)
	}

	exercises, err := svc.ListExercises(ctx)
	if err != nil {
		t.Fatalf("list exercises: %v", err)
	}

	var deadlift *workout.Exercise
	pushUps := 0
	for i := range exercises {
		switch exercises[i].Name {
		case "Trap Bar Deadlift":
			deadlift = &exercises[i]
		case "Push-Up":
			pushUps++
			if exercises[i].Complexity != 2 {
				t.Errorf("push-up complexity = %d, want updated value 2", exercises[i].Complexity)
			}
		}
	}
	if deadlift == nil {
		t.Fatal("imported exercise missing from catalog")
	}
	if len(deadlift.Synergists) != 2 {
		t.Errorf("deadlift has %d synergists, want 2", len(deadlift.Synergists))
	}
	if pushUps != 1 {
		t.Errorf("found %d push-up rows, want 1", pushUps)
	}
}
