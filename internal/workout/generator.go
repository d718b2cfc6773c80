package workout

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// workoutIDNamespace is the fixed UUID namespace for seed-derived workout
// identifiers.
var workoutIDNamespace = uuid.MustParse("7b0d2f6e-5a4c-4d8a-9f1e-3c2b1a0d9e8f")

// seedStreamSalt decorrelates the PCG stream from the raw seed.
const seedStreamSalt = 0x9E3779B97F4A7C15

// generator runs the generation pipeline over one immutable context snapshot.
// It holds no mutable shared state; construct one per call.
type generator struct {
	genCtx GenerationContext
	// pool of available catalog exercises, read-only.
	pool []Exercise
	rng  *rand.Rand
}

// newGenerator validates the context and constructs a generator. Invalid
// enum values or durations fail fast with ErrInvalidContext; an empty catalog
// fails with ErrInsufficientCatalog.
func newGenerator(genCtx GenerationContext, pool []Exercise) (*generator, error) {
	if err := genCtx.Validate(); err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: empty exercise pool", ErrInsufficientCatalog)
	}

	seed := genCtx.Constraints.Seed
	return &generator{
		genCtx: genCtx,
		pool:   pool,
		rng:    rand.New(rand.NewPCG(seed, seed^seedStreamSalt)),
	}, nil
}

// Generate produces the workout for the context's generation date. The result
// is deterministic: an identical context (including seed) yields an identical
// workout.
func (g *generator) Generate() (GeneratedWorkout, error) {
	date := g.sessionDate()
	phase := g.genCtx.phase()

	muscles := g.genCtx.Constraints.Muscles
	if len(muscles) == 0 {
		muscles = musclesForDay(g.genCtx.User.PreferredSplit, date)
	}

	budget := budgetFor(
		g.genCtx.duration(),
		g.genCtx.Constraints.IncludeWarmup,
		g.genCtx.Constraints.IncludeCooldown,
		len(muscles),
	)

	counts := exerciseCountFor(budget, phase, g.genCtx.User.Experience, len(muscles))
	minTotal := minWorkoutExercises
	if counts.total < minTotal {
		minTotal = counts.total
	}
	if budget.WorkSeconds == 0 {
		// Degenerate budget: degrade to a minimal single-exercise circuit
		// instead of erroring.
		counts = exerciseCounts{total: 1, perMuscle: 1}
		minTotal = 1
	}

	selected, err := selectExercises(g.pool, selectionCriteria{
		muscles:        muscles,
		goal:           g.genCtx.User.Goal,
		experience:     g.genCtx.User.Experience,
		equipment:      g.genCtx.availableEquipment(),
		bodyweightOnly: g.genCtx.Preferences.BodyweightOnly,
		dislikes:       g.genCtx.Preferences.DislikedExerciseIDs,
		preferredTypes: g.genCtx.Preferences.PreferredTypes,
		injuries:       g.genCtx.Preferences.Injuries,
		allowTimedWork: g.genCtx.Preferences.AllowTimedWork,
		perMuscle:      counts.perMuscle,
		minTotal:       minTotal,
	}, g.rng)
	if err != nil {
		return GeneratedWorkout{}, fmt.Errorf("select exercises: %w", err)
	}
	if len(selected) > counts.total {
		selected = selected[:counts.total]
	}

	workout, err := assembleWorkout(g.genCtx, g.workoutID(date), date, muscles, phase, budget, selected, g.pool, g.rng)
	if err != nil {
		return GeneratedWorkout{}, fmt.Errorf("assemble workout: %w", err)
	}
	return workout, nil
}

// sessionDate is the generation timestamp normalized to midnight UTC.
func (g *generator) sessionDate() time.Time {
	t := g.genCtx.Constraints.GeneratedAt
	if t.IsZero() {
		t = g.genCtx.Metadata.GeneratedAt
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// workoutID derives a stable identifier from the seed and session date so
// regeneration with an identical context yields an identical id.
func (g *generator) workoutID(date time.Time) string {
	name := fmt.Sprintf("%d:%s", g.genCtx.Constraints.Seed, date.Format(time.DateOnly))
	return uuid.NewSHA1(workoutIDNamespace, []byte(name)).String()
}

// Generate runs the full pipeline once: split scheduling, equipment-aware
// selection, time budgeting, auto-regulation, and assembly. It is the public
// entry point for callers that already hold a context snapshot.
func Generate(genCtx GenerationContext, pool []Exercise) (GeneratedWorkout, error) {
	gen, err := newGenerator(genCtx, pool)
	if err != nil {
		return GeneratedWorkout{}, err
	}
	return gen.Generate()
}
