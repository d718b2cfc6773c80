package workout

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/liftforge/liftforge/internal/errors"
	"github.com/liftforge/liftforge/internal/sqlite"
)

// historyWindowMonths bounds how far back history is loaded for generation.
const historyWindowMonths = 3

// GenerationRequest carries the per-call knobs for one generation. Zero
// values fall back to the stored profile.
type GenerationRequest struct {
	Date            time.Time      `json:"date"`
	DurationMinutes int            `json:"duration_minutes"`
	Muscles         []MuscleGroup  `json:"muscles,omitempty"`
	Equipment       []EquipmentTag `json:"equipment,omitempty"`
	Seed            uint64         `json:"seed"`
	IncludeWarmup   bool           `json:"include_warmup"`
	IncludeCooldown bool           `json:"include_cooldown"`
	// UseAssistant requests the LLM drafting strategy. The deterministic
	// engine is the fallback whenever the draft fails.
	UseAssistant bool `json:"use_assistant"`
}

// Service handles the business logic for workout generation and tracking.
type Service struct {
	repo         *repository
	logger       *slog.Logger
	openaiAPIKey string
	now          func() time.Time
}

// NewService creates a new workout service.
func NewService(db *sqlite.Database, logger *slog.Logger, openaiAPIKey string) *Service {
	return &Service{
		repo:         newRepository(db, logger),
		logger:       logger,
		openaiAPIKey: openaiAPIKey,
		now:          time.Now,
	}
}

// GetProfile retrieves the stored profile and preferences.
func (s *Service) GetProfile(ctx context.Context) (Profile, error) {
	profile, err := s.repo.prefs.Get(ctx)
	if err != nil {
		return Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

// SaveProfile saves the profile and preferences.
func (s *Service) SaveProfile(ctx context.Context, profile Profile) error {
	if err := s.repo.prefs.Set(ctx, profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// GenerateWorkout builds the generation context from stored state, runs the
// engine, and persists the result. An identical request against identical
// stored state yields an identical workout.
func (s *Service) GenerateWorkout(ctx context.Context, req GenerationRequest) (GeneratedWorkout, error) {
	genCtx, err := s.buildContext(ctx, req)
	if err != nil {
		return GeneratedWorkout{}, fmt.Errorf("build generation context: %w", err)
	}

	pool, err := s.repo.catalog.List(ctx)
	if err != nil {
		return GeneratedWorkout{}, fmt.Errorf("load exercise catalog: %w", err)
	}

	workout, err := s.runStrategy(ctx, req, genCtx, pool)
	if err != nil {
		return GeneratedWorkout{}, fmt.Errorf("generate workout: %w", err)
	}

	if err = s.repo.sessions.Create(ctx, workout, genCtx.User.PreferredSplit); err != nil {
		return GeneratedWorkout{}, fmt.Errorf("persist session: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "generated workout",
		slog.String("id", workout.ID),
		slog.String("phase", string(workout.Phase)),
		slog.Int("exercises", len(workout.Exercises)))
	return workout, nil
}

// runStrategy picks the generation strategy. The LLM draft is best-effort;
// any failure falls back to the deterministic engine.
func (s *Service) runStrategy(
	ctx context.Context,
	req GenerationRequest,
	genCtx GenerationContext,
	pool []Exercise,
) (GeneratedWorkout, error) {
	if req.UseAssistant && s.openaiAPIKey != "" {
		gen := newLLMWorkoutGenerator(s.openaiAPIKey, pool)
		workout, err := gen.Generate(ctx, genCtx)
		if err == nil {
			return workout, nil
		}
		s.logger.LogAttrs(ctx, slog.LevelWarn, "assistant draft failed, using engine",
			slog.Any("error", err))
	}
	return Generate(genCtx, pool)
}

// buildContext assembles the immutable context snapshot for one generation
// call. The independent loads run concurrently.
func (s *Service) buildContext(ctx context.Context, req GenerationRequest) (GenerationContext, error) {
	date := req.Date
	if date.IsZero() {
		date = s.now()
	}

	var (
		profile  Profile
		history  TrainingHistory
		recovery RecoverySnapshot
		phase    SessionPhase
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if profile, err = s.repo.prefs.Get(gctx); err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		since := date.AddDate(0, -historyWindowMonths, 0)
		var err error
		if history.Sessions, err = s.repo.sessions.ListSummaries(gctx, since); err != nil {
			return fmt.Errorf("load session history: %w", err)
		}
		if history.Feedback, err = s.repo.sessions.ListFeedback(gctx, since); err != nil {
			return fmt.Errorf("load feedback history: %w", err)
		}
		if history.PersonalRecords, err = s.repo.sessions.ListPersonalRecords(gctx); err != nil {
			return fmt.Errorf("load personal records: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if recovery, err = s.repo.recovery.Snapshot(gctx); err != nil {
			return fmt.Errorf("load recovery snapshot: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		latest, err := s.repo.sessions.LatestPhase(gctx)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load latest phase: %w", err)
		}
		phase = latest.Next()
		return nil
	})
	if err := g.Wait(); err != nil {
		return GenerationContext{}, err
	}

	seed := req.Seed
	if seed == 0 {
		seed = seedForDate(date)
	}

	return GenerationContext{
		User:        profile.User,
		Preferences: effectivePreferences(profile.Preferences, req),
		Recovery:    recovery,
		History:     history,
		Constraints: SessionConstraints{
			Muscles:         req.Muscles,
			DurationMinutes: req.DurationMinutes,
			Equipment:       req.Equipment,
			Seed:            seed,
			GeneratedAt:     date,
			Phase:           phase,
			IncludeWarmup:   req.IncludeWarmup,
			IncludeCooldown: req.IncludeCooldown,
		},
		Metadata: ContextMetadata{
			SchemaVersion: SchemaVersion,
			GeneratedAt:   date,
			Source:        "liftforge",
		},
	}, nil
}

// effectivePreferences overlays ad-hoc request equipment on the stored
// preferences without mutating them.
func effectivePreferences(prefs Preferences, req GenerationRequest) Preferences {
	if len(req.Equipment) > 0 {
		prefs.Equipment = req.Equipment
		prefs.BodyweightOnly = false
	}
	return prefs
}

// seedForDate derives a stable default seed so regenerating the same day's
// workout without an explicit seed is repeatable.
func seedForDate(date time.Time) uint64 {
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return uint64(midnight.Unix())
}

// GetWorkout retrieves a stored workout by ID.
func (s *Service) GetWorkout(ctx context.Context, id string) (GeneratedWorkout, error) {
	w, err := s.repo.sessions.Get(ctx, id)
	if err != nil {
		return GeneratedWorkout{}, fmt.Errorf("get workout %s: %w", id, err)
	}
	return w, nil
}

// GetSession retrieves the stored workout for a calendar date.
func (s *Service) GetSession(ctx context.Context, date time.Time) (GeneratedWorkout, error) {
	w, err := s.repo.sessions.GetByDate(ctx, date)
	if err != nil {
		return GeneratedWorkout{}, fmt.Errorf("get session %s: %w", formatDate(date), err)
	}
	return w, nil
}

// RecordFeedback persists post-session feedback and folds it into the
// per-muscle recovery snapshot.
func (s *Service) RecordFeedback(ctx context.Context, fb PerformanceFeedback) error {
	if fb.RecordedAt.IsZero() {
		fb.RecordedAt = s.now()
	}
	if fb.CompletionRate == 0 {
		fb.CompletionRate = 1
	}

	workout, err := s.repo.sessions.Get(ctx, fb.WorkoutID)
	if err != nil {
		return fmt.Errorf("get workout %s: %w", fb.WorkoutID, err)
	}

	if err = s.repo.sessions.SaveFeedback(ctx, fb); err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}

	if err = s.updateRecovery(ctx, workout, fb); err != nil {
		return fmt.Errorf("update recovery: %w", err)
	}
	return nil
}

// updateRecovery lowers the recovery percentage of the muscles the session
// trained proportionally to how hard it felt.
func (s *Service) updateRecovery(ctx context.Context, w GeneratedWorkout, fb PerformanceFeedback) error {
	rpe := fb.effectiveRPE()
	percent := math.Max(0, 100-rpe*10)
	readyInHours := rpe * 4

	seen := make(map[MuscleGroup]bool)
	for _, ge := range w.Exercises {
		muscle := ge.Exercise.TargetMuscle
		if seen[muscle] {
			continue
		}
		seen[muscle] = true

		if err := s.repo.recovery.SetMuscle(ctx, MuscleRecovery{
			Muscle:          muscle,
			RecoveryPercent: percent,
			ReadyInHours:    readyInHours,
		}, fb.RecordedAt); err != nil {
			return fmt.Errorf("set recovery for %s: %w", muscle, err)
		}
	}
	return nil
}

// Metrics computes the rolling performance aggregate over the history window.
func (s *Service) Metrics(ctx context.Context) (PerformanceMetrics, error) {
	since := s.now().AddDate(0, -historyWindowMonths, 0)
	feedback, err := s.repo.sessions.ListFeedback(ctx, since)
	if err != nil {
		return PerformanceMetrics{}, fmt.Errorf("load feedback history: %w", err)
	}
	return ComputeMetrics(feedback), nil
}

// ListExercises returns the whole exercise catalog.
func (s *Service) ListExercises(ctx context.Context) ([]Exercise, error) {
	exercises, err := s.repo.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return exercises, nil
}

// GetExercise retrieves a specific exercise by ID.
func (s *Service) GetExercise(ctx context.Context, id int) (Exercise, error) {
	ex, err := s.repo.catalog.Get(ctx, id)
	if err != nil {
		return Exercise{}, fmt.Errorf("get exercise %d: %w", id, err)
	}
	return ex, nil
}

// ImportExercises upserts a batch of catalog entries. Used by the importer
// command.
func (s *Service) ImportExercises(ctx context.Context, exercises []Exercise) (int, error) {
	imported := 0
	for _, ex := range exercises {
		if _, err := s.repo.catalog.Upsert(ctx, ex); err != nil {
			return imported, fmt.Errorf("import exercise %q: %w", ex.Name, err)
		}
		imported++
	}
	return imported, nil
}
