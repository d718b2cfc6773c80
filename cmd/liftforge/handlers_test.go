package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/liftforge/liftforge/internal/sqlite"
	"github.com/liftforge/liftforge/internal/testhelpers"
	"github.com/liftforge/liftforge/internal/workout"
)

func newTestApplication(t *testing.T) *application {
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

	return &application{
		logger:         logger,
		workoutService: workout.NewService(db, logger, ""),
		queryTool:      sqlite.NewReadOnlyQueryTool(db),
	}
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rec.Body.String())
	}
	return out
}

func TestHealthy(t *testing.T) {
	app := newTestApplication(t)
	rec := doJSON(t, app.routes(), http.MethodGet, "/api/healthy", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestGenerateWorkoutEndpoint(t *testing.T) {
	app := newTestApplication(t)
	routes := app.routes()

	rec := doJSON(t, routes, http.MethodPost, "/api/workouts/generate", workout.GenerationRequest{
		Date:            time.Now().UTC(),
		DurationMinutes: 45,
		Seed:            11,
		Equipment: []workout.EquipmentTag{
			workout.EquipmentBarbell, workout.EquipmentDumbbell,
			workout.EquipmentCable, workout.EquipmentMachine,
			workout.EquipmentFlatBench, workout.EquipmentSquatRack,
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	generated := decodeBody[workout.GeneratedWorkout](t, rec)
	if generated.ID == "" {
		t.Fatal("generated workout has no id")
	}
	if len(generated.Exercises) == 0 {
		t.Fatal("generated workout has no exercises")
	}

	// The workout is now retrievable by id.
	rec = doJSON(t, routes, http.MethodGet, "/api/workouts/"+generated.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get workout status = %d, want 200", rec.Code)
	}
	fetched := decodeBody[workout.GeneratedWorkout](t, rec)
	if fetched.ID != generated.ID {
		t.Errorf("fetched id %s, want %s", fetched.ID, generated.ID)
	}
}

func TestGenerateWorkoutEndpointBadRequests(t *testing.T) {
	app := newTestApplication(t)
	routes := app.routes()

	t.Run("malformed JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/workouts/generate", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("out-of-range duration", func(t *testing.T) {
		rec := doJSON(t, routes, http.MethodPost, "/api/workouts/generate", workout.GenerationRequest{
			Date:            time.Now().UTC(),
			DurationMinutes: 5,
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400 (body: %s)", rec.Code, rec.Body.String())
		}
	})
}

func TestWorkoutNotFound(t *testing.T) {
	app := newTestApplication(t)
	rec := doJSON(t, app.routes(), http.MethodGet, "/api/workouts/unknown", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSessionEndpoint(t *testing.T) {
	app := newTestApplication(t)
	routes := app.routes()

	date := time.Now().UTC()
	rec := doJSON(t, routes, http.MethodPost, "/api/workouts/generate", workout.GenerationRequest{
		Date: date, DurationMinutes: 45, Seed: 3,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d (body: %s)", rec.Code, rec.Body.String())
	}
	generated := decodeBody[workout.GeneratedWorkout](t, rec)

	rec = doJSON(t, routes, http.MethodGet, "/api/sessions/"+date.Format(time.DateOnly), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("session status = %d, want 200", rec.Code)
	}
	fetched := decodeBody[workout.GeneratedWorkout](t, rec)
	if fetched.ID != generated.ID {
		t.Errorf("session id %s, want %s", fetched.ID, generated.ID)
	}

	rec = doJSON(t, routes, http.MethodGet, "/api/sessions/not-a-date", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid date status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, routes, http.MethodGet, "/api/sessions/1999-01-01", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing session status = %d, want 404", rec.Code)
	}
}

func TestFeedbackEndpoint(t *testing.T) {
	app := newTestApplication(t)
	routes := app.routes()

	date := time.Now().UTC()
	rec := doJSON(t, routes, http.MethodPost, "/api/workouts/generate", workout.GenerationRequest{
		Date: date, DurationMinutes: 45, Seed: 5,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d (body: %s)", rec.Code, rec.Body.String())
	}
	feedbackPath := "/api/sessions/" + date.Format(time.DateOnly) + "/feedback"

	rec = doJSON(t, routes, http.MethodPost, feedbackPath, workout.PerformanceFeedback{
		OverallRPE:     6.5,
		Difficulty:     workout.DifficultyJustRight,
		CompletionRate: 1,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("feedback status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, routes, http.MethodGet, "/api/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want 200", rec.Code)
	}
	metrics := decodeBody[workout.PerformanceMetrics](t, rec)
	if metrics.SampleCount != 1 {
		t.Errorf("sample count = %d, want 1", metrics.SampleCount)
	}

	t.Run("invalid date", func(t *testing.T) {
		rec := doJSON(t, routes, http.MethodPost, "/api/sessions/not-a-date/feedback",
			workout.PerformanceFeedback{OverallRPE: 5})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("no session on date", func(t *testing.T) {
		rec := doJSON(t, routes, http.MethodPost, "/api/sessions/1999-01-01/feedback",
			workout.PerformanceFeedback{OverallRPE: 5})
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("mismatched workout id", func(t *testing.T) {
		rec := doJSON(t, routes, http.MethodPost, feedbackPath,
			workout.PerformanceFeedback{WorkoutID: "someone-else", OverallRPE: 5})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestExerciseEndpoints(t *testing.T) {
	app := newTestApplication(t)
	routes := app.routes()

	rec := doJSON(t, routes, http.MethodGet, "/api/exercises", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	exercises := decodeBody[[]workout.Exercise](t, rec)
	if len(exercises) < 40 {
		t.Errorf("catalog has %d exercises, want at least 40", len(exercises))
	}

	rec = doJSON(t, routes, http.MethodGet, "/api/exercises/1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}
	ex := decodeBody[workout.Exercise](t, rec)
	if ex.Name != "Barbell Bench Press" {
		t.Errorf("exercise 1 = %q, want Barbell Bench Press", ex.Name)
	}

	rec = doJSON(t, routes, http.MethodGet, "/api/exercises/not-a-number", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid id status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, routes, http.MethodGet, "/api/exercises/99999", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing exercise status = %d, want 404", rec.Code)
	}
}

func TestExerciseInfoRendersMarkdown(t *testing.T) {
	app := newTestApplication(t)

	rec := doJSON(t, app.routes(), http.MethodGet, "/api/exercises/1/info", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Errorf("content type = %q, want text/html", got)
	}
	if !strings.Contains(rec.Body.String(), "<h2") {
		t.Errorf("markdown heading not rendered to HTML: %s", rec.Body.String())
	}
}

func TestProfileEndpoints(t *testing.T) {
	app := newTestApplication(t)
	routes := app.routes()

	profile := workout.Profile{
		User: workout.UserProfile{
			Goal:            workout.GoalStrength,
			Experience:      workout.ExperienceAdvanced,
			PreferredSplit:  workout.SplitUpperLower,
			WeeklyFrequency: 4,
			SessionMinutes:  60,
		},
		Preferences: workout.Preferences{
			Equipment: []workout.EquipmentTag{workout.EquipmentBarbell, workout.EquipmentSquatRack},
		},
	}

	rec := doJSON(t, routes, http.MethodPut, "/api/profile", profile)
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, routes, http.MethodGet, "/api/profile", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}
	loaded := decodeBody[workout.Profile](t, rec)
	if loaded.User.Goal != workout.GoalStrength {
		t.Errorf("goal = %s, want %s", loaded.User.Goal, workout.GoalStrength)
	}
	if loaded.User.SessionMinutes != 60 {
		t.Errorf("session minutes = %d, want 60", loaded.User.SessionMinutes)
	}
}

func TestDebugQueryEndpoint(t *testing.T) {
	app := newTestApplication(t)
	routes := app.routes()

	rec := doJSON(t, routes, http.MethodPost, "/api/debug/query", map[string]string{
		"query": "SELECT COUNT(*) AS n FROM exercises",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	result := decodeBody[sqlite.QueryResult](t, rec)
	if result.RowCount != 1 {
		t.Errorf("row count = %d, want 1", result.RowCount)
	}

	rec = doJSON(t, routes, http.MethodPost, "/api/debug/query", map[string]string{
		"query": "DELETE FROM exercises",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("write statement status = %d, want 400", rec.Code)
	}
}

func TestRecoverPanicMiddleware(t *testing.T) {
	app := newTestApplication(t)

	handler := app.recoverPanic(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(fmt.Errorf("boom"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
