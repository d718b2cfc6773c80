package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/liftforge/liftforge/internal/errors"
	"github.com/liftforge/liftforge/internal/workout"
	"github.com/yuin/goldmark"
)

// writeJSON writes a JSON response with the given status code.
func (app *application) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.Error("encode response", errors.SlogError(err))
	}
}

// serverError logs the error and responds with a generic 500.
func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	app.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

// writeServiceError maps service errors to response codes.
func (app *application) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, workout.ErrNotFound):
		app.writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, workout.ErrInvalidContext):
		app.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, workout.ErrInsufficientCatalog):
		app.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		app.serverError(w, r, err)
	}
}

// healthy responds with a JSON object indicating that the server is healthy.
func (app *application) healthy(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// generateWorkoutPOST generates and persists a workout for the request.
func (app *application) generateWorkoutPOST(w http.ResponseWriter, r *http.Request) {
	var req workout.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		app.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	generated, err := app.workoutService.GenerateWorkout(r.Context(), req)
	if err != nil {
		app.writeServiceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, generated)
}

// workoutGET retrieves a stored workout by ID.
func (app *application) workoutGET(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	generated, err := app.workoutService.GetWorkout(r.Context(), id)
	if err != nil {
		app.writeServiceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, generated)
}

// sessionGET retrieves the stored workout for a calendar date.
func (app *application) sessionGET(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse(time.DateOnly, chi.URLParam(r, "date"))
	if err != nil {
		app.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date"})
		return
	}

	generated, err := app.workoutService.GetSession(r.Context(), date)
	if err != nil {
		app.writeServiceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, generated)
}

// feedbackPOST records post-session feedback for the session on the given
// date. The workout ID comes from the stored session; a body that names a
// different workout is rejected.
func (app *application) feedbackPOST(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse(time.DateOnly, chi.URLParam(r, "date"))
	if err != nil {
		app.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date"})
		return
	}

	var fb workout.PerformanceFeedback
	if err = json.NewDecoder(r.Body).Decode(&fb); err != nil {
		app.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	session, err := app.workoutService.GetSession(r.Context(), date)
	if err != nil {
		app.writeServiceError(w, r, err)
		return
	}
	if fb.WorkoutID != "" && fb.WorkoutID != session.ID {
		app.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workout_id does not match the session on this date"})
		return
	}
	fb.WorkoutID = session.ID

	if err = app.workoutService.RecordFeedback(r.Context(), fb); err != nil {
		app.writeServiceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// metricsGET returns the rolling performance metrics.
func (app *application) metricsGET(w http.ResponseWriter, r *http.Request) {
	metrics, err := app.workoutService.Metrics(r.Context())
	if err != nil {
		app.writeServiceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, metrics)
}

// exercisesGET lists the exercise catalog.
func (app *application) exercisesGET(w http.ResponseWriter, r *http.Request) {
	exercises, err := app.workoutService.ListExercises(r.Context())
	if err != nil {
		app.writeServiceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, exercises)
}

// exerciseGET retrieves a single exercise.
func (app *application) exerciseGET(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		app.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise id"})
		return
	}

	exercise, err := app.workoutService.GetExercise(r.Context(), id)
	if err != nil {
		app.writeServiceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, exercise)
}

// exerciseInfoGET renders the exercise notes markdown as HTML.
func (app *application) exerciseInfoGET(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		app.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise id"})
		return
	}

	exercise, err := app.workoutService.GetExercise(r.Context(), id)
	if err != nil {
		app.writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err = goldmark.Convert([]byte(exercise.NotesMarkdown), &buf); err != nil {
		app.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// debugQueryPOST runs an ad-hoc read-only query against the database. Meant
// for local troubleshooting; the server binds to localhost by default.
func (app *application) debugQueryPOST(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		app.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	result, err := app.queryTool.Query(r.Context(), req.Query)
	if err != nil {
		app.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	app.writeJSON(w, http.StatusOK, result)
}

// profileGET returns the stored profile and preferences.
func (app *application) profileGET(w http.ResponseWriter, r *http.Request) {
	profile, err := app.workoutService.GetProfile(r.Context())
	if err != nil {
		app.writeServiceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, profile)
}

// profilePUT replaces the stored profile and preferences.
func (app *application) profilePUT(w http.ResponseWriter, r *http.Request) {
	var profile workout.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		app.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	if err := app.workoutService.SaveProfile(r.Context(), profile); err != nil {
		app.writeServiceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, profile)
}
