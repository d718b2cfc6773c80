package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// routes wires the API endpoints.
func (app *application) routes() http.Handler {
	router := chi.NewRouter()
	router.Use(app.recoverPanic)
	router.Use(app.logRequest)

	router.Route("/api", func(r chi.Router) {
		r.Post("/workouts/generate", app.generateWorkoutPOST)
		r.Get("/workouts/{id}", app.workoutGET)
		r.Get("/sessions/{date}", app.sessionGET)
		r.Post("/sessions/{date}/feedback", app.feedbackPOST)
		r.Get("/metrics", app.metricsGET)
		r.Get("/exercises", app.exercisesGET)
		r.Get("/exercises/{id}", app.exerciseGET)
		r.Get("/exercises/{id}/info", app.exerciseInfoGET)
		r.Get("/profile", app.profileGET)
		r.Put("/profile", app.profilePUT)
		r.Post("/debug/query", app.debugQueryPOST)
		r.Get("/healthy", app.healthy)
	})

	return router
}
