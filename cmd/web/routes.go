package main

import (
	"net/http"

	"github.com/AdamBeresnev/matchday-pool/internal/httputil"
	"github.com/AdamBeresnev/matchday-pool/internal/metrics"
	"github.com/AdamBeresnev/matchday-pool/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func newRouter(app *application) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.Text(w, http.StatusOK, "ok")
	})
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(app.sessionManager.LoadAndSave)
		r.Use(middleware.LoadAuthenticatedUser(app.sessionManager, app.userStore))

		r.Route("/api", func(r chi.Router) {
			r.Post("/register", app.handleRegister)
			r.Post("/login", app.handleLogin)
			r.Post("/logout", app.handleLogout)

			r.Get("/matches", app.handleMatches)
			r.Get("/matchdays", app.handleMatchdays)
			r.Get("/leaderboard", app.handleLeaderboard)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)

				r.Get("/me", app.handleMe)
				r.Get("/predictions", app.handleGetPredictions)
				r.Post("/predictions", app.handleSubmitPredictions)

				r.Get("/competitions", app.handleListCompetitions)
				r.Post("/competitions", app.handleCreateCompetition)
				r.Post("/competitions/join", app.handleJoinCompetition)
				r.Get("/competitions/{id}/leaderboard", app.handleCompetitionLeaderboard)

				r.Route("/admin", func(r chi.Router) {
					r.Use(middleware.RequireAdmin(app.cfg))
					r.Post("/matches", app.handleScheduleMatch)
					r.Post("/fixtures", app.handleImportFixtures)
					r.Post("/results", app.handleRecordResult)
				})
			})
		})

		r.Get("/login", app.handleLoginPage)
		r.Post("/login", app.handleLoginForm)
		r.Post("/logout", app.handleLogoutForm)

		r.Get("/auth/{provider}", app.handleOAuthBegin)
		r.Get("/auth/{provider}/callback", app.handleOAuthCallback)
		r.Post("/auth/guest", app.handleGuestLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/", app.handleMatchdayPage)
			r.Post("/predictions", app.handlePredictionsForm)
		})
	})

	return r
}
