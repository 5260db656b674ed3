package main

import (
	"io"
	"net/http"

	"github.com/AdamBeresnev/matchday-pool/internal/httputil"
	"github.com/AdamBeresnev/matchday-pool/internal/middleware"
	"github.com/AdamBeresnev/matchday-pool/internal/service"
	users "github.com/AdamBeresnev/matchday-pool/internal/user"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// logIn binds the user to a fresh session token.
func (app *application) logIn(r *http.Request, user *users.User) error {
	if err := app.sessionManager.RenewToken(r.Context()); err != nil {
		return err
	}
	app.sessionManager.Put(r.Context(), middleware.SessionUserIDKey, user.ID.String())
	return nil
}

func (app *application) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, r, "Invalid request body", err)
		return
	}

	user, err := app.users.Register(r.Context(), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := app.logIn(r, user); err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, user)
}

func (app *application) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, r, "Invalid request body", err)
		return
	}

	user, err := app.users.Authenticate(r.Context(), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := app.logIn(r, user); err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, user)
}

func (app *application) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := app.sessionManager.Destroy(r.Context()); err != nil {
		httputil.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) handleMe(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, middleware.GetAuthenticatedUser(r.Context()))
}

func (app *application) handleMatches(w http.ResponseWriter, r *http.Request) {
	overview, err := app.matches.Matchday(r.Context(), httputil.QueryMatchday(r))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, overview)
}

func (app *application) handleMatchdays(w http.ResponseWriter, r *http.Request) {
	matchdays, err := app.matches.Matchdays(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, matchdays)
}

func (app *application) handleGetPredictions(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	summary, err := app.predictions.Matchday(r.Context(), userID, httputil.QueryMatchday(r))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, summary)
}

func (app *application) handleSubmitPredictions(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req service.SubmitRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, r, "Invalid request body", err)
		return
	}

	summary, err := app.predictions.Submit(r.Context(), userID, req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, summary)
}

func (app *application) handleListCompetitions(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	competitions, err := app.competitions.ListForUser(r.Context(), userID)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, competitions)
}

func (app *application) handleCreateCompetition(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req service.CreateCompetitionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, r, "Invalid request body", err)
		return
	}

	competition, err := app.competitions.Create(r.Context(), userID, req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, competition)
}

func (app *application) handleJoinCompetition(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req service.JoinCompetitionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, r, "Invalid request body", err)
		return
	}

	competition, err := app.competitions.Join(r.Context(), userID, req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, competition)
}

func (app *application) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := app.leaderboard.Global(r.Context(), httputil.OptionalMatchday(r))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, rows)
}

func (app *application) handleCompetitionLeaderboard(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	competitionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, r, "Invalid competition ID", err)
		return
	}

	rows, err := app.leaderboard.Competition(r.Context(), userID, competitionID, httputil.OptionalMatchday(r))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, rows)
}

func (app *application) handleScheduleMatch(w http.ResponseWriter, r *http.Request) {
	var req service.ScheduleMatchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, r, "Invalid request body", err)
		return
	}

	match, err := app.matches.Schedule(r.Context(), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, match)
}

func (app *application) handleRecordResult(w http.ResponseWriter, r *http.Request) {
	var req service.RecordResultRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, r, "Invalid request body", err)
		return
	}

	result, err := app.matches.RecordResult(r.Context(), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, result)
}

// handleImportFixtures takes a plain text body with one "matchday;kickoff;home;away" line
// per match.
func (app *application) handleImportFixtures(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		httputil.BadRequest(w, r, "Invalid request body", err)
		return
	}

	matches, err := app.matches.ImportFixtures(r.Context(), string(body))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, matches)
}
