package main

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/AdamBeresnev/matchday-pool/internal/httputil"
	"github.com/AdamBeresnev/matchday-pool/internal/middleware"
	"github.com/AdamBeresnev/matchday-pool/internal/service"
	"github.com/AdamBeresnev/matchday-pool/internal/utils"
	"github.com/AdamBeresnev/matchday-pool/internal/validation"
	"github.com/AdamBeresnev/matchday-pool/views"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
)

func (app *application) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if err := views.Render(w, r, http.StatusOK, views.LoginPage(views.LoginData{Providers: app.providers})); err != nil {
		httputil.InternalServerError(w, r, "Failed to render login page", err)
	}
}

func (app *application) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, r, "Invalid form data", err)
		return
	}

	user, err := app.users.Authenticate(r.Context(), service.LoginRequest{
		Email:    r.Form.Get("email"),
		Password: r.Form.Get("password"),
	})
	if err != nil {
		status := httputil.StatusFor(err)
		if status == http.StatusInternalServerError {
			httputil.InternalServerError(w, r, "Failed to log in", err)
			return
		}
		if err := views.Render(w, r, http.StatusUnauthorized, views.LoginPage(views.LoginData{Providers: app.providers, Error: "Invalid email or password"})); err != nil {
			httputil.InternalServerError(w, r, "Failed to render login page", err)
		}
		return
	}

	if err := app.logIn(r, user); err != nil {
		httputil.InternalServerError(w, r, "Failed to start session", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (app *application) handleLogoutForm(w http.ResponseWriter, r *http.Request) {
	if err := app.sessionManager.Destroy(r.Context()); err != nil {
		httputil.InternalServerError(w, r, "Failed to log out", err)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (app *application) handleOAuthBegin(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

	gothic.BeginAuthHandler(w, r)
}

func (app *application) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

	gothUser, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		httputil.BadRequest(w, r, "Authentication failure", err)
		return
	}

	app.completeProviderLogin(w, r, gothUser)
}

func (app *application) completeProviderLogin(w http.ResponseWriter, r *http.Request, gothUser goth.User) {
	user, err := app.users.FindOrCreateUserByProvider(r.Context(), gothUser)
	if err != nil {
		status := httputil.StatusFor(err)
		if status == http.StatusInternalServerError {
			httputil.InternalServerError(w, r, "Failed to find or create user", err)
			return
		}
		data := views.LoginData{Providers: app.providers, Error: "This email already has an account, log in with your password"}
		if err := views.Render(w, r, status, views.LoginPage(data)); err != nil {
			httputil.InternalServerError(w, r, "Failed to render login page", err)
		}
		return
	}

	if err := app.logIn(r, user); err != nil {
		httputil.InternalServerError(w, r, "Failed to start session", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (app *application) handleGuestLogin(w http.ResponseWriter, r *http.Request) {
	user, err := app.users.CreateGuestUser(r.Context())
	if err != nil {
		httputil.InternalServerError(w, r, "Failed to login as guest", err)
		return
	}

	if err := app.logIn(r, user); err != nil {
		httputil.InternalServerError(w, r, "Failed to start session", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (app *application) handleMatchdayPage(w http.ResponseWriter, r *http.Request) {
	app.renderMatchday(w, r, httputil.QueryMatchday(r), http.StatusOK, "")
}

func (app *application) renderMatchday(w http.ResponseWriter, r *http.Request, matchday int, status int, message string) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	overview, err := app.matches.Matchday(r.Context(), matchday)
	if err != nil {
		httputil.InternalServerError(w, r, "Failed to load matchday", err)
		return
	}
	summary, err := app.predictions.Matchday(r.Context(), userID, matchday)
	if err != nil {
		httputil.InternalServerError(w, r, "Failed to load predictions", err)
		return
	}
	matchdays, err := app.matches.Matchdays(r.Context())
	if err != nil {
		httputil.InternalServerError(w, r, "Failed to load matchdays", err)
		return
	}

	data := views.PrepareMatchdayData(overview, summary, matchdays)
	data.Error = message

	if err := views.Render(w, r, status, views.MatchdayPage(data)); err != nil {
		httputil.InternalServerError(w, r, "Failed to render matchday", err)
	}
}

// handlePredictionsForm reads home_<matchID> and away_<matchID> pairs. Rows left blank are
// skipped, half filled rows fail validation.
func (app *application) handlePredictionsForm(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, r, "Invalid form data", err)
		return
	}
	matchday, err := strconv.Atoi(r.Form.Get("matchday"))
	if err != nil {
		httputil.BadRequest(w, r, "Invalid matchday", err)
		return
	}

	req := service.SubmitRequest{Matchday: matchday}
	for key := range r.Form {
		idStr, ok := strings.CutPrefix(key, "home_")
		if !ok {
			continue
		}
		matchID, err := uuid.Parse(idStr)
		if err != nil {
			httputil.BadRequest(w, r, "Invalid match ID", err)
			return
		}

		home, err := utils.IntOrNil(r.Form.Get("home_" + idStr))
		if err != nil {
			app.renderMatchday(w, r, matchday, http.StatusBadRequest, "Scores must be whole numbers")
			return
		}
		away, err := utils.IntOrNil(r.Form.Get("away_" + idStr))
		if err != nil {
			app.renderMatchday(w, r, matchday, http.StatusBadRequest, "Scores must be whole numbers")
			return
		}
		if home == nil && away == nil {
			continue
		}
		req.Predictions = append(req.Predictions, service.PredictionInput{MatchID: matchID, HomeScore: home, AwayScore: away})
	}

	if _, err := app.predictions.Submit(r.Context(), userID, req); err != nil {
		status := httputil.StatusFor(err)
		if status == http.StatusInternalServerError {
			httputil.InternalServerError(w, r, "Failed to save predictions", err)
			return
		}
		app.renderMatchday(w, r, matchday, status, formError(err))
		return
	}

	http.Redirect(w, r, "/?matchday="+strconv.Itoa(matchday), http.StatusSeeOther)
}

func formError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := validation.FormatValidationError(err)
		keys := make([]string, 0, len(fields))
		for field := range fields {
			keys = append(keys, field)
		}
		sort.Strings(keys)
		return keys[0] + ": " + fields[keys[0]]
	}
	return err.Error()
}
