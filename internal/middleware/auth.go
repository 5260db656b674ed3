package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/AdamBeresnev/matchday-pool/internal/config"
	"github.com/AdamBeresnev/matchday-pool/internal/httputil"
	"github.com/AdamBeresnev/matchday-pool/internal/store"
	users "github.com/AdamBeresnev/matchday-pool/internal/user"
	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"github.com/markbates/goth/providers/discord"
	"github.com/markbates/goth/providers/google"
)

type ContextKey string

const UserIDKey ContextKey = "userID"

// SessionUserIDKey is the session entry holding the logged in user's id.
const SessionUserIDKey = "userID"

// InitAuth registers the OAuth providers that have credentials configured and returns their
// names.
func InitAuth(cfg *config.Config) []string {
	var providers []goth.Provider
	if cfg.DiscordKey != "" {
		providers = append(providers, discord.New(cfg.DiscordKey, cfg.DiscordSecret, cfg.DiscordCallbackURL, discord.ScopeIdentify, discord.ScopeEmail))
	}
	if cfg.GoogleKey != "" {
		providers = append(providers, google.New(cfg.GoogleKey, cfg.GoogleSecret, cfg.GoogleCallbackURL, "email", "profile"))
	}
	goth.UseProviders(providers...)

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	slog.Info("oauth providers enabled", "providers", names)
	return names
}

// LoadAuthenticatedUser puts the session's user into the request context when there is one.
// Anonymous requests pass through untouched.
func LoadAuthenticatedUser(sessionManager *scs.SessionManager, userStore *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userIDStr := sessionManager.GetString(r.Context(), SessionUserIDKey)
			if userIDStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := uuid.Parse(userIDStr)
			if err != nil {
				sessionManager.Remove(r.Context(), SessionUserIDKey)
				next.ServeHTTP(w, r)
				return
			}

			// A session can outlive its user, treat that as logged out
			user, err := userStore.GetUser(r.Context(), userID)
			if err != nil {
				sessionManager.Remove(r.Context(), SessionUserIDKey)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireAuth stops anonymous requests. API calls get a 401, pages redirect to the login page.
// It must run after LoadAuthenticatedUser.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUserIDFromContext(r.Context()); !ok {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				httputil.Unauthorized(w, r)
				return
			}
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin only lets through users whose email is listed in ADMIN_EMAILS.
func RequireAdmin(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetAuthenticatedUser(r.Context())
			if user == nil {
				httputil.Unauthorized(w, r)
				return
			}
			if !cfg.IsAdmin(user.Email) {
				slog.Warn("admin route refused", "user_id", user.ID, "path", r.URL.Path)
				httputil.JSON(w, http.StatusForbidden, httputil.ErrorResponse{Error: "Forbidden"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	val := ctx.Value(UserIDKey)
	if val == nil {
		return uuid.Nil, false
	}

	id, ok := val.(uuid.UUID)
	return id, ok
}

func GetAuthenticatedUser(ctx context.Context) *users.User {
	val := ctx.Value(users.UserKey)
	if val == nil {
		return nil
	}
	user, ok := val.(*users.User)
	if !ok {
		return nil
	}
	return user
}

// WithUser returns a context carrying the user, the way LoadAuthenticatedUser stores it.
func WithUser(ctx context.Context, user *users.User) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, user.ID)
	return context.WithValue(ctx, users.UserKey, user)
}
