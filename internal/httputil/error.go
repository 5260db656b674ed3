package httputil

import (
	"errors"
	"net/http"

	"github.com/AdamBeresnev/matchday-pool/internal/logger"
	"github.com/AdamBeresnev/matchday-pool/internal/pool"
	"github.com/AdamBeresnev/matchday-pool/internal/service"
	"github.com/AdamBeresnev/matchday-pool/internal/validation"
	"github.com/go-playground/validator/v10"
)

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// StatusFor maps domain and service errors to an HTTP status.
func StatusFor(err error) int {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs),
		errors.Is(err, pool.ErrInvalidScore),
		errors.Is(err, pool.ErrMixedMatchdays),
		errors.Is(err, pool.ErrUnknownMatch),
		errors.Is(err, service.ErrInvalidFixture):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, pool.ErrDeadlinePassed),
		errors.Is(err, pool.ErrResultsAvailable),
		errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, pool.ErrNoMatches),
		errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as a JSON error body. Server errors are logged and their message hidden.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	status := StatusFor(err)

	if status == http.StatusInternalServerError {
		log.Error("request failed", "path", r.URL.Path, "error", err)
		JSON(w, status, ErrorResponse{Error: "Internal Server Error"})
		return
	}

	log.Warn("request rejected", "path", r.URL.Path, "status", status, "error", err)

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		JSON(w, status, ErrorResponse{Error: "Invalid request", Fields: validation.FormatValidationError(err)})
		return
	}
	JSON(w, status, ErrorResponse{Error: err.Error()})
}

func Unauthorized(w http.ResponseWriter, r *http.Request) {
	logger.FromContext(r.Context()).Warn("unauthenticated request", "path", r.URL.Path)
	JSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
}

func InternalServerError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logger.FromContext(r.Context()).Error(msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func BadRequest(w http.ResponseWriter, r *http.Request, msg string, err error) {
	log := logger.FromContext(r.Context())
	if err != nil {
		log.Warn("bad request", "message", msg, "error", err)
	} else {
		log.Warn("bad request", "message", msg)
	}
	JSON(w, http.StatusBadRequest, ErrorResponse{Error: msg})
}

func NotFound(w http.ResponseWriter, r *http.Request, msg string, err error) {
	log := logger.FromContext(r.Context())
	if err != nil {
		log.Warn("not found", "message", msg, "error", err)
	} else {
		log.Warn("not found", "message", msg)
	}
	http.Error(w, msg, http.StatusNotFound)
}
