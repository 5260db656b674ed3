package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/unrolled/render"
)

// HTML pages go through templ; render only writes JSON and text.
var renderer = render.New()

func JSON(w http.ResponseWriter, status int, v any) {
	if err := renderer.JSON(w, status, v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func Text(w http.ResponseWriter, status int, s string) {
	if err := renderer.Text(w, status, s); err != nil {
		slog.Error("failed to write text response", "error", err)
	}
}

// DecodeJSON reads a JSON request body into dst, rejecting unknown fields and anything
// after the first value.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("decode request body: unexpected data after JSON value")
	}
	return nil
}

// QueryMatchday reads the matchday query parameter. Missing or invalid values fall back to 1.
func QueryMatchday(r *http.Request) int {
	matchday, err := strconv.Atoi(r.URL.Query().Get("matchday"))
	if err != nil || matchday < 1 {
		return 1
	}
	return matchday
}

// OptionalMatchday reads the matchday query parameter as a filter. nil means all matchdays.
func OptionalMatchday(r *http.Request) *int {
	matchday, err := strconv.Atoi(r.URL.Query().Get("matchday"))
	if err != nil || matchday < 1 {
		return nil
	}
	return &matchday
}
