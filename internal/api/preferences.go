// Package api exposes the preference store to the GUI front end over a
// loopback HTTP API and to assistants over MCP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kalambet/raw2dng/internal/prefs"
)

const maxRequestBodySize = 64 << 10 // 64KB

// Preferences is the part of *prefs.Store the API surfaces use.
type Preferences interface {
	Get(section, key string) (string, bool)
	Set(section, key, value string) error
	Entries() []prefs.Entry
	Snapshot() map[string]map[string]string
}

type Deps struct {
	Prefs Preferences
	Token string
}

type setRequest struct {
	Value *string `json:"value"`
}

func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)
	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))
		r.Get("/preferences", handleListPreferences(deps))
		r.Get("/preferences/{section}/{key}", handleGetPreference(deps))
		r.Put("/preferences/{section}/{key}", handleSetPreference(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleListPreferences(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, deps.Prefs.Snapshot())
	}
}

func handleGetPreference(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		section, key := chi.URLParam(r, "section"), chi.URLParam(r, "key")

		value, ok := deps.Prefs.Get(section, key)
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "no preference %s.%s", section, key)
			return
		}
		writeJSON(w, http.StatusOK, prefs.Entry{Section: section, Key: key, Value: value})
	}
}

func handleSetPreference(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		section, key := chi.URLParam(r, "section"), chi.URLParam(r, "key")

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var req setRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Value == nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "value is required")
			return
		}

		if err := deps.Prefs.Set(section, key, *req.Value); err != nil {
			switch {
			case errors.Is(err, prefs.ErrUnknownKey):
				httpError(w, http.StatusNotFound, "not_found", "%v", err)
			case errors.Is(err, prefs.ErrParse):
				httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			default:
				httpError(w, http.StatusInternalServerError, "api_error", "failed to save preference: %v", err)
			}
			return
		}

		value, _ := deps.Prefs.Get(section, key)
		writeJSON(w, http.StatusOK, prefs.Entry{Section: section, Key: key, Value: value})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
			"type":    errType,
		},
	})
}
