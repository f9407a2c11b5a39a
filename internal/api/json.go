package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/starford/hyprtext/internal/apperr"
	"github.com/starford/hyprtext/internal/controller"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrNoActiveDocument):
		writeJSON(w, http.StatusNotFound, errorBody("document not found"))
	case errors.Is(err, apperr.ErrNoTargetPath):
		writeJSON(w, http.StatusConflict, errorBody("document has no path; save with a path"))
	case errors.Is(err, apperr.ErrTargetIsDirectory):
		writeJSON(w, http.StatusBadRequest, errorBody("target is a directory"))
	case errors.Is(err, apperr.ErrNotMarkdown):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("not a markdown document"))
	case errors.Is(err, controller.ErrStopped), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, errorBody("session unavailable"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	return readJSON(w, r, v, false)
}

// decodeOptional is decode for endpoints where an empty body means defaults.
func decodeOptional(w http.ResponseWriter, r *http.Request, v any) bool {
	return readJSON(w, r, v, true)
}

func readJSON(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
	return false
}
