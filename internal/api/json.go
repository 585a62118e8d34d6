package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/noteservice"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errResponse{Error: msg})
}

// fail maps service errors onto status codes. Save failures report that the
// mutation is still held in memory.
func fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrOutOfRange):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, apperr.ErrConflict):
		writeError(w, http.StatusConflict, "note changed since it was read")
	case noteservice.IsSaveError(err):
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "changes kept in memory but not saved: "+err.Error())
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeDraft reads a NoteRequest body. An absent category means the default.
func decodeDraft(w http.ResponseWriter, r *http.Request) (noteservice.Draft, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return noteservice.Draft{}, false
	}
	d := noteservice.Draft{Title: req.Title, Content: req.Content, Category: models.DefaultCategory}
	if req.Category != nil {
		d.Category = *req.Category
	}
	return d, true
}
