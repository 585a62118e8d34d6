package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/jera/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events behind the same auth.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/{ref}", h.GetNote)
	r.Put("/notes/{ref}", h.UpdateNote)
	r.Delete("/notes/{ref}", h.DeleteNote)

	r.Get("/categories", h.Categories)
	r.Post("/save", h.Save)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
