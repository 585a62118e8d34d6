package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/jera/internal/checksum"
	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes in store order
//	@Tags			notes
//	@Produce		json
//	@Param			category	query		string	false	"Exact category filter"
//	@Success		200			{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes := h.svc.ListNotes(r.Context(), r.URL.Query().Get("category"))
	items := make([]NoteResponse, len(notes))
	for i, n := range notes {
		items[i] = h.response(n)
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, Total: len(items)})
}

// GetNote handles GET /api/notes/{ref}.
//
//	@Summary		Get a note by id or position
//	@Tags			notes
//	@Produce		json
//	@Param			ref	path		string	true	"Note id or list position"
//	@Success		200	{object}	NoteResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{ref} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.resolve(w, r)
	if !ok {
		return
	}
	n, err := h.svc.GetNote(r.Context(), id)
	if err != nil {
		fail(w, "get note", err)
		return
	}
	h.writeNote(w, http.StatusOK, n)
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		NoteRequest	true	"Note to create"
//	@Success		201		{object}	NoteResponse
//	@Failure		400		{object}	errResponse
//	@Failure		500		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	d, ok := decodeDraft(w, r)
	if !ok {
		return
	}
	n, err := h.svc.CreateNote(r.Context(), d)
	if err != nil {
		fail(w, "create note", err)
		return
	}
	h.writeNote(w, http.StatusCreated, n)
}

// UpdateNote handles PUT /api/notes/{ref}.
//
//	@Summary		Replace a note's title, content and category
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			ref			path		string		true	"Note id or list position"
//	@Param			If-Match	header		string		false	"ETag from a previous read"
//	@Param			body		body		NoteRequest	true	"Edited note"
//	@Success		200			{object}	NoteResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{ref} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.resolve(w, r)
	if !ok {
		return
	}
	d, ok := decodeDraft(w, r)
	if !ok {
		return
	}
	ifMatch := checksum.FromETag(r.Header.Get("If-Match"))

	n, err := h.svc.UpdateNote(r.Context(), id, d, ifMatch)
	if err != nil {
		fail(w, "update note", err)
		return
	}
	h.writeNote(w, http.StatusOK, n)
}

// DeleteNote handles DELETE /api/notes/{ref}.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Param			ref	path	string	true	"Note id or list position"
//	@Success		204	"Note deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{ref} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.resolve(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteNote(r.Context(), id); err != nil {
		fail(w, "delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Categories handles GET /api/categories.
//
//	@Summary		List assignable categories
//	@Tags			categories
//	@Produce		json
//	@Success		200	{object}	CategoriesResponse
//	@Security		BearerAuth
//	@Router			/categories [get]
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: h.svc.Categories(r.Context())})
}

// Save handles POST /api/save.
//
//	@Summary		Persist the store now
//	@Tags			notes
//	@Success		204	"Saved"
//	@Failure		500	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/save [post]
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Save(r.Context()); err != nil {
		fail(w, "save", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := h.svc.Resolve(chi.URLParam(r, "ref"))
	if err != nil {
		fail(w, "resolve note", err)
		return "", false
	}
	return id, true
}

func (h *Handler) response(n models.Note) NoteResponse {
	return NoteResponse{Note: n, Index: h.svc.Store().IndexOf(n.ID)}
}

func (h *Handler) writeNote(w http.ResponseWriter, status int, n models.Note) {
	w.Header().Set("ETag", checksum.ETag(noteservice.Checksum(n)))
	writeJSON(w, status, h.response(n))
}
