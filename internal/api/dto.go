package api

import "github.com/starford/jera/internal/models"

// NoteRequest is the body for creating or replacing a note. An omitted
// category defaults to models.DefaultCategory; an explicit empty one is rejected.
type NoteRequest struct {
	Title    string  `json:"title" example:"Groceries"`
	Content  string  `json:"content" example:"milk, eggs"`
	Category *string `json:"category,omitempty" example:"Home"`
}

// NoteResponse is a note plus its current position in the store.
type NoteResponse struct {
	models.Note
	Index int `json:"index" example:"0"`
}

// NoteListResponse wraps a filtered listing.
type NoteListResponse struct {
	Notes []NoteResponse `json:"notes"`
	Total int            `json:"total" example:"42"`
}

// CategoriesResponse lists the assignable categories.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}
