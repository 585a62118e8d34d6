// Package models defines the domain types for Jera.
package models

import "time"

const (
	// DefaultCategory is the implicit category every store always offers.
	DefaultCategory = "Uncategorized"
	// DefaultTitle replaces a missing title when reading a save file.
	DefaultTitle = "New Note"
	// AllCategories is the list filter value that disables filtering.
	AllCategories = "All categories"
)

// Note is a single short text note.
type Note struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Category string    `json:"category"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

// MatchesCategory reports whether n passes the given list filter.
func (n Note) MatchesCategory(filter string) bool {
	if filter == "" || filter == AllCategories {
		return true
	}
	return n.Category == filter
}
