// Package notestore is the in-memory ordered collection of notes for a session.
package notestore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/models"
)

// Store keeps notes in insertion order. Positions shift on removal; IDs do not.
type Store struct {
	mu    sync.RWMutex
	notes []models.Note
}

// New creates a store seeded with notes (copied).
func New(notes []models.Note) *Store {
	s := &Store{notes: make([]models.Note, len(notes))}
	copy(s.notes, notes)
	return s
}

// Add appends n to the end of the list.
func (s *Store) Add(n models.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, n)
}

// Replace overwrites the note at index i.
func (s *Store) Replace(i int, n models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.notes[i] = n
	return nil
}

// Remove deletes the note at index i.
func (s *Store) Remove(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.notes = append(s.notes[:i], s.notes[i+1:]...)
	return nil
}

// At returns the note at index i.
func (s *Store) At(i int) (models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkIndex(i); err != nil {
		return models.Note{}, err
	}
	return s.notes[i], nil
}

// IndexOf returns the position of the note with the given id, or -1.
func (s *Store) IndexOf(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id)
}

// Get returns the note with the given id.
func (s *Store) Get(id string) (models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Note{}, fmt.Errorf("note %s: %w", id, apperr.ErrNotFound)
	}
	return s.notes[i], nil
}

// ReplaceByID overwrites the note with the given id, keeping its position.
func (s *Store) ReplaceByID(id string, n models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("note %s: %w", id, apperr.ErrNotFound)
	}
	s.notes[i] = n
	return nil
}

// RemoveByID deletes the note with the given id.
func (s *Store) RemoveByID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("note %s: %w", id, apperr.ErrNotFound)
	}
	s.notes = append(s.notes[:i], s.notes[i+1:]...)
	return nil
}

// List returns notes in store order whose category equals filter exactly.
// An empty filter or models.AllCategories returns every note.
func (s *Store) List(filter string) []models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Note, 0, len(s.notes))
	for _, n := range s.notes {
		if n.MatchesCategory(filter) {
			out = append(out, n)
		}
	}
	return out
}

// Categories returns the sorted set of categories in use plus models.DefaultCategory.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := map[string]struct{}{models.DefaultCategory: {}}
	for _, n := range s.notes {
		set[n.Category] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of notes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

func (s *Store) checkIndex(i int) error {
	if i < 0 || i >= len(s.notes) {
		return fmt.Errorf("index %d (len %d): %w", i, len(s.notes), apperr.ErrOutOfRange)
	}
	return nil
}

func (s *Store) indexOf(id string) int {
	for i, n := range s.notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
