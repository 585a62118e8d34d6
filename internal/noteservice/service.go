// Package noteservice turns user intents into store mutations followed by a save.
package noteservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/checksum"
	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/notestore"
	"github.com/starford/jera/internal/storage"
)

// Change kinds passed to a ChangeCallback.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// ChangeCallback is called after a mutation has been applied to the store.
// categoriesChanged reports whether the assignable category set differs from
// before the mutation.
type ChangeCallback func(kind, id string, categoriesChanged bool)

// Draft is the user-editable part of a note.
type Draft struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// Validate checks that every field is filled in.
func (d Draft) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Title, validation.Required.Error("please enter a title")),
		validation.Field(&d.Content, validation.Required.Error("please enter the note text")),
		validation.Field(&d.Category, validation.Required.Error("please choose a category")),
	)
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithChangeCallback registers cb for every applied mutation.
func WithChangeCallback(cb ChangeCallback) Option {
	return func(s *Service) { s.onChange = cb }
}

// Service coordinates the note store and its persistence.
//
// mu serializes every mutate-then-save sequence and standalone saves, so the
// persisted file always reflects the latest completed mutation.
type Service struct {
	mu       sync.Mutex
	store    *notestore.Store
	persist  storage.Provider
	now      func() time.Time
	onChange ChangeCallback
}

// NewService creates a service over an already populated store.
func NewService(store *notestore.Store, persist storage.Provider, opts ...Option) *Service {
	s := &Service{store: store, persist: persist, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads persisted notes into a new store. Load failures are logged and
// the session starts empty.
func Load(persist storage.Provider, logger *slog.Logger) *notestore.Store {
	notes, err := persist.Load()
	if err != nil {
		logger.Warn("load notes failed, starting empty", slog.String("error", err.Error()))
		notes = nil
	}
	return notestore.New(notes)
}

// Store exposes the underlying store.
func (s *Service) Store() *notestore.Store { return s.store }

// CreateNote validates d and appends a new note.
func (s *Service) CreateNote(_ context.Context, d Draft) (models.Note, error) {
	if err := d.Validate(); err != nil {
		return models.Note{}, fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	now := s.clock()
	n := models.Note{
		ID:       uuid.NewString(),
		Title:    d.Title,
		Content:  d.Content,
		Category: d.Category,
		Created:  now,
		Modified: now,
	}
	s.mu.Lock()
	before := s.store.Categories()
	s.store.Add(n)
	err := s.save()
	changed := s.categoriesChanged(before)
	s.mu.Unlock()

	s.notify(ChangeCreated, n.ID, changed)
	return n, err
}

// UpdateNote replaces the editable fields of the note with the given id.
// A non-empty ifMatch must equal the note's current Checksum.
func (s *Service) UpdateNote(_ context.Context, id string, d Draft, ifMatch string) (models.Note, error) {
	if err := d.Validate(); err != nil {
		return models.Note{}, fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	old, err := s.store.Get(id)
	if err != nil {
		return models.Note{}, err
	}
	if ifMatch != "" && ifMatch != Checksum(old) {
		return models.Note{}, apperr.ErrConflict
	}

	modified := s.clock()
	if modified.Before(old.Modified) {
		modified = old.Modified
	}
	n := models.Note{
		ID:       old.ID,
		Title:    d.Title,
		Content:  d.Content,
		Category: d.Category,
		Created:  old.Created,
		Modified: modified,
	}
	before := s.store.Categories()
	if err := s.store.ReplaceByID(id, n); err != nil {
		return models.Note{}, err
	}
	err = s.save()
	s.notify(ChangeUpdated, n.ID, s.categoriesChanged(before))
	return n, err
}

// DeleteNote removes the note with the given id.
func (s *Service) DeleteNote(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.store.Categories()
	if err := s.store.RemoveByID(id); err != nil {
		return err
	}
	err := s.save()
	s.notify(ChangeDeleted, id, s.categoriesChanged(before))
	return err
}

// GetNote returns the note with the given id.
func (s *Service) GetNote(_ context.Context, id string) (models.Note, error) {
	return s.store.Get(id)
}

// ListNotes returns notes in store order matching the category filter.
func (s *Service) ListNotes(_ context.Context, category string) []models.Note {
	return s.store.List(category)
}

// Categories returns every category that can be assigned.
func (s *Service) Categories(_ context.Context) []string {
	return s.store.Categories()
}

// Save persists the whole store. The in-memory state is kept on failure.
func (s *Service) Save(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

func (s *Service) save() error {
	if err := s.persist.Save(s.store.List("")); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrSave, err)
	}
	return nil
}

// Resolve maps a user reference to a note id. A non-negative integer is a
// list position, anything else an id.
func (s *Service) Resolve(ref string) (string, error) {
	if i, err := strconv.Atoi(ref); err == nil && i >= 0 {
		n, err := s.store.At(i)
		if err != nil {
			return "", err
		}
		return n.ID, nil
	}
	if _, err := s.store.Get(ref); err != nil {
		return "", err
	}
	return ref, nil
}

// IsSaveError reports whether err came from persistence rather than input.
func IsSaveError(err error) bool {
	return errors.Is(err, apperr.ErrSave)
}

// Checksum returns the hex SHA-256 of the note's JSON form, used as an ETag.
func Checksum(n models.Note) string {
	data, _ := json.Marshal(n)
	return checksum.Sum(data)
}

func (s *Service) clock() time.Time {
	return s.now().Truncate(time.Second)
}

func (s *Service) categoriesChanged(before []string) bool {
	return !slices.Equal(before, s.store.Categories())
}

func (s *Service) notify(kind, id string, categoriesChanged bool) {
	if s.onChange != nil {
		s.onChange(kind, id, categoriesChanged)
	}
}
