// Package storage persists the whole note collection and reads it back.
package storage

import "github.com/starford/jera/internal/models"

// Provider is the interface for note collection persistence.
type Provider interface {
	// Load returns every stored note in order. A missing or malformed
	// store yields an empty list and a nil error.
	Load() ([]models.Note, error)
	// Save replaces the stored collection with notes.
	Save(notes []models.Note) error
}

// Drivers.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Open returns the Provider for driver rooted at path.
func Open(driver, path string) (Provider, error) {
	switch driver {
	case "", DriverJSON:
		return NewJSONFile(path), nil
	case DriverSQLite:
		return OpenSQLite(path)
	default:
		return nil, errUnknownDriver(driver)
	}
}
