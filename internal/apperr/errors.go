// Package apperr holds the sentinel errors shared by the store, service and surfaces.
package apperr

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrOutOfRange = errors.New("index out of range")
	ErrConflict   = errors.New("conflict")
	ErrInvalid    = errors.New("invalid input")
	ErrSave       = errors.New("save failed")
)
