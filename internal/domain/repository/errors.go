package repository

import "errors"

// Common repository errors.
// Every storage backend returns these so callers can match with errors.Is.
var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity with the same identifier already exists.
	ErrAlreadyExists = errors.New("already exists")
)
