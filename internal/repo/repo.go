// Package repo contains the MongoDB repositories. Each repository is an
// interface over a collection so services and handlers can be tested with
// in-memory fakes.
package repo

import "errors"

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when an insert violates a unique index.
	ErrDuplicate = errors.New("duplicate document")
)
