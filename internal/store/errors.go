package store

import "errors"

// Domain errors for the store package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, store.ErrNotFound) {
//	    // handle not found case
//	}
var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrExists is returned when creating a record whose unique key is taken.
	ErrExists = errors.New("store: already exists")

	// ErrConflict is returned on an origin collision: two remote objects
	// claiming the same local identity, or one local record claiming two
	// remote counterparts on the same network. Never auto-resolved.
	ErrConflict = errors.New("store: origin conflict")

	// ErrInvalid is returned when record validation fails.
	ErrInvalid = errors.New("store: invalid record")
)
