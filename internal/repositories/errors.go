package repositories

import "errors"

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint (user email,
	// category slug) would be violated.
	ErrDuplicate = errors.New("duplicate record")
)
