package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write collides with a unique key
	ErrConflict = errors.New("conflict: entity already exists")

	// ErrUnavailable is returned when the backing store cannot serve requests
	ErrUnavailable = errors.New("store unavailable")
)
