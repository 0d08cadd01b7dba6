package repository

import "errors"

var (
	// ErrNotFound is returned when a scoped lookup matches no row
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a UNIQUE key
	ErrDuplicate = errors.New("duplicate record")
	// ErrUnsupported is returned for operations a container kind does not have
	ErrUnsupported = errors.New("operation not supported for this container")
)
