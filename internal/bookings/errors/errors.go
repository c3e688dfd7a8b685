package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrStaleStatus means a guarded update matched nothing because the
	// booking's status changed after it was read.
	ErrStaleStatus = errors.New("booking status changed concurrently")
)
