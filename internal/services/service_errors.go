package services

import "errors"

// Errors shared across services.
var (
	// ErrServiceUnavailable is returned by every mutating operation when no
	// database pool is configured. Read-listing operations return empty
	// collections instead.
	ErrServiceUnavailable = errors.New("persistence layer is not configured")

	// ErrValidation is the base error for malformed or missing input.
	ErrValidation = errors.New("validation error")
)
