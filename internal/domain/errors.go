package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// record does not exist in its collection.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing destination, more available seats than total).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a record with the same id already exists,
// or when a state transition is not allowed. Handlers map it to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrUnavailable is returned when the persistent store was never configured.
// Reads still return empty values alongside it so callers can check
// availability without special-casing. Handlers map it to HTTP 503.
var ErrUnavailable = errors.New("store unavailable")
