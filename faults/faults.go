package faults

import (
	"errors"
	"net/http"
)

// Named conditions surfaced to the presentation layer. Mutating
// operations either succeed or fail with one of these; raw store errors
// never cross the handler boundary.
var (
	ErrCapacityExceeded     = errors.New("event is full")
	ErrDuplicateQueueNumber = errors.New("duplicate queue number")
	ErrCancelledConflict    = errors.New("registration is cancelled")
	ErrTokenMismatch        = errors.New("token mismatch")
	ErrInvalidFormat        = errors.New("invalid credential format")
	ErrNotFound             = errors.New("registration not found")
	ErrStoreUnavailable     = errors.New("store unavailable")
)

// ID returns the stable machine-readable identifier for a fault,
// or "internal" for anything unrecognized.
func ID(err error) string {
	switch {
	case errors.Is(err, ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, ErrDuplicateQueueNumber):
		return "duplicate_queue_number"
	case errors.Is(err, ErrCancelledConflict):
		return "cancelled_conflict"
	case errors.Is(err, ErrTokenMismatch):
		return "token_mismatch"
	case errors.Is(err, ErrInvalidFormat):
		return "invalid_format"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "internal"
	}
}

func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrCapacityExceeded):
		return http.StatusConflict
	case errors.Is(err, ErrDuplicateQueueNumber):
		return http.StatusConflict
	case errors.Is(err, ErrCancelledConflict):
		return http.StatusConflict
	case errors.Is(err, ErrTokenMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
