package faults

import (
	"fmt"
	"net/http"
	"testing"
)

func TestIDMapping(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{ErrCapacityExceeded, "capacity_exceeded"},
		{ErrDuplicateQueueNumber, "duplicate_queue_number"},
		{ErrCancelledConflict, "cancelled_conflict"},
		{ErrTokenMismatch, "token_mismatch"},
		{ErrInvalidFormat, "invalid_format"},
		{ErrNotFound, "not_found"},
		{ErrStoreUnavailable, "store_unavailable"},
		{fmt.Errorf("boom"), "internal"},
	}
	for _, c := range cases {
		if got := ID(c.err); got != c.want {
			t.Errorf("ID(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}

func TestIDUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("insert failed: %w", ErrDuplicateQueueNumber)
	if got := ID(wrapped); got != "duplicate_queue_number" {
		t.Errorf("ID(wrapped) = %q", got)
	}
	if got := HTTPStatus(wrapped); got != http.StatusConflict {
		t.Errorf("HTTPStatus(wrapped) = %d", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	if HTTPStatus(ErrNotFound) != http.StatusNotFound {
		t.Error("not_found should map to 404")
	}
	if HTTPStatus(ErrCapacityExceeded) != http.StatusConflict {
		t.Error("capacity_exceeded should map to 409")
	}
	if HTTPStatus(fmt.Errorf("boom")) != http.StatusInternalServerError {
		t.Error("unknown errors should map to 500")
	}
}
