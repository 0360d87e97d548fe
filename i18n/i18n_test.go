package i18n

import (
	"strings"
	"testing"

	"gatepass/faults"
)

var allFaults = []error{
	faults.ErrCapacityExceeded,
	faults.ErrDuplicateQueueNumber,
	faults.ErrCancelledConflict,
	faults.ErrTokenMismatch,
	faults.ErrInvalidFormat,
	faults.ErrNotFound,
	faults.ErrStoreUnavailable,
}

func TestEveryFaultHasBothLanguages(t *testing.T) {
	for _, err := range allFaults {
		id := faults.ID(err)
		en := Localize("en", id)
		zh := Localize("zh-Hans", id)
		if en == id {
			t.Errorf("missing English message for %s", id)
		}
		if zh == id {
			t.Errorf("missing Chinese message for %s", id)
		}
		if en == zh {
			t.Errorf("English and Chinese messages identical for %s", id)
		}
	}
}

func TestUnknownLanguageFallsBackToEnglish(t *testing.T) {
	got := FaultMessage("ko", faults.ErrNotFound)
	if !strings.Contains(got, "registration") {
		t.Errorf("expected English fallback, got %q", got)
	}
}

func TestUnknownIDReturnsID(t *testing.T) {
	if got := Localize("en", "no_such_message"); got != "no_such_message" {
		t.Errorf("got %q", got)
	}
}
