package checkin

import (
	"testing"
	"time"
)

func TestDebouncerSuppressesRepeatScan(t *testing.T) {
	d := newDebouncer(2 * time.Second)
	now := time.Now()

	if d.Seen("evt1_U001_abc", now) {
		t.Fatal("first scan should be allowed")
	}
	d.Record("evt1_U001_abc", now)

	if !d.Seen("evt1_U001_abc", now.Add(500*time.Millisecond)) {
		t.Fatal("repeat within the window should be suppressed")
	}
	if d.Seen("evt1_U001_abc", now.Add(3*time.Second)) {
		t.Fatal("scan after the window should be allowed again")
	}
}

func TestDebouncerDistinctPayloadsIndependent(t *testing.T) {
	d := newDebouncer(2 * time.Second)
	now := time.Now()

	d.Record("evt1_U001_abc", now)
	if d.Seen("evt1_U002_def", now) {
		t.Fatal("a different payload should not be debounced")
	}
}

func TestDebouncerFailedScanStaysRetryable(t *testing.T) {
	// a scan that fails is never recorded, so an immediate rescan of
	// the same pass must go through instead of reading as a duplicate
	d := newDebouncer(2 * time.Second)
	now := time.Now()

	if d.Seen("evt1_U001_abc", now) {
		t.Fatal("first attempt should be allowed")
	}
	// processing fails here; nothing recorded

	if d.Seen("evt1_U001_abc", now.Add(100*time.Millisecond)) {
		t.Fatal("rescan after a failed attempt must not be suppressed")
	}
}

func TestDebouncerRepeatDoesNotExtendWindow(t *testing.T) {
	d := newDebouncer(2 * time.Second)
	now := time.Now()

	d.Record("p", now)
	if !d.Seen("p", now.Add(1500*time.Millisecond)) {
		t.Fatal("repeat inside the window should be suppressed")
	}
	// the suppressed repeat was not recorded, so the window still runs
	// from the completed scan
	if d.Seen("p", now.Add(2100*time.Millisecond)) {
		t.Fatal("window is measured from the completed scan, not the suppressed one")
	}
}

func TestDebouncerPrunesOldEntries(t *testing.T) {
	d := newDebouncer(2 * time.Second)
	now := time.Now()

	for _, p := range []string{"a", "b", "c"} {
		d.Record(p, now)
	}
	d.Record("d", now.Add(10*time.Second))

	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.seen) != 1 {
		t.Fatalf("expired payloads should be pruned, map has %d entries", len(d.seen))
	}
}
