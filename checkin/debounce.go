package checkin

import (
	"sync"
	"time"
)

// debouncer remembers recently completed scan payloads for one window.
// Only completed scans are recorded; a scan that failed mid-flight
// (store outage, bad token) must stay retryable immediately, not read
// back as a duplicate for the rest of the window.
type debouncer struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	window time.Duration
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{
		seen:   make(map[string]time.Time),
		window: window,
	}
}

// Seen reports whether this payload completed inside the window. It
// records nothing.
func (d *debouncer) Seen(payload string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	at, ok := d.seen[payload]
	return ok && now.Sub(at) < d.window
}

// Record remembers a completed scan. The window is measured from the
// completed scan; suppressed repeats never reach Record, so they cannot
// extend it.
func (d *debouncer) Record(payload string, now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seen[payload] = now
	d.prune(now)
}

func (d *debouncer) prune(now time.Time) {
	for p, at := range d.seen {
		if now.Sub(at) >= d.window {
			delete(d.seen, p)
		}
	}
}
