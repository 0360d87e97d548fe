package livesync

import (
	"context"
	"log"
	"sync"
	"time"

	"gatepass/registrations"
)

// FetchFunc pulls a fresh snapshot's rows from the store.
type FetchFunc func(ctx context.Context) ([]registrations.Row, error)

// CueFunc fires once per newly observed check-in.
type CueFunc func(key GroupKey)

// Poller runs one view's reconciliation loop: fetch, diff, cue. Poll
// failures are logged and swallowed — the previous snapshot stays
// rendered and the next tick tries again, so a flaky network degrades
// responsiveness rather than correctness.
type Poller struct {
	fetch FetchFunc
	onCue CueFunc

	mu       sync.Mutex
	interval time.Duration
	prev     Snapshot
	cues     map[GroupKey]time.Time
	stopped  bool
}

func NewPoller(interval time.Duration, fetch FetchFunc, onCue CueFunc) *Poller {
	return &Poller{
		fetch:    fetch,
		onCue:    onCue,
		interval: interval,
		prev:     Snapshot{},
		cues:     make(map[GroupKey]time.Time),
	}
}

// SetScanning switches the admin console between its scanner-active and
// idle poll rates. Takes effect on the next tick.
func (p *Poller) SetScanning(active bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if active {
		p.interval = AdminScanInterval
	} else {
		p.interval = AdminIdleInterval
	}
}

func (p *Poller) currentInterval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}

// Run polls until ctx is cancelled (component teardown). The first poll
// happens immediately.
func (p *Poller) Run(ctx context.Context) {
	p.PollOnce(ctx)
	timer := time.NewTimer(p.currentInterval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			p.stopped = true
			p.mu.Unlock()
			return
		case <-timer.C:
			p.PollOnce(ctx)
			timer.Reset(p.currentInterval())
		}
	}
}

// PollOnce performs a single fetch-diff-cue cycle. Each poll is
// independent; a failure leaves the rendered state unchanged.
func (p *Poller) PollOnce(ctx context.Context) {
	rows, err := p.fetch(ctx)
	if err != nil {
		log.Printf("livesync: poll failed, keeping previous state: %v", err)
		return
	}

	next := SnapshotOf(rows)

	p.mu.Lock()
	flipped := DiffAttendance(p.prev, next)
	now := time.Now()
	for _, key := range flipped {
		p.cues[key] = now
	}
	p.prev = next
	p.mu.Unlock()

	if p.onCue != nil {
		for _, key := range flipped {
			p.onCue(key)
		}
	}
}

// Highlighted returns the groups still inside their cue display window
// and drops the expired ones.
func (p *Poller) Highlighted(now time.Time) []GroupKey {
	p.mu.Lock()
	defer p.mu.Unlock()

	var active []GroupKey
	for key, at := range p.cues {
		if now.Sub(at) < CueWindow {
			active = append(active, key)
		} else {
			delete(p.cues, key)
		}
	}
	return active
}

// ApplyIfRelevant runs fn only while the poller is still live. In-flight
// writes are never cancelled mid-flight; their results are applied
// through this guard so a result landing after teardown is dropped
// instead of mutating a dead view.
func (p *Poller) ApplyIfRelevant(fn func()) bool {
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if stopped {
		return false
	}
	fn()
	return true
}
