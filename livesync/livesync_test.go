package livesync

import (
	"context"
	"errors"
	"testing"
	"time"

	"gatepass/models"
	"gatepass/registrations"
)

func row(eventID, qn string, attended bool) registrations.Row {
	return registrations.Row{
		EventID: eventID,
		Group:   models.ParticipantGroup{QueueNumber: qn, Attendance: attended},
	}
}

func key(eventID, qn string) GroupKey {
	return GroupKey{EventID: eventID, QueueNumber: qn}
}

func TestDiffAttendanceDetectsFlip(t *testing.T) {
	prev := Snapshot{key("evt1", "U001"): false, key("evt1", "U002"): false}
	next := Snapshot{key("evt1", "U001"): true, key("evt1", "U002"): false}

	flipped := DiffAttendance(prev, next)
	if len(flipped) != 1 || flipped[0] != key("evt1", "U001") {
		t.Fatalf("flipped = %v, want [evt1/U001]", flipped)
	}
}

func TestDiffAttendanceIgnoresUnseenGroups(t *testing.T) {
	// a group that was never rendered unattended does not cue
	prev := Snapshot{}
	next := Snapshot{key("evt1", "U001"): true}

	if flipped := DiffAttendance(prev, next); len(flipped) != 0 {
		t.Fatalf("flipped = %v, want none", flipped)
	}
}

func TestDiffAttendanceIgnoresReverseFlip(t *testing.T) {
	prev := Snapshot{key("evt1", "U001"): true}
	next := Snapshot{key("evt1", "U001"): false}

	if flipped := DiffAttendance(prev, next); len(flipped) != 0 {
		t.Fatalf("unmarking should not cue, got %v", flipped)
	}
}

func TestDiffAttendanceSameNumberDifferentEvents(t *testing.T) {
	// the phone view spans events; both can hand out the same queue
	// number, and a check-in at one must not be masked by the other
	rows := []registrations.Row{
		row("evtA", "U001", false),
		row("evtB", "U001", true),
	}
	prev := SnapshotOf(rows)

	rows[0].Group.Attendance = true
	next := SnapshotOf(rows)

	flipped := DiffAttendance(prev, next)
	if len(flipped) != 1 || flipped[0] != key("evtA", "U001") {
		t.Fatalf("flipped = %v, want [evtA/U001]", flipped)
	}
}

func TestPollerCuesOnFlip(t *testing.T) {
	state := []registrations.Row{row("evt1", "U001", false)}
	var cued []GroupKey

	p := NewPoller(ParticipantInterval,
		func(ctx context.Context) ([]registrations.Row, error) { return state, nil },
		func(k GroupKey) { cued = append(cued, k) },
	)

	p.PollOnce(context.Background())
	state = []registrations.Row{row("evt1", "U001", true)}
	p.PollOnce(context.Background())

	if len(cued) != 1 || cued[0] != key("evt1", "U001") {
		t.Fatalf("cued = %v, want [evt1/U001]", cued)
	}

	if hl := p.Highlighted(time.Now()); len(hl) != 1 || hl[0] != key("evt1", "U001") {
		t.Fatalf("Highlighted = %v, want [evt1/U001]", hl)
	}
	if hl := p.Highlighted(time.Now().Add(CueWindow + time.Second)); len(hl) != 0 {
		t.Fatalf("cue should expire after the display window, got %v", hl)
	}
}

func TestPollerSwallowsFetchErrors(t *testing.T) {
	calls := 0
	p := NewPoller(ParticipantInterval,
		func(ctx context.Context) ([]registrations.Row, error) {
			calls++
			if calls == 2 {
				return nil, errors.New("network blip")
			}
			if calls >= 3 {
				return []registrations.Row{row("evt1", "U001", true)}, nil
			}
			return []registrations.Row{row("evt1", "U001", false)}, nil
		},
		nil,
	)

	p.PollOnce(context.Background()) // renders U001 unattended
	p.PollOnce(context.Background()) // fails; previous state kept
	p.PollOnce(context.Background()) // flip observed against kept state

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.cues[key("evt1", "U001")]; !ok {
		t.Fatal("flip across a failed poll should still cue")
	}
}

func TestPollerCollapsesDoubleFlip(t *testing.T) {
	// mark + unmark between two polls is invisible; that is fine
	p := NewPoller(ParticipantInterval,
		func(ctx context.Context) ([]registrations.Row, error) {
			return []registrations.Row{row("evt1", "U001", false)}, nil
		},
		func(k GroupKey) { t.Errorf("unexpected cue for %v", k) },
	)
	p.PollOnce(context.Background())
	p.PollOnce(context.Background())
}

func TestPollerScanningSwitchesInterval(t *testing.T) {
	p := NewPoller(AdminIdleInterval,
		func(ctx context.Context) ([]registrations.Row, error) { return nil, nil },
		nil,
	)

	if got := p.currentInterval(); got != AdminIdleInterval {
		t.Fatalf("initial interval = %v, want %v", got, AdminIdleInterval)
	}

	p.SetScanning(true)
	if got := p.currentInterval(); got != AdminScanInterval {
		t.Fatalf("scanning interval = %v, want %v", got, AdminScanInterval)
	}

	p.SetScanning(false)
	if got := p.currentInterval(); got != AdminIdleInterval {
		t.Fatalf("idle interval = %v, want %v", got, AdminIdleInterval)
	}
}

func TestApplyIfRelevantAfterTeardown(t *testing.T) {
	p := NewPoller(time.Hour,
		func(ctx context.Context) ([]registrations.Row, error) { return nil, nil },
		nil,
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	applied := false
	if p.ApplyIfRelevant(func() { applied = true }) {
		t.Fatal("write results must be dropped after teardown")
	}
	if applied {
		t.Fatal("fn must not run after teardown")
	}
}

func TestApplyIfRelevantWhileLive(t *testing.T) {
	p := NewPoller(time.Hour,
		func(ctx context.Context) ([]registrations.Row, error) { return nil, nil },
		nil,
	)
	applied := false
	if !p.ApplyIfRelevant(func() { applied = true }) || !applied {
		t.Fatal("live poller should apply write results")
	}
}

func TestRedactRowsHidesPII(t *testing.T) {
	rows := []registrations.Row{{
		EventID: "evt1",
		Group: models.ParticipantGroup{
			QueueNumber: "U001",
			Answers: []models.AnswerField{
				{FieldID: "f1", Label: "Name", Type: "name", Value: "Tan Mei Ling"},
				{FieldID: "f2", Label: "Phone", Type: "phone", Value: "+6591234567"},
				{FieldID: "f3", Label: "Postal Code", Type: "postal", Value: "520123"},
			},
		},
	}}

	redacted := RedactRows(rows, false)
	got := redacted[0].Group
	if got.Answer("name") != "Tan Mei Ling" {
		t.Error("name should remain visible")
	}
	if got.Answer("phone") != "" || got.Answer("postal") != "" {
		t.Error("phone and postal must be hidden from non-admin callers")
	}

	// input untouched
	if rows[0].Group.Answer("phone") != "+6591234567" {
		t.Error("redaction must not mutate the source rows")
	}

	admin := RedactRows(rows, true)
	if admin[0].Group.Answer("phone") != "+6591234567" {
		t.Error("admin callers see PII")
	}
}
