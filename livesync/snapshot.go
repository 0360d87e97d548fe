// Package livesync implements the polling reconciliation between the
// admin console, the participant page, and the store. There is no push
// channel: each view periodically refetches a full snapshot and diffs
// it against what it last rendered. Both sides only ever see current
// snapshots, so nothing here assumes in-order delivery of updates.
package livesync

import (
	"time"

	"gatepass/models"
	"gatepass/registrations"
)

// Poll intervals and the cue display window. The admin console polls
// faster while a scanner is active.
const (
	ParticipantInterval = 2 * time.Second
	AdminScanInterval   = 10 * time.Second
	AdminIdleInterval   = 15 * time.Second
	CueWindow           = 2 * time.Second
)

// GroupKey identifies one group within a view. Queue numbers are only
// unique per event, and the phone view spans events, so the key carries
// both parts.
type GroupKey struct {
	EventID     string `json:"eventid"`
	QueueNumber string `json:"queuenumber"`
}

// Snapshot is the rendered attendance state of one view: group key to
// attendance flag.
type Snapshot map[GroupKey]bool

// SnapshotOf reduces fetched rows to the attendance map a view diffs
// against.
func SnapshotOf(rows []registrations.Row) Snapshot {
	s := make(Snapshot, len(rows))
	for _, row := range rows {
		s[GroupKey{EventID: row.EventID, QueueNumber: row.Group.QueueNumber}] = row.Group.Attendance
	}
	return s
}

// DiffAttendance returns the groups whose attendance flipped from
// false to true between two polls. A group absent from the previous
// snapshot was never rendered unattended, so it does not cue; and two
// flips between polls collapse into at most one observed change. Both
// are acceptable: the cue is a presentation effect, not a correctness
// mechanism.
func DiffAttendance(prev, next Snapshot) []GroupKey {
	var flipped []GroupKey
	for key, attended := range next {
		if !attended {
			continue
		}
		if was, ok := prev[key]; ok && !was {
			flipped = append(flipped, key)
		}
	}
	return flipped
}

// piiFieldTypes are hidden from callers without the elevated role.
var piiFieldTypes = map[string]bool{
	"phone":  true,
	"postal": true,
}

// RedactRows strips personally identifying answer values for
// non-admin callers. Credentials embed the phone-derived token, not the
// phone itself, so they stay.
func RedactRows(rows []registrations.Row, isAdmin bool) []registrations.Row {
	if isAdmin {
		return rows
	}
	out := make([]registrations.Row, len(rows))
	for i, row := range rows {
		answers := make([]models.AnswerField, len(row.Group.Answers))
		for j, a := range row.Group.Answers {
			if piiFieldTypes[a.Type] {
				a.Value = ""
			}
			answers[j] = a
		}
		row.Group.Answers = answers
		out[i] = row
	}
	return out
}
