package registrations

import (
	"fmt"
	"sort"
	"strconv"

	"gatepass/faults"
	"gatepass/models"
)

// Allocation channel prefixes. Normal self-service registrations and
// bulk-uploaded ones draw from separate counters so their queue numbers
// never collide.
const (
	DefaultPrefix = "U"
	BulkPrefix    = "B"
)

// CanMarkAttendance enforces the one hard transition rule: a cancelled
// registration cannot be marked present. The caller has to uncancel
// first. Clearing attendance on a cancelled group is allowed (it is a
// no-op toward the invariant).
func CanMarkAttendance(g models.ParticipantGroup, attended bool) error {
	if attended && g.Cancelled {
		return fmt.Errorf("%w: queue number %s", faults.ErrCancelledConflict, g.QueueNumber)
	}
	return nil
}

// ApplyCancel computes the group's next state for a cancel/uncancel.
// Cancelling always clears attendance in the same transition so the
// cancelled⇒not-attended invariant can never be observed broken.
func ApplyCancel(g models.ParticipantGroup, cancelled bool) models.ParticipantGroup {
	g.Cancelled = cancelled
	if cancelled {
		g.Attendance = false
	}
	return g
}

// GroupIdentifiers carries every identifier a caller may know for a
// group. (eventID, queueNumber) is the most reliable key and wins when
// present; (orderID, groupID) is the fallback. When both are supplied
// they are cross-validated, and a mismatch is logged but does not block
// the operation.
type GroupIdentifiers struct {
	EventID     string `json:"eventid"`
	QueueNumber string `json:"queuenumber"`
	OrderID     string `json:"orderid"`
	GroupID     string `json:"groupid"`
}

func (ids GroupIdentifiers) PreferQueueNumber() bool {
	return ids.EventID != "" && ids.QueueNumber != ""
}

func (ids GroupIdentifiers) HasFallback() bool {
	return ids.OrderID != "" && ids.GroupID != ""
}

// Row is one participant line as the read paths return it: the group
// plus enough order context for the console to address it.
type Row struct {
	OrderID string                  `json:"orderid"`
	EventID string                  `json:"eventid"`
	Group   models.ParticipantGroup `json:"group"`
}

// hasField reports whether the group carries an answer with the given
// field id. Field edits must refuse unknown fields instead of silently
// succeeding.
func hasField(g models.ParticipantGroup, fieldID string) bool {
	for _, a := range g.Answers {
		if a.FieldID == fieldID {
			return true
		}
	}
	return false
}

// queueNumberValue extracts the numeric part of a queue number ("U007"
// → 7) for sorting. Numbers that fail to parse sort last.
func queueNumberValue(qn string) int {
	start := 0
	for start < len(qn) && (qn[start] < '0' || qn[start] > '9') {
		start++
	}
	n, err := strconv.Atoi(qn[start:])
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}

// SortRows orders rows by queue number numerically ("U010" after
// "U009", not between "U001" and "U002") so both consoles render a
// stable, human-sensible listing.
func SortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		vi, vj := queueNumberValue(rows[i].Group.QueueNumber), queueNumberValue(rows[j].Group.QueueNumber)
		if vi != vj {
			return vi < vj
		}
		return rows[i].Group.QueueNumber < rows[j].Group.QueueNumber
	})
}
