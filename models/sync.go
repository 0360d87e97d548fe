package models

import "time"

// CheckinEvent is the message published to Redis when a group's
// attendance flips, consumed by the check-in worker.
type CheckinEvent struct {
	EventID     string    `json:"eventid"`
	QueueNumber string    `json:"queuenumber"`
	Attended    bool      `json:"attended"`
	Source      string    `json:"source"` // "scan" | "admin" | "bulk"
	At          time.Time `json:"at"`
}

// BatchItemResult is the per-item outcome of a bulk mutation. Batch
// operations keep going past individual conflicts and report each item.
type BatchItemResult struct {
	QueueNumber string `json:"queuenumber"`
	OK          bool   `json:"ok"`
	Fault       string `json:"fault,omitempty"`
}

type ScanResult struct {
	Status      string            `json:"status"` // "checked_in" | "duplicate"
	EventID     string            `json:"eventid"`
	QueueNumber string            `json:"queuenumber"`
	Group       *ParticipantGroup `json:"group,omitempty"`
}
