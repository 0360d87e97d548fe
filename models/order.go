package models

import "time"

// AnswerField is one answered registration-form question. The set of
// fields varies per event, so answers are kept as label/type/value
// triples instead of fixed struct fields.
type AnswerField struct {
	FieldID string `json:"fieldid" bson:"fieldid"`
	Label   string `json:"label" bson:"label"`
	Type    string `json:"type" bson:"type"`
	Value   string `json:"value" bson:"value"`
}

// ParticipantGroup is one registered person inside an order and the
// unit of check-in. Invariant: Cancelled == true implies Attendance == false.
type ParticipantGroup struct {
	GroupID     string        `json:"groupid" bson:"groupid"`
	QueueNumber string        `json:"queuenumber" bson:"queuenumber"`
	Answers     []AnswerField `json:"answers" bson:"answers"`
	Attendance  bool          `json:"attendance" bson:"attendance"`
	Cancelled   bool          `json:"cancelled" bson:"cancelled"`
	Credential  string        `json:"credential" bson:"credential"`
	QRCode      string        `json:"qrcode" bson:"qrcode"`
	LastUpdated time.Time     `json:"lastupdated" bson:"lastupdated"`
}

type Order struct {
	OrderID   string             `json:"orderid" bson:"orderid"`
	EventID   string             `json:"eventid" bson:"eventid"`
	Groups    []ParticipantGroup `json:"groups" bson:"groups"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// Answer returns the value of the first answer with the given field type,
// falling back to a case-matching label.
func (g ParticipantGroup) Answer(fieldType string) string {
	for _, a := range g.Answers {
		if a.Type == fieldType {
			return a.Value
		}
	}
	for _, a := range g.Answers {
		if a.Label == fieldType {
			return a.Value
		}
	}
	return ""
}

func (g ParticipantGroup) Name() string {
	return g.Answer("name")
}

// Phone is the durable identity fact the check-in token is bound to.
func (g ParticipantGroup) Phone() string {
	return g.Answer("phone")
}
