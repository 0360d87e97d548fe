package models

import "time"

type Event struct {
	EventID     string    `json:"eventid" bson:"eventid"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	StartTime   time.Time `json:"start_time" bson:"start_time"`
	EndTime     time.Time `json:"end_time" bson:"end_time"`
	MaxSeats    int       `json:"max_seats" bson:"max_seats"`
	Draft       bool      `json:"draft" bson:"draft"`
	OrganizerID string    `json:"organizerid" bson:"organizerid"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}
