package mq

import (
	"context"
	"encoding/json"
	"log"

	"gatepass/models"
	"gatepass/rdx"
)

const checkinChannel = "checkin-events"

// Emit publishes a check-in event to Redis pub/sub. Emission is fire
// and forget: the attendance write has already committed, and the feed
// is presentation-side only.
func Emit(ctx context.Context, event models.CheckinEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Emit] Failed to marshal check-in event: %v", err)
		return
	}

	if err := rdx.Conn.Publish(ctx, checkinChannel, data).Err(); err != nil {
		log.Printf("[Emit] Failed to publish check-in event: %v", err)
	}
}

// StartCheckinWorker consumes the check-in feed and logs each event.
// The polling views do not depend on it; missing an event here only
// costs a log line.
func StartCheckinWorker() {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, checkinChannel)
	ch := sub.Channel()

	log.Println("[CheckinWorker] Listening for check-in events...")

	for msg := range ch {
		var event models.CheckinEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("[CheckinWorker] Failed to parse event: %v", err)
			continue
		}
		log.Printf("[CheckinWorker] event=%s queue=%s attended=%v source=%s",
			event.EventID, event.QueueNumber, event.Attended, event.Source)
	}
}
