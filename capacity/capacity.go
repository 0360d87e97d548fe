package capacity

import (
	"context"
	"fmt"

	"gatepass/db"
	"gatepass/faults"
	"gatepass/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CanReserve is the seat-limit decision: requested more seats than
// remain and the reservation is refused. Cancelled groups do not count
// toward occupancy.
func CanReserve(occupied, requested, maxSeats int) bool {
	return occupied+requested <= maxSeats
}

// Occupied counts the uncancelled participant groups currently stored
// for the event.
func Occupied(ctx context.Context, eventID string) (int, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "eventid", Value: eventID}}}},
		bson.D{{Key: "$unwind", Value: "$groups"}},
		bson.D{{Key: "$match", Value: bson.D{{Key: "groups.cancelled", Value: false}}}},
		bson.D{{Key: "$count", Value: "occupied"}},
	}

	cursor, err := db.OrdersCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("%w: occupancy count failed: %v", faults.ErrStoreUnavailable, err)
	}
	defer cursor.Close(ctx)

	var result []struct {
		Occupied int `bson:"occupied"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return 0, fmt.Errorf("%w: occupancy count failed: %v", faults.ErrStoreUnavailable, err)
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].Occupied, nil
}

// Reserve checks that the event can still take requested seats. This is
// a best-effort check-then-create guard, not a transaction: two racing
// registrations can both pass it. The unique (eventid, queuenumber)
// index on orders is the real backstop against silent overbooking.
//
// Seat-count edits made by an admin apply to the next reservation
// attempt; nothing is re-validated retroactively, so an event can end
// up with more occupants than max_seats after a downward edit.
func Reserve(ctx context.Context, eventID string, requested int) error {
	event, err := Lookup(ctx, eventID)
	if err != nil {
		return err
	}
	if event.Draft {
		return fmt.Errorf("%w: event is not open for registration", faults.ErrNotFound)
	}

	occupied, err := Occupied(ctx, eventID)
	if err != nil {
		return err
	}
	if !CanReserve(occupied, requested, event.MaxSeats) {
		return fmt.Errorf("%w: %d occupied, %d requested, %d max",
			faults.ErrCapacityExceeded, occupied, requested, event.MaxSeats)
	}
	return nil
}

// Lookup fetches the event or reports NotFound.
func Lookup(ctx context.Context, eventID string) (*models.Event, error) {
	var event models.Event
	err := db.EventsCollection.FindOne(ctx, bson.M{"eventid": eventID}).Decode(&event)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("%w: event %s", faults.ErrNotFound, eventID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: event lookup failed: %v", faults.ErrStoreUnavailable, err)
	}
	return &event, nil
}
