package counters

import (
	"context"
	"fmt"

	"gatepass/db"
	"gatepass/faults"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Counter is the per-(event, prefix) allocation row. Last only ever
// grows; numbers are never reissued, even after cancellation or
// deletion, so a printed QR credential stays unambiguous forever.
type Counter struct {
	EventID string `bson:"eventid"`
	Prefix  string `bson:"prefix"`
	Last    int    `bson:"last"`
}

// NumberWidth is the zero-padding applied to queue numbers ("U007").
const NumberWidth = 3

// Format renders one queue number with its channel prefix.
func Format(prefix string, n int) string {
	return fmt.Sprintf("%s%0*d", prefix, NumberWidth, n)
}

// FormatRange renders count consecutive numbers starting at start.
func FormatRange(prefix string, start, count int) []string {
	nums := make([]string, 0, count)
	for i := 0; i < count; i++ {
		nums = append(nums, Format(prefix, start+i))
	}
	return nums
}

// Allocate reserves count consecutive queue numbers for the event and
// prefix in one atomic upsert-and-increment. Either the whole run is
// issued or nothing is; the caller must not create participant groups
// from a partial allocation.
func Allocate(ctx context.Context, eventID, prefix string, count int) ([]string, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: allocation count must be positive", faults.ErrInvalidFormat)
	}

	filter := bson.M{"eventid": eventID, "prefix": prefix}
	update := bson.M{"$inc": bson.M{"last": count}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var c Counter
	err := db.CountersCollection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&c)
	if retryAllocate(err) {
		err = db.CountersCollection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&c)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: counter increment failed: %v", faults.ErrStoreUnavailable, err)
	}

	return FormatRange(prefix, c.Last-count+1, count), nil
}

// retryAllocate reports whether the increment hit the first-allocation
// upsert race: two allocators both miss the filter, one insert wins the
// unique (eventid, prefix) index, and the loser gets a duplicate-key
// error against a counter row that now exists. A single retry
// increments that row normally.
func retryAllocate(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// Peek returns the next number that would be issued, for UI display
// only. It does not allocate and must never be used as one.
func Peek(ctx context.Context, eventID, prefix string) (string, error) {
	var c Counter
	err := db.CountersCollection.FindOne(ctx, bson.M{"eventid": eventID, "prefix": prefix}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return Format(prefix, 1), nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: counter read failed: %v", faults.ErrStoreUnavailable, err)
	}
	return Format(prefix, c.Last+1), nil
}
