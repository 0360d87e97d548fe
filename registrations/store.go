package registrations

import (
	"context"
	"fmt"
	"log"
	"time"

	"gatepass/capacity"
	"gatepass/counters"
	"gatepass/db"
	"gatepass/faults"
	"gatepass/models"
	"gatepass/passkit"
	"gatepass/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewGroup is the inbound shape of one participant in a registration
// request.
type NewGroup struct {
	Answers []models.AnswerField `json:"answers"`
}

// CreateOrder registers a whole batch as one logical unit: one capacity
// check for the batch, one contiguous queue-number run, a derived
// credential per group, and a single insert. Any failure along the way
// aborts the entire order; no half-created order is ever persisted.
func CreateOrder(ctx context.Context, eventID, prefix string, incoming []NewGroup) (*models.Order, error) {
	if len(incoming) == 0 {
		return nil, fmt.Errorf("%w: order has no participants", faults.ErrInvalidFormat)
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}

	if err := capacity.Reserve(ctx, eventID, len(incoming)); err != nil {
		return nil, err
	}

	nums, err := counters.Allocate(ctx, eventID, prefix, len(incoming))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	groups := make([]models.ParticipantGroup, 0, len(incoming))
	for i, in := range incoming {
		g := models.ParticipantGroup{
			GroupID:     utils.GenerateID(12),
			QueueNumber: nums[i],
			Answers:     in.Answers,
			LastUpdated: now,
		}
		fact := g.Phone()
		if fact == "" {
			fact = g.Name()
		}
		token := passkit.DeriveToken(eventID, g.QueueNumber, fact)
		g.Credential = passkit.EncodePayload(eventID, g.QueueNumber, token)
		g.QRCode, err = passkit.QRCodeDataURI(g.Credential)
		if err != nil {
			return nil, fmt.Errorf("render credential for %s: %w", g.QueueNumber, err)
		}
		groups = append(groups, g)
	}

	order := &models.Order{
		OrderID:   utils.GetUUID(),
		EventID:   eventID,
		Groups:    groups,
		CreatedAt: now,
	}

	if _, err := db.OrdersCollection.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// The allocator should make this impossible. Hitting it
			// means an allocator bug or somebody bypassed it.
			log.Printf("DUPLICATE QUEUE NUMBER on event %s, run %v: %v", eventID, nums, err)
			return nil, fmt.Errorf("%w: event %s", faults.ErrDuplicateQueueNumber, eventID)
		}
		return nil, fmt.Errorf("%w: order insert failed: %v", faults.ErrStoreUnavailable, err)
	}

	return order, nil
}

type groupMatch struct {
	Order models.Order
	Index int
}

func (m *groupMatch) group() models.ParticipantGroup {
	return m.Order.Groups[m.Index]
}

func findByQueueNumber(ctx context.Context, eventID, queueNumber string) (*groupMatch, error) {
	var order models.Order
	err := db.OrdersCollection.FindOne(ctx, bson.M{
		"eventid":            eventID,
		"groups.queuenumber": queueNumber,
	}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("%w: queue number %s in event %s", faults.ErrNotFound, queueNumber, eventID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: lookup failed: %v", faults.ErrStoreUnavailable, err)
	}
	for i, g := range order.Groups {
		if g.QueueNumber == queueNumber {
			return &groupMatch{Order: order, Index: i}, nil
		}
	}
	return nil, fmt.Errorf("%w: queue number %s in event %s", faults.ErrNotFound, queueNumber, eventID)
}

func findByGroupID(ctx context.Context, orderID, groupID string) (*groupMatch, error) {
	var order models.Order
	err := db.OrdersCollection.FindOne(ctx, bson.M{
		"orderid":        orderID,
		"groups.groupid": groupID,
	}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("%w: group %s in order %s", faults.ErrNotFound, groupID, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: lookup failed: %v", faults.ErrStoreUnavailable, err)
	}
	for i, g := range order.Groups {
		if g.GroupID == groupID {
			return &groupMatch{Order: order, Index: i}, nil
		}
	}
	return nil, fmt.Errorf("%w: group %s in order %s", faults.ErrNotFound, groupID, orderID)
}

// resolve picks the match per the identifier preference and
// cross-validates when the caller supplied both keys.
func resolve(ctx context.Context, ids GroupIdentifiers) (*groupMatch, error) {
	if ids.PreferQueueNumber() {
		m, err := findByQueueNumber(ctx, ids.EventID, ids.QueueNumber)
		if err != nil {
			return nil, err
		}
		if ids.GroupID != "" && m.group().GroupID != ids.GroupID {
			log.Printf("identifier mismatch: queue number %s resolved to group %s, caller claimed %s (queue number wins)",
				ids.QueueNumber, m.group().GroupID, ids.GroupID)
		}
		return m, nil
	}
	if ids.HasFallback() {
		return findByGroupID(ctx, ids.OrderID, ids.GroupID)
	}
	return nil, fmt.Errorf("%w: no usable identifier", faults.ErrInvalidFormat)
}

// FindGroup returns the current state of one group.
func FindGroup(ctx context.Context, ids GroupIdentifiers) (*models.ParticipantGroup, error) {
	m, err := resolve(ctx, ids)
	if err != nil {
		return nil, err
	}
	g := m.group()
	return &g, nil
}

// MarkAttendance flips the attendance flag. Marking an already-attended
// group attended again is a no-op success; marking a cancelled group
// present is a surfaced conflict. Writes are last-write-wins per group:
// there is no version check, and two concurrent writers can overwrite
// each other (accepted for this human-paced workflow).
func MarkAttendance(ctx context.Context, ids GroupIdentifiers, attended bool) (*models.ParticipantGroup, error) {
	m, err := resolve(ctx, ids)
	if err != nil {
		return nil, err
	}
	g := m.group()

	if err := CanMarkAttendance(g, attended); err != nil {
		return nil, err
	}
	if g.Attendance == attended {
		return &g, nil
	}

	now := time.Now()
	_, err = db.OrdersCollection.UpdateOne(ctx,
		bson.M{"orderid": m.Order.OrderID, "groups.groupid": g.GroupID},
		bson.M{"$set": bson.M{
			"groups.$.attendance":  attended,
			"groups.$.lastupdated": now,
		}},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: attendance update failed: %v", faults.ErrStoreUnavailable, err)
	}

	g.Attendance = attended
	g.LastUpdated = now
	return &g, nil
}

// SetCancelled cancels or restores a group. Cancelling forces
// attendance to false in the same write so the invariant holds even if
// the process dies between statements.
func SetCancelled(ctx context.Context, ids GroupIdentifiers, cancelled bool) (*models.ParticipantGroup, error) {
	m, err := resolve(ctx, ids)
	if err != nil {
		return nil, err
	}
	g := ApplyCancel(m.group(), cancelled)
	g.LastUpdated = time.Now()

	set := bson.M{
		"groups.$.cancelled":   g.Cancelled,
		"groups.$.lastupdated": g.LastUpdated,
	}
	if cancelled {
		set["groups.$.attendance"] = false
	}

	_, err = db.OrdersCollection.UpdateOne(ctx,
		bson.M{"orderid": m.Order.OrderID, "groups.groupid": g.GroupID},
		bson.M{"$set": set},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: cancel update failed: %v", faults.ErrStoreUnavailable, err)
	}
	return &g, nil
}

// DeleteGroup removes exactly one group; when it was the order's last
// group the order goes too. Irreversible, and the queue number is never
// reissued.
func DeleteGroup(ctx context.Context, eventID, queueNumber string) error {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var order models.Order
	err := db.OrdersCollection.FindOneAndUpdate(ctx,
		bson.M{"eventid": eventID, "groups.queuenumber": queueNumber},
		bson.M{"$pull": bson.M{"groups": bson.M{"queuenumber": queueNumber}}},
		opts,
	).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return fmt.Errorf("%w: queue number %s in event %s", faults.ErrNotFound, queueNumber, eventID)
	}
	if err != nil {
		return fmt.Errorf("%w: delete failed: %v", faults.ErrStoreUnavailable, err)
	}

	if len(order.Groups) == 0 {
		if _, err := db.OrdersCollection.DeleteOne(ctx, bson.M{"orderid": order.OrderID}); err != nil {
			log.Printf("failed to remove emptied order %s: %v", order.OrderID, err)
		}
	}
	return nil
}

// UpdateField corrects a single answer field in place. Queue number,
// credential, and attendance state are untouched. The group and field
// are resolved before the write: an arrayFilters update against a bare
// orderid filter matches the order document even when no array element
// matches, which would turn a bad groupID or fieldID into a silent
// no-op success.
func UpdateField(ctx context.Context, orderID, groupID, fieldID, value string) error {
	m, err := findByGroupID(ctx, orderID, groupID)
	if err != nil {
		return err
	}
	if !hasField(m.group(), fieldID) {
		return fmt.Errorf("%w: field %s in group %s", faults.ErrNotFound, fieldID, groupID)
	}

	update := bson.M{"$set": bson.M{
		"groups.$[g].answers.$[a].value": value,
		"groups.$[g].lastupdated":       time.Now(),
	}}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"g.groupid": groupID},
			bson.M{"a.fieldid": fieldID},
		},
	})

	res, err := db.OrdersCollection.UpdateOne(ctx,
		bson.M{"orderid": orderID, "groups.groupid": groupID}, update, opts)
	if err != nil {
		return fmt.Errorf("%w: field update failed: %v", faults.ErrStoreUnavailable, err)
	}
	if res.MatchedCount == 0 {
		// the group vanished between resolve and write
		return fmt.Errorf("%w: group %s in order %s", faults.ErrNotFound, groupID, orderID)
	}
	return nil
}

// ListByEvent returns every group registered for the event, sorted by
// queue number numerically. Pagination is left to the UI layer.
func ListByEvent(ctx context.Context, eventID string) ([]Row, error) {
	cursor, err := db.OrdersCollection.Find(ctx, bson.M{"eventid": eventID})
	if err != nil {
		return nil, fmt.Errorf("%w: event listing failed: %v", faults.ErrStoreUnavailable, err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("%w: event listing failed: %v", faults.ErrStoreUnavailable, err)
	}

	rows := []Row{}
	for _, order := range orders {
		for _, g := range order.Groups {
			rows = append(rows, Row{OrderID: order.OrderID, EventID: order.EventID, Group: g})
		}
	}
	SortRows(rows)
	return rows, nil
}

// ListByPhone is the participant self-service lookup: every group,
// across events, whose phone answer matches.
func ListByPhone(ctx context.Context, phone string) ([]Row, error) {
	filter := bson.M{"groups": bson.M{"$elemMatch": bson.M{
		"answers": bson.M{"$elemMatch": bson.M{"type": "phone", "value": phone}},
	}}}

	cursor, err := db.OrdersCollection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: phone lookup failed: %v", faults.ErrStoreUnavailable, err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("%w: phone lookup failed: %v", faults.ErrStoreUnavailable, err)
	}

	rows := []Row{}
	for _, order := range orders {
		for _, g := range order.Groups {
			if g.Phone() == phone {
				rows = append(rows, Row{OrderID: order.OrderID, EventID: order.EventID, Group: g})
			}
		}
	}
	SortRows(rows)
	return rows, nil
}

// BulkMarkAttendance processes each queue number independently and
// reports a per-item result list. One cancelled group does not abort
// the rest of the batch.
func BulkMarkAttendance(ctx context.Context, eventID string, queueNumbers []string, attended bool) []models.BatchItemResult {
	results := make([]models.BatchItemResult, 0, len(queueNumbers))
	for _, qn := range queueNumbers {
		ids := GroupIdentifiers{EventID: eventID, QueueNumber: qn}
		if _, err := MarkAttendance(ctx, ids, attended); err != nil {
			results = append(results, models.BatchItemResult{QueueNumber: qn, OK: false, Fault: faultID(err)})
			continue
		}
		results = append(results, models.BatchItemResult{QueueNumber: qn, OK: true})
	}
	return results
}

func faultID(err error) string {
	return faults.ID(err)
}
