package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"gatepass/db"
	"gatepass/faults"
	"gatepass/i18n"
	"gatepass/models"
	"gatepass/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// POST /api/events/event
func CreateEvent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		StartTime   time.Time `json:"start_time"`
		EndTime     time.Time `json:"end_time"`
		MaxSeats    int       `json:"max_seats"`
		Draft       bool      `json:"draft"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Title is required")
		return
	}
	if req.MaxSeats <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Max seats must be positive")
		return
	}

	now := time.Now()
	event := models.Event{
		EventID:     utils.GenerateID(12),
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		MaxSeats:    req.MaxSeats,
		Draft:       req.Draft,
		OrganizerID: utils.GetUserIDFromRequest(r),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := db.EventsCollection.InsertOne(r.Context(), event); err != nil {
		i18n.RespondFault(w, r, fmt.Errorf("%w: event insert failed: %v", faults.ErrStoreUnavailable, err))
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"success": true, "event": event})
}

// GET /api/events/event/:eventid
func GetEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var event models.Event
	err := db.EventsCollection.FindOne(r.Context(), bson.M{"eventid": ps.ByName("eventid")}).Decode(&event)
	if err == mongo.ErrNoDocuments {
		i18n.RespondFault(w, r, faults.ErrNotFound)
		return
	}
	if err != nil {
		i18n.RespondFault(w, r, fmt.Errorf("%w: event lookup failed: %v", faults.ErrStoreUnavailable, err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, event)
}

// GET /api/events/events
func GetEvents(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := bson.M{"draft": false}
	if utils.IsAdminRequest(r) {
		filter = bson.M{}
	}

	cursor, err := db.EventsCollection.Find(r.Context(), filter,
		options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}}))
	if err != nil {
		i18n.RespondFault(w, r, fmt.Errorf("%w: event listing failed: %v", faults.ErrStoreUnavailable, err))
		return
	}
	defer cursor.Close(r.Context())

	var events []models.Event
	if err := cursor.All(r.Context(), &events); err != nil {
		i18n.RespondFault(w, r, fmt.Errorf("%w: event listing failed: %v", faults.ErrStoreUnavailable, err))
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	utils.RespondWithJSON(w, http.StatusOK, events)
}

// PUT /api/events/event/:eventid
// Seat-count changes apply to the next reservation attempt immediately.
// Lowering max_seats below the occupied count cancels nobody; the
// console shows the overage and leaves resolution to a human.
func EditEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")

	var req struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		StartTime   *time.Time `json:"start_time"`
		EndTime     *time.Time `json:"end_time"`
		MaxSeats    *int       `json:"max_seats"`
		Draft       *bool      `json:"draft"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	set := bson.M{"updated_at": time.Now()}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.StartTime != nil {
		set["start_time"] = *req.StartTime
	}
	if req.EndTime != nil {
		set["end_time"] = *req.EndTime
	}
	if req.MaxSeats != nil {
		if *req.MaxSeats <= 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "Max seats must be positive")
			return
		}
		set["max_seats"] = *req.MaxSeats
	}
	if req.Draft != nil {
		set["draft"] = *req.Draft
	}

	res, err := db.EventsCollection.UpdateOne(r.Context(),
		bson.M{"eventid": eventID}, bson.M{"$set": set})
	if err != nil {
		i18n.RespondFault(w, r, fmt.Errorf("%w: event update failed: %v", faults.ErrStoreUnavailable, err))
		return
	}
	if res.MatchedCount == 0 {
		i18n.RespondFault(w, r, faults.ErrNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

// DELETE /api/events/event/:eventid
func DeleteEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")

	res, err := db.EventsCollection.DeleteOne(r.Context(), bson.M{"eventid": eventID})
	if err != nil {
		i18n.RespondFault(w, r, fmt.Errorf("%w: event delete failed: %v", faults.ErrStoreUnavailable, err))
		return
	}
	if res.DeletedCount == 0 {
		i18n.RespondFault(w, r, faults.ErrNotFound)
		return
	}

	// registrations and counters stay: queue numbers are never reused,
	// and the audit trail outlives the event listing
	if err := logOrphanedOrders(r.Context(), eventID); err != nil {
		log.Printf("orphan check for event %s failed: %v", eventID, err)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

func logOrphanedOrders(ctx context.Context, eventID string) error {
	n, err := db.OrdersCollection.CountDocuments(ctx, bson.M{"eventid": eventID})
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("event %s deleted with %d order(s) retained", eventID, n)
	}
	return nil
}
