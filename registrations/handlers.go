package registrations

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"gatepass/capacity"
	"gatepass/counters"
	"gatepass/i18n"
	"gatepass/models"
	"gatepass/mq"
	"gatepass/rdx"
	"gatepass/utils"

	"github.com/julienschmidt/httprouter"
)

// POST /api/reg/event/:eventid/orders
func CreateOrderHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")

	var req struct {
		Prefix string     `json:"prefix"`
		Groups []NewGroup `json:"groups"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	for _, g := range req.Groups {
		hasName := false
		for _, a := range g.Answers {
			if a.Type == "name" && a.Value != "" {
				hasName = true
			}
		}
		if !hasName {
			utils.RespondWithError(w, http.StatusBadRequest, "Every participant needs a name")
			return
		}
	}
	// Bulk channel is reserved for the admin import path.
	if req.Prefix == BulkPrefix && !utils.IsAdminRequest(r) {
		utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
		return
	}

	order, err := CreateOrder(r.Context(), eventID, req.Prefix, req.Groups)
	if err != nil {
		i18n.RespondFault(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"success": true, "order": order})
}

// POST /api/reg/event/:eventid/attendance
func MarkAttendanceHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req struct {
		QueueNumber string `json:"queuenumber"`
		OrderID     string `json:"orderid"`
		GroupID     string `json:"groupid"`
		Attended    bool   `json:"attended"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ids := GroupIdentifiers{
		EventID:     ps.ByName("eventid"),
		QueueNumber: req.QueueNumber,
		OrderID:     req.OrderID,
		GroupID:     req.GroupID,
	}
	group, err := MarkAttendance(r.Context(), ids, req.Attended)
	if err != nil {
		i18n.RespondFault(w, r, err)
		return
	}

	mq.Emit(r.Context(), models.CheckinEvent{
		EventID:     ids.EventID,
		QueueNumber: group.QueueNumber,
		Attended:    req.Attended,
		Source:      "admin",
		At:          time.Now(),
	})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "group": group})
}

// POST /api/reg/event/:eventid/attendance/bulk
func BulkMarkAttendanceHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")

	var req struct {
		QueueNumbers []string `json:"queuenumbers"`
		Attended     bool     `json:"attended"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.QueueNumbers) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	results := BulkMarkAttendance(r.Context(), eventID, req.QueueNumbers, req.Attended)
	for _, res := range results {
		if res.OK {
			mq.Emit(r.Context(), models.CheckinEvent{
				EventID:     eventID,
				QueueNumber: res.QueueNumber,
				Attended:    req.Attended,
				Source:      "bulk",
				At:          time.Now(),
			})
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "results": results})
}

// POST /api/reg/event/:eventid/cancel
// Participants may cancel their own registration; admins use the same
// endpoint to cancel or restore.
func SetCancelledHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req struct {
		QueueNumber string `json:"queuenumber"`
		OrderID     string `json:"orderid"`
		GroupID     string `json:"groupid"`
		Cancelled   bool   `json:"cancelled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ids := GroupIdentifiers{
		EventID:     ps.ByName("eventid"),
		QueueNumber: req.QueueNumber,
		OrderID:     req.OrderID,
		GroupID:     req.GroupID,
	}
	group, err := SetCancelled(r.Context(), ids, req.Cancelled)
	if err != nil {
		i18n.RespondFault(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "group": group})
}

// DELETE /api/reg/event/:eventid/group/:queuenumber
func DeleteGroupHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")
	queueNumber := ps.ByName("queuenumber")

	if err := DeleteGroup(r.Context(), eventID, queueNumber); err != nil {
		i18n.RespondFault(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

// PATCH /api/reg/order/:orderid/group/:groupid/field/:fieldid
func UpdateFieldHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := UpdateField(r.Context(), ps.ByName("orderid"), ps.ByName("groupid"), ps.ByName("fieldid"), req.Value)
	if err != nil {
		i18n.RespondFault(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

// GET /api/reg/event/:eventid/next-number
// Display-only preview; actual allocation happens inside CreateOrder.
func PeekQueueNumberHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		prefix = DefaultPrefix
	}

	next, err := counters.Peek(r.Context(), ps.ByName("eventid"), prefix)
	if err != nil {
		i18n.RespondFault(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"next": next})
}

// GET /api/reg/event/:eventid/seats
func SeatsLeftHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")

	event, err := capacity.Lookup(r.Context(), eventID)
	if err != nil {
		i18n.RespondFault(w, r, err)
		return
	}

	occupied, cached := rdx.CachedSeatCount(r.Context(), eventID)
	if !cached {
		occupied, err = capacity.Occupied(r.Context(), eventID)
		if err != nil {
			i18n.RespondFault(w, r, err)
			return
		}
		rdx.CacheSeatCount(context.WithoutCancel(r.Context()), eventID, occupied)
	}

	left := event.MaxSeats - occupied
	if left < 0 {
		left = 0
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"max_seats": event.MaxSeats,
		"occupied":  occupied,
		"left":      left,
	})
}
