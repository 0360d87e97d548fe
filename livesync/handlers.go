package livesync

import (
	"net/http"
	"time"

	"gatepass/i18n"
	"gatepass/registrations"
	"gatepass/utils"

	"github.com/julienschmidt/httprouter"
)

// GET /api/sync/event/:eventid
// Admin console snapshot. PII stays visible only for elevated callers.
// The scanning=true query hint tells the client which poll rate to use.
func EventSnapshotHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rows, err := registrations.ListByEvent(r.Context(), ps.ByName("eventid"))
	if err != nil {
		i18n.RespondFault(w, r, err)
		return
	}

	interval := AdminIdleInterval
	if r.URL.Query().Get("scanning") == "true" {
		interval = AdminScanInterval
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"rows":          RedactRows(rows, utils.IsAdminRequest(r)),
		"server_time":   time.Now(),
		"poll_interval": interval.Seconds(),
	})
}

// GET /api/sync/phone/:phone
// Participant self-service snapshot: their own registrations across
// events, QR credential included.
func PhoneSnapshotHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rows, err := registrations.ListByPhone(r.Context(), ps.ByName("phone"))
	if err != nil {
		i18n.RespondFault(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"rows":          rows,
		"server_time":   time.Now(),
		"poll_interval": ParticipantInterval.Seconds(),
	})
}
