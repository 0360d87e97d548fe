package checkin

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gatepass/faults"
	"gatepass/i18n"
	"gatepass/models"
	"gatepass/mq"
	"gatepass/passkit"
	"gatepass/rdx"
	"gatepass/registrations"
	"gatepass/utils"

	"github.com/julienschmidt/httprouter"
)

// DebounceWindow suppresses re-processing when a scanner fires several
// decode events for one physical scan.
const DebounceWindow = 2 * time.Second

var scans = newDebouncer(DebounceWindow)

// POST /api/checkin/scan
// Scan flow: local token verification first, then the attendance write.
// A NotFound on the first lookup gets one refetch before it is reported,
// since the read may have raced a just-created registration.
func HandleScan(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Payload string `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Payload == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if scans.Seen(req.Payload, time.Now()) || !rdx.DedupeScan(r.Context(), req.Payload, DebounceWindow) {
		utils.RespondWithJSON(w, http.StatusOK, models.ScanResult{Status: "duplicate"})
		return
	}

	// only a completed scan counts against the dedupe window; release
	// the cross-instance claim on any failure so a rescan is not read
	// back as a duplicate
	completed := false
	defer func() {
		if !completed {
			rdx.ReleaseScan(r.Context(), req.Payload)
		}
	}()

	p, err := passkit.ParsePayload(req.Payload)
	if err != nil {
		i18n.RespondFault(w, r, err)
		return
	}

	ids := registrations.GroupIdentifiers{EventID: p.EventID, QueueNumber: p.QueueNumber}
	group, err := registrations.FindGroup(r.Context(), ids)
	if errors.Is(err, faults.ErrNotFound) {
		// the store may be stale; refresh once before giving up
		group, err = registrations.FindGroup(r.Context(), ids)
	}
	if err != nil {
		i18n.RespondFault(w, r, err)
		return
	}

	fact := group.Phone()
	if fact == "" {
		fact = group.Name()
	}
	if !passkit.VerifyToken(p, fact) {
		i18n.RespondFault(w, r, fmt.Errorf("%w: queue number %s", faults.ErrTokenMismatch, p.QueueNumber))
		return
	}

	group, err = registrations.MarkAttendance(r.Context(), ids, true)
	if err != nil {
		i18n.RespondFault(w, r, err)
		return
	}

	scans.Record(req.Payload, time.Now())
	completed = true

	mq.Emit(r.Context(), models.CheckinEvent{
		EventID:     p.EventID,
		QueueNumber: p.QueueNumber,
		Attended:    true,
		Source:      "scan",
		At:          time.Now(),
	})

	utils.RespondWithJSON(w, http.StatusOK, models.ScanResult{
		Status:      "checked_in",
		EventID:     p.EventID,
		QueueNumber: p.QueueNumber,
		Group:       group,
	})
}
