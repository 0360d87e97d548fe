package printpass

import (
	"bytes"
	"fmt"
	"net/http"

	"gatepass/capacity"
	"gatepass/i18n"
	"gatepass/passkit"
	"gatepass/registrations"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
)

// GET /api/pass/:eventid/:queuenumber
// Renders a printable A4 pass with the participant's QR credential.
// The QR is re-encoded from the stored credential string, never
// re-derived, so a pass printed months later still carries the exact
// token issued at registration.
func PrintPass(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")
	queueNumber := ps.ByName("queuenumber")

	event, err := capacity.Lookup(r.Context(), eventID)
	if err != nil {
		i18n.RespondFault(w, r, err)
		return
	}

	group, err := registrations.FindGroup(r.Context(), registrations.GroupIdentifiers{
		EventID:     eventID,
		QueueNumber: queueNumber,
	})
	if err != nil {
		i18n.RespondFault(w, r, err)
		return
	}

	qrPNG, err := passkit.QRCodePNG(group.Credential)
	if err != nil {
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Event Pass")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Event: %s", event.Title))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Name: %s", group.Name()))
	pdf.Ln(8)
	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(0, 12, fmt.Sprintf("Queue Number: %s", group.QueueNumber))
	pdf.Ln(14)
	if group.Cancelled {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 10, "CANCELLED")
		pdf.Ln(10)
	}

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 20, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=pass-"+group.QueueNumber+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
