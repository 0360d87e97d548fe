// Package passkit derives and verifies the scannable check-in
// credential. The token is an unsalted, unkeyed truncated SHA-256 over
// the participant's identity fact, queue number, and event id. That is
// a deliberate limitation, not an oversight: there is no server secret
// and no signature, so anyone who knows a participant's phone number
// and queue number can recompute a valid token. It deters casual queue
// number guessing and deduplicates scans; it is not a security
// boundary.
package passkit

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"gatepass/faults"

	"github.com/skip2/go-qrcode"
)

// TokenLength is the hex-character length of the truncated digest.
// 16 is plenty for a UX dedupe aid; collisions are not a security
// concern here.
const TokenLength = 16

// DeriveToken computes the check-in token for one registration. It is
// a pure function of its inputs and must never be recomputed with a
// different identity fact for the same (event, queue number) pair: the
// printed credential has to verify for the life of the registration.
func DeriveToken(eventID, queueNumber, identityFact string) string {
	sum := sha256.Sum256([]byte(identityFact + "_" + queueNumber + "_" + eventID))
	return hex.EncodeToString(sum[:])[:TokenLength]
}

// Payload is the decoded form of a scanned credential string.
type Payload struct {
	EventID     string
	QueueNumber string
	Token       string
}

// EncodePayload renders the literal credential string that gets encoded
// into the QR image: eventId_queueNumber_token.
func EncodePayload(eventID, queueNumber, token string) string {
	return eventID + "_" + queueNumber + "_" + token
}

// ParsePayload splits a scanned string into its three segments.
// Anything with the wrong segment count is rejected as malformed.
func ParsePayload(s string) (Payload, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 3 {
		return Payload{}, fmt.Errorf("%w: expected 3 segments, got %d", faults.ErrInvalidFormat, len(parts))
	}
	if parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Payload{}, fmt.Errorf("%w: empty segment", faults.ErrInvalidFormat)
	}
	return Payload{EventID: parts[0], QueueNumber: parts[1], Token: parts[2]}, nil
}

// VerifyToken recomputes the token from the identity fact stored on the
// candidate registration and compares it against the scanned one. A
// scanner can run this locally, without a database round trip, before
// trusting the scanned queue number.
func VerifyToken(p Payload, identityFact string) bool {
	return DeriveToken(p.EventID, p.QueueNumber, identityFact) == p.Token
}

// QRCodePNG renders the credential string as a PNG image.
func QRCodePNG(payload string) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.Medium, 256)
}

// QRCodeDataURI renders the credential as an inline data URI for
// direct embedding in the participant page.
func QRCodeDataURI(payload string) (string, error) {
	png, err := QRCodePNG(payload)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
