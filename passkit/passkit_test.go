package passkit

import (
	"errors"
	"strings"
	"testing"

	"gatepass/faults"
)

func TestDeriveTokenShape(t *testing.T) {
	tok := DeriveToken("evt123", "U007", "+6591234567")
	if len(tok) != TokenLength {
		t.Fatalf("token length = %d, want %d", len(tok), TokenLength)
	}
	for _, c := range tok {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Fatalf("token %q contains non-hex char %q", tok, c)
		}
	}
}

func TestDeriveTokenStable(t *testing.T) {
	a := DeriveToken("evt123", "U007", "+6591234567")
	b := DeriveToken("evt123", "U007", "+6591234567")
	if a != b {
		t.Fatalf("token not deterministic: %q vs %q", a, b)
	}
}

func TestVerifyRoundTrip(t *testing.T) {
	eventID, qn, phone := "evt123", "007", "+6591234567"
	tok := DeriveToken(eventID, qn, phone)
	p, err := ParsePayload(EncodePayload(eventID, qn, tok))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !VerifyToken(p, phone) {
		t.Fatal("round-tripped credential failed verification")
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	eventID, qn, phone := "evt123", "007", "+6591234567"
	tok := DeriveToken(eventID, qn, phone)

	cases := []struct {
		name string
		p    Payload
		fact string
	}{
		{"wrong event", Payload{"evt124", qn, tok}, phone},
		{"wrong queue number", Payload{eventID, "008", tok}, phone},
		{"wrong phone", Payload{eventID, qn, tok}, "+6598765432"},
		{"wrong token", Payload{eventID, qn, "0000000000000000"}, phone},
	}
	for _, c := range cases {
		if VerifyToken(c.p, c.fact) {
			t.Errorf("%s: verification should fail", c.name)
		}
	}
}

func TestVerifyRejectsSingleCharChange(t *testing.T) {
	eventID, phone := "evt123", "+6591234567"
	tok := DeriveToken(eventID, "007", phone)
	// flipping any character of the queue number must break verification
	for _, qn := range []string{"107", "017", "008"} {
		if VerifyToken(Payload{eventID, qn, tok}, phone) {
			t.Errorf("queue number %q should not verify against token for 007", qn)
		}
	}
}

func TestParsePayloadMalformed(t *testing.T) {
	bad := []string{
		"",
		"evt123",
		"evt123_007",
		"evt123_007_tok_extra",
		"__",
		"evt123__tok",
	}
	for _, s := range bad {
		if _, err := ParsePayload(s); !errors.Is(err, faults.ErrInvalidFormat) {
			t.Errorf("ParsePayload(%q) = %v, want ErrInvalidFormat", s, err)
		}
	}
}

func TestEncodePayloadLiteralFormat(t *testing.T) {
	got := EncodePayload("evt123", "007", "a1b2c3d4e5f6a7b8")
	if got != "evt123_007_a1b2c3d4e5f6a7b8" {
		t.Fatalf("payload = %q", got)
	}
}

func TestQRCodeDataURI(t *testing.T) {
	uri, err := QRCodeDataURI("evt123_007_a1b2c3d4e5f6a7b8")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Fatalf("unexpected data URI prefix: %.40s", uri)
	}
}
