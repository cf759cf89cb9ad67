package domain

import (
	"testing"
	"time"
)

func TestValue_EncodeDecode(t *testing.T) {
	jv, err := JSONValue(map[string]int{"n": 1})
	if err != nil {
		t.Fatalf("JSONValue: %v", err)
	}

	cases := []Value{
		BoolValue(true),
		BoolValue(false),
		TextValue("1130431721"),
		TextValue("true"),
		jv,
	}

	for _, v := range cases {
		kind, raw := v.Encode()
		got, err := DecodeValue(kind, raw)
		if err != nil {
			t.Fatalf("DecodeValue(%s, %q): %v", kind, raw, err)
		}
		if got.Kind != v.Kind {
			t.Errorf("Kind mismatch: want %s, got %s", v.Kind, got.Kind)
		}
		if got.Bool != v.Bool || got.Text != v.Text || string(got.JSON) != string(v.JSON) {
			t.Errorf("Value mismatch: want %+v, got %+v", v, got)
		}
	}
}

func TestDecodeValue_TextStaysText(t *testing.T) {
	// A text value spelling "true" must not turn into a flag
	got, err := DecodeValue(KindText, "true")
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != KindText || got.Text != "true" {
		t.Errorf("Expected text 'true', got %+v", got)
	}
}

func TestDecodeValue_Legacy(t *testing.T) {
	got, _ := DecodeValue("", "true")
	if got.Kind != KindBool || !got.Bool {
		t.Errorf("Expected legacy bool true, got %+v", got)
	}

	got, _ = DecodeValue("", "12345")
	if got.Kind != KindText || got.Text != "12345" {
		t.Errorf("Expected legacy text, got %+v", got)
	}
}

func TestDecodeValue_Errors(t *testing.T) {
	if _, err := DecodeValue(KindBool, "maybe"); err == nil {
		t.Error("Expected error for bad bool")
	}
	if _, err := DecodeValue(KindJSON, "{"); err == nil {
		t.Error("Expected error for bad json")
	}
	if _, err := DecodeValue("blob", "x"); err == nil {
		t.Error("Expected error for unknown kind")
	}
}

func TestValue_Truthy(t *testing.T) {
	if !BoolValue(true).Truthy() || BoolValue(false).Truthy() {
		t.Error("Bool truthiness wrong")
	}
	if TextValue("").Truthy() || !TextValue("x").Truthy() {
		t.Error("Text truthiness wrong")
	}
}

func TestEntry_Expired(t *testing.T) {
	now := time.Unix(1_000_000, 0)

	e := Entry{Key: "k"}
	if e.Expired(now) {
		t.Error("Entry without deadline must not expire")
	}

	e.ExpiresAt = ExpiryFor(now, time.Minute)
	if e.Expired(now) {
		t.Error("Entry expired too early")
	}
	if !e.Expired(now.Add(time.Minute)) {
		t.Error("Entry must expire at its deadline")
	}

	if ExpiryFor(now, 0) != nil {
		t.Error("Zero ttl must mean no deadline")
	}
}

func TestExpiryFor_RoundsUp(t *testing.T) {
	now := time.Unix(1_000_000, 900_000_000)

	got := ExpiryFor(now, 10*time.Second)
	if got == nil || got.Before(now.Add(10*time.Second)) {
		t.Fatalf("Expected deadline at or after ttl, got %v", got)
	}
	if got.Unix() != 1_000_011 {
		t.Errorf("Expected 1000011, got %d", got.Unix())
	}

	whole := ExpiryFor(time.Unix(1_000_000, 0), 10*time.Second)
	if whole.Unix() != 1_000_010 {
		t.Errorf("Expected 1000010, got %d", whole.Unix())
	}
}

func TestKeys_Namespaces(t *testing.T) {
	cases := map[string]string{
		ChallengeKey("7"):    "verify-7",
		GrantKey("7"):        "verified-7",
		BlockKey("7"):        "isblocked-7",
		RouteKey(99):         "msg-map-99",
		NotifyCursorKey("7"): "lastmsg-7",
	}
	for got, want := range cases {
		if got != want {
			t.Errorf("Expected %s, got %s", want, got)
		}
	}
}
