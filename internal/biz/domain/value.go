package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ValueKind tags how a stored value was written
type ValueKind string

const (
	KindBool ValueKind = "bool"
	KindText ValueKind = "text"
	KindJSON ValueKind = "json"
)

// Value is a tagged store value. The kind is chosen at write time and
// persisted next to the raw text, so reads never have to guess.
type Value struct {
	Kind ValueKind
	Bool bool
	Text string
	JSON json.RawMessage
}

// BoolValue creates a boolean value
func BoolValue(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

// TextValue creates a text value
func TextValue(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// JSONValue marshals v into a structured value
func JSONValue(v any) (Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Value{}, fmt.Errorf("marshal json value: %w", err)
	}
	return Value{Kind: KindJSON, JSON: raw}, nil
}

// Encode returns the persisted (kind, raw text) pair
func (v Value) Encode() (ValueKind, string) {
	switch v.Kind {
	case KindBool:
		return KindBool, strconv.FormatBool(v.Bool)
	case KindJSON:
		return KindJSON, string(v.JSON)
	default:
		return KindText, v.Text
	}
}

// DecodeValue rebuilds a value from its persisted form. Rows written
// before the kind column existed carry an empty kind and are decoded
// as bool when they spell one, text otherwise.
func DecodeValue(kind ValueKind, raw string) (Value, error) {
	switch kind {
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return Value{}, fmt.Errorf("decode bool value %q: %w", raw, err)
		}
		return BoolValue(b), nil
	case KindJSON:
		if !json.Valid([]byte(raw)) {
			return Value{}, fmt.Errorf("decode json value: invalid document")
		}
		return Value{Kind: KindJSON, JSON: json.RawMessage(raw)}, nil
	case KindText:
		return TextValue(raw), nil
	case "":
		if raw == "true" || raw == "false" {
			return BoolValue(raw == "true"), nil
		}
		return TextValue(raw), nil
	default:
		return Value{}, fmt.Errorf("unknown value kind %q", kind)
	}
}

// Truthy reports whether the value counts as a set flag
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindText:
		return v.Text != ""
	case KindJSON:
		s := string(v.JSON)
		return s != "" && s != "null" && s != "false" && s != "0" && s != `""`
	}
	return false
}

// Unmarshal decodes a JSON value into dst
func (v Value) Unmarshal(dst any) error {
	if v.Kind != KindJSON {
		return fmt.Errorf("value kind is %s, not json", v.Kind)
	}
	return json.Unmarshal(v.JSON, dst)
}

// Entry is a single TTL store record
type Entry struct {
	Key       string
	Value     Value
	ExpiresAt *time.Time
}

// Expired reports whether the entry is past its deadline at now
func (e Entry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && !e.ExpiresAt.After(now)
}

// ExpiryFor returns the deadline for a ttl, nil when ttl is not positive
func ExpiryFor(now time.Time, ttl time.Duration) *time.Time {
	if ttl <= 0 {
		return nil
	}
	// Stored at second resolution, rounded up so an entry never expires early
	t := now.Add(ttl)
	if t.Truncate(time.Second).Before(t) {
		t = t.Add(time.Second)
	}
	t = t.Truncate(time.Second)
	return &t
}
