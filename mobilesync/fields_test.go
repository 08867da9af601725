package mobilesync

import (
	"encoding/json"
	"testing"
	"time"
)

func TestStringField_ToleratesWireTypes(t *testing.T) {
	raw := map[string]any{
		"s":     "  hello  ",
		"n":     float64(42),
		"jn":    json.Number("7"),
		"bools": true,
	}
	if got := StringField(raw, "s"); got != "hello" {
		t.Fatalf("string: got %q", got)
	}
	if got := StringField(raw, "n"); got != "42" {
		t.Fatalf("float: got %q", got)
	}
	if got := StringField(raw, "jn"); got != "7" {
		t.Fatalf("json.Number: got %q", got)
	}
	if got := StringField(raw, "bools"); got != "" {
		t.Fatalf("bool should read empty, got %q", got)
	}
	if got := StringField(raw, "missing"); got != "" {
		t.Fatalf("missing key should read empty, got %q", got)
	}
}

func TestIntField_ToleratesWireTypes(t *testing.T) {
	raw := map[string]any{
		"f":   float64(12),
		"s":   " 34 ",
		"jn":  json.Number("56"),
		"bad": "not a number",
	}
	for key, expected := range map[string]int{"f": 12, "s": 34, "jn": 56, "bad": 0, "missing": 0} {
		if got := IntField(raw, key); got != expected {
			t.Fatalf("IntField(%q) = %d, expected %d", key, got, expected)
		}
	}
}

func TestDecimalField_ParsesStringsAndNumbers(t *testing.T) {
	raw := map[string]any{
		"s": "12.50",
		"f": float64(3.25),
	}
	if got := DecimalField(raw, "s").String(); got != "12.5" {
		t.Fatalf("string decimal: got %s", got)
	}
	if got := DecimalField(raw, "f").String(); got != "3.25" {
		t.Fatalf("float decimal: got %s", got)
	}
	if !DecimalField(raw, "missing").IsZero() {
		t.Fatalf("missing decimal should be zero")
	}
}

func TestParseClientTime_LayoutsAndFallback(t *testing.T) {
	fallback := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	rfc := ParseClientTime("2025-06-01T10:30:00+06:30", fallback)
	if !rfc.Equal(time.Date(2025, 6, 1, 4, 0, 0, 0, time.UTC)) {
		t.Fatalf("rfc3339: got %v", rfc)
	}
	if rfc.Location() != time.UTC {
		t.Fatalf("result should be normalized to UTC, got %v", rfc.Location())
	}

	legacy := ParseClientTime("2025-06-01 10:30:00", fallback)
	if !legacy.Equal(time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)) {
		t.Fatalf("legacy layout: got %v", legacy)
	}

	dateOnly := ParseClientTime("2025-06-01", fallback)
	if !dateOnly.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date only: got %v", dateOnly)
	}

	epoch := ParseClientTime(float64(1748772000), fallback)
	if !epoch.Equal(time.Unix(1748772000, 0).UTC()) {
		t.Fatalf("epoch: got %v", epoch)
	}

	if got := ParseClientTime("garbage", fallback); !got.Equal(fallback) {
		t.Fatalf("unreadable value should fall back, got %v", got)
	}
	if got := ParseClientTime(nil, fallback); !got.Equal(fallback) {
		t.Fatalf("absent value should fall back, got %v", got)
	}
}

func TestDecodeRecord_Defaults(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	rec := DecodeRecord(map[string]any{"clientId": "abc-1"}, now)
	if rec.ClientId != "abc-1" {
		t.Fatalf("clientId: got %q", rec.ClientId)
	}
	if rec.Action != ActionCreate {
		t.Fatalf("missing action should default to create, got %q", rec.Action)
	}
	if !rec.ClientCreatedAt.Equal(now) || !rec.ClientUpdatedAt.Equal(now) {
		t.Fatalf("missing timestamps should default to server now, got %v / %v",
			rec.ClientCreatedAt, rec.ClientUpdatedAt)
	}

	rec = DecodeRecord(map[string]any{
		"clientId":        "abc-2",
		"syncAction":      "update",
		"clientCreatedAt": "2025-05-01T00:00:00Z",
	}, now)
	if rec.Action != ActionUpdate {
		t.Fatalf("action: got %q", rec.Action)
	}
	if !rec.ClientUpdatedAt.Equal(rec.ClientCreatedAt) {
		t.Fatalf("missing updatedAt should default to createdAt")
	}
}
