package mobilesync

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Wire payloads arrive as map[string]any straight out of JSON decoding, so
// every accessor tolerates the types encoding/json actually produces.

func StringField(raw map[string]any, key string) string {
	switch v := raw[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func IntField(raw map[string]any, key string) int {
	switch v := raw[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return 0
}

func FloatField(raw map[string]any, key string) float64 {
	switch v := raw[key].(type) {
	case float64:
		return v
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return 0
}

func DecimalField(raw map[string]any, key string) decimal.Decimal {
	switch v := raw[key].(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case json.Number:
		if d, err := decimal.NewFromString(v.String()); err == nil {
			return d
		}
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return decimal.Zero
}

// clientTimeLayouts are the formats the mobile clients have shipped over the
// years. RFC3339 is current; the others survive for old app versions.
var clientTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseClientTime normalizes a client timestamp to UTC, falling back when the
// value is absent or unreadable.
func ParseClientTime(value any, fallback time.Time) time.Time {
	s := ""
	switch v := value.(type) {
	case string:
		s = strings.TrimSpace(v)
	case float64:
		// epoch seconds
		if v > 0 {
			return time.Unix(int64(v), 0).UTC()
		}
	case json.Number:
		if n, err := v.Int64(); err == nil && n > 0 {
			return time.Unix(n, 0).UTC()
		}
	case time.Time:
		return v.UTC()
	}
	if s == "" {
		return fallback.UTC()
	}
	for _, layout := range clientTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return fallback.UTC()
}

func TimeField(raw map[string]any, key string, fallback time.Time) time.Time {
	return ParseClientTime(raw[key], fallback)
}

// TimePtrField returns nil when the value is absent rather than defaulting.
func TimePtrField(raw map[string]any, key string) *time.Time {
	zero := time.Time{}
	t := ParseClientTime(raw[key], zero)
	if t.IsZero() {
		return nil
	}
	return &t
}
