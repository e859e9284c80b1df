package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Raw is a loosely-typed backend payload. Field names vary across API
// generations, so every lookup walks a fallback chain.
type Raw map[string]any

func (r Raw) stringField(keys ...string) string {
	for _, key := range keys {
		switch value := r[key].(type) {
		case string:
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		case float64:
			// Some generations of the API sent numeric ids.
			if value == math.Trunc(value) {
				return strconv.FormatInt(int64(value), 10)
			}
			return strconv.FormatFloat(value, 'f', -1, 64)
		case json.Number:
			return value.String()
		}
	}
	return ""
}

// numberField coerces the first present value to a finite float64, falling
// back to 0 for anything malformed or missing. NaN and infinities count as
// malformed.
func (r Raw) numberField(keys ...string) float64 {
	for _, key := range keys {
		value, ok := r[key]
		if !ok || value == nil {
			continue
		}
		if parsed, ok := coerceNumber(value); ok {
			return parsed
		}
	}
	return 0
}

func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		parsed, err := v.Float64()
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0, false
		}
		return parsed, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// timeField parse-validates the first present date-like value. Unparseable
// input normalizes to nil rather than propagating a malformed string.
func (r Raw) timeField(keys ...string) *time.Time {
	for _, key := range keys {
		raw, ok := r[key].(string)
		if !ok {
			continue
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, raw); err == nil {
				return &parsed
			}
		}
	}
	return nil
}

func (r Raw) nested(keys ...string) Raw {
	for _, key := range keys {
		if child, ok := r[key].(map[string]any); ok {
			return Raw(child)
		}
	}
	return nil
}

// displayName resolves the fixed precedence: explicit name, email
// local-part, employee id, literal "Unknown". Never empty.
func displayName(name, email, employeeID string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	if local := emailLocalPart(email); local != "" {
		return local
	}
	if employeeID = strings.TrimSpace(employeeID); employeeID != "" {
		return employeeID
	}
	return "Unknown"
}

func emailLocalPart(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
