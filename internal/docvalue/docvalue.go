// Package docvalue coerces loosely-typed document store fields into typed
// values. Every function reports whether the value could be decoded so the
// caller can skip a field or a whole document instead of storing zero values.
package docvalue

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"
)

// Int64 accepts integer and integral float kinds, json.Number and decimal strings.
func Int64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return integral(float64(n))
	case float64:
		return integral(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return integral(f)
		}
		return 0, false
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

func integral(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f > math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// Float64 accepts every numeric kind, json.Number and decimal strings.
func Float64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return Float64(float64(n))
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return Float64(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return Float64(f)
	default:
		return 0, false
	}
}

// OptionalFloat64 returns nil when v is absent or not numeric.
func OptionalFloat64(v any) *float64 {
	f, ok := Float64(v)
	if !ok {
		return nil
	}
	return &f
}

// String accepts strings and renders scalars; maps, slices and nil are rejected.
func String(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case bool:
		return strconv.FormatBool(s), true
	case int, int32, int64, json.Number:
		i, _ := Int64(s)
		return strconv.FormatInt(i, 10), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	default:
		return "", false
	}
}

// NonBlank is String that also rejects whitespace-only values.
func NonBlank(v any) (string, bool) {
	s, ok := String(v)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// OptionalString returns nil when v is absent or not a scalar.
func OptionalString(v any) *string {
	s, ok := String(v)
	if !ok {
		return nil
	}
	return &s
}

// True reports whether v is the boolean true. Strings like "true" do not count.
func True(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time decodes server timestamps (time.Time, *timestamppb.Timestamp),
// seconds/nanoseconds maps as produced by client SDK exports, ISO-8601
// strings (zone-less ones are read as UTC) and epoch milliseconds.
func Time(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return t.UTC(), true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return Time(*t)
	case *timestamppb.Timestamp:
		if t == nil || t.CheckValid() != nil {
			return time.Time{}, false
		}
		return t.AsTime().UTC(), true
	case map[string]any:
		return timeFromMap(t)
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range isoLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC(), true
			}
		}
		return time.Time{}, false
	case int64, int, float64, json.Number:
		ms, ok := Int64(t)
		if !ok || ms <= 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(ms).UTC(), true
	default:
		return time.Time{}, false
	}
}

func timeFromMap(m map[string]any) (time.Time, bool) {
	seconds, ok := firstInt(m, "seconds", "_seconds")
	if !ok {
		return time.Time{}, false
	}
	nanos, _ := firstInt(m, "nanoseconds", "_nanoseconds", "nanos")
	return time.Unix(seconds, nanos).UTC(), true
}

func firstInt(m map[string]any, keys ...string) (int64, bool) {
	for _, k := range keys {
		if v, present := m[k]; present {
			return Int64(v)
		}
	}
	return 0, false
}

// OptionalTime returns nil when v cannot be decoded.
func OptionalTime(v any) *time.Time {
	t, ok := Time(v)
	if !ok {
		return nil
	}
	return &t
}

// Ref is a reference to a relational row carried by a document. Either ID
// is set, or Email names the row to look up.
type Ref struct {
	ID    int64
	HasID bool
	Email string
}

// UserRef decodes a user reference given as a number, a numeric string, or
// an embedded object carrying id, userId or email.
func UserRef(v any) (Ref, bool) {
	if m, ok := v.(map[string]any); ok {
		for _, k := range []string{"id", "userId"} {
			if id, ok := Int64(m[k]); ok {
				return Ref{ID: id, HasID: true}, true
			}
		}
		if email, ok := NonBlank(m["email"]); ok {
			return Ref{Email: email}, true
		}
		return Ref{}, false
	}

	id, ok := Int64(v)
	if !ok {
		return Ref{}, false
	}
	return Ref{ID: id, HasID: true}, true
}
