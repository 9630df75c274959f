// ABOUTME: Typed accessors over loosely typed record fields
// ABOUTME: Backends hand back native, JSON-decoded or text values alike
package store

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/harperreed/prospecta/models"
)

// Fields holds column values keyed by column name.
type Fields map[string]any

// Clone returns a shallow copy.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

func (f Fields) String(key string) string {
	switch v := f[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// ID reads a record reference such as prospect_id; zero when absent.
func (f Fields) ID(key string) models.RecordID {
	id, err := models.ParseRecordID(f[key])
	if err != nil {
		return 0
	}
	return id
}

// Time reads a timestamp; ok is false when absent or unparseable.
func (f Fields) Time(key string) (time.Time, bool) {
	return parseTime(f[key])
}

// TimePtr is Time for nullable columns.
func (f Fields) TimePtr(key string) *time.Time {
	t, ok := f.Time(key)
	if !ok {
		return nil
	}
	return &t
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

// ValuesEqual compares filter and field values across the shapes backends
// produce: ids compare numerically, times by instant, the rest as text.
func ValuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ta, ok := parseTime(a); ok {
		if tb, ok := parseTime(b); ok {
			return ta.Equal(tb)
		}
	}
	if isNumeric(a) || isNumeric(b) {
		ia, errA := models.ParseRecordID(a)
		ib, errB := models.ParseRecordID(b)
		if errA == nil && errB == nil {
			return ia == ib
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func isNumeric(v any) bool {
	switch v.(type) {
	case models.RecordID, int, int32, int64, uint, uint32, uint64, float32, float64, json.Number:
		return true
	}
	return false
}

// Normalize lowers a field value to the basic types drivers and encoders
// understand: named string and integer types become string and int64,
// nil pointers become nil, times are moved to UTC.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case models.RecordID:
		return int64(t)
	case time.Time:
		if t.IsZero() {
			return nil
		}
		return t.UTC()
	case *time.Time:
		if t == nil || t.IsZero() {
			return nil
		}
		return t.UTC()
	case *string:
		if t == nil {
			return nil
		}
		return *t
	case string, int64, float64, bool, []byte:
		return t
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return int64(rv.Uint())
	case reflect.Float32:
		return rv.Float()
	}
	return v
}
