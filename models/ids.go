// ABOUTME: Record identity types shared by every entity kind
// ABOUTME: Provides RecordID, OptionalID and the single identity-token parser
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrNoID      = errors.New("no identity token")
	ErrInvalidID = errors.New("invalid identity token")
)

// RecordID is a store-assigned record identifier. Zero is never a valid id.
type RecordID int64

func (id RecordID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Valid reports whether the id could have been assigned by a store.
func (id RecordID) Valid() bool {
	return id > 0
}

// ParseRecordID converts an identity token of any shape the edge layers
// hand us (numbers, numeric text, float-like text such as "12.0") into a
// RecordID. Blank tokens return ErrNoID, anything else unparseable returns
// ErrInvalidID.
func ParseRecordID(v any) (RecordID, error) {
	switch t := v.(type) {
	case nil:
		return 0, ErrNoID
	case RecordID:
		return checkID(int64(t), v)
	case *RecordID:
		if t == nil {
			return 0, ErrNoID
		}
		return checkID(int64(*t), v)
	case int:
		return checkID(int64(t), v)
	case int32:
		return checkID(int64(t), v)
	case int64:
		return checkID(t, v)
	case uint:
		return checkID(int64(t), v)
	case uint32:
		return checkID(int64(t), v)
	case uint64:
		if t > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %v", ErrInvalidID, v)
		}
		return checkID(int64(t), v)
	case float32:
		return parseFloatID(float64(t), v)
	case float64:
		return parseFloatID(t, v)
	case json.Number:
		return parseTextID(string(t))
	case string:
		return parseTextID(t)
	case *string:
		if t == nil {
			return 0, ErrNoID
		}
		return parseTextID(*t)
	case fmt.Stringer:
		return parseTextID(t.String())
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidID, v)
	}
}

func parseTextID(s string) (RecordID, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "null", "none", "nan":
		return 0, ErrNoID
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return checkID(n, s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return parseFloatID(f, s)
}

func parseFloatID(f float64, raw any) (RecordID, error) {
	if math.IsNaN(f) {
		return 0, ErrNoID
	}
	if math.IsInf(f, 0) || f != math.Trunc(f) || f > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidID, raw)
	}
	return checkID(int64(f), raw)
}

func checkID(n int64, raw any) (RecordID, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidID, raw)
	}
	return RecordID(n), nil
}

// OptionalID is an identity token that may be absent, used for rows that
// have not been persisted yet.
type OptionalID struct {
	id  RecordID
	set bool
}

// SomeID wraps a known id.
func SomeID(id RecordID) OptionalID {
	return OptionalID{id: id, set: id.Valid()}
}

// NoID is the absent token.
func NoID() OptionalID {
	return OptionalID{}
}

// ParseOptionalID is ParseRecordID for optional tokens: blank input yields
// NoID without an error.
func ParseOptionalID(v any) (OptionalID, error) {
	id, err := ParseRecordID(v)
	if errors.Is(err, ErrNoID) {
		return NoID(), nil
	}
	if err != nil {
		return NoID(), err
	}
	return SomeID(id), nil
}

func (o OptionalID) Get() (RecordID, bool) {
	return o.id, o.set
}

func (o OptionalID) IsSet() bool {
	return o.set
}

func (o OptionalID) String() string {
	if !o.set {
		return "-"
	}
	return o.id.String()
}

func (o OptionalID) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return []byte(o.id.String()), nil
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseOptionalID(raw)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
