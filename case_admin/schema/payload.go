package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Payload is the language-native mapping the HTTP layer hands to the import
// transforms and receives back from the views. The boundary serializes it;
// the core only manipulates keys and values.
type Payload map[string]interface{}

// TimestampLayout is the wire format for audit and decision timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// DateLayout is the wire format for calendar dates such as Bilu.ActDate.
const DateLayout = "2006-01-02"

func (p Payload) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// String returns the value for key if it is present and a string.
func (p Payload) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int coerces the value for key to an integer. A missing key or a value that
// cannot be read as a whole number is a validation error.
func (p Payload) Int(key string) (int64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("%w: field '%v' must be numeric", ErrValidation, key)
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: field '%v' must be numeric", ErrValidation, key)
		}
		return i, nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: field '%v' must be numeric", ErrValidation, key)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: field '%v' must be numeric", ErrValidation, key)
	}
}

// OptionalInt is Int for fields that may be absent. Absent yields nil;
// present but non-numeric is still a validation error.
func (p Payload) OptionalInt(key string) (*int64, error) {
	if !p.Has(key) {
		return nil, nil
	}
	i, err := p.Int(key)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// OptionalString yields nil when the key is absent.
func (p Payload) OptionalString(key string) *string {
	s, ok := p.String(key)
	if !ok {
		return nil
	}
	return &s
}

// Time parses an optional timestamp field, accepting TimestampLayout or
// RFC 3339. Absent yields nil; unparseable values are a validation error.
func (p Payload) Time(key string) (*time.Time, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: field '%v' must be a timestamp string", ErrValidation, key)
	}
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("%w: field '%v' has invalid timestamp '%v'", ErrValidation, key, s)
}

func formatTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(TimestampLayout)
}

func strOrNil(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func intOrNil(i *int64) interface{} {
	if i == nil {
		return nil
	}
	return *i
}
