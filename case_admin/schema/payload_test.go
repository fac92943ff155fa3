package schema

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPayloadIntCoercion(t *testing.T) {
	p := Payload{
		"a": 7,
		"b": int64(8),
		"c": float64(9),
		"d": json.Number("10"),
		"e": "11",
	}

	for key, expected := range map[string]int64{"a": 7, "b": 8, "c": 9, "d": 10, "e": 11} {
		v, err := p.Int(key)
		assert.NoError(t, err)
		assert.Equal(t, expected, v)
	}

	_, err := p.Int("missing")
	assert.ErrorIs(t, err, ErrValidation)

	p["bad"] = "not a number"
	_, err = p.Int("bad")
	assert.ErrorIs(t, err, ErrValidation)

	p["nil"] = nil
	_, err = p.Int("nil")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPayloadOptionalFields(t *testing.T) {
	p := Payload{"age": 30, "name": "abc"}

	age, err := p.OptionalInt("age")
	assert.NoError(t, err)
	assert.Equal(t, int64(30), *age)

	missing, err := p.OptionalInt("weight")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	assert.Equal(t, "abc", *p.OptionalString("name"))
	assert.Nil(t, p.OptionalString("nickname"))

	p["weight"] = "heavy"
	_, err = p.OptionalInt("weight")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPayloadTime(t *testing.T) {
	p := Payload{
		"plain":   "2020-03-04 10:20:30",
		"rfc3339": "2020-03-04T10:20:30Z",
		"bad":     "yesterday",
	}

	parsed, err := p.Time("plain")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2020, 3, 4, 10, 20, 30, 0, time.UTC), parsed.UTC())

	parsed, err = p.Time("rfc3339")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2020, 3, 4, 10, 20, 30, 0, time.UTC), parsed.UTC())

	absent, err := p.Time("missing")
	assert.NoError(t, err)
	assert.Nil(t, absent)

	_, err = p.Time("bad")
	assert.ErrorIs(t, err, ErrValidation)
}
