package storage

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// panicStringer cannot be encoded and cannot be stringified either.
type panicStringer struct{}

func (panicStringer) MarshalJSON() ([]byte, error) { return nil, errors.New("unsupported") }

func (panicStringer) String() string { panic("broken stringer") }

type failingMarshaler struct{}

func (failingMarshaler) MarshalJSON() ([]byte, error) { return nil, errors.New("nope") }

func (failingMarshaler) String() string { return "failing-marshaler" }

func TestCoerce_PassesThroughJSONValues(t *testing.T) {
	input := map[string]any{
		"s":      "text",
		"n":      4.5,
		"i":      int64(12),
		"b":      true,
		"null":   nil,
		"list":   []any{"a", 1.0},
		"nested": map[string]any{"k": "v"},
	}

	out, err := Coerce(input)
	require.NoError(t, err)
	assert.Equal(t, input, out)
}

func TestCoerce_StringifiesUnsupportedValues(t *testing.T) {
	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	input := map[string]any{
		"nan":     math.NaN(),
		"inf":     math.Inf(1),
		"complex": complex(1, 2),
		"marshal": failingMarshaler{},
		"time":    when,
		"deep":    map[string]any{"list": []any{math.Inf(-1)}},
	}

	out, err := Coerce(input)
	require.NoError(t, err)

	m := out.(map[string]any)
	assert.Equal(t, "NaN", m["nan"])
	assert.Equal(t, "+Inf", m["inf"])
	assert.Equal(t, "(1+2i)", m["complex"])
	assert.Equal(t, "failing-marshaler", m["marshal"])
	assert.Equal(t, when, m["time"])
	assert.Equal(t, []any{"-Inf"}, m["deep"].(map[string]any)["list"])

	_, err = json.Marshal(out)
	assert.NoError(t, err)
}

func TestCoerce_TypedContainers(t *testing.T) {
	input := map[string]any{
		"strings": []string{"a", "b"},
		"scores":  map[string]float64{"x": math.NaN()},
		"byKey":   map[int]string{1: "one"},
		"bytes":   []byte("hi"),
	}

	out, err := Coerce(input)
	require.NoError(t, err)

	m := out.(map[string]any)
	assert.Equal(t, []any{"a", "b"}, m["strings"])
	assert.Equal(t, map[string]any{"x": "NaN"}, m["scores"])
	assert.Equal(t, map[string]any{"1": "one"}, m["byKey"])
	assert.Equal(t, []byte("hi"), m["bytes"])
}

func TestCoerce_Pointers(t *testing.T) {
	var nilPtr *string
	s := "value"

	out, err := Coerce(map[string]any{"nil": nilPtr, "ptr": &s})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"nil": nil, "ptr": "value"}, out)
}

func TestCoerce_FailsWhenStringificationFails(t *testing.T) {
	_, err := Coerce(map[string]any{"outer": map[string]any{"bad": panicStringer{}}})
	require.Error(t, err)

	var coercionErr *CoercionError
	require.ErrorAs(t, err, &coercionErr)
	assert.Equal(t, "$.outer.bad", coercionErr.Path)
}

func TestCoerce_SelfReferencingMapFails(t *testing.T) {
	record := map[string]any{"title": "x"}
	record["self"] = record

	_, err := Coerce(record)
	require.Error(t, err)

	var coercionErr *CoercionError
	require.ErrorAs(t, err, &coercionErr)
	assert.Equal(t, "$.self", coercionErr.Path)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestCoerce_SelfReferencingSliceFails(t *testing.T) {
	list := []any{"a", nil}
	list[1] = list

	_, err := Coerce(map[string]any{"list": list})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestCoerce_IndirectCycleThroughTypedMap(t *testing.T) {
	inner := map[string]any{}
	outer := map[string]map[string]any{"inner": inner}
	inner["back"] = outer

	_, err := Coerce(outer)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestCoerce_SharedValueIsNotACycle(t *testing.T) {
	shared := map[string]any{"k": "v"}
	tags := []string{"a", "b"}

	out, err := Coerce(map[string]any{"a": shared, "b": shared, "t1": tags, "t2": tags})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a":  map[string]any{"k": "v"},
		"b":  map[string]any{"k": "v"},
		"t1": []any{"a", "b"},
		"t2": []any{"a", "b"},
	}, out)
}
