package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
)

// ErrCycle is the cause of a CoercionError for a record that contains itself.
var ErrCycle = errors.New("value contains itself")

// CoercionError reports a value that could neither be encoded nor stringified.
type CoercionError struct {
	Path  string
	Cause any
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce value at %s: %v", e.Path, e.Cause)
}

// Unwrap returns Cause when it is an error.
func (e *CoercionError) Unwrap() error {
	err, _ := e.Cause.(error)
	return err
}

// Coerce returns a copy of v in which every value encoding/json cannot encode
// is replaced by its fmt.Sprint representation. Maps with non-string keys
// are rebuilt with stringified keys.
// A map, slice or pointer that is reached again from inside itself fails with ErrCycle.
func Coerce(v any) (any, error) {
	c := &coercer{onPath: map[visit]bool{}}
	return c.coerce(v, "$")
}

// visit identifies a container by its data pointer, type and length.
type visit struct {
	ptr uintptr
	typ reflect.Type
	n   int
}

// coercer tracks the containers on the path from the root to the current value.
type coercer struct {
	onPath map[visit]bool
}

// enter marks rv as being walked. The returned func unmarks it.
func (c *coercer) enter(rv reflect.Value, path string) (func(), error) {
	if rv.IsNil() || (rv.Kind() == reflect.Slice && rv.Len() == 0) {
		return func() {}, nil
	}
	n := 0
	if rv.Kind() == reflect.Slice {
		n = rv.Len()
	}
	key := visit{ptr: rv.Pointer(), typ: rv.Type(), n: n}
	if c.onPath[key] {
		return nil, &CoercionError{Path: path, Cause: ErrCycle}
	}
	c.onPath[key] = true
	return func() { delete(c.onPath, key) }, nil
}

func (c *coercer) coerce(v any, path string) (any, error) {
	switch val := v.(type) {
	case nil, string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return val, nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return stringify(val, path)
		}
		return val, nil
	case float32:
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return stringify(val, path)
		}
		return val, nil
	case map[string]any:
		leave, err := c.enter(reflect.ValueOf(val), path)
		if err != nil {
			return nil, err
		}
		defer leave()
		out := make(map[string]any, len(val))
		for k, item := range val {
			coerced, err := c.coerce(item, path+"."+k)
			if err != nil {
				return nil, err
			}
			out[k] = coerced
		}
		return out, nil
	case []any:
		leave, err := c.enter(reflect.ValueOf(val), path)
		if err != nil {
			return nil, err
		}
		defer leave()
		out := make([]any, len(val))
		for i, item := range val {
			coerced, err := c.coerce(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = coerced
		}
		return out, nil
	case json.Marshaler:
		if _, err := json.Marshal(val); err != nil {
			return stringify(val, path)
		}
		return val, nil
	}

	return c.coerceReflect(v, path)
}

// coerceReflect handles typed containers such as []string or map[string]float64.
func (c *coercer) coerceReflect(v any, path string) (any, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		leave, err := c.enter(rv, path)
		if err != nil {
			return nil, err
		}
		defer leave()
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key, err := stringify(iter.Key().Interface(), path)
			if err != nil {
				return nil, err
			}
			coerced, err := c.coerce(iter.Value().Interface(), path+"."+key)
			if err != nil {
				return nil, err
			}
			out[key] = coerced
		}
		return out, nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			// []byte encodes as base64
			return v, nil
		}
		if rv.Kind() == reflect.Slice {
			leave, err := c.enter(rv, path)
			if err != nil {
				return nil, err
			}
			defer leave()
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			coerced, err := c.coerce(rv.Index(i).Interface(), fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = coerced
		}
		return out, nil
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
		leave, err := c.enter(rv, path)
		if err != nil {
			return nil, err
		}
		defer leave()
		return c.coerce(rv.Elem().Interface(), path)
	case reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return c.coerce(rv.Elem().Interface(), path)
	}

	if _, err := json.Marshal(v); err != nil {
		return stringify(v, path)
	}
	return v, nil
}

// stringify renders v with fmt.Sprint. A panicking String or Error method
// makes the coercion fail; fmt reports those inline as "%!v(PANIC=...)".
func stringify(v any, path string) (s string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CoercionError{Path: path, Cause: r}
		}
	}()
	s = fmt.Sprint(v)
	if strings.Contains(s, "(PANIC=") {
		return "", &CoercionError{Path: path, Cause: s}
	}
	return s, nil
}
