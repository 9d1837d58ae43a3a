package grade

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Input is one product's nutrition facts as sent by the caller. Keys follow
// the OpenFoodFacts column names (energy_100g, sugars_100g, additives, ...).
// Every key is optional.
type Input map[string]any

// ParseInput decodes a single JSON object. Numbers are kept as json.Number
// so their textual form survives until coercion.
func ParseInput(raw string) (Input, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after JSON value at offset %d", dec.InputOffset())
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %s", jsonKind(v))
	}
	return Input(obj), nil
}

// Text returns the field rendered as text and whether the field is present
// and truthy. Strings are returned as sent; other values are rendered the way
// the training pipeline rendered them (see reprText).
func (in Input) Text(key string) (string, bool) {
	v, ok := in[key]
	if !ok || !Truthy(v) {
		return "", false
	}
	return reprText(v), true
}

// Truthy reports whether a decoded JSON value counts as set: null, "", 0,
// false and empty arrays or objects do not.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// CoerceFeature converts a raw input value to a feature value. It never
// fails: absent, empty, non-numeric and non-finite values all become 0.
func CoerceFeature(v any) float64 {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
