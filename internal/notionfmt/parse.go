// Package notionfmt holds the value helpers shared by the record map
// assembler and the admin API: tolerant JSON decoding of persisted columns
// and a minimal rich-text adapter.
package notionfmt

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// SafeParse decodes a persisted column into T.
//
// A value that already has type T is returned unchanged. Strings and byte
// slices are decoded as JSON. Empty input yields def with no error. Any
// other outcome yields def together with an error describing why; callers
// log it and carry on, it is never fatal.
func SafeParse[T any](raw any, def T) (T, error) {
	var data []byte
	switch v := raw.(type) {
	case nil:
		return def, nil
	case T:
		if isNil(v) {
			return def, nil
		}
		return v, nil
	case string:
		data = []byte(v)
	case *string:
		if v == nil {
			return def, nil
		}
		data = []byte(*v)
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		// Structured value of another Go type (e.g. []any for []string):
		// convert through JSON so the target shape is still enforced.
		b, err := json.Marshal(v)
		if err != nil {
			return def, fmt.Errorf("notionfmt: encode %T: %w", raw, err)
		}
		data = b
	}

	if len(data) == 0 {
		return def, nil
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return def, fmt.Errorf("notionfmt: decode into %T: %w", out, err)
	}
	// JSON null decodes to a nil map/slice; the default keeps the wire shape
	if isNil(out) {
		return def, nil
	}
	return out, nil
}

// MustParse is SafeParse without the diagnostic
func MustParse[T any](raw any, def T) T {
	v, _ := SafeParse(raw, def) //nolint:errcheck // default already applied
	return v
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
