package anvil

import "reflect"

// The gophertunnel decoder picks concrete Go types for tags decoded into an interface{}: byte and
// long arrays may come back as fixed size arrays, lists as slices of the element type. The helpers
// below accept any of those shapes.

// Compound returns v as an NBT compound.
func Compound(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// Int returns the integer value of a numeric tag, whatever its width.
func Int(v any) (int64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), true
	}
	return 0, false
}

// String returns v as a string tag.
func String(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// Bytes returns the content of a byte array tag.
func Bytes(v any) ([]byte, bool) {
	if b, ok := v.([]byte); ok {
		return b, true
	}
	rv, ok := sequence(v, reflect.Uint8)
	if !ok {
		return nil, false
	}
	out := make([]byte, rv.Len())
	reflect.Copy(reflect.ValueOf(out), rv)
	return out, true
}

// Longs returns the content of a long array tag.
func Longs(v any) ([]int64, bool) {
	if l, ok := v.([]int64); ok {
		return l, true
	}
	rv, ok := sequence(v, reflect.Int64)
	if !ok {
		return nil, false
	}
	out := make([]int64, rv.Len())
	reflect.Copy(reflect.ValueOf(out), rv)
	return out, true
}

// List returns the elements of a list tag.
func List(v any) ([]any, bool) {
	if l, ok := v.([]any); ok {
		return l, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func sequence(v any, elem reflect.Kind) (reflect.Value, bool) {
	if v == nil {
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return reflect.Value{}, false
	}
	if rv.Type().Elem().Kind() != elem {
		return reflect.Value{}, false
	}
	return rv, true
}
