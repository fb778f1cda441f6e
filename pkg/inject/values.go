package inject

import "reflect"

// Values are the prepared values of one resolution call, keyed by type.
// Callers build a fresh set per top-level call; the engine never mutates it.
type Values map[reflect.Type]any

// NewValues keys every v by its dynamic type.
func NewValues(vs ...any) Values {
	values := make(Values, len(vs))
	for _, v := range vs {
		if v == nil {
			continue
		}
		values[reflect.TypeOf(v)] = v
	}
	return values
}

// Provide stores v under the static type T. Use it for interface keys such
// as http.ResponseWriter or context.Context. A nil values is allocated, so
// always keep the returned map.
func Provide[T any](values Values, v T) Values {
	if values == nil {
		values = make(Values, 1)
	}
	values[reflect.TypeFor[T]()] = v
	return values
}

// Lookup returns the value stored under T.
func Lookup[T any](values Values) (T, bool) {
	v, ok := values[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// With returns a copy of values extended with key -> v.
func (values Values) With(key reflect.Type, v any) Values {
	out := make(Values, len(values)+1)
	for k, val := range values {
		out[k] = val
	}
	out[key] = v
	return out
}
