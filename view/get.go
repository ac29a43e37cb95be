package view

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jacoelho/jsonview/document"
)

// Get invokes accessor and converts the result to T.
// An absent result (suppressed not-found or JSON null) yields the zero T.
func Get[T any](v *View, accessor string) (T, error) {
	out, _, err := Lookup[T](v, accessor)
	return out, err
}

// Lookup is like Get but also reports whether a value was present.
func Lookup[T any](v *View, accessor string) (T, bool, error) {
	var zero T

	raw, err := v.Invoke(accessor)
	if err != nil {
		return zero, false, err
	}
	if raw == nil {
		return zero, false, nil
	}

	out, err := As[T](raw)
	if err != nil {
		return zero, false, fmt.Errorf("%s.%s: %w", v.shape.Name(), accessor, err)
	}
	return out, true, nil
}

// As converts a query result to T. Results already of type T are returned
// as is; anything else goes through a JSON round trip, so []any becomes
// []string and objects can land in structs.
func As[T any](raw any) (T, error) {
	if out, ok := raw.(T); ok {
		return out, nil
	}

	var out T
	if doc, ok := raw.(*document.Document); ok {
		raw = doc.Value()
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrResultType, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("%w: cannot use %s as %T: %v", ErrResultType, document.KindOf(raw), out, err)
	}
	return out, nil
}
