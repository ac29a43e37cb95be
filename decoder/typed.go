package decoder

import (
	"io"

	"github.com/jacoelho/jsonview/view"
)

// One decodes a single view and wraps it, typically in a struct embedding
// *view.View. ok is false when the response carried no result.
func One[T any](d *Decoder, status int, body io.Reader, shape *view.Shape, wrap func(*view.View) T) (T, bool, error) {
	var zero T

	res, err := d.Decode(status, body, shape)
	if err != nil || res == nil {
		return zero, false, err
	}
	return wrap(res.View), true, nil
}

// All decodes a collection and wraps every element in container order.
// An absent result is a nil slice; a 404 is an empty, non-nil slice.
func All[T any](d *Decoder, status int, body io.Reader, coll view.Collection, wrap func(*view.View) T) ([]T, error) {
	res, err := d.Decode(status, body, coll)
	if err != nil || res == nil {
		return nil, err
	}

	out := make([]T, 0, res.Views.Len())
	for v := range res.Views.All() {
		out = append(out, wrap(v))
	}
	return out, nil
}
