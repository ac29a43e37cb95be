package decoder

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jacoelho/jsonview/document"
	"github.com/jacoelho/jsonview/view"
)

var (
	// ErrRead indicates the response body could not be read.
	ErrRead = errors.New("decoder: failed to read body")

	// ErrInvalidInput indicates a nil response was passed to DecodeResponse.
	ErrInvalidInput = errors.New("decoder: invalid input")
)

// Decoder turns response bodies into views.
// It holds no per-call state and can be shared between goroutines.
type Decoder struct {
	config document.Config
	trace  io.Writer
}

type Option func(*Decoder)

// WithSuppressNotFound makes every path that matches nothing read as nil,
// for every view produced by this decoder.
func WithSuppressNotFound() Option {
	return func(d *Decoder) {
		d.config.SuppressNotFound = true
	}
}

// WithConfig sets the configuration every document is parsed with.
func WithConfig(cfg document.Config) Option {
	return func(d *Decoder) {
		d.config = cfg
	}
}

// WithTrace writes one line per decode decision to w.
func WithTrace(w io.Writer) Option {
	return func(d *Decoder) {
		d.trace = w
	}
}

func New(opts ...Option) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Config returns the configuration documents are parsed with.
func (d *Decoder) Config() document.Config {
	return d.config
}

// Result holds a decoded single view or a decoded collection; exactly one
// field is set. A nil *Result means the response carried nothing.
type Result struct {
	View  *view.View
	Views Container
}

func (d *Decoder) logf(format string, args ...any) {
	if d.trace == nil {
		return
	}
	_, _ = fmt.Fprintf(d.trace, "jsonview: "+format+"\n", args...)
}

// Decode reads body and decodes it into target. A nil body means the
// response had none. See DecodeBytes for the rules.
func (d *Decoder) Decode(status int, body io.Reader, target view.Target) (*Result, error) {
	if body == nil {
		return d.DecodeBytes(status, nil, target)
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	if raw == nil {
		raw = []byte{}
	}
	return d.DecodeBytes(status, raw, target)
}

// DecodeResponse decodes resp and closes its body.
func (d *Decoder) DecodeResponse(resp *http.Response, target view.Target) (*Result, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: response is nil", ErrInvalidInput)
	}
	if resp.Body == nil {
		return d.Decode(resp.StatusCode, nil, target)
	}
	defer resp.Body.Close()

	return d.Decode(resp.StatusCode, resp.Body, target)
}

// DecodeBytes decodes body into target. A nil body means the response had none.
//
// A nil *Result with a nil error means absence: a missing or blank body, a
// body without an object or array at its root, or a 404 for a single shape.
// A 404 for a collection yields an empty container of the requested kind.
//
// Targets are checked before the body is looked at, so a collection whose
// element declares no split fails even on a 404.
func (d *Decoder) DecodeBytes(status int, body []byte, target view.Target) (*Result, error) {
	single, coll, err := Resolve(target)
	if err != nil {
		return nil, err
	}

	if status == http.StatusNotFound {
		d.logf("status 404 for %v: empty value", target)
		if coll != nil {
			return &Result{Views: NewContainer(coll.Kind)}, nil
		}
		return nil, nil
	}

	if body == nil {
		d.logf("no body for %v: absent", target)
		return nil, nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		d.logf("empty body for %v: absent", target)
		return nil, nil
	}

	doc, err := document.Parse(body, d.config)
	if err != nil {
		return nil, fmt.Errorf("decode %v: %w", target, err)
	}

	if !doc.HasContent() {
		d.logf("body for %v has no addressable content: absent", target)
		return nil, nil
	}

	if coll != nil {
		return d.decodeCollection(doc, *coll)
	}

	return &Result{View: view.New(single, doc)}, nil
}

func (d *Decoder) decodeCollection(doc *document.Document, coll view.Collection) (*Result, error) {
	split := coll.Elem.SplitPath()

	fragments, err := doc.Split(split)
	if err != nil {
		return nil, fmt.Errorf("decode %v: %w", coll, err)
	}

	container := NewContainer(coll.Kind)
	for i, fragment := range fragments {
		if !container.Add(view.New(coll.Elem, fragment)) {
			d.logf("%v: fragment %d duplicates an earlier element", coll, i)
		}
	}
	d.logf("%v: split %s produced %d fragment(s), kept %d", coll, split, len(fragments), container.Len())

	return &Result{Views: container}, nil
}

// Resolve checks target and reports what it decodes into: a single shape, or
// a collection whose element declares a split. Exactly one of the two results
// is non-nil when err is nil.
func Resolve(target view.Target) (*view.Shape, *view.Collection, error) {
	switch t := target.(type) {
	case *view.Shape:
		if t == nil {
			return nil, nil, &view.ConfigurationError{Shape: "<nil>", Reason: "target shape is nil"}
		}
		return t, nil, nil
	case view.Collection:
		return resolveCollection(t)
	case *view.Collection:
		if t == nil {
			return nil, nil, &view.ConfigurationError{Shape: "<nil>", Reason: "target collection is nil"}
		}
		return resolveCollection(*t)
	default:
		return nil, nil, &view.ConfigurationError{
			Shape:  fmt.Sprintf("%T", target),
			Reason: "target is neither a single shape nor a collection",
		}
	}
}

func resolveCollection(c view.Collection) (*view.Shape, *view.Collection, error) {
	if c.Elem == nil {
		return nil, nil, &view.ConfigurationError{Shape: c.String(), Reason: "collection has no element shape"}
	}
	if c.Elem.SplitPath() == nil {
		return nil, nil, &view.ConfigurationError{
			Shape:  c.Elem.Name(),
			Reason: fmt.Sprintf("missing split expression, required to decode %v", c),
		}
	}
	return nil, &c, nil
}
