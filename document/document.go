package document

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"reflect"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/goccy/go-json"
)

// Config is fixed when a document is parsed and applies to every query
// against it, and to every fragment split from it.
type Config struct {
	// SuppressNotFound turns a definite path with no match into a nil result
	// instead of a *NotFoundError.
	SuppressNotFound bool
}

// Document is a parsed JSON tree. It is never mutated after construction,
// so it can be read from multiple goroutines without locking.
type Document struct {
	root      any
	config    Config
	canonical []byte
	canonErr  error
	hash      uint64
}

var dumper = spew.ConfigState{
	Indent:                  " ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	DisableMethods:          true,
}

// Parse decodes body into a Document. Numbers are kept as json.Number so
// integers of any size keep their exact digits.
func Parse(body []byte, cfg Config) (*Document, error) {
	root, err := decode(body)
	if err != nil {
		return nil, newParseError(body, err)
	}

	return newDocument(root, cfg), nil
}

func decode(body []byte) (any, error) {
	// Unmarshal rejects trailing data after the top-level value; the stream
	// decoder is the only one that honours UseNumber.
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, err
	}
	return root, nil
}

// FromValue wraps an already decoded JSON value (map[string]any, []any,
// string, json.Number, float64, bool or nil). The value must not be
// modified afterwards.
func FromValue(v any, cfg Config) *Document {
	return newDocument(v, cfg)
}

func newDocument(root any, cfg Config) *Document {
	d := &Document{
		root:   root,
		config: cfg,
	}
	d.canonical, d.canonErr = canonicalize(root)

	h := fnv.New64a()
	if d.canonErr == nil {
		_, _ = h.Write(d.canonical)
	} else {
		_, _ = h.Write([]byte(dumper.Sdump(root)))
	}
	d.hash = h.Sum64()

	return d
}

func canonicalize(root any) ([]byte, error) {
	raw, err := json.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	// Integer literals are left as written; only fractions and exponents go
	// through the float64 form, so 1 and 1.0 agree but 2^53+1 stays distinct.
	v := jsontext.Value(raw)
	if err := v.Canonicalize(jsontext.CanonicalizeRawInts(false)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	return v, nil
}

// Config returns the configuration the document was parsed with.
func (d *Document) Config() Config {
	return d.config
}

// Value returns a copy of the root of the tree.
func (d *Document) Value() any {
	return clone(d.root)
}

// HasContent reports whether the root is an object or an array.
// Bodies such as `null` or a bare string parse, but carry nothing addressable.
func (d *Document) HasContent() bool {
	switch d.root.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}

// Read compiles expr and evaluates it. See ReadPath.
func (d *Document) Read(expr string) (any, error) {
	p, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	return d.ReadPath(p)
}

// ReadPath evaluates p against the document.
//
// A definite path returns the matched node, or a *NotFoundError when nothing
// matches (nil, nil when SuppressNotFound is set). An indefinite path always
// returns a []any holding every match, possibly empty.
func (d *Document) ReadPath(p *Path) (any, error) {
	nodes := p.selectNodes(d.root)

	if !p.definite {
		out := make([]any, len(nodes))
		for i, n := range nodes {
			out[i] = clone(n)
		}
		return out, nil
	}

	if len(nodes) == 0 {
		if d.config.SuppressNotFound {
			return nil, nil
		}
		return nil, &NotFoundError{Expr: p.expr}
	}

	return clone(nodes[0]), nil
}

// Split evaluates p and turns every selected element into its own Document,
// re-parsed from its JSON text so fragments share nothing with the parent.
// Fragments inherit the parent's Config.
func (d *Document) Split(p *Path) ([]*Document, error) {
	nodes := p.selectNodes(d.root)

	var elems []any
	if p.definite {
		if len(nodes) == 0 {
			if d.config.SuppressNotFound {
				return nil, nil
			}
			return nil, &NotFoundError{Expr: p.expr}
		}
		arr, ok := nodes[0].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s selected %s", ErrSplit, p.expr, KindOf(nodes[0]))
		}
		elems = arr
	} else {
		elems = nodes
	}

	fragments := make([]*Document, 0, len(elems))
	for i, elem := range elems {
		raw, err := json.Marshal(elem)
		if err != nil {
			return nil, fmt.Errorf("%w: fragment %d of %s: %v", ErrSerialization, i, p.expr, err)
		}
		fragment, err := Parse(raw, d.config)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, fragment)
	}

	return fragments, nil
}

// Equal reports whether both documents hold the same JSON value.
// Object key order does not matter. Numbers written with a fraction or an
// exponent compare as float64 values; integer literals compare by their digits.
func (d *Document) Equal(other *Document) bool {
	if d == other {
		return true
	}
	if d == nil || other == nil {
		return false
	}
	if d.canonErr == nil && other.canonErr == nil {
		return bytes.Equal(d.canonical, other.canonical)
	}
	return reflect.DeepEqual(d.root, other.root)
}

// Hash is stable for the lifetime of the document and consistent with Equal.
func (d *Document) Hash() uint64 {
	return d.hash
}

// CanonicalText renders the document in RFC 8785 canonical form.
func (d *Document) CanonicalText() (string, error) {
	if d.canonErr != nil {
		return "", d.canonErr
	}
	return string(d.canonical), nil
}

// Dump renders the tree with sorted keys. Unlike CanonicalText it never fails.
func (d *Document) Dump() string {
	return dumper.Sdump(d.root)
}

func (d *Document) String() string {
	if text, err := d.CanonicalText(); err == nil {
		return text
	}
	return d.Dump()
}

// KindOf names the JSON kind of a decoded value.
func KindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func clone(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = clone(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = clone(e)
		}
		return out
	default:
		return v
	}
}
