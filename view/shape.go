package view

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/jacoelho/jsonview/document"
)

// Reserved accessor names answered by every view before any path lookup.
const (
	AccessorEqual    = "equal"
	AccessorHash     = "hash"
	AccessorString   = "string"
	AccessorDocument = "document"
)

func reserved(accessor string) bool {
	switch accessor {
	case AccessorEqual, AccessorHash, AccessorString, AccessorDocument:
		return true
	default:
		return false
	}
}

// ResultKind is the expected shape of an accessor's query result.
type ResultKind uint8

const (
	// ResultAny returns whatever the engine produced: the node for definite
	// paths, a list of matches for indefinite ones.
	ResultAny ResultKind = iota
	// ResultScalar returns a single node; indefinite matches collapse to the first.
	ResultScalar
	// ResultSequence always returns a []any.
	ResultSequence
	// ResultDocument returns an object or array result as a *document.Document.
	ResultDocument
)

var resultKindNames = [...]string{
	ResultAny:      "any",
	ResultScalar:   "scalar",
	ResultSequence: "sequence",
	ResultDocument: "document",
}

func (k ResultKind) String() string {
	if int(k) < len(resultKindNames) {
		return resultKindNames[k]
	}
	return fmt.Sprintf("ResultKind(%d)", k)
}

// ParseResultKind accepts the names printed by ResultKind.String.
// An empty string means ResultAny.
func ParseResultKind(s string) (ResultKind, error) {
	if s == "" {
		return ResultAny, nil
	}
	for i, name := range resultKindNames {
		if strings.EqualFold(s, name) {
			return ResultKind(i), nil
		}
	}
	return ResultAny, fmt.Errorf("%w: unknown result kind %q", ErrConfiguration, s)
}

// Binding ties an accessor to a path expression.
type Binding struct {
	Accessor string
	Expr     string
	Result   ResultKind

	path *document.Path
}

// ComputeFunc implements an accessor in terms of the view itself,
// usually by calling other accessors.
type ComputeFunc func(v *View) (any, error)

// Shape is a single target shape: a named set of accessors.
// Shapes are validated once by NewShape and never change afterwards.
type Shape struct {
	name      string
	accessors []string
	bindings  map[string]Binding
	computed  map[string]ComputeFunc
	split     *document.Path
	hash      uint64
}

// Option declares part of a shape.
type Option func(s *Shape) error

// Path binds accessor to expr with ResultAny.
func Path(accessor, expr string) Option {
	return PathAs(accessor, expr, ResultAny)
}

// PathAs binds accessor to expr and declares the expected result kind.
func PathAs(accessor, expr string, kind ResultKind) Option {
	return func(s *Shape) error {
		if err := s.declare(accessor); err != nil {
			return err
		}
		if kind > ResultDocument {
			return configErrorf(s.name, accessor, "unknown result kind %s", kind)
		}

		p, err := document.Compile(expr)
		if err != nil {
			return configErrorf(s.name, accessor, "%v", err)
		}

		s.bindings[accessor] = Binding{
			Accessor: accessor,
			Expr:     expr,
			Result:   kind,
			path:     p,
		}
		return nil
	}
}

// Computed declares an accessor answered by fn rather than by a path.
func Computed(accessor string, fn ComputeFunc) Option {
	return func(s *Shape) error {
		if err := s.declare(accessor); err != nil {
			return err
		}
		if fn == nil {
			return configErrorf(s.name, accessor, "computed accessor has no function")
		}
		s.computed[accessor] = fn
		return nil
	}
}

// Split declares the expression that carves a collection body into one
// fragment per element. Only used when the shape is a collection element.
func Split(expr string) Option {
	return func(s *Shape) error {
		if s.split != nil {
			return configErrorf(s.name, "", "split declared more than once")
		}
		p, err := document.Compile(expr)
		if err != nil {
			return configErrorf(s.name, "", "split: %v", err)
		}
		s.split = p
		return nil
	}
}

func (s *Shape) declare(accessor string) error {
	switch {
	case accessor == "":
		return configErrorf(s.name, accessor, "accessor name is empty")
	case reserved(accessor):
		return configErrorf(s.name, accessor, "accessor name is reserved")
	}
	if _, ok := s.bindings[accessor]; ok {
		return configErrorf(s.name, accessor, "accessor declared more than once")
	}
	if _, ok := s.computed[accessor]; ok {
		return configErrorf(s.name, accessor, "accessor declared more than once")
	}
	s.accessors = append(s.accessors, accessor)
	return nil
}

// NewShape builds and validates a shape. Every declaration problem is
// reported here, before any document is decoded.
func NewShape(name string, opts ...Option) (*Shape, error) {
	if name == "" {
		return nil, configErrorf("<unnamed>", "", "shape name is empty")
	}

	s := &Shape{
		name:     name,
		bindings: make(map[string]Binding),
		computed: make(map[string]ComputeFunc),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(s.name))
	for _, acc := range s.accessors {
		_, _ = fmt.Fprintf(h, "\x00%s", acc)
		if b, ok := s.bindings[acc]; ok {
			_, _ = fmt.Fprintf(h, "=%s:%d", b.Expr, b.Result)
		}
	}
	if s.split != nil {
		_, _ = fmt.Fprintf(h, "\x00split=%s", s.split)
	}
	s.hash = h.Sum64()

	return s, nil
}

// MustShape is like NewShape but panics on error.
func MustShape(name string, opts ...Option) *Shape {
	s, err := NewShape(name, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Shape) Name() string {
	return s.name
}

// Accessors lists every declared accessor in declaration order.
func (s *Shape) Accessors() []string {
	out := make([]string, len(s.accessors))
	copy(out, s.accessors)
	return out
}

// Binding returns the path binding for accessor, if one was declared.
func (s *Shape) Binding(accessor string) (Binding, bool) {
	b, ok := s.bindings[accessor]
	return b, ok
}

// IsComputed reports whether accessor was declared with Computed.
func (s *Shape) IsComputed(accessor string) bool {
	_, ok := s.computed[accessor]
	return ok
}

// SplitPath returns the split expression, or nil if none was declared.
func (s *Shape) SplitPath() *document.Path {
	return s.split
}

// Hash is derived from the shape's declarations.
func (s *Shape) Hash() uint64 {
	return s.hash
}

func (s *Shape) String() string {
	return s.name
}

func (*Shape) isTarget() {}
