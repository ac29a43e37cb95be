package view

import (
	"fmt"

	"github.com/jacoelho/jsonview/document"
)

// View answers accessor calls by querying the document it is bound to.
// A View never changes after New, so it can be shared between goroutines.
//
// Typed views embed *View and add one method per accessor:
//
//	type Zone struct{ *view.View }
//
//	func (z Zone) ID() (string, error) { return view.Get[string](z.View, "id") }
type View struct {
	shape *Shape
	doc   *document.Document
}

// New binds shape to doc.
func New(shape *Shape, doc *document.Document) *View {
	return &View{shape: shape, doc: doc}
}

// Bound returns the view itself. Types embedding *View inherit it, which is
// how Equal recognises them as views.
func (v *View) Bound() *View {
	return v
}

func (v *View) Shape() *Shape {
	return v.shape
}

// Document returns the bound document, for queries the shape does not declare.
func (v *View) Document() *document.Document {
	return v.doc
}

// Equal reports whether other is a view over an equal document.
// The shapes of the two views are not compared.
func (v *View) Equal(other any) bool {
	if v == nil {
		return false
	}
	b, ok := other.(interface{ Bound() *View })
	if !ok {
		return false
	}
	o := b.Bound()
	if o == nil {
		return false
	}
	return v.doc.Equal(o.doc)
}

func (v *View) Hash() uint64 {
	return v.doc.Hash()*31 + v.shape.Hash()
}

// String renders "<shape>: <canonical json>". If the document cannot be
// serialized it degrades to a dump of the tree followed by the error.
func (v *View) String() string {
	text, err := v.doc.CanonicalText()
	if err != nil {
		return fmt.Sprintf("%s: %s %v", v.shape.Name(), v.doc.Dump(), err)
	}
	return v.shape.Name() + ": " + text
}

// Invoke answers accessor by name. Reserved accessors are handled first,
// then computed accessors, then path bindings. An accessor the shape never
// declared is a *ConfigurationError.
//
// A path that matches nothing is a *document.NotFoundError, or a nil result
// when the document was parsed with SuppressNotFound.
func (v *View) Invoke(accessor string, args ...any) (any, error) {
	switch accessor {
	case AccessorEqual:
		if len(args) != 1 {
			return nil, configErrorf(v.shape.Name(), accessor, "expects one argument, got %d", len(args))
		}
		return v.Equal(args[0]), nil
	case AccessorHash:
		return v.Hash(), nil
	case AccessorString:
		return v.String(), nil
	case AccessorDocument:
		return v.doc, nil
	}

	if fn, ok := v.shape.computed[accessor]; ok {
		return fn(v)
	}

	b, ok := v.shape.bindings[accessor]
	if !ok {
		return nil, configErrorf(v.shape.Name(), accessor, "no path expression declared")
	}

	result, err := v.read(b)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", v.shape.Name(), accessor, err)
	}
	return result, nil
}

func (v *View) read(b Binding) (any, error) {
	raw, err := v.doc.ReadPath(b.path)
	if err != nil {
		return nil, err
	}

	switch b.Result {
	case ResultScalar:
		if b.path.Definite() {
			return raw, nil
		}
		matches, _ := raw.([]any)
		if len(matches) == 0 {
			if v.doc.Config().SuppressNotFound {
				return nil, nil
			}
			return nil, &document.NotFoundError{Expr: b.Expr}
		}
		return matches[0], nil

	case ResultSequence:
		switch x := raw.(type) {
		case nil:
			return nil, nil
		case []any:
			return x, nil
		default:
			return []any{x}, nil
		}

	case ResultDocument:
		switch raw.(type) {
		case nil:
			return nil, nil
		case map[string]any, []any:
			return document.FromValue(raw, v.doc.Config()), nil
		default:
			return nil, fmt.Errorf("%w: %s selected %s, want object or array", ErrResultType, b.Expr, document.KindOf(raw))
		}

	default:
		return raw, nil
	}
}
