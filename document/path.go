package document

import (
	"fmt"

	"github.com/theory/jsonpath"
)

// Path is a compiled path expression.
// A Path is immutable and safe to share between goroutines and documents.
type Path struct {
	expr     string
	path     *jsonpath.Path
	definite bool
}

// Compile parses expr (e.g. "$.user.name", "$..items[*]").
func Compile(expr string) (*Path, error) {
	if expr == "" {
		return nil, fmt.Errorf("%w: expression is empty", ErrPath)
	}

	p, err := jsonpath.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrPath, expr, err)
	}

	return &Path{
		expr:     expr,
		path:     p,
		definite: p.Query().Singular() != nil,
	}, nil
}

// MustCompile is like Compile but panics on error.
// Intended for package-level path declarations.
func MustCompile(expr string) *Path {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// Definite reports whether the path can address at most one node.
// Definite paths return the node itself; indefinite paths return a list of matches.
func (p *Path) Definite() bool {
	return p.definite
}

func (p *Path) String() string {
	return p.expr
}

func (p *Path) selectNodes(root any) []any {
	return p.path.Select(root)
}
