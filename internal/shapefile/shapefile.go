// Package shapefile loads view shape declarations from YAML.
//
//	shapes:
//	  - name: Zone
//	    split: "$[*]"
//	    accessors:
//	      - name: names
//	        path: "$.name"
//	      - name: id
//	        path: "$.id"
//	        result: scalar
package shapefile

import (
	"fmt"
	"io"
	"os"

	yaml "github.com/goccy/go-yaml"
	"github.com/jacoelho/jsonview/view"
)

// ErrShapeFile is the sentinel error for all shape file failures.
var ErrShapeFile = fmt.Errorf("shape file error")

// File is the top-level document of a shape file.
type File struct {
	Shapes []Shape `yaml:"shapes"`
}

// Shape declares one view shape.
type Shape struct {
	Name      string     `yaml:"name"`
	Split     string     `yaml:"split,omitempty"` // only needed for collection decoding
	Accessors []Accessor `yaml:"accessors"`
}

// Accessor binds a name to a path expression.
type Accessor struct {
	Name   string `yaml:"name"`
	Path   string `yaml:"path"`
	Result string `yaml:"result,omitempty"` // any, scalar, sequence or document
}

// Parse decodes a shape file and registers every shape it declares.
func Parse(r io.Reader) (*view.Registry, error) {
	dec := yaml.NewDecoder(r, yaml.DisallowUnknownField())

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: failed to decode YAML: %v", ErrShapeFile, err)
	}

	if len(f.Shapes) == 0 {
		return nil, fmt.Errorf("%w: no shapes declared", ErrShapeFile)
	}

	registry := view.NewRegistry()
	for i, decl := range f.Shapes {
		shape, err := decl.build()
		if err != nil {
			return nil, fmt.Errorf("%w: shape %d: %w", ErrShapeFile, i, err)
		}
		if err := registry.Register(shape); err != nil {
			return nil, fmt.Errorf("%w: shape %d: %w", ErrShapeFile, i, err)
		}
	}

	return registry, nil
}

// Load reads and parses the shape file at filename.
func Load(filename string) (*view.Registry, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShapeFile, err)
	}
	defer f.Close()

	registry, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return registry, nil
}

func (s Shape) build() (*view.Shape, error) {
	opts := make([]view.Option, 0, len(s.Accessors)+1)
	for _, acc := range s.Accessors {
		kind, err := view.ParseResultKind(acc.Result)
		if err != nil {
			return nil, fmt.Errorf("accessor %s: %w", acc.Name, err)
		}
		opts = append(opts, view.PathAs(acc.Name, acc.Path, kind))
	}
	if s.Split != "" {
		opts = append(opts, view.Split(s.Split))
	}

	return view.NewShape(s.Name, opts...)
}
