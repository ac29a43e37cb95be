package view

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks mistakes in shape declarations. These are
	// programming errors: they are never retried or suppressed.
	ErrConfiguration = errors.New("view: configuration error")

	// ErrResultType indicates a query result could not be presented as the
	// declared result kind or the requested Go type.
	ErrResultType = errors.New("view: unexpected result type")
)

// ConfigurationError names the shape and, when relevant, the accessor at fault.
type ConfigurationError struct {
	Shape    string
	Accessor string
	Reason   string
}

func configErrorf(shape, accessor, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{
		Shape:    shape,
		Accessor: accessor,
		Reason:   fmt.Sprintf(format, args...),
	}
}

func (e *ConfigurationError) Error() string {
	if e.Accessor == "" {
		return fmt.Sprintf("view: shape %s: %s", e.Shape, e.Reason)
	}
	return fmt.Sprintf("view: shape %s: accessor %s: %s", e.Shape, e.Accessor, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}
