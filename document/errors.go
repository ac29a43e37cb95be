package document

import (
	"errors"
	"fmt"
)

var (
	// ErrParse indicates the body is not valid JSON.
	ErrParse = errors.New("document: malformed JSON")

	// ErrNotFound indicates a definite path matched nothing.
	// Use errors.Is against this sentinel; the concrete error is *NotFoundError.
	ErrNotFound = errors.New("document: path not found")

	// ErrPath indicates a path expression failed to compile.
	ErrPath = errors.New("document: invalid path expression")

	// ErrSplit indicates a split expression selected something other than an array.
	ErrSplit = errors.New("document: split expression did not select an array")

	// ErrSerialization indicates the document could not be rendered as canonical JSON.
	ErrSerialization = errors.New("document: serialization failed")
)

// maxBodyInError bounds how much of a malformed body is echoed back in errors.
const maxBodyInError = 256

// ParseError names the malformed body that failed to parse.
type ParseError struct {
	Body string
	Err  error
}

func newParseError(body []byte, err error) *ParseError {
	b := body
	if len(b) > maxBodyInError {
		b = b[:maxBodyInError]
	}
	return &ParseError{Body: string(b), Err: err}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("document: malformed JSON body %q: %v", e.Body, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// NotFoundError carries the expression that produced no match.
type NotFoundError struct {
	Expr string
}

func (e *NotFoundError) Error() string {
	return "no results for path: " + e.Expr
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IsNotFound reports whether err is, or wraps, a not-found condition.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
