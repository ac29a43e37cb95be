package exit

import (
	"fmt"
	"io"
	"os"
)

// Process exit codes.
const (
	CodeSuccess = 0
	// CodeFailure means at least one URL could not be fetched or decoded.
	CodeFailure = 1
	// CodeUsage means the command line was rejected before any request.
	CodeUsage = 2
)

// Result holds the output destination and exit code for program termination.
type Result struct {
	Output   io.Writer
	ExitCode int
	Message  string
}

// Print writes the result message to the configured output destination.
func (r *Result) Print() {
	fmt.Fprint(r.Output, r.Message)
}

// Success writes message to stdout and exits with CodeSuccess.
func Success(message string) *Result {
	return &Result{
		Output:   os.Stdout,
		ExitCode: CodeSuccess,
		Message:  message,
	}
}

// Errorf writes to stderr and exits with CodeFailure.
func Errorf(format string, a ...any) *Result {
	return &Result{
		Output:   os.Stderr,
		ExitCode: CodeFailure,
		Message:  fmt.Sprintf(format, a...),
	}
}

// Usagef writes to stderr and exits with CodeUsage.
func Usagef(format string, a ...any) *Result {
	return &Result{
		Output:   os.Stderr,
		ExitCode: CodeUsage,
		Message:  fmt.Sprintf(format, a...),
	}
}
