package exit

import (
	"bytes"
	"os"
	"testing"
)

func TestResults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		result   *Result
		output   *os.File
		exitCode int
		message  string
	}{
		{name: "success", result: Success("done\n"), output: os.Stdout, exitCode: CodeSuccess, message: "done\n"},
		{name: "error", result: Errorf("failed %d url(s)\n", 2), output: os.Stderr, exitCode: CodeFailure, message: "failed 2 url(s)\n"},
		{name: "usage", result: Usagef("Error: %v\n", "bad flag"), output: os.Stderr, exitCode: CodeUsage, message: "Error: bad flag\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if tt.result.Output != tt.output {
				t.Errorf("Output = %v, want %v", tt.result.Output, tt.output)
			}
			if tt.result.ExitCode != tt.exitCode {
				t.Errorf("ExitCode = %d, want %d", tt.result.ExitCode, tt.exitCode)
			}
			if tt.result.Message != tt.message {
				t.Errorf("Message = %q, want %q", tt.result.Message, tt.message)
			}
		})
	}
}

func TestPrint(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := &Result{Output: &buf, Message: "hello"}
	r.Print()

	if buf.String() != "hello" {
		t.Errorf("Print() wrote %q, want %q", buf.String(), "hello")
	}
}
