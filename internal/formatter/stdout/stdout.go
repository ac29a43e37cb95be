package stdout

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/jacoelho/jsonview/internal/formatter"
	"github.com/jacoelho/jsonview/internal/results"
)

const separator = "--------------------------------------------------------------------------------"

// Formatter implements human-readable output.
type Formatter struct {
	writer io.Writer
}

// New creates a new stdout formatter that outputs to stdout.
func New() formatter.Formatter {
	return &Formatter{
		writer: os.Stdout,
	}
}

// NewWithWriter creates a new stdout formatter with a custom writer.
func NewWithWriter(writer io.Writer) formatter.Formatter {
	return &Formatter{
		writer: writer,
	}
}

func (f *Formatter) Format(s *results.Summary) error {
	if s == nil {
		return nil
	}

	for _, r := range s.Results {
		if err := f.formatURL(r); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(f.writer, separator); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.writer, "Fetched URLs:      %d\n", s.FetchedURLs); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.writer, "Decoded URLs:      %d (%.1f%%)\n", s.DecodedURLs, s.DecodedPercentage()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.writer, "Absent URLs:       %d\n", s.AbsentURLs); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.writer, "Failed URLs:       %d (%.1f%%)\n", s.FailedURLs, s.FailurePercentage()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.writer, "Views:             %d\n", s.Views); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.writer, "Accessor errors:   %d\n", s.AccessorErrors); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f.writer, "Duration:          %d ms\n", s.TotalDuration.Milliseconds()); err != nil {
		return err
	}

	return nil
}

func (f *Formatter) formatURL(r results.URLResult) error {
	var status string
	switch {
	case r.Error != nil:
		status = fmt.Sprintf("Failed: %v", r.Error)
	case r.Absent:
		status = "Absent"
	default:
		status = fmt.Sprintf("%d view(s)", len(r.Views))
	}

	_, err := fmt.Fprintf(f.writer, "%s as %s: %s (status %d in %d ms)\n",
		r.URL, r.Target, status, r.Status, r.Duration.Milliseconds())
	if err != nil {
		return err
	}

	for _, v := range r.Views {
		if _, err := fmt.Fprintf(f.writer, "  [%d] %s\n", v.Index, v.Repr); err != nil {
			return err
		}
		for _, a := range v.Accessors {
			if _, err := fmt.Fprintf(f.writer, "      %s = %s\n", a.Name, renderValue(a)); err != nil {
				return err
			}
		}
	}

	return nil
}

func renderValue(a results.AccessorValue) string {
	if a.Err != nil {
		return fmt.Sprintf("error: %v", a.Err)
	}
	data, err := json.Marshal(a.Value)
	if err != nil {
		return fmt.Sprintf("%v", a.Value)
	}
	return string(data)
}
