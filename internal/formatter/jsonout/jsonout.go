// Package jsonout writes a summary as a single indented JSON document.
package jsonout

import (
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/jacoelho/jsonview/internal/formatter"
	"github.com/jacoelho/jsonview/internal/results"
)

type Formatter struct {
	writer io.Writer
}

func New() formatter.Formatter {
	return &Formatter{writer: os.Stdout}
}

func NewWithWriter(writer io.Writer) formatter.Formatter {
	return &Formatter{writer: writer}
}

type accessorOut struct {
	Name  string `json:"name"`
	Value any    `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

type viewOut struct {
	Index     int           `json:"index"`
	Repr      string        `json:"repr"`
	Accessors []accessorOut `json:"accessors"`
}

type urlOut struct {
	URL        string    `json:"url"`
	RequestID  string    `json:"request_id,omitempty"`
	Status     int       `json:"status"`
	Target     string    `json:"target"`
	DurationMS int64     `json:"duration_ms"`
	Absent     bool      `json:"absent"`
	Views      []viewOut `json:"views"`
	Error      string    `json:"error,omitempty"`
}

type summaryOut struct {
	Results        []urlOut `json:"results"`
	FetchedURLs    int      `json:"fetched_urls"`
	DecodedURLs    int      `json:"decoded_urls"`
	AbsentURLs     int      `json:"absent_urls"`
	FailedURLs     int      `json:"failed_urls"`
	Views          int      `json:"views"`
	AccessorErrors int      `json:"accessor_errors"`
	DurationMS     int64    `json:"duration_ms"`
}

func (f *Formatter) Format(s *results.Summary) error {
	if s == nil {
		return nil
	}

	out := summaryOut{
		Results:        make([]urlOut, 0, len(s.Results)),
		FetchedURLs:    s.FetchedURLs,
		DecodedURLs:    s.DecodedURLs,
		AbsentURLs:     s.AbsentURLs,
		FailedURLs:     s.FailedURLs,
		Views:          s.Views,
		AccessorErrors: s.AccessorErrors,
		DurationMS:     s.TotalDuration.Milliseconds(),
	}

	for _, r := range s.Results {
		u := urlOut{
			URL:        r.URL,
			RequestID:  r.RequestID,
			Status:     r.Status,
			Target:     r.Target,
			DurationMS: r.Duration.Milliseconds(),
			Absent:     r.Absent,
			Views:      make([]viewOut, 0, len(r.Views)),
		}
		if r.Error != nil {
			u.Error = r.Error.Error()
		}
		for _, v := range r.Views {
			vo := viewOut{Index: v.Index, Repr: v.Repr, Accessors: make([]accessorOut, 0, len(v.Accessors))}
			for _, a := range v.Accessors {
				ao := accessorOut{Name: a.Name, Value: a.Value}
				if a.Err != nil {
					ao.Error = a.Err.Error()
				}
				vo.Accessors = append(vo.Accessors, ao)
			}
			u.Views = append(u.Views, vo)
		}
		out.Results = append(out.Results, u)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	_, err = f.writer.Write(data)
	return err
}
