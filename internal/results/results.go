package results

import (
	"time"
)

// AccessorValue is the outcome of invoking one accessor on one view.
type AccessorValue struct {
	Name  string
	Value any
	Err   error
}

// ViewResult describes one decoded view.
type ViewResult struct {
	Index     int
	Repr      string // the view's string form
	Accessors []AccessorValue
}

// Errors counts accessors that failed.
func (v ViewResult) Errors() int {
	n := 0
	for _, a := range v.Accessors {
		if a.Err != nil {
			n++
		}
	}
	return n
}

// URLResult describes one fetched and decoded URL.
type URLResult struct {
	URL       string
	RequestID string
	Status    int
	Target    string
	Duration  time.Duration
	Absent    bool
	Views     []ViewResult
	Error     error // fetch or decode failure; accessor failures live in Views
}

type URLResultBuilder struct {
	result URLResult
}

func NewURLResultBuilder(url, target string) *URLResultBuilder {
	return &URLResultBuilder{
		result: URLResult{URL: url, Target: target},
	}
}

func (b *URLResultBuilder) WithResponse(requestID string, status int, duration time.Duration) *URLResultBuilder {
	b.result.RequestID = requestID
	b.result.Status = status
	b.result.Duration = duration
	return b
}

func (b *URLResultBuilder) WithAbsent() *URLResultBuilder {
	b.result.Absent = true
	return b
}

func (b *URLResultBuilder) WithView(v ViewResult) *URLResultBuilder {
	v.Index = len(b.result.Views)
	b.result.Views = append(b.result.Views, v)
	return b
}

func (b *URLResultBuilder) WithError(err error) *URLResultBuilder {
	b.result.Error = err
	return b
}

func (b *URLResultBuilder) Build() URLResult {
	return b.result
}

type Summary struct {
	Results        []URLResult
	FetchedURLs    int
	DecodedURLs    int
	AbsentURLs     int
	FailedURLs     int
	Views          int
	AccessorErrors int
	TotalDuration  time.Duration
}

func NewSummary(expectedURLs int) *Summary {
	return &Summary{
		Results: make([]URLResult, 0, expectedURLs),
	}
}

func (s *Summary) Add(builder *URLResultBuilder) {
	result := builder.Build()

	s.Results = append(s.Results, result)
	s.FetchedURLs++

	switch {
	case result.Error != nil:
		s.FailedURLs++
	case result.Absent:
		s.AbsentURLs++
	default:
		s.DecodedURLs++
	}

	s.Views += len(result.Views)
	for _, v := range result.Views {
		s.AccessorErrors += v.Errors()
	}
}

func (s *Summary) SetTotalDuration(duration time.Duration) {
	s.TotalDuration = duration
}

func (s *Summary) HasFailures() bool {
	return s.FailedURLs > 0
}

// DecodedPercentage returns the share of fetched URLs that decoded to content.
func (s *Summary) DecodedPercentage() float64 {
	if s.FetchedURLs == 0 {
		return 0.0
	}
	return float64(s.DecodedURLs) / float64(s.FetchedURLs) * 100
}

func (s *Summary) FailurePercentage() float64 {
	if s.FetchedURLs == 0 {
		return 0.0
	}
	return float64(s.FailedURLs) / float64(s.FetchedURLs) * 100
}
