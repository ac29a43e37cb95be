// Package fetch performs paced GET requests for JSON documents.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jacoelho/jsonview/internal/sanitizer"
)

// HeaderRequestID carries the identifier attached to every request.
const HeaderRequestID = "X-Request-Id"

var ErrFetch = errors.New("fetch failed")

// Response is a fully read HTTP response.
type Response struct {
	URL       string
	RequestID string
	Status    int
	Header    http.Header
	Body      []byte // nil when the response had no body
	Duration  time.Duration
}

type Fetcher struct {
	client     *http.Client
	headers    map[string]string
	limiter    *rate.Limiter
	debug      io.Writer
	redactor   *sanitizer.Redactor
	requestIDs bool
}

type Option func(*Fetcher)

// WithHeaders adds headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		for k, v := range headers {
			f.headers[k] = v
		}
	}
}

// WithRateLimit paces requests. Zero or negative disables pacing.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(f *Fetcher) {
		f.limiter = newRateLimiter(requestsPerSecond)
	}
}

// WithDebug writes redacted request and response dumps to w.
// Header values are treated as secrets.
func WithDebug(w io.Writer) Option {
	return func(f *Fetcher) {
		f.debug = w
	}
}

// WithRequestIDs sets a fresh X-Request-Id on every request.
func WithRequestIDs() Option {
	return func(f *Fetcher) {
		f.requestIDs = true
	}
}

func New(client *http.Client, opts ...Option) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}

	f := &Fetcher{
		client:  client,
		headers: make(map[string]string),
		limiter: newRateLimiter(0),
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.debug != nil {
		secrets := make([]string, 0, len(f.headers))
		for _, v := range f.headers {
			secrets = append(secrets, v)
		}
		f.redactor = sanitizer.New("", secrets...)
	}

	return f
}

func newRateLimiter(requestsPerSecond float64) *rate.Limiter {
	if requestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}

	return rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
}

// Fetch performs a GET against url and reads the whole body.
// Non-2xx statuses are not errors; callers decide what a status means.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", ErrFetch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	req.Header.Set("Accept", "application/json")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	var requestID string
	if f.requestIDs {
		requestID = uuid.NewString()
		req.Header.Set(HeaderRequestID, requestID)
	}

	if f.debug != nil {
		f.dumpRequest(req)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrFetch, err)
	}
	duration := time.Since(start)

	if f.debug != nil {
		f.dumpResponse(resp, body)
	}

	if len(body) == 0 {
		body = nil
	}

	return &Response{
		URL:       url,
		RequestID: requestID,
		Status:    resp.StatusCode,
		Header:    resp.Header,
		Body:      body,
		Duration:  duration,
	}, nil
}

func (f *Fetcher) dumpRequest(req *http.Request) {
	dump, err := f.redactor.DumpRequest(req)
	if err != nil {
		_, _ = fmt.Fprintf(f.debug, "Error dumping request: %v\n", err)
		return
	}
	_, _ = fmt.Fprintf(f.debug, "--- REQUEST ---\n%s\n", dump)
}

func (f *Fetcher) dumpResponse(resp *http.Response, body []byte) {
	dump, err := f.redactor.DumpResponse(resp, body)
	if err != nil {
		_, _ = fmt.Fprintf(f.debug, "Error dumping response: %v\n", err)
		return
	}
	_, _ = fmt.Fprintf(f.debug, "--- RESPONSE ---\n%s\n", dump)
}
