package runner

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/jacoelho/jsonview/decoder"
	"github.com/jacoelho/jsonview/document"
	"github.com/jacoelho/jsonview/internal/config"
	"github.com/jacoelho/jsonview/internal/exit"
	"github.com/jacoelho/jsonview/internal/fetch"
	"github.com/jacoelho/jsonview/internal/formatter"
	"github.com/jacoelho/jsonview/internal/formatter/jsonout"
	"github.com/jacoelho/jsonview/internal/formatter/stdout"
	"github.com/jacoelho/jsonview/internal/results"
	"github.com/jacoelho/jsonview/internal/shapefile"
	"github.com/jacoelho/jsonview/view"
)

type Runner struct {
	config    *config.Config
	client    *http.Client
	target    view.Target
	shape     *view.Shape // element shape for collections
	output    io.Writer
	errOutput io.Writer
}

func New(cfg *config.Config) (*Runner, *exit.Result) {
	registry, err := shapefile.Load(cfg.ShapeFile)
	if err != nil {
		return nil, exit.Errorf("Error loading shapes: %v\n", err)
	}

	target, err := cfg.Target(registry)
	if err != nil {
		return nil, exit.Errorf("Error resolving target: %v\n", err)
	}

	shape, coll, err := decoder.Resolve(target)
	if err != nil {
		return nil, exit.Errorf("Error resolving target: %v\n", err)
	}
	if coll != nil {
		shape = coll.Elem
	}

	clientConfig, err := cfg.ClientConfig()
	if err != nil {
		return nil, exit.Errorf("Error creating runner: %v\n", err)
	}

	return &Runner{
		config:    cfg,
		client:    fetch.NewClient(clientConfig),
		target:    target,
		shape:     shape,
		output:    os.Stdout,
		errOutput: os.Stderr,
	}, nil
}

func (r *Runner) SetOutput(w io.Writer) {
	r.output = w
}

func (r *Runner) SetErrorOutput(w io.Writer) {
	r.errOutput = w
}

func (r *Runner) payloadWriter() io.Writer {
	if r.output == nil {
		return io.Discard
	}
	return r.output
}

func (r *Runner) errorWriter() io.Writer {
	if r.errOutput == nil {
		return io.Discard
	}
	return r.errOutput
}

func (r *Runner) logf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.errorWriter(), format, args...)
}

func (r *Runner) formatter() formatter.Formatter {
	if r.config.OutputFormat == config.OutputJSON {
		return jsonout.NewWithWriter(r.payloadWriter())
	}
	return stdout.NewWithWriter(r.payloadWriter())
}

func (r *Runner) fetcher() *fetch.Fetcher {
	opts := []fetch.Option{
		fetch.WithHeaders(r.config.Headers),
		fetch.WithRateLimit(r.config.RateLimit),
		fetch.WithRequestIDs(),
	}
	if r.config.Debug {
		opts = append(opts, fetch.WithDebug(r.errorWriter()))
	}
	return fetch.New(r.client, opts...)
}

func (r *Runner) decoder() *decoder.Decoder {
	opts := []decoder.Option{
		decoder.WithConfig(document.Config{SuppressNotFound: r.config.SuppressNotFound}),
	}
	if r.config.Debug {
		opts = append(opts, decoder.WithTrace(r.errorWriter()))
	}
	return decoder.New(opts...)
}

// Run fetches and decodes every configured URL, prints the summary and
// returns the process exit code.
func (r *Runner) Run(ctx context.Context) int {
	summary, err := r.Execute(ctx)

	if fmtErr := r.formatter().Format(summary); fmtErr != nil {
		r.logf("Error formatting results: %v\n", fmtErr)
	}

	if err != nil {
		r.logf("\nInterrupted after %d of %d URL(s): %v\n", summary.FetchedURLs, len(r.config.URLs), err)
		return exit.CodeFailure
	}
	if summary.HasFailures() || summary.AccessorErrors > 0 {
		return exit.CodeFailure
	}
	return exit.CodeSuccess
}

// Execute processes every URL in order. The returned error is only set when
// ctx ends the run early; per-URL failures are recorded in the summary.
func (r *Runner) Execute(ctx context.Context) (*results.Summary, error) {
	f := r.fetcher()
	d := r.decoder()
	s := results.NewSummary(len(r.config.URLs))

	overallStart := time.Now()
	defer func() {
		s.SetTotalDuration(time.Since(overallStart))
	}()

	for _, url := range r.config.URLs {
		select {
		case <-ctx.Done():
			return s, ctx.Err()
		default:
		}

		s.Add(r.process(ctx, f, d, url))
	}

	return s, nil
}

func (r *Runner) process(ctx context.Context, f *fetch.Fetcher, d *decoder.Decoder, url string) *results.URLResultBuilder {
	b := results.NewURLResultBuilder(url, fmt.Sprint(r.target))

	resp, err := f.Fetch(ctx, url)
	if err != nil {
		return b.WithError(err)
	}
	b.WithResponse(resp.RequestID, resp.Status, resp.Duration)

	decoded, err := d.DecodeBytes(resp.Status, resp.Body, r.target)
	if err != nil {
		return b.WithError(err)
	}
	if decoded == nil {
		return b.WithAbsent()
	}

	if decoded.View != nil {
		return b.WithView(r.inspect(decoded.View))
	}
	for v := range decoded.Views.All() {
		b.WithView(r.inspect(v))
	}
	return b
}

func (r *Runner) accessors() []string {
	if len(r.config.Accessors) > 0 {
		return r.config.Accessors
	}
	return r.shape.Accessors()
}

func (r *Runner) inspect(v *view.View) results.ViewResult {
	vr := results.ViewResult{Repr: v.String()}

	for _, name := range r.accessors() {
		value, err := v.Invoke(name)
		if doc, ok := value.(*document.Document); ok {
			value = doc.Value()
		}
		vr.Accessors = append(vr.Accessors, results.AccessorValue{Name: name, Value: value, Err: err})
	}

	return vr
}
