package config

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/jacoelho/jsonview/internal/exit"
	"github.com/jacoelho/jsonview/internal/fetch"
	"github.com/jacoelho/jsonview/view"
)

const (
	// DefaultTimeout is the default timeout for HTTP requests.
	DefaultTimeout = 30 * time.Second

	OutputText = "text"
	OutputJSON = "json"
)

var (
	ErrNoArguments         = errors.New("no arguments provided")
	ErrNoURLs              = errors.New("no URLs specified")
	ErrNoShapeFile         = errors.New("--shapes is required")
	ErrNoShapeName         = errors.New("--shape is required")
	ErrInvalidHeaderFormat = errors.New("header must be in format name=value")
	ErrEmptyHeaderName     = errors.New("header name cannot be empty")
	ErrInvalidOutput       = errors.New("output must be text or json")
	ErrInvalidURL          = errors.New("URL must be absolute http or https")
	ErrNegativeLimit       = errors.New("limit cannot be negative")
)

// Config represents the complete configuration for the jsonview tool.
type Config struct {
	URLs  []string
	Debug bool

	// Decoding
	ShapeFile        string
	ShapeName        string
	Collection       string // empty decodes a single view
	SuppressNotFound bool
	Accessors        []string // empty prints every declared accessor
	OutputFormat     string

	// HTTP client configuration
	Headers        map[string]string
	Insecure       bool
	CACertFile     string
	RequestTimeout time.Duration
	RateLimit      float64 // Requests per second (0 = unlimited)
	MaxRedirects   int     // 0 returns redirect responses as they are
	MaxConns       int     // Connections per host (0 = fetch default)
}

// TLSConfig returns a TLS configuration based on the config settings.
func (c *Config) TLSConfig() (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: c.Insecure,
	}

	if c.CACertFile != "" {
		caCertPool, err := x509.SystemCertPool()
		if err != nil {
			caCertPool = x509.NewCertPool()
		}

		caCert, err := os.ReadFile(c.CACertFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate file %s: %w", c.CACertFile, err)
		}

		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate from %s", c.CACertFile)
		}

		tlsConfig.RootCAs = caCertPool
	}

	return tlsConfig, nil
}

// ClientConfig returns the HTTP client settings, TLS included.
func (c *Config) ClientConfig() (fetch.ClientConfig, error) {
	tlsConfig, err := c.TLSConfig()
	if err != nil {
		return fetch.ClientConfig{}, err
	}
	return fetch.ClientConfig{
		TLS:             tlsConfig,
		Timeout:         c.RequestTimeout,
		MaxRedirects:    c.MaxRedirects,
		MaxConnsPerHost: c.MaxConns,
	}, nil
}

// Target resolves the configured shape, and collection kind if any, against registry.
func (c *Config) Target(registry *view.Registry) (view.Target, error) {
	shape, err := registry.Require(c.ShapeName)
	if err != nil {
		return nil, err
	}
	if c.Collection == "" {
		return shape, nil
	}

	kind, err := view.ParseContainerKind(c.Collection)
	if err != nil {
		return nil, err
	}
	return view.Collection{Elem: shape, Kind: kind}, nil
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if len(c.URLs) == 0 {
		return ErrNoURLs
	}

	for _, raw := range c.URLs {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w, got: %s", ErrInvalidURL, raw)
		}
	}

	if c.ShapeFile == "" {
		return ErrNoShapeFile
	}
	if _, err := os.Stat(c.ShapeFile); err != nil {
		return fmt.Errorf("shape file %s not found: %w", c.ShapeFile, err)
	}

	if c.ShapeName == "" {
		return ErrNoShapeName
	}

	if c.Collection != "" {
		if _, err := view.ParseContainerKind(c.Collection); err != nil {
			return err
		}
	}

	if !slices.Contains([]string{OutputText, OutputJSON}, c.OutputFormat) {
		return fmt.Errorf("%w, got: %s", ErrInvalidOutput, c.OutputFormat)
	}

	if c.MaxRedirects < 0 {
		return fmt.Errorf("--max-redirects: %w, got: %d", ErrNegativeLimit, c.MaxRedirects)
	}
	if c.MaxConns < 0 {
		return fmt.Errorf("--max-conns: %w, got: %d", ErrNegativeLimit, c.MaxConns)
	}

	if c.CACertFile != "" {
		if _, err := os.Stat(c.CACertFile); err != nil {
			return fmt.Errorf("CA certificate file %s not found: %w", c.CACertFile, err)
		}
	}

	return nil
}

// headersFlag implements flag.Value for parsing multiple -header flags.
type headersFlag map[string]string

func (h headersFlag) String() string {
	var pairs []string
	for k, v := range h {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, v))
	}
	slices.Sort(pairs)
	return strings.Join(pairs, ",")
}

func (h headersFlag) Set(value string) error {
	name, v, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("%w, got: %s", ErrInvalidHeaderFormat, value)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyHeaderName
	}

	h[name] = v
	return nil
}

// listFlag implements flag.Value for repeatable string flags.
type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

// Parse parses command-line arguments and returns a validated Config.
// If parsing fails or help is requested, returns nil config and exit result.
func Parse(args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.Usagef("Error: %v\n\n%s", ErrNoArguments, Usage())
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)

	// Suppress the default usage and error output since we handle it ourselves
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)

	var (
		debug      = fs.Bool("debug", false, "Enable debug output showing request and response details")
		shapeFile  = fs.String("shapes", "", "Path to the YAML shape declaration file")
		shapeName  = fs.String("shape", "", "Name of the shape to decode into")
		collection = fs.String("collection", "", "Decode a collection: list, set or queue")
		suppress   = fs.Bool("suppress-not-found", false, "Read missing paths as null instead of failing")
		output     = fs.String("output", OutputText, "Output format: text or json")
		insecure   = fs.Bool("insecure", false, "Skip TLS certificate verification")
		caCertFile = fs.String("cacert", "", "Path to CA certificate file for TLS verification")
		timeout    = fs.Duration("timeout", DefaultTimeout, "HTTP request timeout")
		rateLimit  = fs.Float64("rate-limit", 0, "Rate limit in requests per second (0 for unlimited)")
		redirects  = fs.Int("max-redirects", fetch.DefaultMaxRedirects, "Redirects to follow (0 to return the redirect response)")
		maxConns   = fs.Int("max-conns", fetch.DefaultMaxConnsPerHost, "Concurrent connections per host")
		headers    = make(headersFlag)
		accessors  listFlag
	)

	fs.Var(headers, "header", "Request header in format name=value (can be used multiple times)")
	fs.Var(&accessors, "accessor", "Accessor to print (can be used multiple times, default all)")

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, exit.Success(Usage())
		}
		return nil, exit.Usagef("Error: failed to parse arguments: %v\n\n%s", err, Usage())
	}

	config := &Config{
		URLs:             fs.Args(),
		Debug:            *debug,
		ShapeFile:        *shapeFile,
		ShapeName:        *shapeName,
		Collection:       *collection,
		SuppressNotFound: *suppress,
		Accessors:        accessors,
		OutputFormat:     *output,
		Headers:          headers,
		Insecure:         *insecure,
		CACertFile:       *caCertFile,
		RequestTimeout:   *timeout,
		RateLimit:        *rateLimit,
		MaxRedirects:     *redirects,
		MaxConns:         *maxConns,
	}

	if err := config.Validate(); err != nil {
		return nil, exit.Usagef("Error: %v\n\n%s", err, Usage())
	}

	return config, nil
}

// Usage returns a usage string for the CLI tool.
func Usage() string {
	return `jsonview - decode JSON responses into path-bound views

Usage: jsonview [options] <url> [url...]

Options:
  --shapes FILE           YAML file declaring shapes (required)
  --shape NAME            Shape to decode into (required)
  --collection KIND       Decode a collection: list, set or queue (shape must declare split)
  --accessor NAME         Accessor to print (can be used multiple times, default all)
  --suppress-not-found    Read missing paths as null instead of failing
  --output FORMAT         Output format: text or json (default: text)
  --header NAME=VALUE     Request header (can be used multiple times)
  --debug                 Enable debug output showing request and response details
  --insecure              Skip TLS certificate verification
  --cacert FILE           Path to CA certificate file for TLS verification
  --timeout DURATION      HTTP request timeout (default: 30s)
  --rate-limit N          Rate limit in requests per second (0 for unlimited)
  --max-redirects N       Redirects to follow, 0 returns the redirect response (default: 10)
  --max-conns N           Concurrent connections per host (default: 8)
  -h, --help              Show this help message

Examples:
  jsonview --shapes shapes.yaml --shape ZoneInfo https://api.example.com/zones
  jsonview --shapes shapes.yaml --shape Zone --collection list https://api.example.com/zones
  jsonview --shapes shapes.yaml --shape Zone --collection set --accessor id --output json URL
  jsonview --shapes shapes.yaml --shape Zone --header "Authorization=Bearer xyz" URL`
}
