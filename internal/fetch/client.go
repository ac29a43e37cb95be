package fetch

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"
)

const (
	// DefaultMaxRedirects matches the limit net/http applies on its own.
	DefaultMaxRedirects = 10
	// DefaultMaxConnsPerHost bounds concurrent connections to one API host.
	DefaultMaxConnsPerHost = 8
)

// ClientConfig holds the settings of the HTTP client documents are fetched with.
type ClientConfig struct {
	TLS *tls.Config
	// Timeout covers the whole exchange, body included. Zero means none.
	Timeout time.Duration
	// MaxRedirects is how many redirects are followed. Zero returns the
	// redirect response itself.
	MaxRedirects int
	// MaxConnsPerHost of zero uses DefaultMaxConnsPerHost.
	MaxConnsPerHost int
}

// NewClient builds an HTTP client from cfg. The transport starts from the
// net/http defaults, so proxies from the environment are honoured.
func NewClient(cfg ClientConfig) *http.Client {
	conns := cfg.MaxConnsPerHost
	if conns <= 0 {
		conns = DefaultMaxConnsPerHost
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = cfg.TLS
	transport.MaxConnsPerHost = conns
	transport.MaxIdleConnsPerHost = conns
	transport.MaxResponseHeaderBytes = 1 << 20
	if cfg.Timeout > 0 {
		transport.ResponseHeaderTimeout = cfg.Timeout
	}

	return &http.Client{
		Timeout:       cfg.Timeout,
		Transport:     transport,
		CheckRedirect: redirectPolicy(cfg.MaxRedirects),
	}
}

func redirectPolicy(limit int) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if limit <= 0 {
			return http.ErrUseLastResponse
		}
		if len(via) > limit {
			return fmt.Errorf("%w: stopped after %d redirects", ErrFetch, limit)
		}
		return nil
	}
}
