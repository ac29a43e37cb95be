package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jacoelho/jsonview/internal/exit"
	"github.com/jacoelho/jsonview/internal/fetch"
	"github.com/jacoelho/jsonview/view"
)

// generateTestCertificate creates a self-signed certificate for testing purposes
func generateTestCertificate() ([]byte, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}

	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{Organization: []string{"jsonview tests"}},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER}), nil
}

func writeShapeFile(t *testing.T) string {
	t.Helper()

	filename := filepath.Join(t.TempDir(), "shapes.yaml")
	if err := os.WriteFile(filename, []byte("shapes:\n  - name: Zone\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return filename
}

func TestParse(t *testing.T) {
	shapes := writeShapeFile(t)
	url := "https://api.example.com/zones"

	tests := []struct {
		name     string
		args     []string
		want     *Config
		wantCode int
		wantMsg  string
	}{
		{
			name: "minimal",
			args: []string{"jsonview", "--shapes", shapes, "--shape", "Zone", url},
			want: &Config{
				URLs:           []string{url},
				ShapeFile:      shapes,
				ShapeName:      "Zone",
				OutputFormat:   OutputText,
				Headers:        map[string]string{},
				RequestTimeout: DefaultTimeout,
				MaxRedirects:   fetch.DefaultMaxRedirects,
				MaxConns:       fetch.DefaultMaxConnsPerHost,
			},
		},
		{
			name: "all options",
			args: []string{
				"jsonview",
				"--shapes", shapes,
				"--shape", "Zone",
				"--collection", "set",
				"--suppress-not-found",
				"--accessor", "id",
				"--accessor", "names,count",
				"--output", "json",
				"--header", "Authorization=Bearer a=b",
				"--header", "X-Tenant=acme",
				"--debug",
				"--insecure",
				"--timeout", "5s",
				"--rate-limit", "2.5",
				"--max-redirects", "0",
				"--max-conns", "2",
				url, "http://localhost:8080/zones",
			},
			want: &Config{
				URLs:             []string{url, "http://localhost:8080/zones"},
				Debug:            true,
				ShapeFile:        shapes,
				ShapeName:        "Zone",
				Collection:       "set",
				SuppressNotFound: true,
				Accessors:        []string{"id", "names", "count"},
				OutputFormat:     OutputJSON,
				Headers:          map[string]string{"Authorization": "Bearer a=b", "X-Tenant": "acme"},
				Insecure:         true,
				RequestTimeout:   5 * time.Second,
				RateLimit:        2.5,
				MaxRedirects:     0,
				MaxConns:         2,
			},
		},
		{
			name:     "no arguments",
			args:     []string{},
			wantCode: exit.CodeUsage,
			wantMsg:  ErrNoArguments.Error(),
		},
		{
			name:     "help",
			args:     []string{"jsonview", "-h"},
			wantCode: exit.CodeSuccess,
			wantMsg:  "Usage: jsonview",
		},
		{
			name:     "no urls",
			args:     []string{"jsonview", "--shapes", shapes, "--shape", "Zone"},
			wantCode: exit.CodeUsage,
			wantMsg:  ErrNoURLs.Error(),
		},
		{
			name:     "relative url",
			args:     []string{"jsonview", "--shapes", shapes, "--shape", "Zone", "/zones"},
			wantCode: exit.CodeUsage,
			wantMsg:  ErrInvalidURL.Error(),
		},
		{
			name:     "missing shape file flag",
			args:     []string{"jsonview", "--shape", "Zone", url},
			wantCode: exit.CodeUsage,
			wantMsg:  ErrNoShapeFile.Error(),
		},
		{
			name:     "shape file does not exist",
			args:     []string{"jsonview", "--shapes", shapes + ".missing", "--shape", "Zone", url},
			wantCode: exit.CodeUsage,
			wantMsg:  "not found",
		},
		{
			name:     "missing shape name",
			args:     []string{"jsonview", "--shapes", shapes, url},
			wantCode: exit.CodeUsage,
			wantMsg:  ErrNoShapeName.Error(),
		},
		{
			name:     "unknown collection",
			args:     []string{"jsonview", "--shapes", shapes, "--shape", "Zone", "--collection", "bag", url},
			wantCode: exit.CodeUsage,
			wantMsg:  "unknown container kind",
		},
		{
			name:     "unknown output",
			args:     []string{"jsonview", "--shapes", shapes, "--shape", "Zone", "--output", "xml", url},
			wantCode: exit.CodeUsage,
			wantMsg:  ErrInvalidOutput.Error(),
		},
		{
			name:     "malformed header",
			args:     []string{"jsonview", "--shapes", shapes, "--shape", "Zone", "--header", "Authorization", url},
			wantCode: exit.CodeUsage,
			wantMsg:  ErrInvalidHeaderFormat.Error(),
		},
		{
			name:     "empty header name",
			args:     []string{"jsonview", "--shapes", shapes, "--shape", "Zone", "--header", " =x", url},
			wantCode: exit.CodeUsage,
			wantMsg:  ErrEmptyHeaderName.Error(),
		},
		{
			name:     "negative redirects",
			args:     []string{"jsonview", "--shapes", shapes, "--shape", "Zone", "--max-redirects", "-1", url},
			wantCode: exit.CodeUsage,
			wantMsg:  ErrNegativeLimit.Error(),
		},
		{
			name:     "negative connections",
			args:     []string{"jsonview", "--shapes", shapes, "--shape", "Zone", "--max-conns", "-3", url},
			wantCode: exit.CodeUsage,
			wantMsg:  "--max-conns",
		},
		{
			name:     "missing CA certificate",
			args:     []string{"jsonview", "--shapes", shapes, "--shape", "Zone", "--cacert", shapes + ".pem", url},
			wantCode: exit.CodeUsage,
			wantMsg:  "CA certificate file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, result := Parse(tt.args)

			if tt.want == nil {
				if result == nil {
					t.Fatalf("Parse() expected exit result, got config %+v", got)
				}
				if result.ExitCode != tt.wantCode {
					t.Errorf("Parse() exit code = %d, want %d", result.ExitCode, tt.wantCode)
				}
				if !strings.Contains(result.Message, tt.wantMsg) {
					t.Errorf("Parse() message = %q, want it to contain %q", result.Message, tt.wantMsg)
				}
				return
			}

			if result != nil {
				t.Fatalf("Parse() unexpected exit result: %s", result.Message)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTLSConfig(t *testing.T) {
	tempDir := t.TempDir()

	certPEM, err := generateTestCertificate()
	if err != nil {
		t.Fatal(err)
	}
	validCert := filepath.Join(tempDir, "ca.pem")
	if err := os.WriteFile(validCert, certPEM, 0o644); err != nil {
		t.Fatal(err)
	}
	invalidCert := filepath.Join(tempDir, "invalid.pem")
	if err := os.WriteFile(invalidCert, []byte("not a certificate"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("insecure without CA", func(t *testing.T) {
		cfg := &Config{Insecure: true}
		tlsConfig, err := cfg.TLSConfig()
		if err != nil {
			t.Fatalf("TLSConfig() error = %v", err)
		}
		if !tlsConfig.InsecureSkipVerify {
			t.Error("InsecureSkipVerify = false, want true")
		}
		if tlsConfig.RootCAs != nil {
			t.Error("RootCAs should be nil without a CA file")
		}
	})

	t.Run("valid CA", func(t *testing.T) {
		cfg := &Config{CACertFile: validCert}
		tlsConfig, err := cfg.TLSConfig()
		if err != nil {
			t.Fatalf("TLSConfig() error = %v", err)
		}
		if tlsConfig.RootCAs == nil {
			t.Error("RootCAs should be set")
		}
	})

	t.Run("invalid CA", func(t *testing.T) {
		cfg := &Config{CACertFile: invalidCert}
		if _, err := cfg.TLSConfig(); err == nil {
			t.Error("TLSConfig() expected error for invalid certificate")
		}
	})

	t.Run("unreadable CA", func(t *testing.T) {
		cfg := &Config{CACertFile: filepath.Join(tempDir, "missing.pem")}
		if _, err := cfg.TLSConfig(); err == nil {
			t.Error("TLSConfig() expected error for missing file")
		}
	})
}

func TestClientConfig(t *testing.T) {
	cfg := &Config{Insecure: true, RequestTimeout: 3 * time.Second, MaxRedirects: 4, MaxConns: 6}

	got, err := cfg.ClientConfig()
	if err != nil {
		t.Fatalf("ClientConfig() error = %v", err)
	}
	if got.TLS == nil || !got.TLS.InsecureSkipVerify {
		t.Errorf("TLS = %+v, want InsecureSkipVerify", got.TLS)
	}
	want := fetch.ClientConfig{TLS: got.TLS, Timeout: 3 * time.Second, MaxRedirects: 4, MaxConnsPerHost: 6}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ClientConfig() = %+v, want %+v", got, want)
	}

	cfg.CACertFile = filepath.Join(t.TempDir(), "missing.pem")
	if _, err := cfg.ClientConfig(); err == nil {
		t.Error("ClientConfig() expected error for missing CA file")
	}
}

func TestTarget(t *testing.T) {
	registry := view.NewRegistry()
	zone := view.MustShape("Zone", view.Path("id", "$.id"), view.Split("$[*]"))
	if err := registry.Register(zone); err != nil {
		t.Fatal(err)
	}

	t.Run("single", func(t *testing.T) {
		target, err := (&Config{ShapeName: "Zone"}).Target(registry)
		if err != nil {
			t.Fatalf("Target() error = %v", err)
		}
		if target != view.Target(zone) {
			t.Errorf("Target() = %v, want shape Zone", target)
		}
	})

	t.Run("collection", func(t *testing.T) {
		target, err := (&Config{ShapeName: "Zone", Collection: "queue"}).Target(registry)
		if err != nil {
			t.Fatalf("Target() error = %v", err)
		}
		want := view.QueueOf(zone)
		if target != view.Target(want) {
			t.Errorf("Target() = %v, want %v", target, want)
		}
	})

	t.Run("unknown shape", func(t *testing.T) {
		_, err := (&Config{ShapeName: "Missing"}).Target(registry)
		if !errors.Is(err, view.ErrConfiguration) {
			t.Errorf("Target() error = %v, want configuration error", err)
		}
	})

	t.Run("unknown collection", func(t *testing.T) {
		_, err := (&Config{ShapeName: "Zone", Collection: "bag"}).Target(registry)
		if !errors.Is(err, view.ErrConfiguration) {
			t.Errorf("Target() error = %v, want configuration error", err)
		}
	})
}

func TestHeadersFlagString(t *testing.T) {
	h := headersFlag{"B": "2", "A": "1"}
	if got := h.String(); got != "A=1,B=2" {
		t.Errorf("String() = %q, want %q", got, "A=1,B=2")
	}
}
