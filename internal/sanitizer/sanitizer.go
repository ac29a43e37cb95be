package sanitizer

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"

	"github.com/google/uuid"
)

// Redactor replaces secret values in request and response dumps with
// [S256:hash] tokens. The same secret always maps to the same token for
// a given salt, so dumps stay comparable without exposing the value.
type Redactor struct {
	salt    string
	secrets [][]byte
}

// New returns a Redactor for the given secrets. Empty secrets are ignored.
// An empty salt is replaced by a random one.
func New(salt string, secrets ...string) *Redactor {
	if salt == "" {
		salt = uuid.NewString()
	}

	r := &Redactor{salt: salt}
	for _, s := range secrets {
		if s != "" {
			r.secrets = append(r.secrets, []byte(s))
		}
	}
	return r
}

// DumpRequest dumps an outgoing HTTP request with secrets redacted.
func (r *Redactor) DumpRequest(req *http.Request) ([]byte, error) {
	dump, err := httputil.DumpRequestOut(req, true)
	if err != nil {
		return nil, fmt.Errorf("failed to dump request: %w", err)
	}

	return r.Redact(dump), nil
}

// DumpResponse dumps an HTTP response whose body was already read into body.
func (r *Redactor) DumpResponse(resp *http.Response, body []byte) ([]byte, error) {
	clone := new(http.Response)
	*clone = *resp
	clone.Body = io.NopCloser(bytes.NewReader(body))

	dump, err := httputil.DumpResponse(clone, true)
	if err != nil {
		return nil, fmt.Errorf("failed to dump response: %w", err)
	}

	return r.Redact(dump), nil
}

// Redact returns data with every secret replaced. data is returned as is
// when nothing matches.
func (r *Redactor) Redact(data []byte) []byte {
	if len(r.secrets) == 0 || len(data) == 0 {
		return data
	}

	var out []byte
	changed := false

	for _, needle := range r.secrets {
		if !bytes.Contains(data, needle) {
			continue
		}
		if !changed {
			out = make([]byte, len(data))
			copy(out, data)
			changed = true
		}

		out = bytes.ReplaceAll(out, needle, hashToken(needle, r.salt))
	}
	if changed {
		return out
	}
	return data
}

func hashToken(secret []byte, salt string) []byte {
	sum := sha256.Sum256(append([]byte(salt), secret...))
	hex := hex.EncodeToString(sum[:8])
	return []byte("[S256:" + hex + "]")
}
