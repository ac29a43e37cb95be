package runner

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/jacoelho/jsonview/internal/config"
	"github.com/jacoelho/jsonview/internal/exit"
)

const shapesYAML = `shapes:
  - name: Zone
    split: "$[*]"
    accessors:
      - name: names
        path: "$.name"
      - name: id
        path: "$.id"
  - name: ZoneInfo
    accessors:
      - name: ids
        path: "$[*].id"
        result: sequence
      - name: first
        path: "$[0]"
        result: document
  - name: Bare
    accessors:
      - name: id
        path: "$.id"
`

func writeShapes(t *testing.T) string {
	t.Helper()

	filename := filepath.Join(t.TempDir(), "shapes.yaml")
	if err := os.WriteFile(filename, []byte(shapesYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return filename
}

func newTestServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/zones", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"name":"a","id":"X"},{"name":"b","id":"Y"},{"name":"a","id":"X"}]`))
	})
	mux.HandleFunc("/partial", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"name":"a"},{"name":"b","id":"X"}]`))
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`this is no json`))
	})
	mux.HandleFunc("/secret", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"name":"s","id":"` + r.Header.Get("Authorization") + `"}]`))
	})
	return httptest.NewServer(mux)
}

func TestRunnerEndToEnd(t *testing.T) {
	server := newTestServer()
	defer server.Close()
	shapes := writeShapes(t)

	tests := []struct {
		name       string
		cfg        config.Config
		paths      []string
		wantCode   int
		wantOutput []string
	}{
		{
			name:     "list collection",
			cfg:      config.Config{ShapeName: "Zone", Collection: "list"},
			paths:    []string{"/zones"},
			wantCode: exit.CodeSuccess,
			wantOutput: []string{
				"as list<Zone>: 3 view(s) (status 200",
				`      names = "a"`,
				`      id = "Y"`,
				"Decoded URLs:      1 (100.0%)",
				"Views:             3",
			},
		},
		{
			name:     "set collection drops duplicates",
			cfg:      config.Config{ShapeName: "Zone", Collection: "set"},
			paths:    []string{"/zones"},
			wantCode: exit.CodeSuccess,
			wantOutput: []string{
				"as set<Zone>: 2 view(s)",
				"Views:             2",
			},
		},
		{
			name:     "single view with sequence and document results",
			cfg:      config.Config{ShapeName: "ZoneInfo"},
			paths:    []string{"/zones"},
			wantCode: exit.CodeSuccess,
			wantOutput: []string{
				`      ids = ["X","Y","X"]`,
				`      first = {"id":"X","name":"a"}`,
			},
		},
		{
			name:     "missing path fails the accessor",
			cfg:      config.Config{ShapeName: "Zone", Collection: "list"},
			paths:    []string{"/partial"},
			wantCode: exit.CodeFailure,
			wantOutput: []string{
				"      id = error: Zone.id: no results for path: $.id",
				`      id = "X"`,
				"Accessor errors:   1",
			},
		},
		{
			name:     "suppressed missing path reads null",
			cfg:      config.Config{ShapeName: "Zone", Collection: "list", SuppressNotFound: true},
			paths:    []string{"/partial"},
			wantCode: exit.CodeSuccess,
			wantOutput: []string{
				"      id = null",
				"Accessor errors:   0",
			},
		},
		{
			name:     "absent and not found",
			cfg:      config.Config{ShapeName: "Bare"},
			paths:    []string{"/empty", "/missing"},
			wantCode: exit.CodeSuccess,
			wantOutput: []string{
				"/empty as Bare: Absent (status 204",
				"/missing as Bare: Absent (status 404",
				"Absent URLs:       2",
			},
		},
		{
			name:     "malformed body fails the url",
			cfg:      config.Config{ShapeName: "Bare"},
			paths:    []string{"/broken"},
			wantCode: exit.CodeFailure,
			wantOutput: []string{
				"/broken as Bare: Failed:",
				"Failed URLs:       1 (100.0%)",
			},
		},
		{
			name:     "selected accessors",
			cfg:      config.Config{ShapeName: "Zone", Collection: "queue", Accessors: []string{"id", "string"}},
			paths:    []string{"/zones"},
			wantCode: exit.CodeSuccess,
			wantOutput: []string{
				`      string = "Zone: {\"id\":\"X\",\"name\":\"a\"}"`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.ShapeFile = shapes
			cfg.OutputFormat = config.OutputText
			cfg.RequestTimeout = config.DefaultTimeout
			for _, p := range tt.paths {
				cfg.URLs = append(cfg.URLs, server.URL+p)
			}

			r, result := New(&cfg)
			if result != nil {
				t.Fatalf("New() exit result: %s", result.Message)
			}

			var stdout, stderr bytes.Buffer
			r.SetOutput(&stdout)
			r.SetErrorOutput(&stderr)

			code := r.Run(context.Background())
			if code != tt.wantCode {
				t.Errorf("Run() = %d, want %d\nstdout:\n%s\nstderr:\n%s", code, tt.wantCode, stdout.String(), stderr.String())
			}

			output := stdout.String()
			for _, want := range tt.wantOutput {
				if !strings.Contains(output, want) {
					t.Errorf("output missing %q\ngot:\n%s", want, output)
				}
			}
		})
	}
}

func TestRunnerJSONOutput(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	cfg := &config.Config{
		URLs:           []string{server.URL + "/zones"},
		ShapeFile:      writeShapes(t),
		ShapeName:      "Zone",
		Collection:     "list",
		OutputFormat:   config.OutputJSON,
		RequestTimeout: config.DefaultTimeout,
	}

	r, result := New(cfg)
	if result != nil {
		t.Fatalf("New() exit result: %s", result.Message)
	}

	var stdout bytes.Buffer
	r.SetOutput(&stdout)
	r.SetErrorOutput(nil)

	if code := r.Run(context.Background()); code != exit.CodeSuccess {
		t.Fatalf("Run() = %d, want 0\n%s", code, stdout.String())
	}

	var out struct {
		Results []struct {
			RequestID string `json:"request_id"`
			Views     []struct {
				Accessors []struct {
					Name  string `json:"name"`
					Value any    `json:"value"`
				} `json:"accessors"`
			} `json:"views"`
		} `json:"results"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout.String())
	}

	if len(out.Results) != 1 || len(out.Results[0].Views) != 3 {
		t.Fatalf("unexpected output shape: %s", stdout.String())
	}
	if out.Results[0].RequestID == "" {
		t.Error("request id missing from output")
	}
	if got := out.Results[0].Views[1].Accessors[1]; got.Name != "id" || got.Value != "Y" {
		t.Errorf("second view id = %+v, want id=Y", got)
	}
}

func TestRunnerDebugRedactsHeaders(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	cfg := &config.Config{
		URLs:           []string{server.URL + "/secret"},
		Debug:          true,
		ShapeFile:      writeShapes(t),
		ShapeName:      "Zone",
		Collection:     "list",
		OutputFormat:   config.OutputText,
		Headers:        map[string]string{"Authorization": "Bearer hunter2"},
		RequestTimeout: config.DefaultTimeout,
	}

	r, result := New(cfg)
	if result != nil {
		t.Fatalf("New() exit result: %s", result.Message)
	}

	var stdout, stderr bytes.Buffer
	r.SetOutput(&stdout)
	r.SetErrorOutput(&stderr)
	r.Run(context.Background())

	debug := stderr.String()
	if strings.Contains(debug, "hunter2") {
		t.Errorf("debug output leaks header value:\n%s", debug)
	}
	for _, want := range []string{"--- REQUEST ---", "--- RESPONSE ---", "jsonview: list<Zone>: split $[*] produced 1 fragment(s)"} {
		if !strings.Contains(debug, want) {
			t.Errorf("debug output missing %q:\n%s", want, debug)
		}
	}
}

func TestRunnerCancelledContext(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	cfg := &config.Config{
		URLs:           []string{server.URL + "/zones", server.URL + "/zones"},
		ShapeFile:      writeShapes(t),
		ShapeName:      "Bare",
		OutputFormat:   config.OutputText,
		RequestTimeout: config.DefaultTimeout,
	}

	r, result := New(cfg)
	if result != nil {
		t.Fatalf("New() exit result: %s", result.Message)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	r.SetOutput(&stdout)
	r.SetErrorOutput(&stderr)

	if code := r.Run(ctx); code != exit.CodeFailure {
		t.Errorf("Run() = %d, want %d", code, exit.CodeFailure)
	}
	if !strings.Contains(stderr.String(), "Interrupted after 0 of 2 URL(s)") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestNewErrors(t *testing.T) {
	shapes := writeShapes(t)

	tests := []struct {
		name    string
		cfg     config.Config
		wantMsg string
	}{
		{
			name:    "missing shape file",
			cfg:     config.Config{ShapeFile: shapes + ".missing", ShapeName: "Zone"},
			wantMsg: "Error loading shapes",
		},
		{
			name:    "unknown shape",
			cfg:     config.Config{ShapeFile: shapes, ShapeName: "Nope"},
			wantMsg: "Error resolving target",
		},
		{
			name:    "collection without split",
			cfg:     config.Config{ShapeFile: shapes, ShapeName: "Bare", Collection: "list"},
			wantMsg: "missing split expression",
		},
		{
			name:    "bad CA file",
			cfg:     config.Config{ShapeFile: shapes, ShapeName: "Zone", CACertFile: shapes},
			wantMsg: "Error creating runner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			_, result := New(&cfg)
			if result == nil {
				t.Fatal("New() expected exit result")
			}
			if result.ExitCode != exit.CodeFailure {
				t.Errorf("ExitCode = %d, want %d", result.ExitCode, exit.CodeFailure)
			}
			if !strings.Contains(result.Message, tt.wantMsg) {
				t.Errorf("Message = %q, want it to contain %q", result.Message, tt.wantMsg)
			}
		})
	}
}
