package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/mediatopo/pkg/cache"
	"github.com/matzehuels/mediatopo/pkg/errors"
	"github.com/matzehuels/mediatopo/pkg/mediactl"
	"github.com/matzehuels/mediatopo/pkg/metrics"
	"github.com/matzehuels/mediatopo/pkg/observability"
	"github.com/matzehuels/mediatopo/pkg/pipeline"
)

func newTestServer(t *testing.T, source func(context.Context) (mediactl.Source, error)) *httptest.Server {
	t.Helper()
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, log.NewWithOptions(io.Discard, log.Options{}))
	runner.Renderer = func(_ context.Context, dot, _ string, format string) ([]byte, error) {
		return []byte(format + ":" + dot[:7]), nil
	}

	opts := pipeline.Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}

	reg := metrics.NewRegistry()
	s := &server{runner: runner, opts: opts, source: source, metrics: reg.Handler()}
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	return ts
}

func fixtureSource(t *testing.T) func(context.Context) (mediactl.Source, error) {
	t.Helper()
	data, err := os.ReadFile(fixturePath)
	if err != nil {
		t.Fatal(err)
	}
	return func(context.Context) (mediactl.Source, error) {
		return mediactl.Static{Label: "/dev/media0", Text: string(data)}, nil
	}
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func TestServeDiagrams(t *testing.T) {
	ts := newTestServer(t, fixtureSource(t))

	tests := []struct {
		path        string
		contentType string
		bodyPrefix  string
	}{
		{"/topology.dot", "text/vnd.graphviz; charset=utf-8", "digraph MediaTopology"},
		{"/topology.svg", "image/svg+xml", "svg:digraph"},
		{"/topology.png", "image/png", "png:digraph"},
		{"/topology.pdf", "application/pdf", "pdf:digraph"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, ts.URL+tt.path)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, body %s", resp.StatusCode, body)
			}
			if got := resp.Header.Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if resp.Header.Get(snapshotHeader) == "" {
				t.Error("missing snapshot id header")
			}
			if !strings.HasPrefix(body, tt.bodyPrefix) {
				t.Errorf("body = %.30q, want prefix %q", body, tt.bodyPrefix)
			}
		})
	}
}

func TestServeSnapshotIDsDiffer(t *testing.T) {
	ts := newTestServer(t, fixtureSource(t))

	first, _ := get(t, ts.URL+"/topology.dot")
	second, _ := get(t, ts.URL+"/topology.dot")
	if first.Header.Get(snapshotHeader) == second.Header.Get(snapshotHeader) {
		t.Error("each request should be a new snapshot")
	}
}

func TestServeUnknownDiagram(t *testing.T) {
	ts := newTestServer(t, fixtureSource(t))

	resp, body := get(t, ts.URL+"/topology.gif")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if !strings.Contains(body, "FILE_NOT_FOUND") {
		t.Errorf("body = %s", body)
	}
}

func TestServeModelAndAnalysis(t *testing.T) {
	ts := newTestServer(t, fixtureSource(t))

	resp, body := get(t, ts.URL+"/topology.json")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var model struct {
		Entities []json.RawMessage `json:"entities"`
	}
	if err := json.Unmarshal([]byte(body), &model); err != nil || len(model.Entities) != 7 {
		t.Errorf("model: %v, %d entities", err, len(model.Entities))
	}

	_, body = get(t, ts.URL+"/links")
	var links struct {
		Enabled  []json.RawMessage `json:"enabled"`
		Disabled []json.RawMessage `json:"disabled"`
		Unknown  []json.RawMessage `json:"unknown"`
	}
	if err := json.Unmarshal([]byte(body), &links); err != nil {
		t.Fatal(err)
	}
	if len(links.Enabled) != 5 || len(links.Disabled) != 4 || len(links.Unknown) != 5 {
		t.Errorf("links = %d/%d/%d, want 5/4/5", len(links.Enabled), len(links.Disabled), len(links.Unknown))
	}

	_, body = get(t, ts.URL+"/formats")
	var formats struct {
		OK         bool              `json:"ok"`
		Mismatches []json.RawMessage `json:"mismatches"`
	}
	if err := json.Unmarshal([]byte(body), &formats); err != nil {
		t.Fatal(err)
	}
	if formats.OK || len(formats.Mismatches) != 1 {
		t.Errorf("formats = %+v, want one mismatch", formats)
	}
}

func TestServeUpstreamError(t *testing.T) {
	ts := newTestServer(t, func(context.Context) (mediactl.Source, error) {
		return nil, errors.New(errors.ErrCodeUpstreamUnavailable, "media-ctl -d /dev/media0 failed")
	})

	resp, body := get(t, ts.URL+"/topology.svg")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
	var payload map[string]string
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatal(err)
	}
	if payload["code"] != "UPSTREAM_UNAVAILABLE" || !strings.Contains(payload["error"], "media-ctl") {
		t.Errorf("payload = %v", payload)
	}
}

func TestServeHealthAndMetrics(t *testing.T) {
	reg := metrics.NewRegistry()
	reg.Install()
	t.Cleanup(observability.Reset)

	ts := newTestServer(t, fixtureSource(t))

	resp, body := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"status":"ok"`) {
		t.Errorf("healthz = %d %s", resp.StatusCode, body)
	}

	get(t, ts.URL+"/topology.dot")
	get(t, ts.URL+"/topology.dot")
	if got := testutil.ToFloat64(reg.HTTPRequestsTotal.WithLabelValues("GET", "/topology.{format}", "200")); got != 2 {
		t.Errorf("requests for /topology.{format} = %v, want 2", got)
	}

	resp, body = get(t, ts.URL+"/metrics")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "go_goroutines") {
		t.Errorf("metrics endpoint = %d", resp.StatusCode)
	}
}

func TestDisplayAddr(t *testing.T) {
	if got := displayAddr(":8080"); got != "localhost:8080" {
		t.Errorf("displayAddr(:8080) = %q", got)
	}
	if got := displayAddr("0.0.0.0:9000"); got != "0.0.0.0:9000" {
		t.Errorf("displayAddr(0.0.0.0:9000) = %q", got)
	}
}
