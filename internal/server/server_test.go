package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/tipscan/pkg/errors"
	tio "github.com/matzehuels/tipscan/pkg/io"
	"github.com/matzehuels/tipscan/pkg/observability"
	"github.com/matzehuels/tipscan/pkg/observability/prom"
	"github.com/matzehuels/tipscan/pkg/pipeline"
	"github.com/matzehuels/tipscan/pkg/store"
)

const studyJSON = `{
  "energy": -3.8,
  "device": {"kind": "study", "half_width": 2, "tip": [4, 0]},
  "sweeps": [{"coupling": 1, "low": -5, "high": 5, "points": 3, "fixed": {"v": 0}}]
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	metrics := prom.New()
	metrics.Register()
	t.Cleanup(observability.Reset)

	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(nil, nil, store.NewMemoryStore(), logger)
	srv := New(runner, Options{Logger: logger, Metrics: metrics.Handler(), MaxWorkers: 2})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body := decode[map[string]string](t, resp); body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestSweepAndFetch(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/v1/sweeps", "application/json", strings.NewReader(studyJSON))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[sweepResponse](t, resp)
	if body.Error != "" {
		t.Errorf("error = %q", body.Error)
	}
	var doc tio.Document
	if err := json.Unmarshal(body.Result, &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Series) != 1 || len(doc.Series[0].T) != 3 || doc.RunID == "" {
		t.Fatalf("document = %+v", doc)
	}

	resp, err = http.Get(ts.URL + "/v1/sweeps/" + doc.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("fetch status = %d", resp.StatusCode)
	}
	rec := decode[store.Record](t, resp)
	if rec.ID != doc.RunID || rec.Model != doc.Model {
		t.Errorf("record = %+v", rec)
	}
}

func TestSweepErrors(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"malformed", `{"energy": `, "INVALID_CONFIG"},
		{"unknown field", `{"energi": 1}`, "INVALID_CONFIG"},
		{"no sweeps", `{"energy": 1}`, "INVALID_CONFIG"},
		{"missing parameter", `{"device": {"half_width": 1, "tip": [2, 0]}, "sweeps": [{"coupling": 1, "variable": "v", "low": 0, "high": 1, "points": 2}]}`, "MISSING_PARAMETER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/v1/sweeps", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if body := decode[errorBody](t, resp); body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q (%s)", body.Code, tt.wantCode, body.Message)
			}
		})
	}
}

func TestGetRunErrors(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/v1/sweeps/not-a-uuid")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad id: status = %d", resp.StatusCode)
	}
	resp, err = http.Get(ts.URL + "/v1/sweeps/6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown id: status = %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	if resp, err := http.Get(ts.URL + "/healthz"); err == nil {
		resp.Body.Close()
	}
	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), `tipscan_http_requests_total{method="GET",route="/healthz",status="200"}`) {
		t.Errorf("metrics lack the health request:\n%s", data)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"INVALID_CONFIG", 400},
		{"MISSING_PARAMETER", 400},
		{"LEAD_MISMATCH", 422},
		{"SOLVER_FAILURE", 422},
		{"INTERNAL_ERROR", 500},
	}
	for _, tt := range tests {
		if got := statusFor(errs.Code(tt.code)); got != tt.want {
			t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
