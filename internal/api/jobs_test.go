package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/foldlab/foldd/internal/model"
)

func postJob(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/jobs", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST /v1/jobs: %v", err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// pollStatus polls GET /v1/jobs/{id} until the expected status or timeout.
func pollStatus(t *testing.T, ts *httptest.Server, id, expected string, timeout time.Duration) model.StatusRecord {
	t.Helper()
	deadline := time.Now().Add(timeout)
	var rec model.StatusRecord
	for time.Now().Before(deadline) {
		resp, err := http.Get(ts.URL + "/v1/jobs/" + id)
		if err != nil {
			t.Fatalf("GET status: %v", err)
		}
		if resp.StatusCode == http.StatusOK {
			decodeJSON(t, resp, &rec)
			if rec.Status == expected {
				return rec
			}
		} else {
			resp.Body.Close()
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not reach %q within %v (last: %+v)", id, expected, timeout, rec)
	return rec
}

func TestSubmitAndRetrieveLifecycle(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp := postJob(t, ts, `{"sequence": "AAAA", "params": {"protocol": "relax", "repeats": 1}}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("submit status = %d, want 202", resp.StatusCode)
	}
	var sub struct {
		JobID  string `json:"jobId"`
		Status string `json:"status"`
	}
	decodeJSON(t, resp, &sub)
	if sub.JobID == "" {
		t.Fatal("no jobId in response")
	}
	if sub.Status != model.StatusQueued {
		t.Errorf("submit status field = %q, want queued", sub.Status)
	}

	pollStatus(t, ts, sub.JobID, model.StatusSucceeded, 5*time.Second)

	resp, err := http.Get(ts.URL + "/v1/jobs/" + sub.JobID + "/artifact")
	if err != nil {
		t.Fatalf("GET artifact: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("artifact status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/octet-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, sub.JobID+".pdb") {
		t.Errorf("Content-Disposition = %q, want filename %s.pdb", cd, sub.JobID)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if !strings.Contains(string(data), "ATOM") {
		t.Errorf("artifact is not a PDB:\n%s", data)
	}
}

func TestSubmitValidationErrors(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"sequence": `},
		{"missing sequence", `{"directions": ["R"]}`},
		{"bad protocol", `{"sequence": "AA", "params": {"protocol": "anneal"}}`},
		{"bad repeats", `{"sequence": "AA", "params": {"repeats": -3}}`},
	}

	for _, tt := range tests {
		resp := postJob(t, ts, tt.body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tt.name, resp.StatusCode)
		}
	}
}

func TestGetJobNotFound(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/jobs/never-submitted")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetArtifactNotAvailable(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	// Unknown id.
	resp, err := http.Get(ts.URL + "/v1/jobs/never-submitted/artifact")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", resp.StatusCode)
	}
}

func TestExplicitJobIDRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp := postJob(t, ts, `{"jobId": "my-fold", "sequence": "ACDG"}`)
	var sub struct {
		JobID string `json:"jobId"`
	}
	decodeJSON(t, resp, &sub)
	if sub.JobID != "my-fold" {
		t.Errorf("jobId = %q, want my-fold", sub.JobID)
	}

	pollStatus(t, ts, "my-fold", model.StatusSucceeded, 5*time.Second)
}

func TestEnginesEndpoint(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/engines")
	if err != nil {
		t.Fatalf("GET /v1/engines: %v", err)
	}
	var engines []struct {
		Name      string `json:"name"`
		Available bool   `json:"available"`
	}
	decodeJSON(t, resp, &engines)
	if len(engines) != 1 || engines[0].Name != "stub" || !engines[0].Available {
		t.Errorf("engines = %+v, want [{stub true}]", engines)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp := postJob(t, ts, `{"sequence": "AAAA"}`)
	var sub struct {
		JobID string `json:"jobId"`
	}
	decodeJSON(t, resp, &sub)
	pollStatus(t, ts, sub.JobID, model.StatusSucceeded, 5*time.Second)

	statsResp, err := http.Get(ts.URL + "/v1/stats")
	if err != nil {
		t.Fatalf("GET /v1/stats: %v", err)
	}
	var stats struct {
		Total    int            `json:"total"`
		ByStatus map[string]int `json:"by_status"`
	}
	decodeJSON(t, statsResp, &stats)
	if stats.Total != 1 {
		t.Errorf("total = %d, want 1", stats.Total)
	}
	if stats.ByStatus[model.StatusSucceeded] != 1 {
		t.Errorf("by_status = %v, want succeeded:1", stats.ByStatus)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
