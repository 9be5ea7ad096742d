package runsync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mwiater/syncbench/benchmark"
)

var testCase = benchmark.Case{ID: "case-01", TargetWords: 5, ActualWords: 13, Text: "hello there"}

func newTestClient(url string, download bool) *Client {
	return &Client{
		URL:             url,
		APIKey:          "test-key",
		Voice:           "lucy",
		ArtifactField:   "audio_url",
		IncludeDownload: download,
		Timeout:         2 * time.Second,
		HTTPClient:      &http.Client{},
	}
}

func TestExecuteSuccessWithDownload(t *testing.T) {
	artifact := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer artifact.Close()

	var gotBody requestBody
	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"job-1","status":"COMPLETED","delayTime":12,"executionTime":340,"output":{"audio_url":"` + artifact.URL + `/a.wav","cost":0.0021}}`))
	}))
	defer endpoint.Close()

	out := newTestClient(endpoint.URL, true).Execute(context.Background(), testCase)
	if !out.OK() {
		t.Fatalf("expected success, got error %q", out.Error)
	}
	if gotBody.Input.Prompt != "hello there" || gotBody.Input.Voice != "lucy" {
		t.Fatalf("unexpected request body: %+v", gotBody)
	}
	if out.CaseID != "case-01" || out.TargetWords != 5 || out.ActualWords != 13 {
		t.Fatalf("case fields not propagated: %+v", out)
	}
	if out.DownloadMs == nil || out.ArtifactBytes == nil || *out.ArtifactBytes != 2048 {
		t.Fatalf("expected download measurement, got %+v", out.Measurement)
	}
	if out.TotalMs != out.RequestMs+*out.DownloadMs {
		t.Fatalf("total %v != request %v + download %v", out.TotalMs, out.RequestMs, *out.DownloadMs)
	}
	if out.Cost == nil || *out.Cost != 0.0021 {
		t.Fatalf("expected cost to be propagated, got %v", out.Cost)
	}
	if out.JobID != "job-1" || out.ExecutionMs == nil || *out.ExecutionMs != 340 {
		t.Fatalf("expected server fields, got %+v", out.Measurement)
	}
	if !strings.HasSuffix(out.ArtifactURL, "/a.wav") {
		t.Fatalf("expected artifact url, got %q", out.ArtifactURL)
	}
}

func TestExecuteWithoutDownload(t *testing.T) {
	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":{}}`))
	}))
	defer endpoint.Close()

	out := newTestClient(endpoint.URL, false).Execute(context.Background(), testCase)
	if !out.OK() {
		t.Fatalf("expected success, got %q", out.Error)
	}
	if out.DownloadMs != nil || out.ArtifactBytes != nil || out.Cost != nil {
		t.Fatalf("expected no download or cost, got %+v", out.Measurement)
	}
	if out.TotalMs != out.RequestMs {
		t.Fatalf("total should equal request time without download")
	}
}

func TestExecuteBlankErrorFieldIsNotAFailure(t *testing.T) {
	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"job-2","status":"COMPLETED","error":"","output":{"cost":0.5}}`))
	}))
	defer endpoint.Close()

	out := newTestClient(endpoint.URL, false).Execute(context.Background(), testCase)
	if !out.OK() {
		t.Fatalf("expected success, got %q", out.Error)
	}
	if out.JobID != "job-2" || out.Cost == nil || *out.Cost != 0.5 {
		t.Fatalf("unexpected measurement %+v", out.Measurement)
	}
}

func TestExecuteTopLevelOutputFallback(t *testing.T) {
	artifact := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("abc"))
	}))
	defer artifact.Close()

	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"audio_url":"` + artifact.URL + `"}`))
	}))
	defer endpoint.Close()

	out := newTestClient(endpoint.URL, true).Execute(context.Background(), testCase)
	if !out.OK() || *out.ArtifactBytes != 3 {
		t.Fatalf("expected success from top-level output, got %+v / %q", out.Measurement, out.Error)
	}
}

func TestExecuteFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		download bool
		want     string
	}{
		{"http error with error field", http.StatusInternalServerError, `{"error":"worker crashed"}`, true, "runsync failed (500): worker crashed"},
		{"http error with raw body", http.StatusUnauthorized, `denied`, true, "runsync failed (401): denied"},
		{"http error with empty body", http.StatusBadGateway, ``, true, "runsync failed (502): unknown error"},
		{"http error with blank error field", http.StatusInternalServerError, `{"error":""}`, true, `runsync failed (500): {"error":""}`},
		{"not json", http.StatusOK, `<html>`, false, "malformed runsync response"},
		{"empty body", http.StatusOK, ``, false, "malformed runsync response: empty body"},
		{"schema violation", http.StatusOK, `{"output":"text"}`, false, "malformed runsync response"},
		{"error in ok body", http.StatusOK, `{"error":{"code":7}}`, false, `runsync error: {"code":7}`},
		{"job not completed", http.StatusOK, `{"id":"j9","status":"IN_PROGRESS"}`, false, "runsync job j9 not completed (status IN_PROGRESS)"},
		{"missing artifact", http.StatusOK, `{"output":{"cost":1}}`, true, "no audio_url in response"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer endpoint.Close()

			out := newTestClient(endpoint.URL, tc.download).Execute(context.Background(), testCase)
			if out.OK() || out.Measurement != nil {
				t.Fatalf("expected failure outcome, got %+v", out)
			}
			if !strings.Contains(out.Error, tc.want) {
				t.Fatalf("expected error containing %q, got %q", tc.want, out.Error)
			}
		})
	}
}

func TestExecuteArtifactDownloadFailure(t *testing.T) {
	artifact := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer artifact.Close()

	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":{"audio_url":"` + artifact.URL + `"}}`))
	}))
	defer endpoint.Close()

	out := newTestClient(endpoint.URL, true).Execute(context.Background(), testCase)
	if out.OK() {
		t.Fatalf("primary success alone must not count as success")
	}
	if out.Error != "artifact download failed (404)" {
		t.Fatalf("unexpected error %q", out.Error)
	}
}

func TestExecuteTimeout(t *testing.T) {
	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer endpoint.Close()

	client := newTestClient(endpoint.URL, false)
	client.Timeout = 50 * time.Millisecond

	out := client.Execute(context.Background(), testCase)
	if out.OK() {
		t.Fatalf("expected timeout failure")
	}
	if out.Error != "runsync timed out after 50ms" {
		t.Fatalf("unexpected timeout error %q", out.Error)
	}
}

func TestExecuteUsesInjectedClock(t *testing.T) {
	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":{}}`))
	}))
	defer endpoint.Close()

	base := time.Unix(0, 0)
	ticks := []time.Duration{0, 250 * time.Millisecond}
	orig := nowFn
	nowFn = func() time.Time {
		d := ticks[0]
		if len(ticks) > 1 {
			ticks = ticks[1:]
		}
		return base.Add(d)
	}
	t.Cleanup(func() { nowFn = orig })

	out := newTestClient(endpoint.URL, false).Execute(context.Background(), testCase)
	if !out.OK() || out.RequestMs != 250 {
		t.Fatalf("expected 250ms request, got %+v / %q", out.Measurement, out.Error)
	}
}
