// Package runsync performs one timed call against a synchronous inference endpoint
// and converts every failure into an outcome value.
package runsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mwiater/syncbench/benchmark"
	"github.com/mwiater/syncbench/internal/appconfig"
	"github.com/mwiater/syncbench/internal/logging"
)

const statusCompleted = "COMPLETED"

var nowFn = time.Now

// Client executes benchmark cases against a runsync route.
type Client struct {
	URL             string
	APIKey          string
	Voice           string
	ArtifactField   string
	IncludeDownload bool
	Timeout         time.Duration
	HTTPClient      *http.Client
}

// NewClient builds a client from the run configuration.
func NewClient(cfg *appconfig.Config) *Client {
	return &Client{
		URL:             cfg.RunsyncURL(),
		APIKey:          cfg.APIKey,
		Voice:           cfg.Voice,
		ArtifactField:   cfg.ArtifactField,
		IncludeDownload: cfg.IncludeDownload,
		Timeout:         cfg.RequestTimeout(),
		HTTPClient:      &http.Client{},
	}
}

type requestBody struct {
	Input requestInput `json:"input"`
}

type requestInput struct {
	Prompt string `json:"prompt"`
	Voice  string `json:"voice"`
}

// Execute performs exactly one primary call for c, plus the artifact fetch when
// enabled. It always returns an outcome; the round is left for the caller to set.
func (c *Client) Execute(ctx context.Context, bc benchmark.Case) benchmark.Outcome {
	out := benchmark.Outcome{
		CaseID:      bc.ID,
		TargetWords: bc.TargetWords,
		ActualWords: bc.ActualWords,
	}
	m, err := c.measure(ctx, bc)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.Measurement = m
	return out
}

func (c *Client) measure(ctx context.Context, bc benchmark.Case) (*benchmark.Measurement, error) {
	requestMs, status, body, err := c.post(ctx, bc)
	if err != nil {
		return nil, err
	}

	res, err := decodeResponse(status, body, c.artifactField())
	if err != nil {
		return nil, err
	}

	m := &benchmark.Measurement{
		RequestMs:   requestMs,
		TotalMs:     requestMs,
		Cost:        res.cost,
		ArtifactURL: res.artifactURL,
		JobID:       res.jobID,
		DelayMs:     res.delayMs,
		ExecutionMs: res.executionMs,
	}

	if !c.IncludeDownload {
		return m, nil
	}
	if res.artifactURL == "" {
		return nil, fmt.Errorf("no %s in response", c.artifactField())
	}

	downloadMs, size, err := c.download(ctx, res.artifactURL)
	if err != nil {
		return nil, err
	}
	m.DownloadMs = &downloadMs
	m.ArtifactBytes = &size
	m.TotalMs = requestMs + downloadMs
	return m, nil
}

// post issues the primary call. The timer covers sending the request and reading
// the whole response body.
func (c *Client) post(ctx context.Context, bc benchmark.Case) (float64, int, []byte, error) {
	payload := requestBody{Input: requestInput{Prompt: bc.Text, Voice: c.Voice}}
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("marshal runsync payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(data))
	if err != nil {
		return 0, 0, nil, fmt.Errorf("create runsync request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	logging.LogRequest("out", c.URL, bc.ID, payload)

	start := nowFn()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return 0, 0, nil, c.transportError("runsync", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	elapsed := millis(nowFn().Sub(start))
	if err != nil {
		return 0, 0, nil, c.transportError("runsync", err)
	}

	logging.LogRequest("in", c.URL, bc.ID, body)
	return elapsed, resp.StatusCode, body, nil
}

// download fetches the artifact and returns the elapsed milliseconds and byte count.
func (c *Client) download(ctx context.Context, artifactURL string) (float64, int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artifactURL, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("create artifact request: %w", err)
	}

	start := nowFn()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return 0, 0, c.transportError("artifact download", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, 0, fmt.Errorf("artifact download failed (%d)", resp.StatusCode)
	}

	n, err := io.Copy(io.Discard, resp.Body)
	elapsed := millis(nowFn().Sub(start))
	if err != nil {
		return 0, 0, c.transportError("artifact download", err)
	}
	return elapsed, int(n), nil
}

func (c *Client) transportError(what string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s timed out after %s", what, c.Timeout)
	}
	return fmt.Errorf("%s request failed: %w", what, err)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) artifactField() string {
	if f := strings.TrimSpace(c.ArtifactField); f != "" {
		return f
	}
	return "audio_url"
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
