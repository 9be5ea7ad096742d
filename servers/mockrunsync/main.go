// main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"
)

// RunsyncRequest mirrors the body the benchmark client sends.
type RunsyncRequest struct {
	Input struct {
		Prompt string `json:"prompt"`
		Voice  string `json:"voice"`
	} `json:"input"`
}

type RunsyncResponse struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	DelayTime     float64        `json:"delayTime"`
	ExecutionTime float64        `json:"executionTime"`
	Output        map[string]any `json:"output,omitempty"`
	Error         string         `json:"error,omitempty"`
}

type Config struct {
	Host          string  `yaml:"host"`
	Port          int     `yaml:"port"`
	APIKey        string  `yaml:"api_key"`
	BaseMs        int     `yaml:"base_ms"`
	PerWordMs     int     `yaml:"per_word_ms"`
	BytesPerWord  int     `yaml:"bytes_per_word"`
	CostPerWord   float64 `yaml:"cost_per_word"`
	FailEvery     int     `yaml:"fail_every"`
	ArtifactField string  `yaml:"artifact_field"`
}

// Server answers runsync calls one at a time, like a single-worker endpoint.
type Server struct {
	mu        sync.Mutex
	cfg       *Config
	calls     int
	artifacts map[string]int
	baseURL   string
	sleep     func(context.Context, time.Duration) error
}

func main() {
	path := flag.String("config", "servers/mockrunsync/mockrunsync.yml", "path to the mock server config")
	flag.Parse()

	cfg, err := loadConfig(*path)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s := NewServer(cfg, "http://"+addr)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("mockrunsync config: base_ms=%d per_word_ms=%d bytes_per_word=%d fail_every=%d", cfg.BaseMs, cfg.PerWordMs, cfg.BytesPerWord, cfg.FailEvery)
	log.Printf("listening on %s (point baseURL at http://%s)", addr, addr)
	log.Fatal(srv.ListenAndServe())
}

// NewServer builds a server whose artifact links are rooted at baseURL.
func NewServer(cfg *Config, baseURL string) *Server {
	return &Server{
		cfg:       cfg,
		artifacts: make(map[string]int),
		baseURL:   strings.TrimRight(baseURL, "/"),
		sleep:     sleepContext,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("POST /runsync", s.handleRunsync)
	mux.HandleFunc("GET /artifacts/{id}", s.handleArtifact)
	return mux
}

func (s *Server) handleRunsync(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.APIKey != "" && r.Header.Get("Authorization") != "Bearer "+s.cfg.APIKey {
		writeJSON(w, http.StatusUnauthorized, RunsyncResponse{Status: "FAILED", Error: "unauthorized"})
		return
	}

	var req RunsyncRequest
	if err := decodeJSON(w, r, &req, 1<<20); err != nil {
		log.Printf("runsync decode error: %v", err)
		writeJSON(w, http.StatusBadRequest, RunsyncResponse{Status: "FAILED", Error: "invalid JSON: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Input.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, RunsyncResponse{Status: "FAILED", Error: "input.prompt is required"})
		return
	}

	s.calls++
	if s.cfg.FailEvery > 0 && s.calls%s.cfg.FailEvery == 0 {
		log.Printf("runsync call %d: injected failure", s.calls)
		writeJSON(w, http.StatusInternalServerError, RunsyncResponse{Status: "FAILED", Error: "injected failure"})
		return
	}

	words := len(strings.Fields(req.Input.Prompt))
	execution := time.Duration(s.cfg.BaseMs+s.cfg.PerWordMs*words) * time.Millisecond
	start := time.Now()
	if err := s.sleep(r.Context(), execution); err != nil {
		log.Printf("runsync call %d abandoned: %v", s.calls, err)
		return
	}

	id := uuid.NewString()
	s.artifacts[id] = words * s.cfg.BytesPerWord
	log.Printf("runsync call %d: words=%d voice=%s elapsed=%s", s.calls, words, req.Input.Voice, time.Since(start))

	writeJSON(w, http.StatusOK, RunsyncResponse{
		ID:            id,
		Status:        "COMPLETED",
		ExecutionTime: float64(execution.Milliseconds()),
		Output: map[string]any{
			s.artifactField(): s.baseURL + "/artifacts/" + id,
			"cost":            float64(words) * s.cfg.CostPerWord,
		},
	})
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	size, ok := s.artifacts[r.PathValue("id")]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(make([]byte, size))
}

func (s *Server) artifactField() string {
	if f := strings.TrimSpace(s.cfg.ArtifactField); f != "" {
		return f
	}
	return "audio_url"
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Config{Host: "127.0.0.1", Port: 8089, BaseMs: 150, PerWordMs: 4, BytesPerWord: 4800}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.BaseMs < 0 || cfg.PerWordMs < 0 || cfg.BytesPerWord < 0 {
		return nil, errors.New("base_ms, per_word_ms and bytes_per_word must not be negative")
	}
	return &cfg, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any, maxBytes int64) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
