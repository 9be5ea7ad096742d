// internal/appconfig/appconfig_test.go
package appconfig

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.RequestTimeout() != 120*time.Second {
		t.Fatalf("expected 120s timeout, got %v", cfg.RequestTimeout())
	}
	if cfg.Pacing() != 150*time.Millisecond {
		t.Fatalf("expected 150ms pacing, got %v", cfg.Pacing())
	}
	if cfg.Settle() != 500*time.Millisecond {
		t.Fatalf("expected 500ms settle, got %v", cfg.Settle())
	}
	if !cfg.IncludeDownload || !cfg.Warmup {
		t.Fatalf("expected download and warm-up enabled by default: %+v", cfg)
	}
	if len(cfg.WordCounts) != 20 {
		t.Fatalf("expected 20 default word counts, got %d", len(cfg.WordCounts))
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"no rounds":       func(c *Config) { c.Rounds = 0 },
		"no base url":     func(c *Config) { c.BaseURL = " " },
		"no word counts":  func(c *Config) { c.WordCounts = nil },
		"zero word count": func(c *Config) { c.WordCounts = []int{5, 0} },
		"negative pacing": func(c *Config) { c.PacingMs = -1 },
		"empty filler":    func(c *Config) { c.FillerPhrase = "" },
		"blank filler":    func(c *Config) { c.FillerPhrase = " \n\t " },
	}
	for name, mutate := range cases {
		cfg := Defaults()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestEndpointURLs(t *testing.T) {
	cfg := Defaults()
	if got := cfg.RunsyncURL(); got != "https://api.runpod.ai/v2/chatterbox-turbo/runsync" {
		t.Fatalf("runsync url: %s", got)
	}
	if got := cfg.EndpointLabel(); got != "chatterbox-turbo" {
		t.Fatalf("endpoint label: %s", got)
	}
	cfg.BaseURL = "http://127.0.0.1:8080/"
	if got := cfg.RunsyncURL(); got != "http://127.0.0.1:8080/runsync" {
		t.Fatalf("runsync url with trailing slash: %s", got)
	}
	if got := cfg.EndpointLabel(); got != "endpoint" {
		t.Fatalf("endpoint label without path: %s", got)
	}
}

func TestLabelOrDefault(t *testing.T) {
	if got := LabelOrDefault(nil); got != DefaultLabel {
		t.Fatalf("expected default label, got %q", got)
	}
	if got := LabelOrDefault([]string{"RTX", "4090"}); got != "RTX 4090" {
		t.Fatalf("expected joined label, got %q", got)
	}
}

func TestResolveAPIKey(t *testing.T) {
	cfg := Defaults()
	err := cfg.ResolveAPIKey(func(string) (string, bool) { return "", false })
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if !strings.Contains(err.Error(), DefaultAPIKeyEnv) {
		t.Fatalf("expected env var name in error, got %v", err)
	}

	cfg.APIKeyEnv = "OTHER_KEY"
	err = cfg.ResolveAPIKey(func(name string) (string, bool) {
		if name != "OTHER_KEY" {
			t.Fatalf("unexpected lookup of %s", name)
		}
		return " secret ", true
	})
	if err != nil {
		t.Fatalf("ResolveAPIKey: %v", err)
	}
	if cfg.APIKey != "secret" {
		t.Fatalf("expected trimmed key, got %q", cfg.APIKey)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}

	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("SYNCBENCH_TEST_DOTENV=from-file\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("SYNCBENCH_TEST_DOTENV") })
	if err := LoadDotEnv(envFile); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("SYNCBENCH_TEST_DOTENV"); got != "from-file" {
		t.Fatalf("expected value from .env, got %q", got)
	}
}

func TestShowConfigRedactsKey(t *testing.T) {
	cfg := Defaults()
	cfg.APIKey = "super-secret"
	var buf bytes.Buffer
	ShowConfig(&buf, "", cfg)
	out := buf.String()
	if strings.Contains(out, "super-secret") {
		t.Fatalf("api key leaked: %s", out)
	}
	if !strings.Contains(out, "<redacted>") || !strings.Contains(out, "No config file loaded") {
		t.Fatalf("unexpected output: %s", out)
	}
	if !strings.Contains(out, "chatterbox-turbo/runsync") {
		t.Fatalf("expected runsync url: %s", out)
	}
}
