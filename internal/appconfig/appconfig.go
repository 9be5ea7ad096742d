// internal/appconfig/appconfig.go
// Package appconfig holds the run configuration, constructed once at startup.
package appconfig

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mwiater/syncbench/internal/cases"
)

const (
	// DefaultBaseURL is the public endpoint benchmarked when no other is configured.
	DefaultBaseURL = "https://api.runpod.ai/v2/chatterbox-turbo"
	// DefaultAPIKeyEnv names the environment variable holding the bearer token.
	DefaultAPIKeyEnv = "RUNPOD_API_KEY"
	// DefaultLabel is used when no hardware label is given on the command line.
	DefaultLabel = "unknown-gpu"

	defaultVoice          = "lucy"
	defaultRounds         = 3
	defaultPacingMs       = 150
	defaultSettleMs       = 500
	defaultTimeoutSeconds = 120
	defaultArtifactField  = "audio_url"
	defaultLogFile        = "syncbench.log"
)

// ErrMissingAPIKey is returned when the credential is absent from the environment.
var ErrMissingAPIKey = errors.New("missing API key")

// Config represents the complete, merged configuration of a benchmark run.
type Config struct {
	BaseURL         string `json:"baseURL" mapstructure:"baseURL"`
	Voice           string `json:"voice" mapstructure:"voice"`
	Rounds          int    `json:"rounds" mapstructure:"rounds"`
	PacingMs        int    `json:"pacingMs" mapstructure:"pacingMs"`
	SettleMs        int    `json:"settleMs" mapstructure:"settleMs"`
	Warmup          bool   `json:"warmup" mapstructure:"warmup"`
	TimeoutSeconds  int    `json:"timeout" mapstructure:"timeout"`
	IncludeDownload bool   `json:"includeDownload" mapstructure:"includeDownload"`
	ArtifactField   string `json:"artifactField" mapstructure:"artifactField"`
	OutputDir       string `json:"outputDir" mapstructure:"outputDir"`
	APIKeyEnv       string `json:"apiKeyEnv" mapstructure:"apiKeyEnv"`
	LogFile         string `json:"logFile,omitempty" mapstructure:"logFile"`
	WordCounts      []int  `json:"wordCounts" mapstructure:"wordCounts"`
	BasePhrase      string `json:"basePhrase" mapstructure:"basePhrase"`
	FillerPhrase    string `json:"fillerPhrase" mapstructure:"fillerPhrase"`
	ClosingMarker   string `json:"closingMarker" mapstructure:"closingMarker"`
	TUI             bool   `json:"tui" mapstructure:"tui"`

	Label      string `json:"-" mapstructure:"-"`
	APIKey     string `json:"-" mapstructure:"-"`
	ConfigPath string `json:"-" mapstructure:"-"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		BaseURL:         DefaultBaseURL,
		Voice:           defaultVoice,
		Rounds:          defaultRounds,
		PacingMs:        defaultPacingMs,
		SettleMs:        defaultSettleMs,
		Warmup:          true,
		TimeoutSeconds:  defaultTimeoutSeconds,
		IncludeDownload: true,
		ArtifactField:   defaultArtifactField,
		OutputDir:       ".",
		APIKeyEnv:       DefaultAPIKeyEnv,
		LogFile:         defaultLogFile,
		WordCounts:      append([]int(nil), cases.DefaultWordCounts...),
		BasePhrase:      cases.DefaultPhrases.Base,
		FillerPhrase:    cases.DefaultPhrases.Filler,
		ClosingMarker:   cases.DefaultPhrases.Closing,
		Label:           DefaultLabel,
	}
}

// Validate reports configuration that would make a run meaningless.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("baseURL is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("invalid baseURL %q: %w", c.BaseURL, err)
	}
	if c.Rounds < 1 {
		return fmt.Errorf("rounds must be at least 1, got %d", c.Rounds)
	}
	if c.PacingMs < 0 || c.SettleMs < 0 {
		return errors.New("pacingMs and settleMs must not be negative")
	}
	if len(c.WordCounts) == 0 {
		return errors.New("wordCounts must contain at least one size")
	}
	for _, w := range c.WordCounts {
		if w <= 0 {
			return fmt.Errorf("wordCounts must be positive, got %d", w)
		}
	}
	// Without filler words no case could grow past the base phrase.
	if cases.CountWords(c.FillerPhrase) == 0 {
		return errors.New("fillerPhrase must contain at least one word")
	}
	return nil
}

// RunsyncURL is the synchronous inference route of the endpoint.
func (c Config) RunsyncURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/runsync"
}

// EndpointLabel is the last path segment of the base URL, e.g. "chatterbox-turbo".
func (c Config) EndpointLabel() string {
	u, err := url.Parse(strings.TrimRight(c.BaseURL, "/"))
	if err != nil || u.Path == "" || u.Path == "/" {
		return "endpoint"
	}
	return path.Base(u.Path)
}

// RequestTimeout returns the hard timeout for a single call.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Pacing is the delay after every measured call.
func (c Config) Pacing() time.Duration {
	return time.Duration(c.PacingMs) * time.Millisecond
}

// Settle is the delay after the warm-up call.
func (c Config) Settle() time.Duration {
	return time.Duration(c.SettleMs) * time.Millisecond
}

// Phrases returns the prompt building blocks for case generation.
func (c Config) Phrases() cases.Phrases {
	return cases.Phrases{Base: c.BasePhrase, Filler: c.FillerPhrase, Closing: c.ClosingMarker}
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if p := c.LogFile; strings.TrimSpace(p) != "" {
		return p
	}
	return defaultLogFile
}

// LabelOrDefault joins the positional arguments into the run label.
func LabelOrDefault(args []string) string {
	label := strings.TrimSpace(strings.Join(args, " "))
	if label == "" {
		return DefaultLabel
	}
	return label
}

// LoadDotEnv loads KEY=value pairs from file into the process environment.
// A missing file is not an error.
func LoadDotEnv(file string) error {
	if err := godotenv.Load(file); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", file, err)
	}
	return nil
}

// ResolveAPIKey reads the credential named by APIKeyEnv using lookup.
func (c *Config) ResolveAPIKey(lookup func(string) (string, bool)) error {
	name := c.APIKeyEnv
	if strings.TrimSpace(name) == "" {
		name = DefaultAPIKeyEnv
	}
	key, ok := lookup(name)
	if !ok || strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: set %s in the environment", ErrMissingAPIKey, name)
	}
	c.APIKey = strings.TrimSpace(key)
	return nil
}
