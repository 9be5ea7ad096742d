package benchmark

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	bench "github.com/mwiater/syncbench/benchmark"
)

var unsafeLabelChars = regexp.MustCompile(`[^A-Za-z0-9]+`)

// SanitizeLabel replaces every run of non-alphanumeric characters with "-",
// so "RTX 4090" becomes "RTX-4090".
func SanitizeLabel(s string) string {
	return unsafeLabelChars.ReplaceAllString(s, "-")
}

// ReportTimestamp formats t as ISO-8601 UTC with ":" and "." replaced by "-".
func ReportTimestamp(t time.Time) string {
	ts := t.UTC().Format("2006-01-02T15:04:05.000Z")
	return strings.NewReplacer(":", "-", ".", "-").Replace(ts)
}

// ReportFileName builds bench-<endpoint>-<label>-<timestamp>.json.
func ReportFileName(endpointLabel, label string, t time.Time) string {
	return fmt.Sprintf("bench-%s-%s-%s.json", SanitizeLabel(endpointLabel), SanitizeLabel(label), ReportTimestamp(t))
}

// WriteReport persists the report into dir and returns the file path.
func WriteReport(dir string, report bench.Report) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating results directory: %w", err)
	}
	fileName := filepath.Join(dir, ReportFileName(report.EndpointLabel, report.Label, report.FinishedAt))

	file, err := os.Create(fileName)
	if err != nil {
		return "", fmt.Errorf("error creating result file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("error writing results to file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("error closing result file: %w", err)
	}
	return fileName, nil
}

// LoadReport reads a report written by WriteReport.
func LoadReport(path string) (bench.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return bench.Report{}, fmt.Errorf("read report %s: %w", path, err)
	}
	var report bench.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return bench.Report{}, fmt.Errorf("parse report %s: %w", path, err)
	}
	return report, nil
}
