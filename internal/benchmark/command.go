package benchmark

import (
	"context"
	"fmt"

	bench "github.com/mwiater/syncbench/benchmark"
	"github.com/mwiater/syncbench/internal/appconfig"
	"github.com/mwiater/syncbench/internal/cases"
	"github.com/mwiater/syncbench/internal/logging"
)

var writeReportFn = WriteReport

// RunBenchmark generates the cases, runs every round and persists the report.
// It returns the report and the path it was written to.
func RunBenchmark(ctx context.Context, cfg *appconfig.Config, exec Executor, obs Observer) (bench.Report, string, error) {
	if cfg == nil {
		return bench.Report{}, "", fmt.Errorf("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return bench.Report{}, "", fmt.Errorf("invalid configuration: %w", err)
	}

	cs := cases.Generate(cfg.WordCounts, cfg.Phrases())
	logging.LogEvent("Generated %d cases for %s (%s)", len(cs), cfg.Label, cfg.RunsyncURL())

	runner := &Runner{Config: cfg, Executor: exec, Observer: obs}
	report, err := runner.Run(ctx, cs)
	if err != nil {
		return bench.Report{}, "", fmt.Errorf("benchmark run: %w", err)
	}

	path, err := writeReportFn(cfg.OutputDir, report)
	if err != nil {
		return report, "", err
	}
	logging.LogEvent("Benchmark results written to %s", path)
	return report, path, nil
}
