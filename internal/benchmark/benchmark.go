// internal/benchmark/benchmark.go
package benchmark

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	bench "github.com/mwiater/syncbench/benchmark"
	"github.com/mwiater/syncbench/internal/appconfig"
	"github.com/mwiater/syncbench/internal/logging"
	"github.com/mwiater/syncbench/internal/metrics"
)

// ErrNoCases is returned when a run is started without any cases.
var ErrNoCases = errors.New("no benchmark cases to run")

var (
	sleepFn  = sleep
	nowFn    = time.Now
	newRunID = uuid.NewString
)

// Executor performs one timed call for a case. It never fails; errors are
// carried in the returned outcome.
type Executor interface {
	Execute(ctx context.Context, c bench.Case) bench.Outcome
}

// Observer receives run progress in program order.
type Observer interface {
	RunStarted(label string, rounds, cases int)
	WarmupFinished(o bench.Outcome)
	RoundStarted(round, rounds int)
	CaseFinished(o bench.Outcome)
}

// Runner drives warm-up and the measured rounds, one call at a time.
type Runner struct {
	Config   *appconfig.Config
	Executor Executor
	Observer Observer
}

// Run executes every case in every round and returns the completed report.
// Per-case failures are recorded in the report; only an empty case list or a
// cancelled context stops the run.
func (r *Runner) Run(ctx context.Context, cases []bench.Case) (bench.Report, error) {
	if len(cases) == 0 {
		return bench.Report{}, ErrNoCases
	}
	cfg := r.Config
	obs := r.observer()

	report := bench.Report{
		RunID:           newRunID(),
		Label:           cfg.Label,
		Endpoint:        cfg.BaseURL,
		EndpointLabel:   cfg.EndpointLabel(),
		Voice:           cfg.Voice,
		Rounds:          cfg.Rounds,
		IncludeDownload: cfg.IncludeDownload,
		Warmup:          cfg.Warmup,
		PacingMs:        int64(cfg.PacingMs),
		StartedAt:       nowFn().UTC(),
	}
	obs.RunStarted(cfg.Label, cfg.Rounds, len(cases))

	if cfg.Warmup {
		logging.LogEvent("Warm-up call with %s (not recorded)", cases[0].ID)
		warm := r.Executor.Execute(ctx, cases[0])
		obs.WarmupFinished(warm)
		if err := sleepFn(ctx, cfg.Settle()); err != nil {
			return bench.Report{}, err
		}
	}

	results := make([]bench.Outcome, 0, cfg.Rounds*len(cases))
	for round := 1; round <= cfg.Rounds; round++ {
		obs.RoundStarted(round, cfg.Rounds)
		for _, c := range cases {
			outcome := r.Executor.Execute(ctx, c)
			outcome.Round = round
			outcome.CaseID = c.ID
			outcome.TargetWords = c.TargetWords
			outcome.ActualWords = c.ActualWords
			results = append(results, outcome)
			obs.CaseFinished(outcome)

			if err := sleepFn(ctx, cfg.Pacing()); err != nil {
				return bench.Report{}, err
			}
		}
	}

	report.Results = results
	report.FinishedAt = nowFn().UTC()
	report.Failures = countFailures(results)
	report.Summary = metrics.SummaryOrNil(report.SuccessfulTotals())
	return report, nil
}

func (r *Runner) observer() Observer {
	if r.Observer == nil {
		return nopObserver{}
	}
	return r.Observer
}

func countFailures(results []bench.Outcome) int {
	n := 0
	for _, o := range results {
		if !o.OK() {
			n++
		}
	}
	return n
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type nopObserver struct{}

func (nopObserver) RunStarted(string, int, int)  {}
func (nopObserver) WarmupFinished(bench.Outcome) {}
func (nopObserver) RoundStarted(int, int)        {}
func (nopObserver) CaseFinished(bench.Outcome)   {}
