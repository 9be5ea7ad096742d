package syncbench

import (
	"context"
	"errors"
	"os"

	bench "github.com/mwiater/syncbench/benchmark"
	"github.com/mwiater/syncbench/internal/appconfig"
	"github.com/mwiater/syncbench/internal/benchmark"
	"github.com/mwiater/syncbench/internal/runsync"
	"github.com/mwiater/syncbench/internal/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	lookupEnv   = os.LookupEnv
	newExecutor = func(cfg *appconfig.Config) benchmark.Executor { return runsync.NewClient(cfg) }
	runWithTUI  = tui.Run
)

func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg, err := currentConfig(args)
	if err != nil {
		return err
	}
	if err := appconfig.LoadDotEnv(".env"); err != nil {
		return err
	}
	if err := cfg.ResolveAPIKey(lookupEnv); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	exec := newExecutor(cfg)
	out := cmd.OutOrStdout()

	var (
		report bench.Report
		path   string
	)
	if cfg.TUI {
		err = runWithTUI(cancel, func(obs benchmark.Observer) error {
			var runErr error
			report, path, runErr = benchmark.RunBenchmark(ctx, cfg, exec, obs)
			return runErr
		})
		if errors.Is(err, tui.ErrInterrupted) {
			return err
		}
	} else {
		report, path, err = benchmark.RunBenchmark(ctx, cfg, exec, &benchmark.ConsoleObserver{Out: out})
	}

	if report.Results != nil {
		benchmark.PrintSummary(out, report, path)
	}
	return err
}

func bindFlag(cmd *cobra.Command, name string) {
	_ = viper.BindPFlag(name, cmd.Flags().Lookup(name))
}
