// internal/cli/run.go
package syncbench

import "github.com/spf13/cobra"

// runCmd implements 'run [label...]', one full benchmark run against the endpoint.
var runCmd = &cobra.Command{
	Use:   "run [hardware label]",
	Short: "Benchmark the endpoint and save a JSON report",
	Long: `Run a warm-up call, then every generated case for the configured number of
rounds, one call at a time. The positional arguments are joined into the label
that identifies the hardware under test, e.g. 'syncbench run RTX 4090'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBenchmark(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()
	flags.String("baseURL", "", "endpoint base URL (runsync is appended)")
	flags.String("voice", "", "voice selector sent with every call")
	flags.Int("rounds", 0, "number of passes over all cases")
	flags.Int("pacingMs", 0, "delay after every measured call in milliseconds")
	flags.Int("settleMs", 0, "delay after the warm-up call in milliseconds")
	flags.Bool("warmup", true, "make one unrecorded call before measuring")
	flags.Int("timeout", 0, "per-call timeout in seconds")
	flags.Bool("includeDownload", true, "also time the download of the produced artifact")
	flags.IntSlice("wordCounts", nil, "target word counts, one case per value")
	flags.String("outputDir", "", "directory for the JSON report")
	flags.Bool("tui", false, "show a live progress view")

	bindRunFlags()
}

var runFlagNames = []string{"baseURL", "voice", "rounds", "pacingMs", "settleMs", "warmup", "timeout", "includeDownload", "wordCounts", "outputDir", "tui"}

func bindRunFlags() {
	for _, name := range runFlagNames {
		bindFlag(runCmd, name)
	}
}
