// internal/cli/compare.go
package syncbench

import (
	"fmt"

	"github.com/mwiater/syncbench/benchmark"
	internalbench "github.com/mwiater/syncbench/internal/benchmark"
	"github.com/mwiater/syncbench/internal/metrics"
	"github.com/spf13/cobra"
)

// compareCmd implements 'compare', which lines saved reports up side by side.
var compareCmd = &cobra.Command{
	Use:   "compare <report.json>...",
	Short: "Compare saved benchmark reports",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reports := make([]benchmark.Report, 0, len(args))
		for _, path := range args {
			r, err := internalbench.LoadReport(path)
			if err != nil {
				return err
			}
			reports = append(reports, r)
		}
		_, err := fmt.Fprint(cmd.OutOrStdout(), metrics.Compare(reports).Render())
		return err
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
}
