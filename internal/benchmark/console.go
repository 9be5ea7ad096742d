package benchmark

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	bench "github.com/mwiater/syncbench/benchmark"
)

var (
	headerText  = color.New(color.FgCyan, color.Bold).SprintFunc()
	successText = color.New(color.FgGreen).SprintFunc()
	failedText  = color.New(color.FgRed).SprintFunc()
	mutedText   = color.New(color.FgHiBlack).SprintFunc()
)

// ConsoleObserver prints one line per call to Out.
type ConsoleObserver struct {
	Out   io.Writer
	label string
}

func (c *ConsoleObserver) RunStarted(label string, rounds, cases int) {
	c.label = label
	fmt.Fprintf(c.Out, "benchmarking %d cases x %d rounds (%s)\n", cases, rounds, label)
}

func (c *ConsoleObserver) WarmupFinished(o bench.Outcome) {
	fmt.Fprintln(c.Out, mutedText("warm-up: "+FormatOutcome(o)))
}

func (c *ConsoleObserver) RoundStarted(round, rounds int) {
	fmt.Fprintf(c.Out, "\n%s\n", headerText(fmt.Sprintf("=== round %d/%d (%s) ===", round, rounds, c.label)))
}

func (c *ConsoleObserver) CaseFinished(o bench.Outcome) {
	line := FormatOutcome(o)
	if o.OK() {
		fmt.Fprintln(c.Out, successText(line))
		return
	}
	fmt.Fprintln(c.Out, failedText(line))
}

// FormatOutcome renders the one-line progress message for an outcome.
func FormatOutcome(o bench.Outcome) string {
	if !o.OK() {
		return fmt.Sprintf("%s words=%d ERROR: %s", o.CaseID, o.ActualWords, o.Error)
	}
	line := fmt.Sprintf("%s words=%d runsync=%.0fms", o.CaseID, o.ActualWords, o.RequestMs)
	if o.DownloadMs != nil {
		line += fmt.Sprintf(" download=%.0fms total=%.0fms", *o.DownloadMs, o.TotalMs)
	}
	return line
}

// FormatSummary renders the summary line, or a notice when nothing succeeded.
func FormatSummary(s *bench.Summary) string {
	if s == nil {
		return "no successful results; summary omitted"
	}
	return fmt.Sprintf("n=%d mean=%.0fms median=%.0fms p90=%.0fms p95=%.0fms", s.Count, s.Mean, s.Median, s.P90, s.P95)
}

// PrintSummary writes the end-of-run block and the saved report path.
func PrintSummary(out io.Writer, report bench.Report, path string) {
	fmt.Fprintf(out, "\n%s\n", headerText("=== summary (totalMs) ==="))
	fmt.Fprintln(out, FormatSummary(report.Summary))
	failures := fmt.Sprintf("failures=%d/%d", report.Failures, len(report.Results))
	if report.Failures > 0 {
		failures = failedText(failures)
	}
	fmt.Fprintln(out, failures)
	if path != "" {
		fmt.Fprintf(out, "\nSaved results: %s\n", path)
	}
}
