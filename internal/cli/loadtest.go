package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/caffinecoder/skillnav/internal/loadtest"
	"github.com/caffinecoder/skillnav/internal/output"
)

var loadtestFlags = loadtest.DefaultConfig()

var loadtestCmd = &cobra.Command{
	Use:   "loadtest",
	Short: "Send concurrent analysis traffic to a running server",
	Long: `Loadtest obtains a demo token from the server and sends a mix of
synchronous /analyze calls and asynchronous /analyses submissions, polling
each job until it completes. The server must run with demo mode enabled.`,
	Args: cobra.NoArgs,
	RunE: runLoadtest,
}

func init() {
	f := loadtestCmd.Flags()
	f.StringVar(&loadtestFlags.BaseURL, "url", loadtestFlags.BaseURL, "Base URL of the server")
	f.IntVar(&loadtestFlags.Requests, "requests", loadtestFlags.Requests, "Total number of operations")
	f.IntVar(&loadtestFlags.Workers, "workers", loadtestFlags.Workers, "Concurrent operations")
	f.DurationVar(&loadtestFlags.Timeout, "timeout", loadtestFlags.Timeout, "Per request timeout")
	f.DurationVar(&loadtestFlags.PollInterval, "poll", loadtestFlags.PollInterval, "Job status poll interval")
	f.BoolVar(&loadtestFlags.Verbose, "verbose", false, "Log every failed operation")

	rootCmd.AddCommand(loadtestCmd)
}

func runLoadtest(cmd *cobra.Command, _ []string) error {
	if _, _, err := loadConfig(cmd.Context()); err != nil {
		return err
	}
	report, err := loadtest.Run(cmd.Context(), loadtestFlags)
	if err != nil {
		return err
	}
	renderReport(cmd.OutOrStdout(), report)
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d operations failed", report.Failed, report.Requests)
	}
	return nil
}

func renderReport(w io.Writer, r *loadtest.Report) {
	fmt.Fprintln(w, output.StyleHeader.Render("Load test"))
	fmt.Fprintf(w, "%s %d\n", output.StyleLabel.Render("Operations"), r.Requests)
	fmt.Fprintf(w, "%s %s\n", output.StyleLabel.Render("Succeeded"), output.StyleSuccess.Render(strconv.Itoa(r.Succeeded)))
	fmt.Fprintf(w, "%s %d\n", output.StyleLabel.Render("Duplicates"), r.Duplicates)
	failed := strconv.Itoa(r.Failed)
	if r.Failed > 0 {
		failed = output.StyleError.Render(failed)
	}
	fmt.Fprintf(w, "%s %s\n", output.StyleLabel.Render("Failed"), failed)
	fmt.Fprintf(w, "%s %s\n", output.StyleLabel.Render("Duration"), r.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "%s %.1f ops/s (%.1f%% ok)\n", output.StyleLabel.Render("Throughput"), r.Throughput(), r.SuccessRate())
	fmt.Fprintln(w)

	t := output.NewTable("Operation", "Count", "Min", "Mean", "P50", "P95", "P99", "Max")
	for _, op := range []string{loadtest.OpAnalyze, loadtest.OpSubmit, loadtest.OpComplete} {
		l, ok := r.Latencies[op]
		if !ok {
			continue
		}
		t.AddRow(op, strconv.Itoa(l.Count),
			output.LatencyRow(l.Min), output.LatencyRow(l.Mean), output.LatencyRow(l.P50),
			output.LatencyRow(l.P95), output.LatencyRow(l.P99), output.LatencyRow(l.Max))
	}
	fmt.Fprint(w, t.Render())
}
