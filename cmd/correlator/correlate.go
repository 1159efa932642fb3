package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/soltixdb/correlator/internal/catalog"
	"github.com/soltixdb/correlator/internal/dateindex"
	"github.com/soltixdb/correlator/internal/engine"
	"github.com/soltixdb/correlator/internal/queue"
)

var (
	correlateFirst   string
	correlateLast    string
	correlateSummary bool
)

var correlateCmd = &cobra.Command{
	Use:   "correlate",
	Short: "Compute the correlation matrix of every day in a range",
	Long: `Compute, for every day in [first, last], the short and long window
correlation of every pair of series, write the day's matrix, register it
in the catalog and announce it on the configured queue.

Examples:
  correlator correlate                                   # whole epoch
  correlator correlate --first 2011-06-01 --last 2011-06-30
  correlator correlate --first 2011-06-01 --summary`,
	RunE: runCorrelate,
}

func init() {
	rootCmd.AddCommand(correlateCmd)

	correlateCmd.Flags().StringVar(&correlateFirst, "first", "", "First day (YYYY-MM-DD), default: epoch start")
	correlateCmd.Flags().StringVar(&correlateLast, "last", "", "Last day (YYYY-MM-DD), default: epoch end")
	correlateCmd.Flags().BoolVar(&correlateSummary, "summary", false, "Print a per-day summary table")
}

func runCorrelate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup("correlate")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	cat, err := catalog.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = cat.Close() }()

	logger.Info("Connecting to Queue", "type", cfg.Queue.Type, "url", cfg.Queue.URL)
	q, err := queue.NewQueue(cfg.Queue)
	if err != nil {
		return err
	}
	defer func() { _ = q.Close() }()

	eng, err := engine.New(cfg, logger, cat, q)
	if err != nil {
		return err
	}

	first, err := dayFlag(eng.Epoch(), correlateFirst, eng.Epoch().First())
	if err != nil {
		return err
	}
	last, err := dayFlag(eng.Epoch(), correlateLast, eng.Epoch().Last())
	if err != nil {
		return err
	}

	start := time.Now()
	results, runErr := eng.Run(ctx, first, last)

	if correlateSummary {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DAY\tDATE\tSERIES\tCELLS\tDURATION\tNOTE")
		for _, r := range results {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\t%s\n",
				r.Day, r.Date, r.Series, r.Cells, r.Duration.Round(time.Millisecond), r.Reason)
		}
		_ = w.Flush()
	}

	cmd.Printf("Run %s: %d days in %s\n", eng.RunID(), len(results), time.Since(start).Round(time.Millisecond))
	return runErr
}

// dayFlag resolves a date flag to a day number, def when empty
func dayFlag(epoch *dateindex.Epoch, value string, def int) (int, error) {
	if value == "" {
		return def, nil
	}
	day := epoch.FromString(value)
	if day == dateindex.Invalid {
		return 0, fmt.Errorf("date %q outside %s", value, epoch)
	}
	return day, nil
}
