package main

import (
	"github.com/spf13/cobra"

	"github.com/soltixdb/correlator/internal/preprocess"
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Build daily rolling statistics from per-symbol signals",
	Long: `Read the master symbol list, every symbol's signal files and the
background signals, advance the rolling windows of each configured series
day by day and write, for each day with at least two valid samples, the
day's symbol list and one statistics file per series.`,
	RunE: runPreprocess,
}

func init() {
	rootCmd.AddCommand(preprocessCmd)
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup("preprocess")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	builder, err := preprocess.NewBuilder(cfg, logger)
	if err != nil {
		return err
	}
	if err := builder.Load(ctx); err != nil {
		return err
	}

	sum, err := builder.Run(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Preprocessed %d symbols: %d days written, %d skipped\n",
		len(builder.Symbols()), sum.Written, sum.Skipped)
	return nil
}
