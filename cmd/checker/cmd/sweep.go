package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"trade_integrity/internal/app/config"
	"trade_integrity/internal/app/di"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Audit every active watchlist entry",
	Long: `Audit every active instrument/timeframe pair stored in the watchlist table
and persist the results. Intended to run from cron or a scheduler job.

Example:
  checker sweep --export-dir ./out`,
	RunE: runSweep,
}

var (
	sweepExportDir string
	sweepJSON      bool
)

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().StringVar(&sweepExportDir, "export-dir", "", "write CSV exports into this directory (default $EXPORT_DIR)")
	sweepCmd.Flags().BoolVar(&sweepJSON, "json", false, "print each report as JSON")
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, rdb, cleanup, err := openStore(ctx)
	defer cleanup()
	if err != nil {
		return err
	}

	svc := di.NewServices(appCfg, di.NewMarket(appCfg.CryptoCom), db, rdb, sweepExportDir)
	items, err := svc.Watchlist.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list watchlist: %w", err)
	}
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "watchlist is empty, nothing to audit")
		return nil
	}

	targets := make([]config.PlanTarget, 0, len(items))
	for _, w := range items {
		targets = append(targets, config.PlanTarget{Instrument: w.Instrument, Interval: w.Interval})
	}
	return runBatch(ctx, cmd.OutOrStdout(), svc.Integrity, targets, sweepJSON)
}
