package cmd

import (
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"trade_integrity/internal/app/di"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Audit one instrument and timeframe",
	Long: `Run a single integrity audit and print the report.

Example:
  checker run --instrument ETH_CRO --interval 1m --export-dir ./out`,
	RunE: runRun,
}

var (
	runInstrument       string
	runInterval         string
	runExportDir        string
	runJSON             bool
	runStore            bool
	runFailOnViolations bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runInstrument, "instrument", "i", "", "instrument name, e.g. ETH_CRO (required)")
	runCmd.Flags().StringVarP(&runInterval, "interval", "t", "", "candle timeframe: 1m 5m 15m 30m 1h 4h 6h 12h 1D 7D 14D 1M (required)")
	runCmd.Flags().StringVar(&runExportDir, "export-dir", "", "write candles, trades and violations as CSV into this directory (default $EXPORT_DIR)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the report as JSON")
	runCmd.Flags().BoolVar(&runStore, "store", false, "persist the audit in the configured database")
	runCmd.Flags().BoolVar(&runFailOnViolations, "fail-on-violations", false, "exit with status 1 when violations are found")
	_ = runCmd.MarkFlagRequired("instrument")
	_ = runCmd.MarkFlagRequired("interval")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var (
		db  *gorm.DB
		rdb *redis.Client
	)
	if runStore {
		var cleanup func()
		var err error
		db, rdb, cleanup, err = openStore(ctx)
		defer cleanup()
		if err != nil {
			return err
		}
	}

	svc := di.NewServices(appCfg, di.NewMarket(appCfg.CryptoCom), db, rdb, runExportDir)
	res, err := svc.Integrity.Evaluate(ctx, runInstrument, runInterval)
	if err != nil {
		return err
	}
	if err := printResult(cmd.OutOrStdout(), res, runJSON); err != nil {
		return err
	}
	if runFailOnViolations && res.Report.HasViolations() {
		return ErrViolationsFound
	}
	return nil
}
