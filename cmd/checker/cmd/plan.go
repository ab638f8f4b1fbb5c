package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"trade_integrity/internal/app/config"
	"trade_integrity/internal/app/di"
	"trade_integrity/internal/feature/integrity/usecase"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Audit every target listed in a plan file",
	Long: `Run the audits listed in a YAML (or JSON) plan file.

The command exits with status 1 when any audit reports violations or fails.

Example plan:
  export_dir: ./out
  targets:
    - instrument: ETH_CRO
      interval: 1m
    - instrument: BTC_USDT
      interval: 1h

Example:
  checker plan --file plan.yaml`,
	RunE: runPlan,
}

var (
	planFile  string
	planJSON  bool
	planStore bool
)

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVarP(&planFile, "file", "f", "", "path to plan file (YAML or JSON) (required)")
	planCmd.Flags().BoolVar(&planJSON, "json", false, "print each report as JSON")
	planCmd.Flags().BoolVar(&planStore, "store", false, "persist the audits in the configured database")
	_ = planCmd.MarkFlagRequired("file")
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	plan, err := config.LoadPlan(planFile)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}

	var (
		db  *gorm.DB
		rdb *redis.Client
	)
	if planStore {
		var cleanup func()
		db, rdb, cleanup, err = openStore(ctx)
		defer cleanup()
		if err != nil {
			return err
		}
	}

	svc := di.NewServices(appCfg, di.NewMarket(appCfg.CryptoCom), db, rdb, plan.ExportDir)
	return runBatch(ctx, cmd.OutOrStdout(), svc.Integrity, plan.Targets, planJSON)
}

// runBatch audits targets one after another. A failed target does not stop the batch.
func runBatch(ctx context.Context, out io.Writer, uc *usecase.IntegrityUsecase, targets []config.PlanTarget, asJSON bool) error {
	var withViolations, failed int
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := uc.Evaluate(ctx, t.Instrument, t.Interval)
		if err != nil {
			slog.Error("audit failed", "instrument", t.Instrument, "interval", t.Interval, "error", err)
			failed++
			continue
		}
		if err := printResult(out, res, asJSON); err != nil {
			return err
		}
		if res.Report.HasViolations() {
			withViolations++
		}
	}

	if !asJSON {
		fmt.Fprintf(out, "\n%d audits, %d with violations, %d failed\n", len(targets), withViolations, failed)
	}
	switch {
	case failed > 0:
		return fmt.Errorf("%d of %d audits failed", failed, len(targets))
	case withViolations > 0:
		return ErrViolationsFound
	}
	return nil
}
