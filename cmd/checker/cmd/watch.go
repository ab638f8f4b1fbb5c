package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"trade_integrity/internal/app/di"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Add an instrument and timeframe to the sweep watchlist",
	Long: `Register (or re-activate) an instrument/timeframe pair for "checker sweep".

Example:
  checker watch --instrument ETH_CRO --interval 1m --sort 10`,
	RunE: runWatch,
}

var (
	watchInstrument string
	watchInterval   string
	watchSortKey    int
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchInstrument, "instrument", "i", "", "instrument name (required)")
	watchCmd.Flags().StringVarP(&watchInterval, "interval", "t", "", "candle timeframe (required)")
	watchCmd.Flags().IntVar(&watchSortKey, "sort", 0, "sweep order, ascending")
	_ = watchCmd.MarkFlagRequired("instrument")
	_ = watchCmd.MarkFlagRequired("interval")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, rdb, cleanup, err := openStore(ctx)
	defer cleanup()
	if err != nil {
		return err
	}

	svc := di.NewServices(appCfg, di.NewMarket(appCfg.CryptoCom), db, rdb, "")
	w, err := svc.Watchlist.Watch(ctx, watchInstrument, watchInterval, watchSortKey)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "watching %s %s (sort %d)\n", w.Instrument, w.Interval, w.SortKey)
	return nil
}
