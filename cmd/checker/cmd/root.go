package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"trade_integrity/internal/app/config"
	"trade_integrity/internal/app/di"
	infradb "trade_integrity/internal/platform/db"
	infraredis "trade_integrity/internal/platform/redis"
)

// ErrViolationsFound makes the process exit non-zero when an audit reports violations.
var ErrViolationsFound = errors.New("integrity violations found")

var rootCmd = &cobra.Command{
	Use:   "checker",
	Short: "Audit exchange trades against published OHLCV candles",
	Long: `Checker fetches candlesticks and recent trades for an instrument, groups the trades
into candle intervals and verifies that every analyzed candle agrees with its trades:

  OPEN    open price equals the price of the first trade
  CLOSE   close price equals the price of the last trade
  HIGH    highest trade price equals the high
  LOW     lowest trade price equals the low
  VOLUME  volume equals the summed trade quantity (5 decimal places)

The first and last non-empty intervals are skipped because the trade window
rarely covers them completely.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	logLevel string
	appCfg   *config.AppConfig
)

// Execute adds all child commands to the root command and runs it with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (default $LOG_LEVEL or info)")
}

func setup(cmd *cobra.Command, args []string) error {
	appCfg = config.Load()
	level := logLevel
	if level == "" {
		level = appCfg.LogLevel
	}
	slog.SetDefault(config.NewLogger(cmd.ErrOrStderr(), level, false))
	return nil
}

// openStore connects the database (and Redis when configured) for commands that persist audits.
// The returned cleanup closes every opened handle.
func openStore(ctx context.Context) (*gorm.DB, *redis.Client, func(), error) {
	db, err := infradb.OpenDB(appCfg.DB)
	if err != nil {
		return nil, nil, func() {}, fmt.Errorf("open database: %w", err)
	}
	if appCfg.RunMigrations {
		if err := di.Migrate(db); err != nil {
			return nil, nil, func() {}, fmt.Errorf("migrate: %w", err)
		}
	}

	var rdb *redis.Client
	if appCfg.Redis.Enabled() {
		if rdb, err = infraredis.NewRedisClient(ctx, appCfg.Redis); err != nil {
			slog.Warn("redis unavailable, running without cache", "error", err)
			rdb = nil
		}
	}

	cleanup := func() {
		if rdb != nil {
			_ = rdb.Close()
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, rdb, cleanup, nil
}
