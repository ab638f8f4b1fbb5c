package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"trade_integrity/internal/app/config"
	"trade_integrity/internal/app/di"
	"trade_integrity/internal/app/router"
	integrityhandler "trade_integrity/internal/feature/integrity/transport/handler"
	watchlisthandler "trade_integrity/internal/feature/watchlist/transport/handler"
	infradb "trade_integrity/internal/platform/db"
	"trade_integrity/internal/platform/http/handler"
	infraredis "trade_integrity/internal/platform/redis"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(config.NewLogger(os.Stdout, cfg.LogLevel, true))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := infradb.OpenDB(cfg.DB)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if cfg.RunMigrations {
		if err := di.Migrate(db); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	// Redis
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
			log.Println("[WARN] Redis unavailable. Running without cache.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Println("[ERROR] Failed to close Redis client:", err)
				}
			}()
		}
	}

	// Usecase
	svc := di.NewServices(cfg, di.NewMarket(cfg.CryptoCom), db, rdb, "")

	// Handler
	integrityH := integrityhandler.NewIntegrityHandler(svc.Integrity, svc.History)
	watchlistH := watchlisthandler.NewWatchlistHandler(svc.Watchlist)

	// 疎通確認
	checks := map[string]handler.Check{
		"db": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// ルータ生成
	r := router.NewRouter(router.Options{
		Integrity:   integrityH,
		Watchlist:   watchlistH,
		ReadyChecks: checks,
		CORSOrigins: cfg.CORSOrigins,
	})

	// JWT_SECRETチェック（開発中の注意喚起）
	if cfg.JWTSecret == "" {
		log.Println("[WARN] JWT_SECRET is not set. Authenticated routes will answer 500.")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	closeDB(db)
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Println("[ERROR] Failed to close database:", err)
	}
}
