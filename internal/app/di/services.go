package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"trade_integrity/internal/app/config"
	"trade_integrity/internal/feature/integrity/usecase"
	wladapters "trade_integrity/internal/feature/watchlist/adapters"
	wlusecase "trade_integrity/internal/feature/watchlist/usecase"
	"trade_integrity/internal/platform/metrics"
)

// Services bundles the usecases shared by the HTTP server and the CLI.
// History and Watchlist are nil when no database is configured.
type Services struct {
	Integrity *usecase.IntegrityUsecase
	History   *usecase.AuditHistoryUsecase
	Watchlist *wlusecase.WatchlistUsecase
}

// NewServices wires usecases from configuration and the optional db / Redis handles.
// exportDir overrides cfg.ExportDir when non-empty.
func NewServices(cfg *config.AppConfig, market usecase.MarketRepository, db *gorm.DB, rdb *redis.Client, exportDir string) *Services {
	if exportDir == "" {
		exportDir = cfg.ExportDir
	}
	audits := NewAuditRepository(db, rdb, cfg.ReportCacheTTL)

	s := &Services{
		Integrity: usecase.NewIntegrityUsecase(market, audits, NewExporter(exportDir), metrics.NewAuditRecorder()),
	}
	if audits != nil {
		s.History = usecase.NewAuditHistoryUsecase(audits)
	}
	if db != nil {
		s.Watchlist = wlusecase.NewWatchlistUsecase(wladapters.NewWatchlistRepository(db))
	}
	return s
}
