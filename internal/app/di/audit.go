package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"trade_integrity/internal/feature/integrity/adapters"
	"trade_integrity/internal/feature/integrity/usecase"
	wladapters "trade_integrity/internal/feature/watchlist/adapters"
	"trade_integrity/internal/platform/cache"
	"trade_integrity/internal/platform/export/csvfile"
)

// NewAuditRepository creates an AuditRepository implementation.
// If Redis is available, the gorm repository is wrapped with the Redis cache.
// It returns nil when db is nil, which disables persistence.
func NewAuditRepository(db *gorm.DB, rdb *redis.Client, ttl time.Duration) usecase.AuditRepository {
	if db == nil {
		return nil
	}
	repo := adapters.NewAuditRepository(db)
	if rdb != nil {
		return cache.NewCachingAuditRepository(rdb, ttl, repo, "audits")
	}
	return repo
}

// NewExporter returns a CSV exporter writing into dir, or nil when dir is empty.
func NewExporter(dir string) usecase.Exporter {
	if dir == "" {
		return nil
	}
	return csvfile.NewWriter(dir)
}

// Migrate creates or updates every table owned by the application.
func Migrate(db *gorm.DB) error {
	if err := adapters.AutoMigrate(db); err != nil {
		return err
	}
	return wladapters.AutoMigrate(db)
}
