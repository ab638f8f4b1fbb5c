// Package adapters はwatchlistフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trade_integrity/internal/feature/watchlist/domain/entity"
	"trade_integrity/internal/feature/watchlist/usecase"
)

// watchlistGorm はWatchlistRepositoryインターフェースのgorm実装です。
type watchlistGorm struct {
	db *gorm.DB
}

var _ usecase.WatchlistRepository = (*watchlistGorm)(nil)

// NewWatchlistRepository は指定されたDB接続でwatchlistGormリポジトリの新しいインスタンスを生成します。
func NewWatchlistRepository(db *gorm.DB) *watchlistGorm {
	return &watchlistGorm{db: db}
}

// AutoMigrate はwatched_instrumentsテーブルを作成・更新します。
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&entity.WatchedInstrument{})
}

// ListActive はsort_key順にすべてのアクティブな監視対象を返します。
func (r *watchlistGorm) ListActive(ctx context.Context) ([]entity.WatchedInstrument, error) {
	var items []entity.WatchedInstrument
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Upsert は銘柄・時間足の組をキーに監視対象を登録します。
// 既存の場合はis_activeとsort_keyを更新します。
func (r *watchlistGorm) Upsert(ctx context.Context, w *entity.WatchedInstrument) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "instrument"}, {Name: "timeframe"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_active", "sort_key", "updated_at"}),
		}).
		Create(w).Error
}
