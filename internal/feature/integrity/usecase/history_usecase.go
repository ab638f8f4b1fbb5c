package usecase

import (
	"context"

	"trade_integrity/internal/feature/integrity/domain/entity"
)

const (
	// DefaultHistoryLimit は監査履歴のデフォルト返却件数です。
	DefaultHistoryLimit = 20
	// MaxHistoryLimit は監査履歴の最大返却件数です。
	MaxHistoryLimit = 200
)

// AuditHistoryUsecase は保存済みの監査結果を参照するユースケースです。
type AuditHistoryUsecase struct {
	audits AuditRepository
}

// NewAuditHistoryUsecase はAuditHistoryUsecaseの新しいインスタンスを生成します。
func NewAuditHistoryUsecase(audits AuditRepository) *AuditHistoryUsecase {
	return &AuditHistoryUsecase{audits: audits}
}

// Latest は指定銘柄・時間足の最新の監査結果を返します。
func (u *AuditHistoryUsecase) Latest(ctx context.Context, instrument, interval string) (*entity.AuditResult, error) {
	tf, err := entity.ParseTimeframe(interval)
	if err != nil {
		return nil, err
	}
	return u.audits.Latest(ctx, instrument, tf)
}

// List は監査結果のサマリーを新しい順に返します。instrument が空の場合は全銘柄が対象です。
// limit が0以下ならデフォルト件数、上限を超える場合は MaxHistoryLimit に丸めます。
func (u *AuditHistoryUsecase) List(ctx context.Context, instrument string, limit int) ([]entity.AuditResult, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	return u.audits.List(ctx, instrument, limit)
}
