// Package adapters はintegrityフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"trade_integrity/internal/feature/integrity/domain/entity"
	"trade_integrity/internal/feature/integrity/usecase"
)

// auditGorm はAuditRepositoryインターフェースのgorm実装です（PostgreSQL / SQLite）。
type auditGorm struct {
	db *gorm.DB
}

var _ usecase.AuditRepository = (*auditGorm)(nil)

// NewAuditRepository は指定されたDB接続でauditGormリポジトリの新しいインスタンスを生成します。
func NewAuditRepository(db *gorm.DB) *auditGorm {
	return &auditGorm{db: db}
}

// AutoMigrate は監査履歴のテーブルを作成・更新します。
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&AuditRunModel{}, &ViolationModel{})
}

// AuditRunModel は1回の監査実行を表す行です。
type AuditRunModel struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Instrument  string    `gorm:"size:64;not null;index:audit_inst_int_created,priority:1"`
	Interval    string    `gorm:"column:timeframe;size:8;not null;index:audit_inst_int_created,priority:2"`
	CreatedAt   time.Time `gorm:"not null;index:audit_inst_int_created,priority:3"`
	Status      string    `gorm:"size:32;not null"`
	NumCandles  int       `gorm:"not null;default:0"`
	NumTrades   int       `gorm:"not null;default:0"`
	NumAnalyzed int       `gorm:"not null;default:0"`

	Violations []ViolationModel `gorm:"foreignKey:AuditID;constraint:OnDelete:CASCADE"`
}

func (AuditRunModel) TableName() string {
	return "audit_runs"
}

// ViolationModel は違反1件を、対象のローソク足のスナップショットと共に保存します。
// 価格・数量は精度を保つため文字列で保存します。
type ViolationModel struct {
	ID             uint   `gorm:"primaryKey"`
	AuditID        string `gorm:"size:36;not null;index"`
	Seq            int    `gorm:"not null"`
	Rule           string `gorm:"size:16;not null"`
	IntervalMarker int64  `gorm:"not null"`

	CandleOpen   string `gorm:"size:64;not null"`
	CandleHigh   string `gorm:"size:64;not null"`
	CandleLow    string `gorm:"size:64;not null"`
	CandleClose  string `gorm:"size:64;not null"`
	CandleVolume string `gorm:"size:64;not null"`
	TradeCount   int    `gorm:"not null;default:0"`

	TradeID        *int64
	TradeTimestamp *int64
	TradePrice     *string `gorm:"size:64"`
	TradeQuantity  *string `gorm:"size:64"`
	TradeSide      *string `gorm:"size:8"`
	ComputedVolume *string `gorm:"size:64"`
}

func (ViolationModel) TableName() string {
	return "audit_violations"
}

func toModel(r *entity.AuditResult) AuditRunModel {
	m := AuditRunModel{
		ID:          r.ID,
		Instrument:  r.Instrument,
		Interval:    r.Interval.String(),
		CreatedAt:   r.CreatedAt,
		Status:      string(r.Status),
		NumCandles:  r.NumCandles,
		NumTrades:   r.NumTrades,
		NumAnalyzed: r.Report.AnalyzedIntervalCount,
	}
	for i, v := range r.Report.Violations {
		c := v.Group.Candle
		vm := ViolationModel{
			AuditID:        r.ID,
			Seq:            i,
			Rule:           v.Rule.String(),
			IntervalMarker: c.IntervalMarker,
			CandleOpen:     c.Open.String(),
			CandleHigh:     c.High.String(),
			CandleLow:      c.Low.String(),
			CandleClose:    c.Close.String(),
			CandleVolume:   c.Volume.String(),
			TradeCount:     v.TradeCount,
		}
		if v.Trade != nil {
			id, ts := v.Trade.ID, v.Trade.Timestamp
			price, qty, side := v.Trade.Price.String(), v.Trade.Quantity.String(), string(v.Trade.Side)
			vm.TradeID, vm.TradeTimestamp = &id, &ts
			vm.TradePrice, vm.TradeQuantity, vm.TradeSide = &price, &qty, &side
		}
		if v.ComputedVolume != nil {
			cv := v.ComputedVolume.String()
			vm.ComputedVolume = &cv
		}
		m.Violations = append(m.Violations, vm)
	}
	return m
}

func toEntity(m AuditRunModel) (entity.AuditResult, error) {
	tf, err := entity.ParseTimeframe(m.Interval)
	if err != nil {
		return entity.AuditResult{}, err
	}
	violations := make([]entity.Violation, 0, len(m.Violations))
	for _, vm := range m.Violations {
		v, err := toViolation(vm, m.Instrument, tf)
		if err != nil {
			return entity.AuditResult{}, fmt.Errorf("audit %s violation %d: %w", m.ID, vm.Seq, err)
		}
		violations = append(violations, v)
	}
	return entity.AuditResult{
		ID:         m.ID,
		Instrument: m.Instrument,
		Interval:   tf,
		Status:     entity.AuditStatus(m.Status),
		NumCandles: m.NumCandles,
		NumTrades:  m.NumTrades,
		Report:     usecase.BuildReport(violations, m.NumAnalyzed),
		CreatedAt:  m.CreatedAt.UTC(),
	}, nil
}

func toViolation(vm ViolationModel, instrument string, tf entity.Timeframe) (entity.Violation, error) {
	rule, err := entity.ParseRuleKind(vm.Rule)
	if err != nil {
		return entity.Violation{}, err
	}

	var parseErr error
	dec := func(s string) decimal.Decimal {
		d, err := decimal.NewFromString(s)
		if err != nil && parseErr == nil {
			parseErr = fmt.Errorf("parse decimal %q: %w", s, err)
		}
		return d
	}

	v := entity.Violation{
		Rule:       rule,
		TradeCount: vm.TradeCount,
		Group: entity.IntervalGroup{Candle: entity.Candle{
			Instrument:     instrument,
			Interval:       tf,
			IntervalMarker: vm.IntervalMarker,
			Open:           dec(vm.CandleOpen),
			High:           dec(vm.CandleHigh),
			Low:            dec(vm.CandleLow),
			Close:          dec(vm.CandleClose),
			Volume:         dec(vm.CandleVolume),
		}},
	}
	if vm.TradeID != nil {
		tr := entity.Trade{ID: *vm.TradeID}
		if vm.TradeTimestamp != nil {
			tr.Timestamp = *vm.TradeTimestamp
		}
		if vm.TradePrice != nil {
			tr.Price = dec(*vm.TradePrice)
		}
		if vm.TradeQuantity != nil {
			tr.Quantity = dec(*vm.TradeQuantity)
		}
		if vm.TradeSide != nil {
			tr.Side = entity.Side(*vm.TradeSide)
		}
		v.Trade = &tr
	}
	if vm.ComputedVolume != nil {
		cv := dec(*vm.ComputedVolume)
		v.ComputedVolume = &cv
	}
	return v, parseErr
}

// Save は監査結果と違反を1トランザクションで保存します。
func (r *auditGorm) Save(ctx context.Context, result *entity.AuditResult) error {
	m := toModel(result)
	return r.db.WithContext(ctx).Create(&m).Error
}

// Latest は指定銘柄・時間足の最新の監査結果を違反付きで返します。
func (r *auditGorm) Latest(ctx context.Context, instrument string, interval entity.Timeframe) (*entity.AuditResult, error) {
	var m AuditRunModel
	err := r.db.WithContext(ctx).
		Preload("Violations", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Where("instrument = ? AND timeframe = ?", instrument, interval.String()).
		Order("created_at DESC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, usecase.ErrAuditNotFound
	}
	if err != nil {
		return nil, err
	}

	res, err := toEntity(m)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// List は監査結果を新しい順に最大limit件返します。instrument が空の場合は全銘柄が対象です。
func (r *auditGorm) List(ctx context.Context, instrument string, limit int) ([]entity.AuditResult, error) {
	var rows []AuditRunModel
	q := r.db.WithContext(ctx).
		Preload("Violations", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Order("created_at DESC")
	if instrument != "" {
		q = q.Where("instrument = ?", instrument)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]entity.AuditResult, 0, len(rows))
	for _, m := range rows {
		res, err := toEntity(m)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}
