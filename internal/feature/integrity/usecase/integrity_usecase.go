package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"trade_integrity/internal/feature/integrity/domain/entity"
)

// MarketRepository は外部の市場データ取得レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type MarketRepository interface {
	// GetCandlesticks は銘柄・時間足のローソク足を取得します。
	GetCandlesticks(ctx context.Context, instrument string, interval entity.Timeframe) (entity.CandleSeries, error)
	// GetTrades は銘柄の直近の約定を取得します（件数は上流で制限されます）。
	GetTrades(ctx context.Context, instrument string) (entity.TradeList, error)
}

// AuditRepository は監査結果の保存・参照レイヤーを抽象化します。
type AuditRepository interface {
	Save(ctx context.Context, result *entity.AuditResult) error
	Latest(ctx context.Context, instrument string, interval entity.Timeframe) (*entity.AuditResult, error)
	List(ctx context.Context, instrument string, limit int) ([]entity.AuditResult, error)
}

// Exporter は監査の生データと違反をファイル等に書き出します。
type Exporter interface {
	Export(ctx context.Context, candles entity.CandleSeries, trades entity.TradeList, result *entity.AuditResult) error
}

// AuditObserver は監査結果をメトリクス等に記録します。
type AuditObserver interface {
	ObserveAudit(result *entity.AuditResult)
}

// IntegrityUsecase は市場データを取得し整合性チェックを実行するユースケースです。
type IntegrityUsecase struct {
	market   MarketRepository
	audits   AuditRepository
	exporter Exporter
	observer AuditObserver
	now      func() time.Time
}

// NewIntegrityUsecase はIntegrityUsecaseの新しいインスタンスを生成します。
// audits, exporter, observer は nil を許容し、その場合は該当する処理をスキップします。
func NewIntegrityUsecase(market MarketRepository, audits AuditRepository, exporter Exporter, observer AuditObserver) *IntegrityUsecase {
	return &IntegrityUsecase{
		market:   market,
		audits:   audits,
		exporter: exporter,
		observer: observer,
		now:      time.Now,
	}
}

// Evaluate は指定銘柄・時間足の監査を実行します。
// ローソク足と約定は並行して取得し、どちらかが失敗した場合は監査全体を中断します。
// ローソク足が0件の場合はエラーではなく nothing_to_validate の結果を返します。
func (u *IntegrityUsecase) Evaluate(ctx context.Context, instrument, interval string) (*entity.AuditResult, error) {
	tf, err := entity.ParseTimeframe(interval)
	if err != nil {
		return nil, err
	}

	var (
		candles entity.CandleSeries
		trades  entity.TradeList
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cs, err := u.market.GetCandlesticks(gctx, instrument, tf)
		if err != nil {
			return fmt.Errorf("%w: get candlesticks %s/%s: %w", ErrUpstream, instrument, tf, err)
		}
		candles = cs
		return nil
	})
	g.Go(func() error {
		tl, err := u.market.GetTrades(gctx, instrument)
		if err != nil {
			return fmt.Errorf("%w: get trades %s: %w", ErrUpstream, instrument, err)
		}
		trades = tl
		return nil
	})
	if err := g.Wait(); err != nil {
		slog.Error("failed to fetch market data", "instrument", instrument, "interval", tf.String(), "error", err)
		return nil, err
	}

	for i := range candles.Candles {
		if candles.Candles[i].Interval == "" {
			candles.Candles[i].Interval = tf
		}
		if candles.Candles[i].Instrument == "" {
			candles.Candles[i].Instrument = instrument
		}
	}

	result := &entity.AuditResult{
		ID:         uuid.NewString(),
		Instrument: instrument,
		Interval:   tf,
		NumCandles: len(candles.Candles),
		NumTrades:  len(trades.Trades),
		CreatedAt:  u.now().UTC(),
	}

	if len(candles.Candles) == 0 {
		slog.Warn("no candlestick data, nothing to validate", "instrument", instrument, "interval", tf.String())
		result.Status = entity.AuditStatusNothingToValidate
		result.Report = BuildReport(nil, 0)
	} else {
		result.Report = RunChecks(candles.Candles, trades.Trades)
		result.Status = entity.StatusFor(result.Report)
	}

	slog.Info("integrity audit finished",
		"instrument", instrument,
		"interval", tf.String(),
		"status", string(result.Status),
		"candles", result.NumCandles,
		"trades", result.NumTrades,
		"analyzed", result.Report.AnalyzedIntervalCount,
		"violations", len(result.Report.Violations))

	u.afterAudit(ctx, candles, trades, result)
	return result, nil
}

// afterAudit は保存・エクスポート・メトリクス記録をベストエフォートで実行します。
func (u *IntegrityUsecase) afterAudit(ctx context.Context, candles entity.CandleSeries, trades entity.TradeList, result *entity.AuditResult) {
	if u.observer != nil {
		u.observer.ObserveAudit(result)
	}
	if u.exporter != nil {
		if err := u.exporter.Export(ctx, candles, trades, result); err != nil {
			slog.Warn("failed to export audit data", "audit_id", result.ID, "error", err)
		}
	}
	if u.audits != nil {
		if err := u.audits.Save(ctx, result); err != nil {
			slog.Warn("failed to save audit result", "audit_id", result.ID, "error", err)
		}
	}
}
