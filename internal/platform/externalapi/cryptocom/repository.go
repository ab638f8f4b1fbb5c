package cryptocom

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"trade_integrity/internal/feature/integrity/domain/entity"
	"trade_integrity/internal/feature/integrity/usecase"
	"trade_integrity/internal/platform/externalapi/cryptocom/dto"
	"trade_integrity/internal/platform/metrics"
)

const (
	endpointCandlestick = "public/get-candlestick"
	endpointTrades      = "public/get-trades"
)

// CryptoComMarket はCrypto.com公開APIからローソク足と約定を取得するMarketRepository実装です。
type CryptoComMarket struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
}

// CryptoComMarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*CryptoComMarket)(nil)

// NewCryptoComMarket は指定された設定とHTTPクライアントでCryptoComMarketの新しいインスタンスを生成します。
// RequestsPerSecond が正の場合、リクエストをその頻度に制限します。
func NewCryptoComMarket(cfg Config, client *http.Client) *CryptoComMarket {
	m := &CryptoComMarket{cfg: cfg, client: client}
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		m.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return m
}

// GetCandlesticks は指定銘柄・時間足のローソク足を取得し、CandleSeriesとして返します。
func (m *CryptoComMarket) GetCandlesticks(ctx context.Context, instrument string, interval entity.Timeframe) (entity.CandleSeries, error) {
	q := url.Values{}
	q.Set("instrument_name", instrument)
	q.Set("timeframe", interval.String())

	var body dto.Envelope[dto.CandlestickResult]
	if err := m.get(ctx, endpointCandlestick, q, &body); err != nil {
		return entity.CandleSeries{}, err
	}

	candles := make([]entity.Candle, 0, len(body.Result.Data))
	for _, v := range body.Result.Data {
		candles = append(candles, entity.Candle{
			Instrument:     instrument,
			Interval:       interval,
			IntervalMarker: v.T,
			Open:           v.O,
			High:           v.H,
			Low:            v.L,
			Close:          v.C,
			Volume:         v.V,
		})
	}
	return entity.CandleSeries{Instrument: instrument, Interval: interval, Candles: candles}, nil
}

// GetTrades は指定銘柄の直近の約定を取得します（件数は上流で制限されます）。
func (m *CryptoComMarket) GetTrades(ctx context.Context, instrument string) (entity.TradeList, error) {
	q := url.Values{}
	q.Set("instrument_name", instrument)

	var body dto.Envelope[dto.TradesResult]
	if err := m.get(ctx, endpointTrades, q, &body); err != nil {
		return entity.TradeList{}, err
	}

	trades := make([]entity.Trade, 0, len(body.Result.Data))
	for _, v := range body.Result.Data {
		// 約定IDをパース
		id, err := v.D.Int64()
		if err != nil {
			return entity.TradeList{}, fmt.Errorf("parse trade id %q: %w", v.D.String(), err)
		}
		// 売買区分をパース
		side, err := entity.ParseSide(v.S)
		if err != nil {
			return entity.TradeList{}, fmt.Errorf("parse side of trade %d: %w", id, err)
		}
		trades = append(trades, entity.Trade{
			ID:        id,
			Timestamp: v.T,
			Price:     v.P,
			Quantity:  v.Q,
			Side:      side,
		})
	}
	return entity.TradeList{Instrument: instrument, Trades: trades}, nil
}

type statusReporter interface {
	Status() (code int, message string)
}

// get はエンドポイントを呼び出し、レスポンスをoutにデコードします。
// out は dto.Envelope である必要があり、code != 0 の場合はエラーを返します。
func (m *CryptoComMarket) get(ctx context.Context, endpoint string, q url.Values, out statusReporter) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveUpstream(endpoint, time.Since(start), err)
	}()

	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	// URLを生成
	u := fmt.Sprintf("%s/%s?%s", strings.TrimRight(m.cfg.BaseURL, "/"), endpoint, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("cryptocom http %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	if code, msg := out.Status(); code != 0 {
		return fmt.Errorf("cryptocom %s: code %d: %s", endpoint, code, msg)
	}
	return nil
}
