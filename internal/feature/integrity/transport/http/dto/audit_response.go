// Package dto はintegrityフィーチャーのHTTPレスポンスDTOを定義します。
package dto

import (
	"time"

	"trade_integrity/internal/feature/integrity/domain/entity"
)

// ErrorResponse はエラー時のレスポンスDTOです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// CandleResponse は違反対象のローソク足のスナップショットです。
type CandleResponse struct {
	IntervalStart  string `json:"interval_start"`  // 区間開始（RFC3339, UTC）
	IntervalMarker int64  `json:"interval_marker"` // 区間開始（エポックミリ秒）
	Open           string `json:"open"`
	High           string `json:"high"`
	Low            string `json:"low"`
	Close          string `json:"close"`
	Volume         string `json:"volume"`
}

// TradeResponse は違反の根拠となった約定です。
type TradeResponse struct {
	ID        int64  `json:"id"`
	Timestamp int64  `json:"timestamp"`
	Price     string `json:"price"`
	Quantity  string `json:"quantity"`
	Side      string `json:"side"`
}

// ViolationResponse は違反1件のレスポンスDTOです。
type ViolationResponse struct {
	Rule             string         `json:"rule"`
	Description      string         `json:"description"`
	Candle           CandleResponse `json:"candle"`
	TradesInInterval int            `json:"trades_in_interval"`
	OffendingTrade   *TradeResponse `json:"offending_trade,omitempty"`
	ComputedVolume   *string        `json:"computed_volume,omitempty"`
}

// AuditResponse は監査結果のレスポンスDTOです。
type AuditResponse struct {
	ID               string              `json:"id"`
	Instrument       string              `json:"instrument"`
	Interval         string              `json:"interval"`
	Status           string              `json:"status"`
	NumCandles       int                 `json:"num_candles"`
	NumTrades        int                 `json:"num_trades"`
	NumAnalyzed      int                 `json:"num_candles_analyzed"`
	NumViolations    int                 `json:"num_violations"`
	HasViolations    bool                `json:"has_violations"`
	ViolationsByRule map[string]int      `json:"violations_by_rule"`
	Violations       []ViolationResponse `json:"violations,omitempty"`
	CreatedAt        string              `json:"created_at"`
}

// FromAuditResult はドメインの監査結果をレスポンスDTOに変換します。
// withViolations が false の場合は違反の明細を省略します（一覧表示用）。
func FromAuditResult(r *entity.AuditResult, withViolations bool) AuditResponse {
	byRule := make(map[string]int)
	for rule, n := range r.Report.CountByRule() {
		byRule[rule.String()] = n
	}

	out := AuditResponse{
		ID:               r.ID,
		Instrument:       r.Instrument,
		Interval:         r.Interval.String(),
		Status:           string(r.Status),
		NumCandles:       r.NumCandles,
		NumTrades:        r.NumTrades,
		NumAnalyzed:      r.Report.AnalyzedIntervalCount,
		NumViolations:    len(r.Report.Violations),
		HasViolations:    r.Report.HasViolations(),
		ViolationsByRule: byRule,
		CreatedAt:        r.CreatedAt.UTC().Format(time.RFC3339),
	}
	if !withViolations {
		return out
	}

	out.Violations = make([]ViolationResponse, 0, len(r.Report.Violations))
	for _, v := range r.Report.Violations {
		c := v.Group.Candle
		vr := ViolationResponse{
			Rule:        v.Rule.String(),
			Description: v.Rule.Description(),
			Candle: CandleResponse{
				IntervalStart:  c.Start().Format(time.RFC3339),
				IntervalMarker: c.IntervalMarker,
				Open:           c.Open.String(),
				High:           c.High.String(),
				Low:            c.Low.String(),
				Close:          c.Close.String(),
				Volume:         c.Volume.String(),
			},
			TradesInInterval: v.TradeCount,
		}
		if v.Trade != nil {
			vr.OffendingTrade = &TradeResponse{
				ID:        v.Trade.ID,
				Timestamp: v.Trade.Timestamp,
				Price:     v.Trade.Price.String(),
				Quantity:  v.Trade.Quantity.String(),
				Side:      string(v.Trade.Side),
			}
		}
		if v.ComputedVolume != nil {
			s := v.ComputedVolume.String()
			vr.ComputedVolume = &s
		}
		out.Violations = append(out.Violations, vr)
	}
	return out
}
