// Package usecase はローソク足と約定データの整合性チェックのビジネスロジックを実装します。
package usecase

import (
	"log/slog"
	"sort"

	"trade_integrity/internal/feature/integrity/domain/entity"
)

// MatchTrades は各ローソク足に対して、その区間 [start, start+interval) に含まれる約定を割り当てます。
// ローソク足1本につき必ず1グループを返し（約定0件のグループも含む）、入力は変更しません。
// グループ内の約定はタイムスタンプ昇順に並びます（同一タイムスタンプ同士の順序は入力順を保ちます）。
func MatchTrades(candles []entity.Candle, trades []entity.Trade) []entity.IntervalGroup {
	sorted := make([]entity.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	groups := make([]entity.IntervalGroup, 0, len(candles))
	for _, c := range candles {
		var matched []entity.Trade
		for _, tr := range sorted {
			if c.Contains(tr.Timestamp) {
				matched = append(matched, tr)
			}
		}
		if len(matched) > 0 {
			slog.Debug("matched trades to candle",
				"instrument", c.Instrument,
				"interval", c.Interval.String(),
				"interval_marker", c.IntervalMarker,
				"trades", len(matched))
		}
		groups = append(groups, entity.IntervalGroup{Candle: c, Trades: matched})
	}
	return groups
}
