package usecase

import (
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"trade_integrity/internal/feature/integrity/domain/entity"
)

// VolumeScale は出来高比較時に丸める小数点以下の桁数です（四捨五入）。
const VolumeScale = 5

// EvaluateGroup は1区間に対して5つのルールをすべて評価し、違反を OPEN, CLOSE, HIGH, LOW, VOLUME の順で返します。
// 約定0件のグループは TrimBoundaries で除外されている前提のため、渡された場合は panic します。
func EvaluateGroup(g entity.IntervalGroup) []entity.Violation {
	if len(g.Trades) == 0 {
		panic("usecase: EvaluateGroup called with an interval that has no trades")
	}

	checks := []func(entity.IntervalGroup) (entity.Violation, bool){
		CheckOpen,
		CheckClose,
		CheckHigh,
		CheckLow,
		CheckVolume,
	}

	var out []entity.Violation
	for _, check := range checks {
		if v, ok := check(g); ok {
			out = append(out, v)
		}
	}
	return out
}

// CheckOpen は始値の約定価格がローソク足の open と一致するかを検証します。
func CheckOpen(g entity.IntervalGroup) (entity.Violation, bool) {
	tr := openingTrade(g.Trades)
	if tr.Price.Equal(g.Candle.Open) {
		return entity.Violation{}, false
	}
	return tradeViolation(entity.RuleOpen, g, tr, g.Candle.Open)
}

// CheckClose は終値の約定価格がローソク足の close と一致するかを検証します。
func CheckClose(g entity.IntervalGroup) (entity.Violation, bool) {
	tr := closingTrade(g.Trades)
	if tr.Price.Equal(g.Candle.Close) {
		return entity.Violation{}, false
	}
	return tradeViolation(entity.RuleClose, g, tr, g.Candle.Close)
}

// CheckHigh は約定の最高値がローソク足の high と一致するかを検証します。
// 最高値の約定が複数ある場合は時系列で最初のものを引用します。
func CheckHigh(g entity.IntervalGroup) (entity.Violation, bool) {
	tr := g.Trades[0]
	for _, t := range g.Trades[1:] {
		if t.Price.GreaterThan(tr.Price) {
			tr = t
		}
	}
	if tr.Price.Equal(g.Candle.High) {
		return entity.Violation{}, false
	}
	return tradeViolation(entity.RuleHigh, g, tr, g.Candle.High)
}

// CheckLow は約定の最安値がローソク足の low と一致するかを検証します。
// 最安値の約定が複数ある場合は時系列で最初のものを引用します。
func CheckLow(g entity.IntervalGroup) (entity.Violation, bool) {
	tr := g.Trades[0]
	for _, t := range g.Trades[1:] {
		if t.Price.LessThan(tr.Price) {
			tr = t
		}
	}
	if tr.Price.Equal(g.Candle.Low) {
		return entity.Violation{}, false
	}
	return tradeViolation(entity.RuleLow, g, tr, g.Candle.Low)
}

// CheckVolume は約定数量の合計とローソク足の volume を小数点以下5桁に丸めて比較します。
func CheckVolume(g entity.IntervalGroup) (entity.Violation, bool) {
	sum := decimal.Zero
	for _, t := range g.Trades {
		sum = sum.Add(t.Quantity)
	}
	computed := sum.Round(VolumeScale)
	if computed.Equal(g.Candle.Volume.Round(VolumeScale)) {
		return entity.Violation{}, false
	}

	slog.Warn("integrity violation",
		"rule", entity.RuleVolume.String(),
		"instrument", g.Candle.Instrument,
		"interval_marker", g.Candle.IntervalMarker,
		"candle_volume", g.Candle.Volume.String(),
		"trade_volume", computed.String())
	return entity.Violation{Rule: entity.RuleVolume, Group: g, TradeCount: len(g.Trades), ComputedVolume: &computed}, true
}

func tradeViolation(rule entity.RuleKind, g entity.IntervalGroup, tr entity.Trade, published decimal.Decimal) (entity.Violation, bool) {
	slog.Warn("integrity violation",
		"rule", rule.String(),
		"instrument", g.Candle.Instrument,
		"interval_marker", g.Candle.IntervalMarker,
		"candle_price", published.String(),
		"trade_price", tr.Price.String(),
		"trade_id", tr.ID)
	cited := tr
	return entity.Violation{Rule: rule, Group: g, TradeCount: len(g.Trades), Trade: &cited}, true
}

// openingTrade は区間の始値となる約定を選びます。
// 最初の2件が同一タイムスタンプの場合、そのタイムスタンプの約定のうち最も価格が高いものを採用します。
func openingTrade(trades []entity.Trade) entity.Trade {
	if len(trades) == 1 || trades[0].Timestamp != trades[1].Timestamp {
		return trades[0]
	}
	return highestPricedAt(trades, trades[0].Timestamp)
}

// closingTrade は区間の終値となる約定を選びます。
// 最後の2件が同一タイムスタンプの場合、そのタイムスタンプの約定のうち最も価格が高いものを採用します。
func closingTrade(trades []entity.Trade) entity.Trade {
	n := len(trades)
	if n == 1 || trades[n-1].Timestamp != trades[n-2].Timestamp {
		return trades[n-1]
	}
	return highestPricedAt(trades, trades[n-1].Timestamp)
}

func highestPricedAt(trades []entity.Trade, ts int64) entity.Trade {
	var same []entity.Trade
	for _, t := range trades {
		if t.Timestamp == ts {
			same = append(same, t)
		}
	}
	sort.SliceStable(same, func(i, j int) bool {
		return same[i].Price.LessThan(same[j].Price)
	})
	return same[len(same)-1]
}
