package usecase_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade_integrity/internal/feature/integrity/domain/entity"
	"trade_integrity/internal/feature/integrity/usecase"
)

const minute = int64(60_000)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func candleAt(marker int64, o, h, l, c, v string) entity.Candle {
	return entity.Candle{
		Instrument:     "ETH_CRO",
		Interval:       entity.OneMinute,
		IntervalMarker: marker,
		Open:           d(o),
		High:           d(h),
		Low:            d(l),
		Close:          d(c),
		Volume:         d(v),
	}
}

func trade(id, ts int64, price, qty string) entity.Trade {
	return entity.Trade{ID: id, Timestamp: ts, Price: d(price), Quantity: d(qty), Side: entity.SideBuy}
}

// padded は検証対象のローソク足の前後に、境界除外で落とされるダミーの区間を追加します。
func padded(target entity.Candle, trades []entity.Trade) ([]entity.Candle, []entity.Trade) {
	before := candleAt(target.IntervalMarker-minute, "1", "1", "1", "1", "1")
	after := candleAt(target.IntervalMarker+minute, "1", "1", "1", "1", "1")
	all := append([]entity.Trade{
		trade(901, before.IntervalMarker, "1", "1"),
		trade(902, after.IntervalMarker, "1", "1"),
	}, trades...)
	return []entity.Candle{after, target, before}, all
}

func TestMatchTrades(t *testing.T) {
	candles := []entity.Candle{
		candleAt(0, "1", "1", "1", "1", "1"),
		candleAt(minute, "1", "1", "1", "1", "1"),
		candleAt(2*minute, "1", "1", "1", "1", "1"),
	}
	trades := []entity.Trade{
		trade(1, minute+5, "1", "1"),
		trade(2, 0, "1", "1"),
		trade(3, minute, "1", "1"),
		trade(4, 2*minute-1, "1", "1"),
		trade(5, 3*minute, "1", "1"), // 全区間の外
	}

	groups := usecase.MatchTrades(candles, trades)
	require.Len(t, groups, 3)

	ids := func(g entity.IntervalGroup) []int64 {
		var out []int64
		for _, tr := range g.Trades {
			out = append(out, tr.ID)
		}
		return out
	}
	assert.Equal(t, []int64{2}, ids(groups[0]))
	assert.Equal(t, []int64{3, 1, 4}, ids(groups[1]))
	assert.Empty(t, groups[2].Trades)

	// 入力の約定スライスは並び替えられない
	assert.Equal(t, int64(1), trades[0].ID)
}

// TestMatchTrades_DisjointAndCovering は区間同士が重ならず、区間の範囲内の約定がすべて割り当てられることを確認します。
func TestMatchTrades_DisjointAndCovering(t *testing.T) {
	var candles []entity.Candle
	for i := int64(0); i < 5; i++ {
		candles = append(candles, candleAt(i*minute, "1", "1", "1", "1", "1"))
	}
	var trades []entity.Trade
	for i := int64(0); i < 5*minute; i += 7_919 {
		trades = append(trades, trade(i, i, "1", "1"))
	}

	seen := map[int64]int{}
	for _, g := range usecase.MatchTrades(candles, trades) {
		for _, tr := range g.Trades {
			seen[tr.ID]++
		}
	}
	require.Len(t, seen, len(trades))
	for id, n := range seen {
		assert.Equalf(t, 1, n, "trade %d matched %d times", id, n)
	}
}

func TestTrimBoundaries(t *testing.T) {
	group := func(marker int64, nTrades int) entity.IntervalGroup {
		g := entity.IntervalGroup{Candle: candleAt(marker, "1", "1", "1", "1", "1")}
		for i := 0; i < nTrades; i++ {
			g.Trades = append(g.Trades, trade(int64(i), marker, "1", "1"))
		}
		return g
	}

	tests := []struct {
		name    string
		groups  []entity.IntervalGroup
		markers []int64
	}{
		{name: "success: empty input", groups: nil, markers: []int64{}},
		{name: "success: one group is dropped", groups: []entity.IntervalGroup{group(0, 1)}, markers: []int64{}},
		{name: "success: two groups are dropped", groups: []entity.IntervalGroup{group(0, 1), group(minute, 1)}, markers: []int64{}},
		{
			name:    "success: unsorted input is sorted then trimmed",
			groups:  []entity.IntervalGroup{group(3*minute, 1), group(0, 2), group(2*minute, 1), group(minute, 3)},
			markers: []int64{minute, 2 * minute},
		},
		{
			name:    "success: zero-trade groups are discarded before trimming",
			groups:  []entity.IntervalGroup{group(0, 0), group(minute, 1), group(2*minute, 1), group(3*minute, 1), group(4*minute, 0)},
			markers: []int64{2 * minute},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := usecase.TrimBoundaries(tt.groups)
			markers := []int64{}
			for _, g := range got {
				markers = append(markers, g.Candle.IntervalMarker)
			}
			assert.Equal(t, tt.markers, markers)

			nonEmpty := 0
			for _, g := range tt.groups {
				if len(g.Trades) > 0 {
					nonEmpty++
				}
			}
			assert.LessOrEqual(t, len(got), len(tt.groups))
			assert.LessOrEqual(t, nonEmpty-len(got), 2)
		})
	}
}

func TestCheckVolume(t *testing.T) {
	trades := []entity.Trade{trade(1, 0, "1", "1.00001"), trade(2, 1, "1", "2.00002")}

	t.Run("success: rounded sum equals candle volume", func(t *testing.T) {
		g := entity.IntervalGroup{Candle: candleAt(0, "1", "1", "1", "1", "3.00003"), Trades: trades}
		_, ok := usecase.CheckVolume(g)
		assert.False(t, ok)
	})

	t.Run("success: trailing zeros are ignored", func(t *testing.T) {
		g := entity.IntervalGroup{Candle: candleAt(0, "1", "1", "1", "1", "3.0000300"), Trades: trades}
		_, ok := usecase.CheckVolume(g)
		assert.False(t, ok)
	})

	t.Run("success: candle volume rounds half up to match", func(t *testing.T) {
		g := entity.IntervalGroup{Candle: candleAt(0, "1", "1", "1", "1", "3.000025"), Trades: trades}
		_, ok := usecase.CheckVolume(g)
		assert.False(t, ok)
	})

	t.Run("violation: mismatch carries computed volume", func(t *testing.T) {
		g := entity.IntervalGroup{Candle: candleAt(0, "1", "1", "1", "1", "3.00000"), Trades: trades}
		v, ok := usecase.CheckVolume(g)
		require.True(t, ok)
		assert.Equal(t, entity.RuleVolume, v.Rule)
		require.NotNil(t, v.ComputedVolume)
		assert.True(t, v.ComputedVolume.Equal(d("3.00003")), "got %s", v.ComputedVolume)
		assert.Nil(t, v.Trade)
		assert.Equal(t, 2, v.TradeCount)
	})
}

func TestCheckOpen_TieBreak(t *testing.T) {
	trades := []entity.Trade{
		trade(1, 100, "10", "1"),
		trade(2, 100, "12", "1"),
		trade(3, 105, "15", "1"),
	}

	t.Run("success: highest price at the shared first timestamp opens", func(t *testing.T) {
		g := entity.IntervalGroup{Candle: candleAt(0, "12", "15", "10", "15", "3"), Trades: trades}
		_, ok := usecase.CheckOpen(g)
		assert.False(t, ok)
	})

	t.Run("violation: cites the selected opening trade", func(t *testing.T) {
		g := entity.IntervalGroup{Candle: candleAt(0, "10", "15", "10", "15", "3"), Trades: trades}
		v, ok := usecase.CheckOpen(g)
		require.True(t, ok)
		require.NotNil(t, v.Trade)
		assert.True(t, v.Trade.Price.Equal(d("12")))
		assert.Equal(t, int64(2), v.Trade.ID)
	})

	t.Run("success: distinct first timestamps use earliest trade", func(t *testing.T) {
		g := entity.IntervalGroup{
			Candle: candleAt(0, "10.00", "12", "10", "12", "2"),
			Trades: []entity.Trade{trade(1, 100, "10", "1"), trade(2, 101, "12", "1")},
		}
		_, ok := usecase.CheckOpen(g)
		assert.False(t, ok)
	})
}

func TestCheckClose_TieBreak(t *testing.T) {
	trades := []entity.Trade{
		trade(1, 100, "10", "1"),
		trade(2, 110, "14", "1"),
		trade(3, 110, "11", "1"),
	}

	g := entity.IntervalGroup{Candle: candleAt(0, "10", "14", "10", "14", "3"), Trades: trades}
	_, ok := usecase.CheckClose(g)
	assert.False(t, ok)

	g.Candle.Close = d("11")
	v, ok := usecase.CheckClose(g)
	require.True(t, ok)
	assert.Equal(t, entity.RuleClose, v.Rule)
	assert.Equal(t, int64(2), v.Trade.ID)
}

func TestCheckHighLow(t *testing.T) {
	trades := []entity.Trade{
		trade(1, 1, "5", "1"),
		trade(2, 2, "9", "1"),
		trade(3, 3, "9", "1"),
		trade(4, 4, "3", "1"),
	}
	g := entity.IntervalGroup{Candle: candleAt(0, "5", "9.0", "3.00", "3", "4"), Trades: trades}

	_, ok := usecase.CheckHigh(g)
	assert.False(t, ok)
	_, ok = usecase.CheckLow(g)
	assert.False(t, ok)

	g.Candle.High = d("10")
	g.Candle.Low = d("2")
	hv, ok := usecase.CheckHigh(g)
	require.True(t, ok)
	assert.Equal(t, int64(2), hv.Trade.ID, "first maximal trade is cited")
	lv, ok := usecase.CheckLow(g)
	require.True(t, ok)
	assert.Equal(t, int64(4), lv.Trade.ID)
}

func TestEvaluateGroup_SingleTrade(t *testing.T) {
	g := entity.IntervalGroup{
		Candle: candleAt(0, "7", "7", "7", "7", "0.5"),
		Trades: []entity.Trade{trade(1, 10, "7", "0.5")},
	}
	assert.Empty(t, usecase.EvaluateGroup(g))

	g.Candle.Open = d("6")
	g.Candle.Close = d("8")
	vs := usecase.EvaluateGroup(g)
	require.Len(t, vs, 2)
	assert.Equal(t, entity.RuleOpen, vs[0].Rule)
	assert.Equal(t, entity.RuleClose, vs[1].Rule)
	assert.Equal(t, int64(1), vs[0].Trade.ID)
	assert.Equal(t, int64(1), vs[1].Trade.ID)
	assert.Equal(t, 1, vs[0].TradeCount)
	assert.Equal(t, 1, vs[1].TradeCount)
}

func TestEvaluateGroup_PanicsOnEmptyGroup(t *testing.T) {
	assert.Panics(t, func() {
		usecase.EvaluateGroup(entity.IntervalGroup{Candle: candleAt(0, "1", "1", "1", "1", "1")})
	})
}

func TestBuildReport(t *testing.T) {
	r := usecase.BuildReport(nil, 0)
	assert.NotNil(t, r.Violations)
	assert.False(t, r.HasViolations())

	r = usecase.BuildReport([]entity.Violation{{Rule: entity.RuleLow}}, 4)
	assert.True(t, r.HasViolations())
	assert.Equal(t, 4, r.AnalyzedIntervalCount)
}

func TestRunChecks(t *testing.T) {
	target := minute * 10
	trades := []entity.Trade{
		trade(1, target+1_000, "5", "2"),
		trade(2, target+2_000, "9", "2"),
	}

	t.Run("success: consistent candle has no violations", func(t *testing.T) {
		candles, all := padded(candleAt(target, "5", "9", "5", "9", "4"), trades)
		r := usecase.RunChecks(candles, all)
		assert.Empty(t, r.Violations)
		assert.Equal(t, 1, r.AnalyzedIntervalCount)
	})

	t.Run("violation: every field wrong yields one violation per rule", func(t *testing.T) {
		candles, all := padded(candleAt(target, "6", "10", "4", "8", "5"), trades)
		r := usecase.RunChecks(candles, all)
		require.Len(t, r.Violations, 5)
		assert.Equal(t, 1, r.AnalyzedIntervalCount)

		var kinds []entity.RuleKind
		for _, v := range r.Violations {
			kinds = append(kinds, v.Rule)
			assert.Equal(t, target, v.Group.Candle.IntervalMarker)
		}
		assert.Equal(t, entity.RuleKinds(), kinds)
		assert.Equal(t, 1, r.CountByRule()[entity.RuleVolume])
	})

	t.Run("success: identical input yields identical report", func(t *testing.T) {
		candles, all := padded(candleAt(target, "6", "10", "4", "8", "5"), trades)
		assert.Equal(t, usecase.RunChecks(candles, all), usecase.RunChecks(candles, all))
	})

	t.Run("success: no candles analyzes nothing", func(t *testing.T) {
		r := usecase.RunChecks(nil, trades)
		assert.Empty(t, r.Violations)
		assert.Zero(t, r.AnalyzedIntervalCount)
	})
}
