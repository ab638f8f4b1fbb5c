package usecase

import (
	"sort"

	"trade_integrity/internal/feature/integrity/domain/entity"
)

// TrimBoundaries は検証可能なグループだけを返します。
//  1. 約定が0件のグループを除外
//  2. ローソク足の開始時刻で昇順ソート
//  3. 先頭（約定ウィンドウ外の古い約定が欠けている可能性）と末尾（未確定の最新区間）を除外
//
// 戻り値の長さが分析対象の区間数になります。
func TrimBoundaries(groups []entity.IntervalGroup) []entity.IntervalGroup {
	kept := make([]entity.IntervalGroup, 0, len(groups))
	for _, g := range groups {
		if len(g.Trades) > 0 {
			kept = append(kept, g)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Candle.IntervalMarker < kept[j].Candle.IntervalMarker
	})

	if len(kept) <= 2 {
		return []entity.IntervalGroup{}
	}
	return kept[1 : len(kept)-1]
}
