package usecase

import (
	"trade_integrity/internal/feature/integrity/domain/entity"
)

// BuildReport は違反リストと分析区間数からレポートを組み立てます。
func BuildReport(violations []entity.Violation, analyzed int) entity.ValidationReport {
	if violations == nil {
		violations = []entity.Violation{}
	}
	return entity.ValidationReport{
		Violations:            violations,
		AnalyzedIntervalCount: analyzed,
	}
}

// RunChecks はマッチング → 境界除外 → ルール評価 → レポート作成を順に実行します。
// 入力だけに依存する純粋な処理で、同じ入力に対しては常に同じレポートを返します。
func RunChecks(candles []entity.Candle, trades []entity.Trade) entity.ValidationReport {
	groups := TrimBoundaries(MatchTrades(candles, trades))

	var violations []entity.Violation
	for _, g := range groups {
		violations = append(violations, EvaluateGroup(g)...)
	}
	return BuildReport(violations, len(groups))
}
