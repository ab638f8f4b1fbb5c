package entity

import "time"

// AuditStatus はインテグリティ監査の結果状態です。
type AuditStatus string

const (
	// AuditStatusOK は分析対象の全区間がルールを満たしたことを示します。
	AuditStatusOK AuditStatus = "ok"
	// AuditStatusViolationsFound は1件以上の違反が見つかったことを示します。
	AuditStatusViolationsFound AuditStatus = "violations_found"
	// AuditStatusNothingToValidate はローソク足が取得できず検証対象がなかったことを示します。
	AuditStatusNothingToValidate AuditStatus = "nothing_to_validate"
)

// AuditResult は1回の監査実行の結果（サマリーとレポート）を表します。
type AuditResult struct {
	ID         string
	Instrument string
	Interval   Timeframe
	Status     AuditStatus
	NumCandles int
	NumTrades  int
	Report     ValidationReport
	CreatedAt  time.Time
}

// StatusFor はレポートから監査状態を決定します。
func StatusFor(report ValidationReport) AuditStatus {
	if report.HasViolations() {
		return AuditStatusViolationsFound
	}
	return AuditStatusOK
}
