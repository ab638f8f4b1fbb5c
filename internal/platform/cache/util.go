package cache

import (
	"time"

	"trade_integrity/internal/feature/integrity/domain/entity"
)

// TTLUntilNextBoundary は次のローソク足の区切り（エポック基準）までの期間を返します。
// 区切りを過ぎると最新の監査結果は古くなるため、キャッシュTTLの上限として使います。
// maxTTL より長い場合や時間足が不明な場合は maxTTL を返します。
func TTLUntilNextBoundary(tf entity.Timeframe, now time.Time, maxTTL time.Duration) time.Duration {
	step := tf.Millis()
	if step <= 0 {
		return maxTTL
	}

	ms := now.UnixMilli()
	next := (ms/step + 1) * step
	d := time.Duration(next-ms) * time.Millisecond

	if d > maxTTL {
		return maxTTL
	}
	return d
}
