// Package entity defines the domain models for the integrity feature.
package entity

import (
	"fmt"
	"time"

	"trade_integrity/internal/feature/integrity/domain"
)

// Timeframe はローソク足の時間足（例: "1m", "1h", "1D"）を表します。
type Timeframe string

// サポートされる時間足の一覧です。
const (
	OneMinute      Timeframe = "1m"
	FiveMinutes    Timeframe = "5m"
	FifteenMinutes Timeframe = "15m"
	ThirtyMinutes  Timeframe = "30m"
	OneHour        Timeframe = "1h"
	FourHours      Timeframe = "4h"
	SixHours       Timeframe = "6h"
	TwelveHours    Timeframe = "12h"
	OneDay         Timeframe = "1D"
	OneWeek        Timeframe = "7D"
	TwoWeeks       Timeframe = "14D"
	OneMonth       Timeframe = "1M"
)

// timeframeMillis は各時間足の長さ（ミリ秒）です。
// 1Mは平均的な月の長さ（30.4375日）で固定しています。
var timeframeMillis = map[Timeframe]int64{
	OneMinute:      60_000,
	FiveMinutes:    300_000,
	FifteenMinutes: 900_000,
	ThirtyMinutes:  1_800_000,
	OneHour:        3_600_000,
	FourHours:      14_400_000,
	SixHours:       21_600_000,
	TwelveHours:    43_200_000,
	OneDay:         86_400_000,
	OneWeek:        604_800_000,
	TwoWeeks:       1_209_600_000,
	OneMonth:       2_629_800_000,
}

// Timeframes はサポートされる時間足を短い順に返します。
func Timeframes() []Timeframe {
	return []Timeframe{
		OneMinute, FiveMinutes, FifteenMinutes, ThirtyMinutes,
		OneHour, FourHours, SixHours, TwelveHours,
		OneDay, OneWeek, TwoWeeks, OneMonth,
	}
}

// ParseTimeframe は文字列を Timeframe に変換します。
// 大文字・小文字は区別されます（"1m" は1分足、"1M" は1か月足）。
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(s)
	if _, ok := timeframeMillis[tf]; !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownTimeframe, s)
	}
	return tf, nil
}

// Millis は時間足の長さをミリ秒で返します。未知の時間足の場合は0を返します。
func (t Timeframe) Millis() int64 {
	return timeframeMillis[t]
}

// Duration は時間足の長さを time.Duration で返します。
func (t Timeframe) Duration() time.Duration {
	return time.Duration(t.Millis()) * time.Millisecond
}

func (t Timeframe) String() string {
	return string(t)
}
