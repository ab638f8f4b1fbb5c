package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle represents a published OHLCV candlestick for one instrument and timeframe.
// IntervalMarker is the upstream "t" field in epoch milliseconds. Observed data shows it
// marks the START of the interval even though the upstream documents it as the end time.
type Candle struct {
	Instrument     string          // Instrument name (e.g., "ETH_CRO")
	Interval       Timeframe       // Timeframe of this candle
	IntervalMarker int64           // Interval start in epoch milliseconds
	Open           decimal.Decimal // Opening price
	High           decimal.Decimal // Highest price during the interval
	Low            decimal.Decimal // Lowest price during the interval
	Close          decimal.Decimal // Closing price
	Volume         decimal.Decimal // Traded base quantity
}

// Contains reports whether a trade timestamp falls inside the candle's half-open window
// [IntervalMarker, IntervalMarker+Interval).
func (c Candle) Contains(timestamp int64) bool {
	return c.IntervalMarker <= timestamp && timestamp < c.IntervalMarker+c.Interval.Millis()
}

// Start returns the interval start as a UTC time.
func (c Candle) Start() time.Time {
	return time.UnixMilli(c.IntervalMarker).UTC()
}

// CandleSeries is the candle list returned by the market-data source for one instrument and timeframe.
type CandleSeries struct {
	Instrument string
	Interval   Timeframe
	Candles    []Candle
}
