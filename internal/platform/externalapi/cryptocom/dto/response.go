// Package dto defines data transfer objects for the Crypto.com public API responses.
package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Envelope is the common wrapper around every public endpoint response.
type Envelope[T any] struct {
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Result  T      `json:"result"`
}

// Status returns the API-level result code (0 on success) and message.
func (e *Envelope[T]) Status() (int, string) {
	return e.Code, e.Message
}

// CandlestickResult is the result block of public/get-candlestick.
type CandlestickResult struct {
	InstrumentName string        `json:"instrument_name"`
	Interval       string        `json:"interval"`
	Depth          int           `json:"depth"`
	Data           []Candlestick `json:"data"`
}

// Candlestick is a single OHLCV bar. T is the interval marker in epoch milliseconds.
type Candlestick struct {
	T int64           `json:"t"`
	O decimal.Decimal `json:"o"`
	H decimal.Decimal `json:"h"`
	L decimal.Decimal `json:"l"`
	C decimal.Decimal `json:"c"`
	V decimal.Decimal `json:"v"`
}

// TradesResult is the result block of public/get-trades.
type TradesResult struct {
	InstrumentName string  `json:"instrument_name"`
	Data           []Trade `json:"data"`
}

// Trade is a single trade print. D is the trade ID, which may exceed float precision.
type Trade struct {
	D        json.Number     `json:"d"`
	S        string          `json:"s"`
	P        decimal.Decimal `json:"p"`
	Q        decimal.Decimal `json:"q"`
	T        int64           `json:"t"`
	I        string          `json:"i,omitempty"`
	DataTime int64           `json:"dataTime,omitempty"`
}
