package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"trade_integrity/internal/feature/integrity/domain"
)

// Side is the taker side of a trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ParseSide converts an upstream side string (case-insensitive) to a Side.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToUpper(strings.TrimSpace(s))) {
	case SideBuy:
		return SideBuy, nil
	case SideSell:
		return SideSell, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownSide, s)
	}
}

// Trade represents a single executed trade print.
type Trade struct {
	ID        int64           // Upstream trade ID
	Timestamp int64           // Execution time in epoch milliseconds
	Price     decimal.Decimal // Execution price
	Quantity  decimal.Decimal // Executed base quantity
	Side      Side            // BUY or SELL
}

// TradeList is the bounded most-recent trade window returned by the market-data source.
type TradeList struct {
	Instrument string
	Trades     []Trade
}
