// Package domain defines domain-level errors for the integrity feature.
package domain

import "errors"

var (
	// ErrUnknownTimeframe indicates that an interval string does not name a supported candle timeframe.
	ErrUnknownTimeframe = errors.New("unknown timeframe")

	// ErrUnknownRule indicates that a stored rule identifier is not one of the integrity rules.
	ErrUnknownRule = errors.New("unknown integrity rule")

	// ErrUnknownSide indicates that a trade side is neither BUY nor SELL.
	ErrUnknownSide = errors.New("unknown trade side")
)
