// Package entity defines the domain models for the watchlist feature.
package entity

import "time"

// WatchedInstrument is an instrument/timeframe pair that the sweep audits on every run.
// Interval holds a candle timeframe identifier such as "1m" or "1D".
type WatchedInstrument struct {
	ID         uint      `gorm:"primaryKey"`
	Instrument string    `gorm:"size:64;not null;uniqueIndex:idx_watch_inst_tf"`
	Interval   string    `gorm:"column:timeframe;size:8;not null;uniqueIndex:idx_watch_inst_tf"`
	IsActive   bool      `gorm:"not null;default:true"`
	SortKey    int       `gorm:"not null;default:0"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// TableName pins the table name used by gorm.
func (WatchedInstrument) TableName() string {
	return "watched_instruments"
}
