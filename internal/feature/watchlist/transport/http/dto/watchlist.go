// Package dto defines data transfer objects for the watchlist HTTP API.
package dto

// WatchItem represents a watched instrument in the API response.
type WatchItem struct {
	Instrument string `json:"instrument"`
	Interval   string `json:"interval"`
}
