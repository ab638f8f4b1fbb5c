// Package di provides dependency injection factories for creating application components.
package di

import (
	"trade_integrity/internal/platform/externalapi/cryptocom"
	infrahttp "trade_integrity/internal/platform/http"
)

// UserAgent is sent with every upstream market-data request.
const UserAgent = "trade-integrity-checker/1.0"

// NewMarket creates a fully configured CryptoComMarket with HTTP client.
func NewMarket(cfg cryptocom.Config) *cryptocom.CryptoComMarket {
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout, UserAgent)
	return cryptocom.NewCryptoComMarket(cfg, httpClient)
}
