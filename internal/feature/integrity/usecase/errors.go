package usecase

import "errors"

var (
	// ErrUpstream wraps failures of the market-data source. The whole audit is aborted.
	ErrUpstream = errors.New("upstream market data unavailable")

	// ErrAuditNotFound indicates that no stored audit matches the query.
	ErrAuditNotFound = errors.New("audit not found")
)
