// Package usecase implements the business logic for the audit watchlist.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	integrity "trade_integrity/internal/feature/integrity/domain/entity"
	"trade_integrity/internal/feature/watchlist/domain/entity"
)

// ErrEmptyInstrument is returned when a watch request carries no instrument name.
var ErrEmptyInstrument = errors.New("instrument is required")

// WatchlistRepository abstracts the persistence layer for watched instruments.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type WatchlistRepository interface {
	ListActive(ctx context.Context) ([]entity.WatchedInstrument, error)
	Upsert(ctx context.Context, w *entity.WatchedInstrument) error
}

// WatchlistUsecase provides business logic for watchlist operations.
type WatchlistUsecase struct {
	repo WatchlistRepository
}

// NewWatchlistUsecase creates a new WatchlistUsecase with the given repository.
func NewWatchlistUsecase(r WatchlistRepository) *WatchlistUsecase {
	return &WatchlistUsecase{repo: r}
}

// ListActive returns all active watchlist entries ordered by sort key.
func (u *WatchlistUsecase) ListActive(ctx context.Context) ([]entity.WatchedInstrument, error) {
	return u.repo.ListActive(ctx)
}

// Watch registers (or re-activates) an instrument/timeframe pair.
// The interval must be a supported candle timeframe.
func (u *WatchlistUsecase) Watch(ctx context.Context, instrument, interval string, sortKey int) (*entity.WatchedInstrument, error) {
	instrument = strings.TrimSpace(instrument)
	if instrument == "" {
		return nil, ErrEmptyInstrument
	}
	tf, err := integrity.ParseTimeframe(interval)
	if err != nil {
		return nil, err
	}

	w := &entity.WatchedInstrument{
		Instrument: instrument,
		Interval:   tf.String(),
		IsActive:   true,
		SortKey:    sortKey,
	}
	if err := u.repo.Upsert(ctx, w); err != nil {
		return nil, fmt.Errorf("watch %s/%s: %w", instrument, tf, err)
	}
	return w, nil
}
