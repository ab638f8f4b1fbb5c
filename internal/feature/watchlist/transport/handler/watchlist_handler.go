package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"trade_integrity/internal/feature/watchlist/domain/entity"
	"trade_integrity/internal/feature/watchlist/transport/http/dto"
)

// WatchlistUsecase は監視対象に関するユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type WatchlistUsecase interface {
	ListActive(ctx context.Context) ([]entity.WatchedInstrument, error)
}

// WatchlistHandler は監視対象に関するHTTPリクエストを処理します。
type WatchlistHandler struct {
	uc WatchlistUsecase
}

// NewWatchlistHandler は新しい WatchlistHandler を作成します。
func NewWatchlistHandler(uc WatchlistUsecase) *WatchlistHandler {
	return &WatchlistHandler{uc: uc}
}

// List は有効な監視対象の一覧を取得するAPIです。
// Usecaseでエラーが発生した場合は500 Internal Server Errorを返します。
func (h *WatchlistHandler) List(c *gin.Context) {
	items, err := h.uc.ListActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.WatchItem, 0, len(items))
	for _, w := range items {
		out = append(out, dto.WatchItem{Instrument: w.Instrument, Interval: w.Interval})
	}
	c.JSON(http.StatusOK, out)
}
