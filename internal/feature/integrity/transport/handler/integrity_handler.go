// Package handler はintegrityフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"trade_integrity/internal/feature/integrity/domain"
	"trade_integrity/internal/feature/integrity/domain/entity"
	"trade_integrity/internal/feature/integrity/transport/http/dto"
	"trade_integrity/internal/feature/integrity/usecase"
)

// AuditRunner は監査を実行するユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type AuditRunner interface {
	Evaluate(ctx context.Context, instrument, interval string) (*entity.AuditResult, error)
}

// AuditHistory は保存済み監査を参照するユースケースインターフェースです。
type AuditHistory interface {
	Latest(ctx context.Context, instrument, interval string) (*entity.AuditResult, error)
	List(ctx context.Context, instrument string, limit int) ([]entity.AuditResult, error)
}

// IntegrityHandler は監査APIのHTTPリクエストを処理します。
type IntegrityHandler struct {
	runner  AuditRunner
	history AuditHistory
}

// NewIntegrityHandler は指定されたusecaseでIntegrityHandlerの新しいインスタンスを生成します。
func NewIntegrityHandler(runner AuditRunner, history AuditHistory) *IntegrityHandler {
	return &IntegrityHandler{runner: runner, history: history}
}

// Run は銘柄と時間足を受け取り、監査を実行して結果をJSONで返します。
//
// エンドポイント例:
// POST /api/v1/audits/ETH_CRO/1m
func (h *IntegrityHandler) Run(c *gin.Context) {
	res, err := h.runner.Evaluate(c.Request.Context(), c.Param("instrument"), c.Param("interval"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromAuditResult(res, true))
}

// Latest は指定銘柄・時間足の最新の監査結果を返します。
//
// エンドポイント例:
// GET /api/v1/audits/ETH_CRO/1m/latest
func (h *IntegrityHandler) Latest(c *gin.Context) {
	res, err := h.history.Latest(c.Request.Context(), c.Param("instrument"), c.Param("interval"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromAuditResult(res, true))
}

// List は監査結果のサマリーを新しい順に返します。
//
// エンドポイント例:
// GET /api/v1/audits?instrument=ETH_CRO&limit=20
func (h *IntegrityHandler) List(c *gin.Context) {
	// 不正な値は0となり、usecaseでデフォルト値に変換される
	limit, _ := strconv.Atoi(c.Query("limit"))

	results, err := h.history.List(c.Request.Context(), c.Query("instrument"), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]dto.AuditResponse, 0, len(results))
	for i := range results {
		out = append(out, dto.FromAuditResult(&results[i], false))
	}
	c.JSON(http.StatusOK, out)
}

// Timeframes はサポートされる時間足の一覧を返します。
func (h *IntegrityHandler) Timeframes(c *gin.Context) {
	tfs := entity.Timeframes()
	out := make([]gin.H, 0, len(tfs))
	for _, tf := range tfs {
		out = append(out, gin.H{"interval": tf.String(), "millis": tf.Millis()})
	}
	c.JSON(http.StatusOK, out)
}

// writeError はエラー種別をHTTPステータスに変換して返します。
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUnknownTimeframe):
		status = http.StatusBadRequest
	case errors.Is(err, usecase.ErrAuditNotFound):
		status = http.StatusNotFound
	case errors.Is(err, usecase.ErrUpstream):
		status = http.StatusBadGateway
	}
	c.JSON(status, dto.ErrorResponse{Error: err.Error()})
}
