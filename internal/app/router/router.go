// Package router builds the gin engine and registers every HTTP route.
package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	integrityhandler "trade_integrity/internal/feature/integrity/transport/handler"
	watchlisthandler "trade_integrity/internal/feature/watchlist/transport/handler"
	"trade_integrity/internal/platform/http/handler"
	jwtmw "trade_integrity/internal/platform/jwt"
	"trade_integrity/internal/platform/metrics"
)

// Options carries the handlers and cross-cutting settings for NewRouter.
// Watchlist may be nil when the server runs without a database.
type Options struct {
	Integrity   *integrityhandler.IntegrityHandler
	Watchlist   *watchlisthandler.WatchlistHandler
	ReadyChecks map[string]handler.Check
	CORSOrigins []string
}

func NewRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), metrics.GinMiddleware())

	if len(opts.CORSOrigins) > 0 {
		cfg := cors.DefaultConfig()
		cfg.AllowOrigins = opts.CORSOrigins
		cfg.AddAllowHeaders("Authorization")
		r.Use(cors.New(cfg))
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.GET("/readyz", handler.Ready(opts.ReadyChecks))
	// Prometheusスクレイプ用
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// 認証必須のルート
	// → リクエストヘッダーに audits スコープの JWT が必要になる
	api := r.Group("/api/v1")
	api.Use(jwtmw.AuthRequired())
	{
		api.GET("/timeframes", opts.Integrity.Timeframes)
		api.POST("/audits/:instrument/:interval", opts.Integrity.Run)
		api.GET("/audits/:instrument/:interval/latest", opts.Integrity.Latest)
		api.GET("/audits", opts.Integrity.List)
		if opts.Watchlist != nil {
			api.GET("/watchlist", opts.Watchlist.List)
		}
	}

	return r
}
