package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"indierise/internal/core/auth"
	mdw "indierise/internal/transport/http/middleware"
)

// NewAPIEngine 用户端引擎：公共书架免登录，作者工作台过 JWT
func NewAPIEngine(l *zap.Logger, jwter *auth.JWTer, revoker auth.Revoker) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		mdw.SimpleRecovery(),
		mdw.Metrics(),
		mdw.AccessLog(l),
		cors.Default(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	// 鉴权分组（作者工作台必须挂这里才能拿到 userId）
	authed := api.Group("")
	authed.Use(mdw.AuthJWT(jwter, revoker, ""))

	MountAllAPI(api, authed)

	return r
}
