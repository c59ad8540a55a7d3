package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"indierise/internal/core/auth"
	"indierise/internal/core/server"
	mdw "indierise/internal/transport/http/middleware"
)

// NewAdminEngine 管理端引擎：整组要求 admin 角色
func NewAdminEngine(l *zap.Logger, jwter *auth.JWTer, revoker auth.Revoker) *gin.Engine {
	r := server.NewRouter(l)

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(100, 200),
		mdw.MaxBodyBytes(4<<20),
		mdw.Metrics(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, revoker, "admin"))

	MountAllAdmin(admin)

	return r
}
