package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"indierise/internal/core/auth"
	resp "indierise/internal/transport/http/response"
)

// AuthJWT 解析 Bearer token，写入 userId/email/role。
// revoker 非 nil 时顺带查 jti 黑名单（登出后的 token 报 401）。
func AuthJWT(j *auth.JWTer, revoker auth.Revoker, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		if revoker != nil {
			if revoked, rerr := revoker.IsRevoked(c.Request.Context(), claims.ID); rerr == nil && revoked {
				c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "token revoked"))
				return
			}
		}
		if requireRole != "" && string(claims.Role) != requireRole {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		c.Set("claims", claims)
		c.Set("userId", claims.UID)
		c.Set("email", claims.Email)
		c.Set("role", string(claims.Role))
		c.Set("jti", claims.ID)
		if claims.ExpiresAt != nil {
			c.Set("tokenTTL", time.Until(claims.ExpiresAt.Time))
		}
		c.Next()
	}
}
