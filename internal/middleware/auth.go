package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/samislam/exchange-profitbook/internal/config"
	"github.com/samislam/exchange-profitbook/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 校验 JWT；auth.enabled 为 false 时直接放行
func AuthMiddleware(auth config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.Enabled {
			c.Next()
			return
		}

		var tokenStr string

		// 1) Header: Authorization: Bearer xxx
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = parts[1]
			}
		}

		// 2) URL 查询参数 ?token=xxx（用于导出下载等无法自定义 Header 的场景）
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		// 3) Cookie epb_token
		if tokenStr == "" {
			if cookie, err := c.Cookie("epb_token"); err == nil {
				tokenStr = cookie
			}
		}

		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
			c.Abort()
			return
		}

		claims, err := util.ParseToken(auth.JWTSecret, tokenStr)
		if err != nil || claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "session expired, please log in again")
			c.Abort()
			return
		}

		c.Next()
	}
}
