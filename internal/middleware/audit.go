package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/samislam/exchange-profitbook/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuditMiddleware 把修改类请求记入操作日志
func AuditMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			c.Next()
			return
		}

		// 读取请求体后放回去
		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		c.Next()

		body := ""
		if len(bodyBytes) > 0 && len(bodyBytes) < 2000 {
			body = string(bodyBytes)
		}

		log := models.AuditLog{
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Body:      body,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		_ = db.Create(&log).Error
	}
}
