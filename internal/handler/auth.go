package handler

import (
	"net/http"
	"time"

	"github.com/samislam/exchange-profitbook/internal/config"
	"github.com/samislam/exchange-profitbook/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler 单操作员登录：口令的 bcrypt 哈希放在配置里
type AuthHandler struct {
	Auth config.AuthConfig
}

func NewAuthHandler(auth config.AuthConfig) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

type loginReq struct {
	Password string `json:"password" binding:"required"`
}

// Login 校验口令并签发 JWT
func (h *AuthHandler) Login(c *gin.Context) {
	if !h.Auth.Enabled {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "authentication is disabled")
		return
	}

	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.Auth.PasswordHash), []byte(req.Password)); err != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "wrong password")
		return
	}

	ttl := time.Duration(h.Auth.ExpireHours) * time.Hour
	token, err := util.GenerateToken(h.Auth.JWTSecret, h.Auth.JWTIssuer, ttl)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "issue token failed")
		return
	}

	util.Success(c, util.Response{
		"token": token,
	})
}
