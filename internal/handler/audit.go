package handler

import (
	"strconv"

	"github.com/samislam/exchange-profitbook/internal/models"
	"github.com/samislam/exchange-profitbook/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuditHandler 负责查询操作日志
type AuditHandler struct {
	DB       *gorm.DB
	PageSize int
}

func NewAuditHandler(db *gorm.DB, pageSize int) *AuditHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &AuditHandler{DB: db, PageSize: pageSize}
}

type auditResp struct {
	ID        uint   `json:"id"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	Body      string `json:"body"`
	IP        string `json:"ip"`
	UserAgent string `json:"userAgent"`
	CreatedAt string `json:"createdAt"`
}

// ListLogs 按时间倒序分页返回操作日志
func (h *AuditHandler) ListLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(h.PageSize)))
	if size <= 0 || size > 100 {
		size = h.PageSize
	}
	offset := (page - 1) * size

	var total int64
	if err := h.DB.Model(&models.AuditLog{}).Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}

	var logs []models.AuditLog
	if err := h.DB.Order("created_at DESC, id DESC").
		Limit(size).
		Offset(offset).
		Find(&logs).Error; err != nil {
		respondError(c, err)
		return
	}

	items := make([]auditResp, 0, len(logs))
	for _, l := range logs {
		items = append(items, auditResp{
			ID:        l.ID,
			Method:    l.Method,
			Path:      l.Path,
			Body:      l.Body,
			IP:        l.IP,
			UserAgent: l.UserAgent,
			CreatedAt: isoTime(l.CreatedAt),
		})
	}

	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
	})
}
