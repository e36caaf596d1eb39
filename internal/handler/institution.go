package handler

import (
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/samislam/exchange-profitbook/internal/ledger"
	"github.com/samislam/exchange-profitbook/internal/models"
	"github.com/samislam/exchange-profitbook/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InstitutionHandler 负责机构接口和图标文件的存取
type InstitutionHandler struct {
	Service   *ledger.Service
	UploadDir string
}

func NewInstitutionHandler(service *ledger.Service, uploadDir string) *InstitutionHandler {
	return &InstitutionHandler{Service: service, UploadDir: uploadDir}
}

type institutionResp struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	IconFileName *string `json:"iconFileName"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

func toInstitutionResp(inst *models.Institution) institutionResp {
	return institutionResp{
		ID:           inst.ID,
		Name:         inst.Name,
		IconFileName: inst.IconFileName,
		CreatedAt:    isoTime(inst.CreatedAt),
		UpdatedAt:    isoTime(inst.UpdatedAt),
	}
}

// ListInstitutions 按名称升序返回所有机构
func (h *InstitutionHandler) ListInstitutions(c *gin.Context) {
	institutions, err := h.Service.ListInstitutions()
	if err != nil {
		respondError(c, err)
		return
	}
	items := make([]institutionResp, 0, len(institutions))
	for i := range institutions {
		items = append(items, toInstitutionResp(&institutions[i]))
	}
	util.Success(c, util.Response{
		"items": items,
	})
}

// CreateInstitution 创建（或复用）机构，可附带图标文件
// multipart form: name + icon（可选）
func (h *InstitutionHandler) CreateInstitution(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "institution name is required")
		return
	}

	var iconFileName *string
	if file, err := c.FormFile("icon"); err == nil && file != nil {
		saved, err := h.saveIconFile(c, file)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		iconFileName = &saved
	}

	inst, err := h.Service.CreateInstitution(name, iconFileName)
	if err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, util.Response{
		"institution": toInstitutionResp(inst),
	})
}

// saveIconFile 校验图片类型并以随机文件名落盘
func (h *InstitutionHandler) saveIconFile(c *gin.Context, file *multipart.FileHeader) (string, error) {
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", ledger.Validationf("institution icon must be an image")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		ext = ".bin"
	}
	fileName := uuid.NewString() + ext

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		return "", err
	}
	if err := c.SaveUploadedFile(file, filepath.Join(h.UploadDir, fileName)); err != nil {
		return "", err
	}
	return fileName, nil
}

// iconContentTypes 按扩展名决定图标的 Content-Type
var iconContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
}

// GetInstitutionIcon 返回图标文件内容
// 要求 Base(fileName) 与入参完全一致，拒绝路径穿越
func (h *InstitutionHandler) GetInstitutionIcon(c *gin.Context) {
	fileName := c.Param("fileName")
	safe := filepath.Base(fileName)
	if safe == "" || safe == "." || safe == string(filepath.Separator) || safe != fileName {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid icon file name")
		return
	}

	data, err := os.ReadFile(filepath.Join(h.UploadDir, safe))
	if err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "icon not found")
		return
	}

	contentType, ok := iconContentTypes[strings.ToLower(filepath.Ext(safe))]
	if !ok {
		contentType = "application/octet-stream"
	}
	c.Data(http.StatusOK, contentType, data)
}
