package handler

import (
	"net/http"

	"github.com/samislam/exchange-profitbook/internal/ledger"
	"github.com/samislam/exchange-profitbook/internal/models"
	"github.com/samislam/exchange-profitbook/internal/util"

	"github.com/gin-gonic/gin"
)

// CycleHandler 负责周期（账本）相关接口
type CycleHandler struct {
	Service *ledger.Service
}

func NewCycleHandler(service *ledger.Service) *CycleHandler {
	return &CycleHandler{Service: service}
}

type cycleReq struct {
	Name string `json:"name" binding:"required"`
}

type cycleResp struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toCycleResp(cy *models.Cycle) cycleResp {
	return cycleResp{
		ID:        cy.ID,
		Name:      cy.Name,
		CreatedAt: isoTime(cy.CreatedAt),
		UpdatedAt: isoTime(cy.UpdatedAt),
	}
}

// ListCycles 按创建时间升序返回所有周期
func (h *CycleHandler) ListCycles(c *gin.Context) {
	cycles, err := h.Service.ListCycles()
	if err != nil {
		respondError(c, err)
		return
	}
	items := make([]cycleResp, 0, len(cycles))
	for i := range cycles {
		items = append(items, toCycleResp(&cycles[i]))
	}
	util.Success(c, util.Response{
		"items": items,
	})
}

// CreateCycle 按名称创建（或复用已有）周期
func (h *CycleHandler) CreateCycle(c *gin.Context) {
	var req cycleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	cycle, err := h.Service.CreateCycle(req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, util.Response{
		"cycle": toCycleResp(cycle),
	})
}

// RenameCycle 修改周期名称
func (h *CycleHandler) RenameCycle(c *gin.Context) {
	var req cycleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	cycle, err := h.Service.RenameCycle(c.Param("id"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, util.Response{
		"cycle": toCycleResp(cycle),
	})
}

// DeleteCycle 删除周期及其全部交易
func (h *CycleHandler) DeleteCycle(c *gin.Context) {
	if err := h.Service.DeleteCycle(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, util.Response{
		"success": true,
	})
}

// ResetCycle 清空周期下的全部交易，保留周期本身
func (h *CycleHandler) ResetCycle(c *gin.Context) {
	deleted, err := h.Service.ResetCycle(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, util.Response{
		"success":             true,
		"deletedTransactions": deleted,
	})
}

// UndoLast 撤销周期内最近的一笔交易
func (h *CycleHandler) UndoLast(c *gin.Context) {
	deletedID, err := h.Service.UndoLastTransaction(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, util.Response{
		"success":              true,
		"deletedTransactionId": deletedID,
	})
}
