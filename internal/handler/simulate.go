package handler

import (
	"net/http"
	"strings"

	"github.com/samislam/exchange-profitbook/internal/simulate"
	"github.com/samislam/exchange-profitbook/internal/util"

	"github.com/gin-gonic/gin"
)

// SimulateHandler 负责只读的循环套利推演接口
type SimulateHandler struct{}

func NewSimulateHandler() *SimulateHandler {
	return &SimulateHandler{}
}

// 表单数字一律以字符串提交，由服务端统一解析校验
type simulateReq struct {
	StartingCapital    string `json:"startingCapital" binding:"required"`
	SellRate           string `json:"sellRate" binding:"required"`
	ExchangeRate       string `json:"exchangeRate" binding:"required"`
	LoopCount          string `json:"loopCount" binding:"required"`
	UseExchangeRate    bool   `json:"useExchangeRate"`
	ApplyCommission    bool   `json:"applyCommission"`
	BuyCommission      string `json:"buyCommission"`
	ExchangeTaxPercent string `json:"exchangeTaxPercent"`
	CompoundProfits    bool   `json:"compoundProfits"`
}

// Simulate 先解析全部入参，再执行推演；任何一项不合法都不会产生部分结果
func (h *SimulateHandler) Simulate(c *gin.Context) {
	var req simulateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	params := simulate.Params{
		UseExchangeRate: req.UseExchangeRate,
		ApplyCommission: req.ApplyCommission,
		CompoundProfits: req.CompoundProfits,
	}

	var err error
	if params.StartingCapital, err = util.PositiveFloat("startingCapital", req.StartingCapital); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if params.SellRate, err = util.PositiveFloat("sellRate", req.SellRate); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if params.ExchangeRate, err = util.PositiveFloat("exchangeRate", req.ExchangeRate); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if params.LoopCount, err = util.PositiveInt("loopCount", req.LoopCount); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	// 佣金：lira 模式勾选了佣金、或 dollar 模式下必填
	commissionRequired := !req.UseExchangeRate || req.ApplyCommission
	if commissionRequired {
		if params.BuyCommission, err = util.PercentFloat("buyCommission", req.BuyCommission); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
	}
	if !req.UseExchangeRate && strings.TrimSpace(req.ExchangeTaxPercent) != "" {
		if params.ExchangeTaxPercent, err = util.PercentFloat("exchangeTaxPercent", req.ExchangeTaxPercent); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
	}

	projection, err := simulate.Run(params)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	util.Success(c, util.Response{
		"projection": projection,
	})
}
