package handler

import (
	"net/http"

	"github.com/samislam/exchange-profitbook/internal/ledger"
	"github.com/samislam/exchange-profitbook/internal/models"
	"github.com/samislam/exchange-profitbook/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// TransactionHandler 负责交易相关接口
type TransactionHandler struct {
	Service *ledger.Service
}

func NewTransactionHandler(service *ledger.Service) *TransactionHandler {
	return &TransactionHandler{Service: service}
}

// transactionResp mirrors the wire shape of a transaction row.
type transactionResp struct {
	ID                   string           `json:"id"`
	Cycle                string           `json:"cycle"`
	Type                 string           `json:"type"`
	OccurredAt           string           `json:"occurredAt"`
	CreatedAt            string           `json:"createdAt"`
	UpdatedAt            string           `json:"updatedAt"`
	TransactionValue     *decimal.Decimal `json:"transactionValue"`
	TransactionCurrency  *string          `json:"transactionCurrency"`
	UsdTryRateAtBuy      *decimal.Decimal `json:"usdTryRateAtBuy"`
	AmountReceived       decimal.Decimal  `json:"amountReceived"`
	AmountSold           *decimal.Decimal `json:"amountSold"`
	PricePerUnit         *decimal.Decimal `json:"pricePerUnit"`
	ReceivedCurrency     string           `json:"receivedCurrency"`
	CommissionPercent    *decimal.Decimal `json:"commissionPercent"`
	EffectiveRateTry     *decimal.Decimal `json:"effectiveRateTry"`
	SettlementGroup      *string          `json:"settlementGroup"`
	SenderInstitution    *string          `json:"senderInstitution"`
	SenderIban           *string          `json:"senderIban"`
	SenderName           *string          `json:"senderName"`
	RecipientInstitution *string          `json:"recipientInstitution"`
	RecipientIban        *string          `json:"recipientIban"`
	RecipientName        *string          `json:"recipientName"`
}

func nullable(v decimal.NullDecimal) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	d := v.Decimal
	return &d
}

func toTransactionResp(t *models.Transaction) transactionResp {
	var recipient *string
	if t.RecipientInstitution != nil {
		name := t.RecipientInstitution.Name
		recipient = &name
	}
	return transactionResp{
		ID:                   t.ID,
		Cycle:                t.Cycle.Name,
		Type:                 t.Type,
		OccurredAt:           isoTime(t.OccurredAt),
		CreatedAt:            isoTime(t.CreatedAt),
		UpdatedAt:            isoTime(t.UpdatedAt),
		TransactionValue:     nullable(t.TransactionValue),
		TransactionCurrency:  t.TransactionCurrency,
		UsdTryRateAtBuy:      nullable(t.UsdTryRateAtBuy),
		AmountReceived:       t.AmountReceived,
		AmountSold:           nullable(t.AmountSold),
		PricePerUnit:         nullable(t.PricePerUnit),
		ReceivedCurrency:     t.ReceivedCurrency,
		CommissionPercent:    nullable(t.CommissionPercent),
		EffectiveRateTry:     nullable(t.EffectiveRateTry),
		SettlementGroup:      t.SettlementGroup,
		SenderInstitution:    t.SenderInstitution,
		SenderIban:           t.SenderIban,
		SenderName:           t.SenderName,
		RecipientInstitution: recipient,
		RecipientIban:        t.RecipientIban,
		RecipientName:        t.RecipientName,
	}
}

// ListTransactions 按 (occurredAt, createdAt) 升序返回所有交易
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	rows, err := h.Service.ListTransactions()
	if err != nil {
		respondError(c, err)
		return
	}
	items := make([]transactionResp, 0, len(rows))
	for i := range rows {
		items = append(items, toTransactionResp(&rows[i]))
	}
	util.Success(c, util.Response{
		"items": items,
	})
}

// CreateTransaction 创建一笔交易；结算会生成借贷两条记录
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var input ledger.TransactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	rows, err := h.Service.CreateTransaction(input)
	if err != nil {
		respondError(c, err)
		return
	}

	if len(rows) == 2 {
		util.Success(c, util.Response{
			"transactions": []transactionResp{
				toTransactionResp(&rows[0]),
				toTransactionResp(&rows[1]),
			},
		})
		return
	}
	util.Success(c, util.Response{
		"transaction": toTransactionResp(&rows[0]),
	})
}

// UpdateTransaction 重写一笔已有交易（结算记录不可修改）
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	id := c.Param("id")
	var input ledger.TransactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	row, err := h.Service.UpdateTransaction(id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, util.Response{
		"transaction": toTransactionResp(row),
	})
}

// DeleteTransaction 删除一笔交易
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	deletedID, err := h.Service.DeleteTransaction(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	util.Success(c, util.Response{
		"success":              true,
		"deletedTransactionId": deletedID,
	})
}
