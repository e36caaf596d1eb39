package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/samislam/exchange-profitbook/internal/ledger"
	"github.com/samislam/exchange-profitbook/internal/models"
	"github.com/samislam/exchange-profitbook/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 导出交易流水
type ExportHandler struct {
	Service *ledger.Service
}

func NewExportHandler(service *ledger.Service) *ExportHandler {
	return &ExportHandler{Service: service}
}

var exportHeaders = []string{
	"ID", "Cycle", "Type", "Occurred At",
	"Transaction Value", "Currency", "USD/TRY Rate",
	"Amount Received", "Amount Sold", "Price Per Unit",
	"Commission %", "Effective Rate (TRY)",
	"Sender Institution", "Recipient Institution",
}

func formatNullDecimal(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.String()
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func exportRow(t *models.Transaction) []string {
	recipient := ""
	if t.RecipientInstitution != nil {
		recipient = t.RecipientInstitution.Name
	}
	return []string{
		t.ID,
		t.Cycle.Name,
		t.Type,
		t.OccurredAt.Format("2006-01-02 15:04:05"),
		formatNullDecimal(t.TransactionValue),
		derefOr(t.TransactionCurrency, ""),
		formatNullDecimal(t.UsdTryRateAtBuy),
		t.AmountReceived.String(),
		formatNullDecimal(t.AmountSold),
		formatNullDecimal(t.PricePerUnit),
		formatNullDecimal(t.CommissionPercent),
		formatNullDecimal(t.EffectiveRateTry),
		derefOr(t.SenderInstitution, ""),
		recipient,
	}
}

// ExportCSV 导出交易为 CSV
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	rows, err := h.Service.ListTransactions()
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	// UTF-8 BOM，方便 Excel 直接打开
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer.Write(exportHeaders)
	for i := range rows {
		writer.Write(exportRow(&rows[i]))
	}
}

// ExportXLSX 导出交易为 XLSX
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	rows, err := h.Service.ListTransactions()
	if err != nil {
		respondError(c, err)
		return
	}

	f := excelize.NewFile()
	sheetName := "Transactions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create sheet failed")
		return
	}
	f.SetActiveSheet(index)

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}
	for idx := range rows {
		values := exportRow(&rows[idx])
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, idx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 38)
	f.SetColWidth(sheetName, "B", "D", 16)
	f.SetColWidth(sheetName, "E", "L", 14)
	f.SetColWidth(sheetName, "M", "N", 22)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
	}
}
