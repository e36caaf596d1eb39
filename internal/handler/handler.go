package handler

import (
	"net/http"
	"time"

	"github.com/samislam/exchange-profitbook/internal/ledger"
	"github.com/samislam/exchange-profitbook/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError 把业务错误映射成统一的错误码返回
func respondError(c *gin.Context, err error) {
	switch ledger.KindOf(err) {
	case ledger.KindValidation:
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
	case ledger.KindInvariant:
		util.Error(c, http.StatusConflict, util.CodeConflict, err.Error())
	case ledger.KindNotFound:
		util.Error(c, http.StatusNotFound, util.CodeNotFound, err.Error())
	case ledger.KindImmutable:
		util.Error(c, http.StatusUnprocessableEntity, util.CodeImmutable, err.Error())
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
	}
}

func isoTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
