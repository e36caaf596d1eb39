package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/samislam/exchange-profitbook/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decp(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// TestDeriveBuy_TRY 里拉买入：有效汇率 = 支付额 / 毛买入量
func TestDeriveBuy_TRY(t *testing.T) {
	derived, err := DeriveBuy(BuyInput{
		TransactionValue:    dec("3000"),
		TransactionCurrency: models.CurrencyTRY,
		AmountReceived:      dec("100"),
	})
	if err != nil {
		t.Fatalf("DeriveBuy error = %v", err)
	}
	if derived.CommissionPercent != nil {
		t.Errorf("CommissionPercent = %s, want nil", derived.CommissionPercent)
	}
	if derived.EffectiveRateTry == nil || !derived.EffectiveRateTry.Equal(dec("30")) {
		t.Errorf("EffectiveRateTry = %v, want 30", derived.EffectiveRateTry)
	}
}

// TestDeriveBuy_TRYWithCommission 显式佣金放大毛买入量
func TestDeriveBuy_TRYWithCommission(t *testing.T) {
	derived, err := DeriveBuy(BuyInput{
		TransactionValue:    dec("3000"),
		TransactionCurrency: models.CurrencyTRY,
		AmountReceived:      dec("99"),
		CommissionPercent:   decp("1"),
	})
	if err != nil {
		t.Fatalf("DeriveBuy error = %v", err)
	}
	// 毛买入 = 99 / 0.99 = 100，有效汇率 = 3000 / 100 = 30
	if !derived.EffectiveRateTry.Equal(dec("30")) {
		t.Errorf("EffectiveRateTry = %s, want 30", derived.EffectiveRateTry)
	}
}

// TestDeriveBuy_USDDerivesCommission 美元买入时佣金从价差推导
func TestDeriveBuy_USDDerivesCommission(t *testing.T) {
	derived, err := DeriveBuy(BuyInput{
		TransactionValue:    dec("100"),
		TransactionCurrency: models.CurrencyUSD,
		UsdTryRateAtBuy:     decp("41"),
		AmountReceived:      dec("99"),
	})
	if err != nil {
		t.Fatalf("DeriveBuy error = %v", err)
	}
	// (100 - 99) / 100 * 100 = 1%
	if derived.CommissionPercent == nil || !derived.CommissionPercent.Equal(dec("1")) {
		t.Errorf("CommissionPercent = %v, want 1", derived.CommissionPercent)
	}
	// 毛买入 = 99 / 0.99 = 100，有效汇率 = 100 * 41 / 100 = 41
	if !derived.EffectiveRateTry.Equal(dec("41")) {
		t.Errorf("EffectiveRateTry = %s, want 41", derived.EffectiveRateTry)
	}
}

// TestDeriveBuy_USDWithoutRateRejected 美元买入没给汇率直接拒绝
func TestDeriveBuy_USDWithoutRateRejected(t *testing.T) {
	_, err := DeriveBuy(BuyInput{
		TransactionValue:    dec("100"),
		TransactionCurrency: models.CurrencyUSD,
		AmountReceived:      dec("99"),
	})
	if err == nil {
		t.Fatal("DeriveBuy error = nil, want error")
	}
	if KindOf(err) != KindValidation {
		t.Errorf("KindOf = %d, want KindValidation", KindOf(err))
	}
}

// TestDeriveBuy_InvalidInputs 非法输入逐项拒绝
func TestDeriveBuy_InvalidInputs(t *testing.T) {
	testCases := []struct {
		name string
		in   BuyInput
	}{
		{"zero value", BuyInput{TransactionValue: dec("0"), TransactionCurrency: models.CurrencyTRY, AmountReceived: dec("1")}},
		{"zero received", BuyInput{TransactionValue: dec("10"), TransactionCurrency: models.CurrencyTRY, AmountReceived: dec("0")}},
		{"bad currency", BuyInput{TransactionValue: dec("10"), TransactionCurrency: "EUR", AmountReceived: dec("1")}},
		{"commission 100", BuyInput{TransactionValue: dec("10"), TransactionCurrency: models.CurrencyTRY, AmountReceived: dec("1"), CommissionPercent: decp("100")}},
	}
	for _, tc := range testCases {
		if _, err := DeriveBuy(tc.in); err == nil {
			t.Errorf("%s: DeriveBuy error = nil, want error", tc.name)
		}
	}
}

// TestDeriveSell_RoundTrip 任一方向推导后 price * net ≈ received
func TestDeriveSell_RoundTrip(t *testing.T) {
	fromReceived, err := DeriveSell(SellInput{
		AmountSold:        dec("100"),
		AmountReceived:    decp("4900"),
		CommissionPercent: decp("2"),
	})
	if err != nil {
		t.Fatalf("DeriveSell(received) error = %v", err)
	}
	// net = 100 * 0.98 = 98，price = 4900 / 98 = 50
	if !fromReceived.PricePerUnit.Equal(dec("50")) {
		t.Errorf("PricePerUnit = %s, want 50", fromReceived.PricePerUnit)
	}

	fromPrice, err := DeriveSell(SellInput{
		AmountSold:        dec("100"),
		PricePerUnit:      decp("50"),
		CommissionPercent: decp("2"),
	})
	if err != nil {
		t.Fatalf("DeriveSell(price) error = %v", err)
	}
	if !fromPrice.AmountReceived.Equal(dec("4900")) {
		t.Errorf("AmountReceived = %s, want 4900", fromPrice.AmountReceived)
	}

	// 双向结果一致
	net := dec("98")
	if !fromReceived.PricePerUnit.Mul(net).Equal(fromReceived.AmountReceived) {
		t.Error("price * net != received after derivation")
	}
}

// TestDeriveSell_ExactlyOneInput received 和 price 必须二选一
func TestDeriveSell_ExactlyOneInput(t *testing.T) {
	if _, err := DeriveSell(SellInput{AmountSold: dec("10")}); err == nil {
		t.Error("DeriveSell with neither input: error = nil, want error")
	}
	if _, err := DeriveSell(SellInput{
		AmountSold:     dec("10"),
		AmountReceived: decp("500"),
		PricePerUnit:   decp("50"),
	}); err == nil {
		t.Error("DeriveSell with both inputs: error = nil, want error")
	}
}

// TestBalanceOf 各类型对余额的贡献
func TestBalanceOf(t *testing.T) {
	null := decimal.NullDecimal{}
	sold := func(s string) decimal.NullDecimal {
		return decimal.NullDecimal{Decimal: dec(s), Valid: true}
	}

	rows := []models.Transaction{
		{Type: models.TypeBuy, AmountReceived: dec("100"), AmountSold: null},
		{Type: models.TypeSell, AmountReceived: dec("4900"), AmountSold: sold("40")},
		{Type: models.TypeDepositCorrection, AmountReceived: dec("10"), AmountSold: null},
		{Type: models.TypeWithdrawCorrection, AmountReceived: dec("0"), AmountSold: sold("5")},
		{Type: models.TypeCycleSettlement, AmountReceived: dec("0"), AmountSold: sold("20")},
		{Type: models.TypeCycleSettlement, AmountReceived: dec("15"), AmountSold: null},
	}
	// 100 - 40 + 10 - 5 - 20 + 15 = 60
	if got := BalanceOf(rows); !got.Equal(dec("60")) {
		t.Errorf("BalanceOf = %s, want 60", got)
	}
}

// TestCheckSufficient 余额校验带微小容差
func TestCheckSufficient(t *testing.T) {
	if err := CheckSufficient("withdraw amount", dec("50"), dec("50")); err != nil {
		t.Errorf("equal amounts: error = %v, want nil", err)
	}
	err := CheckSufficient("withdraw amount", dec("50.0001"), dec("50"))
	if err == nil {
		t.Fatal("excess amount: error = nil, want error")
	}
	if KindOf(err) != KindInvariant {
		t.Errorf("KindOf = %d, want KindInvariant", KindOf(err))
	}
}

// TestValidateSettlement 结算两端必须不同且金额为正
func TestValidateSettlement(t *testing.T) {
	if err := ValidateSettlement("A", "B", dec("10")); err != nil {
		t.Errorf("valid settlement: error = %v, want nil", err)
	}
	if err := ValidateSettlement(" A ", "A", dec("10")); KindOf(err) != KindInvariant {
		t.Errorf("same endpoints after trim: KindOf = %d, want KindInvariant", KindOf(err))
	}
	if err := ValidateSettlement("A", "", dec("10")); KindOf(err) != KindValidation {
		t.Errorf("empty destination: KindOf = %d, want KindValidation", KindOf(err))
	}
	if err := ValidateSettlement("A", "B", dec("0")); KindOf(err) != KindValidation {
		t.Errorf("zero amount: KindOf = %d, want KindValidation", KindOf(err))
	}
}
