package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/samislam/exchange-profitbook/internal/models"
	"github.com/samislam/exchange-profitbook/internal/util"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)

	// balanceEpsilon guards balance comparisons against rounding noise.
	// Sized like IEEE-754 machine epsilon, far below any real currency unit.
	balanceEpsilon = decimal.RequireFromString("0.0000000000000002220446049250313")
)

// BuyInput carries the caller-supplied fields of a BUY transaction.
type BuyInput struct {
	TransactionValue    decimal.Decimal
	TransactionCurrency string
	UsdTryRateAtBuy     *decimal.Decimal
	AmountReceived      decimal.Decimal
	CommissionPercent   *decimal.Decimal
}

// BuyDerived holds the fields the engine computes for a BUY.
type BuyDerived struct {
	CommissionPercent *decimal.Decimal
	EffectiveRateTry  *decimal.Decimal
}

// DeriveBuy validates a BUY and derives commission and effective TRY rate.
//
// When paying in USD the commission, if omitted, falls out of the spread:
// (paid - received) / paid * 100. Paying in TRY leaves it null unless given.
func DeriveBuy(in BuyInput) (BuyDerived, error) {
	if err := util.RequirePositive("transactionValue", in.TransactionValue); err != nil {
		return BuyDerived{}, Validationf("%s", err)
	}
	if err := util.RequirePositive("amountReceived", in.AmountReceived); err != nil {
		return BuyDerived{}, Validationf("%s", err)
	}
	switch in.TransactionCurrency {
	case models.CurrencyUSD, models.CurrencyTRY:
	default:
		return BuyDerived{}, Validationf("transactionCurrency must be USD or TRY")
	}
	if in.TransactionCurrency == models.CurrencyUSD {
		if in.UsdTryRateAtBuy == nil {
			return BuyDerived{}, Validationf("usdTryRateAtBuy is required when paying in USD")
		}
		if err := util.RequirePositive("usdTryRateAtBuy", *in.UsdTryRateAtBuy); err != nil {
			return BuyDerived{}, Validationf("%s", err)
		}
	}
	if in.CommissionPercent != nil {
		if err := util.RequirePercent("commissionPercent", *in.CommissionPercent); err != nil {
			return BuyDerived{}, Validationf("%s", err)
		}
	}

	var commission *decimal.Decimal
	switch {
	case in.CommissionPercent != nil:
		commission = in.CommissionPercent
	case in.TransactionCurrency == models.CurrencyUSD:
		c := in.TransactionValue.Sub(in.AmountReceived).Div(in.TransactionValue).Mul(hundred)
		commission = &c
	}

	// Gross USDT bought before the commission was taken.
	gross := in.AmountReceived
	if commission != nil {
		ratio := commission.Div(hundred)
		if ratio.IsPositive() && ratio.LessThan(one) {
			gross = in.AmountReceived.Div(one.Sub(ratio))
		}
	}

	var effective decimal.Decimal
	if in.TransactionCurrency == models.CurrencyTRY {
		effective = in.TransactionValue.Div(gross)
	} else {
		effective = in.TransactionValue.Mul(*in.UsdTryRateAtBuy).Div(gross)
	}
	return BuyDerived{CommissionPercent: commission, EffectiveRateTry: &effective}, nil
}

// SellInput carries the caller-supplied fields of a SELL transaction.
// Exactly one of AmountReceived and PricePerUnit must be set; the engine
// derives the other from the net USDT actually sold.
type SellInput struct {
	AmountSold        decimal.Decimal
	AmountReceived    *decimal.Decimal
	PricePerUnit      *decimal.Decimal
	CommissionPercent *decimal.Decimal
}

// SellDerived holds the completed pair. PricePerUnit doubles as the
// effective TRY rate of the sale.
type SellDerived struct {
	AmountReceived decimal.Decimal
	PricePerUnit   decimal.Decimal
}

func DeriveSell(in SellInput) (SellDerived, error) {
	if err := util.RequirePositive("amountSold", in.AmountSold); err != nil {
		return SellDerived{}, Validationf("%s", err)
	}
	if (in.AmountReceived == nil) == (in.PricePerUnit == nil) {
		return SellDerived{}, Validationf("exactly one of amountReceived and pricePerUnit must be provided")
	}

	commission := decimal.Zero
	if in.CommissionPercent != nil {
		if err := util.RequirePercent("commissionPercent", *in.CommissionPercent); err != nil {
			return SellDerived{}, Validationf("%s", err)
		}
		commission = *in.CommissionPercent
	}

	net := in.AmountSold.Mul(one.Sub(commission.Div(hundred)))

	if in.AmountReceived != nil {
		if err := util.RequirePositive("amountReceived", *in.AmountReceived); err != nil {
			return SellDerived{}, Validationf("%s", err)
		}
		price, err := util.SafeDiv(*in.AmountReceived, net)
		if err != nil {
			return SellDerived{}, Validationf("net sold amount must be greater than 0")
		}
		return SellDerived{AmountReceived: *in.AmountReceived, PricePerUnit: price}, nil
	}

	if err := util.RequirePositive("pricePerUnit", *in.PricePerUnit); err != nil {
		return SellDerived{}, Validationf("%s", err)
	}
	return SellDerived{AmountReceived: in.PricePerUnit.Mul(net), PricePerUnit: *in.PricePerUnit}, nil
}

// Delta is the USDT balance contribution of one row. BUY adds what was
// received, SELL removes what was sold, every other type settles both sides.
func Delta(t *models.Transaction) decimal.Decimal {
	switch t.Type {
	case models.TypeBuy:
		return t.AmountReceived
	case models.TypeSell:
		if t.AmountSold.Valid {
			return t.AmountSold.Decimal.Neg()
		}
		return decimal.Zero
	default:
		d := t.AmountReceived
		if t.AmountSold.Valid {
			d = d.Sub(t.AmountSold.Decimal)
		}
		return d
	}
}

// BalanceOf folds the USDT delta over rows.
func BalanceOf(rows []models.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for i := range rows {
		sum = sum.Add(Delta(&rows[i]))
	}
	return sum
}

// CheckSufficient fails when required exceeds balance beyond rounding noise.
// The attempted amount and the current balance are embedded for diagnostics.
func CheckSufficient(label string, required, balance decimal.Decimal) error {
	if required.GreaterThan(balance.Add(balanceEpsilon)) {
		return Invariantf("%s (%s) exceeds cycle balance (%s)",
			label, required.StringFixed(4), balance.StringFixed(4))
	}
	return nil
}

// ValidateSettlement checks the endpoints and amount of a cycle settlement.
// Balance sufficiency is checked separately against the source cycle.
func ValidateSettlement(fromCycle, toCycle string, amount decimal.Decimal) error {
	from := strings.TrimSpace(fromCycle)
	to := strings.TrimSpace(toCycle)
	if from == "" || to == "" {
		return Validationf("both source and destination cycles are required")
	}
	if from == to {
		return Invariantf("source and destination cycles must be different")
	}
	if err := util.RequirePositive("amount", amount); err != nil {
		return Validationf("%s", err)
	}
	return nil
}
