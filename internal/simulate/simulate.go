// Package simulate projects repeated buy/sell arbitrage iterations before any
// ledger-affecting action is taken. It is pure arithmetic: no persistence, no
// randomness, identical inputs give identical output.
package simulate

import "fmt"

// Mode tags of a projection.
const (
	ModeLocalCurrency = "buy-in-lira"
	ModeHardCurrency  = "buy-in-dollars"
)

// Params are the knobs of one projection request. UseExchangeRate selects
// between the two mutually exclusive pipelines: buying USDT with TRY
// (local-currency mode) or directly with USD (hard-currency mode).
type Params struct {
	StartingCapital    float64
	SellRate           float64
	ExchangeRate       float64
	LoopCount          int
	UseExchangeRate    bool
	ApplyCommission    bool
	BuyCommission      float64
	ExchangeTaxPercent float64
	CompoundProfits    bool
}

// Loop is one projected iteration.
type Loop struct {
	Loop        int     `json:"loop"`
	BuyAmount   float64 `json:"buyAmount"`
	BuyCurrency string  `json:"buyCurrency"`
	BuyRateTry  float64 `json:"buyRateTry"`
	SellRateTry float64 `json:"sellRateTry"`
	UsdtBought  float64 `json:"usdtBought"`
	SellTry     float64 `json:"sellTry"`
	ProfitTry   float64 `json:"profitTry"`
	ProfitUsd   float64 `json:"profitUsd"`
}

// Projection is the full result of a simulation run.
type Projection struct {
	Mode           string  `json:"mode"`
	Loops          []Loop  `json:"loops"`
	StartingUsd    float64 `json:"startingUsd"`
	FinalUsd       float64 `json:"finalUsd"`
	TotalProfitUsd float64 `json:"totalProfitUsd"`
	FinalTry       float64 `json:"finalTry"`
	TotalProfitTry float64 `json:"totalProfitTry"`
}

// state carries the running value and accumulated profit between iterations.
// The working value and the profit are in TRY for local-currency mode and in
// USD for hard-currency mode.
type state struct {
	working     float64
	totalProfit float64
}

// mode is one of the two computation variants, dispatched once at entry.
type mode interface {
	start() state
	iterate(i int, st state) (state, Loop)
	project(st state, loops []Loop) *Projection
}

func (p Params) validate() error {
	if p.StartingCapital <= 0 {
		return fmt.Errorf("startingCapital must be greater than 0")
	}
	if p.SellRate <= 0 {
		return fmt.Errorf("sellRate must be greater than 0")
	}
	if p.ExchangeRate <= 0 {
		return fmt.Errorf("exchangeRate must be greater than 0")
	}
	if p.LoopCount <= 0 {
		return fmt.Errorf("loopCount must be a positive whole number")
	}
	commissionRequired := !p.UseExchangeRate || p.ApplyCommission
	if commissionRequired && (p.BuyCommission < 0 || p.BuyCommission >= 100) {
		return fmt.Errorf("buyCommission must be between 0 and 100")
	}
	if !p.UseExchangeRate && (p.ExchangeTaxPercent < 0 || p.ExchangeTaxPercent >= 100) {
		return fmt.Errorf("exchangeTaxPercent must be between 0 and 100")
	}
	return nil
}

// Run validates every input, then walks the selected mode's step function
// LoopCount times. It never partially succeeds.
func Run(p Params) (*Projection, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	var m mode
	if p.UseExchangeRate {
		effectiveBuyRate := p.ExchangeRate
		if p.ApplyCommission {
			effectiveBuyRate = p.ExchangeRate * (1 + p.BuyCommission/100)
		}
		m = &localCurrencyMode{
			startingUsd:      p.StartingCapital,
			baseTry:          p.StartingCapital * p.ExchangeRate,
			effectiveBuyRate: effectiveBuyRate,
			sellRate:         p.SellRate,
			exchangeRate:     p.ExchangeRate,
			compound:         p.CompoundProfits,
		}
	} else {
		m = &hardCurrencyMode{
			startingUsd:  p.StartingCapital,
			sellRate:     p.SellRate,
			exchangeRate: p.ExchangeRate,
			commission:   p.BuyCommission,
			convertRate:  p.ExchangeRate * (1 + p.ExchangeTaxPercent/100),
			compound:     p.CompoundProfits,
		}
	}

	st := m.start()
	loops := make([]Loop, 0, p.LoopCount)
	for i := 1; i <= p.LoopCount; i++ {
		var rec Loop
		st, rec = m.iterate(i, st)
		loops = append(loops, rec)
	}
	return m.project(st, loops), nil
}

// localCurrencyMode converts the capital to TRY once, then buys USDT at the
// commission-adjusted rate and sells it back each iteration.
type localCurrencyMode struct {
	startingUsd      float64
	baseTry          float64
	effectiveBuyRate float64
	sellRate         float64
	exchangeRate     float64
	compound         bool
}

func (m *localCurrencyMode) start() state {
	return state{working: m.baseTry}
}

func (m *localCurrencyMode) iterate(i int, st state) (state, Loop) {
	buyTry := m.baseTry
	if m.compound {
		buyTry = st.working
	}
	usdtBought := buyTry / m.effectiveBuyRate
	sellTry := usdtBought * m.sellRate
	profitTry := sellTry - buyTry

	next := state{working: m.baseTry, totalProfit: st.totalProfit + profitTry}
	if m.compound {
		next.working = sellTry
	}
	return next, Loop{
		Loop:        i,
		BuyAmount:   buyTry,
		BuyCurrency: "TRY",
		BuyRateTry:  m.effectiveBuyRate,
		SellRateTry: m.sellRate,
		UsdtBought:  usdtBought,
		SellTry:     sellTry,
		ProfitTry:   profitTry,
		ProfitUsd:   profitTry / m.exchangeRate,
	}
}

func (m *localCurrencyMode) project(st state, loops []Loop) *Projection {
	finalTry := m.baseTry + st.totalProfit
	if m.compound {
		finalTry = st.working
	}
	finalUsd := finalTry / m.exchangeRate
	return &Projection{
		Mode:           ModeLocalCurrency,
		Loops:          loops,
		StartingUsd:    m.startingUsd,
		FinalUsd:       finalUsd,
		TotalProfitUsd: finalUsd - m.startingUsd,
		FinalTry:       finalTry,
		TotalProfitTry: st.totalProfit,
	}
}

// hardCurrencyMode buys USDT with USD, sells to TRY, then converts back to
// USD at the tax-adjusted exchange rate each iteration.
type hardCurrencyMode struct {
	startingUsd  float64
	sellRate     float64
	exchangeRate float64
	commission   float64
	convertRate  float64
	compound     bool
}

func (m *hardCurrencyMode) start() state {
	return state{working: m.startingUsd}
}

func (m *hardCurrencyMode) iterate(i int, st state) (state, Loop) {
	buyUsd := m.startingUsd
	if m.compound {
		buyUsd = st.working
	}
	usdtBought := buyUsd * (1 - m.commission/100)
	sellTry := usdtBought * m.sellRate
	usdAfterCycle := sellTry / m.convertRate
	profitUsd := usdAfterCycle - buyUsd

	next := state{working: m.startingUsd, totalProfit: st.totalProfit + profitUsd}
	if m.compound {
		next.working = usdAfterCycle
	}
	return next, Loop{
		Loop:        i,
		BuyAmount:   buyUsd,
		BuyCurrency: "USD",
		BuyRateTry:  m.exchangeRate,
		SellRateTry: m.sellRate,
		UsdtBought:  usdtBought,
		SellTry:     sellTry,
		ProfitTry:   profitUsd * m.exchangeRate,
		ProfitUsd:   profitUsd,
	}
}

func (m *hardCurrencyMode) project(st state, loops []Loop) *Projection {
	finalUsd := m.startingUsd + st.totalProfit
	if m.compound {
		finalUsd = st.working
	}
	finalTry := finalUsd * m.exchangeRate
	return &Projection{
		Mode:           ModeHardCurrency,
		Loops:          loops,
		StartingUsd:    m.startingUsd,
		FinalUsd:       finalUsd,
		TotalProfitUsd: st.totalProfit,
		FinalTry:       finalTry,
		TotalProfitTry: finalTry - m.startingUsd*m.exchangeRate,
	}
}
