package simulate

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

// TestRun_LocalCurrencyMode 里拉模式单次循环的基准场景
func TestRun_LocalCurrencyMode(t *testing.T) {
	p, err := Run(Params{
		StartingCapital: 100,
		ExchangeRate:    30,
		SellRate:        31,
		LoopCount:       1,
		UseExchangeRate: true,
	})
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}

	if p.Mode != ModeLocalCurrency {
		t.Errorf("Mode = %q, want %q", p.Mode, ModeLocalCurrency)
	}
	if len(p.Loops) != 1 {
		t.Fatalf("len(Loops) = %d, want 1", len(p.Loops))
	}

	loop := p.Loops[0]
	if !almostEqual(loop.BuyAmount, 3000) {
		t.Errorf("BuyAmount = %f, want 3000", loop.BuyAmount)
	}
	if loop.BuyCurrency != "TRY" {
		t.Errorf("BuyCurrency = %q, want TRY", loop.BuyCurrency)
	}
	if !almostEqual(loop.UsdtBought, 100) {
		t.Errorf("UsdtBought = %f, want 100", loop.UsdtBought)
	}
	if !almostEqual(loop.SellTry, 3100) {
		t.Errorf("SellTry = %f, want 3100", loop.SellTry)
	}
	if !almostEqual(loop.ProfitTry, 100) {
		t.Errorf("ProfitTry = %f, want 100", loop.ProfitTry)
	}
	if !almostEqual(loop.ProfitUsd, 100.0/30.0) {
		t.Errorf("ProfitUsd = %f, want %f", loop.ProfitUsd, 100.0/30.0)
	}

	if !almostEqual(p.FinalTry, 3100) {
		t.Errorf("FinalTry = %f, want 3100", p.FinalTry)
	}
	if !almostEqual(p.TotalProfitUsd, 100.0/30.0) {
		t.Errorf("TotalProfitUsd = %f, want %f", p.TotalProfitUsd, 100.0/30.0)
	}
}

// TestRun_HardCurrencyModeCompound 美元模式 + 复投：第二轮的本金是第一轮的回笼金额
func TestRun_HardCurrencyModeCompound(t *testing.T) {
	p, err := Run(Params{
		StartingCapital: 100,
		ExchangeRate:    30,
		SellRate:        31,
		BuyCommission:   1,
		LoopCount:       2,
		UseExchangeRate: false,
		CompoundProfits: true,
	})
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}

	if p.Mode != ModeHardCurrency {
		t.Errorf("Mode = %q, want %q", p.Mode, ModeHardCurrency)
	}
	if len(p.Loops) != 2 {
		t.Fatalf("len(Loops) = %d, want 2", len(p.Loops))
	}

	first, second := p.Loops[0], p.Loops[1]
	if !almostEqual(first.BuyAmount, 100) {
		t.Errorf("loop 1 BuyAmount = %f, want 100", first.BuyAmount)
	}
	if !almostEqual(first.UsdtBought, 99) {
		t.Errorf("loop 1 UsdtBought = %f, want 99", first.UsdtBought)
	}

	// 第一轮回笼：99 * 31 / 30
	usdAfterFirst := 99.0 * 31.0 / 30.0
	if !almostEqual(second.BuyAmount, usdAfterFirst) {
		t.Errorf("loop 2 BuyAmount = %f, want %f", second.BuyAmount, usdAfterFirst)
	}
	if almostEqual(second.BuyAmount, 100) {
		t.Error("loop 2 BuyAmount should not restart from the original capital when compounding")
	}
}

// TestRun_LoopCountProperty n 次循环产生 n 条记录，每条满足 profit = proceeds - buy
func TestRun_LoopCountProperty(t *testing.T) {
	for _, n := range []int{1, 3, 10} {
		p, err := Run(Params{
			StartingCapital: 250,
			ExchangeRate:    32.5,
			SellRate:        33.1,
			BuyCommission:   0.4,
			ApplyCommission: true,
			LoopCount:       n,
			UseExchangeRate: true,
			CompoundProfits: true,
		})
		if err != nil {
			t.Fatalf("Run(loopCount=%d) error = %v", n, err)
		}
		if len(p.Loops) != n {
			t.Fatalf("len(Loops) = %d, want %d", len(p.Loops), n)
		}
		for _, loop := range p.Loops {
			if !almostEqual(loop.ProfitTry, loop.SellTry-loop.BuyAmount) {
				t.Errorf("loop %d: ProfitTry = %f, want SellTry-BuyAmount = %f",
					loop.Loop, loop.ProfitTry, loop.SellTry-loop.BuyAmount)
			}
		}
	}
}

// TestRun_NonCompoundRestartsFromBase 不复投时每轮本金都一样
func TestRun_NonCompoundRestartsFromBase(t *testing.T) {
	p, err := Run(Params{
		StartingCapital: 100,
		ExchangeRate:    30,
		SellRate:        31,
		LoopCount:       5,
		UseExchangeRate: true,
	})
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	for _, loop := range p.Loops {
		if !almostEqual(loop.BuyAmount, 3000) {
			t.Errorf("loop %d BuyAmount = %f, want 3000", loop.Loop, loop.BuyAmount)
		}
	}
	// 不复投的最终值 = 本金 + 各轮利润之和
	if !almostEqual(p.FinalTry, 3000+5*100) {
		t.Errorf("FinalTry = %f, want 3500", p.FinalTry)
	}
}

// TestRun_CompoundChainsProceeds 复投时下一轮本金等于上一轮卖出所得
func TestRun_CompoundChainsProceeds(t *testing.T) {
	p, err := Run(Params{
		StartingCapital: 100,
		ExchangeRate:    30,
		SellRate:        31,
		LoopCount:       4,
		UseExchangeRate: true,
		CompoundProfits: true,
	})
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	for i := 1; i < len(p.Loops); i++ {
		if !almostEqual(p.Loops[i].BuyAmount, p.Loops[i-1].SellTry) {
			t.Errorf("loop %d BuyAmount = %f, want previous SellTry %f",
				p.Loops[i].Loop, p.Loops[i].BuyAmount, p.Loops[i-1].SellTry)
		}
	}
	if !almostEqual(p.FinalTry, p.Loops[len(p.Loops)-1].SellTry) {
		t.Errorf("FinalTry = %f, want last SellTry %f", p.FinalTry, p.Loops[len(p.Loops)-1].SellTry)
	}
}

// TestRun_ExchangeTaxRaisesConversionRate 美元模式的回兑汇率含税
func TestRun_ExchangeTaxRaisesConversionRate(t *testing.T) {
	taxed, err := Run(Params{
		StartingCapital:    100,
		ExchangeRate:       30,
		SellRate:           31,
		ExchangeTaxPercent: 10,
		LoopCount:          1,
	})
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	// 回兑除以 30 * 1.1 = 33
	want := 100.0*31.0/33.0 - 100.0
	if !almostEqual(taxed.Loops[0].ProfitUsd, want) {
		t.Errorf("ProfitUsd = %f, want %f", taxed.Loops[0].ProfitUsd, want)
	}
}

// TestRun_Validation 任何一项越界都直接失败，不产生部分结果
func TestRun_Validation(t *testing.T) {
	testCases := []struct {
		name   string
		params Params
	}{
		{"zero capital", Params{StartingCapital: 0, SellRate: 31, ExchangeRate: 30, LoopCount: 1}},
		{"negative sell rate", Params{StartingCapital: 100, SellRate: -1, ExchangeRate: 30, LoopCount: 1}},
		{"zero exchange rate", Params{StartingCapital: 100, SellRate: 31, ExchangeRate: 0, LoopCount: 1}},
		{"zero loop count", Params{StartingCapital: 100, SellRate: 31, ExchangeRate: 30, LoopCount: 0}},
		{"commission too high", Params{StartingCapital: 100, SellRate: 31, ExchangeRate: 30, LoopCount: 1, BuyCommission: 100}},
		{"negative tax", Params{StartingCapital: 100, SellRate: 31, ExchangeRate: 30, LoopCount: 1, ExchangeTaxPercent: -1}},
		{"commission checked in lira mode when applied", Params{
			StartingCapital: 100, SellRate: 31, ExchangeRate: 30, LoopCount: 1,
			UseExchangeRate: true, ApplyCommission: true, BuyCommission: 120,
		}},
	}

	for _, tc := range testCases {
		p, err := Run(tc.params)
		if err == nil {
			t.Errorf("%s: Run error = nil, want error", tc.name)
		}
		if p != nil {
			t.Errorf("%s: projection = %v, want nil", tc.name, p)
		}
	}
}
