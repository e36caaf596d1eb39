package util

import (
	"testing"

	"github.com/shopspring/decimal"
)

// TestPositiveFloat_Valid 测试合法的正数
func TestPositiveFloat_Valid(t *testing.T) {
	testCases := []string{"0.01", "1", "100.5", "9999999.99"}

	for _, s := range testCases {
		f, err := PositiveFloat("amount", s)
		if err != nil {
			t.Errorf("PositiveFloat(%q) error = %v, want nil", s, err)
		}
		if f <= 0 {
			t.Errorf("PositiveFloat(%q) = %f, want > 0", s, f)
		}
	}
}

// TestPositiveFloat_Invalid 测试非法输入（异常）
func TestPositiveFloat_Invalid(t *testing.T) {
	testCases := []string{"", "abc", "0", "-1", "NaN", "Inf"}

	for _, s := range testCases {
		if _, err := PositiveFloat("amount", s); err == nil {
			t.Errorf("PositiveFloat(%q) error = nil, want error", s)
		}
	}
}

// TestPercentFloat_Bounds 百分比区间 [0, 100)
func TestPercentFloat_Bounds(t *testing.T) {
	for _, s := range []string{"0", "0.5", "99.99"} {
		if _, err := PercentFloat("commission", s); err != nil {
			t.Errorf("PercentFloat(%q) error = %v, want nil", s, err)
		}
	}
	for _, s := range []string{"-0.01", "100", "150", "x"} {
		if _, err := PercentFloat("commission", s); err == nil {
			t.Errorf("PercentFloat(%q) error = nil, want error", s)
		}
	}
}

// TestPositiveInt_Floors 小数部分截断
func TestPositiveInt_Floors(t *testing.T) {
	n, err := PositiveInt("loopCount", "3.9")
	if err != nil {
		t.Fatalf("PositiveInt(3.9) error = %v", err)
	}
	if n != 3 {
		t.Errorf("PositiveInt(3.9) = %d, want 3", n)
	}

	for _, s := range []string{"0", "0.9", "-2", ""} {
		if _, err := PositiveInt("loopCount", s); err == nil {
			t.Errorf("PositiveInt(%q) error = nil, want error", s)
		}
	}
}

// TestRequirePositive decimal 金额必须大于 0
func TestRequirePositive(t *testing.T) {
	if err := RequirePositive("amount", decimal.NewFromFloat(0.0001)); err != nil {
		t.Errorf("RequirePositive(0.0001) error = %v, want nil", err)
	}
	if err := RequirePositive("amount", decimal.Zero); err == nil {
		t.Error("RequirePositive(0) error = nil, want error")
	}
	if err := RequirePositive("amount", decimal.NewFromInt(-5)); err == nil {
		t.Error("RequirePositive(-5) error = nil, want error")
	}
}

// TestRequirePercent decimal 百分比区间 [0, 100)
func TestRequirePercent(t *testing.T) {
	if err := RequirePercent("commission", decimal.Zero); err != nil {
		t.Errorf("RequirePercent(0) error = %v, want nil", err)
	}
	if err := RequirePercent("commission", decimal.NewFromFloat(99.9)); err != nil {
		t.Errorf("RequirePercent(99.9) error = %v, want nil", err)
	}
	if err := RequirePercent("commission", decimal.NewFromInt(100)); err == nil {
		t.Error("RequirePercent(100) error = nil, want error")
	}
	if err := RequirePercent("commission", decimal.NewFromInt(-1)); err == nil {
		t.Error("RequirePercent(-1) error = nil, want error")
	}
}

// TestSafeDiv 除零保护
func TestSafeDiv(t *testing.T) {
	q, err := SafeDiv(decimal.NewFromInt(10), decimal.NewFromInt(4))
	if err != nil {
		t.Fatalf("SafeDiv(10, 4) error = %v", err)
	}
	if !q.Equal(decimal.NewFromFloat(2.5)) {
		t.Errorf("SafeDiv(10, 4) = %s, want 2.5", q)
	}

	if _, err := SafeDiv(decimal.NewFromInt(1), decimal.Zero); err == nil {
		t.Error("SafeDiv(1, 0) error = nil, want error")
	}
}
