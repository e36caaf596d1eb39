package util

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// PositiveFloat 解析必须大于 0 的数字字符串
func PositiveFloat(field, s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s must be a number", field)
	}
	if f <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", field)
	}
	return f, nil
}

// PercentFloat 解析百分比字符串，合法区间 [0, 100)
func PercentFloat(field, s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s must be a number", field)
	}
	if f < 0 || f >= 100 {
		return 0, fmt.Errorf("%s must be between 0 and 100", field)
	}
	return f, nil
}

// PositiveInt 解析正整数字符串，小数部分直接截断
func PositiveInt(field, s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s must be a number", field)
	}
	n := int(math.Floor(f))
	if n <= 0 {
		return 0, fmt.Errorf("%s must be a positive whole number", field)
	}
	return n, nil
}

// RequirePositive 校验 decimal 金额必须大于 0
func RequirePositive(field string, d decimal.Decimal) error {
	if !d.IsPositive() {
		return fmt.Errorf("%s must be greater than 0", field)
	}
	return nil
}

// RequirePercent 校验 decimal 百分比在 [0, 100) 区间内
func RequirePercent(field string, d decimal.Decimal) error {
	if d.IsNegative() || d.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return fmt.Errorf("%s must be between 0 and 100", field)
	}
	return nil
}

// SafeDiv 除法前检查除数，避免 panic
func SafeDiv(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, fmt.Errorf("division by zero")
	}
	return a.Div(b), nil
}
